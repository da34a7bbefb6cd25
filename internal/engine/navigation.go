package engine

import (
	"errors"

	"intakeflow/internal/model"
)

// Phase is the top-level session screen.
type Phase string

const (
	PhaseIntro     Phase = "intro"
	PhaseActive    Phase = "active"
	PhaseSubmitted Phase = "submitted"
)

var (
	// ErrModuleLocked means the target module's gate has not been passed.
	ErrModuleLocked = errors.New("module is not accessible yet")
	// ErrBadModuleIndex means the index is outside the questionnaire.
	ErrBadModuleIndex = errors.New("module index out of range")
)

// Navigator tracks the module/question cursor and module completion, and
// moves through the questionnaire graph. It does not gate on answers; the
// session controller applies the required-question rule before advancing.
type Navigator struct {
	questionnaire *model.Questionnaire
	phase         Phase
	moduleIndex   int
	questionIndex int
	completed     map[string]bool
	completedList []string // preserves completion order for persistence
}

// NewNavigator starts at the intro screen.
func NewNavigator(q *model.Questionnaire) *Navigator {
	return &Navigator{
		questionnaire: q,
		phase:         PhaseIntro,
		completed:     make(map[string]bool),
	}
}

// Begin moves from intro to the first question.
func (n *Navigator) Begin() {
	if n.phase == PhaseIntro {
		n.phase = PhaseActive
		n.moduleIndex = 0
		n.questionIndex = 0
	}
}

// Resume restores a persisted cursor. A session with existing answers skips
// the intro; a completed one lands on the submitted screen.
func (n *Navigator) Resume(moduleIdx, questionIdx int, completedModules []string, hasAnswers, submitted bool) {
	n.moduleIndex = clamp(moduleIdx, 0, len(n.questionnaire.Modules)-1)
	n.questionIndex = 0
	if m := n.CurrentModule(); m != nil {
		n.questionIndex = clamp(questionIdx, 0, len(m.Questions)-1)
	}
	for _, id := range completedModules {
		if !n.completed[id] {
			n.completed[id] = true
			n.completedList = append(n.completedList, id)
		}
	}
	switch {
	case submitted:
		n.phase = PhaseSubmitted
	case hasAnswers:
		n.phase = PhaseActive
	default:
		n.phase = PhaseIntro
	}
}

// Advance moves forward one question. Crossing a module boundary marks the
// module completed; advancing past the last question of the last module
// reports done=true and transitions to the submitted phase.
func (n *Navigator) Advance() (done bool) {
	m := n.CurrentModule()
	if m == nil || n.phase != PhaseActive {
		return false
	}

	if n.questionIndex < len(m.Questions)-1 {
		n.questionIndex++
		return false
	}

	n.markCompleted(m.ID)
	if n.moduleIndex < len(n.questionnaire.Modules)-1 {
		n.moduleIndex++
		n.questionIndex = 0
		return false
	}

	n.phase = PhaseSubmitted
	return true
}

// Complete forces the submitted phase (explicit submit from anywhere).
func (n *Navigator) Complete() {
	n.phase = PhaseSubmitted
}

// Retreat moves back one question, crossing into the previous module's last
// question at a boundary. No-op at the very first question.
func (n *Navigator) Retreat() {
	if n.phase != PhaseActive {
		return
	}
	if n.questionIndex > 0 {
		n.questionIndex--
		return
	}
	if n.moduleIndex > 0 {
		n.moduleIndex--
		prev := n.questionnaire.Modules[n.moduleIndex]
		n.questionIndex = len(prev.Questions) - 1
		if n.questionIndex < 0 {
			n.questionIndex = 0
		}
	}
}

// SelectModule jumps directly to a module's first question, if accessible.
func (n *Navigator) SelectModule(index int) error {
	if index < 0 || index >= len(n.questionnaire.Modules) {
		return ErrBadModuleIndex
	}
	if !n.ModuleAccessible(index) {
		return ErrModuleLocked
	}
	n.moduleIndex = index
	n.questionIndex = 0
	return nil
}

// ModuleAccessible: the first module, any module at or before the current
// cursor, or any module whose predecessor is completed. Accessibility is
// never revoked retroactively when answers are edited.
func (n *Navigator) ModuleAccessible(index int) bool {
	if index < 0 || index >= len(n.questionnaire.Modules) {
		return false
	}
	if index == 0 || index <= n.moduleIndex {
		return true
	}
	prev := n.questionnaire.Modules[index-1]
	return n.completed[prev.ID]
}

func (n *Navigator) markCompleted(moduleID string) {
	if !n.completed[moduleID] {
		n.completed[moduleID] = true
		n.completedList = append(n.completedList, moduleID)
	}
}

// Phase is the current lifecycle phase.
func (n *Navigator) Phase() Phase { return n.phase }

// Cursor returns the module and question indexes.
func (n *Navigator) Cursor() (moduleIdx, questionIdx int) {
	return n.moduleIndex, n.questionIndex
}

// CurrentModule is nil when the questionnaire has no modules.
func (n *Navigator) CurrentModule() *model.Module {
	if n.moduleIndex < 0 || n.moduleIndex >= len(n.questionnaire.Modules) {
		return nil
	}
	return &n.questionnaire.Modules[n.moduleIndex]
}

// CurrentQuestion is nil when the current module has no questions.
func (n *Navigator) CurrentQuestion() *model.Question {
	m := n.CurrentModule()
	if m == nil || n.questionIndex < 0 || n.questionIndex >= len(m.Questions) {
		return nil
	}
	return &m.Questions[n.questionIndex]
}

// CompletedModules returns module ids in completion order.
func (n *Navigator) CompletedModules() []string {
	out := make([]string, len(n.completedList))
	copy(out, n.completedList)
	return out
}

// IsModuleCompleted reports whether the module's gate has been passed.
func (n *Navigator) IsModuleCompleted(moduleID string) bool {
	return n.completed[moduleID]
}

// Reset returns to the intro with a clean cursor and completion set.
func (n *Navigator) Reset() {
	n.phase = PhaseIntro
	n.moduleIndex = 0
	n.questionIndex = 0
	n.completed = make(map[string]bool)
	n.completedList = nil
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
