package engine

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"intakeflow/internal/model"
)

const (
	milestoneVisibleFor     = 3 * time.Second
	encouragementDelay      = 1500 * time.Millisecond
	encouragementVisibleFor = 3 * time.Second
)

// ErrAnswerRequired blocks advancing past an unanswered required question.
// It is a disabled affordance, not a failure; transports map it to a 4xx
// without any error dialog semantics.
var ErrAnswerRequired = errors.New("current question requires an answer")

// ErrUnknownQuestion rejects answers for ids outside the questionnaire.
var ErrUnknownQuestion = errors.New("unknown question id")

// Listener receives the transient events a UI renders as popups and toasts.
// Implementations must not block; the ws hub satisfies that by buffering.
type Listener interface {
	PointsAwarded(questionID string, points, combo, multiplier, streak int)
	ComboExpired()
	EncouragementShown(message string)
	EncouragementDismissed()
	MilestoneReached(m model.Milestone)
	MilestoneDismissed(threshold int)
}

// NopListener discards all events.
type NopListener struct{}

func (NopListener) PointsAwarded(string, int, int, int, int) {}
func (NopListener) ComboExpired()                            {}
func (NopListener) EncouragementShown(string)                {}
func (NopListener) EncouragementDismissed()                  {}
func (NopListener) MilestoneReached(model.Milestone)         {}
func (NopListener) MilestoneDismissed(int)                   {}

// Session is the lifecycle controller for one (client, questionnaire) pair.
// It composes validity, progress, gamification, milestones, and navigation
// under a single mutex; all timer callbacks re-acquire that mutex, so the
// event-loop assumptions of the design hold server-side.
type Session struct {
	mu sync.Mutex

	questionnaire *model.Questionnaire
	clientID      string
	questionByID  map[string]*model.Question

	answers    map[string]model.AnswerValue
	nav        *Navigator
	game       *Gamification
	milestones *MilestoneTracker

	completed       bool
	completionFired bool
	closed          bool

	listener   Listener
	onChange   func()
	onComplete func(answers map[string]model.AnswerValue)

	now  func() time.Time
	pick func(n int) int

	comboTimer     *time.Timer
	milestoneTimer *time.Timer
	encourageShow  *time.Timer
	encourageHide  *time.Timer
}

// NewSession builds a fresh session at the intro screen.
func NewSession(q *model.Questionnaire, clientID string) *Session {
	byID := make(map[string]*model.Question)
	for mi := range q.Modules {
		for qi := range q.Modules[mi].Questions {
			question := &q.Modules[mi].Questions[qi]
			byID[question.ID] = question
		}
	}
	return &Session{
		questionnaire: q,
		clientID:      clientID,
		questionByID:  byID,
		answers:       make(map[string]model.AnswerValue),
		nav:           NewNavigator(q),
		game:          NewGamification(),
		milestones:    NewMilestoneTracker(model.DefaultMilestones),
		listener:      NopListener{},
		now:           time.Now,
		pick:          rand.Intn,
	}
}

// SetListener wires transient UI events. Must be called before use.
func (s *Session) SetListener(l Listener) {
	if l != nil {
		s.listener = l
	}
}

// SetOnChange registers the persisted-slice change hook; the orchestrator
// points it at the sync coordinator's Schedule. Only persisted state
// mutations invoke it - transient UI events never trigger persistence work.
func (s *Session) SetOnChange(fn func()) { s.onChange = fn }

// SetOnComplete registers the completion callback, invoked exactly once with
// the final answer map when the session reaches the submitted phase.
func (s *Session) SetOnComplete(fn func(map[string]model.AnswerValue)) { s.onComplete = fn }

// Restore hydrates the session from persisted state and resumes navigation.
// A state with answers skips the intro.
func (s *Session) Restore(state *model.SessionState) {
	if state == nil {
		return
	}
	state.Normalize()

	s.mu.Lock()
	s.answers = make(map[string]model.AnswerValue, len(state.Answers))
	for id, v := range state.Answers {
		s.answers[id] = v
		if IsValidAnswer(v) {
			// Restored answers never re-award points.
			s.game.awarded[id] = true
		}
	}
	s.game.Restore(state.Points, state.Combo)
	s.milestones.Restore(state.ShownMilestones)
	s.completed = state.Completed
	s.completionFired = state.Completed
	s.nav.Resume(state.ModuleIndex, state.QuestionIndex, state.CompletedModules, state.HasProgress(), state.Completed)
	s.mu.Unlock()
}

// Snapshot captures the full persisted slice. The sync coordinator calls
// this at flush time so it always sees the latest state, never a stale copy
// captured when the debounce timer was armed.
func (s *Session) Snapshot() *model.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() *model.SessionState {
	answers := make(map[string]model.AnswerValue, len(s.answers))
	for id, v := range s.answers {
		answers[id] = v
	}
	mi, qi := s.nav.Cursor()
	return &model.SessionState{
		ClientID:         s.clientID,
		QuestionnaireID:  s.questionnaire.ID,
		Answers:          answers,
		ModuleIndex:      mi,
		QuestionIndex:    qi,
		Points:           s.game.Streak(),
		Combo:            s.game.Combo(),
		CompletedModules: s.nav.CompletedModules(),
		ShownMilestones:  s.milestones.Shown(),
		Completed:        s.completed,
		UpdatedAt:        s.now(),
	}
}

// Begin leaves the intro screen and runs the first milestone check (the 0%
// milestone fires here on a fresh session).
func (s *Session) Begin() {
	s.mu.Lock()
	s.nav.Begin()
	fired := s.checkMilestonesLocked()
	s.mu.Unlock()

	if fired != nil {
		s.listener.MilestoneReached(*fired)
	}
	s.notifyChange()
}

// SetAnswer records the answer for a question, awarding points the first
// time the value becomes valid and firing any newly crossed milestone.
func (s *Session) SetAnswer(questionID string, value model.AnswerValue) error {
	s.mu.Lock()
	if _, ok := s.questionByID[questionID]; !ok {
		s.mu.Unlock()
		return ErrUnknownQuestion
	}
	s.answers[questionID] = value

	var (
		points, combo, multiplier, streak int
		awarded                           bool
		encouragePending                  bool
	)
	if IsValidAnswer(value) {
		if points, awarded = s.game.Award(questionID, s.now()); awarded {
			combo = s.game.Combo()
			multiplier = s.game.Multiplier()
			streak = s.game.Streak()
			s.armComboDecayLocked()
			if s.game.AwardedCount()%encouragementCadence == 0 {
				encouragePending = true
			}
		}
	}
	fired := s.checkMilestonesLocked()
	if encouragePending {
		s.armEncouragementLocked()
	}
	s.mu.Unlock()

	if awarded {
		s.listener.PointsAwarded(questionID, points, combo, multiplier, streak)
	}
	if fired != nil {
		s.listener.MilestoneReached(*fired)
	}
	s.notifyChange()
	return nil
}

// AdvanceBlocked reports whether Continue is disabled for the current
// question (required and unanswered). UIs bind button state to this.
func (s *Session) AdvanceBlocked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.nav.CurrentQuestion()
	return q != nil && q.Required && !IsValidAnswer(s.answers[q.ID])
}

// Advance moves to the next question. Required questions gate it; advancing
// past an unanswered optional question zeroes the streak (skip penalty) but
// never blocks. Finishing the last question finalizes the session.
func (s *Session) Advance() error {
	s.mu.Lock()
	if s.nav.Phase() != PhaseActive {
		s.mu.Unlock()
		return nil
	}
	if q := s.nav.CurrentQuestion(); q != nil {
		answered := IsValidAnswer(s.answers[q.ID])
		if q.Required && !answered {
			s.mu.Unlock()
			return ErrAnswerRequired
		}
		if !answered {
			// Skip penalty: streak only. Combo decays on its own timer, and
			// the awarded set is kept so earned points are never revoked.
			s.game.ResetStreak()
		}
	}
	done := s.nav.Advance()
	var finalAnswers map[string]model.AnswerValue
	if done {
		finalAnswers = s.finalizeLocked()
	}
	s.mu.Unlock()

	if finalAnswers != nil && s.onComplete != nil {
		s.onComplete(finalAnswers)
	}
	s.notifyChange()
	return nil
}

// Skip advances past an optional question without an answer. Required
// questions cannot be skipped.
func (s *Session) Skip() error {
	s.mu.Lock()
	q := s.nav.CurrentQuestion()
	if q != nil && q.Required {
		s.mu.Unlock()
		return ErrAnswerRequired
	}
	s.mu.Unlock()
	return s.Advance()
}

// Back moves to the previous question (no-op at the very first).
func (s *Session) Back() {
	s.mu.Lock()
	s.nav.Retreat()
	s.mu.Unlock()
	s.notifyChange()
}

// SelectModule jumps to an accessible module's first question.
func (s *Session) SelectModule(index int) error {
	s.mu.Lock()
	err := s.nav.SelectModule(index)
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.notifyChange()
	return nil
}

// Submit finalizes from anywhere. Confirmation is the transport's job; a
// second submit after completion is a no-op, not a duplicate callback.
func (s *Session) Submit() {
	s.mu.Lock()
	s.nav.Complete()
	finalAnswers := s.finalizeLocked()
	s.mu.Unlock()

	if finalAnswers != nil && s.onComplete != nil {
		s.onComplete(finalAnswers)
	}
	s.notifyChange()
}

func (s *Session) finalizeLocked() map[string]model.AnswerValue {
	s.completed = true
	if s.completionFired {
		return nil
	}
	s.completionFired = true
	answers := make(map[string]model.AnswerValue, len(s.answers))
	for id, v := range s.answers {
		answers[id] = v
	}
	return answers
}

// Reset wipes answers, cursor, gamification, and shown milestones, returning
// to the intro screen. The orchestrator clears caches and force-syncs the
// emptied state so closing the tab right after cannot resurrect old answers.
func (s *Session) Reset() {
	s.mu.Lock()
	s.stopTimersLocked()
	s.answers = make(map[string]model.AnswerValue)
	s.nav.Reset()
	s.game.Reset()
	s.milestones.Reset()
	s.completed = false
	s.completionFired = false
	s.mu.Unlock()
	s.notifyChange()
}

// DismissMilestone closes the active celebration early (user dismissal or
// Escape in the UI).
func (s *Session) DismissMilestone() {
	s.mu.Lock()
	active := s.milestones.Active()
	s.milestones.Dismiss()
	if s.milestoneTimer != nil {
		s.milestoneTimer.Stop()
		s.milestoneTimer = nil
	}
	s.mu.Unlock()
	if active != nil {
		s.listener.MilestoneDismissed(active.Threshold)
	}
}

// Questionnaire returns the definition this session runs against.
func (s *Session) Questionnaire() *model.Questionnaire { return s.questionnaire }

// Progress recalculates the completion picture from current answers.
func (s *Session) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progressLocked()
}

func (s *Session) progressLocked() Progress {
	mi, qi := s.nav.Cursor()
	return CalculateProgress(s.questionnaire, s.answers, mi, qi)
}

// Phase is the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Phase()
}

// Cursor returns the current module and question indexes.
func (s *Session) Cursor() (moduleIdx, questionIdx int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.Cursor()
}

// CurrentQuestion is the question under the cursor, nil on malformed input.
func (s *Session) CurrentQuestion() *model.Question {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.CurrentQuestion()
}

// ModuleAccessible exposes the navigator's gate for UI rendering.
func (s *Session) ModuleAccessible(index int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.ModuleAccessible(index)
}

// CompletedModules returns module ids in completion order.
func (s *Session) CompletedModules() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nav.CompletedModules()
}

// Multiplier is the current combo multiplier for display.
func (s *Session) Multiplier() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Multiplier()
}

// Close cancels every pending timer so a detached session can never fire
// events. Safe to call more than once.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.stopTimersLocked()
	s.mu.Unlock()
}

func (s *Session) stopTimersLocked() {
	for _, t := range []*time.Timer{s.comboTimer, s.milestoneTimer, s.encourageShow, s.encourageHide} {
		if t != nil {
			t.Stop()
		}
	}
	s.comboTimer = nil
	s.milestoneTimer = nil
	s.encourageShow = nil
	s.encourageHide = nil
}

func (s *Session) notifyChange() {
	if s.onChange != nil {
		s.onChange()
	}
}

// checkMilestonesLocked runs the detector against current progress.
func (s *Session) checkMilestonesLocked() *model.Milestone {
	fired := s.milestones.Check(s.progressLocked().Percent)
	if fired != nil {
		s.armMilestoneDismissLocked()
	}
	return fired
}

func (s *Session) armComboDecayLocked() {
	if s.comboTimer != nil {
		s.comboTimer.Stop()
	}
	s.comboTimer = time.AfterFunc(ComboWindow, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		// A newer award re-arms the timer, so firing means the window truly
		// elapsed; the elapsed check guards against stop/fire races.
		expired := !s.game.LastAnswerTime().IsZero() && s.now().Sub(s.game.LastAnswerTime()) >= ComboWindow
		if expired {
			s.game.ExpireCombo()
		}
		s.mu.Unlock()
		if expired {
			s.listener.ComboExpired()
		}
	})
}

func (s *Session) armMilestoneDismissLocked() {
	if s.milestoneTimer != nil {
		s.milestoneTimer.Stop()
	}
	s.milestoneTimer = time.AfterFunc(milestoneVisibleFor, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		active := s.milestones.Active()
		s.milestones.Dismiss()
		s.mu.Unlock()
		if active != nil {
			s.listener.MilestoneDismissed(active.Threshold)
		}
	})
}

func (s *Session) armEncouragementLocked() {
	if s.encourageShow != nil {
		s.encourageShow.Stop()
	}
	// Shown after a short delay so it lands after the points popup.
	s.encourageShow = time.AfterFunc(encouragementDelay, func() {
		s.mu.Lock()
		if s.closed {
			s.mu.Unlock()
			return
		}
		msg := encouragementMessage(s.progressLocked().Percent, s.pick)
		if s.encourageHide != nil {
			s.encourageHide.Stop()
		}
		s.encourageHide = time.AfterFunc(encouragementVisibleFor, func() {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if !closed {
				s.listener.EncouragementDismissed()
			}
		})
		s.mu.Unlock()
		s.listener.EncouragementShown(msg)
	})
}
