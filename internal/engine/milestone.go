package engine

import "intakeflow/internal/model"

// MilestoneTracker fires each milestone's celebration at most once per
// session. The shown set is persisted with the session state so celebrations
// survive reloads, and at most one celebration is active at a time.
type MilestoneTracker struct {
	milestones []model.Milestone
	shown      map[int]bool
	active     *model.Milestone
}

// NewMilestoneTracker takes the milestone list sorted by ascending threshold.
func NewMilestoneTracker(milestones []model.Milestone) *MilestoneTracker {
	return &MilestoneTracker{
		milestones: milestones,
		shown:      make(map[int]bool),
	}
}

// Restore marks previously shown thresholds from persisted state.
func (t *MilestoneTracker) Restore(shown []int) {
	for _, threshold := range shown {
		t.shown[threshold] = true
	}
}

// Check returns the first unshown milestone whose threshold has been reached,
// recording it as shown and active. Returns nil when nothing new fires or a
// celebration is already displayed.
func (t *MilestoneTracker) Check(progressPercent int) *model.Milestone {
	if t.active != nil {
		return nil
	}
	for i := range t.milestones {
		m := t.milestones[i]
		if progressPercent >= m.Threshold && !t.shown[m.Threshold] {
			t.shown[m.Threshold] = true
			t.active = &m
			return &m
		}
	}
	return nil
}

// Dismiss clears the active celebration (explicit dismissal or auto-dismiss).
func (t *MilestoneTracker) Dismiss() {
	t.active = nil
}

// Active returns the currently displayed celebration, if any.
func (t *MilestoneTracker) Active() *model.Milestone {
	return t.active
}

// Shown returns the persisted-form list of fired thresholds, ascending.
func (t *MilestoneTracker) Shown() []int {
	out := []int{}
	for _, m := range t.milestones {
		if t.shown[m.Threshold] {
			out = append(out, m.Threshold)
		}
	}
	return out
}

// Reset wipes the shown set and any active celebration.
func (t *MilestoneTracker) Reset() {
	t.shown = make(map[int]bool)
	t.active = nil
}
