package engine

import (
	"testing"

	"intakeflow/internal/model"
)

func TestMilestoneFiresOncePerThreshold(t *testing.T) {
	tr := NewMilestoneTracker(model.DefaultMilestones)

	m := tr.Check(0)
	if m == nil || m.Threshold != 0 {
		t.Fatalf("Check(0) = %v, want the 0%% milestone", m)
	}
	tr.Dismiss()

	// Progress oscillates below and back above 25 as answers are edited;
	// the celebration still fires at most once.
	if m := tr.Check(30); m == nil || m.Threshold != 25 {
		t.Fatalf("Check(30) = %v, want the 25%% milestone", m)
	}
	tr.Dismiss()
	if m := tr.Check(20); m != nil {
		t.Errorf("Check(20) = %v, want nil", m)
	}
	if m := tr.Check(30); m != nil {
		t.Errorf("Check(30) after already shown = %v, want nil", m)
	}
}

func TestMilestoneOneActiveAtATime(t *testing.T) {
	tr := NewMilestoneTracker(model.DefaultMilestones)

	if m := tr.Check(0); m == nil {
		t.Fatal("expected the 0% milestone")
	}
	// While a celebration is displayed, crossing the next threshold waits.
	if m := tr.Check(25); m != nil {
		t.Fatalf("Check(25) while active = %v, want nil", m)
	}
	tr.Dismiss()
	if m := tr.Check(25); m == nil || m.Threshold != 25 {
		t.Fatalf("Check(25) after dismiss = %v, want the 25%% milestone", m)
	}
}

func TestMilestoneJumpFiresLowestUnshownFirst(t *testing.T) {
	tr := NewMilestoneTracker(model.DefaultMilestones)

	// Jumping straight to 60% fires thresholds one at a time, lowest first.
	want := []int{0, 25, 50}
	for _, threshold := range want {
		m := tr.Check(60)
		if m == nil || m.Threshold != threshold {
			t.Fatalf("Check(60) = %v, want threshold %d", m, threshold)
		}
		tr.Dismiss()
	}
	if m := tr.Check(60); m != nil {
		t.Errorf("Check(60) = %v, want nil once 0/25/50 are shown", m)
	}
}

func TestMilestoneRestore(t *testing.T) {
	tr := NewMilestoneTracker(model.DefaultMilestones)
	tr.Restore([]int{0, 25})

	if m := tr.Check(30); m != nil {
		t.Errorf("Check(30) after restore = %v, want nil", m)
	}
	if m := tr.Check(50); m == nil || m.Threshold != 50 {
		t.Errorf("Check(50) after restore = %v, want the 50%% milestone", m)
	}

	got := tr.Shown()
	want := []int{0, 25, 50}
	if len(got) != len(want) {
		t.Fatalf("Shown() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Shown()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestMilestoneReset(t *testing.T) {
	tr := NewMilestoneTracker(model.DefaultMilestones)
	tr.Check(0)
	tr.Reset()

	if len(tr.Shown()) != 0 {
		t.Errorf("Shown() after reset = %v, want empty", tr.Shown())
	}
	if m := tr.Check(0); m == nil {
		t.Error("the 0% milestone should fire again after a reset")
	}
}
