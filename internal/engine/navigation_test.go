package engine

import (
	"errors"
	"testing"
)

func TestNavigatorWalkThrough(t *testing.T) {
	n := NewNavigator(twoModuleQuestionnaire())

	if n.Phase() != PhaseIntro {
		t.Fatalf("phase = %s, want intro", n.Phase())
	}
	n.Begin()
	if n.Phase() != PhaseActive {
		t.Fatalf("phase = %s, want active", n.Phase())
	}

	// Three advances clear the profile module and land on details.
	for i := 0; i < 3; i++ {
		if done := n.Advance(); done {
			t.Fatalf("advance %d reported done", i+1)
		}
	}
	mi, qi := n.Cursor()
	if mi != 1 || qi != 0 {
		t.Fatalf("cursor = (%d,%d), want (1,0)", mi, qi)
	}
	if !n.IsModuleCompleted("profile") {
		t.Error("profile should be completed at the boundary")
	}

	if done := n.Advance(); done {
		t.Fatal("advance to d2 reported done")
	}
	if done := n.Advance(); !done {
		t.Fatal("advancing past the last question should report done")
	}
	if n.Phase() != PhaseSubmitted {
		t.Errorf("phase = %s, want submitted", n.Phase())
	}
	if got := n.CompletedModules(); len(got) != 2 || got[0] != "profile" || got[1] != "details" {
		t.Errorf("completed modules = %v, want [profile details]", got)
	}
}

func TestNavigatorRetreatAcrossBoundary(t *testing.T) {
	n := NewNavigator(twoModuleQuestionnaire())
	n.Begin()
	for i := 0; i < 3; i++ {
		n.Advance()
	}

	// From (1,0) back to the last question of profile.
	n.Retreat()
	mi, qi := n.Cursor()
	if mi != 0 || qi != 2 {
		t.Fatalf("cursor = (%d,%d), want (0,2)", mi, qi)
	}

	n.Retreat()
	n.Retreat()
	n.Retreat() // no-op at the very first question
	mi, qi = n.Cursor()
	if mi != 0 || qi != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", mi, qi)
	}
}

func TestNavigatorModuleAccessibility(t *testing.T) {
	n := NewNavigator(twoModuleQuestionnaire())
	n.Begin()

	if !n.ModuleAccessible(0) {
		t.Error("first module must always be accessible")
	}
	if n.ModuleAccessible(1) {
		t.Error("details should be locked before profile is completed")
	}
	if err := n.SelectModule(1); !errors.Is(err, ErrModuleLocked) {
		t.Errorf("SelectModule(1) = %v, want ErrModuleLocked", err)
	}
	if err := n.SelectModule(5); !errors.Is(err, ErrBadModuleIndex) {
		t.Errorf("SelectModule(5) = %v, want ErrBadModuleIndex", err)
	}

	for i := 0; i < 3; i++ {
		n.Advance()
	}
	if !n.ModuleAccessible(1) {
		t.Error("details should open once profile is completed")
	}

	// Jumping back never locks what was already reachable.
	if err := n.SelectModule(0); err != nil {
		t.Fatalf("SelectModule(0) = %v", err)
	}
	if !n.ModuleAccessible(1) {
		t.Error("details should stay accessible after jumping back")
	}
}

func TestNavigatorResume(t *testing.T) {
	n := NewNavigator(twoModuleQuestionnaire())
	n.Resume(1, 1, []string{"profile"}, true, false)

	if n.Phase() != PhaseActive {
		t.Errorf("phase = %s, want active (answers skip the intro)", n.Phase())
	}
	mi, qi := n.Cursor()
	if mi != 1 || qi != 1 {
		t.Errorf("cursor = (%d,%d), want (1,1)", mi, qi)
	}

	// Out-of-range cursors from stale persisted state are clamped.
	n2 := NewNavigator(twoModuleQuestionnaire())
	n2.Resume(9, 9, nil, true, false)
	mi, qi = n2.Cursor()
	if mi != 1 || qi != 1 {
		t.Errorf("clamped cursor = (%d,%d), want (1,1)", mi, qi)
	}

	// A submitted session resumes on the submitted screen.
	n3 := NewNavigator(twoModuleQuestionnaire())
	n3.Resume(1, 1, []string{"profile", "details"}, true, true)
	if n3.Phase() != PhaseSubmitted {
		t.Errorf("phase = %s, want submitted", n3.Phase())
	}

	// No answers, not submitted: intro.
	n4 := NewNavigator(twoModuleQuestionnaire())
	n4.Resume(0, 0, nil, false, false)
	if n4.Phase() != PhaseIntro {
		t.Errorf("phase = %s, want intro", n4.Phase())
	}
}

func TestNavigatorReset(t *testing.T) {
	n := NewNavigator(twoModuleQuestionnaire())
	n.Begin()
	for i := 0; i < 4; i++ {
		n.Advance()
	}

	n.Reset()
	if n.Phase() != PhaseIntro {
		t.Errorf("phase = %s, want intro", n.Phase())
	}
	mi, qi := n.Cursor()
	if mi != 0 || qi != 0 {
		t.Errorf("cursor = (%d,%d), want (0,0)", mi, qi)
	}
	if len(n.CompletedModules()) != 0 {
		t.Errorf("completed modules = %v, want empty", n.CompletedModules())
	}
}
