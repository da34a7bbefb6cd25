package engine

import (
	"testing"
	"time"
)

func TestAwardMultiplierLadder(t *testing.T) {
	g := NewGamification()
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	// Nine rapid answers, all inside the combo window. Combo 1-2 earns 1x,
	// 3-5 earns 2x, 6+ earns 3x.
	wantPoints := []int{5, 5, 10, 10, 10, 15, 15, 15, 15}
	for i, want := range wantPoints {
		id := string(rune('a' + i))
		points, ok := g.Award(id, now.Add(time.Duration(i)*time.Second))
		if !ok {
			t.Fatalf("answer %d: expected an award", i+1)
		}
		if points != want {
			t.Errorf("answer %d: points = %d, want %d", i+1, points, want)
		}
	}

	if g.Streak() != 100 {
		t.Errorf("streak after nine rapid answers = %d, want 100", g.Streak())
	}
	if g.Combo() != 9 {
		t.Errorf("combo = %d, want 9", g.Combo())
	}
	if g.Multiplier() != 3 {
		t.Errorf("multiplier = %d, want capped at 3", g.Multiplier())
	}
}

func TestAwardIdempotentPerQuestion(t *testing.T) {
	g := NewGamification()
	now := time.Now()

	if _, ok := g.Award("q1", now); !ok {
		t.Fatal("first award should succeed")
	}
	if points, ok := g.Award("q1", now.Add(time.Second)); ok || points != 0 {
		t.Errorf("re-award gave points=%d ok=%v, want 0 false", points, ok)
	}
	if g.Streak() != 5 {
		t.Errorf("streak = %d, want 5", g.Streak())
	}
}

func TestAwardComboResetsAfterWindow(t *testing.T) {
	g := NewGamification()
	base := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)

	g.Award("q1", base)
	g.Award("q2", base.Add(5*time.Second))
	if g.Combo() != 2 {
		t.Fatalf("combo = %d, want 2", g.Combo())
	}

	// 16 seconds of silence: the next award starts a fresh combo.
	points, _ := g.Award("q3", base.Add(21*time.Second))
	if g.Combo() != 1 {
		t.Errorf("combo after gap = %d, want 1", g.Combo())
	}
	if points != 5 {
		t.Errorf("points after gap = %d, want base 5", points)
	}
}

func TestExpireComboKeepsStreak(t *testing.T) {
	g := NewGamification()
	now := time.Now()
	g.Award("q1", now)
	g.Award("q2", now)

	g.ExpireCombo()
	if g.Combo() != 0 {
		t.Errorf("combo = %d, want 0", g.Combo())
	}
	if g.Streak() != 10 {
		t.Errorf("streak = %d, want 10 (expiry never revokes points)", g.Streak())
	}
}

func TestResetStreakKeepsComboAndAwards(t *testing.T) {
	g := NewGamification()
	now := time.Now()
	g.Award("q1", now)
	g.Award("q2", now)

	// Skip penalty zeroes the streak only.
	g.ResetStreak()
	if g.Streak() != 0 {
		t.Errorf("streak = %d, want 0", g.Streak())
	}
	if g.Combo() != 2 {
		t.Errorf("combo = %d, want 2 (skip does not touch the combo)", g.Combo())
	}
	if _, ok := g.Award("q1", now); ok {
		t.Error("awarded set should survive a streak reset")
	}
}

func TestResetWipesEverything(t *testing.T) {
	g := NewGamification()
	g.Award("q1", time.Now())
	g.Reset()

	if g.Streak() != 0 || g.Combo() != 0 || g.AwardedCount() != 0 {
		t.Errorf("after reset: streak=%d combo=%d awarded=%d, want all zero",
			g.Streak(), g.Combo(), g.AwardedCount())
	}
	if _, ok := g.Award("q1", time.Now()); !ok {
		t.Error("q1 should be awardable again after a full reset")
	}
}
