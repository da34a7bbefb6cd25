package engine

import "time"

const (
	basePoints    = 5
	maxMultiplier = 3
	// ComboWindow is how long a combo survives between consecutive answers.
	ComboWindow = 15 * time.Second
)

// Gamification tracks points (streak), the combo counter, and per-question
// award idempotency. It is pure state: the session controller owns the clock
// and the decay timer so this stays deterministic under test.
type Gamification struct {
	streak         int
	combo          int
	lastAnswerTime time.Time
	awarded        map[string]bool
}

// NewGamification starts from zero.
func NewGamification() *Gamification {
	return &Gamification{awarded: make(map[string]bool)}
}

// Restore rebuilds gamification state from a persisted session.
func (g *Gamification) Restore(streak, combo int) {
	g.streak = streak
	g.combo = combo
}

// Award grants points for a question the first time it becomes validly
// answered. Re-editing an already-awarded question awards nothing further.
// Returns the points granted and whether an award happened.
func (g *Gamification) Award(questionID string, now time.Time) (points int, ok bool) {
	if g.awarded[questionID] {
		return 0, false
	}

	// Combo is also decayed lazily here so correctness never depends on the
	// decay timer actually firing.
	if !g.lastAnswerTime.IsZero() && now.Sub(g.lastAnswerTime) < ComboWindow {
		g.combo++
	} else {
		g.combo = 1
	}

	points = basePoints * g.Multiplier()
	g.streak += points
	g.lastAnswerTime = now
	g.awarded[questionID] = true
	return points, true
}

// Multiplier is 1x for combo 1-2, 2x for 3-5, 3x for 6+, capped at 3x.
func (g *Gamification) Multiplier() int {
	m := g.combo/3 + 1
	if m > maxMultiplier {
		m = maxMultiplier
	}
	if m < 1 {
		m = 1
	}
	return m
}

// ExpireCombo zeroes the combo after the window elapses with no new award.
// The streak is untouched.
func (g *Gamification) ExpireCombo() {
	g.combo = 0
}

// ResetStreak is the skip penalty: the streak drops to zero but the awarded
// set is kept, so points already earned are never revoked.
func (g *Gamification) ResetStreak() {
	g.streak = 0
}

// Reset wipes everything, including the awarded set. Used only by the
// session-level reset.
func (g *Gamification) Reset() {
	g.streak = 0
	g.combo = 0
	g.lastAnswerTime = time.Time{}
	g.awarded = make(map[string]bool)
}

// Streak is the cumulative point total for the session.
func (g *Gamification) Streak() int { return g.streak }

// Combo is the consecutive-answer counter driving the multiplier.
func (g *Gamification) Combo() int { return g.combo }

// AwardedCount is the number of distinct questions that have earned points.
func (g *Gamification) AwardedCount() int { return len(g.awarded) }

// LastAnswerTime is the instant of the most recent award.
func (g *Gamification) LastAnswerTime() time.Time { return g.lastAnswerTime }
