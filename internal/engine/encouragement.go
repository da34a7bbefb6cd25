package engine

import "math/rand"

// encouragementCadence: every Nth awarded answer earns an encouragement toast.
const encouragementCadence = 5

var encouragementPools = map[string][]string{
	"start": {
		"Great start! Let's build your career story together",
		"Every detail you share helps us craft your perfect resume",
		"You're off to a great start!",
	},
	"quarter": {
		"You're doing great! Keep this momentum going",
		"25% done - the foundation is coming together",
		"Love the detail you're providing!",
	},
	"halfway": {
		"Halfway there! You're unstoppable",
		"Amazing progress! We're building something special",
		"This is exactly the insight we need!",
	},
	"threequarter": {
		"Almost there! You're crushing this",
		"Final stretch - we can see the finish line!",
		"Your attention to detail is impressive!",
	},
	"nearEnd": {
		"Just a few more questions! You've got this",
		"So close! Let's bring it home strong",
		"One last push - this is going to be incredible!",
	},
}

// encouragementMessage picks a random message from the pool matching the
// current progress tier. pick is injectable for deterministic tests.
func encouragementMessage(progressPercent int, pick func(n int) int) string {
	if pick == nil {
		pick = rand.Intn
	}

	var tier string
	switch {
	case progressPercent < 15:
		tier = "start"
	case progressPercent < 40:
		tier = "quarter"
	case progressPercent < 65:
		tier = "halfway"
	case progressPercent < 90:
		tier = "threequarter"
	default:
		tier = "nearEnd"
	}

	pool := encouragementPools[tier]
	return pool[pick(len(pool))]
}
