package model

// Milestone is a progress threshold that triggers a one-time celebration.
// Once its threshold is recorded as shown it never fires again for that
// session, even if progress regresses and re-crosses it.
type Milestone struct {
	ID          string `json:"id" bson:"id"`
	Title       string `json:"title" bson:"title"`
	Description string `json:"description" bson:"description"`
	Threshold   int    `json:"threshold" bson:"threshold"` // percent complete, 0-100
	Emoji       string `json:"emoji,omitempty" bson:"emoji,omitempty"`
}

// DefaultMilestones is the celebration ladder used when a questionnaire does
// not supply its own.
var DefaultMilestones = []Milestone{
	{ID: "started", Title: "Journey Begun", Description: "You've started your career transformation", Threshold: 0, Emoji: "🚀"},
	{ID: "quarter", Title: "Making Progress", Description: "25% complete - you're building momentum", Threshold: 25, Emoji: "💪"},
	{ID: "halfway", Title: "Halfway Hero", Description: "50% complete - the foundation is set", Threshold: 50, Emoji: "⭐"},
	{ID: "core", Title: "Core Complete", Description: "Mandatory section finished - we can proceed!", Threshold: 75, Emoji: "🎯"},
	{ID: "complete", Title: "Mission Accomplished", Description: "100% complete - maximum positioning power", Threshold: 100, Emoji: "🏆"},
}
