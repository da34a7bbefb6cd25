package model

import "time"

// AnswerValue is the polymorphic answer payload. Depending on question type
// it decodes to a string, float64, []interface{} of strings, or a
// map[string]interface{} (percentage splits, timeline rows).
type AnswerValue = interface{}

// SessionState is the unit of persistence for one (client, questionnaire)
// pair. The sync coordinator always transmits it as a whole snapshot, never
// as a diff.
type SessionState struct {
	ClientID         string                 `json:"clientId" bson:"clientId"`
	QuestionnaireID  string                 `json:"questionnaireId" bson:"questionnaireId"`
	Answers          map[string]AnswerValue `json:"answers" bson:"answers"`
	ModuleIndex      int                    `json:"currentModuleIndex" bson:"currentModuleIndex"`
	QuestionIndex    int                    `json:"currentQuestionIndex" bson:"currentQuestionIndex"`
	Points           int                    `json:"points" bson:"points"`
	Combo            int                    `json:"combo" bson:"combo"`
	CompletedModules []string               `json:"completedModules" bson:"completedModules"`
	ShownMilestones  []int                  `json:"shownMilestones" bson:"shownMilestones"`
	Completed        bool                   `json:"completed" bson:"completed"`
	UpdatedAt        time.Time              `json:"updatedAt" bson:"updatedAt"`
}

// NewSessionState returns the empty state for a first visit.
func NewSessionState(clientID, questionnaireID string) *SessionState {
	return &SessionState{
		ClientID:         clientID,
		QuestionnaireID:  questionnaireID,
		Answers:          make(map[string]AnswerValue),
		CompletedModules: []string{},
		ShownMilestones:  []int{},
	}
}

// AnswerCount reports how many answers the state carries, regardless of
// validity. Used for merge preference between local and remote copies.
func (s *SessionState) AnswerCount() int {
	if s == nil {
		return 0
	}
	return len(s.Answers)
}

// HasProgress reports whether the state represents a session the client has
// already started. Resuming such a session never re-shows the intro.
func (s *SessionState) HasProgress() bool {
	return s != nil && len(s.Answers) > 0
}

// Normalize repairs nil collections after decoding from storage.
func (s *SessionState) Normalize() {
	if s.Answers == nil {
		s.Answers = make(map[string]AnswerValue)
	}
	if s.CompletedModules == nil {
		s.CompletedModules = []string{}
	}
	if s.ShownMilestones == nil {
		s.ShownMilestones = []int{}
	}
}
