package model

import "time"

// QuestionType tags the answer shape a question expects
type QuestionType string

const (
	QuestionTypeText            QuestionType = "text"
	QuestionTypeTextarea        QuestionType = "textarea"
	QuestionTypeNumber          QuestionType = "number"
	QuestionTypeCurrency        QuestionType = "currency"
	QuestionTypeDate            QuestionType = "date"
	QuestionTypeRadio           QuestionType = "radio"
	QuestionTypeCheckbox        QuestionType = "checkbox"
	QuestionTypeSelect          QuestionType = "select"
	QuestionTypePercentageSplit QuestionType = "percentage-split" // answer is label -> percent
	QuestionTypeTimeline        QuestionType = "timeline"         // composite, uses SubQuestions
)

// QuestionOption is a selectable choice for radio/checkbox/select questions
type QuestionOption struct {
	Value       string `json:"value" bson:"value"`
	Label       string `json:"label" bson:"label"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
}

// Question is a single prompt in a module. IDs are unique across the whole
// questionnaire.
type Question struct {
	ID           string           `json:"id" bson:"id"`
	Type         QuestionType     `json:"type" bson:"type"`
	Prompt       string           `json:"prompt" bson:"prompt"`
	Subtitle     string           `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	WhyAsking    string           `json:"whyAsking,omitempty" bson:"whyAsking,omitempty"`
	Placeholder  string           `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	Required     bool             `json:"required" bson:"required"`
	Critical     bool             `json:"critical,omitempty" bson:"critical,omitempty"`
	Options      []QuestionOption `json:"options,omitempty" bson:"options,omitempty"`
	SubQuestions []Question       `json:"subQuestions,omitempty" bson:"subQuestions,omitempty"`
}

// Module is an ordered group of questions with its own completion and
// time-estimate semantics. Module order defines global question ordering.
type Module struct {
	ID               string     `json:"id" bson:"id"`
	Title            string     `json:"title" bson:"title"`
	Subtitle         string     `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	Description      string     `json:"description,omitempty" bson:"description,omitempty"`
	Icon             string     `json:"icon,omitempty" bson:"icon,omitempty"`
	EstimatedMinutes int        `json:"estimatedMinutes" bson:"estimatedMinutes"`
	Required         bool       `json:"required" bson:"required"`
	Questions        []Question `json:"questions" bson:"questions"`
}

// Questionnaire is an immutable intake definition supplied to the engine.
type Questionnaire struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Title       string    `json:"title" bson:"title"`
	Subtitle    string    `json:"subtitle,omitempty" bson:"subtitle,omitempty"`
	PackageType string    `json:"packageType,omitempty" bson:"packageType,omitempty"`
	IntroText   string    `json:"introText,omitempty" bson:"introText,omitempty"`
	ReadFirst   string    `json:"readFirst,omitempty" bson:"readFirst,omitempty"`
	Modules     []Module  `json:"modules" bson:"modules"`
	CreatedAt   time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt" bson:"updatedAt"`
}

// AllQuestions flattens the modules into the global question order.
func (q *Questionnaire) AllQuestions() []Question {
	var out []Question
	for _, m := range q.Modules {
		out = append(out, m.Questions...)
	}
	return out
}

// TotalEstimatedMinutes sums the per-module estimates.
func (q *Questionnaire) TotalEstimatedMinutes() int {
	total := 0
	for _, m := range q.Modules {
		total += m.EstimatedMinutes
	}
	return total
}
