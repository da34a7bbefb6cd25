package engine

import (
	"math"

	"intakeflow/internal/model"
)

// Progress is the derived completion picture for a session.
type Progress struct {
	TotalQuestions            int `json:"totalQuestions"`
	AnsweredCount             int `json:"answeredCount"`
	Percent                   int `json:"percent"`
	RequiredCount             int `json:"requiredCount"`
	EstimatedMinutesRemaining int `json:"estimatedMinutesRemaining"`
}

// CalculateProgress derives progress from the questionnaire definition, the
// current answers, and the cursor position. Malformed definitions (zero
// questions overall, or a module with zero questions) degrade to zeroes
// rather than dividing by zero.
func CalculateProgress(q *model.Questionnaire, answers map[string]model.AnswerValue, moduleIdx, questionIdx int) Progress {
	var p Progress

	for _, m := range q.Modules {
		for _, question := range m.Questions {
			p.TotalQuestions++
			if question.Required || m.Required {
				// Module-level required cascades to its questions for this
				// count only.
				p.RequiredCount++
			}
			if IsValidAnswer(answers[question.ID]) {
				p.AnsweredCount++
			}
		}
	}

	if p.TotalQuestions > 0 {
		p.Percent = int(math.Round(float64(p.AnsweredCount) / float64(p.TotalQuestions) * 100))
	}

	p.EstimatedMinutesRemaining = estimateMinutesRemaining(q, moduleIdx, questionIdx)
	return p
}

func estimateMinutesRemaining(q *model.Questionnaire, moduleIdx, questionIdx int) int {
	if moduleIdx < 0 || moduleIdx >= len(q.Modules) {
		return 0
	}

	current := q.Modules[moduleIdx]
	remaining := 0.0
	if n := len(current.Questions); n > 0 {
		perQuestion := float64(current.EstimatedMinutes) / float64(n)
		remaining = perQuestion * float64(n-questionIdx)
	}
	for _, m := range q.Modules[moduleIdx+1:] {
		remaining += float64(m.EstimatedMinutes)
	}
	return int(math.Ceil(remaining))
}
