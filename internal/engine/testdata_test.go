package engine

import "intakeflow/internal/model"

// twoModuleQuestionnaire: "profile" (3 questions, required module) followed
// by "details" (2 questions, optional module). Five questions total keeps the
// percent math easy: each answer is worth 20%.
func twoModuleQuestionnaire() *model.Questionnaire {
	return &model.Questionnaire{
		ID:    "test-intake",
		Title: "Test Intake",
		Modules: []model.Module{
			{
				ID:               "profile",
				Title:            "Profile",
				EstimatedMinutes: 6,
				Required:         true,
				Questions: []model.Question{
					{ID: "p1", Type: model.QuestionTypeText, Prompt: "Target role?", Required: true},
					{ID: "p2", Type: model.QuestionTypeTextarea, Prompt: "Anything else?"},
					{ID: "p3", Type: model.QuestionTypeCurrency, Prompt: "Salary floor?", Required: true},
				},
			},
			{
				ID:               "details",
				Title:            "Details",
				EstimatedMinutes: 4,
				Questions: []model.Question{
					{ID: "d1", Type: model.QuestionTypeRadio, Prompt: "Work mode?", Required: true},
					{ID: "d2", Type: model.QuestionTypeTextarea, Prompt: "Dealbreakers?"},
				},
			},
		},
	}
}
