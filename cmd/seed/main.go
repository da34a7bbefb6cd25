package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intakeflow/internal/model"
	"intakeflow/internal/repository"
)

func main() {
	mongoURI := os.Getenv("MONGO_URI")
	if mongoURI == "" {
		mongoURI = "mongodb://localhost:27017"
	}
	mongoDB := os.Getenv("MONGO_DB")
	if mongoDB == "" {
		mongoDB = "intakeflow"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	repo := repository.NewQuestionnaireRepo(client.Database(mongoDB))

	q := discoveryQuestionnaire()
	if err := repo.Upsert(ctx, q); err != nil {
		log.Fatalf("Failed to seed questionnaire: %v", err)
	}

	fmt.Printf("Successfully seeded questionnaire '%s' (%s)\n", q.Title, q.ID)
}

func discoveryQuestionnaire() *model.Questionnaire {
	return &model.Questionnaire{
		ID:          "elite-discovery",
		Title:       "Elite Protocol Discovery Questionnaire",
		Subtitle:    "Strategic Career Positioning Diagnostic",
		PackageType: "Elite Protocol Package",
		ReadFirst: "Welcome to your Elite Protocol Discovery Questionnaire.\n\n" +
			"This questionnaire is designed to extract the precise details we need to position " +
			"you competitively in today's job market. Take your time. The more specific you are, " +
			"the more powerful your positioning.",
		IntroText: "Each module below focuses on a specific aspect of your career profile. " +
			"Required modules must be completed; optional modules can dramatically strengthen " +
			"your positioning if you have time.",
		Modules: []model.Module{
			{
				ID:               "guardrails",
				Title:            "Guardrails & Target Role",
				Subtitle:         "Defining Your Search Boundaries",
				Description:      "These questions establish the non-negotiables for your job search. They determine which opportunities we pursue and which we skip.",
				Icon:             "🎯",
				EstimatedMinutes: 5,
				Required:         true,
				Questions: []model.Question{
					{
						ID:          "q1-target-role",
						Type:        model.QuestionTypeTextarea,
						Prompt:      "What is your target job title or role?",
						Subtitle:    "Be specific. If you have multiple target titles, list them in order of preference.",
						WhyAsking:   "This determines the keyword strategy for your entire resume.",
						Placeholder: `e.g., "Senior Product Manager" or "Staff Software Engineer (Backend)"`,
						Required:    true,
						Critical:    true,
					},
					{
						ID:          "q2-industry",
						Type:        model.QuestionTypeTextarea,
						Prompt:      "What industry or industries are you targeting?",
						Subtitle:    "Include your current industry and any industries you're open to transitioning into.",
						WhyAsking:   "Industry context affects keyword selection, achievement framing, and employer targeting.",
						Placeholder: `e.g., "Healthcare technology, open to fintech"`,
						Required:    true,
						Critical:    true,
					},
					{
						ID:          "q3-salary-floor",
						Type:        model.QuestionTypeCurrency,
						Prompt:      "What is your absolute minimum base salary?",
						Subtitle:    `This is your "walk away" number. Below this, you would decline an offer.`,
						WhyAsking:   "This single number determines which employer tiers we target and how aggressive to be in positioning.",
						Placeholder: "85000",
						Required:    true,
						Critical:    true,
					},
					{
						ID:        "q5-remote-preference",
						Type:      model.QuestionTypeRadio,
						Prompt:    "Which best describes your work mode requirement?",
						WhyAsking: "Your remote preference determines what percentage of the market is accessible to you.",
						Required:  true,
						Critical:  true,
						Options: []model.QuestionOption{
							{Value: "strict-remote", Label: "100% remote, NO exceptions", Description: "No onsite ever, not even for annual meetings or training"},
							{Value: "remote-preferred", Label: "100% remote preferred, occasional onsite acceptable", Description: "e.g., 1-4 days/year for training or team meetings"},
							{Value: "hybrid", Label: "Hybrid acceptable", Description: "1-3 days/week onsite within commuting distance"},
							{Value: "onsite-ok", Label: "Onsite acceptable", Description: "I'm open to full-time in-office roles"},
						},
					},
					{
						ID:          "q6-location",
						Type:        model.QuestionTypeTextarea,
						Prompt:      "What is your geographic target?",
						Subtitle:    "For remote roles, list any location restrictions. For hybrid/onsite, list acceptable metro areas.",
						Placeholder: `e.g., "Remote anywhere in US" or "Phoenix metro, willing to commute up to 30 miles"`,
						Required:    true,
					},
				},
			},
			{
				ID:               "experience",
				Title:            "Current Role & Experience",
				Subtitle:         "Your Professional Foundation",
				Description:      "These questions capture what you actually DO, the daily work that becomes resume content.",
				Icon:             "💼",
				EstimatedMinutes: 10,
				Required:         true,
				Questions: []model.Question{
					{
						ID:          "q7-current-title",
						Type:        model.QuestionTypeText,
						Prompt:      "What is your current (or most recent) job title?",
						Placeholder: "e.g., Senior Software Engineer",
						Required:    true,
						Critical:    true,
					},
					{
						ID:          "q8-current-company",
						Type:        model.QuestionTypeText,
						Prompt:      "Current (or most recent) employer name?",
						Placeholder: "e.g., Acme Corporation",
						Required:    true,
					},
					{
						ID:        "q9-years-experience",
						Type:      model.QuestionTypeRadio,
						Prompt:    "How many years of professional experience do you have in your field?",
						WhyAsking: "Experience level affects positioning strategy.",
						Required:  true,
						Options: []model.QuestionOption{
							{Value: "0-2", Label: "0-2 years (Entry level)"},
							{Value: "3-5", Label: "3-5 years (Early career)"},
							{Value: "6-10", Label: "6-10 years (Mid-career)"},
							{Value: "11-15", Label: "11-15 years (Senior)"},
							{Value: "15+", Label: "15+ years (Executive/Expert)"},
						},
					},
					{
						ID:        "q10-daily-work",
						Type:      model.QuestionTypeTextarea,
						Prompt:    "Describe what you actually do on a typical workday.",
						Subtitle:  "Don't use job description language. Tell us what you really do.",
						WhyAsking: "This raw description often reveals valuable keywords and achievements that formal job descriptions miss.",
						Required:  true,
						Critical:  true,
					},
					{
						ID:        "q11-key-responsibilities",
						Type:      model.QuestionTypeTextarea,
						Prompt:    "What are your 3-5 most important responsibilities?",
						Subtitle:  "The things your boss would say are your core job functions.",
						WhyAsking: "These become the foundation of your resume bullet points.",
						Required:  true,
						Critical:  true,
					},
				},
			},
			{
				ID:               "skills",
				Title:            "Skills & Tools",
				Subtitle:         "ATS Keyword Capture",
				Description:      "These questions capture the specific technologies, methodologies, and tools that recruiters search for.",
				Icon:             "🔧",
				EstimatedMinutes: 8,
				Required:         true,
				Questions: []model.Question{
					{
						ID:          "q12-technical-skills",
						Type:        model.QuestionTypeTextarea,
						Prompt:      "List ALL technical skills, software, and tools you use professionally.",
						Subtitle:    "Include everything: programming languages, software platforms, methodologies, frameworks, certifications.",
						WhyAsking:   "ATS systems search for exact keyword matches. Missing a key skill can eliminate you before a human ever sees your application.",
						Placeholder: "e.g., Python, SQL, Tableau, Salesforce, Jira, Agile/Scrum, AWS",
						Required:    true,
						Critical:    true,
					},
					{
						ID:          "q14-certifications",
						Type:        model.QuestionTypeTextarea,
						Prompt:      "List any professional certifications, licenses, or credentials you hold.",
						Subtitle:    "Include expiration dates if applicable.",
						Placeholder: "e.g., PMP (active), AWS Solutions Architect Associate (expires 2026)",
						Required:    false,
					},
				},
			},
			{
				ID:               "metrics",
				Title:            "Metrics & Achievements",
				Subtitle:         "The Proof Layer",
				Description:      "Numbers transform generic claims into compelling evidence. Even estimates help.",
				Icon:             "📊",
				EstimatedMinutes: 10,
				Required:         true,
				Questions: []model.Question{
					{
						ID:        "q16-team-size",
						Type:      model.QuestionTypeTextarea,
						Prompt:    "What is the scope of your work?",
						Subtitle:  "Include team size, budget responsibility, customer/client volume, geographic scope, etc.",
						WhyAsking: "Scope metrics immediately communicate your level of responsibility.",
						Required:  true,
						Critical:  true,
					},
					{
						ID:        "q17-quantified-achievements",
						Type:      model.QuestionTypeTextarea,
						Prompt:    "List 3-5 achievements with NUMBERS.",
						Subtitle:  "Revenue generated, costs saved, efficiency improved, time reduced, growth achieved, etc.",
						WhyAsking: `Quantified achievements are far more compelling than generic claims. "Reduced processing time by 40%" beats "Improved efficiency".`,
						Required:  true,
						Critical:  true,
					},
				},
			},
			{
				ID:               "timeline",
				Title:            "Employment Timeline",
				Subtitle:         "Background Check Preparation",
				Description:      "Accurate timelines prevent background check complications and interview inconsistencies.",
				Icon:             "📅",
				EstimatedMinutes: 8,
				Required:         true,
				Questions: []model.Question{
					{
						ID:        "q23-work-history",
						Type:      model.QuestionTypeTextarea,
						Prompt:    "List your last 3-5 positions with exact dates (month/year).",
						Subtitle:  "Start with most recent. Include company name, title, and dates.",
						WhyAsking: "Background verification services flag date inconsistencies.",
						Required:  true,
						Critical:  true,
					},
					{
						ID:       "q24-gaps",
						Type:     model.QuestionTypeTextarea,
						Prompt:   "Do you have any employment gaps longer than 3 months?",
						Subtitle: "If yes, explain briefly. Common reasons: education, caregiving, health, travel, job search.",
						Required: true,
					},
				},
			},
			{
				ID:               "preferences",
				Title:            "Work Preferences & Culture",
				Subtitle:         "Employer Fit Optimization",
				Description:      "These questions help us target employers that match your work style.",
				Icon:             "🏢",
				EstimatedMinutes: 5,
				Required:         false,
				Questions: []model.Question{
					{
						ID:       "q30-company-size",
						Type:     model.QuestionTypeCheckbox,
						Prompt:   "What company sizes are you targeting?",
						Required: false,
						Options: []model.QuestionOption{
							{Value: "startup", Label: "Startup (1-50 employees)", Description: "High risk, high reward, wear many hats"},
							{Value: "growth", Label: "Growth stage (50-500 employees)", Description: "Scaling fast, building processes"},
							{Value: "midsize", Label: "Mid-size (500-5,000 employees)", Description: "Established but still agile"},
							{Value: "enterprise", Label: "Enterprise (5,000+ employees)", Description: "Stable, structured, specialized roles"},
							{Value: "no-preference", Label: "No preference"},
						},
					},
					{
						ID:       "q32-dealbreakers",
						Type:     model.QuestionTypeTextarea,
						Prompt:   "Any dealbreakers or companies to avoid?",
						Required: false,
					},
				},
			},
		},
	}
}
