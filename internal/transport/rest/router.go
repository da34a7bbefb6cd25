package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"intakeflow/internal/repository"
	"intakeflow/internal/service"
	"intakeflow/internal/transport/rest/handler"
	"intakeflow/internal/transport/rest/middleware"
	"intakeflow/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService       *service.AuthService
	SessionService    *service.SessionService
	QuestionnaireRepo repository.QuestionnaireRepo
	WSHub             *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	questionnaireHandler := handler.NewQuestionnaireHandler(c.QuestionnaireRepo, c.AuthService)
	sessionHandler := handler.NewSessionHandler(c.SessionService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws/intake", wsHandler.IntakeWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Admin routes (require admin auth)
	adminRoutes := v1.NewRoute().Subrouter()
	adminRoutes.Use(authMW.RequireAdmin)

	adminRoutes.HandleFunc("/questionnaires", questionnaireHandler.Create).Methods("POST", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires", questionnaireHandler.List).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.Get).Methods("GET", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.Update).Methods("PUT", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{questionnaireId}", questionnaireHandler.Delete).Methods("DELETE", "OPTIONS")
	adminRoutes.HandleFunc("/questionnaires/{questionnaireId}/intake-links", questionnaireHandler.CreateIntakeLink).Methods("POST", "OPTIONS")

	// Client routes (require intake token)
	intakeRoutes := v1.NewRoute().Subrouter()
	intakeRoutes.Use(authMW.RequireIntake)

	intakeRoutes.HandleFunc("/session", sessionHandler.Get).Methods("GET", "OPTIONS")
	intakeRoutes.HandleFunc("/session/begin", sessionHandler.Begin).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/answers/{questionId}", sessionHandler.Answer).Methods("PUT", "OPTIONS")
	intakeRoutes.HandleFunc("/session/advance", sessionHandler.Advance).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/back", sessionHandler.Back).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/skip", sessionHandler.Skip).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/modules/{index}/select", sessionHandler.SelectModule).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/milestone/dismiss", sessionHandler.DismissMilestone).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/sync", sessionHandler.Sync).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/submit", sessionHandler.Submit).Methods("POST", "OPTIONS")
	intakeRoutes.HandleFunc("/session/reset", sessionHandler.Reset).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
