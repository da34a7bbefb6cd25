package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"intakeflow/config"
	"intakeflow/internal/app"
	"intakeflow/internal/cache"
	"intakeflow/internal/repository"
	"intakeflow/internal/service"
	"intakeflow/internal/transport/rest"
	"intakeflow/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	// Ping MongoDB
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := cfg.RedisAddr
	// Remove redis:// prefix if present
	if len(redisAddr) > 8 && redisAddr[:8] == "redis://" {
		redisAddr = redisAddr[8:]
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	// Ping Redis
	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()
	log.Println("WebSocket hub started")

	// Initialize repositories and caches
	application := &app.App{
		QuestionnaireRepo: repository.NewQuestionnaireRepo(db),
		SessionRepo:       repository.NewSessionRepo(db),
		SessionCache:      cache.NewSessionCache(rdb),
	}

	// Initialize services
	authSvc := service.NewAuthService()
	sessionSvc := service.NewSessionService(application.QuestionnaireRepo, application.SessionRepo, application.SessionCache)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	sessionSvc.SetBroadcaster(wsHub)

	sessionSvc.SetOnComplete(func(clientID, questionnaireID string, answers map[string]interface{}) {
		log.Printf("Intake completed: client=%s questionnaire=%s answers=%d",
			clientID, questionnaireID, len(answers))
	})

	// Create router with container
	container := &rest.Container{
		AuthService:       authSvc,
		SessionService:    sessionSvc,
		QuestionnaireRepo: application.QuestionnaireRepo,
		WSHub:             wsHub,
	}

	router := rest.NewRouter(container)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  POST/GET /v1/questionnaires")
		log.Println("  POST /v1/questionnaires/{id}/intake-links")
		log.Println("  GET  /v1/session")
		log.Println("  PUT  /v1/session/answers/{questionId}")
		log.Println("  POST /v1/session/{begin,advance,back,skip,sync,submit,reset}")
		log.Println("  WS   /v1/ws/intake")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe:", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	// Flush and stop every live session before exiting
	sessionSvc.Shutdown()

	log.Println("Server exited")
}
