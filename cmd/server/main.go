package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/redis/go-redis/v9"

	"github.com/dkovacs/whisper/internal/config"
	"github.com/dkovacs/whisper/internal/database"
	"github.com/dkovacs/whisper/internal/logger"
	"github.com/dkovacs/whisper/internal/media"
	"github.com/dkovacs/whisper/internal/presence"
	postgresrepo "github.com/dkovacs/whisper/internal/repository/postgres"
	"github.com/dkovacs/whisper/internal/service"
	"github.com/dkovacs/whisper/internal/transport/http/handlers"
	"github.com/dkovacs/whisper/internal/transport/http/middleware"
	"github.com/dkovacs/whisper/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Development)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	// Database
	pool, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalw("connect database", "err", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	// Redis holds only the best-effort last-seen snapshot; the service
	// runs fine without it.
	var lastSeen *presence.LastSeenStore
	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warnw("redis unavailable, presence snapshots disabled", "err", err)
	} else {
		lastSeen = presence.NewLastSeenStore(rdb, "whisper")
	}

	// Media storage
	var uploader media.Uploader
	if cfg.S3Bucket != "" {
		s3up, err := media.NewS3Uploader(ctx, cfg.S3Region, cfg.S3Bucket)
		if err != nil {
			log.Fatalw("init s3 uploader", "err", err)
		}
		uploader = s3up
	} else {
		log.Warn("S3_BUCKET not set, media uploads disabled")
	}

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	userService := service.NewUserService(userRepo)
	messageService := service.NewMessageService(messageRepo, userRepo)
	chatService := service.NewChatService(messageRepo, userRepo)

	// Realtime
	registry := presence.NewRegistry()
	hub := ws.NewHub(registry, lastSeen, log)
	messageService.SetNotifier(ws.NewHubNotifier(hub))

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, log)
	userHandler := handlers.NewUserHandler(userService, uploader, log)
	messageHandler := handlers.NewMessageHandler(messageService, chatService, uploader, log)

	// Auth middleware
	auth := middleware.Auth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, messageService, log))

	// Protected - Users
	mux.Handle("POST /api/v1/auth/logout", auth(http.HandlerFunc(authHandler.Logout)))
	mux.Handle("GET /api/v1/users", auth(http.HandlerFunc(userHandler.List)))
	mux.Handle("GET /api/v1/users/me", auth(http.HandlerFunc(userHandler.Me)))
	mux.Handle("PUT /api/v1/users/me", auth(http.HandlerFunc(userHandler.UpdateMe)))
	mux.Handle("GET /api/v1/users/{id}", auth(http.HandlerFunc(userHandler.Get)))
	mux.Handle("POST /api/v1/users/{id}/block", auth(http.HandlerFunc(userHandler.Block)))
	mux.Handle("DELETE /api/v1/users/{id}/block", auth(http.HandlerFunc(userHandler.Unblock)))

	// Protected - Messages
	mux.Handle("POST /api/v1/messages", auth(http.HandlerFunc(messageHandler.Send)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Hide)))
	mux.Handle("GET /api/v1/conversations", auth(http.HandlerFunc(messageHandler.ListConversations)))
	mux.Handle("GET /api/v1/conversations/{contactId}/messages", auth(http.HandlerFunc(messageHandler.GetConversation)))
	mux.Handle("POST /api/v1/conversations/{contactId}/read", auth(http.HandlerFunc(messageHandler.MarkRead)))
	mux.Handle("DELETE /api/v1/conversations/{contactId}", auth(http.HandlerFunc(messageHandler.DeleteConversation)))

	// Start server with CORS
	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	log.Infow("starting server", "addr", addr)
	log.Fatal(http.ListenAndServe(addr, middleware.CORS(mux)))
}
