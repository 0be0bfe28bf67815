package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/sync/errgroup"

	"github.com/koltech/wallline/internal/config"
	"github.com/koltech/wallline/internal/database"
	"github.com/koltech/wallline/internal/jobqueue"
	"github.com/koltech/wallline/internal/linkpreview"
	"github.com/koltech/wallline/internal/media"
	postgresrepo "github.com/koltech/wallline/internal/repository/postgres"
	"github.com/koltech/wallline/internal/service"
	"github.com/koltech/wallline/internal/transport/http/handlers"
	"github.com/koltech/wallline/internal/transport/http/middleware"
	"github.com/koltech/wallline/internal/transport/ws"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := database.Connect(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()
	log.Println("Connected to database")

	// Redis (link preview cache)
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURL})
	defer redisClient.Close()

	// Repositories
	userRepo := postgresrepo.NewUserRepo(pool)
	wallRepo := postgresrepo.NewWallRepo(pool)
	joinRequestRepo := postgresrepo.NewJoinRequestRepo(pool)
	messageRepo := postgresrepo.NewMessageRepo(pool)
	reactionRepo := postgresrepo.NewReactionRepo(pool)
	notificationRepo := postgresrepo.NewNotificationRepo(pool)

	// WebSocket hub
	hub := ws.NewHub()
	notifier := ws.NewHubNotifier(hub)

	// Services
	authService := service.NewAuthService(userRepo, cfg.JWTSecret)
	notificationService := service.NewNotificationService(notificationRepo)
	wallService := service.NewWallService(wallRepo, messageRepo, joinRequestRepo, notificationService)
	joinRequestService := service.NewJoinRequestService(wallRepo, joinRequestRepo, notificationService)
	messageService := service.NewMessageService(messageRepo, wallRepo, reactionRepo, notificationService)
	commentService := service.NewCommentService(messageRepo, wallRepo, reactionRepo, notificationService)
	reactionService := service.NewReactionService(reactionRepo, messageRepo, wallRepo, notificationService)

	notificationService.SetNotifier(notifier)
	messageService.SetNotifier(notifier)
	commentService.SetNotifier(notifier)
	reactionService.SetNotifier(notifier)

	// Video pipeline
	transcoder := media.NewFFmpegTranscoder(cfg.FFmpegPath, cfg.MediaRoot, cfg.PublicBaseURL)
	queue, err := jobqueue.NewQueue(pool, messageRepo, transcoder, notifier)
	if err != nil {
		log.Fatal(err)
	}
	messageService.SetVideoProcessor(queue)

	// Link preview
	previewCache := linkpreview.NewRedisCache(redisClient, cfg.LinkPreviewTTL)
	previewResolver := linkpreview.NewResolver(previewCache)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	wallHandler := handlers.NewWallHandler(wallService)
	joinRequestHandler := handlers.NewJoinRequestHandler(joinRequestService)
	messageHandler := handlers.NewMessageHandler(messageService, reactionService)
	commentHandler := handlers.NewCommentHandler(commentService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	linkPreviewHandler := handlers.NewLinkPreviewHandler(previewResolver)

	// Middleware
	auth := middleware.Auth(cfg.JWTSecret)
	optionalAuth := middleware.OptionalAuth(cfg.JWTSecret)

	// Routes
	mux := http.NewServeMux()

	// Public
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	// Walls
	mux.Handle("POST /api/v1/walls", auth(http.HandlerFunc(wallHandler.Create)))
	mux.Handle("GET /api/v1/walls", optionalAuth(http.HandlerFunc(wallHandler.List)))
	mux.Handle("GET /api/v1/walls/{id}", optionalAuth(http.HandlerFunc(wallHandler.Get)))
	mux.Handle("PATCH /api/v1/walls/{id}", auth(http.HandlerFunc(wallHandler.Update)))
	mux.Handle("DELETE /api/v1/walls/{id}", auth(http.HandlerFunc(wallHandler.Delete)))
	mux.Handle("POST /api/v1/walls/{id}/leave", auth(http.HandlerFunc(wallHandler.Leave)))

	// Wall members
	mux.Handle("GET /api/v1/walls/{id}/members", optionalAuth(http.HandlerFunc(wallHandler.ListMembers)))
	mux.Handle("DELETE /api/v1/walls/{id}/members/{userId}", auth(http.HandlerFunc(wallHandler.RemoveMember)))
	mux.Handle("POST /api/v1/walls/{id}/admins/{userId}", auth(http.HandlerFunc(wallHandler.PromoteAdmin)))

	// Join requests
	mux.Handle("POST /api/v1/walls/{id}/join", auth(http.HandlerFunc(joinRequestHandler.Join)))
	mux.Handle("GET /api/v1/walls/{id}/requests", auth(http.HandlerFunc(joinRequestHandler.ListPending)))
	mux.Handle("POST /api/v1/walls/{id}/requests/{requestId}/respond", auth(http.HandlerFunc(joinRequestHandler.Respond)))

	// Messages
	mux.Handle("POST /api/v1/walls/{id}/messages", auth(http.HandlerFunc(messageHandler.Create)))
	mux.Handle("GET /api/v1/walls/{id}/messages", optionalAuth(http.HandlerFunc(messageHandler.List)))
	mux.Handle("PUT /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/messages/{id}", auth(http.HandlerFunc(messageHandler.Delete)))
	mux.Handle("POST /api/v1/messages/{id}/pin", auth(http.HandlerFunc(messageHandler.SetPinned)))
	mux.Handle("POST /api/v1/messages/{id}/report", auth(http.HandlerFunc(messageHandler.Report)))
	mux.Handle("POST /api/v1/messages/{id}/react", auth(http.HandlerFunc(messageHandler.React)))
	mux.Handle("POST /api/v1/messages/{id}/attachments/{index}/cancel", auth(http.HandlerFunc(messageHandler.CancelVideo)))

	// Comments (share the message id space, so edit/delete/react reuse the
	// message handlers)
	mux.Handle("POST /api/v1/messages/{id}/comments", auth(http.HandlerFunc(commentHandler.Add)))
	mux.Handle("GET /api/v1/messages/{id}/comments", optionalAuth(http.HandlerFunc(commentHandler.List)))
	mux.Handle("PUT /api/v1/comments/{id}", auth(http.HandlerFunc(messageHandler.Edit)))
	mux.Handle("DELETE /api/v1/comments/{id}", auth(http.HandlerFunc(messageHandler.Delete)))
	mux.Handle("POST /api/v1/comments/{id}/react", auth(http.HandlerFunc(messageHandler.React)))

	// Notifications
	mux.Handle("GET /api/v1/notifications", auth(http.HandlerFunc(notificationHandler.List)))
	mux.Handle("POST /api/v1/notifications/{id}/read", auth(http.HandlerFunc(notificationHandler.MarkRead)))

	// Link preview (compose-time helper)
	mux.Handle("GET /api/v1/link-preview", auth(http.HandlerFunc(linkPreviewHandler.Preview)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.ServeWS(hub, cfg.JWTSecret))

	// Static media (uploads + HLS renditions)
	mux.Handle("GET /media/", http.StripPrefix("/media/", http.FileServer(http.Dir(cfg.MediaRoot))))

	go hub.Run()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: middleware.CORS(mux),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := queue.Start(gctx); err != nil {
			return fmt.Errorf("starting job queue: %w", err)
		}
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return queue.Stop(stopCtx)
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Println("Server stopped")
}
