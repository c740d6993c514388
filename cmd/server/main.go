package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"

	"github.com/Kent0710/classroom-announcement-app/internal/auth"
	"github.com/Kent0710/classroom-announcement-app/internal/config"
	"github.com/Kent0710/classroom-announcement-app/internal/database"
	"github.com/Kent0710/classroom-announcement-app/internal/handlers"
	"github.com/Kent0710/classroom-announcement-app/internal/live"
	"github.com/Kent0710/classroom-announcement-app/internal/middleware"
	redisc "github.com/Kent0710/classroom-announcement-app/internal/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(logger)

	slog.Info("starting classroom server", "env", cfg.AppEnv)

	// Initialize database
	db, err := database.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("connected to PostgreSQL")

	if err := database.RunMigrations(db); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations complete")

	// Initialize Redis
	redisClient, err := redisc.InitRedis(cfg.RedisURL)
	if err != nil {
		slog.Error("failed to init Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	slog.Info("connected to Redis")

	// Live event hub. Every instance subscribes to the room channels and
	// delivers events to its own WebSocket clients.
	hub := live.NewHub(db, redisClient)
	go hub.Run()
	go redisc.SubscribeRooms(redisClient, hub.Deliver)

	// Set up router
	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.CORS(cfg.CORSOrigin))

	// Public routes. Login and registration share a per-IP rate limit.
	authLimit := middleware.RateLimit(5, 10)
	router.HandleFunc("/health", handlers.Health).Methods("GET", "OPTIONS")
	router.Handle("/api/auth/register",
		authLimit(auth.RegisterHandler(db, redisClient, cfg.JWTSecret, cfg.TokenTTL))).Methods("POST", "OPTIONS")
	router.Handle("/api/auth/login",
		authLimit(auth.LoginHandler(db, redisClient, cfg.JWTSecret, cfg.TokenTTL))).Methods("POST", "OPTIONS")

	// WebSocket
	router.HandleFunc("/ws", live.ServeWS(hub, db, redisClient, cfg.JWTSecret)).Methods("GET")

	// Protected routes
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(auth.JWTMiddleware(cfg.JWTSecret, redisClient))

	protected.HandleFunc("/auth/logout", auth.LogoutHandler(redisClient)).Methods("POST")
	protected.HandleFunc("/auth/me", auth.MeHandler(db)).Methods("GET")
	protected.HandleFunc("/account", handlers.GetAccount(db)).Methods("GET")

	protected.HandleFunc("/rooms", handlers.ListRooms(db)).Methods("GET")
	protected.HandleFunc("/rooms", handlers.CreateRoom(db)).Methods("POST")
	protected.HandleFunc("/rooms/join", handlers.JoinRoom(db, hub)).Methods("POST")
	protected.HandleFunc("/rooms/{id}", handlers.GetRoom(db, redisClient)).Methods("GET")
	protected.HandleFunc("/rooms/{id}", handlers.UpdateRoom(db, hub)).Methods("PUT")
	protected.HandleFunc("/rooms/{id}", handlers.DeleteRoom(db, hub)).Methods("DELETE")
	protected.HandleFunc("/rooms/{id}/leave", handlers.LeaveRoom(db, hub)).Methods("DELETE")
	protected.HandleFunc("/rooms/{id}/members/{userID}", handlers.KickMember(db, hub)).Methods("DELETE")
	protected.HandleFunc("/rooms/{id}/members/{userID}/promote", handlers.PromoteMember(db, hub)).Methods("POST")
	protected.HandleFunc("/rooms/{id}/members/{userID}/demote", handlers.DemoteMember(db, hub)).Methods("POST")
	protected.HandleFunc("/rooms/{id}/announcements", handlers.ListAnnouncements(db)).Methods("GET")
	protected.HandleFunc("/rooms/{id}/announcements", handlers.CreateAnnouncement(db, hub)).Methods("POST")
	protected.HandleFunc("/announcements/{id}", handlers.DeleteAnnouncement(db, hub)).Methods("DELETE")
	protected.HandleFunc("/announcements/{id}/reactions", handlers.ToggleReaction(db, hub)).Methods("POST")

	// HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutting down", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	hub.Shutdown()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("forced shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}
