package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"quizclash/internal/cache"
	"quizclash/internal/config"
	"quizclash/internal/repository"
	"quizclash/internal/service"
	"quizclash/internal/transport/rest"
	"quizclash/internal/transport/ws"
)

func main() {
	log.Println("started")
	ctx := context.Background()

	cfg := config.Load()

	if cfg.Supplier.IsEnabled() {
		log.Println("Question supplier: configured ✓")
	} else {
		log.Println("Question supplier: NOT SET (client-provided questions only)")
	}

	// MongoDB connection
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB:", err)
	}
	defer mongoClient.Disconnect(ctx)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mongoClient.Ping(pingCtx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB:", err)
	}
	log.Println("Connected to MongoDB")

	db := mongoClient.Database(cfg.MongoDB)

	// Redis connection
	redisAddr := strings.TrimPrefix(cfg.RedisAddr, "redis://")
	rdb := redis.NewClient(&redis.Options{
		Addr: redisAddr,
	})
	defer rdb.Close()

	if _, err := rdb.Ping(ctx).Result(); err != nil {
		log.Fatal("Failed to ping Redis:", err)
	}
	log.Println("Connected to Redis")

	// Initialize WebSocket hub
	wsHub := ws.NewHub()

	// Initialize repositories
	gameRepo := repository.NewGameRepo(db)
	userRepo := repository.NewUserRepo(mongoClient, db)
	resultRepo := repository.NewResultRepo(db)

	// Initialize caches
	gameCache := cache.NewGameCache(rdb)
	leaderboard := cache.NewLeaderboardCache(rdb)

	// Initialize services
	authSvc := service.NewAuthService(cfg.JWTSecret)
	statsSvc := service.NewStatsService(resultRepo, userRepo)
	supplierSvc := service.NewSupplierService(cfg.Supplier)
	gameSvc := service.NewGameService(gameRepo, gameCache, leaderboard, statsSvc, supplierSvc, cfg.Game)

	// Inject broadcaster (wsHub implements service.Broadcaster)
	gameSvc.SetBroadcaster(wsHub)
	wsHub.OnRoomEmpty(gameSvc.AbandonGame)

	// Create router with container
	container := &rest.Container{
		AuthService:  authSvc,
		GameService:  gameSvc,
		StatsService: statsSvc,
		Leaderboard:  leaderboard,
		WSHub:        wsHub,
	}

	router := rest.NewRouter(container)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: router,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.HTTPPort)
		log.Println("Endpoints:")
		log.Println("  POST /v1/auth/login")
		log.Println("  GET  /v1/games/{code}")
		log.Println("  GET  /v1/games/{code}/leaderboard")
		log.Println("  GET  /v1/users/{uid}/results")
		log.Println("  GET  /v1/users/{uid}/stats")
		log.Println("  WS   /v1/ws")

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

	log.Println("Server exited")
}
