package rest

import (
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"quizclash/internal/cache"
	"quizclash/internal/service"
	"quizclash/internal/transport/rest/handler"
	"quizclash/internal/transport/rest/middleware"
	"quizclash/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService  *service.AuthService
	GameService  *service.GameService
	StatsService *service.StatsService
	Leaderboard  cache.LeaderboardCache
	WSHub        *ws.Hub
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService, c.Leaderboard)
	userHandler := handler.NewUserHandler(c.StatsService)
	wsHandler := ws.NewHandler(c.WSHub, c.GameService, c.AuthService)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	// WebSocket route (public with token in query param)
	v1.HandleFunc("/ws", wsHandler.Serve).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Authenticated routes
	userRoutes := v1.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/games/{code}", gameHandler.Get).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/games/{code}/leaderboard", gameHandler.Leaderboard).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/users/{uid}/results", userHandler.Results).Methods("GET", "OPTIONS")
	userRoutes.HandleFunc("/users/{uid}/stats", userHandler.Stats).Methods("GET", "OPTIONS")

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
