package main

import (
	"log"
	"time"

	"thirteen-platform/backend/internal/auth"
	"thirteen-platform/backend/internal/bot"
	"thirteen-platform/backend/internal/db"
	"thirteen-platform/backend/internal/middleware"
	"thirteen-platform/backend/internal/redis"
	"thirteen-platform/backend/internal/server/handlers"
	"thirteen-platform/backend/internal/server/websocket"
	"thirteen-platform/backend/internal/session"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Server holds all dependencies for the game platform server
type Server struct {
	config Config
	db     *db.DB
	cache  *redis.Client

	// Services
	authService *auth.Service
	store       *session.Store
	sync        *session.Sync
	manager     *websocket.Manager
	bots        *bot.Runner
	rateLimiter *middleware.RateLimiter
}

// NewServer creates and initializes a new Server instance
func NewServer(config Config) (*Server, error) {
	database, err := db.New(config.DBConfig)
	if err != nil {
		return nil, err
	}

	cache, err := redis.New(config.RedisConfig)
	if err != nil {
		return nil, err
	}

	manager := websocket.NewManager()
	store := session.NewStore(cache)
	recorder := session.NewGormRecorder(database.DB)
	syncer := session.NewSync(store, manager, recorder)

	return &Server{
		config:      config,
		db:          database,
		cache:       cache,
		authService: auth.NewService(config.JWTSecret),
		store:       store,
		sync:        syncer,
		manager:     manager,
		bots:        bot.NewRunner(syncer, config.BotDelay),
		rateLimiter: middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig),
	}, nil
}

// Run starts the server and blocks until it exits
func (s *Server) Run() error {
	if s.config.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := s.setupRoutes()

	log.Printf("Server starting on port %s", s.config.ServerPort)
	return r.Run(":" + s.config.ServerPort)
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *gin.Engine {
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return true // Allow all origins
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Content-Type", "Authorization", "X-Requested-With", "Accept", "Origin"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400 * time.Second,
	}
	r.Use(cors.New(corsConfig))

	api := r.Group("/api")
	api.Use(s.rateLimiter.GinMiddleware())
	{
		api.POST("/sessions", func(c *gin.Context) {
			handlers.HandleCreateSession(c, s.db, s.store, s.authService)
		})
		api.GET("/health", func(c *gin.Context) {
			handlers.HandleHealth(c, s.db, s.cache)
		})
	}

	// WebSocket endpoint (handles auth internally)
	r.GET("/ws/:session_id/:player_id", func(c *gin.Context) {
		handlers.HandleWebSocket(c, handlers.SocketDeps{
			Database: s.db,
			Store:    s.store,
			Sync:     s.sync,
			Manager:  s.manager,
			Bots:     s.bots,
			Auth:     s.authService,
		})
	})

	return r
}

// Close releases external connections
func (s *Server) Close() {
	s.rateLimiter.Stop()
	if err := s.cache.Close(); err != nil {
		log.Printf("[REDIS] close error: %v", err)
	}
}
