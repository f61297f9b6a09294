// Package bootstrap loads configuration, wires every component together and
// owns the application lifecycle.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	httpHandler "project-hub/internal/handler/http"
	wsHandler "project-hub/internal/handler/websocket"
	"project-hub/internal/hub"
	"project-hub/internal/infra/fanout"
	gormpersistence "project-hub/internal/infra/persistence/gorm"
	"project-hub/internal/infra/setup"
	"project-hub/internal/middleware"
	"project-hub/internal/service"
	"project-hub/internal/worker"
)

// Config holds everything loaded from the environment.
type Config struct {
	DBUser          string
	DBPassword      string
	DBHost          string
	DBPort          string
	DBName          string
	RedisAddr       string
	RedisPassword   string
	RedisDB         int
	ServerPort      string
	LogLevel        string
	AppEnv          string
	KeyPrefix       string
	RateLimitMax    int
	RateLimitWindow time.Duration
}

// LoadConfig reads configuration from the environment, consulting a .env file
// first when one exists.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		ServerPort:    os.Getenv("SERVER_PORT"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		AppEnv:        os.Getenv("APP_ENV"),
		KeyPrefix:     os.Getenv("REDIS_KEY_PREFIX"),

		RateLimitMax:    100,
		RateLimitWindow: 1 * time.Second,
	}
	cfg.RedisDB, _ = strconv.Atoi(os.Getenv("REDIS_DB"))

	if cfg.ServerPort == "" {
		cfg.ServerPort = "8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = "development"
	}
	if cfg.KeyPrefix == "" {
		cfg.KeyPrefix = "ph:"
	}
	if cfg.RedisAddr == "" {
		return nil, fmt.Errorf("environment variable REDIS_ADDR must be set")
	}
	if cfg.DBName == "" {
		return nil, fmt.Errorf("environment variable DB_NAME must be set")
	}

	if _, err := logrus.ParseLevel(cfg.LogLevel); err != nil {
		logrus.Warnf("Invalid LOG_LEVEL '%s', using default 'info'", cfg.LogLevel)
		cfg.LogLevel = "info"
	}

	return cfg, nil
}

// App holds the assembled application components.
type App struct {
	Config      *Config
	Log         *logrus.Logger
	DB          *gorm.DB
	RedisClient *redis.Client
	AsynqClient *asynq.Client
	Worker      *worker.WorkerServer
	Hub         *hub.Hub
	HTTPServer  *http.Server

	hubCancel context.CancelFunc
}

// NewApp loads configuration and initializes every component.
func NewApp() (*App, error) {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, err
	}

	log := logrus.StandardLogger()
	if cfg.AppEnv == "production" {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339Nano})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, ForceColors: true})
	}
	logLevel, _ := logrus.ParseLevel(cfg.LogLevel)
	log.SetLevel(logLevel)
	log.SetOutput(os.Stdout)
	log.Infof("Logger initialized (Level: %s)", logLevel.String())

	log.Info("Initializing infrastructure...")
	db, err := setup.InitDB(setup.DBConfig{
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init DB: %w", err)
	}
	if err := setup.MigrateDB(db); err != nil {
		return nil, fmt.Errorf("failed to migrate DB: %w", err)
	}
	log.Info("Database initialized and migrated")

	redisClient, err := setup.InitRedis(setup.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init Redis: %w", err)
	}
	log.Info("Redis client initialized")

	redisClientOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}
	asynqClient := asynq.NewClient(redisClientOpt)
	log.Info("Asynq client initialized")

	log.Info("Initializing repositories...")
	userRepo := gormpersistence.NewGormUserRepository(db)
	tokenRepo := gormpersistence.NewGormTokenRepository(db)
	projectRepo := gormpersistence.NewGormProjectRepository(db)
	labelRepo := gormpersistence.NewGormLabelRepository(db)
	epicRepo := gormpersistence.NewGormEpicRepository(db)
	sprintRepo := gormpersistence.NewGormSprintRepository(db)
	issueRepo := gormpersistence.NewGormIssueRepository(db)
	notifRepo := gormpersistence.NewGormNotificationRepository(db)
	chatRepo := gormpersistence.NewGormChatRepository(db)
	log.Info("Repositories initialized")

	publisher := fanout.NewRedisPublisher(redisClient, cfg.KeyPrefix)

	log.Info("Initializing services...")
	authService := service.NewAuthService(userRepo, tokenRepo)
	userService := service.NewUserService(userRepo)
	notifService := service.NewNotificationService(notifRepo, publisher, asynqClient)
	projectService := service.NewProjectService(projectRepo, labelRepo)
	epicService := service.NewEpicService(epicRepo, projectRepo)
	sprintService := service.NewSprintService(sprintRepo, issueRepo, projectRepo, notifService)
	issueService := service.NewIssueService(issueRepo, projectRepo, labelRepo, sprintRepo, epicRepo, userRepo, notifService)
	chatService := service.NewChatService(chatRepo, userRepo, publisher)
	reportService := service.NewReportService(projectRepo, sprintRepo, issueRepo)
	log.Info("Services initialized")

	hubInstance := hub.NewHub(redisClient, cfg.KeyPrefix)
	log.Info("Hub initialized")

	log.Info("Initializing handlers...")
	authHandler := httpHandler.NewAuthHandler(authService)
	userHandler := httpHandler.NewUserHandler(userService)
	projectHandler := httpHandler.NewProjectHandler(projectService, userService)
	epicHandler := httpHandler.NewEpicHandler(epicService)
	sprintHandler := httpHandler.NewSprintHandler(sprintService)
	issueHandler := httpHandler.NewIssueHandler(issueService)
	notifHandler := httpHandler.NewNotificationHandler(notifService)
	chatHandler := httpHandler.NewChatHandler(chatService)
	reportHandler := httpHandler.NewReportHandler(reportService)
	socketHandler := wsHandler.NewWebSocketHandler(hubInstance, authService, chatService)
	log.Info("Handlers initialized")

	workerServer := worker.NewWorkerServer(redisClientOpt, notifService, sprintService)
	log.Info("Worker server initialized")

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(log))
	router.Use(corsMiddleware())
	router.Use(middleware.RateLimit(redisClient, cfg.RateLimitMax, cfg.RateLimitWindow))

	authRequired := middleware.Auth(authService)

	api := router.Group("/api")
	{
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/logout", authRequired, authHandler.Logout)
			authRoutes.GET("/me", authRequired, authHandler.Me)
		}

		users := api.Group("/users", authRequired)
		{
			users.GET("", userHandler.List)
			users.POST("", userHandler.Create)
			users.GET("/:uid", userHandler.Get)
			users.PATCH("/:uid", userHandler.Update)
			users.DELETE("/:uid", userHandler.Delete)
		}

		projects := api.Group("/projects", authRequired)
		{
			projects.GET("", projectHandler.List)
			projects.POST("", projectHandler.Create)
			projects.GET("/:uid", projectHandler.Get)
			projects.PATCH("/:uid", projectHandler.Update)
			projects.DELETE("/:uid", projectHandler.Delete)
		}

		labels := api.Group("/labels", authRequired)
		{
			labels.GET("", projectHandler.ListLabels)
			labels.POST("", projectHandler.CreateLabel)
		}

		epics := api.Group("/epics", authRequired)
		{
			epics.GET("", epicHandler.List)
			epics.POST("", epicHandler.Create)
			epics.GET("/:uid", epicHandler.Get)
			epics.PATCH("/:uid", epicHandler.Update)
			epics.DELETE("/:uid", epicHandler.Delete)
		}

		sprints := api.Group("/sprints", authRequired)
		{
			sprints.GET("", sprintHandler.List)
			sprints.POST("", sprintHandler.Create)
			sprints.GET("/:uid", sprintHandler.Get)
			sprints.PATCH("/:uid", sprintHandler.Update)
			sprints.DELETE("/:uid", sprintHandler.Delete)
			sprints.POST("/:uid/start", sprintHandler.Start)
			sprints.POST("/:uid/complete", sprintHandler.Complete)
		}

		issues := api.Group("/issues", authRequired)
		{
			issues.GET("", issueHandler.List)
			issues.POST("", issueHandler.Create)
			issues.GET("/:uid", issueHandler.Get)
			issues.PATCH("/:uid", issueHandler.Update)
			issues.DELETE("/:uid", issueHandler.Delete)
			issues.POST("/:uid/move", issueHandler.Move)
			issues.POST("/:uid/comments", issueHandler.AddComment)
			issues.PATCH("/:uid/comments/:commentUid", issueHandler.EditComment)
			issues.POST("/:uid/log-time", issueHandler.LogTime)
			issues.POST("/:uid/watch", issueHandler.Watch)
			issues.DELETE("/:uid/watch", issueHandler.Unwatch)
			issues.POST("/:uid/links", issueHandler.AddLink)
			issues.DELETE("/:uid/links/:linkUid", issueHandler.RemoveLink)
		}

		notifications := api.Group("/notifications", authRequired)
		{
			notifications.GET("", notifHandler.List)
			notifications.GET("/unread-count", notifHandler.UnreadCount)
			notifications.POST("/read-all", notifHandler.MarkAllRead)
			notifications.POST("/:uid/read", notifHandler.MarkRead)
		}

		chat := api.Group("/chat", authRequired)
		{
			chat.GET("/rooms", chatHandler.ListRooms)
			chat.POST("/rooms", chatHandler.CreateRoom)
			chat.POST("/rooms/:uid/participants", chatHandler.AddParticipant)
			chat.GET("/rooms/:uid/messages", chatHandler.ListMessages)
			chat.POST("/rooms/:uid/messages", chatHandler.PostMessage)
			chat.PATCH("/rooms/:uid/messages/:messageUid", chatHandler.EditMessage)
			chat.DELETE("/rooms/:uid/messages/:messageUid", chatHandler.DeleteMessage)
			chat.POST("/rooms/:uid/read", chatHandler.MarkRead)
		}

		reports := api.Group("/reports", authRequired)
		{
			reports.GET("/projects/:uid/dashboard", reportHandler.Dashboard)
			reports.GET("/projects/:uid/velocity", reportHandler.Velocity)
			reports.GET("/sprints/:uid/burndown", reportHandler.Burndown)
		}
	}

	// WebSocket endpoints authenticate via ?token= inside the handler so the
	// browser WebSocket API can connect without custom headers.
	ws := router.Group("/ws")
	{
		ws.GET("/notifications", socketHandler.HandleNotifications)
		ws.GET("/chat/:roomUid", socketHandler.HandleChat)
	}

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	log.Info("Router setup complete")

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: router,
	}

	return &App{
		Config:      cfg,
		Log:         log,
		DB:          db,
		RedisClient: redisClient,
		AsynqClient: asynqClient,
		Worker:      workerServer,
		Hub:         hubInstance,
		HTTPServer:  httpServer,
	}, nil
}

// Start launches the hub, the worker server and the HTTP server.
func (a *App) Start() {
	a.Log.Info("Starting application background routines...")

	hubCtx, cancel := context.WithCancel(context.Background())
	a.hubCancel = cancel
	go a.Hub.Run(hubCtx)
	a.Log.Info("Hub routine started")

	go a.Worker.Start()
	a.Log.Info("Worker server routine started")

	go func() {
		a.Log.Infof("HTTP server listening on %s", a.HTTPServer.Addr)
		if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Log.Fatalf("Failed to start HTTP server: %v", err)
		}
		a.Log.Info("HTTP server stopped listening.")
	}()
}

// Shutdown stops components in reverse dependency order.
func (a *App) Shutdown() {
	a.Log.Info("Shutting down application...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.HTTPServer.Shutdown(ctx); err != nil {
		a.Log.Errorf("Error shutting down HTTP server: %v", err)
	} else {
		a.Log.Info("HTTP server shut down gracefully.")
	}

	if a.hubCancel != nil {
		a.hubCancel()
	}
	a.Hub.Shutdown()
	a.Log.Info("Hub shut down.")

	a.Worker.Shutdown()

	if err := a.AsynqClient.Close(); err != nil {
		a.Log.Errorf("Error closing Asynq client: %v", err)
	}
	if err := a.RedisClient.Close(); err != nil {
		a.Log.Errorf("Error closing Redis connection: %v", err)
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.Log.Errorf("Error closing database connection: %v", err)
		}
	}

	a.Log.Info("Application shutdown complete.")
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		allowedOrigin := os.Getenv("CORS_ALLOWED_ORIGIN")
		if allowedOrigin == "" {
			allowedOrigin = "http://localhost:3000"
		}
		c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// LoggerMiddleware records one structured log line per request.
func LoggerMiddleware(log *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		c.Next()
		latency := time.Since(startTime)
		statusCode := c.Writer.Status()
		path := c.Request.URL.Path
		if c.Request.URL.RawQuery != "" {
			path = path + "?" + c.Request.URL.RawQuery
		}
		errorMessage := c.Errors.ByType(gin.ErrorTypePrivate).String()

		entry := log.WithFields(logrus.Fields{
			"status_code": statusCode,
			"latency_ms":  latency.Milliseconds(),
			"client_ip":   c.ClientIP(),
			"method":      c.Request.Method,
			"path":        path,
		})

		switch {
		case errorMessage != "":
			entry.Error(errorMessage)
		case statusCode >= 500:
			entry.Error("Server error")
		case statusCode >= 400:
			entry.Warn("Client error")
		default:
			entry.Info("Request handled")
		}
	}
}
