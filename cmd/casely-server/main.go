package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/casely/casely/internal/cases"
	"github.com/casely/casely/internal/config"
	"github.com/casely/casely/internal/interview"
	"github.com/casely/casely/internal/responder"
	"github.com/casely/casely/internal/sessions"
	"github.com/casely/casely/internal/storage"
	"github.com/casely/casely/internal/transcript"
	"github.com/casely/casely/internal/users"
)

// AppState holds all application services
type AppState struct {
	Logger           *zap.Logger
	DB               *bun.DB
	SessionService   sessions.SessionManager
	CaseStore        cases.CaseStore
	UserService      users.UserService
	TranscriptStore  transcript.Store
	InterviewHandler *interview.Handler
}

func main() {
	// Load configuration
	config.Load()

	logger := initLogger()
	defer func() { _ = logger.Sync() }()

	as, err := newAppState(logger)
	if err != nil {
		logger.Fatal("Failed to initialize application state", zap.Error(err))
	}

	ctx := context.Background()
	if err := storage.Migrate(ctx, as.DB); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Create HTTP server
	router := setupRouter(as)

	addr := fmt.Sprintf("%s:%d", config.Http().Host, config.Http().Port)

	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	// Setup graceful shutdown
	done := setupSignalHandler(as, server, logger)

	logger.Info("Starting Casely server", zap.String("address", addr))

	err = server.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("Failed to start server", zap.Error(err))
	}

	<-done
	logger.Info("Server shutdown complete")
}

// newAppState creates and initializes the application state
func newAppState(logger *zap.Logger) (*AppState, error) {
	pgConfig := config.Postgres()

	logger.Info("Database configuration",
		zap.String("host", pgConfig.Host),
		zap.Int("port", pgConfig.Port),
		zap.String("database", pgConfig.Database),
		zap.String("user", pgConfig.User))

	db := storage.NewDB(pgConfig.DSN(), pgConfig.MaxOpenConnections)

	sessionStore := sessions.NewPostgresStore(db)
	caseStore := cases.NewPostgresStore(db)
	userStore := users.NewPostgresStore(db)
	turnStore := transcript.NewPostgresStore(db)

	sessionService := sessions.NewSessionService(sessionStore)
	userService := users.NewService(userStore)

	engine := interview.NewEngine(sessionService, turnStore, responder.NewPlaceholder(), logger)

	ivConfig := config.Interview()
	interviewHandler := interview.NewHandler(
		sessionService,
		caseStore,
		engine,
		logger,
		ivConfig.MaxMessageBytes,
		time.Duration(ivConfig.WriteTimeout)*time.Second,
	)

	return &AppState{
		Logger:           logger,
		DB:               db,
		SessionService:   sessionService,
		CaseStore:        caseStore,
		UserService:      userService,
		TranscriptStore:  turnStore,
		InterviewHandler: interviewHandler,
	}, nil
}

func initLogger() *zap.Logger {
	logConfig := config.Logger()

	var config zap.Config
	if logConfig.Format == "json" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	// Set log level
	switch logConfig.Level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	logger, err := config.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}

	return logger
}

func setupRouter(as *AppState) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.Http().CORSOrigins
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "online", "service": "Casely Platform API"})
	})

	router.GET("/health", func(c *gin.Context) {
		if err := as.DB.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"timestamp": time.Now().Format(time.RFC3339),
				"error":     err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().Format(time.RFC3339),
			"services": gin.H{
				"database": "healthy",
			},
		})
	})

	router.GET("/cases", listCases(as))
	router.POST("/sessions/start", startSession(as))
	router.GET("/sessions/:sessionId", getSessionSnapshot(as))

	router.GET("/ws/interview/:sessionId", as.InterviewHandler.Handle)

	return router
}

// StartSessionRequest is the payload of POST /sessions/start
type StartSessionRequest struct {
	UserID string `json:"user_id" binding:"required"`
	CaseID string `json:"case_id" binding:"required"`
}

func startSession(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req StartSessionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		userID, err := uuid.Parse(req.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
			return
		}
		caseID, err := uuid.Parse(req.CaseID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid UUID format"})
			return
		}

		ctx := c.Request.Context()

		if _, err := as.CaseStore.GetCase(ctx, caseID); err != nil {
			if cases.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Case not found"})
				return
			}
			as.Logger.Error("Failed to load case", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load case"})
			return
		}

		if _, err := as.UserService.EnsureUser(ctx, userID); err != nil {
			as.Logger.Error("Failed to ensure user", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve user"})
			return
		}

		session, err := as.SessionService.CreateSession(ctx, &sessions.CreateSessionRequest{
			UserID: userID,
			CaseID: caseID,
		})
		if err != nil {
			as.Logger.Error("Failed to create session", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": session.ID.String(),
			"status":     string(session.Status),
		})
	}
}

func listCases(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := as.CaseStore.ListCases(c.Request.Context())
		if err != nil {
			as.Logger.Error("Failed to list cases", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list cases"})
			return
		}

		out := make([]gin.H, 0, len(list))
		for _, cs := range list {
			out = append(out, gin.H{
				"id":         cs.ID.String(),
				"title":      cs.Title,
				"difficulty": cs.Difficulty,
				"case_type":  cs.CaseType,
			})
		}
		c.JSON(http.StatusOK, out)
	}
}

func getSessionSnapshot(as *AppState) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID, err := uuid.Parse(c.Param("sessionId"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session ID format"})
			return
		}

		ctx := c.Request.Context()

		session, err := as.SessionService.GetSession(ctx, sessionID)
		if err != nil {
			if sessions.IsNotFound(err) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
				return
			}
			as.Logger.Error("Failed to load session", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load session"})
			return
		}

		turns, err := as.TranscriptStore.ListTurns(ctx, sessionID)
		if err != nil {
			as.Logger.Error("Failed to list turns", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transcript"})
			return
		}

		var caseInfo gin.H
		if kase, err := as.CaseStore.GetCase(ctx, session.CaseID); err == nil {
			caseInfo = gin.H{"id": kase.ID.String(), "title": kase.Title}
		}

		turnList := make([]gin.H, 0, len(turns))
		for _, t := range turns {
			turnList = append(turnList, gin.H{
				"role":      string(t.Role),
				"content":   t.Content,
				"timestamp": t.Timestamp.Format(time.RFC3339),
			})
		}

		c.JSON(http.StatusOK, gin.H{
			"session_id": session.ID.String(),
			"status":     string(session.Status),
			"case":       caseInfo,
			"turns":      turnList,
		})
	}
}

func setupSignalHandler(as *AppState, server *http.Server, logger *zap.Logger) chan struct{} {
	done := make(chan struct{}, 1)

	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-signalCh

		logger.Info("Shutting down server...")

		// Create context with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("Error during server shutdown", zap.Error(err))
		}

		if err := as.DB.Close(); err != nil {
			logger.Error("Error closing database", zap.Error(err))
		}

		done <- struct{}{}
	}()

	return done
}
