package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"keepsake/config"
	"keepsake/internal/handler"
	"keepsake/internal/middleware"
	"keepsake/internal/services"
	"keepsake/internal/transport/httpdto"
	"keepsake/pkg/database"
	"keepsake/pkg/logger"

	"github.com/gin-gonic/gin"
)

type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     *config.Config
	logger     *logger.Logger
}

var (
	ReleaseMode = "release"
	DebugMode   = "debug"
	TestMode    = "test"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	Message  *handler.MessageHandler
	Capsule  *handler.CapsuleHandler
	Calendar *handler.CalendarHandler
	User     *handler.UserHandler
	Upload   *handler.UploadHandler
}

func New(cfg *config.Config, l *logger.Logger) *Server {
	if cfg.AppMode == ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	} else if cfg.AppMode == TestMode {
		gin.SetMode(gin.TestMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	return &Server{
		httpServer: &http.Server{
			Addr:    fmt.Sprintf(":%s", cfg.AppPort),
			Handler: engine,
		},
		engine: engine,
		config: cfg,
		logger: l,
	}
}

func (s *Server) SetupRoutes(handlers *Handlers, authService *services.AuthService, hub *Hub) {
	s.engine.Use(middleware.RequestIDMiddleware())
	s.engine.Use(middleware.CORSMiddleware())
	s.engine.Use(middleware.LoggingMiddleware(s.logger))
	s.engine.Use(middleware.ErrorHandler(s.logger))

	s.engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"message": "pong"}))
	})

	s.engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, httpdto.NewErrorResponse(err.Error(), "UNHEALTHY"))
			return
		}
		c.JSON(http.StatusOK, httpdto.NewSuccessResponse(gin.H{"status": "healthy"}))
	})

	auth := s.engine.Group("/v1/auth")
	{
		auth.POST("/register", handlers.Auth.Register)
		auth.POST("/login", handlers.Auth.Login)
	}

	requireAuth := middleware.AuthMiddleware(authService)

	messages := s.engine.Group("/v1/messages", requireAuth)
	{
		messages.POST("", handlers.Message.Send)
		messages.GET("", handlers.Message.Window)
		messages.PATCH("/:id", handlers.Message.Edit)
		messages.DELETE("/:id", handlers.Message.Delete)
		messages.PUT("/:id/reaction", handlers.Message.React)
		messages.DELETE("/:id/reaction", handlers.Message.ClearReaction)
		messages.PUT("/:id/saved", handlers.Message.SetSaved)
		messages.POST("/:id/read", handlers.Message.MarkRead)
	}

	capsules := s.engine.Group("/v1/capsules", requireAuth)
	{
		capsules.POST("", handlers.Capsule.Create)
		capsules.GET("", handlers.Capsule.Timeline)
		capsules.GET("/:id", handlers.Capsule.Get)
		capsules.PATCH("/:id", handlers.Capsule.Update)
		capsules.DELETE("/:id", handlers.Capsule.Delete)
	}

	calendar := s.engine.Group("/v1/calendar", requireAuth)
	{
		calendar.POST("/events", handlers.Calendar.Create)
		calendar.GET("/events", handlers.Calendar.Range)
		calendar.PATCH("/events/:id", handlers.Calendar.Update)
		calendar.DELETE("/events/:id", handlers.Calendar.Delete)
	}

	users := s.engine.Group("/v1/users", requireAuth)
	{
		users.GET("/me", handlers.User.Me)
		users.PATCH("/me", handlers.User.UpdateProfile)
		users.GET("/partner", handlers.User.Partner)
		users.GET("/partner/presence", handlers.User.PartnerPresence)
		users.POST("/partner/link", handlers.User.LinkPartner)
		users.POST("/heartbeat", handlers.User.Heartbeat)
		users.POST("/push-tokens", handlers.User.RegisterPushToken)
		users.DELETE("/push-tokens", handlers.User.RemovePushToken)
	}

	uploads := s.engine.Group("/v1/uploads", requireAuth)
	{
		uploads.POST("", handlers.Upload.Upload)
	}

	s.engine.GET("/ws", WebSocketHandler(hub, authService))
}

func (s *Server) Start() error {
	go func() {
		if s.logger != nil {
			s.logger.Infof("Starting the server on port %s...", s.config.AppPort)
		}
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			if s.logger != nil {
				s.logger.Errorf("Error in starting the server: %s", err)
			}
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	if s.logger != nil {
		s.logger.Infof("Server is running on :%s", s.config.AppPort)
	}

	<-quit

	if s.logger != nil {
		s.logger.Infof("Quitting signal received.. Shutting down after 5 seconds")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		if s.logger != nil {
			s.logger.Infof("Error in the graceful shutdown of the server: %s", err)
		}
		return err
	}

	if s.logger != nil {
		s.logger.Infof("Server stopped gracefully")
	}

	return nil
}
