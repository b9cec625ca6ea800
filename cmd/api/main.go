package main

import (
	"context"
	"log"
	"time"

	"keepsake/config"
	"keepsake/internal/domain/calendar"
	"keepsake/internal/domain/capsule"
	"keepsake/internal/domain/message"
	"keepsake/internal/domain/outbox"
	"keepsake/internal/domain/user"
	"keepsake/internal/handler"
	"keepsake/internal/notify"
	kredis "keepsake/internal/redis"
	"keepsake/internal/repository"
	"keepsake/internal/server"
	"keepsake/internal/services"
	"keepsake/internal/storage"
	"keepsake/pkg/database"
	"keepsake/pkg/events"
	"keepsake/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)

	// Connect to Database
	database.Connect(cfg)

	// Run GORM AutoMigrate for Tables
	if err := database.DB.AutoMigrate(
		&user.User{},
		&user.PushToken{},
		&message.Message{},
		&capsule.CapsulePost{},
		&calendar.Event{},
		&outbox.OutboxEvent{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	redisClient := kredis.NewClient(kredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	broker := events.NewRedisBroker(redisClient, l.Logger)
	presence := kredis.NewPresenceStore(redisClient, time.Duration(cfg.PresenceThresholdSec)*time.Second)

	userRepo := repository.NewUserRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)
	capsuleRepo := repository.NewCapsuleRepository(database.DB)
	calendarRepo := repository.NewCalendarRepository(database.DB)
	outboxRepo := repository.NewOutboxRepository(database.DB)

	authService := services.NewAuthService(userRepo, cfg)
	messageService := services.NewMessageService(database.DB, messageRepo,
		time.Duration(cfg.FeedWindowHours)*time.Hour, cfg.FeedMaxMessages)
	capsuleService := services.NewCapsuleService(database.DB, capsuleRepo)
	calendarService := services.NewCalendarService(database.DB, calendarRepo)
	userService := services.NewUserService(userRepo, presence)

	var s3Client *storage.Client
	if cfg.S3Bucket != "" {
		client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: 15 * time.Minute,
		})
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		s3Client = client
	} else {
		l.Warnf("S3 not configured; uploads are disabled")
	}

	// Push notifications ride the same event stream the hub consumes.
	dispatcher := notify.NewDispatcher(notify.NewRelayClient(cfg.PushRelayURL), redisClient, userRepo, l)
	if err := broker.Subscribe(context.Background(), services.EventsChannel, dispatcher.HandleEvent); err != nil {
		log.Fatalf("Failed to subscribe notification dispatcher: %v", err)
	}

	outboxWorker := services.NewOutboxWorker(outboxRepo, broker, l)
	outboxWorker.Start()
	defer outboxWorker.Stop()

	capsuleWorker := services.NewCapsuleWorker(capsuleService, l)
	capsuleWorker.Start()
	defer capsuleWorker.Stop()

	hub := server.NewHub(messageService, userService, broker, l)
	go hub.Run()
	defer hub.Stop()

	handlers := &server.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Message:  handler.NewMessageHandler(messageService),
		Capsule:  handler.NewCapsuleHandler(capsuleService),
		Calendar: handler.NewCalendarHandler(calendarService),
		User:     handler.NewUserHandler(userService),
		Upload:   handler.NewUploadHandler(s3Client),
	}

	srv := server.New(cfg, l)
	srv.SetupRoutes(handlers, authService, hub)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
