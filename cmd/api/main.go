package main

import (
	"context"
	"time"

	"go.uber.org/zap"

	"inboxiq/internal/config"
	"inboxiq/internal/db"
	"inboxiq/internal/handler"
	"inboxiq/internal/httpserver"
	"inboxiq/internal/mq"
	"inboxiq/internal/mqhandler"
	redisclient "inboxiq/internal/redis"
	"inboxiq/internal/repository"
	"inboxiq/internal/scheduler"
	"inboxiq/internal/service"
	"inboxiq/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.InitSchema(context.Background(), dbConn); err != nil {
		log.Fatal("Schema initialization failed", zap.Error(err))
	}

	// Init Redis
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// Init RabbitMQ. An empty URL disables dispatch; notifications are
	// still written synchronously, only sent_at stays unset.
	var publisher *mq.Publisher
	if cfg.MQ.URL != "" {
		publisher, err = mq.NewPublisher(cfg.MQ.URL)
		if err != nil {
			log.Fatal("failed to init publisher", zap.Error(err))
		}
		defer publisher.Close()
	} else {
		log.Warn("MQ_URL not set, notification dispatch disabled")
	}

	// Init Repositories
	userRepo := repository.NewUserRepository(dbConn)
	emailRepo := repository.NewEmailRepository(dbConn)
	notificationRepo := repository.NewNotificationRepository(dbConn)
	gmailTokenRepo := repository.NewGmailTokenRepository(dbConn)

	// Init Services
	classifier := service.NewClassifyService(service.SystemRand{}, time.Now)

	var pub service.EventPublisher
	if publisher != nil {
		pub = publisher
	}
	notifier := service.NewNotificationService(notificationRepo, pub, log)
	emailService := service.NewEmailService(userRepo, emailRepo, classifier, notifier, log)
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret)
	gmailService := service.NewGmailService(cfg.Gmail, gmailTokenRepo, emailService, rdb, log)

	// Notification dispatch consumer
	if publisher != nil {
		dispatchHandler := mqhandler.NewNotificationDispatchHandler(notificationRepo, log)
		consumer, err := mq.NewConsumer(cfg.MQ.URL, mq.QueueNotificationDispatch, mq.RoutingKeyNotificationCreated, log)
		if err != nil {
			log.Fatal("failed to init consumer", zap.Error(err))
		}
		defer consumer.Close()
		consumer.SetHandler(dispatchHandler.HandleNotificationCreated)
		go func() {
			if err := consumer.StartConsuming(); err != nil {
				log.Error("consumer stopped", zap.Error(err))
			}
		}()
	}

	// Deadline scan job: one explicit run at startup, then daily.
	deadlineScanner := scheduler.NewDeadlineScanner(cfg.Scheduler.DeadlineScanSpec, emailRepo, notifier, log)
	deadlineScanner.RunNow(context.Background())
	if err := deadlineScanner.Start(); err != nil {
		log.Fatal("failed to start deadline scanner", zap.Error(err))
	}
	defer deadlineScanner.Stop()

	// Init Handlers
	authHandler := handler.NewAuthHandler(authService, log)
	emailHandler := handler.NewEmailHandler(emailService, log)
	notificationHandler := handler.NewNotificationHandler(notificationRepo, log)
	userHandler := handler.NewUserHandler(authService, log)
	gmailHandler := handler.NewGmailHandler(gmailService, log)

	// Router
	router := httpserver.NewRouter(
		authHandler,
		emailHandler,
		notificationHandler,
		userHandler,
		gmailHandler,
		cfg.JWT.Secret,
		dbConn,
	)

	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
