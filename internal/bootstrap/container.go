package bootstrap

import (
	"context"
	"log"
	"time"

	"subscription-billing-be/internal/config"
	"subscription-billing-be/internal/controller"
	"subscription-billing-be/internal/pkg/logger"
	"subscription-billing-be/internal/pkg/mailer"
	"subscription-billing-be/internal/repository/unitofwork"
	"subscription-billing-be/internal/service"
	"subscription-billing-be/pkg/pg"

	pktNats "subscription-billing-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	BillingKeyController    controller.IBillingKeyController
	SubscriptionController  controller.ISubscriptionController
	PaymentMethodController controller.IPaymentMethodController
	WebhookController       controller.IWebhookController

	// Background Services (Exposed for main.go to run)
	SchedulerService service.ISchedulerService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core Facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.OperatorEmail,
	)

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	pgClient := pg.NewClient(
		cfg.PG.BaseURL,
		cfg.PG.APIKey,
		cfg.PG.APISecret,
		time.Duration(cfg.PG.TimeoutSeconds)*time.Second,
	)

	// 3. Services
	var publisher service.EventPublisher
	if natsPub != nil {
		publisher = natsPub
	}

	billingKeyService := service.NewBillingKeyService(uowFactory, pgClient, publisher, sysLogger)
	subscriptionService := service.NewSubscriptionService(uowFactory, publisher, sysLogger)
	paymentMethodService := service.NewPaymentMethodService(uowFactory, sysLogger)
	webhookService := service.NewWebhookService(uowFactory, pgClient, publisher, sysLogger)

	schedulerService := service.NewSchedulerService(
		uowFactory,
		pgClient,
		service.NewPubSub(pubSub, pubSub),
		rdb,
		publisher,
		emailService,
		sysLogger,
		service.SchedulerOptions{
			MaxRetries:  cfg.Scheduler.MaxRetries,
			BackoffBase: time.Duration(cfg.Scheduler.BackoffBaseSeconds) * time.Second,
		},
	)

	// 4. Controllers
	return &Container{
		BillingKeyController:    controller.NewBillingKeyController(billingKeyService),
		SubscriptionController:  controller.NewSubscriptionController(subscriptionService),
		PaymentMethodController: controller.NewPaymentMethodController(paymentMethodService),
		WebhookController:       controller.NewWebhookController(webhookService, sysLogger),

		SchedulerService: schedulerService,
		Logger:           sysLogger,
	}
}
