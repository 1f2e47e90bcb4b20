package main

import (
	"context"

	"github.com/justsurfingit/job-board/internal/auth"
	"github.com/justsurfingit/job-board/internal/broker"
	"github.com/justsurfingit/job-board/internal/config"
	"github.com/justsurfingit/job-board/internal/database"
	"github.com/justsurfingit/job-board/internal/handlers"
	"github.com/justsurfingit/job-board/internal/services"
	"github.com/sirupsen/logrus"
)

func main() {
	// 1. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}
	cfg.ConfigureLogger()

	// 2. Database Connection
	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	store := services.NewGormStore(db)

	// 3. Notification Channels (each optional)
	var channels []services.Channel
	var subscriber handlers.Subscriber

	if cfg.Broker.URL != "" {
		rmq, err := broker.NewRabbitMQ(cfg.Broker.URL, cfg.Broker.Exchange)
		if err != nil {
			logrus.WithError(err).Warn("live notifications disabled")
		} else {
			defer rmq.Close()
			channels = append(channels, rmq)
			subscriber = rmq
		}
	} else {
		logrus.Info("RABBITMQ_URL not set, live notifications disabled")
	}

	if cfg.Mail.CredentialsFile != "" {
		gmailService, err := auth.NewGmailService(context.Background(), cfg.Mail.CredentialsFile, cfg.Mail.TokenFile)
		if err != nil {
			logrus.WithError(err).Warn("email notifications disabled")
		} else {
			logrus.Info("gmail service connected")
			channels = append(channels, services.NewEmailService(store, gmailService, cfg.Mail.From, cfg.Mail.AppBaseURL))
		}
	}

	// 4. Initialize Core Services
	notificationService := services.NewNotificationService(store, channels...)
	applicationService := services.NewApplicationService(store, notificationService)
	jobService := services.NewJobService(store)
	userService := services.NewUserService(store)
	identity := auth.NewIdentity(auth.NewSupabaseVerifier(cfg.Auth.SupabaseURL, cfg.Auth.SupabaseKey), store)

	// 5. Setup Router
	router := &handlers.Router{
		Identity:       identity,
		Applications:   handlers.NewApplicationHandler(applicationService),
		Jobs:           handlers.NewJobHandler(jobService),
		Admin:          handlers.NewAdminHandler(userService),
		Notifications:  handlers.NewNotificationHandler(notificationService, subscriber),
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}

	logrus.WithField("port", cfg.Server.Port).Info("server starting")
	if err := router.Engine().Run(":" + cfg.Server.Port); err != nil {
		logrus.WithError(err).Fatal("server failed to start")
	}
}
