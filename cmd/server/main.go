package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tabor-plzen/camp-api/internal/accesscode"
	"github.com/tabor-plzen/camp-api/internal/auth"
	"github.com/tabor-plzen/camp-api/internal/camps"
	"github.com/tabor-plzen/camp-api/internal/config"
	"github.com/tabor-plzen/camp-api/internal/database"
	"github.com/tabor-plzen/camp-api/internal/handlers"
	"github.com/tabor-plzen/camp-api/internal/notifier"
	"github.com/tabor-plzen/camp-api/internal/payments"
	"github.com/tabor-plzen/camp-api/internal/registrations"
	"github.com/tabor-plzen/camp-api/internal/timeline"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load Configuration
	cfg := config.LoadConfig()

	// Connect to Database
	db := database.Connect(cfg)

	codes := accesscode.NewGenerator(db)

	// Notifiers: mail always (falls back to logging when SMTP is not
	// configured), Discord only when a bot token is present.
	targets := []notifier.Notifier{
		notifier.NewMailNotifier(notifier.MailConfig{
			Host:       cfg.SMTPHost,
			Port:       cfg.SMTPPort,
			Username:   cfg.SMTPUsername,
			Password:   cfg.SMTPPassword,
			From:       cfg.MailFrom,
			GalleryURL: cfg.GalleryURL,
		}, logger),
	}
	if cfg.DiscordBotToken != "" {
		session, err := discordgo.New("Bot " + cfg.DiscordBotToken)
		if err != nil {
			logger.Warn("discord notifier not initialized", zap.Error(err))
		} else {
			targets = append(targets, notifier.NewDiscordNotifier(session, cfg.DiscordChannelID, logger))
		}
	}
	notify := notifier.Multi(targets...)

	// Initialize Services
	authHandler := auth.NewAuthHandler(cfg, db, logger)
	campService := camps.NewService(db, codes, logger)
	registrationService := registrations.NewService(db, codes, notify, logger)
	timelineService := timeline.NewService(db, logger)

	provider := payments.NewGatewayClient(cfg.PaymentGatewayURL, time.Duration(cfg.PaymentTimeoutSeconds)*time.Second)
	paymentService := payments.NewService(db, provider, notify, time.Duration(cfg.PaymentTimeoutSeconds)*time.Second, logger)

	// Initialize Router
	r := chi.NewRouter()

	// Register Routes
	handlers.RegisterRoutes(r, authHandler, handlers.Handlers{
		Account:      handlers.NewAccountHandler(authHandler, logger),
		Camp:         handlers.NewCampHandler(campService, logger),
		Registration: handlers.NewRegistrationHandler(registrationService, authHandler, logger),
		Payment:      handlers.NewPaymentHandler(paymentService, logger),
		Gallery:      handlers.NewGalleryHandler(timelineService, logger),
		Admin:        handlers.NewAdminHandler(campService, timelineService, authHandler, logger),
		APIKey:       handlers.NewAPIKeyHandler(db, authHandler),
	})

	// Start Server
	logger.Info("starting server", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(fmt.Sprintf(":%s", cfg.Port), r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
