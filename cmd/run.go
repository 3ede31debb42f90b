package cmd

import (
	"context"
	"fmt"
	"time"

	"aegis/bot"
	"aegis/config"
	"aegis/database"
	"aegis/events"
	"aegis/repository"
	"aegis/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting aegis bot...")

	// Load configuration
	cfg := config.Get()

	// Initialize database connection
	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Info("Database connection established successfully")

	// Initialize event bus
	eventBus := events.NewBus()
	subscribeLogging(eventBus)

	// Initialize repository
	configRepo := repository.NewGuildConfigRepository(db)

	// The Discord session must exist before the services: the messenger
	// the services post through is backed by it.
	discordBot, err := bot.New(bot.Config{
		Token:           cfg.DiscordToken,
		GuildID:         cfg.DiscordGuildID,
		SetupSessionTTL: cfg.SetupSessionTTL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}
	messenger := discordBot.Messenger()

	// Initialize services
	auditLogger := service.NewAuditLogger(messenger)
	setupService := service.NewSetupService(configRepo, auditLogger, eventBus, cfg.SetupSessionTTL)
	announcementService := service.NewAnnouncementService(configRepo, messenger, auditLogger, eventBus, cfg.ModalWindow)

	log.Info("Connecting to Discord...")
	if err := discordBot.Start(configRepo, setupService, announcementService); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}
	log.Info("Discord bot started successfully")

	// Wait for context cancellation
	log.Infof("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Info("Shutting down bot...")

	if err := discordBot.Close(); err != nil {
		log.Errorf("Error closing Discord bot: %v", err)
	}

	// Give cleanup operations time to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	log.Info("Closing database connection...")
	db.Close()

	select {
	case <-shutdownCtx.Done():
		log.Warn("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Info("Shutdown completed")
	}

	return nil
}

// subscribeLogging attaches structured-log observers for the domain
// events.
func subscribeLogging(bus *events.Bus) {
	bus.Subscribe(events.EventTypeConfigCommitted, func(ctx context.Context, event events.Event) {
		e := event.(events.ConfigCommittedEvent)
		log.WithFields(log.Fields{
			"guildID":   e.GuildID,
			"updatedBy": e.UpdatedBy,
		}).Info("Guild configuration committed")
	})

	bus.Subscribe(events.EventTypeAnnouncementPosted, func(ctx context.Context, event events.Event) {
		e := event.(events.AnnouncementPostedEvent)
		log.WithFields(log.Fields{
			"guildID":      e.GuildID,
			"kind":         e.Kind,
			"actorID":      e.ActorID,
			"targetRoleID": e.TargetRoleID,
			"messageID":    e.MessageID,
			"mirrored":     e.Mirrored,
		}).Info("Announcement posted")
	})
}
