package cmd

import (
	"context"
	"fmt"
	"time"

	"whitelister/bot"
	"whitelister/config"
	"whitelister/database"
	"whitelister/events"
	"whitelister/service"
	"whitelister/storage"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Println("Starting whitelister bot...")

	// Load configuration
	cfg := config.Get()

	// Pick the settings backend: Postgres when a database is configured,
	// otherwise a local JSON file.
	var store service.SettingsStore
	var db *database.DB
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to database...")
		var err error
		db, err = database.NewConnection(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		store = storage.NewPostgresStore(db)
		log.Println("Using Postgres settings store")
	} else {
		store = storage.NewFileStore(cfg.SettingsPath)
		log.Printf("Using file settings store at %s", cfg.SettingsPath)
	}

	// Initialize event bus and audit logging
	eventBus := events.NewBus()
	subscribeAuditLog(eventBus)

	// Initialize Discord bot (session is not opened until Start)
	discordBot, err := bot.New(bot.Config{
		Token:   cfg.DiscordToken,
		GuildID: cfg.DiscordGuildID,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize Discord bot: %w", err)
	}

	// Initialize the whitelist service with the bot as its collaborator for
	// role grants and prompt posting
	whitelistService, err := service.NewWhitelistService(ctx, store, discordBot, discordBot, eventBus)
	if err != nil {
		return fmt.Errorf("failed to initialize whitelist service: %w", err)
	}

	// Open the Discord connection and register commands and handlers
	if err := discordBot.Start(whitelistService); err != nil {
		return fmt.Errorf("failed to start Discord bot: %w", err)
	}
	log.Println("Discord bot started successfully")

	// Re-check the submission prompt after a restart; posting is skipped when
	// one is already present in the configured channel.
	whitelistService.EnsurePrompt(ctx)

	// Wait for context cancellation
	log.Printf("Bot is running in %s mode...", cfg.Environment)
	<-ctx.Done()

	// Cleanup resources
	log.Println("Shutting down bot...")
	if err := discordBot.Close(); err != nil {
		log.Printf("Error closing Discord bot: %v", err)
	}

	if db != nil {
		log.Println("Closing database connection...")
		db.Close()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	select {
	case <-shutdownCtx.Done():
		log.Println("Shutdown timeout exceeded")
	case <-time.After(1 * time.Second):
		log.Println("Shutdown completed")
	}

	return nil
}

// subscribeAuditLog logs every whitelist event for operator visibility.
func subscribeAuditLog(bus *events.Bus) {
	bus.Subscribe(events.EventTypeWalletSubmitted, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.WalletSubmittedEvent); ok {
			log.WithFields(log.Fields{
				"userID":      e.UserID,
				"walletCount": e.WalletCount,
				"maxWallets":  e.MaxWallets,
			}).Info("Wallet submitted")
		}
	})
	bus.Subscribe(events.EventTypeSettingsChanged, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.SettingsChangedEvent); ok {
			log.WithFields(log.Fields{
				"setting": e.Setting,
				"value":   e.Value,
			}).Info("Whitelist settings changed")
		}
	})
	bus.Subscribe(events.EventTypeMemberPurged, func(ctx context.Context, event events.Event) {
		if e, ok := event.(events.MemberPurgedEvent); ok {
			log.WithFields(log.Fields{
				"userID":        e.UserID,
				"walletsPurged": e.WalletsPurged,
			}).Info("Purged wallets for departed member")
		}
	})
}
