package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"channel-archive/config"
	"channel-archive/internal/archive"
	"channel-archive/internal/github"
	"channel-archive/internal/publish"
	"channel-archive/internal/source"
	"channel-archive/internal/telegram"

	sentry "github.com/getsentry/sentry-go"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	// Initialize Sentry (if DSN is provided)
	if cfg.SentryDSN != "" {
		err = sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.AppEnv,
			Release:     cfg.Version,
			Debug:       cfg.Debug,
		})
		if err != nil {
			log.Fatalf("sentry.Init: %s", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Configuration error: %v", err)
	}

	store, err := github.NewStore(cfg.GitHubToken, cfg.GitHubRepo)
	if err != nil {
		log.Fatalf("Failed to create GitHub store: %v", err)
	}
	updater, err := publish.NewUpdater(store, cfg.GitHubBranch, cfg.GitHubFolder)
	if err != nil {
		log.Fatalf("Failed to create updater: %v", err)
	}

	// Creating context for application lifecycle
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Fetch and assemble inside the Telegram session; publishing needs only
	// the already-downloaded local files and runs after disconnect.
	var updates archive.Updates
	err = telegram.Run(ctx, telegram.Options{
		APIID:         cfg.TelegramAPIID,
		APIHash:       cfg.TelegramAPIHash,
		SessionString: cfg.SessionString,
	}, func(ctx context.Context, client source.Client) error {
		pipeline, err := archive.NewPipeline(client, cfg.ChannelUsername, cfg.DayLimit, loc)
		if err != nil {
			return err
		}
		updates, err = pipeline.Run(ctx, time.Now())
		return err
	})
	if err != nil {
		fail("Archive run failed", err)
	}

	sha, err := updater.Update(ctx, updates)
	if err != nil {
		fail("Publish failed", err)
	}

	if sha == "" {
		log.Println("No changes detected. Nothing to publish.")
		return
	}
	log.Printf("Successfully updated repository with changes for months: %v", updates.Months())
}

// fail reports a fatal run error to Sentry and exits non-zero. There is no
// partial-commit state to clean up: either the full plan landed or nothing
// was written.
func fail(msg string, err error) {
	sentry.CaptureException(err)
	sentry.Flush(2 * time.Second)
	log.Fatalf("%s: %v", msg, err)
}
