package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jose-valero/warhorn-bot/internal/adapters/discord"
	"github.com/jose-valero/warhorn-bot/internal/adapters/warhorn"
	"github.com/jose-valero/warhorn-bot/internal/app/service"
	"github.com/jose-valero/warhorn-bot/internal/infra/config"
	"github.com/jose-valero/warhorn-bot/internal/infra/logging"
	"github.com/jose-valero/warhorn-bot/internal/infra/storage"
)

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// handler corre una sola pasada; lo dispara un schedule de EventBridge.
// El estado vive en Postgres porque el disco de Lambda es efímero.
func handler(ctx context.Context) (string, error) {
	log := logging.New(os.Stdout, os.Getenv("DEBUG") == "true")
	dryRun := os.Getenv("DRY_RUN") != "false"

	cfg, err := config.Load(getenv("CONFIG_PATH", "warbot.yaml"))
	if err != nil {
		return "", err
	}
	if cfg.DatabaseURL == "" {
		return "", errors.New("DATABASE_URL is required")
	}

	db, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return "", err
	}
	defer db.Close()
	if err := storage.Migrate(ctx, db); err != nil {
		return "", fmt.Errorf("migrate: %w", err)
	}

	// sólo REST, sin websocket
	var sender discord.Sender
	if !dryRun {
		if err := cfg.RequireToken(); err != nil {
			return "", err
		}
		s, err := discord.NewSession(cfg.DiscordToken)
		if err != nil {
			return "", err
		}
		sender = s
	}

	wopts := []warhorn.Option{warhorn.WithLogger(log), warhorn.WithToken(cfg.WarhornToken)}
	if cfg.WarhornURL != "" {
		wopts = append(wopts, warhorn.WithURL(cfg.WarhornURL))
	}
	svc := service.NewPollService(
		warhorn.New(wopts...),
		storage.NewDedupStore(storage.NewPostgresBackend(db), dryRun, log),
		discord.NewAnnouncer(sender, dryRun, log),
		cfg.Venues,
		cfg.PollInterval,
		log,
	)

	res, err := svc.RunOnce(ctx)
	summary := fmt.Sprintf("venues=%d venue_errors=%d announced=%d", res.VenuesPolled, res.VenueErrors, res.Announced)
	if res.Err != nil {
		summary += " aborted: " + res.Err.Error()
	}
	return summary, err
}

func main() { lambda.Start(handler) }
