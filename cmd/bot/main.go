package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jose-valero/warhorn-bot/internal/adapters/discord"
	"github.com/jose-valero/warhorn-bot/internal/adapters/httphealth"
	"github.com/jose-valero/warhorn-bot/internal/adapters/warhorn"
	"github.com/jose-valero/warhorn-bot/internal/app/service"
	"github.com/jose-valero/warhorn-bot/internal/infra/config"
	"github.com/jose-valero/warhorn-bot/internal/infra/logging"
	"github.com/jose-valero/warhorn-bot/internal/infra/storage"
)

type flags struct {
	config   string
	db       string
	store    string
	httpAddr string
	dryRun   bool
	debug    bool
	once     bool
}

func main() {
	_ = godotenv.Load()
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	f := &flags{}
	cmd := &cobra.Command{
		Use:   "warbot",
		Short: "Bot that posts Warhorn game listings to Discord channels",
		Long: `warbot polls Warhorn on a configurable interval, loads sessions for every
configured event and posts each newly published one to that event's Discord
channels exactly once.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.config, "config", "warbot.yaml", "configuration file path")
	fl.StringVar(&f.db, "db", "warbot.db", "dedup snapshot file (file store)")
	fl.StringVar(&f.store, "store", "file", "dedup store backend: file | postgres (DATABASE_URL)")
	fl.StringVar(&f.httpAddr, "http-addr", "", "serve /healthz on this address (default $HTTP_ADDR)")
	fl.BoolVar(&f.dryRun, "dry-run", true, "make no DB changes or Discord posts")
	fl.BoolVar(&f.debug, "debug", false, "enable debug logging")
	fl.BoolVar(&f.once, "once", false, "run a single poll pass and exit")
	return cmd
}

func run(ctx context.Context, f *flags) error {
	log := logging.New(os.Stderr, f.debug)
	log.Info().Bool("dry_run", f.dryRun).Msg("warbot starting")
	for i, arg := range os.Args {
		log.Info().Msgf("arg[%d]=%s", i, arg)
	}

	cfg, err := config.Load(f.config)
	if err != nil {
		log.WithLevel(zerolog.FatalLevel).Err(err).Msg("config")
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, f, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	// En dry-run no hace falta el gateway: nada se publica.
	var sender discord.Sender
	if !f.dryRun {
		if err := cfg.RequireToken(); err != nil {
			log.WithLevel(zerolog.FatalLevel).Err(err).Msg("config")
			return err
		}
		s, err := discord.OpenGateway(cfg.DiscordToken, log)
		if err != nil {
			return fmt.Errorf("discord gateway: %w", err)
		}
		defer s.Close()
		log.Info().Str("user", s.State.User.Username).Str("id", s.State.User.ID).Msg("✅ connected to discord")
		sender = s
	}

	wopts := []warhorn.Option{warhorn.WithLogger(log), warhorn.WithToken(cfg.WarhornToken)}
	if cfg.WarhornURL != "" {
		wopts = append(wopts, warhorn.WithURL(cfg.WarhornURL))
	}
	svc := service.NewPollService(
		warhorn.New(wopts...),
		store,
		discord.NewAnnouncer(sender, f.dryRun, log),
		cfg.Venues,
		cfg.PollInterval,
		log,
	)

	addr := f.httpAddr
	if addr == "" {
		addr = cfg.HTTPAddr
	}
	if addr != "" && !f.once {
		health := httphealth.New(svc.Status, 3*cfg.PollInterval, log)
		go func() {
			if err := health.Start(ctx, addr); err != nil {
				log.Error().Err(err).Msg("http server")
			}
		}()
	}

	err = svc.Run(ctx, f.once)
	if errors.Is(err, context.Canceled) {
		log.Info().Msg("shutting down")
		return nil
	}
	return err
}

func openStore(ctx context.Context, f *flags, cfg config.Config, log zerolog.Logger) (*storage.DedupStore, func(), error) {
	switch f.store {
	case "file":
		b, err := storage.NewFileBackend(f.db, log)
		if err != nil {
			return nil, nil, err
		}
		return storage.NewDedupStore(b, f.dryRun, log), func() {}, nil

	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("postgres store needs DATABASE_URL")
		}
		db, err := storage.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := storage.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info().Msg("✅ DB ready and migrated")
		return storage.NewDedupStore(storage.NewPostgresBackend(db), f.dryRun, log), func() { _ = db.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store %q", f.store)
	}
}
