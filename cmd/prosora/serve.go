package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shubh-37/prosora/config"
	"github.com/shubh-37/prosora/internal/agents"
	"github.com/shubh-37/prosora/internal/api"
	"github.com/shubh-37/prosora/internal/database"
	"github.com/shubh-37/prosora/internal/frameworks"
	"github.com/shubh-37/prosora/internal/linear"
	"github.com/shubh-37/prosora/internal/llm"
	slackpkg "github.com/shubh-37/prosora/internal/slack"
	"github.com/shubh-37/prosora/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, Slack transport and session janitor",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("🚀 Prosora starting", zap.String("version", version))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openBackend(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeBackend()

	st := store.New(backend, store.WithLogger(logger))
	catalog := frameworks.Default()

	client, err := llm.New(ctx, llmConfig(cfg), logger)
	if err != nil {
		return fmt.Errorf("failed to initialise llm client: %w", err)
	}
	facilitator := agents.NewFacilitator(st, client, catalog, logger)
	logger.Info("🤖 LLM ready", zap.String("provider", cfg.LLMProvider), zap.String("model", cfg.Model()))

	var opts []api.Option
	var exporter *agents.Exporter
	if cfg.LinearEnabled() {
		linearClient, err := linear.NewClient(cfg.LinearToken, cfg.LinearTeamID, logger)
		if err != nil {
			return fmt.Errorf("failed to initialise linear client: %w", err)
		}
		exporter = agents.NewExporter(st, linearClient, logger)
		opts = append(opts, api.WithExporter(exporter))
		logger.Info("📋 Linear export enabled")
	}

	var slackServer *slackpkg.Server
	if cfg.SlackEnabled() {
		slackClient, err := slackpkg.NewClient(ctx, cfg.SlackToken, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to slack: %w", err)
		}

		var slackExporter slackpkg.Exporter
		if exporter != nil {
			slackExporter = exporter
		}
		approvalHandler := slackpkg.NewApprovalHandler(slackClient, st, logger)
		commandHandler := slackpkg.NewCommandHandler(slackClient, st, catalog, slackExporter, logger)
		messageHandler := slackpkg.NewMessageHandler(slackClient, facilitator, commandHandler, approvalHandler, logger)

		slackServer = slackpkg.NewServer(messageHandler, approvalHandler, cfg.SlackSigningSecret, logger)
		opts = append(opts, api.WithHandler("POST /slack/events", slackServer))
		logger.Info("💬 Slack transport enabled")
	}

	server := api.NewServer(facilitator, st, catalog, logger, opts...)
	janitor := agents.NewJanitor(st, cfg.CleanupInterval, cfg.SessionMaxAgeDays, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gctx, ":"+cfg.Port)
	})
	g.Go(func() error {
		return janitor.Run(gctx)
	})

	logger.Info("✅ System initialized successfully",
		zap.String("store", cfg.StoreBackend),
		zap.String("port", cfg.Port),
	)

	err = g.Wait()
	if slackServer != nil {
		slackServer.Wait()
	}
	logger.Info("Shutting down gracefully...")
	return err
}

// openBackend builds the configured session backend and its close func.
func openBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (store.Backend, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.NewDB(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.CreateTables(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to create tables: %w", err)
		}
		logger.Info("📊 Database connected and ready")
		return database.NewContextRepository(db), db.Close, nil

	case config.BackendSQLite:
		repo, err := database.OpenSQLite(cfg.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		return repo, func() {
			if err := repo.Close(); err != nil {
				logger.Warn("failed to close sqlite", zap.Error(err))
			}
		}, nil

	default:
		return store.NewMemoryBackend(), func() {}, nil
	}
}

func llmConfig(cfg *config.Config) llm.Config {
	return llm.Config{
		Provider:   llm.Provider(cfg.LLMProvider),
		APIKey:     cfg.APIKey(),
		Model:      cfg.Model(),
		Timeout:    cfg.LLMTimeout,
		MaxRetries: cfg.LLMMaxRetries,
	}
}
