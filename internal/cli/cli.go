package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"situs/framework/httpserver"
	"situs/internal/config"
	"situs/internal/indexer"
	"situs/internal/logging"
	"situs/internal/situs"
	"situs/internal/store"
	"situs/internal/telemetry"
	"situs/internal/web"
)

var version = "dev"

type flagBinding struct {
	key   string
	flag  string
	value string
	usage string
}

var persistentFlags = []flagBinding{
	{key: "listen_addr", flag: "listen-addr", value: ":8080", usage: "HTTP listen address"},
	{key: "static_dir", flag: "static-dir", value: "", usage: "Serve static assets from this directory instead of the embedded set"},
	{key: "log_level", flag: "log-level", value: "info", usage: "Log level: debug, info, warn, error"},
	{key: "log_format", flag: "log-format", value: "console", usage: "Log format: console, json"},
	{key: "database_driver", flag: "database-driver", value: "sqlite", usage: "Database driver: sqlite, postgres"},
	{key: "database_dsn", flag: "database-dsn", value: "file:situs.db?cache=shared", usage: "Database connection string"},
	{key: "indexer_endpoint", flag: "indexer-endpoint", value: "http://localhost:8000/graphql", usage: "GraphQL indexer endpoint"},
}

// NewRootCommand builds the situs CLI. Flags override SITUS_* environment variables.
func NewRootCommand(stdout io.Writer) *cobra.Command {
	v := config.New()

	rootCmd := &cobra.Command{
		Use:          "situs",
		Short:        "Multi-tenant situs portal",
		Long:         "situs serves per-tenant dashboards, asset and certificate pages, and the OG database API.",
		Version:      version,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, stdout)
		},
	}
	rootCmd.SetOut(stdout)
	bindFlags(v, rootCmd.PersistentFlags(), persistentFlags)

	rootCmd.AddCommand(newServeCmd(v, stdout))
	rootCmd.AddCommand(newUpdateDatabaseCmd(v, stdout))
	rootCmd.AddCommand(newMigrateCmd(v, stdout))

	return rootCmd
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCommand(os.Stdout).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newServeCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default command)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), v, stdout)
		},
	}
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet, bindings []flagBinding) {
	for _, binding := range bindings {
		flags.String(binding.flag, binding.value, binding.usage)
		if err := v.BindPFlag(binding.key, flags.Lookup(binding.flag)); err != nil {
			panic(fmt.Sprintf("bind flag %q: %v", binding.flag, err))
		}
	}
}

func newUpdateDatabaseCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "update-database",
		Short: "Sync the OG database from the indexer once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cmd.Context(), v, stdout)
			if err != nil {
				return err
			}
			defer rt.close()

			if err := rt.service.UpdateDatabase(cmd.Context()); err != nil {
				return fmt.Errorf("update database: %w", err)
			}
			return nil
		},
	}
}

func newMigrateCmd(v *viper.Viper, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := newRuntime(cmd.Context(), v, stdout)
			if err != nil {
				return err
			}
			defer rt.close()

			rt.logger.Info("database schema is up to date", zap.String("driver", rt.cfg.DatabaseDriver))
			return nil
		},
	}
}

type runtime struct {
	cfg     config.Config
	logger  *zap.Logger
	store   *store.Store
	service *situs.Service
}

func newRuntime(ctx context.Context, v *viper.Viper, stdout io.Writer) (*runtime, error) {
	cfg := config.Load(v)

	logger, err := logging.New(stdout, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, err
	}

	db, err := store.Open(store.Options{
		Driver: cfg.DatabaseDriver,
		DSN:    cfg.DatabaseDSN,
		Debug:  cfg.DatabaseDebug,
	})
	if err != nil {
		return nil, err
	}
	s := store.New(db)
	if err := s.AutoMigrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	client := indexer.NewClient(indexer.ClientOptions{
		Endpoint:  cfg.IndexerEndpoint,
		AuthToken: cfg.IndexerAuthToken,
		Timeout:   cfg.IndexerTimeout,
		UserAgent: "situs/" + version,
		Logger:    logger.With(zap.String("service", "indexer")),
	})
	source := indexer.NewSource(client, cfg.IndexerPageSize)

	return &runtime{
		cfg:     cfg,
		logger:  logger,
		store:   s,
		service: situs.NewService(s, source, logger.With(zap.String("service", "situs"))),
	}, nil
}

func (rt *runtime) close() {
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("close database", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

func runServe(ctx context.Context, v *viper.Viper, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	rt, err := newRuntime(ctx, v, stdout)
	if err != nil {
		return err
	}
	defer rt.close()

	metrics := telemetry.NewMetrics()
	handler, err := web.NewHandler(rt.cfg, rt.service, rt.logger.With(zap.String("service", "http")),
		httpserver.Mount{Pattern: "/metrics", Handler: metrics.Handler()},
	)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              rt.cfg.ListenAddr,
		Handler:           telemetry.Chain(handler, telemetry.AccessLog(rt.logger), telemetry.Instrument(metrics)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		rt.logger.Info("situs server listening", zap.String("addr", rt.cfg.ListenAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	rt.logger.Info("shutting down", zap.Duration("timeout", rt.cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), rt.cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
