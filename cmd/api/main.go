package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/handler"
	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/middleware"
	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/repository"
	"github.com/IANDYI/maternal-dashboard-service/internal/adapters/websocket"
	"github.com/IANDYI/maternal-dashboard-service/internal/config"
	"github.com/IANDYI/maternal-dashboard-service/internal/core/services"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "maternal-dashboard",
		Short:         "Maternal health dashboard API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := config.ConnectDatabase(cfg.DatabaseURL, 5, 2*time.Second)
			if err != nil {
				return err
			}
			defer db.Close()

			return config.InitDatabase(cmd.Context(), db)
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := config.ConnectDatabase(cfg.DatabaseURL, 1, 0)
			if err != nil {
				return err
			}
			defer db.Close()

			provider, err := config.NewMigrator(db)
			if err != nil {
				return err
			}
			statuses, err := provider.Status(cmd.Context())
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}
			for _, s := range statuses {
				applied := "-"
				if !s.AppliedAt.IsZero() {
					applied = s.AppliedAt.Format(time.RFC3339)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%05d  %-8s  %-25s  %s\n", s.Source.Version, s.State, applied, s.Source.Path)
			}
			return nil
		},
	}

	cmd.AddCommand(upCmd, statusCmd)
	return cmd
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	setupLogger(cfg)
	return cfg, nil
}

func setupLogger(cfg *config.Config) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "maternal-dashboard").Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	log.Logger = logger
}

func runServer() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := cfg.LoadPublicKey(); err != nil {
		return err
	}
	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database with retry logic
	db, err := config.ConnectDatabase(cfg.DatabaseURL, 5, 2*time.Second)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.AutoMigrate {
		if err := config.InitDatabase(ctx, db); err != nil {
			return err
		}
	}

	breaker := repository.BreakerSettings{
		MaxRequests: cfg.CircuitBreakerMaxRequests,
		Interval:    cfg.CircuitBreakerInterval,
		Timeout:     cfg.CircuitBreakerTimeout,
	}

	sqlRepo := repository.NewSQLRepository(db, breaker)

	publisher, err := repository.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.AlertsQueueName, breaker)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ publisher: %w", err)
	}
	defer publisher.Close()

	// Services read "today" in the configured timezone
	dashboardService := services.NewDashboardService(sqlRepo, sqlRepo, services.WithLocation(loc))
	monitor := services.NewOverdueMonitor(sqlRepo, publisher, cfg.OverdueScanInterval, services.WithLocation(loc))
	go monitor.Run(ctx)

	// Live alert feed
	hub := websocket.NewHub()
	go hub.Run(ctx)

	consumer, err := repository.NewAlertConsumer(cfg.RabbitMQURL, cfg.RiskAlertsQueueName, hub)
	if err != nil {
		return fmt.Errorf("failed to initialize RabbitMQ alert consumer: %w", err)
	}
	defer consumer.Close()

	if err := consumer.StartConsuming(ctx); err != nil {
		log.Error().Err(err).Msg("alert consumer failed to start, live feed will retry on reconnect")
	}

	authMiddleware := middleware.NewAuthMiddleware(cfg.JWTPublicKey)
	defer authMiddleware.Stop()

	limiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	})

	router := handler.NewRouter(handler.Routes{
		Dashboard: handler.NewDashboardHandler(dashboardService),
		Health:    handler.NewHealthHandler(db),
		WebSocket: handler.NewWebSocketHandler(hub, authMiddleware),
		Auth:      authMiddleware,
		Limiter:   limiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Str("timezone", loc.String()).Msg("starting maternal dashboard service")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server exited")
	return nil
}
