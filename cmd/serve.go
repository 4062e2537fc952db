package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"syscall"
	"time"

	"github.com/Dosada05/tt-tournament/brackets"
	"github.com/Dosada05/tt-tournament/config"
	"github.com/Dosada05/tt-tournament/db"
	"github.com/Dosada05/tt-tournament/handlers"
	"github.com/Dosada05/tt-tournament/repositories"
	"github.com/Dosada05/tt-tournament/repositories/memory"
	api "github.com/Dosada05/tt-tournament/routes"
	"github.com/Dosada05/tt-tournament/services"
	"github.com/Dosada05/tt-tournament/storage"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 15 * time.Second

func newServeCommand() *cobra.Command {
	var migrate bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP and WebSocket server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), cfg, logger, migrate)
		},
	}

	cmd.Flags().BoolVar(&migrate, "migrate", false, "apply the schema before serving (postgres only)")
	return cmd
}

func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) (repositories.Transactor, repositories.Repositories, func(), error) {
	if cfg.StoreDriver == config.StoreMemory {
		logger.Warn("using in-memory store, data is lost on exit")
		store := memory.NewStore()
		return store, store.Repositories(), func() {}, nil
	}

	dbConn, err := db.Connect(cfg.DatabaseURL, cfg.DBTimeout)
	if err != nil {
		return nil, repositories.Repositories{}, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	closeDB := func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		} else {
			logger.Info("database connection closed")
		}
	}
	logger.Info("database connection established")

	if migrate {
		if err := db.Migrate(ctx, dbConn); err != nil {
			closeDB()
			return nil, repositories.Repositories{}, nil, err
		}
		logger.Info("schema applied")
	}

	return repositories.NewPostgresTransactor(dbConn), repositories.NewPostgresRepositories(dbConn), closeDB, nil
}

func newUploader(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.FileUploader, error) {
	r2 := storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	}
	if !r2.Enabled() {
		logger.Info("result archiving disabled, no R2 settings")
		return storage.NewDisabledUploader(), nil
	}
	uploader, err := storage.NewCloudflareR2Uploader(ctx, r2)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudflare R2 uploader: %w", err)
	}
	logger.Info("Cloudflare R2 uploader initialized", slog.String("bucket", cfg.R2BucketName))
	return uploader, nil
}

func runServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, migrate bool) error {
	if ctx == nil {
		ctx = context.Background()
	}

	tx, repos, closeStore, err := openStore(ctx, cfg, logger, migrate)
	if err != nil {
		return err
	}
	defer closeStore()

	uploader, err := newUploader(ctx, cfg, logger)
	if err != nil {
		return err
	}

	wsHub := brackets.NewHub()
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	tournamentService := services.NewTournamentService(tx, repos, wsHub, uploader, logger)
	bracketService := services.NewBracketService(tx, repos, wsHub, logger, services.WithGroupSize(cfg.GroupSize))
	matchService := services.NewMatchService(tx, repos, wsHub, uploader, logger)
	playerService := services.NewPlayerService(tx, repos, logger)
	logger.Info("services initialized")

	router := chi.NewRouter()
	api.SetupRoutes(router, api.Options{
		JWTSecret:      cfg.JWTSecretKey,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: 30 * time.Second,
	}, api.Handlers{
		Tournaments: handlers.NewTournamentHandler(tournamentService, bracketService, matchService),
		Matches:     handlers.NewMatchHandler(matchService),
		Players:     handlers.NewPlayerHandler(playerService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, tournamentService, originChecker(cfg.AllowedOrigins), logger),
	})
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 35 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			return err
		}
		logger.Info("server shutdown complete")
	}
	return nil
}

// originChecker returns nil (any origin) when the wildcard is allowed.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}
