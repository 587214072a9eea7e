package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/CrowderSoup/kanban/handlers"
	"github.com/CrowderSoup/kanban/services"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, closeClient, err := openClient(ctx)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer closeClient()

		tokens, closeTokens, err := tokenStore(ctx)
		if err != nil {
			return err
		}
		defer closeTokens()

		users := services.NewUserService(client)
		authService := services.NewAuthService(cfg.JWTSecret, services.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, tokens, users)

		router := handlers.NewRouter(
			handlers.NewAuthHandler(authService, cfg.DevMode),
			handlers.NewBoardHandler(client),
			handlers.NewAuthMiddleware(authService),
			cfg.CORSOrigins,
		)

		server := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			log.WithField("port", cfg.Port).Info("Server starting")
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		select {
		case err := <-errCh:
			return err
		case <-sig:
		}

		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}

// tokenStore returns the magic-link store and a function that releases it.
func tokenStore(ctx context.Context) (services.TokenStore, func() error, error) {
	if cfg.RedisURL == "" {
		return services.NewMemoryTokenStore(), func() error { return nil }, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return services.NewRedisTokenStore(rdb), rdb.Close, nil
}
