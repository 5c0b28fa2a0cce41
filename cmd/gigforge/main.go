package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"

	"github.com/gigforge/gigforge/internal/bus"
	"github.com/gigforge/gigforge/internal/config"
	"github.com/gigforge/gigforge/internal/database"
	"github.com/gigforge/gigforge/internal/domain"
	"github.com/gigforge/gigforge/internal/handler"
	"github.com/gigforge/gigforge/internal/logger"
	"github.com/gigforge/gigforge/internal/notify"
	"github.com/gigforge/gigforge/internal/repository"
)

func main() {
	app := &cli.App{
		Name:  "gigforge",
		Usage: "Project lifecycle and notification engine for the marketplace",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Start the web server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Value:   config.DefaultPort,
						Usage:   "HTTP server port",
						EnvVars: []string{"PORT"},
					},
					&cli.DurationFlag{
						Name:    "outbox-interval",
						Value:   config.DefaultOutboxInterval,
						Usage:   "How often to sweep the notification outbox",
						EnvVars: []string{"OUTBOX_INTERVAL"},
					},
				},
				Action: runServe,
			},
			{
				Name:  "notify-worker",
				Usage: "Run the standalone notification outbox worker",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:    "interval",
						Value:   config.DefaultOutboxInterval,
						Usage:   "How often to sweep the notification outbox",
						EnvVars: []string{"OUTBOX_INTERVAL"},
					},
				},
				Action: runNotifyWorker,
			},
		},
		Action: runServe,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runServe(c *cli.Context) error {
	ctx := c.Context

	port := c.String("port")
	if port == "" {
		port = config.DefaultPort
	}
	databaseURL := c.String("database-url")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool := db.Pool()
	outboxRepo := repository.NewOutboxRepository(pool)
	dispatcher := notify.BuildDispatcher(pool)

	// Synchronous fan-out straight after commit. A failure here leaves
	// the outbox entry pending for the sweep below.
	eventBus := bus.New()
	eventBus.Subscribe(func(ctx context.Context, event domain.Event) error {
		if _, err := dispatcher.Dispatch(ctx, event); err != nil {
			return err
		}
		return outboxRepo.MarkDispatched(ctx, event.ID)
	})

	h := handler.New(pool, eventBus)

	// Background sweep catches events whose synchronous dispatch failed
	// or whose process died between commit and fan-out.
	worker := notify.NewWorker(outboxRepo, dispatcher,
		config.DefaultOutboxBatchSize, config.DefaultOutboxMaxAttempts)
	sweeper := cron.New()
	_, err = sweeper.AddFunc(fmt.Sprintf("@every %s", c.Duration("outbox-interval")), func() {
		if _, err := worker.DrainOnce(ctx); err != nil {
			slog.Error("outbox sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule outbox sweep: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErr := make(chan error, 1)
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		slog.Info("starting server", "server_addr", "http://localhost:"+port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("server error: %w", err)
	case <-done:
		slog.Info("shutting down server")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

func runNotifyWorker(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	databaseURL := c.String("database-url")

	db, err := database.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	pool := db.Pool()
	worker := notify.NewWorker(
		repository.NewOutboxRepository(pool),
		notify.BuildDispatcher(pool),
		config.DefaultOutboxBatchSize,
		config.DefaultOutboxMaxAttempts,
	)

	if err := worker.Run(ctx, c.Duration("interval")); err != nil && err != context.Canceled {
		return fmt.Errorf("worker stopped: %w", err)
	}
	return nil
}
