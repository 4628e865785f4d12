package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/riverdriver/riverpgxv5"
	"github.com/riverqueue/river/rivermigrate"
	"github.com/rs/cors"

	"github.com/quickgig/backend/internal/accounts"
	"github.com/quickgig/backend/internal/auth"
	"github.com/quickgig/backend/internal/config"
	"github.com/quickgig/backend/internal/handlers"
	"github.com/quickgig/backend/internal/ledger"
	"github.com/quickgig/backend/internal/notify"
	"github.com/quickgig/backend/internal/payments"
	"github.com/quickgig/backend/internal/reconcile"
	"github.com/quickgig/backend/internal/repository"
	"github.com/quickgig/backend/internal/router"
	"github.com/quickgig/backend/internal/submissions"
	"github.com/quickgig/backend/internal/tasks"
	"github.com/quickgig/backend/internal/withdrawals"

	"github.com/google/uuid"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		slog.Error("Unable to create database pool", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("Cannot reach PostgreSQL (connection refused or invalid). Ensure Postgres is running, e.g. make dev-up or docker-compose up -d", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to PostgreSQL database successfully!")

	// River migrations
	migrator, err := rivermigrate.New(riverpgxv5.New(pool), nil)
	if err != nil {
		slog.Error("Failed to create River migrator", "error", err)
		os.Exit(1)
	}
	if _, err := migrator.Migrate(ctx, rivermigrate.DirectionUp, nil); err != nil {
		slog.Error("River migrate up failed. If the error is 'connection refused', start PostgreSQL first (e.g. make dev-up)", "error", err)
		os.Exit(1)
	}
	slog.Info("River migrations applied")

	// Repositories
	accountRepo := repository.NewAccountRepo(pool)
	taskRepo := repository.NewTaskRepo(pool)
	submissionRepo := repository.NewSubmissionRepo(pool)
	withdrawalRepo := repository.NewWithdrawalRepo(pool)
	paymentRepo := repository.NewPaymentRepo(pool)
	coinLedgerRepo := repository.NewCoinLedgerRepo(pool)
	notificationRepo := repository.NewNotificationRepo(pool)
	intentRepo := repository.NewIntentRepo(pool)

	ledgerSvc := ledger.NewService(accountRepo, coinLedgerRepo, logger)

	// Background workers
	workers := river.NewWorkers()
	river.AddWorker(workers, notify.NewWorker(notificationRepo, logger))
	river.AddWorker(workers, reconcile.NewWorker(intentRepo, ledgerSvc, taskRepo, logger))

	riverClient, err := river.NewClient(riverpgxv5.New(pool), &river.Config{
		Queues: map[string]river.QueueConfig{
			river.QueueDefault: {MaxWorkers: 10},
		},
		Workers: workers,
	})
	if err != nil {
		slog.Error("Failed to create River client", "error", err)
		os.Exit(1)
	}

	notifier := notify.NewQueueNotifier(func(ctx context.Context, args notify.Args) error {
		_, err := riverClient.Insert(ctx, args, nil)
		return err
	}, logger)
	gaps := reconcile.NewRecorder(intentRepo, func(ctx context.Context, intentID uuid.UUID) error {
		_, err := riverClient.Insert(ctx, reconcile.Args{IntentID: intentID}, nil)
		return err
	}, logger)

	// Lifecycle engines
	taskSvc := tasks.NewService(taskRepo, ledgerSvc, gaps, logger)
	submissionSvc := submissions.NewService(submissionRepo, taskRepo, ledgerSvc, gaps, notifier, logger)
	withdrawalSvc := withdrawals.NewService(withdrawalRepo, accountRepo, ledgerSvc, logger)
	paymentSvc := payments.NewService(paymentRepo, ledgerSvc, payments.FixedProcessor{}, gaps, logger)
	accountSvc := accounts.NewService(accountRepo, taskRepo, submissionRepo)

	authSvc := auth.NewService(accountRepo, cfg.Auth.JWTSecret)
	authHandler := auth.NewHandler(authSvc, logger)

	apiRouter := router.New(
		authHandler,
		&handlers.TaskHandler{Tasks: taskSvc, Logger: logger},
		&handlers.SubmissionHandler{Submissions: submissionSvc, Logger: logger},
		&handlers.WithdrawalHandler{Withdrawals: withdrawalSvc, Logger: logger},
		&handlers.PaymentHandler{Payments: paymentSvc, Logger: logger},
		&handlers.NotificationHandler{Notifications: notificationRepo, Logger: logger},
		&handlers.LedgerHandler{Journal: coinLedgerRepo, Logger: logger},
		&handlers.AdminHandler{Accounts: accountSvc, Logger: logger},
		authSvc,
		accountRepo,
	)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
	}).Handler(apiRouter)

	// Start River client (processes jobs)
	riverCtx, stopRiver := context.WithCancel(ctx)
	defer stopRiver()
	go func() {
		if err := riverClient.Start(riverCtx); err != nil && riverCtx.Err() == nil {
			slog.Error("River client stopped", "error", err)
		}
	}()

	// Re-enqueue intents left over from a crash mid-operation.
	if err := sweepUnresolvedIntents(ctx, intentRepo, riverClient); err != nil {
		slog.Warn("Recovery intent sweep failed, intents remain queued for next boot", "error", err)
	}

	slog.Info("Starting HTTP server", "addr", cfg.Addr())
	if err := http.ListenAndServe(cfg.Addr(), corsHandler); err != nil {
		slog.Error("HTTP server failed", "error", err)
		os.Exit(1)
	}
}

func sweepUnresolvedIntents(ctx context.Context, intents *repository.IntentRepo, client *river.Client[pgx.Tx]) error {
	unresolved, err := intents.ListUnresolved(ctx)
	if err != nil {
		return err
	}
	for _, in := range unresolved {
		if _, err := client.Insert(ctx, reconcile.Args{IntentID: in.ID}, nil); err != nil {
			return err
		}
		slog.Info("Re-enqueued recovery intent", "intent_id", in.ID, "kind", in.Kind)
	}
	return nil
}
