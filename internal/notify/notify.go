// Package notify emits lifecycle notification events. Delivery is
// fire-and-forget: a failed enqueue or a failed delivery is logged and never
// rolls back the operation that produced the event.
package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/riverqueue/river"

	"github.com/quickgig/backend/internal/models"
)

// Args is one notification event to deliver.
type Args struct {
	Message        string `json:"message"`
	RecipientEmail string `json:"recipient_email"`
	ActorEmail     string `json:"actor_email,omitempty"`
	Route          string `json:"route"`
}

func (Args) Kind() string { return "deliver_notification" }

// Notifier is what the lifecycle engines see. Implementations must not fail
// the caller.
type Notifier interface {
	Notify(ctx context.Context, args Args)
}

// EnqueueFunc schedules delivery of one event, typically a closure over
// river.Client.Insert.
type EnqueueFunc func(ctx context.Context, args Args) error

// QueueNotifier hands events to the background queue.
type QueueNotifier struct {
	enqueue EnqueueFunc
	log     *slog.Logger
}

func NewQueueNotifier(enqueue EnqueueFunc, log *slog.Logger) *QueueNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &QueueNotifier{enqueue: enqueue, log: log}
}

func (n *QueueNotifier) Notify(ctx context.Context, args Args) {
	if err := n.enqueue(ctx, args); err != nil {
		n.log.Warn("notification enqueue failed", "recipient", args.RecipientEmail, "route", args.Route, "error", err)
	}
}

// Store persists delivered notifications for the recipient's feed.
type Store interface {
	Insert(ctx context.Context, n *models.Notification) error
}

// Worker delivers notification events from the queue.
type Worker struct {
	river.WorkerDefaults[Args]
	store Store
	log   *slog.Logger
}

func NewWorker(store Store, log *slog.Logger) *Worker {
	if log == nil {
		log = slog.Default()
	}
	return &Worker{store: store, log: log}
}

func (w *Worker) Work(ctx context.Context, job *river.Job[Args]) error {
	n := &models.Notification{
		ID:             uuid.New(),
		Message:        job.Args.Message,
		RecipientEmail: job.Args.RecipientEmail,
		ActorEmail:     job.Args.ActorEmail,
		Route:          job.Args.Route,
	}
	if err := w.store.Insert(ctx, n); err != nil {
		return fmt.Errorf("store notification for %s: %w", n.RecipientEmail, err)
	}
	w.log.Info("notification delivered", "recipient", n.RecipientEmail, "route", n.Route)
	return nil
}
