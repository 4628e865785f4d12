package router

import (
	"net/http"

	"github.com/quickgig/backend/internal/auth"
	"github.com/quickgig/backend/internal/handlers"
	"github.com/quickgig/backend/internal/middleware"
	"github.com/quickgig/backend/internal/models"
)

// New returns an http.Handler that serves the API under /api/v1.
// Per-route chain: Auth -> role guard -> handler.
func New(
	authHandler *auth.Handler,
	taskHandler *handlers.TaskHandler,
	submissionHandler *handlers.SubmissionHandler,
	withdrawalHandler *handlers.WithdrawalHandler,
	paymentHandler *handlers.PaymentHandler,
	notificationHandler *handlers.NotificationHandler,
	ledgerHandler *handlers.LedgerHandler,
	adminHandler *handlers.AdminHandler,
	validator middleware.TokenValidator,
	accounts middleware.AccountLookup,
) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.Auth(validator, accounts)
	buyer := middleware.RequireRole(models.RoleBuyer)
	worker := middleware.RequireRole(models.RoleWorker)
	admin := middleware.RequireRole(models.RoleAdmin)

	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)

	mux.Handle("POST /api/v1/tasks", authn(buyer(http.HandlerFunc(taskHandler.Create))))
	mux.Handle("GET /api/v1/tasks", authn(buyer(http.HandlerFunc(taskHandler.ListMine))))
	mux.Handle("GET /api/v1/tasks/available", authn(worker(http.HandlerFunc(taskHandler.ListAvailable))))
	mux.Handle("GET /api/v1/tasks/{id}", authn(http.HandlerFunc(taskHandler.Get)))
	mux.Handle("PATCH /api/v1/tasks/{id}", authn(buyer(http.HandlerFunc(taskHandler.Edit))))
	mux.Handle("DELETE /api/v1/tasks/{id}", authn(buyer(http.HandlerFunc(taskHandler.Delete))))

	mux.Handle("POST /api/v1/tasks/{id}/submissions", authn(worker(http.HandlerFunc(submissionHandler.Submit))))
	mux.Handle("GET /api/v1/submissions", authn(worker(http.HandlerFunc(submissionHandler.ListMine))))
	mux.Handle("GET /api/v1/submissions/pending", authn(buyer(http.HandlerFunc(submissionHandler.ListPending))))
	mux.Handle("POST /api/v1/submissions/{id}/approve", authn(buyer(http.HandlerFunc(submissionHandler.Approve))))
	mux.Handle("POST /api/v1/submissions/{id}/reject", authn(buyer(http.HandlerFunc(submissionHandler.Reject))))

	mux.Handle("POST /api/v1/withdrawals", authn(worker(http.HandlerFunc(withdrawalHandler.Request))))
	mux.Handle("GET /api/v1/withdrawals", authn(worker(http.HandlerFunc(withdrawalHandler.ListMine))))
	mux.Handle("GET /api/v1/withdrawals/pending", authn(admin(http.HandlerFunc(withdrawalHandler.ListPending))))
	mux.Handle("POST /api/v1/withdrawals/{id}/approve", authn(admin(http.HandlerFunc(withdrawalHandler.Approve))))

	mux.Handle("POST /api/v1/payments", authn(buyer(http.HandlerFunc(paymentHandler.TopUp))))
	mux.Handle("GET /api/v1/payments", authn(buyer(http.HandlerFunc(paymentHandler.History))))

	mux.Handle("GET /api/v1/coin-ledger", authn(http.HandlerFunc(ledgerHandler.ListMine)))

	mux.Handle("GET /api/v1/notifications", authn(http.HandlerFunc(notificationHandler.ListMine)))

	mux.Handle("GET /api/v1/admin/accounts", authn(admin(http.HandlerFunc(adminHandler.ListAccounts))))
	mux.Handle("PATCH /api/v1/admin/accounts/{email}", authn(admin(http.HandlerFunc(adminHandler.ChangeRole))))
	mux.Handle("DELETE /api/v1/admin/accounts/{email}", authn(admin(http.HandlerFunc(adminHandler.DeleteAccount))))

	return mux
}
