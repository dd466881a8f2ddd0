package api

import (
	"database/sql"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/erazemk/labstock/internal/metrics"
	"github.com/erazemk/labstock/internal/model"
	"github.com/erazemk/labstock/internal/rotation"
	"github.com/erazemk/labstock/internal/timeutil"
)

// Deps are the collaborators shared by all handlers.
type Deps struct {
	DB          *sql.DB
	JWTSecret   string
	TokenTTL    time.Duration
	Rotation    *rotation.Calculator
	Clock       *timeutil.Clock
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	CORSOrigins []string
}

// NewRouter creates the API router with all endpoints registered.
func NewRouter(d *Deps) http.Handler {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Metrics == nil {
		d.Metrics = metrics.New()
	}

	mux := http.NewServeMux()

	authHandler := &AuthHandler{d}
	usersHandler := &UsersHandler{d}
	itemsHandler := &ItemsHandler{d}
	checksHandler := &ChecksHandler{d}
	dashboardHandler := &DashboardHandler{d}
	rotationHandler := &RotationHandler{d}
	ordersHandler := &OrdersHandler{d}
	exportHandler := &ExportHandler{d}

	authMW := AuthMiddleware(d.JWTSecret, d.DB, d.Logger)
	requireAdmin := RequireRole(model.RoleAdmin)
	authed := func(h http.HandlerFunc) http.Handler { return authMW(h) }
	admin := func(h http.HandlerFunc) http.Handler { return authMW(requireAdmin(h)) }

	// Public.
	mux.HandleFunc("POST /api/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/auth/register", authHandler.Register)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.Handle("GET /metrics", d.Metrics.Handler())

	// Own account.
	mux.Handle("PUT /api/auth/password", authed(authHandler.ChangePassword))
	mux.Handle("POST /api/auth/logout", authed(authHandler.Logout))

	// Dashboard and rotation.
	mux.Handle("GET /api/dashboard", authed(dashboardHandler.Get))
	mux.Handle("GET /api/rotation", authed(rotationHandler.Get))
	mux.Handle("GET /api/rotation/upcoming", authed(rotationHandler.Upcoming))

	// Checks: submit (duty-gated), read (all), delete (admin).
	mux.Handle("POST /api/checks", authed(checksHandler.Submit))
	mux.Handle("GET /api/checks/latest", authed(checksHandler.Latest))
	mux.Handle("GET /api/history", authed(checksHandler.History))
	mux.Handle("GET /api/history/dates", authed(checksHandler.Dates))
	mux.Handle("DELETE /api/checks/{id}", admin(checksHandler.Delete))
	mux.Handle("POST /api/checks/purge", admin(checksHandler.Purge))
	mux.Handle("DELETE /api/checks", admin(checksHandler.DeleteAll))

	// Items: read (all), write (admin).
	mux.Handle("GET /api/items", authed(itemsHandler.List))
	mux.Handle("GET /api/items/{id}", authed(itemsHandler.Get))
	mux.Handle("POST /api/items", admin(itemsHandler.Create))
	mux.Handle("PUT /api/items/{id}", admin(itemsHandler.Update))
	mux.Handle("DELETE /api/items/{id}", admin(itemsHandler.Delete))

	// Orders.
	mux.Handle("GET /api/orders", authed(ordersHandler.List))
	mux.Handle("POST /api/orders", authed(ordersHandler.Create))
	mux.Handle("POST /api/orders/{id}/status", authed(ordersHandler.Transition))
	mux.Handle("DELETE /api/orders", admin(ordersHandler.DeleteAll))

	// Users (admin only).
	mux.Handle("GET /api/users", admin(usersHandler.List))
	mux.Handle("POST /api/users", admin(usersHandler.Create))
	mux.Handle("GET /api/users/{id}", admin(usersHandler.Get))
	mux.Handle("PUT /api/users/{id}", admin(usersHandler.Update))
	mux.Handle("POST /api/users/{id}/approve", admin(usersHandler.Approve))
	mux.Handle("PUT /api/users/{id}/password", admin(usersHandler.ResetPassword))
	mux.Handle("DELETE /api/users/{id}", admin(usersHandler.Delete))

	// Export (admin only).
	mux.Handle("GET /api/export.csv", admin(exportHandler.CSV))
	mux.Handle("GET /api/export.pdf", admin(exportHandler.PDF))

	var h http.Handler = mux
	h = LoggingMiddleware(d.Logger, d.Metrics)(h)
	h = RecoveryMiddleware(d.Logger)(h)
	h = CORSMiddleware(d.CORSOrigins)(h)
	return h
}
