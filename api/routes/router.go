package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/controllers"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/api/middleware"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/analytics"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/auth"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/contributions"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/groups"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/memberships"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/notifications"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/internal/users"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/auth/session"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/config"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/logger"
	"github.com/soufiane-ekouines/pargne-Intelligente-main-work/pkg/metrics"
)

// Cache is the redis surface the HTTP layer needs: readiness, auth rate
// limits and idempotent replays.
type Cache interface {
	Ping(context.Context) error
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Get(context.Context, string) (string, error)
	SetNX(context.Context, string, any, time.Duration) (bool, error)
	IdempotencyKey(scope, id string) string
}

// Services bundles the domain services exposed over HTTP.
type Services struct {
	Auth          auth.Service
	Register      auth.RegisterService
	Users         users.Service
	Groups        groups.Service
	Memberships   memberships.Service
	Contributions contributions.Service
	Analytics     analytics.Service
	Notifications notifications.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	cache Cache,
	sessionManager session.AccessSessionChecker,
	registry *prometheus.Registry,
	httpMetrics *metrics.HTTP,
	svc Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, httpMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginIdentifierLimit,
	)
	// id tokens carry no login field, so only the per-IP counter applies
	federatedPolicy := middleware.NewAuthRateLimitPolicy(
		"federated",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		0,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterIdentifierLim,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, cache))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	requireAuth := middleware.Auth(cfg.JWT, sessionManager, logg)

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, cache, logg)).Post("/register", controllers.AuthRegister(svc.Register, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, cache, logg)).Post("/login", controllers.AuthLogin(svc.Auth, logg))
		r.With(middleware.AuthRateLimit(federatedPolicy, cache, logg)).Post("/federated", controllers.AuthFederated(svc.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svc.Auth, logg))
		r.With(requireAuth).Post("/logout", controllers.AuthLogout(svc.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(requireAuth)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", controllers.GetMe(svc.Users, logg))
			r.Patch("/", controllers.UpdateMe(svc.Users, logg))
			r.Put("/picture", controllers.SetMyPicture(svc.Users, logg))
			r.Post("/upgrade", controllers.UpgradeMe(svc.Users, logg))
		})

		r.Get("/dashboard", controllers.Dashboard(svc.Groups, logg))

		r.Route("/groups", func(r chi.Router) {
			r.Post("/", controllers.CreateGroup(svc.Groups, logg))
			r.Post("/join", controllers.JoinGroup(svc.Memberships, logg))

			r.Route("/{groupId}", func(r chi.Router) {
				r.Get("/", controllers.GetGroup(svc.Groups, logg))
				r.Get("/progress", controllers.GroupProgress(svc.Analytics, logg))
				r.Get("/analytics", controllers.GroupAnalytics(svc.Analytics, logg))
				r.Get("/export", controllers.ExportGroup(svc.Groups, logg))

				r.Get("/members", controllers.ListGroupMembers(svc.Memberships, logg))
				r.Get("/requests", controllers.ListJoinRequests(svc.Memberships, logg))
				r.Post("/members/{userId}/approve", controllers.ApproveMember(svc.Memberships, logg))
				r.Post("/members/{userId}/reject", controllers.RejectMember(svc.Memberships, logg))

				r.Route("/contributions", func(r chi.Router) {
					r.Get("/", controllers.ListContributions(svc.Contributions, logg))
					r.Get("/pending", controllers.ListPendingContributions(svc.Contributions, logg))
					r.With(middleware.Idempotency(cache, cfg.Idempotency.TTL, logg)).
						Post("/", controllers.SubmitContribution(svc.Contributions, logg))
					r.Post("/{contributionId}/approve", controllers.ApproveContribution(svc.Contributions, logg))
					r.Post("/{contributionId}/reject", controllers.RejectContribution(svc.Contributions, logg))
				})
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(svc.Notifications, logg))
			r.Get("/unread-count", controllers.UnreadNotificationCount(svc.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(svc.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(svc.Notifications, logg))
		})
	})

	return r
}
