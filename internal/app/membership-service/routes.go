// Package membershipservice предоставляет маршруты для основного приложения.
package membershipservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/magabrotheeeer/membership-service/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/auth/profileupdate"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/auth/roleupdate"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/health"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/membership/create"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/membership/extend"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/membership/list"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/membership/status"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/membership/statusupdate"
	notificationlist "github.com/magabrotheeeer/membership-service/internal/http/handlers/notification/list"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/notification/markread"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/notification/send"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/payment/paymentinit"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/payment/paymentlist"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/payment/paymentverify"
	"github.com/magabrotheeeer/membership-service/internal/http/handlers/payment/paymentwebhook"
	"github.com/magabrotheeeer/membership-service/internal/http/middlewarectx"
	authservice "github.com/magabrotheeeer/membership-service/internal/services/auth"
	membershipsvc "github.com/magabrotheeeer/membership-service/internal/services/membership"
	notificationservice "github.com/magabrotheeeer/membership-service/internal/services/notification"
	paymentservice "github.com/magabrotheeeer/membership-service/internal/services/payment"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	membershipService *membershipsvc.Service,
	paymentService *paymentservice.Service,
	notificationService *notificationservice.Service,
	webhookSecret string) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки
		r.Post("/auth/register", register.New(logger, authService).ServeHTTP)
		r.Post("/auth/login", login.New(logger, authService).ServeHTTP)

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(authService, logger))
			r.Get("/auth/me", me.New(logger, authService).ServeHTTP)
			r.Put("/auth/profile", profileupdate.New(logger, authService).ServeHTTP)
			r.Get("/membership/status", status.New(logger, membershipService).ServeHTTP)
			r.Post("/membership", create.New(logger, membershipService).ServeHTTP)
			// Продление своё или администратором, проверка внутри обработчика
			r.Post("/membership/{uid}/extend", extend.New(logger, membershipService).ServeHTTP)
			r.Post("/payments/initialize", paymentinit.New(logger, paymentService, authService).ServeHTTP)
			r.Get("/payments/verify/{reference}", paymentverify.New(logger, paymentService).ServeHTTP)
			r.Get("/payments/history", paymentlist.New(logger, paymentService).ServeHTTP)
			r.Get("/notifications", notificationlist.New(logger, notificationService).ServeHTTP)
			r.Put("/notifications/{id}/read", markread.New(logger, notificationService).ServeHTTP)

			// Административные операции
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.AdminOnlyMiddleware(logger))
				r.Put("/auth/role/{uid}", roleupdate.New(logger, authService).ServeHTTP)
				r.Get("/membership", list.New(logger, membershipService).ServeHTTP)
				r.Put("/membership/{uid}/status", statusupdate.New(logger, membershipService).ServeHTTP)
				r.Post("/notifications/send", send.New(logger, notificationService).ServeHTTP)
			})
		})

		// Webhook endpoint (без аутентификации, подпись проверяется по телу)
		r.Post("/payments/webhook", paymentwebhook.New(logger, paymentService, webhookSecret).ServeHTTP)
	})

	r.Get("/health", health.New(logger).ServeHTTP)
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
