// Package paymentverify реализует HTTP-обработчик проверки платежа по запросу владельца.
//
// Проверка чужого платежа возвращает 403: пользователь не может зачесть
// членство по чужой ссылке.
package paymentverify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/membership-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-service/internal/http/response"
	"github.com/magabrotheeeer/membership-service/internal/lib/sl"
	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/magabrotheeeer/membership-service/internal/services/payment"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

// Handler обрабатывает HTTP-запросы проверки платежа.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики проверки платежа.
type Service interface {
	Verify(ctx context.Context, callerUID, reference string) (*models.Payment, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Проверить платёж
// @Description Запрашивает статус платежа у шлюза и при успехе зачитывает его в членство.
// @Tags Payments
// @Produce  json
// @Param reference path string true "Ссылка платежа"
// @Success 200 {object} map[string]any "Платёж"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Платёж принадлежит другому пользователю"
// @Failure 404 {object} response.ErrorResponse "Платёж не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /payments/verify/{reference} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.paymentverify"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	reference := chi.URLParam(r, "reference")
	if reference == "" {
		log.Error("missing reference in path")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("missing payment reference"))
		return
	}

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	p, err := h.service.Verify(r.Context(), userUID, reference)
	if err != nil {
		switch {
		case errors.Is(err, payment.ErrOwnershipMismatch):
			log.Error("payment ownership mismatch",
				slog.String("reference", reference),
				slog.String("user_uid", userUID))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("payment belongs to another user"))
		case errors.Is(err, repository.ErrNotFound):
			log.Error("payment not found", slog.String("reference", reference))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("payment not found"))
		default:
			log.Error("failed to verify payment", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("failed to verify payment"))
		}
		return
	}

	log.Info("payment verified",
		slog.String("reference", reference),
		slog.String("status", p.Status))
	render.JSON(w, r, response.OKWithData(p))
}
