// Package status реализует HTTP-обработчик получения статуса собственного членства.
//
// Активность вычисляется на момент запроса: запись со статусом active, но
// прошедшей датой истечения, возвращается с is_active=false. Отсутствие
// записи — не ошибка.
package status

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/membership-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-service/internal/http/response"
	"github.com/magabrotheeeer/membership-service/internal/lib/sl"
	"github.com/magabrotheeeer/membership-service/internal/models"
)

// Handler обрабатывает HTTP-запросы статуса членства.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики статуса членства.
type Service interface {
	Status(ctx context.Context, userUID string) (*models.MembershipStatusView, error)
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Статус членства текущего пользователя
// @Description Возвращает запись о членстве и вычисленную активность. Отсутствие записи — не ошибка.
// @Tags Membership
// @Produce  json
// @Success 200 {object} map[string]any "Статус членства"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Security BearerAuth
// @Router /membership/status [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.membership.status"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userUID, ok := r.Context().Value(middlewarectx.UserUID).(string)
	if !ok || userUID == "" {
		log.Error("user uid not found in context")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	view, err := h.service.Status(r.Context(), userUID)
	if err != nil {
		log.Error("failed to get membership status", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("failed to get membership status"))
		return
	}

	render.JSON(w, r, response.OKWithData(map[string]any{
		"membership": view.Membership,
		"is_active":  view.IsActive,
	}))
}
