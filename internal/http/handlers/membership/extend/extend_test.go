package extend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/membership-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-service/internal/models"
	"github.com/magabrotheeeer/membership-service/internal/services/membership"
	"github.com/magabrotheeeer/membership-service/internal/storage/repository"
)

// MockService реализует интерфейс extend.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Extend(ctx context.Context, userUID string, months int, policy membership.ExtendPolicy) (*models.Membership, error) {
	args := m.Called(ctx, userUID, months, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func TestExtendHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	extended := &models.Membership{
		UserUID:          "uid-1",
		MembershipNumber: "MZIP2025004",
		ExpiresAt:        time.Date(2026, 2, 28, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		uid            string
		callerUID      string
		callerRole     string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное продление собственного членства",
			uid:         "uid-1",
			callerUID:   "uid-1",
			callerRole:  "user",
			requestBody: models.DummyMembershipExtend{Months: 3},
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "uid-1", 3, membership.AnchorNow).
					Return(extended, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"membership_number":"MZIP2025004"`,
		},
		{
			name:        "администратор продлевает чужое членство",
			uid:         "uid-1",
			callerUID:   "uid-admin",
			callerRole:  "admin",
			requestBody: models.DummyMembershipExtend{Months: 3},
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "uid-1", 3, membership.AnchorNow).
					Return(extended, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"membership_number":"MZIP2025004"`,
		},
		{
			name:           "чужое членство без прав администратора",
			uid:            "uid-1",
			callerUID:      "uid-other",
			callerRole:     "user",
			requestBody:    models.DummyMembershipExtend{Months: 3},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusForbidden,
			expectedBody:   `"error":"cannot extend another user's membership"`,
		},
		{
			name:           "отсутствует авторизация",
			uid:            "uid-1",
			callerUID:      "",
			callerRole:     "",
			requestBody:    models.DummyMembershipExtend{Months: 3},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "некорректный JSON",
			uid:            "uid-1",
			callerUID:      "uid-1",
			callerRole:     "user",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "срок вне диапазона",
			uid:            "uid-1",
			callerUID:      "uid-1",
			callerRole:     "user",
			requestBody:    models.DummyMembershipExtend{Months: 24},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Months is out of allowed range`,
		},
		{
			name:        "членство не найдено",
			uid:         "uid-404",
			callerUID:   "uid-404",
			callerRole:  "user",
			requestBody: models.DummyMembershipExtend{Months: 3},
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "uid-404", 3, membership.AnchorNow).
					Return(nil, repository.ErrNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `"error":"membership not found"`,
		},
		{
			name:        "ошибка сервиса",
			uid:         "uid-1",
			callerUID:   "uid-1",
			callerRole:  "user",
			requestBody: models.DummyMembershipExtend{Months: 3},
			setupMock: func(m *MockService) {
				m.On("Extend", mock.Anything, "uid-1", 3, membership.AnchorNow).
					Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to extend membership"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			var body []byte
			var err error
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				assert.NoError(t, err)
			}

			req := httptest.NewRequest(http.MethodPost, "/membership/"+tt.uid+"/extend", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.callerUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.callerUID)
				ctx = context.WithValue(ctx, middlewarectx.Role, tt.callerRole)
			}
			req = req.WithContext(ctx)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("uid", tt.uid)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
