package create

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

	"github.com/go-chi/chi/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/membership-service/internal/http/middlewarectx"
	"github.com/magabrotheeeer/membership-service/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Create(ctx context.Context, userUID string, req models.DummyMembershipCreate) (*models.Membership, error) {
	args := m.Called(ctx, userUID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Membership), args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	created := &models.Membership{
		UserUID:          "uid-1",
		Type:             "full",
		Status:           models.MembershipStatusActive,
		MembershipNumber: "MZIP2025001",
		ExpiresAt:        time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC),
	}

	tests := []struct {
		name           string
		callerUID      string
		requestBody    interface{}
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:        "успешное создание собственного членства",
			callerUID:   "uid-1",
			requestBody: models.DummyMembershipCreate{Type: "full", DurationMonths: 12},
			setupMock: func(m *MockService) {
				// UID берётся из токена, а не из запроса
				m.On("Create", mock.Anything, "uid-1",
					models.DummyMembershipCreate{Type: "full", DurationMonths: 12}).
					Return(created, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"membership_number":"MZIP2025001"`,
		},
		{
			name:           "отсутствует авторизация",
			callerUID:      "",
			requestBody:    models.DummyMembershipCreate{Type: "full", DurationMonths: 12},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:           "некорректный JSON",
			callerUID:      "uid-1",
			requestBody:    "not a json",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "неизвестный тип членства",
			callerUID:      "uid-1",
			requestBody:    models.DummyMembershipCreate{Type: "platinum", DurationMonths: 12},
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field Type has unsupported value`,
		},
		{
			name:        "ошибка сервиса",
			callerUID:   "uid-1",
			requestBody: models.DummyMembershipCreate{Type: "full", DurationMonths: 12},
			setupMock: func(m *MockService) {
				m.On("Create", mock.Anything, "uid-1",
					models.DummyMembershipCreate{Type: "full", DurationMonths: 12}).
					Return(nil, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `"error":"failed to create membership"`,
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

			req := httptest.NewRequest(http.MethodPost, "/membership", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			ctx := context.WithValue(req.Context(), middleware.RequestIDKey, "req-id")
			if tt.callerUID != "" {
				ctx = context.WithValue(ctx, middlewarectx.UserUID, tt.callerUID)
			}
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
