package create

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/smilemedia/subscription-hub/internal/http/middlewarectx"
	"github.com/smilemedia/subscription-hub/internal/models"
)

// MockService реализует интерфейс create.Service
type MockService struct {
	mock.Mock
}

func (m *MockService) Subscribe(ctx context.Context, now time.Time, userUID uuid.UUID, req models.DummySubscription) (*models.Subscription, error) {
	args := m.Called(ctx, now, userUID, req)
	if res := args.Get(0); res != nil {
		return res.(*models.Subscription), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestCreateHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	userUID := uuid.New()
	tariffID := uuid.New()
	body := `{"tariff_id":"` + tariffID.String() + `","phone_number":"+79991234567"}`

	tests := []struct {
		name           string
		body           string
		withUser       bool
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:     "успешное оформление",
			body:     body,
			withUser: true,
			setupMock: func(m *MockService) {
				sub := &models.Subscription{
					ID:        uuid.New(),
					StartDate: time.Date(2025, 4, 15, 0, 0, 0, 0, time.UTC),
					EndDate:   time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC),
					Expense:   200,
					Cashback:  10,
				}
				m.On("Subscribe", mock.Anything, mock.Anything, userUID, mock.Anything).
					Return(sub, nil)
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"expense":200`,
		},
		{
			name:           "некорректный JSON",
			body:           `{not json`,
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"invalid request body"`,
		},
		{
			name:           "tariff_id не uuid",
			body:           `{"tariff_id":"123","phone_number":"+79991234567"}`,
			withUser:       true,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field TariffID can contain only uuid`,
		},
		{
			name:           "пользователь не авторизован",
			body:           body,
			withUser:       false,
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnauthorized,
			expectedBody:   `"error":"unauthorized"`,
		},
		{
			name:     "повторное оформление",
			body:     body,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, mock.Anything, userUID, mock.Anything).
					Return(nil, models.ErrDuplicateSubscription)
			},
			expectedStatus: http.StatusConflict,
			expectedBody:   `"error":"subscription already exists"`,
		},
		{
			name:     "отказ банка",
			body:     body,
			withUser: true,
			setupMock: func(m *MockService) {
				m.On("Subscribe", mock.Anything, mock.Anything, userUID, mock.Anything).
					Return(nil, models.ErrPaymentFailed)
			},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `"error":"payment failed"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			handler := New(logger, mockService)

			req := httptest.NewRequest(http.MethodPost, "/subscriptions", strings.NewReader(tt.body))
			if tt.withUser {
				ctx := context.WithValue(req.Context(), middlewarectx.UserUID, userUID.String())
				req = req.WithContext(ctx)
			}

			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)

			mockService.AssertExpectations(t)
		})
	}
}
