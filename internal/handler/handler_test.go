package handler_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/handler"
	"github.com/esportehub/equipment-reservation/internal/model"
	"github.com/esportehub/equipment-reservation/pkg/auth"
	"github.com/esportehub/equipment-reservation/pkg/validate"

	service_mocks "github.com/esportehub/equipment-reservation/internal/handler/mocks"
)

func authAs(username string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			c.SetRequest(req.WithContext(auth.SetAuthContext(req.Context(), username, "MEMBER")))
			return next(c)
		}
	}
}

func TestHandler_CreateReservation(t *testing.T) {
	t.Parallel()

	withdrawalAt := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	returnAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockReservationService)

	tests := []struct {
		name         string
		body         string
		username     string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:     "ok",
			body:     `{"equipmentId":1,"withdrawalAt":"2025-06-01T10:00:00Z","returnAt":"2025-06-01T12:00:00Z","amount":2}`,
			username: "ana",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().
					Create(gomock.Any(), model.CreateReservationRequest{
						EquipmentID:  1,
						WithdrawalAt: withdrawalAt,
						ReturnAt:     returnAt,
						Amount:       2,
						Username:     "ana",
					}).
					Return(model.Reservation{
						ID:             1,
						ReservationUID: "f7cdc58f-2caf-4b15-9727-f89dcc629b27",
						Username:       "ana",
						EquipmentID:    1,
						Period:         model.Period{WithdrawalAt: withdrawalAt, ReturnAt: returnAt},
						Amount:         2,
						Status:         model.StatusScheduled,
					}, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"id":1,"reservationUid":"f7cdc58f-2caf-4b15-9727-f89dcc629b27","username":"ana","equipmentId":1,"withdrawalAt":"2025-06-01T10:00:00Z","returnAt":"2025-06-01T12:00:00Z","amount":2,"status":"SCHEDULED"}`,
			},
		},
		{
			name:         "err. missing amount",
			body:         `{"equipmentId":1,"withdrawalAt":"2025-06-01T10:00:00Z","returnAt":"2025-06-01T12:00:00Z"}`,
			username:     "ana",
			mockBehavior: func(r *service_mocks.MockReservationService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
		{
			name:     "err. capacity exceeded",
			body:     `{"equipmentId":1,"withdrawalAt":"2025-06-01T10:00:00Z","returnAt":"2025-06-01T12:00:00Z","amount":2}`,
			username: "ana",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(model.Reservation{}, errors.Wrap(errs.ErrCapacityExceeded, "requested 2"))
			},
			response: response{
				expectedCode: http.StatusConflict,
			},
		},
		{
			name:     "err. equipment not found",
			body:     `{"equipmentId":99,"withdrawalAt":"2025-06-01T10:00:00Z","returnAt":"2025-06-01T12:00:00Z","amount":2}`,
			username: "ana",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().
					Create(gomock.Any(), gomock.Any()).
					Return(model.Reservation{}, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
			},
		},
		{
			name:         "err. no username",
			body:         `{"equipmentId":1,"withdrawalAt":"2025-06-01T10:00:00Z","returnAt":"2025-06-01T12:00:00Z","amount":2}`,
			username:     "",
			mockBehavior: func(r *service_mocks.MockReservationService) {},
			response: response{
				expectedCode: http.StatusUnauthorized,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockReservationService(c)
			tt.mockBehavior(svc)

			log := zap.NewExample().Named("test")
			h := handler.New(svc, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.POST("/reservations", h.CreateReservation, authAs(tt.username))

			r := httptest.NewRequest(http.MethodPost, "/reservations", strings.NewReader(tt.body))
			r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_Availability(t *testing.T) {
	t.Parallel()

	type response struct {
		expectedCode int
		expectedBody string
	}
	type mockBehavior func(r *service_mocks.MockReservationService)

	tests := []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		response     response
	}{
		{
			name:   "ok",
			target: "/equipments/1/availability",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().Availability(gomock.Any(), 1).Return(3, nil)
			},
			response: response{
				expectedCode: http.StatusOK,
				expectedBody: `{"equipmentId":1,"availableUnits":3}`,
			},
		},
		{
			name:   "err. not found",
			target: "/equipments/42/availability",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().Availability(gomock.Any(), 42).Return(0, errs.ErrNotFound)
			},
			response: response{
				expectedCode: http.StatusNotFound,
			},
		},
		{
			name:         "err. invalid id",
			target:       "/equipments/zero/availability",
			mockBehavior: func(r *service_mocks.MockReservationService) {},
			response: response{
				expectedCode: http.StatusBadRequest,
			},
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockReservationService(c)
			tt.mockBehavior(svc)

			log := zap.NewExample().Named("test")
			h := handler.New(svc, log)

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.GET("/equipments/:id/availability", h.Availability)

			r := httptest.NewRequest(http.MethodGet, tt.target, http.NoBody)
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)

			require.Equal(t, tt.response.expectedCode, w.Code)
			if tt.response.expectedBody != "" {
				require.Equal(t, tt.response.expectedBody, strings.Trim(w.Body.String(), "\n"))
			}
		})
	}
}

func TestHandler_DeleteReservation(t *testing.T) {
	t.Parallel()

	type mockBehavior func(r *service_mocks.MockReservationService)

	tests := []struct {
		name         string
		target       string
		mockBehavior mockBehavior
		expectedCode int
	}{
		{
			name:   "ok",
			target: "/reservations/1",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().Delete(gomock.Any(), 1).Return(nil)
			},
			expectedCode: http.StatusNoContent,
		},
		{
			name:   "err. in progress",
			target: "/reservations/2",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().Delete(gomock.Any(), 2).Return(errs.ErrDeleteInProgress)
			},
			expectedCode: http.StatusConflict,
		},
		{
			name:   "err. not found",
			target: "/reservations/3",
			mockBehavior: func(r *service_mocks.MockReservationService) {
				r.EXPECT().Delete(gomock.Any(), 3).Return(errs.ErrNotFound)
			},
			expectedCode: http.StatusNotFound,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := gomock.NewController(t)
			defer c.Finish()
			svc := service_mocks.NewMockReservationService(c)
			tt.mockBehavior(svc)

			h := handler.New(svc, zap.NewExample().Named("test"))

			e := echo.New()
			e.Validator = validate.NewCustomValidator()
			e.DELETE("/reservations/:id", h.DeleteReservation)

			r := httptest.NewRequest(http.MethodDelete, tt.target, http.NoBody)
			w := httptest.NewRecorder()

			e.ServeHTTP(w, r)

			require.Equal(t, tt.expectedCode, w.Code)
		})
	}
}
