package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/esportehub/equipment-reservation/internal/errs"
	"github.com/esportehub/equipment-reservation/internal/model"
	"github.com/esportehub/equipment-reservation/pkg/auth"
	mw "github.com/esportehub/equipment-reservation/pkg/middleware"
	"github.com/esportehub/equipment-reservation/pkg/validate"
)

type Handler struct {
	reservationSvc ReservationService
	log            *zap.Logger
}

func New(reservationSvc ReservationService, log *zap.Logger) *Handler {
	return &Handler{
		reservationSvc: reservationSvc,
		log:            log,
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	e.Validator = validate.NewCustomValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		mw.NewRateLimiter(apiRPS),
		mw.JwtAuthentication,
	)

	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations", h.GetReservations)
	api.GET("/reservations/:id", h.GetReservation)
	api.PATCH("/reservations/:id", h.UpdateReservation)
	api.DELETE("/reservations/:id", h.DeleteReservation)

	api.GET("/equipments", h.ListEquipment)
	api.GET("/equipments/:id", h.GetEquipment)
	api.GET("/equipments/:id/availability", h.Availability)
	api.POST("/equipments/:id/check-fit", h.CheckFit)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// httpError maps engine error kinds onto response statuses.
func httpError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, errs.ErrInvalidPeriod),
		errors.Is(err, errs.ErrInvalidAmount),
		errors.Is(err, errs.ErrIllegalTransition):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, errs.ErrCapacityExceeded),
		errors.Is(err, errs.ErrReturnedImmutable),
		errors.Is(err, errs.ErrDeleteInProgress):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func pathID(c echo.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	userName := auth.UserName(c.Request().Context())
	if userName == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "username is empty")
	}
	req.Username = userName

	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.reservationSvc.Create(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) GetReservations(c echo.Context) error {
	ctx := c.Request().Context()
	userName := auth.UserName(ctx)
	if userName == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "username is empty")
	}

	filter := model.ReservationFilter{Username: userName}
	if v := c.QueryParam("equipmentId"); v != "" {
		id, err := strconv.Atoi(v)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid equipmentId")
		}
		filter.EquipmentID = id
	}
	if v := c.QueryParam("status"); v != "" {
		status := model.Status(v)
		if !status.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid status")
		}
		filter.Status = status
	}

	items, err := h.reservationSvc.List(ctx, filter)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	res, err := h.reservationSvc.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) UpdateReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var patch model.UpdateReservationRequest
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.reservationSvc.Update(c.Request().Context(), id, patch)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) DeleteReservation(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.reservationSvc.Delete(c.Request().Context(), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) ListEquipment(c echo.Context) error {
	items, err := h.reservationSvc.ListEquipment(c.Request().Context())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetEquipment(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	eq, err := h.reservationSvc.GetEquipment(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, eq)
}

type availabilityResponse struct {
	EquipmentID    int `json:"equipmentId"`
	AvailableUnits int `json:"availableUnits"`
}

func (h *Handler) Availability(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	available, err := h.reservationSvc.Availability(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, availabilityResponse{EquipmentID: id, AvailableUnits: available})
}

type checkFitResponse struct {
	Fit bool `json:"fit"`
}

func (h *Handler) CheckFit(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req model.CheckFitRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.reservationSvc.CheckFit(c.Request().Context(), id, req); err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, checkFitResponse{Fit: true})
}
