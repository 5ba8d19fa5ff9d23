package api

import (
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/internal/inventory"
	"github.com/kmanager/kiosco/internal/sales"
)

var (
	invSvc  *inventory.Service
	saleSvc *sales.Service
)

// Init wires the services and registers every API route. Must run after
// webserver.Init.
func Init(inv *inventory.Service, sal *sales.Service) {
	invSvc = inv
	saleSvc = sal
	registerProductRoutes()
	registerSaleRoutes()
	registerReportRoutes()
}

type errorResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
	Detail    interface{}       `json:"detail,omitempty"`
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, data)
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, errorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Code:      code,
		Message:   message,
		Detail:    detail,
	})
}

// failFromError is the single translation point from the error taxonomy to
// HTTP statuses. Handlers never map errors themselves.
func failFromError(c echo.Context, err error) error {
	var invalidErr *domain.InvalidArgumentError
	var stockErr *domain.InsufficientStockError
	var validationErr *domain.ValidationError

	switch {
	case domain.IsNotFound(err):
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.As(err, &stockErr):
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_STOCK", stockErr.Error(), map[string]interface{}{
			"product":   stockErr.ProductName,
			"available": stockErr.Available,
			"requested": stockErr.Requested,
		})
	case errors.As(err, &invalidErr):
		return fail(c, http.StatusBadRequest, "INVALID_ARGUMENT", invalidErr.Reason, nil)
	case errors.As(err, &validationErr):
		return c.JSON(http.StatusBadRequest, errorResponse{
			Timestamp: time.Now(),
			Status:    http.StatusBadRequest,
			Code:      "VALIDATION_FAILED",
			Message:   "validation failed",
			Errors:    validationErr.Fields,
		})
	default:
		zap.L().Error("unexpected api error", zap.Error(err))
		return fail(c, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error", nil)
	}
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	id := cast.ToInt64(c.Param(name))
	if id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}

// parseTimeRange reads the start/end query parameters, accepting any
// reasonable timestamp format.
func parseTimeRange(c echo.Context) (time.Time, time.Time, error) {
	start, err := dateparse.ParseLocal(c.QueryParam("start"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "invalid start")
	}
	end, err := dateparse.ParseLocal(c.QueryParam("end"))
	if err != nil {
		return time.Time{}, time.Time{}, errors.Wrap(err, "invalid end")
	}
	return start, end, nil
}
