package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/internal/sales"
	"github.com/kmanager/kiosco/internal/webserver"
)

type registerSalePayload struct {
	PaymentMethod string           `json:"payment_method"`
	Items         []sales.LineItem `json:"items"`
}

func (p *registerSalePayload) validate() *domain.ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(p.PaymentMethod) == "" {
		fields["payment_method"] = "payment method is required"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func registerSaleRoutes() {
	webserver.ApiPOST("/sales", registerSale)
	webserver.ApiGET("/sales", listSales)
	webserver.ApiGET("/sales/daily", listDailySales)
	webserver.ApiGET("/sales/range", listSalesInRange)
	webserver.ApiGET("/sales/recent", listRecentSales)
	webserver.ApiGET("/sales/payment-method", listSalesByPaymentMethod)
	webserver.ApiGET("/sales/total/daily", dailySalesTotal)
	webserver.ApiGET("/sales/total/range", rangeSalesTotal)
	webserver.ApiGET("/sales/total/payment-methods", paymentMethodTotals)
	webserver.ApiGET("/sales/:id", getSale)
}

func registerSale(c echo.Context) error {
	var payload registerSalePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", nil)
	}
	if verr := payload.validate(); verr != nil {
		return failFromError(c, verr)
	}
	sale, err := saleSvc.RegisterSale(c.Request().Context(), strings.TrimSpace(payload.PaymentMethod), payload.Items)
	if err != nil {
		return failFromError(c, err)
	}
	return created(c, sale)
}

func listSales(c echo.Context) error {
	rows, err := saleSvc.List(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func getSale(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid sale ID", nil)
	}
	sale, err := saleSvc.Get(c.Request().Context(), id)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, sale)
}

func listDailySales(c echo.Context) error {
	rows, err := saleSvc.SalesForDay(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func listSalesInRange(c echo.Context) error {
	start, end, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
	}
	rows, err := saleSvc.SalesBetween(c.Request().Context(), start, end)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func listRecentSales(c echo.Context) error {
	rows, err := saleSvc.RecentSales(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func listSalesByPaymentMethod(c echo.Context) error {
	method := strings.TrimSpace(c.QueryParam("method"))
	if method == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Payment method is required", nil)
	}
	rows, err := saleSvc.SalesByPaymentMethod(c.Request().Context(), method)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

type totalResponse struct {
	Total float64 `json:"total"`
}

func dailySalesTotal(c echo.Context) error {
	total, err := saleSvc.TotalForDay(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, totalResponse{Total: total})
}

func rangeSalesTotal(c echo.Context) error {
	start, end, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
	}
	total, err := saleSvc.TotalBetween(c.Request().Context(), start, end)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, totalResponse{Total: total})
}

func paymentMethodTotals(c echo.Context) error {
	start, end, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
	}
	rows, err := saleSvc.TotalsByPaymentMethod(c.Request().Context(), start, end)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}
