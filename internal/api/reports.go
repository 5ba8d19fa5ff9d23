package api

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/labstack/echo/v4"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/internal/webserver"
)

func registerReportRoutes() {
	webserver.ApiGET("/reports/low-stock", lowStockReport)
	webserver.ApiGET("/reports/low-stock/count", lowStockCount)
	webserver.ApiGET("/reports/summary", rangeSummaryReport)
	webserver.ApiGET("/reports/export", exportSalesReport)
}

func lowStockReport(c echo.Context) error {
	rows, err := invSvc.LowStockProducts(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

type countResponse struct {
	Count int `json:"count"`
}

func lowStockCount(c echo.Context) error {
	rows, err := invSvc.LowStockProducts(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, countResponse{Count: len(rows)})
}

func rangeSummaryReport(c echo.Context) error {
	start, end, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
	}
	summary, err := saleSvc.Summary(c.Request().Context(), start, end)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, summary)
}

// exportSalesReport streams the sales of a range as an xlsx attachment, one
// row per sale item.
func exportSalesReport(c echo.Context) error {
	start, end, err := parseTimeRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_RANGE", err.Error(), nil)
	}
	rows, err := saleSvc.SalesBetween(c.Request().Context(), start, end)
	if err != nil {
		return failFromError(c, err)
	}

	buf, err := buildSalesWorkbook(rows)
	if err != nil {
		return failFromError(c, err)
	}

	filename := fmt.Sprintf("sales_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+filename)
	return c.Blob(http.StatusOK,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func buildSalesWorkbook(salesRows []domain.Sale) (*bytes.Buffer, error) {
	const sheet = "Sheet1"
	f := excelize.NewFile()

	headers := []string{"Sale ID", "Timestamp", "Payment Method", "Product ID", "Quantity", "Unit Price", "Subtotal", "Sale Total"}
	for i, h := range headers {
		cell := excelize.ToAlphaString(i) + "1"
		f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for si := range salesRows {
		sale := &salesRows[si]
		for ii := range sale.Items {
			item := &sale.Items[ii]
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sale.ID)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), sale.Timestamp.Format("2006-01-02 15:04:05"))
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sale.PaymentMethod)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), item.ProductID)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), item.Quantity)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), item.UnitPrice)
			f.SetCellValue(sheet, fmt.Sprintf("G%d", row), item.Subtotal())
			f.SetCellValue(sheet, fmt.Sprintf("H%d", row), sale.Total)
			row++
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
