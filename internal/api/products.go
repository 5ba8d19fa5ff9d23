package api

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/internal/webserver"
)

type productPayload struct {
	Name         string  `json:"name"`
	Barcode      string  `json:"barcode"`
	SalePrice    float64 `json:"sale_price"`
	CostPrice    float64 `json:"cost_price"`
	Stock        int     `json:"stock"`
	MinStock     int     `json:"min_stock"`
	Category     string  `json:"category"`
	ImageURL     string  `json:"image_url"`
	SaleType     string  `json:"sale_type"`
	Unit         string  `json:"unit"`
	MinIncrement float64 `json:"min_increment"`
}

// validate rejects structurally bad fields before any business logic runs.
func (p *productPayload) validate() *domain.ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(p.Name) == "" {
		fields["name"] = "name is required"
	}
	if p.SalePrice <= 0 {
		fields["sale_price"] = "sale price must be greater than 0"
	}
	if p.CostPrice < 0 {
		fields["cost_price"] = "cost price must not be negative"
	}
	if p.Stock < 0 {
		fields["stock"] = "stock must not be negative"
	}
	if p.MinStock < 0 {
		fields["min_stock"] = "minimum stock must not be negative"
	}
	if strings.TrimSpace(p.Category) == "" {
		fields["category"] = "category is required"
	}
	if p.SaleType != "" && p.SaleType != domain.SaleTypeUnit && p.SaleType != domain.SaleTypeWeight {
		fields["sale_type"] = "sale type must be UNIDAD or PESO"
	}
	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

func (p *productPayload) toDomain() domain.Product {
	return domain.Product{
		Name:         strings.TrimSpace(p.Name),
		Barcode:      strings.TrimSpace(p.Barcode),
		SalePrice:    p.SalePrice,
		CostPrice:    p.CostPrice,
		Stock:        p.Stock,
		MinStock:     p.MinStock,
		Category:     strings.TrimSpace(p.Category),
		ImageURL:     strings.TrimSpace(p.ImageURL),
		SaleType:     p.SaleType,
		Unit:         p.Unit,
		MinIncrement: p.MinIncrement,
	}
}

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/categories", listCategories)
	webserver.ApiGET("/products/search/category", searchProductsByCategory)
	webserver.ApiGET("/products/search/name", searchProductsByName)
	webserver.ApiGET("/products/search/barcode", searchProductByBarcode)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
	webserver.ApiPATCH("/products/:id/stock", adjustProductStock)
}

func listProducts(c echo.Context) error {
	rows, err := invSvc.List(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	p, err := invSvc.Get(c.Request().Context(), id)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, p)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	if verr := payload.validate(); verr != nil {
		return failFromError(c, verr)
	}
	p, err := invSvc.Create(c.Request().Context(), payload.toDomain())
	if err != nil {
		return failFromError(c, err)
	}
	return created(c, p)
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse product", nil)
	}
	if verr := payload.validate(); verr != nil {
		return failFromError(c, verr)
	}
	p, err := invSvc.Update(c.Request().Context(), id, payload.toDomain())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, p)
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	if err := invSvc.Delete(c.Request().Context(), id); err != nil {
		return failFromError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type adjustStockPayload struct {
	Quantity int `json:"quantity"`
}

func adjustProductStock(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_ID", "Invalid product ID", nil)
	}
	var payload adjustStockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse stock adjustment", nil)
	}
	p, err := invSvc.AdjustStock(c.Request().Context(), id, payload.Quantity)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, p)
}

func searchProductsByCategory(c echo.Context) error {
	category := strings.TrimSpace(c.QueryParam("category"))
	rows, err := invSvc.FindByCategory(c.Request().Context(), category)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func searchProductsByName(c echo.Context) error {
	name := strings.TrimSpace(c.QueryParam("name"))
	rows, err := invSvc.SearchByName(c.Request().Context(), name)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}

func searchProductByBarcode(c echo.Context) error {
	code := strings.TrimSpace(c.QueryParam("code"))
	if code == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Barcode is required", nil)
	}
	p, err := invSvc.FindByBarcode(c.Request().Context(), code)
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, p)
}

func listCategories(c echo.Context) error {
	rows, err := invSvc.Categories(c.Request().Context())
	if err != nil {
		return failFromError(c, err)
	}
	return ok(c, rows)
}
