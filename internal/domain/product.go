package domain

import "time"

// Sale type tags. Weight-based products are sold by fractional amounts on
// the POS front-end, unit-based ones by whole units.
const (
	SaleTypeUnit   = "UNIDAD"
	SaleTypeWeight = "PESO"
)

// Product is a catalog item with its current stock level.
type Product struct {
	ID           int64     `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"size:200;uniqueIndex;not null" json:"name"`
	Barcode      string    `gorm:"size:64;index" json:"barcode"`
	SalePrice    float64   `gorm:"not null" json:"sale_price"`
	CostPrice    float64   `gorm:"not null" json:"cost_price"`
	Stock        int       `gorm:"not null;default:0" json:"stock"`
	MinStock     int       `gorm:"not null;default:0" json:"min_stock"`
	Category     string    `gorm:"size:64;index;not null" json:"category"`
	ImageURL     string    `gorm:"size:500" json:"image_url"`
	SaleType     string    `gorm:"size:20;default:UNIDAD" json:"sale_type"`
	Unit         string    `gorm:"size:20;default:unidad" json:"unit"`
	MinIncrement float64   `gorm:"default:1" json:"min_increment"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LowStock reports whether the product is below its configured minimum.
func (p *Product) LowStock() bool {
	return p.Stock < p.MinStock
}

// ByWeight reports whether the product is sold by weight.
func (p *Product) ByWeight() bool {
	return p.SaleType == SaleTypeWeight
}

// AddStock increments the stock level. The quantity must be positive.
func (p *Product) AddStock(qty int) error {
	if qty <= 0 {
		return &InvalidArgumentError{Reason: "quantity must be greater than 0"}
	}
	p.Stock += qty
	return nil
}

// RemoveStock decrements the stock level, failing when the requested
// quantity exceeds what is available. Stock never goes negative.
func (p *Product) RemoveStock(qty int) error {
	if qty > p.Stock {
		return &InsufficientStockError{
			ProductName: p.Name,
			Available:   p.Stock,
			Requested:   qty,
		}
	}
	p.Stock -= qty
	return nil
}
