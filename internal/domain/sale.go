package domain

import "time"

// Sale is one finalized POS transaction. Items are exclusively owned by the
// sale; they are persisted and deleted together with it.
type Sale struct {
	ID            int64      `gorm:"primaryKey" json:"id"`
	Timestamp     time.Time  `gorm:"index;not null" json:"timestamp"`
	Total         float64    `gorm:"not null" json:"total"`
	PaymentMethod string     `gorm:"size:32;index;not null" json:"payment_method"`
	Items         []SaleItem `gorm:"foreignKey:SaleID;constraint:OnDelete:CASCADE" json:"items"`
}

// SaleItem records one sold line with the unit price captured at sale time.
// Later price changes never affect historical totals.
type SaleItem struct {
	ID        int64   `gorm:"primaryKey" json:"id"`
	SaleID    int64   `gorm:"index;not null" json:"-"`
	ProductID int64   `gorm:"index;not null" json:"product_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
}

// Subtotal is the line amount for this item.
func (i *SaleItem) Subtotal() float64 {
	return float64(i.Quantity) * i.UnitPrice
}

// AddItem appends an item, binding it to this sale.
func (s *Sale) AddItem(item SaleItem) {
	item.SaleID = s.ID
	s.Items = append(s.Items, item)
}

// ComputeTotal recalculates the sale total from its item subtotals.
func (s *Sale) ComputeTotal() {
	total := 0.0
	for i := range s.Items {
		total += s.Items[i].Subtotal()
	}
	s.Total = total
}

// Profit is the margin over cost for the sale, given a cost lookup by
// product id. Products deleted since the sale contribute zero cost.
func (s *Sale) Profit(costOf func(productID int64) float64) float64 {
	profit := 0.0
	for i := range s.Items {
		unitProfit := s.Items[i].UnitPrice - costOf(s.Items[i].ProductID)
		profit += unitProfit * float64(s.Items[i].Quantity)
	}
	return profit
}

// PaymentMethodTotal is one row of the grouped per-method aggregation.
type PaymentMethodTotal struct {
	PaymentMethod string  `json:"payment_method"`
	Total         float64 `json:"total"`
}
