package sales

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/internal/inventory"
	"github.com/kmanager/kiosco/pkg/common"
)

// RecentSalesWindow is how many sales the recent-history query returns.
const RecentSalesWindow = 10

// LineItem is one (product, quantity) pair of a sale request. Items are
// processed in the order supplied by the caller; when several items are
// simultaneously insufficient, the first one in this order fails the sale.
type LineItem struct {
	ProductID int64 `json:"product_id"`
	Quantity  int   `json:"quantity"`
}

// RangeSummary aggregates sale totals over a time range for the dashboard.
type RangeSummary struct {
	Count   int64   `json:"count"`
	Total   float64 `json:"total"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
}

// Service orchestrates sale registration and answers the sale reporting
// queries.
type Service struct {
	db         *gorm.DB
	repo       Repository
	onLowStock inventory.LowStockFunc
}

func NewService(db *gorm.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// OnLowStock registers the low-stock notification hook, fired after a sale
// leaves any consumed product below its minimum.
func (s *Service) OnLowStock(fn inventory.LowStockFunc) {
	s.onLowStock = fn
}

// RegisterSale runs the whole sale as one atomic unit of work: for each
// line item it resolves the product under a row lock, decrements stock
// through the ledger primitive and snapshots the current sale price. Any
// failure rolls back every decrement; no partial sale is ever visible.
func (s *Service) RegisterSale(ctx context.Context, paymentMethod string, items []LineItem) (*domain.Sale, error) {
	if len(items) == 0 {
		return nil, &domain.InvalidArgumentError{Reason: "sale must contain at least one item"}
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return nil, &domain.InvalidArgumentError{Reason: "item quantity must be greater than 0"}
		}
	}

	var sale *domain.Sale
	var belowMin []*domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sale = &domain.Sale{
			ID:            common.UUIDint64(),
			Timestamp:     time.Now(),
			PaymentMethod: paymentMethod,
		}
		belowMin = belowMin[:0]

		for _, it := range items {
			product, err := inventory.LockProduct(tx, it.ProductID)
			if err != nil {
				return err
			}
			if err := product.RemoveStock(it.Quantity); err != nil {
				return err
			}
			if err := tx.Save(product).Error; err != nil {
				return err
			}
			sale.AddItem(domain.SaleItem{
				ID:        common.UUIDint64(),
				ProductID: product.ID,
				Quantity:  it.Quantity,
				UnitPrice: product.SalePrice,
			})
			if product.LowStock() {
				belowMin = append(belowMin, product)
			}
		}

		sale.ComputeTotal()
		if sale.Total <= 0 {
			return &domain.InvalidArgumentError{Reason: "sale total must be greater than 0"}
		}

		// Items are persisted with the sale through the owning association.
		return tx.Create(sale).Error
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("sale registered",
		zap.Int64("sale_id", sale.ID),
		zap.String("payment_method", sale.PaymentMethod),
		zap.Int("items", len(sale.Items)),
		zap.Float64("total", sale.Total))

	if s.onLowStock != nil {
		for _, p := range belowMin {
			s.onLowStock(p)
		}
	}
	return sale, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Sale, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.List(ctx)
}

// SalesForDay returns the sales of the current local calendar day.
func (s *Service) SalesForDay(ctx context.Context) ([]domain.Sale, error) {
	start, end := common.DayBounds(time.Now())
	return s.repo.FindBetween(ctx, start, end)
}

func (s *Service) SalesBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	return s.repo.FindBetween(ctx, start, end)
}

func (s *Service) RecentSales(ctx context.Context) ([]domain.Sale, error) {
	return s.repo.Recent(ctx, RecentSalesWindow)
}

func (s *Service) SalesByPaymentMethod(ctx context.Context, method string) ([]domain.Sale, error) {
	return s.repo.FindByPaymentMethod(ctx, method)
}

// TotalForDay sums today's sale totals; 0 when there are none.
func (s *Service) TotalForDay(ctx context.Context) (float64, error) {
	start, end := common.DayBounds(time.Now())
	return s.repo.TotalBetween(ctx, start, end)
}

func (s *Service) TotalBetween(ctx context.Context, start, end time.Time) (float64, error) {
	return s.repo.TotalBetween(ctx, start, end)
}

func (s *Service) TotalsByPaymentMethod(ctx context.Context, start, end time.Time) ([]domain.PaymentMethodTotal, error) {
	return s.repo.TotalsByPaymentMethod(ctx, start, end)
}

// Summary computes count, sum, mean and median of the sale totals in the
// range. An empty range yields all zeros.
func (s *Service) Summary(ctx context.Context, start, end time.Time) (*RangeSummary, error) {
	totals, err := s.repo.TotalsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	summary := &RangeSummary{Count: int64(len(totals))}
	if len(totals) == 0 {
		return summary, nil
	}
	summary.Total, _ = stats.Sum(totals)
	summary.Average, _ = stats.Mean(totals)
	summary.Median, _ = stats.Median(totals)
	return summary, nil
}
