package inventory

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/pkg/common"
)

// LowStockFunc is invoked after a stock mutation leaves a product below
// its minimum. Wired to the application event bus.
type LowStockFunc func(p *domain.Product)

// Service owns the product catalog and the stock-quantity invariant.
// All stock mutations route through the add/remove primitives so stock can
// never go negative regardless of caller.
type Service struct {
	db         *gorm.DB
	repo       Repository
	onLowStock LowStockFunc
}

func NewService(db *gorm.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// OnLowStock registers the low-stock notification hook.
func (s *Service) OnLowStock(fn LowStockFunc) {
	s.onLowStock = fn
}

func (s *Service) Get(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Product, error) {
	return s.repo.List(ctx)
}

func (s *Service) FindByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	return s.repo.FindByCategory(ctx, category)
}

func (s *Service) SearchByName(ctx context.Context, text string) ([]domain.Product, error) {
	return s.repo.SearchByName(ctx, text)
}

func (s *Service) FindByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	return s.repo.GetByBarcode(ctx, code)
}

func (s *Service) LowStockProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.LowStock(ctx)
}

func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.Categories(ctx)
}

// Create validates the price invariant and persists a new product with a
// freshly assigned id.
func (s *Service) Create(ctx context.Context, p domain.Product) (*domain.Product, error) {
	if err := validatePrices(&p); err != nil {
		return nil, err
	}
	p.ID = common.UUIDint64()
	applyDefaults(&p)
	if err := s.repo.Create(ctx, &p); err != nil {
		return nil, err
	}
	zap.L().Info("product created",
		zap.Int64("id", p.ID),
		zap.String("name", p.Name),
		zap.String("category", p.Category))
	return &p, nil
}

// Update overwrites all mutable fields of an existing product and
// re-validates the price invariant. Omitted fields in the draft are reset,
// not preserved; callers must resend the full record.
func (s *Service) Update(ctx context.Context, id int64, draft domain.Product) (*domain.Product, error) {
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	existing.Name = draft.Name
	existing.Barcode = draft.Barcode
	existing.SalePrice = draft.SalePrice
	existing.CostPrice = draft.CostPrice
	existing.Stock = draft.Stock
	existing.MinStock = draft.MinStock
	existing.Category = draft.Category
	existing.ImageURL = draft.ImageURL
	existing.SaleType = draft.SaleType
	existing.Unit = draft.Unit
	existing.MinIncrement = draft.MinIncrement
	applyDefaults(existing)

	if err := validatePrices(existing); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	zap.L().Info("product deleted", zap.Int64("id", id))
	return nil
}

// AdjustStock applies a signed stock delta under a transaction with the
// product row locked. Positive deltas add stock, negative ones remove it
// through the same primitive the sale engine uses. A zero delta is a no-op
// that returns the product unchanged.
func (s *Service) AdjustStock(ctx context.Context, id int64, delta int) (*domain.Product, error) {
	var out *domain.Product
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		p, err := LockProduct(tx, id)
		if err != nil {
			return err
		}
		switch {
		case delta > 0:
			if err := p.AddStock(delta); err != nil {
				return err
			}
		case delta < 0:
			if err := p.RemoveStock(-delta); err != nil {
				return err
			}
		}
		if err := tx.Save(p).Error; err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}

	zap.L().Info("stock adjusted",
		zap.Int64("product_id", id),
		zap.Int("delta", delta),
		zap.Int("stock", out.Stock))
	s.notifyLowStock(out)
	return out, nil
}

func (s *Service) notifyLowStock(p *domain.Product) {
	if s.onLowStock != nil && p.LowStock() {
		s.onLowStock(p)
	}
}

func validatePrices(p *domain.Product) error {
	if p.SalePrice <= p.CostPrice {
		return &domain.InvalidArgumentError{
			Reason: "sale price must be greater than cost price",
		}
	}
	return nil
}

func applyDefaults(p *domain.Product) {
	p.Name = strings.TrimSpace(p.Name)
	if p.SaleType == "" {
		p.SaleType = domain.SaleTypeUnit
	}
	if p.Unit == "" {
		p.Unit = "unidad"
	}
	if p.MinIncrement <= 0 {
		p.MinIncrement = 1
	}
}
