package sales

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/kmanager/kiosco/internal/domain"
)

// Repository handles read-side database operations for sales. Writes happen
// inside the engine's transaction, never here.
type Repository interface {
	// GetByID retrieves a sale with its items
	GetByID(ctx context.Context, id int64) (*domain.Sale, error)

	// List retrieves all sales with their items
	List(ctx context.Context) ([]domain.Sale, error)

	// FindBetween retrieves sales with timestamp in [start, end]
	FindBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error)

	// FindByPaymentMethod retrieves sales with an exact payment method match
	FindByPaymentMethod(ctx context.Context, method string) ([]domain.Sale, error)

	// Recent retrieves the most recent sales, newest first
	Recent(ctx context.Context, limit int) ([]domain.Sale, error)

	// TotalBetween sums sale totals in [start, end]; 0 when nothing matches
	TotalBetween(ctx context.Context, start, end time.Time) (float64, error)

	// CountBetween counts sales in [start, end]
	CountBetween(ctx context.Context, start, end time.Time) (int64, error)

	// TotalsBetween retrieves the individual sale totals in [start, end]
	TotalsBetween(ctx context.Context, start, end time.Time) ([]float64, error)

	// TotalsByPaymentMethod groups summed totals per payment method in [start, end]
	TotalsByPaymentMethod(ctx context.Context, start, end time.Time) ([]domain.PaymentMethodTotal, error)
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Sale, error) {
	var sale domain.Sale
	err := r.db.WithContext(ctx).Preload("Items").First(&sale, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrSaleNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query sale")
	}
	return &sale, nil
}

func (r *GormRepository) List(ctx context.Context) ([]domain.Sale, error) {
	var rows []domain.Sale
	if err := r.db.WithContext(ctx).Preload("Items").Order("timestamp DESC").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list sales")
	}
	return rows, nil
}

func (r *GormRepository) FindBetween(ctx context.Context, start, end time.Time) ([]domain.Sale, error) {
	var rows []domain.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("timestamp BETWEEN ? AND ?", start, end).
		Order("timestamp DESC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query sales by range")
	}
	return rows, nil
}

func (r *GormRepository) FindByPaymentMethod(ctx context.Context, method string) ([]domain.Sale, error) {
	var rows []domain.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Where("payment_method = ?", method).
		Order("timestamp DESC").Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query sales by payment method")
	}
	return rows, nil
}

func (r *GormRepository) Recent(ctx context.Context, limit int) ([]domain.Sale, error) {
	var rows []domain.Sale
	err := r.db.WithContext(ctx).Preload("Items").
		Order("timestamp DESC").Limit(limit).Find(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query recent sales")
	}
	return rows, nil
}

func (r *GormRepository) TotalBetween(ctx context.Context, start, end time.Time) (float64, error) {
	var total float64
	err := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Where("timestamp BETWEEN ? AND ?", start, end).
		Select("COALESCE(SUM(total), 0)").Scan(&total).Error
	if err != nil {
		return 0, errors.Wrap(err, "sum sales")
	}
	return total, nil
}

func (r *GormRepository) CountBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Where("timestamp BETWEEN ? AND ?", start, end).Count(&count).Error
	if err != nil {
		return 0, errors.Wrap(err, "count sales")
	}
	return count, nil
}

func (r *GormRepository) TotalsBetween(ctx context.Context, start, end time.Time) ([]float64, error) {
	var totals []float64
	err := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Where("timestamp BETWEEN ? AND ?", start, end).
		Pluck("total", &totals).Error
	if err != nil {
		return nil, errors.Wrap(err, "query sale totals")
	}
	return totals, nil
}

func (r *GormRepository) TotalsByPaymentMethod(ctx context.Context, start, end time.Time) ([]domain.PaymentMethodTotal, error) {
	var rows []domain.PaymentMethodTotal
	err := r.db.WithContext(ctx).Model(&domain.Sale{}).
		Select("payment_method, SUM(total) AS total").
		Where("timestamp BETWEEN ? AND ?", start, end).
		Group("payment_method").Scan(&rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "group sales by payment method")
	}
	return rows, nil
}
