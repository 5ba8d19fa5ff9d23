package inventory

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kmanager/kiosco/internal/domain"
)

// Repository handles database operations for the product catalog.
type Repository interface {
	// Create inserts a new product
	Create(ctx context.Context, p *domain.Product) error

	// Save persists all fields of an existing product
	Save(ctx context.Context, p *domain.Product) error

	// GetByID retrieves a product by primary key
	GetByID(ctx context.Context, id int64) (*domain.Product, error)

	// GetByBarcode retrieves a product by its barcode
	GetByBarcode(ctx context.Context, code string) (*domain.Product, error)

	// List retrieves the full catalog
	List(ctx context.Context) ([]domain.Product, error)

	// FindByCategory retrieves products with an exact category match
	FindByCategory(ctx context.Context, category string) ([]domain.Product, error)

	// SearchByName retrieves products whose name contains the text, case-insensitive
	SearchByName(ctx context.Context, text string) ([]domain.Product, error)

	// Delete removes a product
	Delete(ctx context.Context, id int64) error

	// LowStock retrieves products below their configured minimum
	LowStock(ctx context.Context) ([]domain.Product, error)

	// Categories retrieves the distinct category values, ordered
	Categories(ctx context.Context) ([]string, error)
}

// GormRepository is the GORM implementation of Repository.
type GormRepository struct {
	db *gorm.DB
}

func NewGormRepository(db *gorm.DB) *GormRepository {
	return &GormRepository{db: db}
}

func (r *GormRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return errors.Wrap(err, "create product")
	}
	return nil
}

func (r *GormRepository) Save(ctx context.Context, p *domain.Product) error {
	if err := r.db.WithContext(ctx).Save(p).Error; err != nil {
		return errors.Wrap(err, "save product")
	}
	return nil
}

func (r *GormRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query product")
	}
	return &p, nil
}

func (r *GormRepository) GetByBarcode(ctx context.Context, code string) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("barcode = ?", code).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "query product by barcode")
	}
	return &p, nil
}

func (r *GormRepository) List(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	if err := r.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	return rows, nil
}

func (r *GormRepository) FindByCategory(ctx context.Context, category string) ([]domain.Product, error) {
	var rows []domain.Product
	if err := r.db.WithContext(ctx).Where("category = ?", category).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query products by category")
	}
	return rows, nil
}

func (r *GormRepository) SearchByName(ctx context.Context, text string) ([]domain.Product, error) {
	db := r.db.WithContext(ctx)
	if strings.EqualFold(db.Name(), "postgres") {
		db = db.Where("name ILIKE ?", "%"+text+"%")
	} else {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(text)+"%")
	}
	var rows []domain.Product
	if err := db.Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "search products by name")
	}
	return rows, nil
}

func (r *GormRepository) Delete(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Delete(&domain.Product{}, id)
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete product")
	}
	if res.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}

func (r *GormRepository) LowStock(ctx context.Context) ([]domain.Product, error) {
	var rows []domain.Product
	if err := r.db.WithContext(ctx).Where("stock < min_stock").Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "query low stock products")
	}
	return rows, nil
}

func (r *GormRepository) Categories(ctx context.Context) ([]string, error) {
	var rows []string
	err := r.db.WithContext(ctx).Model(&domain.Product{}).
		Distinct("category").Order("category").Pluck("category", &rows).Error
	if err != nil {
		return nil, errors.Wrap(err, "query categories")
	}
	return rows, nil
}

// LockProduct loads a product inside the given transaction, taking a
// row-level lock on postgres so concurrent stock mutations on the same
// product are serialized. sqlite has a single writer and needs no lock.
func LockProduct(tx *gorm.DB, id int64) (*domain.Product, error) {
	q := tx
	if strings.EqualFold(tx.Name(), "postgres") {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var p domain.Product
	err := q.First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrProductNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "lock product")
	}
	return &p, nil
}
