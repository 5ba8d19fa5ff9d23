package inventory

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kmanager/kiosco/internal/domain"
)

func setup(t *testing.T) *Service {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewService(db, NewGormRepository(db))
}

func mustCreate(t *testing.T, svc *Service, p domain.Product) *domain.Product {
	t.Helper()
	created, err := svc.Create(context.Background(), p)
	if err != nil {
		t.Fatalf("create product %s: %v", p.Name, err)
	}
	return created
}

func TestCreateRejectsPriceInvariant(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	var invalidErr *domain.InvalidArgumentError
	_, err := svc.Create(ctx, domain.Product{Name: "Bad", SalePrice: 50, CostPrice: 100, Category: "X"})
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}

	// equal prices are rejected too
	_, err = svc.Create(ctx, domain.Product{Name: "Bad2", SalePrice: 100, CostPrice: 100, Category: "X"})
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError for equal prices, got %v", err)
	}
}

func TestCreateAssignsIDAndDefaults(t *testing.T) {
	svc := setup(t)

	p := mustCreate(t, svc, domain.Product{Name: "Coca", SalePrice: 100, CostPrice: 50, Category: "Bebidas"})
	if p.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if p.SaleType != domain.SaleTypeUnit || p.Unit != "unidad" || p.MinIncrement != 1 {
		t.Fatalf("defaults not applied: %+v", p)
	}
}

func TestUpdateOverwritesAllFields(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	p := mustCreate(t, svc, domain.Product{
		Name: "Coca", Barcode: "123", SalePrice: 100, CostPrice: 50,
		Stock: 5, MinStock: 2, Category: "Bebidas", ImageURL: "http://img",
	})

	// draft omits barcode and image; full-replace semantics reset them
	updated, err := svc.Update(ctx, p.ID, domain.Product{
		Name: "Coca Zero", SalePrice: 120, CostPrice: 60,
		Stock: 9, MinStock: 3, Category: "Gaseosas",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Coca Zero" || updated.Stock != 9 || updated.Category != "Gaseosas" {
		t.Fatalf("fields not overwritten: %+v", updated)
	}
	if updated.Barcode != "" || updated.ImageURL != "" {
		t.Fatalf("omitted fields were preserved, want reset: %+v", updated)
	}

	var invalidErr *domain.InvalidArgumentError
	_, err = svc.Update(ctx, p.ID, domain.Product{Name: "Coca", SalePrice: 10, CostPrice: 60, Category: "X"})
	if !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError, got %v", err)
	}

	_, err = svc.Update(ctx, 424242, domain.Product{Name: "X", SalePrice: 10, CostPrice: 5, Category: "X"})
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	p := mustCreate(t, svc, domain.Product{Name: "Coca", SalePrice: 100, CostPrice: 50, Category: "Bebidas"})
	if err := svc.Delete(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := svc.Get(ctx, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound after delete, got %v", err)
	}
	if err := svc.Delete(ctx, p.ID); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound on second delete, got %v", err)
	}
}

func TestAdjustStock(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	p := mustCreate(t, svc, domain.Product{Name: "Coca", SalePrice: 100, CostPrice: 50, Stock: 5, Category: "Bebidas"})

	got, err := svc.AdjustStock(ctx, p.ID, 3)
	if err != nil {
		t.Fatalf("adjust +3: %v", err)
	}
	if got.Stock != 8 {
		t.Fatalf("expected stock 8, got %d", got.Stock)
	}

	got, err = svc.AdjustStock(ctx, p.ID, -8)
	if err != nil {
		t.Fatalf("adjust -8: %v", err)
	}
	if got.Stock != 0 {
		t.Fatalf("expected stock 0, got %d", got.Stock)
	}

	var stockErr *domain.InsufficientStockError
	_, err = svc.AdjustStock(ctx, p.ID, -1)
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	after, _ := svc.Get(ctx, p.ID)
	if after.Stock != 0 {
		t.Fatalf("stock changed on failed decrement: %d", after.Stock)
	}

	// zero delta is a documented no-op
	got, err = svc.AdjustStock(ctx, p.ID, 0)
	if err != nil {
		t.Fatalf("adjust 0: %v", err)
	}
	if got.Stock != 0 {
		t.Fatalf("no-op changed stock: %d", got.Stock)
	}

	_, err = svc.AdjustStock(ctx, 424242, 1)
	if !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestAdjustStockFiresLowStockHook(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	var notified []*domain.Product
	svc.OnLowStock(func(p *domain.Product) { notified = append(notified, p) })

	p := mustCreate(t, svc, domain.Product{Name: "Coca", SalePrice: 100, CostPrice: 50, Stock: 12, MinStock: 10, Category: "Bebidas"})

	if _, err := svc.AdjustStock(ctx, p.ID, -1); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if len(notified) != 0 {
		t.Fatalf("hook fired above minimum")
	}

	if _, err := svc.AdjustStock(ctx, p.ID, -5); err != nil {
		t.Fatalf("adjust: %v", err)
	}
	if len(notified) != 1 || notified[0].Stock != 6 {
		t.Fatalf("expected one low stock notification, got %v", notified)
	}
}

func TestLowStockProducts(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	low := mustCreate(t, svc, domain.Product{Name: "A", SalePrice: 100, CostPrice: 50, Stock: 5, MinStock: 10, Category: "X"})
	mustCreate(t, svc, domain.Product{Name: "B", SalePrice: 100, CostPrice: 50, Stock: 10, MinStock: 10, Category: "X"})
	mustCreate(t, svc, domain.Product{Name: "C", SalePrice: 100, CostPrice: 50, Stock: 20, MinStock: 10, Category: "X"})

	rows, err := svc.LowStockProducts(ctx)
	if err != nil {
		t.Fatalf("low stock: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != low.ID {
		t.Fatalf("expected exactly product A, got %v", rows)
	}

	// idempotent with unchanged state
	again, err := svc.LowStockProducts(ctx)
	if err != nil || len(again) != 1 || again[0].ID != rows[0].ID {
		t.Fatalf("repeated query differs: %v %v", again, err)
	}
}

func TestSearchQueries(t *testing.T) {
	svc := setup(t)
	ctx := context.Background()

	coca := mustCreate(t, svc, domain.Product{Name: "Coca Cola 500ml", Barcode: "779111", SalePrice: 100, CostPrice: 50, Category: "Bebidas"})
	mustCreate(t, svc, domain.Product{Name: "Alfajor", Barcode: "779222", SalePrice: 50, CostPrice: 20, Category: "Golosinas"})
	mustCreate(t, svc, domain.Product{Name: "Agua Mineral", SalePrice: 80, CostPrice: 40, Category: "Bebidas"})

	byCat, err := svc.FindByCategory(ctx, "Bebidas")
	if err != nil || len(byCat) != 2 {
		t.Fatalf("expected 2 Bebidas, got %v (%v)", byCat, err)
	}
	if rows, _ := svc.FindByCategory(ctx, "bebidas"); len(rows) != 0 {
		t.Fatalf("category match must be exact, got %v", rows)
	}

	byName, err := svc.SearchByName(ctx, "cOlA")
	if err != nil || len(byName) != 1 || byName[0].ID != coca.ID {
		t.Fatalf("case-insensitive name search failed: %v (%v)", byName, err)
	}

	byCode, err := svc.FindByBarcode(ctx, "779111")
	if err != nil || byCode.ID != coca.ID {
		t.Fatalf("barcode search failed: %v (%v)", byCode, err)
	}
	if _, err := svc.FindByBarcode(ctx, "000000"); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	cats, err := svc.Categories(ctx)
	if err != nil {
		t.Fatalf("categories: %v", err)
	}
	want := []string{"Bebidas", "Golosinas"}
	if len(cats) != len(want) {
		t.Fatalf("expected %v, got %v", want, cats)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, cats)
		}
	}
}
