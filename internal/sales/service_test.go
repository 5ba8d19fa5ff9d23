package sales

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/internal/inventory"
	"github.com/kmanager/kiosco/pkg/common"
)

func setup(t *testing.T) (*gorm.DB, *inventory.Service, *Service) {
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
	inv := inventory.NewService(db, inventory.NewGormRepository(db))
	sal := NewService(db, NewGormRepository(db))
	return db, inv, sal
}

func mustProduct(t *testing.T, inv *inventory.Service, name string, price, cost float64, stock, minStock int) *domain.Product {
	t.Helper()
	p, err := inv.Create(context.Background(), domain.Product{
		Name: name, SalePrice: price, CostPrice: cost,
		Stock: stock, MinStock: minStock, Category: "Test",
	})
	if err != nil {
		t.Fatalf("create product %s: %v", name, err)
	}
	return p
}

// insertSale writes a historical sale directly, bypassing the engine, for
// deterministic range fixtures.
func insertSale(t *testing.T, db *gorm.DB, ts time.Time, method string, total float64) *domain.Sale {
	t.Helper()
	sale := &domain.Sale{
		ID:            common.UUIDint64(),
		Timestamp:     ts,
		PaymentMethod: method,
		Total:         total,
	}
	if err := db.Create(sale).Error; err != nil {
		t.Fatalf("insert sale: %v", err)
	}
	return sale
}

func TestRegisterSale(t *testing.T) {
	_, inv, sal := setup(t)
	ctx := context.Background()

	// product A: stock 5, minimum 10, price 100/cost 50
	a := mustProduct(t, inv, "A", 100, 50, 5, 10)

	low, err := inv.LowStockProducts(ctx)
	if err != nil || len(low) != 1 {
		t.Fatalf("expected A in low stock before sale, got %v (%v)", low, err)
	}

	sale, err := sal.RegisterSale(ctx, "Cash", []LineItem{{ProductID: a.ID, Quantity: 2}})
	if err != nil {
		t.Fatalf("register sale: %v", err)
	}
	if sale.Total != 200 {
		t.Fatalf("expected total 200, got %v", sale.Total)
	}
	if len(sale.Items) != 1 || sale.Items[0].Quantity != 2 || sale.Items[0].UnitPrice != 100 {
		t.Fatalf("unexpected items: %+v", sale.Items)
	}
	if sale.Timestamp.IsZero() {
		t.Fatal("timestamp not set")
	}

	after, _ := inv.Get(ctx, a.ID)
	if after.Stock != 3 {
		t.Fatalf("expected stock 3, got %d", after.Stock)
	}

	// persisted with items via the owning association
	stored, err := sal.Get(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if len(stored.Items) != 1 || stored.Items[0].ProductID != a.ID {
		t.Fatalf("items not persisted with sale: %+v", stored.Items)
	}
}

func TestRegisterSaleMultipleItemsInOrder(t *testing.T) {
	_, inv, sal := setup(t)
	ctx := context.Background()

	a := mustProduct(t, inv, "A", 100, 50, 10, 2)
	b := mustProduct(t, inv, "B", 30, 10, 10, 2)

	sale, err := sal.RegisterSale(ctx, "Card", []LineItem{
		{ProductID: b.ID, Quantity: 3},
		{ProductID: a.ID, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("register sale: %v", err)
	}
	if sale.Total != 190 {
		t.Fatalf("expected total 190, got %v", sale.Total)
	}
	// insertion order preserved
	if sale.Items[0].ProductID != b.ID || sale.Items[1].ProductID != a.ID {
		t.Fatalf("item order not preserved: %+v", sale.Items)
	}
}

func TestRegisterSaleAtomicRollback(t *testing.T) {
	db, inv, sal := setup(t)
	ctx := context.Background()

	a := mustProduct(t, inv, "A", 100, 50, 10, 2)
	b := mustProduct(t, inv, "B", 30, 10, 1, 2)

	var stockErr *domain.InsufficientStockError
	_, err := sal.RegisterSale(ctx, "Cash", []LineItem{
		{ProductID: a.ID, Quantity: 4},
		{ProductID: b.ID, Quantity: 5},
	})
	if !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if stockErr.ProductName != "B" || stockErr.Available != 1 || stockErr.Requested != 5 {
		t.Fatalf("unexpected error fields: %+v", stockErr)
	}

	// item 1's decrement must not be observable
	afterA, _ := inv.Get(ctx, a.ID)
	afterB, _ := inv.Get(ctx, b.ID)
	if afterA.Stock != 10 || afterB.Stock != 1 {
		t.Fatalf("rollback failed: A=%d B=%d", afterA.Stock, afterB.Stock)
	}

	var saleCount, itemCount int64
	db.Model(&domain.Sale{}).Count(&saleCount)
	db.Model(&domain.SaleItem{}).Count(&itemCount)
	if saleCount != 0 || itemCount != 0 {
		t.Fatalf("sale rows leaked: sales=%d items=%d", saleCount, itemCount)
	}
}

func TestRegisterSaleValidation(t *testing.T) {
	_, inv, sal := setup(t)
	ctx := context.Background()

	a := mustProduct(t, inv, "A", 100, 50, 5, 2)

	var invalidErr *domain.InvalidArgumentError
	if _, err := sal.RegisterSale(ctx, "Cash", nil); !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError for empty cart, got %v", err)
	}
	if _, err := sal.RegisterSale(ctx, "Cash", []LineItem{{ProductID: a.ID, Quantity: 0}}); !errors.As(err, &invalidErr) {
		t.Fatalf("expected InvalidArgumentError for zero quantity, got %v", err)
	}
	if _, err := sal.RegisterSale(ctx, "Cash", []LineItem{{ProductID: 424242, Quantity: 1}}); !errors.Is(err, domain.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}

	// oversell keeps stock intact
	var stockErr *domain.InsufficientStockError
	if _, err := sal.RegisterSale(ctx, "Cash", []LineItem{{ProductID: a.ID, Quantity: 1000}}); !errors.As(err, &stockErr) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	after, _ := inv.Get(ctx, a.ID)
	if after.Stock != 5 {
		t.Fatalf("expected stock 5 after failed sale, got %d", after.Stock)
	}
}

func TestRegisterSalePriceSnapshot(t *testing.T) {
	_, inv, sal := setup(t)
	ctx := context.Background()

	a := mustProduct(t, inv, "A", 100, 50, 10, 2)

	sale, err := sal.RegisterSale(ctx, "Cash", []LineItem{{ProductID: a.ID, Quantity: 1}})
	if err != nil {
		t.Fatalf("register sale: %v", err)
	}

	// raise the price; the historical sale keeps the captured price
	if _, err := inv.Update(ctx, a.ID, domain.Product{
		Name: "A", SalePrice: 500, CostPrice: 50, Stock: 9, MinStock: 2, Category: "Test",
	}); err != nil {
		t.Fatalf("update price: %v", err)
	}

	stored, err := sal.Get(ctx, sale.ID)
	if err != nil {
		t.Fatalf("get sale: %v", err)
	}
	if stored.Total != 100 || stored.Items[0].UnitPrice != 100 {
		t.Fatalf("historical total changed: %+v", stored)
	}
}

func TestRegisterSaleFiresLowStockHook(t *testing.T) {
	_, inv, sal := setup(t)
	ctx := context.Background()

	var notified []*domain.Product
	sal.OnLowStock(func(p *domain.Product) { notified = append(notified, p) })

	a := mustProduct(t, inv, "A", 100, 50, 11, 10)
	if _, err := sal.RegisterSale(ctx, "Cash", []LineItem{{ProductID: a.ID, Quantity: 2}}); err != nil {
		t.Fatalf("register sale: %v", err)
	}
	if len(notified) != 1 || notified[0].Stock != 9 {
		t.Fatalf("expected one low stock notification, got %v", notified)
	}
}

func TestRangeQueries(t *testing.T) {
	db, _, sal := setup(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	insertSale(t, db, base, "Cash", 100)
	insertSale(t, db, base.Add(time.Hour), "Card", 200)
	insertSale(t, db, base.Add(48*time.Hour), "Cash", 400)

	rows, err := sal.SalesBetween(ctx, base.Add(-time.Hour), base.Add(2*time.Hour))
	if err != nil || len(rows) != 2 {
		t.Fatalf("expected 2 sales in range, got %v (%v)", rows, err)
	}

	total, err := sal.TotalBetween(ctx, base.Add(-time.Hour), base.Add(2*time.Hour))
	if err != nil || total != 300 {
		t.Fatalf("expected range total 300, got %v (%v)", total, err)
	}

	// empty range coalesces to zero, never an error
	total, err = sal.TotalBetween(ctx, base.Add(-48*time.Hour), base.Add(-24*time.Hour))
	if err != nil || total != 0 {
		t.Fatalf("expected 0 for empty range, got %v (%v)", total, err)
	}

	byMethod, err := sal.SalesByPaymentMethod(ctx, "Cash")
	if err != nil || len(byMethod) != 2 {
		t.Fatalf("expected 2 Cash sales, got %v (%v)", byMethod, err)
	}

	grouped, err := sal.TotalsByPaymentMethod(ctx, base.Add(-time.Hour), base.Add(72*time.Hour))
	if err != nil || len(grouped) != 2 {
		t.Fatalf("expected 2 groups, got %v (%v)", grouped, err)
	}
	byName := map[string]float64{}
	for _, g := range grouped {
		byName[g.PaymentMethod] = g.Total
	}
	if byName["Cash"] != 500 || byName["Card"] != 200 {
		t.Fatalf("unexpected grouped totals: %v", byName)
	}
}

func TestRecentSalesWindow(t *testing.T) {
	db, _, sal := setup(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	for i := 0; i < 13; i++ {
		insertSale(t, db, base.Add(time.Duration(i)*time.Minute), "Cash", float64(i+1))
	}

	rows, err := sal.RecentSales(ctx)
	if err != nil {
		t.Fatalf("recent sales: %v", err)
	}
	if len(rows) != RecentSalesWindow {
		t.Fatalf("expected %d sales, got %d", RecentSalesWindow, len(rows))
	}
	// newest first
	if rows[0].Total != 13 || rows[len(rows)-1].Total != 4 {
		t.Fatalf("unexpected ordering: first=%v last=%v", rows[0].Total, rows[len(rows)-1].Total)
	}
}

func TestSummary(t *testing.T) {
	db, _, sal := setup(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.Local)
	insertSale(t, db, base, "Cash", 100)
	insertSale(t, db, base.Add(time.Minute), "Cash", 200)
	insertSale(t, db, base.Add(2*time.Minute), "Card", 600)

	summary, err := sal.Summary(ctx, base.Add(-time.Hour), base.Add(time.Hour))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Count != 3 || summary.Total != 900 || summary.Average != 300 || summary.Median != 200 {
		t.Fatalf("unexpected summary: %+v", summary)
	}

	empty, err := sal.Summary(ctx, base.Add(-48*time.Hour), base.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if empty.Count != 0 || empty.Total != 0 || empty.Average != 0 || empty.Median != 0 {
		t.Fatalf("expected zeroed summary, got %+v", empty)
	}
}

func TestTotalForDay(t *testing.T) {
	db, _, sal := setup(t)
	ctx := context.Background()

	insertSale(t, db, time.Now(), "Cash", 150)
	insertSale(t, db, time.Now().Add(-48*time.Hour), "Cash", 999)

	total, err := sal.TotalForDay(ctx)
	if err != nil || total != 150 {
		t.Fatalf("expected today total 150, got %v (%v)", total, err)
	}

	rows, err := sal.SalesForDay(ctx)
	if err != nil || len(rows) != 1 {
		t.Fatalf("expected 1 sale today, got %v (%v)", rows, err)
	}
}
