package app

import (
	"go.uber.org/zap"

	"github.com/kmanager/kiosco/internal/domain"
	"github.com/kmanager/kiosco/pkg/common"
)

// checkDemoCatalog seeds a handful of kiosk products the first time the
// application starts against an empty catalog.
func (a *Application) checkDemoCatalog() {
	var count int64
	if err := a.gormDB.Model(&domain.Product{}).Count(&count).Error; err != nil {
		zap.L().Error("failed to count products", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	seed := []domain.Product{
		{
			Name: "Coca Cola 500ml", Barcode: "7790895000997",
			SalePrice: 1500, CostPrice: 900,
			Stock: 24, MinStock: 10, Category: "Bebidas",
			SaleType: domain.SaleTypeUnit, Unit: "unidad", MinIncrement: 1,
		},
		{
			Name: "Alfajor Guaymallen", Barcode: "7790580660000",
			SalePrice: 500, CostPrice: 280,
			Stock: 48, MinStock: 12, Category: "Golosinas",
			SaleType: domain.SaleTypeUnit, Unit: "unidad", MinIncrement: 1,
		},
		{
			Name: "Pan frances", Barcode: "",
			SalePrice: 2200, CostPrice: 1100,
			Stock: 15, MinStock: 5, Category: "Panaderia",
			SaleType: domain.SaleTypeWeight, Unit: "kg", MinIncrement: 0.25,
		},
		{
			Name: "Yerba Playadito 1kg", Barcode: "7790387000115",
			SalePrice: 6800, CostPrice: 4900,
			Stock: 8, MinStock: 4, Category: "Almacen",
			SaleType: domain.SaleTypeUnit, Unit: "unidad", MinIncrement: 1,
		},
	}

	for i := range seed {
		seed[i].ID = common.UUIDint64()
		if err := a.gormDB.Create(&seed[i]).Error; err != nil {
			zap.L().Error("failed to seed product",
				zap.String("name", seed[i].Name), zap.Error(err))
		}
	}
	zap.L().Info("seeded demo catalog", zap.Int("products", len(seed)))
}
