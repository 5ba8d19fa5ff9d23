package app

import (
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"

	"github.com/kmanager/kiosco/config"
	"github.com/kmanager/kiosco/internal/inventory"
	"github.com/kmanager/kiosco/internal/sales"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// ServiceProvider provides the domain services
type ServiceProvider interface {
	Inventory() *inventory.Service
	Sales() *sales.Service
}

// AppContext combines all provider interfaces for full application context.
// Components should depend on specific providers or this combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	SchedulerProvider
	ServiceProvider

	MigrateDB(track bool) error
	InitDb()
	DropAll()
}
