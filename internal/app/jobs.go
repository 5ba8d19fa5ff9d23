package app

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched = cron.New(cron.WithParser(cronParser), cron.WithLocation(loc))

	// hourly watchdog: announce every product below its minimum
	if _, err := a.sched.AddFunc("@every 1h", a.scanLowStock); err != nil {
		zap.L().Error("failed to schedule low stock scan", zap.Error(err))
	}

	// end-of-day sales summary for the log
	if _, err := a.sched.AddFunc("55 23 * * *", a.logDailySummary); err != nil {
		zap.L().Error("failed to schedule daily summary", zap.Error(err))
	}

	a.sched.Start()
}

func (a *Application) scanLowStock() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	rows, err := a.inventorySvc.LowStockProducts(ctx)
	if err != nil {
		zap.L().Error("low stock scan failed", zap.Error(err))
		return
	}
	for i := range rows {
		a.publishLowStock(&rows[i])
	}
	if len(rows) > 0 {
		zap.L().Info("low stock scan finished", zap.Int("below_minimum", len(rows)))
	}
}

func (a *Application) logDailySummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	total, err := a.salesSvc.TotalForDay(ctx)
	if err != nil {
		zap.L().Error("daily summary failed", zap.Error(err))
		return
	}
	rows, err := a.salesSvc.SalesForDay(ctx)
	if err != nil {
		zap.L().Error("daily summary failed", zap.Error(err))
		return
	}
	zap.L().Info("daily sales summary",
		zap.Int("sales", len(rows)),
		zap.Float64("total", total))
}
