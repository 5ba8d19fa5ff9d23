package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kmanager/kiosco/config"
	"github.com/kmanager/kiosco/internal/api"
	"github.com/kmanager/kiosco/internal/app"
	"github.com/kmanager/kiosco/internal/webserver"
)

var (
	confFile = flag.String("c", "/etc/kiosco.yml", "config file")
	initDB   = flag.Bool("initdb", false, "drop and recreate all tables, then exit")
)

func main() {
	flag.Parse()

	cfg := config.LoadConfig(*confFile)
	application := app.NewApplication(cfg)
	application.Init(cfg)
	defer application.Release()

	if *initDB {
		application.InitDb()
		zap.L().Info("database initialized")
		return
	}

	ws := webserver.Init(cfg)
	api.Init(application.Inventory(), application.Sales())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)
	g.Go(ws.Listen)
	g.Go(func() error {
		<-ctx.Done()
		zap.L().Info("shutting down")
		return ws.Shutdown()
	})

	if err := g.Wait(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		zap.L().Error("server exited", zap.Error(err))
	}
}
