package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexanderramin/shopfloor/internal/app"
	"github.com/alexanderramin/shopfloor/internal/cli"
	"github.com/alexanderramin/shopfloor/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	if cfg.LogLevel > slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer services.Close()

	a := &cli.App{
		Stock:       services.Stock,
		BOMs:        services.BOMs,
		Orders:      services.Orders,
		WorkOrders:  services.WorkOrders,
		WorkCenters: services.WorkCenters,
		Status:      services.Status,
		Logger:      logger,
		HTTPAddr:    cfg.HTTPAddr,
	}
	a.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(a).ExecuteContext(ctx)
}
