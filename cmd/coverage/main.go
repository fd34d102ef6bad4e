package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-coverage-api/internal/app"
	"github.com/noah-isme/sma-coverage-api/internal/cli"
	"github.com/noah-isme/sma-coverage-api/pkg/config"
	"github.com/noah-isme/sma-coverage-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	factory := func(_ context.Context) (cli.CoverageAPI, func(), error) {
		container, err := app.NewContainer(context.Background(), cfg, logr)
		if err != nil {
			return nil, nil, err
		}
		release := func() {
			flushCtx, cancel := context.WithTimeout(context.Background(), cfg.Notification.PublishTimeout*2)
			defer cancel()
			if err := container.Notifications.Flush(flushCtx); err != nil {
				logr.Warn("pending notifications not delivered", zap.Error(err))
			}
			container.Close()
		}
		return container.Coverage, release, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	if err := cli.NewRootCommand(factory, logr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
