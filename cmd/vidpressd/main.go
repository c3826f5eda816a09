package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"vidpress/internal/api"
	"vidpress/internal/assets"
	"vidpress/internal/config"
	"vidpress/internal/daemon"
	"vidpress/internal/logging"
	"vidpress/internal/queue"
	"vidpress/internal/render"
	"vidpress/internal/workpool"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := queue.Open(cfg)
	if err != nil {
		logger.Error("open job store", logging.Error(err))
		return
	}

	resolver := assets.NewResolver(cfg.Paths.AssetsDir)
	renderer, err := render.NewRenderer(cfg, store, resolver, logger)
	if err != nil {
		logger.Error("create renderer", logging.Error(err))
		return
	}

	pool := workpool.New(cfg.Render.MaxWorkers, cfg.Render.QueueBuffer, renderer, logger)

	assetSvc, err := assets.NewService(cfg.Paths.AssetsDir, store)
	if err != nil {
		logger.Error("create asset service", logging.Error(err))
		return
	}

	server, err := api.NewServer(cfg, store, assetSvc, pool, logger)
	if err != nil {
		logger.Error("create api server", logging.Error(err))
		return
	}

	d, err := daemon.New(cfg, store, pool, server, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	select {
	case <-ctx.Done():
	case err, ok := <-d.ServeErr():
		if ok && err != nil {
			logger.Error("api serve", logging.Error(err))
		}
	}
	logger.Info("vidpressd shutting down")
}
