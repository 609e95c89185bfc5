package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"tastreamv1/config"
	"tastreamv1/internal/indstream"
	"tastreamv1/internal/logger"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)

	cfg := config.Load()
	slogger := logger.Init("indstream", logger.ParseLevel(cfg.LogLevel))
	slogger.Info("starting", "csv", cfg.CSVPath, "indicators", cfg.Indicators)

	svc, err := indstream.New(cfg)
	if err != nil {
		slogger.Error("init failed", "err", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		slogger.Info("signal received, shutting down")
		cancel()
	}()

	if err := svc.Run(ctx); err != nil {
		slogger.Error("fatal", "err", err)
		os.Exit(1)
	}
}
