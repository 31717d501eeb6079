package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/larose/qryeval/search/config"
	"github.com/larose/qryeval/search/logger"
	"github.com/larose/qryeval/search/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	mode := flag.String("mode", "", "Mode to run: index or search")
	configPath := flag.String("config", "", "YAML configuration file")
	input := flag.String("input", "", "JSONL documents to index")
	indexPath := flag.String("index", "", "Index directory, overrides the configuration")
	cpuProfile := flag.String("cpuprofile", "", "Write a CPU profile to this file")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *indexPath != "" {
		cfg.IndexPath = *indexPath
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	if err := execute(*mode, cfg, *input, *cpuProfile); err != nil {
		slog.Error("qryeval failed", "mode", *mode, "error", err)
		os.Exit(1)
	}
}

func execute(mode string, cfg *config.Config, input string, cpuProfile string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Addr, registry)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			shutdown(shutdownCtx)
		}()
	}

	stopProfiler, err := startCpuProfiler(cpuProfile)
	if err != nil {
		return err
	}

	switch mode {
	case "index":
		err = indexDocuments(ctx, cfg.IndexPath, input, m)
	case "search":
		err = search(ctx, cfg, m)
	default:
		err = errors.New("usage: qryeval -mode=index|search [-config file] [-input docs.jsonl] [-index dir]")
	}

	if stopErr := stopProfiler(); err == nil {
		err = stopErr
	}

	return err
}
