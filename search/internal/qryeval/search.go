package main

import (
	"context"
	"time"

	"github.com/larose/qryeval/search/config"
	"github.com/larose/qryeval/search/logger"
	"github.com/larose/qryeval/search/metrics"
	"github.com/larose/qryeval/search/run"
)

func search(ctx context.Context, cfg *config.Config, m *metrics.Metrics) error {
	log := logger.WithComponent("search")

	start := time.Now()
	if err := run.Execute(ctx, cfg, m); err != nil {
		return err
	}

	log.Info("search done", "output", cfg.TrecEvalOutputPath, "elapsed", time.Since(start))
	return nil
}
