package run

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/larose/qryeval/search/config"
	"github.com/larose/qryeval/search/index"
	"github.com/larose/qryeval/search/logger"
	"github.com/larose/qryeval/search/metrics"
	"github.com/larose/qryeval/search/query"
)

// Execute runs the query file of cfg against its index and writes the TREC
// run, and the expansion queries when feedback is enabled. m may be nil.
func Execute(ctx context.Context, cfg *config.Config, m *metrics.Metrics) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.WithComponent("run")

	model, err := cfg.Model()
	if err != nil {
		return err
	}

	indexReader, err := index.NewIndexReader(cfg.IndexPath)
	if err != nil {
		return fmt.Errorf("opening index %s: %w", cfg.IndexPath, err)
	}
	defer indexReader.Close()

	queries, err := readQueryFile(cfg.QueryFilePath)
	if err != nil {
		return err
	}

	runner := &Runner{
		Index:      indexReader,
		Analyzer:   index.NewEnglishAnalyzer(),
		Model:      model,
		Fields:     query.DefaultFields,
		MaxResults: cfg.Output.MaxResults,
		Workers:    cfg.Workers,
		Metrics:    m,
		Logger:     log,
	}

	if cfg.Feedback.Enabled {
		runner.Feedback = &Feedback{Params: cfg.Feedback.Params()}

		if cfg.Feedback.InitialRankingFile != "" {
			rankings, err := readRankingFile(cfg.Feedback.InitialRankingFile, indexReader, log)
			if err != nil {
				return err
			}
			runner.Feedback.Rankings = rankings
		}
	}

	log.Info("running queries", "queries", len(queries), "model", model.String(), "workers", cfg.Workers)

	results, err := runner.Run(ctx, queries)
	if err != nil {
		return err
	}

	if err := writeOutputFile(cfg.TrecEvalOutputPath, func(w *bufio.Writer) error {
		for _, result := range results {
			if result.Err != nil {
				continue
			}
			if err := WriteTrecResults(w, result.QueryId, result.Scores, indexReader, cfg.Output.RunId, cfg.Output.MaxResults); err != nil {
				return err
			}
		}
		return nil
	}); err != nil {
		return err
	}

	if !cfg.Feedback.Enabled {
		return nil
	}

	return writeOutputFile(cfg.Feedback.ExpansionQueryFile, func(w *bufio.Writer) error {
		for _, result := range results {
			if result.Err != nil {
				continue
			}
			if err := WriteExpansion(w, result.QueryId, result.Expansion); err != nil {
				return err
			}
		}
		return nil
	})
}

func readQueryFile(path string) ([]Query, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening query file: %w", err)
	}
	defer file.Close()

	return ReadQueries(file)
}

func readRankingFile(path string, ix query.Index, log *slog.Logger) (map[string]*query.ScoreList, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening initial ranking file: %w", err)
	}
	defer file.Close()

	return ReadRankings(file, ix, log)
}

func writeOutputFile(path string, write func(w *bufio.Writer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(file)
	if err := write(w); err != nil {
		file.Close()
		return err
	}

	if err := w.Flush(); err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
