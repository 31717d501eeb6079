// Package config loads the parameters of a batch run from a YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/larose/qryeval/search/feedback"
	"github.com/larose/qryeval/search/query"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	IndexPath          string `yaml:"indexPath"`
	QueryFilePath      string `yaml:"queryFilePath"`
	TrecEvalOutputPath string `yaml:"trecEvalOutputPath"`
	RetrievalAlgorithm string `yaml:"retrievalAlgorithm"`

	BM25     BM25Config     `yaml:"bm25"`
	Indri    IndriConfig    `yaml:"indri"`
	Feedback FeedbackConfig `yaml:"fb"`
	Output   OutputConfig   `yaml:"output"`
	Workers  int            `yaml:"workers"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type BM25Config struct {
	K1 float64 `yaml:"k1"`
	B  float64 `yaml:"b"`
	K3 float64 `yaml:"k3"`
}

type IndriConfig struct {
	Mu     float64 `yaml:"mu"`
	Lambda float64 `yaml:"lambda"`
}

// FeedbackConfig enables query expansion. Without an initial ranking file
// the initial ranking comes from the query itself.
type FeedbackConfig struct {
	Enabled            bool    `yaml:"enabled"`
	Docs               int     `yaml:"docs"`
	Terms              int     `yaml:"terms"`
	Mu                 float64 `yaml:"mu"`
	OrigWeight         float64 `yaml:"origWeight"`
	InitialRankingFile string  `yaml:"initialRankingFile"`
	ExpansionQueryFile string  `yaml:"expansionQueryFile"`
}

func (c FeedbackConfig) Params() feedback.Params {
	return feedback.Params{
		Docs:       c.Docs,
		Terms:      c.Terms,
		Mu:         c.Mu,
		OrigWeight: c.OrigWeight,
	}
}

type OutputConfig struct {
	RunId      string `yaml:"runId"`
	MaxResults int    `yaml:"maxResults"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Load reads path, when not empty, over the defaults and applies QRYEVAL_*
// environment overrides. It does not validate.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func defaultConfig() *Config {
	params := feedback.DefaultParams()

	return &Config{
		RetrievalAlgorithm: query.Indri.String(),
		BM25: BM25Config{
			K1: query.DefaultK1,
			B:  query.DefaultB,
			K3: query.DefaultK3,
		},
		Indri: IndriConfig{
			Mu:     query.DefaultMu,
			Lambda: query.DefaultLambda,
		},
		Feedback: FeedbackConfig{
			Docs:       params.Docs,
			Terms:      params.Terms,
			Mu:         params.Mu,
			OrigWeight: params.OrigWeight,
		},
		Output: OutputConfig{
			RunId:      "run-1",
			MaxResults: 100,
		},
		Workers: 4,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QRYEVAL_INDEX_PATH"); v != "" {
		cfg.IndexPath = v
	}
	if v := os.Getenv("QRYEVAL_QUERY_FILE_PATH"); v != "" {
		cfg.QueryFilePath = v
	}
	if v := os.Getenv("QRYEVAL_TREC_EVAL_OUTPUT_PATH"); v != "" {
		cfg.TrecEvalOutputPath = v
	}
	if v := os.Getenv("QRYEVAL_RETRIEVAL_ALGORITHM"); v != "" {
		cfg.RetrievalAlgorithm = v
	}
	if v := os.Getenv("QRYEVAL_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil {
			cfg.Workers = workers
		}
	}
	if v := os.Getenv("QRYEVAL_MAX_RESULTS"); v != "" {
		if maxResults, err := strconv.Atoi(v); err == nil {
			cfg.Output.MaxResults = maxResults
		}
	}
	if v := os.Getenv("QRYEVAL_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("QRYEVAL_LOGGING_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
	if v := os.Getenv("QRYEVAL_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
}

// Validate checks required keys and parameter ranges.
func (c *Config) Validate() error {
	required := []struct {
		key   string
		value string
	}{
		{"indexPath", c.IndexPath},
		{"queryFilePath", c.QueryFilePath},
		{"trecEvalOutputPath", c.TrecEvalOutputPath},
	}
	for _, entry := range required {
		if entry.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalid, entry.key)
		}
	}

	kind, err := query.ParseModelKind(c.RetrievalAlgorithm)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalid, err)
	}

	switch kind {
	case query.BM25:
		if c.BM25.K1 < 0 || c.BM25.B < 0 || c.BM25.B > 1 || c.BM25.K3 < 0 {
			return fmt.Errorf("%w: bm25 needs k1 >= 0, 0 <= b <= 1 and k3 >= 0", ErrInvalid)
		}
	case query.Indri:
		if c.Indri.Mu < 0 || c.Indri.Lambda < 0 || c.Indri.Lambda > 1 {
			return fmt.Errorf("%w: indri needs mu >= 0 and 0 <= lambda <= 1", ErrInvalid)
		}
	}

	if c.Output.MaxResults <= 0 {
		return fmt.Errorf("%w: output.maxResults must be positive", ErrInvalid)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive", ErrInvalid)
	}

	if c.Feedback.Enabled {
		if kind != query.Indri {
			return fmt.Errorf("%w: fb needs the indri retrieval algorithm", ErrInvalid)
		}
		if c.Feedback.Docs <= 0 || c.Feedback.Terms <= 0 {
			return fmt.Errorf("%w: fb.docs and fb.terms must be positive", ErrInvalid)
		}
		if c.Feedback.Mu < 0 {
			return fmt.Errorf("%w: fb.mu must not be negative", ErrInvalid)
		}
		if c.Feedback.OrigWeight < 0 || c.Feedback.OrigWeight > 1 {
			return fmt.Errorf("%w: fb.origWeight must be in [0, 1]", ErrInvalid)
		}
		if c.Feedback.ExpansionQueryFile == "" {
			return fmt.Errorf("%w: fb.expansionQueryFile is required", ErrInvalid)
		}
	}

	return nil
}

// Model builds the retrieval model of a validated configuration.
func (c *Config) Model() (query.RetrievalModel, error) {
	kind, err := query.ParseModelKind(c.RetrievalAlgorithm)
	if err != nil {
		return query.RetrievalModel{}, err
	}

	switch kind {
	case query.BM25:
		return query.NewBM25Model(c.BM25.K1, c.BM25.B, c.BM25.K3), nil
	case query.Indri:
		return query.NewIndriModel(c.Indri.Mu, c.Indri.Lambda), nil
	}
	return query.NewModel(kind), nil
}
