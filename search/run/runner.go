package run

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/larose/qryeval/search"
	"github.com/larose/qryeval/search/feedback"
	"github.com/larose/qryeval/search/logger"
	"github.com/larose/qryeval/search/metrics"
	"github.com/larose/qryeval/search/query"
	"golang.org/x/sync/errgroup"
)

// Feedback enables query expansion. With Rankings nil the initial ranking
// of each query is computed by running it.
type Feedback struct {
	Params   feedback.Params
	Rankings map[string]*query.ScoreList
}

// Result is the outcome of one query. Err is a syntax or model error of
// that query only, Scores is nil then.
type Result struct {
	QueryId   string
	Scores    *query.ScoreList
	Expansion *query.WandNode
	Err       error
}

// Runner evaluates a batch of independent queries against one index.
type Runner struct {
	Index      query.Index
	Analyzer   query.Analyzer
	Model      query.RetrievalModel
	Fields     []string
	Feedback   *Feedback
	MaxResults int
	Workers    int
	Metrics    *metrics.Metrics
	Logger     *slog.Logger
}

func (r *Runner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func queryResult(err error) string {
	switch {
	case err == nil:
		return metrics.ResultOk
	case errors.Is(err, query.ErrSyntax):
		return metrics.ResultSyntaxError
	case errors.Is(err, query.ErrModelMismatch):
		return metrics.ResultModelError
	default:
		return metrics.ResultIOError
	}
}

// Run evaluates queries with at most Workers at a time. Results are in the
// order of queries. The first error other than a query's own syntax or
// model error stops the run.
func (r *Runner) Run(ctx context.Context, queries []Query) ([]Result, error) {
	results := make([]Result, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(r.Workers, 1))

	for i, q := range queries {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := r.evaluate(q)
			if err != nil {
				return err
			}

			results[i] = result
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func (r *Runner) evaluate(q Query) (Result, error) {
	log := logger.WithQuery(r.logger(), q.Id)
	start := time.Now()

	scores, expansion, err := r.search(q)

	outcome := queryResult(err)
	if r.Metrics != nil {
		r.Metrics.QueriesTotal.WithLabelValues(outcome).Inc()
		r.Metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}

	switch outcome {
	case metrics.ResultOk:
	case metrics.ResultIOError:
		log.Error("query failed", "error", err)
		return Result{}, err
	default:
		log.Warn("invalid query", "query", q.Text, "error", err)
		return Result{QueryId: q.Id, Err: err}, nil
	}

	if r.Metrics != nil {
		r.Metrics.ResultsCount.Observe(float64(scores.Size()))
		if r.Feedback != nil {
			terms := 0
			if expansion != nil {
				terms = len(expansion.Children)
			}
			r.Metrics.ExpansionTerms.Observe(float64(terms))
		}
	}

	log.Info("query evaluated", "results", scores.Size(), "elapsed", time.Since(start))
	if expansion != nil {
		log.Debug("query expanded", "expansion", expansion.String())
	}

	if r.MaxResults > 0 {
		scores.Truncate(r.MaxResults)
	}

	return Result{QueryId: q.Id, Scores: scores, Expansion: expansion}, nil
}

func (r *Runner) search(q Query) (*query.ScoreList, *query.WandNode, error) {
	root, err := query.Parse(q.Text, r.Model, r.Analyzer, r.Fields)
	if err != nil {
		return nil, nil, err
	}

	if optimized := query.Optimize(root); optimized != nil {
		r.logger().Debug("query parsed", "qid", q.Id, "tree", optimized.String())
	}

	scores := query.NewScoreList()

	if r.Feedback == nil {
		if err := search.Search(root, r.Index, r.Model, scores); err != nil {
			return nil, nil, err
		}
		scores.Sort()
		return scores, nil, nil
	}

	ranking, err := r.initialRanking(q.Id, root)
	if err != nil {
		return nil, nil, err
	}

	expansion, err := search.SearchWithFeedback(root, r.Index, r.Model, ranking, r.Feedback.Params, scores)
	if err != nil {
		return nil, nil, err
	}

	scores.Sort()
	return scores, expansion, nil
}

func (r *Runner) initialRanking(queryId string, root query.Node) (*query.ScoreList, error) {
	if r.Feedback.Rankings == nil {
		return search.TopDocuments(root, r.Index, r.Model, r.Feedback.Params.Docs)
	}

	if ranking, exists := r.Feedback.Rankings[queryId]; exists {
		return ranking, nil
	}

	r.logger().Warn("no initial ranking", "qid", queryId)
	return query.NewScoreList(), nil
}
