package search

import (
	"github.com/larose/qryeval/search/feedback"
	"github.com/larose/qryeval/search/query"
)

// Search optimizes and compiles root, then feeds every matching document to
// collector. A tree the optimizer removes entirely matches nothing.
func Search(root query.Node, ix query.Index, model query.RetrievalModel, collector query.Collector) error {
	optimized := query.Optimize(root)
	if optimized == nil {
		return nil
	}

	scorer, err := query.Compile(optimized, model, ix)
	if err != nil {
		return err
	}

	return query.Evaluate(scorer, collector)
}

// SearchWithFeedback expands root with the top documents of ranking and
// evaluates the combined query. ranking must be sorted. The expansion is
// returned with the results, nil when ranking had nothing to expand from.
func SearchWithFeedback(
	root query.Node,
	ix query.Index,
	model query.RetrievalModel,
	ranking *query.ScoreList,
	params feedback.Params,
	collector query.Collector,
) (*query.WandNode, error) {
	optimized := query.Optimize(root)
	if optimized == nil {
		return nil, nil
	}

	terms, err := feedback.Expand(ix, ranking, params)
	if err != nil {
		return nil, err
	}

	expansion := feedback.Query(terms)
	if expansion == nil {
		return nil, Search(optimized, ix, model, collector)
	}

	combined := feedback.Combine(optimized, expansion, params.OrigWeight)

	return expansion, Search(combined, ix, model, collector)
}

// TopDocuments evaluates root and keeps its n best documents, best first.
func TopDocuments(root query.Node, ix query.Index, model query.RetrievalModel, n int) (*query.ScoreList, error) {
	collector := query.NewTopNCollector(n)
	if err := Search(root, ix, model, collector); err != nil {
		return nil, err
	}

	return collector.ScoreList(), nil
}
