package query

import (
	"math"
)

// Scorer is a compiled scoring operator.
type Scorer interface {
	DocCursor
	// Score is only valid for the document the scorer matches.
	Score(docId uint64) (float64, error)
	// DefaultScore is the score of a document the scorer does not match.
	// Only language models define it, other models return 0.
	DefaultScore(docId uint64) (float64, error)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// TermScorer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type termScoreFunc func(s *TermScorer, termFreq float64, docId uint64) (float64, error)

var termScoreFuncs = map[ModelKind]termScoreFunc{
	UnrankedBoolean: func(s *TermScorer, termFreq float64, docId uint64) (float64, error) {
		return 1, nil
	},
	RankedBoolean: func(s *TermScorer, termFreq float64, docId uint64) (float64, error) {
		return termFreq, nil
	},
	BM25: func(s *TermScorer, termFreq float64, docId uint64) (float64, error) {
		docLength, err := s.context.Index.FieldLength(s.field, docId)
		if err != nil {
			return 0, err
		}

		return s.context.Model.BM25Score(
			termFreq,
			float64(s.List().DocFreq),
			float64(s.context.NumDocs),
			float64(docLength),
			s.stats.AvgFieldLength(),
		), nil
	},
	Indri: func(s *TermScorer, termFreq float64, docId uint64) (float64, error) {
		docLength, err := s.context.Index.FieldLength(s.field, docId)
		if err != nil {
			return 0, err
		}

		return s.context.Model.IndriScore(termFreq, float64(docLength), s.pmle), nil
	},
}

// TermScorer scores the postings of one indexed operator.
type TermScorer struct {
	*InvertedCursor
	context *ExecutionContext
	field   string
	stats   FieldStats
	pmle    float64
	score   termScoreFunc
}

func newTermScorer(context *ExecutionContext, field string, cursor *InvertedCursor) *TermScorer {
	stats := context.FieldStats(field)

	return &TermScorer{
		InvertedCursor: cursor,
		context:        context,
		field:          field,
		stats:          stats,
		pmle:           Pmle(float64(cursor.List().TotalTermFreq), float64(stats.SumFieldLengths)),
		score:          termScoreFuncs[context.Model.Kind],
	}
}

func (s *TermScorer) Score(docId uint64) (float64, error) {
	return s.score(s, float64(s.Posting().TermFreq()), docId)
}

// DefaultScore is the Indri score with no occurrence.
func (s *TermScorer) DefaultScore(docId uint64) (float64, error) {
	if s.context.Model.Kind != Indri {
		return 0, nil
	}
	return s.score(s, 0, docId)
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// CombinedScorer
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type combineFunc func(s *CombinedScorer, docId uint64) (float64, error)

// operatorRule is how one operator matches and scores under one model.
type operatorRule struct {
	matchAll     bool
	score        combineFunc
	defaultScore combineFunc
}

// combinationRules lists every supported (operator, model) pair of the
// scoring operators.
var combinationRules = map[Operator]map[ModelKind]operatorRule{
	OpAnd: {
		UnrankedBoolean: {matchAll: true, score: constantScore},
		RankedBoolean:   {matchAll: true, score: minScore},
		Indri:           {score: geometricMean, defaultScore: geometricMeanOfDefaults},
	},
	OpOr: {
		UnrankedBoolean: {score: constantScore},
		RankedBoolean:   {score: maxScore},
	},
	OpSum: {
		BM25: {score: sumScore},
	},
	OpWand: {
		Indri: {score: geometricMean, defaultScore: geometricMeanOfDefaults},
	},
	OpWsum: {
		Indri: {score: arithmeticMean, defaultScore: arithmeticMeanOfDefaults},
	},
}

// CombinedScorer combines its children's scores. weights are normalized to
// sum to 1, uniform for unweighted operators.
type CombinedScorer struct {
	DocCursor
	children []Scorer
	weights  []float64
	rule     operatorRule
}

func newCombinedScorer(children []Scorer, weights []float64, rule operatorRule) *CombinedScorer {
	cursors := make([]DocCursor, len(children))
	for i, child := range children {
		cursors[i] = child
	}

	var cursor DocCursor
	if rule.matchAll {
		cursor = NewConjunctionCursor(cursors)
	} else {
		cursor = NewDisjunctionCursor(cursors)
	}

	normalized := make([]float64, len(children))
	if weights == nil {
		for i := range normalized {
			normalized[i] = 1 / float64(len(children))
		}
	} else {
		total := sum(weights)
		for i, weight := range weights {
			normalized[i] = weight / total
		}
	}

	return &CombinedScorer{
		DocCursor: cursor,
		children:  children,
		weights:   normalized,
		rule:      rule,
	}
}

func (s *CombinedScorer) Score(docId uint64) (float64, error) {
	return s.rule.score(s, docId)
}

func (s *CombinedScorer) DefaultScore(docId uint64) (float64, error) {
	if s.rule.defaultScore == nil {
		return 0, nil
	}
	return s.rule.defaultScore(s, docId)
}

// childScore substitutes the default score for a child not on docId.
func (s *CombinedScorer) childScore(i int, docId uint64) (float64, error) {
	child := s.children[i]
	if matchesAt(child, docId) {
		return child.Score(docId)
	}
	return child.DefaultScore(docId)
}

func constantScore(s *CombinedScorer, docId uint64) (float64, error) {
	return 1, nil
}

func minScore(s *CombinedScorer, docId uint64) (float64, error) {
	score := math.MaxFloat64
	for _, child := range s.children {
		if !matchesAt(child, docId) {
			continue
		}

		childScore, err := child.Score(docId)
		if err != nil {
			return 0, err
		}
		score = min(score, childScore)
	}
	return score, nil
}

func maxScore(s *CombinedScorer, docId uint64) (float64, error) {
	score := 0.0
	for _, child := range s.children {
		if !matchesAt(child, docId) {
			continue
		}

		childScore, err := child.Score(docId)
		if err != nil {
			return 0, err
		}
		score = max(score, childScore)
	}
	return score, nil
}

// sumScore ignores children not on docId.
func sumScore(s *CombinedScorer, docId uint64) (float64, error) {
	score := 0.0
	for _, child := range s.children {
		if !matchesAt(child, docId) {
			continue
		}

		childScore, err := child.Score(docId)
		if err != nil {
			return 0, err
		}
		score += childScore
	}
	return score, nil
}

func geometricMean(s *CombinedScorer, docId uint64) (float64, error) {
	score := 1.0
	for i := range s.children {
		childScore, err := s.childScore(i, docId)
		if err != nil {
			return 0, err
		}
		score *= math.Pow(childScore, s.weights[i])
	}
	return score, nil
}

func geometricMeanOfDefaults(s *CombinedScorer, docId uint64) (float64, error) {
	score := 1.0
	for i, child := range s.children {
		childScore, err := child.DefaultScore(docId)
		if err != nil {
			return 0, err
		}
		score *= math.Pow(childScore, s.weights[i])
	}
	return score, nil
}

func arithmeticMean(s *CombinedScorer, docId uint64) (float64, error) {
	score := 0.0
	for i := range s.children {
		childScore, err := s.childScore(i, docId)
		if err != nil {
			return 0, err
		}
		score += s.weights[i] * childScore
	}
	return score, nil
}

func arithmeticMeanOfDefaults(s *CombinedScorer, docId uint64) (float64, error) {
	score := 0.0
	for i, child := range s.children {
		childScore, err := child.DefaultScore(docId)
		if err != nil {
			return 0, err
		}
		score += s.weights[i] * childScore
	}
	return score, nil
}
