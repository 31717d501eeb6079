package feedback

import (
	"cmp"
	"fmt"
	"maps"
	"math"
	"slices"
	"strings"

	"github.com/larose/qryeval/search/query"
)

// Field is where expansion terms come from.
const Field = "body"

const (
	DefaultDocs       = 10
	DefaultTerms      = 10
	DefaultMu         = 0.0
	DefaultOrigWeight = 0.5
)

// Params configures pseudo relevance feedback. Mu smooths the expansion
// terms and may differ from the retrieval model's own mu.
type Params struct {
	Docs       int
	Terms      int
	Mu         float64
	OrigWeight float64
}

func DefaultParams() Params {
	return Params{
		Docs:       DefaultDocs,
		Terms:      DefaultTerms,
		Mu:         DefaultMu,
		OrigWeight: DefaultOrigWeight,
	}
}

type Term struct {
	Term  string
	Score float64
}

type feedbackDoc struct {
	score  float64
	length float64
	freqs  map[string]uint32
}

// Expand scores every body term of the top params.Docs documents of ranking
// and returns the params.Terms best, best first. Ties are broken by term.
// ranking must be sorted.
func Expand(ix query.Index, ranking *query.ScoreList, params Params) ([]Term, error) {
	if ranking == nil || params.Terms <= 0 {
		return nil, nil
	}

	sumFieldLengths, err := ix.SumFieldLengths(Field)
	if err != nil {
		return nil, err
	}

	docs := make([]feedbackDoc, 0, params.Docs)
	candidates := make(map[string]struct{})

	for rank := 0; rank < params.Docs && rank < ranking.Size(); rank++ {
		docId := ranking.DocIdAt(rank)

		vector, err := ix.TermVector(Field, docId)
		if err != nil {
			return nil, fmt.Errorf("term vector of %d: %w", docId, err)
		}

		length, err := ix.FieldLength(Field, docId)
		if err != nil {
			return nil, fmt.Errorf("length of %d: %w", docId, err)
		}

		doc := feedbackDoc{
			score:  ranking.ScoreAt(rank),
			length: float64(length),
			freqs:  make(map[string]uint32, len(vector)),
		}

		for _, entry := range vector {
			// Qualified terms are not free text.
			if strings.Contains(entry.Term, ".") {
				continue
			}
			doc.freqs[entry.Term] = entry.Freq
			candidates[entry.Term] = struct{}{}
		}

		docs = append(docs, doc)
	}

	terms := make([]Term, 0, len(candidates))

	for _, candidate := range slices.Sorted(maps.Keys(candidates)) {
		collectionTermFreq, err := ix.CollectionTermFreq(Field, candidate)
		if err != nil {
			return nil, err
		}

		pmle := query.Pmle(float64(collectionTermFreq), float64(sumFieldLengths))
		if pmle == 0 {
			continue
		}
		idf := math.Log(1 / pmle)

		score := 0.0
		// Documents without the term count with a term frequency of 0.
		for _, doc := range docs {
			if doc.length+params.Mu == 0 {
				continue
			}
			ptd := (float64(doc.freqs[candidate]) + params.Mu*pmle) / (doc.length + params.Mu)
			score += ptd * doc.score * idf
		}

		terms = append(terms, Term{Term: candidate, Score: score})
	}

	slices.SortStableFunc(terms, func(a, b Term) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		return strings.Compare(a.Term, b.Term)
	})

	if len(terms) > params.Terms {
		terms = terms[:params.Terms]
	}

	return terms, nil
}

// Query weights each term by its raw score. Terms without a positive score
// are left out. It returns nil when there is nothing to evaluate.
func Query(terms []Term) *query.WandNode {
	children := make([]query.Node, 0, len(terms))
	weights := make([]float64, 0, len(terms))

	for _, term := range terms {
		if !(term.Score > 0) {
			continue
		}

		children = append(children, &query.ScoreNode{Arg: &query.TermNode{Field: Field, Term: term.Term}})
		weights = append(weights, term.Score)
	}

	if len(children) == 0 {
		return nil
	}

	return &query.WandNode{Children: children, Weights: weights}
}

// Combine weights original by origWeight and expansion by the rest. A
// weight of 0 leaves out its query.
func Combine(original query.Node, expansion *query.WandNode, origWeight float64) query.Node {
	if original.Operator().Indexed() {
		original = &query.ScoreNode{Arg: original}
	}

	switch {
	case origWeight <= 0:
		return expansion
	case origWeight >= 1:
		return original
	}

	return &query.WandNode{
		Children: []query.Node{original, expansion},
		Weights:  []float64{origWeight, 1 - origWeight},
	}
}
