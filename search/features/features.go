// Package features computes learning to rank features of (query, document)
// pairs with the same formulas the retrieval models rank with.
package features

import (
	"math"

	"github.com/larose/qryeval/search/query"
)

// Fields are scored in this order, three features each.
var Fields = []string{"body", "title", "url", "inlink"}

const featuresPerField = 3

var Count = len(Fields) * featuresPerField

// Vector holds Count features. A field the document does not have yields
// NaN, a missing value.
type Vector []float64

type Extractor struct {
	Index query.Index
	BM25  query.RetrievalModel
	Indri query.RetrievalModel
}

func NewExtractor(ix query.Index, bm25, indri query.RetrievalModel) *Extractor {
	return &Extractor{Index: ix, BM25: bm25, Indri: indri}
}

// Extract computes BM25, Indri and term overlap, in that order, for each of
// Fields. terms are analyzed query terms.
func (e *Extractor) Extract(docId uint64, terms []string) (Vector, error) {
	vector := make(Vector, 0, Count)

	for _, field := range Fields {
		termVector, err := e.Index.TermVector(field, docId)
		if err != nil {
			return nil, err
		}

		if len(termVector) == 0 {
			vector = append(vector, math.NaN(), math.NaN(), math.NaN())
			continue
		}

		freqs := make(map[string]uint32, len(termVector))
		for _, entry := range termVector {
			freqs[entry.Term] = entry.Freq
		}

		bm25, err := e.bm25(docId, field, terms, freqs)
		if err != nil {
			return nil, err
		}

		indri, err := e.indri(docId, field, terms, freqs)
		if err != nil {
			return nil, err
		}

		vector = append(vector, bm25, indri, TermOverlap(terms, freqs))
	}

	return vector, nil
}

func (e *Extractor) bm25(docId uint64, field string, terms []string, freqs map[string]uint32) (float64, error) {
	numDocs, err := e.Index.NumDocs()
	if err != nil {
		return 0, err
	}

	docLength, err := e.Index.FieldLength(field, docId)
	if err != nil {
		return 0, err
	}

	sumFieldLengths, err := e.Index.SumFieldLengths(field)
	if err != nil {
		return 0, err
	}

	docCount, err := e.Index.DocCount(field)
	if err != nil {
		return 0, err
	}

	avgDocLength := query.FieldStats{DocCount: docCount, SumFieldLengths: sumFieldLengths}.AvgFieldLength()

	score := 0.0
	for _, term := range terms {
		termFreq, exists := freqs[term]
		if !exists {
			continue
		}

		docFreq, err := e.Index.DocFreq(field, term)
		if err != nil {
			return 0, err
		}

		score += e.BM25.BM25Score(float64(termFreq), float64(docFreq), float64(numDocs), float64(docLength), avgDocLength)
	}

	return score, nil
}

// indri is the geometric mean over terms, 0 when no term occurs.
func (e *Extractor) indri(docId uint64, field string, terms []string, freqs map[string]uint32) (float64, error) {
	docLength, err := e.Index.FieldLength(field, docId)
	if err != nil {
		return 0, err
	}

	sumFieldLengths, err := e.Index.SumFieldLengths(field)
	if err != nil {
		return 0, err
	}

	matched := false
	score := 1.0

	for _, term := range terms {
		termFreq, exists := freqs[term]
		matched = matched || exists

		collectionTermFreq, err := e.Index.CollectionTermFreq(field, term)
		if err != nil {
			return 0, err
		}

		pmle := query.Pmle(float64(collectionTermFreq), float64(sumFieldLengths))
		termScore := e.Indri.IndriScore(float64(termFreq), float64(docLength), pmle)
		score *= math.Pow(termScore, 1/float64(len(terms)))
	}

	if !matched {
		return 0, nil
	}

	return score, nil
}

// TermOverlap is the fraction of terms present in freqs.
func TermOverlap(terms []string, freqs map[string]uint32) float64 {
	if len(terms) == 0 {
		return 0
	}

	present := 0
	for _, term := range terms {
		if _, exists := freqs[term]; exists {
			present++
		}
	}

	return float64(present) / float64(len(terms))
}

// Normalize rescales each feature to [0, 1] over vectors, the documents of
// one query. Missing values are left out of the range and become 0, as does
// every value of a constant feature.
func Normalize(vectors []Vector) {
	if len(vectors) == 0 {
		return
	}

	width := len(vectors[0])
	minValues := make([]float64, width)
	maxValues := make([]float64, width)
	for i := range width {
		minValues[i] = math.Inf(1)
		maxValues[i] = math.Inf(-1)
	}

	for _, vector := range vectors {
		for i, value := range vector {
			if math.IsNaN(value) {
				continue
			}
			minValues[i] = min(minValues[i], value)
			maxValues[i] = max(maxValues[i], value)
		}
	}

	for _, vector := range vectors {
		for i, value := range vector {
			if math.IsNaN(value) || !(maxValues[i] > minValues[i]) {
				vector[i] = 0
				continue
			}
			vector[i] = (value - minValues[i]) / (maxValues[i] - minValues[i])
		}
	}
}
