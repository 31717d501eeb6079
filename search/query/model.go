package query

import (
	"fmt"
	"math"
	"strings"
)

type ModelKind byte

const (
	UnrankedBoolean ModelKind = iota
	RankedBoolean
	BM25
	Indri
)

var modelNames = map[ModelKind]string{
	UnrankedBoolean: "unrankedboolean",
	RankedBoolean:   "rankedboolean",
	BM25:            "bm25",
	Indri:           "indri",
}

func (k ModelKind) String() string {
	return modelNames[k]
}

func ParseModelKind(name string) (ModelKind, error) {
	for kind, kindName := range modelNames {
		if strings.EqualFold(name, kindName) {
			return kind, nil
		}
	}

	return 0, fmt.Errorf("unknown retrieval model %q", name)
}

// RetrievalModel selects the scoring formulas and holds their parameters.
// It is passed by value and never changes during a run.
type RetrievalModel struct {
	Kind ModelKind

	// BM25
	K1 float64
	B  float64
	K3 float64

	// Indri
	Mu     float64
	Lambda float64
}

const (
	DefaultK1     = 1.2
	DefaultB      = 0.75
	DefaultK3     = 0.0
	DefaultMu     = 2500.0
	DefaultLambda = 0.4
)

func NewUnrankedBooleanModel() RetrievalModel {
	return RetrievalModel{Kind: UnrankedBoolean}
}

func NewRankedBooleanModel() RetrievalModel {
	return RetrievalModel{Kind: RankedBoolean}
}

func NewBM25Model(k1, b, k3 float64) RetrievalModel {
	return RetrievalModel{Kind: BM25, K1: k1, B: b, K3: k3}
}

func NewIndriModel(mu, lambda float64) RetrievalModel {
	return RetrievalModel{Kind: Indri, Mu: mu, Lambda: lambda}
}

// NewModel returns kind with default parameters.
func NewModel(kind ModelKind) RetrievalModel {
	switch kind {
	case BM25:
		return NewBM25Model(DefaultK1, DefaultB, DefaultK3)
	case Indri:
		return NewIndriModel(DefaultMu, DefaultLambda)
	}
	return RetrievalModel{Kind: kind}
}

// DefaultOperator wraps every parsed query.
func (m RetrievalModel) DefaultOperator() Operator {
	switch m.Kind {
	case BM25:
		return OpSum
	case Indri:
		return OpAnd
	}
	return OpOr
}

func (m RetrievalModel) String() string {
	switch m.Kind {
	case BM25:
		return fmt.Sprintf("bm25(k1=%g b=%g k3=%g)", m.K1, m.B, m.K3)
	case Indri:
		return fmt.Sprintf("indri(mu=%g lambda=%g)", m.Mu, m.Lambda)
	}
	return m.Kind.String()
}

// BM25Idf is never negative, frequent terms get 0.
func BM25Idf(numDocs, docFreq float64) float64 {
	return math.Max(0, math.Log((numDocs-docFreq+0.5)/(docFreq+0.5)))
}

// BM25Score uses a query term frequency of 1.
func (m RetrievalModel) BM25Score(termFreq, docFreq, numDocs, docLength, avgDocLength float64) float64 {
	idf := BM25Idf(numDocs, docFreq)

	lengthNorm := 1 - m.B
	if avgDocLength > 0 {
		lengthNorm += m.B * docLength / avgDocLength
	}

	tfWeight := 0.0
	if termFreq > 0 {
		tfWeight = termFreq / (termFreq + m.K1*lengthNorm)
	}

	const qtf = 1.0
	userWeight := (m.K3 + 1) * qtf / (m.K3 + qtf)

	return idf * tfWeight * userWeight
}

// Pmle is the maximum likelihood estimate of a term in a field, 0 for an
// empty field.
func Pmle(collectionTermFreq, sumFieldLengths float64) float64 {
	if sumFieldLengths == 0 {
		return 0
	}
	return collectionTermFreq / sumFieldLengths
}

// IndriScore uses two-stage smoothing: Dirichlet with Mu then linear
// interpolation with Lambda.
func (m RetrievalModel) IndriScore(termFreq, docLength, pmle float64) float64 {
	return (1-m.Lambda)*(termFreq+m.Mu*pmle)/(docLength+m.Mu) + m.Lambda*pmle
}
