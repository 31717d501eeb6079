package query

import (
	"fmt"
	"math"
	"testing"

	"github.com/larose/qryeval/search/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestIndex(t *testing.T, bodies ...[]string) *index.MemoryIndex {
	ix := index.NewMemoryIndex()
	for i, body := range bodies {
		_, err := ix.AddDocument(fmt.Sprintf("d%d", i), map[string][]string{"body": body})
		require.NoError(t, err)
	}
	return ix
}

// evaluate also checks that documents come in strictly increasing order.
func evaluate(t *testing.T, root Node, model RetrievalModel, ix Index) []DocScore {
	scorer, err := Compile(root, model, ix)
	require.NoError(t, err)

	scores := NewScoreList()
	require.NoError(t, Evaluate(scorer, scores))

	for i := 1; i < scores.Size(); i++ {
		require.Less(t, scores.DocIdAt(i-1), scores.DocIdAt(i))
	}

	return scores.Entries()
}

func docIdsOf(scores []DocScore) []uint64 {
	docIds := make([]uint64, len(scores))
	for i, score := range scores {
		docIds[i] = score.DocId
	}
	return docIds
}

func scored(terms ...string) []Node {
	nodes := make([]Node, len(terms))
	for i, text := range terms {
		nodes[i] = &ScoreNode{Arg: bodyTerm(text)}
	}
	return nodes
}

// a is in {1, 3, 5}, b is in {3, 5, 7}.
func newBooleanIndex(t *testing.T) *index.MemoryIndex {
	return newTestIndex(t,
		[]string{"z"},
		[]string{"a", "z"},
		[]string{"z"},
		[]string{"a", "b", "z"},
		[]string{"z"},
		[]string{"a", "b", "z"},
		[]string{"z"},
		[]string{"b", "z"},
	)
}

func TestUnrankedBooleanAnd(t *testing.T) {
	scores := evaluate(t, &AndNode{Children: scored("a", "b")}, NewModel(UnrankedBoolean), newBooleanIndex(t))

	assert.Equal(t, []DocScore{{DocId: 3, Score: 1}, {DocId: 5, Score: 1}}, scores)
}

func TestUnrankedBooleanOr(t *testing.T) {
	scores := evaluate(t, &OrNode{Children: scored("a", "b")}, NewModel(UnrankedBoolean), newBooleanIndex(t))

	assert.Equal(t, []uint64{1, 3, 5, 7}, docIdsOf(scores))
	for _, score := range scores {
		assert.Equal(t, 1.0, score.Score)
	}
}

func TestRankedBoolean(t *testing.T) {
	ix := newTestIndex(t,
		[]string{"a", "a", "b"},
		[]string{"a", "b", "b", "b"},
		[]string{"a"},
	)
	model := NewModel(RankedBoolean)

	assert.Equal(t,
		[]DocScore{{DocId: 0, Score: 1}, {DocId: 1, Score: 1}},
		evaluate(t, &AndNode{Children: scored("a", "b")}, model, ix),
	)

	assert.Equal(t,
		[]DocScore{{DocId: 0, Score: 2}, {DocId: 1, Score: 3}, {DocId: 2, Score: 1}},
		evaluate(t, &OrNode{Children: scored("a", "b")}, model, ix),
	)
}

// Six documents, body length 12 in total.
func newScoringIndex(t *testing.T) *index.MemoryIndex {
	return newTestIndex(t,
		[]string{"a", "x"},
		[]string{"b", "x", "x"},
		[]string{"a", "b"},
		[]string{"y"},
		[]string{"y", "y"},
		[]string{"x", "y"},
	)
}

func TestBM25Sum(t *testing.T) {
	model := NewModel(BM25)
	scores := evaluate(t, &SumNode{Children: scored("a", "b")}, model, newScoringIndex(t))

	require.Equal(t, []uint64{0, 1, 2}, docIdsOf(scores))

	// Both terms have df 2 over 6 documents, average length 2.
	bm25 := func(termFreq, docLength float64) float64 {
		return model.BM25Score(termFreq, 2, 6, docLength, 2)
	}

	assert.InDelta(t, bm25(1, 2), scores[0].Score, 1e-12)
	assert.InDelta(t, bm25(1, 3), scores[1].Score, 1e-12)
	assert.InDelta(t, bm25(1, 2)+bm25(1, 2), scores[2].Score, 1e-12)
	assert.Greater(t, scores[2].Score, scores[0].Score)
}

func TestIndriAndDefaultScore(t *testing.T) {
	model := NewModel(Indri)
	scores := evaluate(t, &AndNode{Children: scored("a", "b")}, model, newScoringIndex(t))

	require.Equal(t, []uint64{0, 1, 2}, docIdsOf(scores))

	pmle := Pmle(2, 12)
	indri := func(termFreq, docLength float64) float64 {
		return model.IndriScore(termFreq, docLength, pmle)
	}

	// d0 only has a, b gets its default score.
	assert.Greater(t, scores[0].Score, 0.0)
	assert.InDelta(t, math.Sqrt(indri(1, 2)*indri(0, 2)), scores[0].Score, 1e-12)
	assert.InDelta(t, math.Sqrt(indri(0, 3)*indri(1, 3)), scores[1].Score, 1e-12)
	assert.InDelta(t, indri(1, 2), scores[2].Score, 1e-12)
}

func TestIndriWeightedOperators(t *testing.T) {
	model := NewModel(Indri)
	ix := newScoringIndex(t)

	pmle := Pmle(2, 12)
	indri := func(termFreq, docLength float64) float64 {
		return model.IndriScore(termFreq, docLength, pmle)
	}

	wand := evaluate(t, &WandNode{Children: scored("a", "b"), Weights: []float64{1, 3}}, model, ix)
	require.Len(t, wand, 3)
	assert.InDelta(t, math.Pow(indri(1, 2), 0.25)*math.Pow(indri(0, 2), 0.75), wand[0].Score, 1e-12)

	wsum := evaluate(t, &WsumNode{Children: scored("a", "b"), Weights: []float64{1, 3}}, model, ix)
	require.Len(t, wsum, 3)
	assert.InDelta(t, 0.25*indri(1, 2)+0.75*indri(0, 2), wsum[0].Score, 1e-12)
}

func TestCompileIndexedRoot(t *testing.T) {
	scores := evaluate(t, &SynNode{Children: []Node{bodyTerm("a"), bodyTerm("y")}}, NewModel(RankedBoolean), newScoringIndex(t))

	assert.Equal(t, []DocScore{
		{DocId: 0, Score: 1},
		{DocId: 2, Score: 1},
		{DocId: 3, Score: 1},
		{DocId: 4, Score: 2},
		{DocId: 5, Score: 1},
	}, scores)
}

func TestCompileProximity(t *testing.T) {
	ix := newTestIndex(t,
		[]string{"a", "b", "c"},
		[]string{"b", "a", "c"},
		[]string{"a", "c", "b"},
	)

	near := evaluate(t, &OrNode{Children: []Node{&ScoreNode{Arg: &NearNode{
		Distance: 1,
		Children: []Node{bodyTerm("a"), bodyTerm("b")},
	}}}}, NewModel(RankedBoolean), ix)
	assert.Equal(t, []DocScore{{DocId: 0, Score: 1}}, near)

	window := evaluate(t, &SumNode{Children: []Node{&ScoreNode{Arg: &WindowNode{
		Distance: 2,
		Children: []Node{bodyTerm("a"), bodyTerm("b")},
	}}}}, NewModel(BM25), ix)
	assert.Equal(t, []uint64{0, 1}, docIdsOf(window))
}

func TestCompileMissingTerm(t *testing.T) {
	scores := evaluate(t, &SumNode{Children: scored("missing")}, NewModel(BM25), newScoringIndex(t))
	assert.Empty(t, scores)

	scores = evaluate(t, &AndNode{}, NewModel(Indri), newScoringIndex(t))
	assert.Empty(t, scores)
}

func TestCompileModelMismatch(t *testing.T) {
	_, err := Compile(&SumNode{Children: scored("a")}, NewModel(Indri), newScoringIndex(t))
	assert.ErrorIs(t, err, ErrModelMismatch)

	_, err = Compile(&SynNode{Children: []Node{&ScoreNode{Arg: bodyTerm("a")}}}, NewModel(Indri), newScoringIndex(t))
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestRoundTrip(t *testing.T) {
	ix := newScoringIndex(t)
	analyzer := index.NewKeywordAnalyzer()

	testCases := []struct {
		model RetrievalModel
		text  string
	}{
		{NewModel(Indri), "#and(#and(a) #syn(b #syn(x)) #wand(1 y 2 #near/1(a x)))"},
		{NewModel(Indri), "#wsum(1 #and(a y) 3 #window/3(x y))"},
		{NewModel(BM25), "#sum(a #syn(b) #window/2(x y))"},
		{NewModel(RankedBoolean), "#and(#or(x) #or(y #near/1(x y)))"},
		{NewModel(UnrankedBoolean), "a #syn(y)"},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			original, err := Parse(tc.text, tc.model, analyzer, nil)
			require.NoError(t, err)

			optimized := Optimize(original)
			require.NotNil(t, optimized)

			reparsed, err := Parse(optimized.String(), tc.model, AnalyzedTerms, nil)
			require.NoError(t, err)

			assertSameScores(t, evaluate(t, original, tc.model, ix), evaluate(t, reparsed, tc.model, ix))
		})
	}
}

func assertSameScores(t *testing.T, expected, actual []DocScore) {
	require.Equal(t, docIdsOf(expected), docIdsOf(actual))
	for i := range expected {
		assert.InDelta(t, expected[i].Score, actual[i].Score, 1e-12)
	}
}

func TestRoundTripStemmed(t *testing.T) {
	english := index.NewEnglishAnalyzer()

	ix := newTestIndex(t,
		english.Analyze("they agreed on dogs"),
		english.Analyze("dogs bark"),
		english.Analyze("agreed"),
	)

	testCases := []struct {
		model RetrievalModel
		text  string
	}{
		{NewModel(Indri), "agreed #near/1(agreed dogs)"},
		{NewModel(BM25), "agreed dogs"},
		{NewModel(UnrankedBoolean), "#and(agreed)"},
	}

	for _, tc := range testCases {
		t.Run(tc.text, func(t *testing.T) {
			original, err := Parse(tc.text, tc.model, english, nil)
			require.NoError(t, err)

			expected := evaluate(t, original, tc.model, ix)
			require.NotEmpty(t, expected)

			reparsed, err := Parse(Optimize(original).String(), tc.model, AnalyzedTerms, nil)
			require.NoError(t, err)

			assertSameScores(t, expected, evaluate(t, reparsed, tc.model, ix))
		})
	}
}
