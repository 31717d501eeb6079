package feedback

import (
	"math"
	"testing"

	"github.com/larose/qryeval/search/index"
	"github.com/larose/qryeval/search/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Body length 9 in total.
func newFeedbackIndex(t *testing.T) *index.MemoryIndex {
	ix := index.NewMemoryIndex()

	bodies := map[string][]string{
		"d0": {"apple", "pie", "apple"},
		"d1": {"apple", "tart"},
		"d2": {"pie", "crust"},
		"d3": {"x.y", "stuff"},
	}
	for _, id := range []string{"d0", "d1", "d2", "d3"} {
		_, err := ix.AddDocument(id, map[string][]string{"body": bodies[id]})
		require.NoError(t, err)
	}

	return ix
}

func ranking(entries ...query.DocScore) *query.ScoreList {
	scores := query.NewScoreList()
	for _, entry := range entries {
		scores.Add(entry.DocId, entry.Score)
	}
	scores.Sort()
	return scores
}

func termsOf(terms []Term) []string {
	texts := make([]string, len(terms))
	for i, term := range terms {
		texts[i] = term.Term
	}
	return texts
}

func TestExpand(t *testing.T) {
	ix := newFeedbackIndex(t)
	params := Params{Docs: 2, Terms: 10, Mu: 0, OrigWeight: 0.5}

	terms, err := Expand(ix, ranking(query.DocScore{DocId: 0, Score: 0.5}, query.DocScore{DocId: 1, Score: 0.25}), params)
	require.NoError(t, err)

	require.Equal(t, []string{"apple", "tart", "pie"}, termsOf(terms))
	assert.InDelta(t, (2.0/3*0.5+1.0/2*0.25)*math.Log(3), terms[0].Score, 1e-12)
	assert.InDelta(t, 1.0/2*0.25*math.Log(9), terms[1].Score, 1e-12)
	assert.InDelta(t, 1.0/3*0.5*math.Log(4.5), terms[2].Score, 1e-12)
}

func TestExpandKeepsBestTerms(t *testing.T) {
	ix := newFeedbackIndex(t)
	params := Params{Docs: 10, Terms: 2, Mu: 0}

	terms, err := Expand(ix, ranking(query.DocScore{DocId: 0, Score: 0.5}, query.DocScore{DocId: 1, Score: 0.25}), params)
	require.NoError(t, err)

	assert.Equal(t, []string{"apple", "tart"}, termsOf(terms))
}

func TestExpandSmoothsMissingTerms(t *testing.T) {
	ix := newFeedbackIndex(t)
	params := Params{Docs: 2, Terms: 10, Mu: 100}

	terms, err := Expand(ix, ranking(query.DocScore{DocId: 0, Score: 0.5}, query.DocScore{DocId: 1, Score: 0.25}), params)
	require.NoError(t, err)

	pmle := 2.0 / 9
	expected := (1+100*pmle)/(3+100)*0.5*math.Log(1/pmle) + (100*pmle)/(2+100)*0.25*math.Log(1/pmle)

	for _, term := range terms {
		if term.Term == "pie" {
			assert.InDelta(t, expected, term.Score, 1e-12)
			return
		}
	}
	t.Fatal("pie is not an expansion term")
}

func TestExpandSkipsQualifiedTerms(t *testing.T) {
	ix := newFeedbackIndex(t)

	terms, err := Expand(ix, ranking(query.DocScore{DocId: 3, Score: 1}), Params{Docs: 1, Terms: 10})
	require.NoError(t, err)

	assert.Equal(t, []string{"stuff"}, termsOf(terms))
}

func TestExpandIsDeterministic(t *testing.T) {
	ix := index.NewMemoryIndex()
	_, err := ix.AddDocument("d0", map[string][]string{"body": {"n", "m"}})
	require.NoError(t, err)

	params := Params{Docs: 1, Terms: 10}

	first, err := Expand(ix, ranking(query.DocScore{DocId: 0, Score: 1}), params)
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "n"}, termsOf(first))

	for range 10 {
		again, err := Expand(ix, ranking(query.DocScore{DocId: 0, Score: 1}), params)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestExpandEmptyRanking(t *testing.T) {
	terms, err := Expand(newFeedbackIndex(t), query.NewScoreList(), DefaultParams())
	require.NoError(t, err)
	assert.Empty(t, terms)
	assert.Nil(t, Query(terms))
}

func TestCombine(t *testing.T) {
	expansion := Query([]Term{{Term: "apple", Score: 0.4}, {Term: "tart", Score: 0.2}})
	require.NotNil(t, expansion)

	assert.Equal(t, "#wand(0.4 apple.body 0.2 tart.body)", expansion.String())

	original := &query.AndNode{Children: []query.Node{
		&query.ScoreNode{Arg: &query.TermNode{Field: "body", Term: "pie"}},
	}}

	combined := Combine(original, expansion, 0.75)
	assert.Equal(t, "#wand(0.75 #and(pie.body) 0.25 #wand(0.4 apple.body 0.2 tart.body))", combined.String())
	assert.NoError(t, query.Validate(combined, query.NewModel(query.Indri)))
}

func TestCombineEdgeWeights(t *testing.T) {
	expansion := Query([]Term{{Term: "apple", Score: 0.4}})
	original := &query.TermNode{Field: "body", Term: "pie"}

	assert.Same(t, expansion, Combine(original, expansion, 0))
	assert.Equal(t, "pie.body", Combine(original, expansion, 1).String())
	assert.Equal(t, query.OpScore, Combine(original, expansion, 1).Operator())
}

func TestQuerySkipsTermsWithoutScore(t *testing.T) {
	expansion := Query([]Term{{Term: "apple", Score: 0.4}, {Term: "pie", Score: 0}, {Term: "tart", Score: -1}})
	require.NotNil(t, expansion)

	assert.Equal(t, "#wand(0.4 apple.body)", expansion.String())
	assert.Nil(t, Query([]Term{{Term: "pie", Score: 0}}))
}
