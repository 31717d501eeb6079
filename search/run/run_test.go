package run

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/larose/qryeval/search/feedback"
	"github.com/larose/qryeval/search/index"
	"github.com/larose/qryeval/search/metrics"
	"github.com/larose/qryeval/search/query"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newRunIndex(t *testing.T) *index.MemoryIndex {
	ix := index.NewMemoryIndex()

	bodies := [][]string{
		{"apple", "pie", "recipe"},
		{"apple", "tart"},
		{"cherry", "pie"},
		{"car", "engine"},
	}
	for i, body := range bodies {
		_, err := ix.AddDocument("doc-"+string(rune('a'+i)), map[string][]string{"body": body})
		require.NoError(t, err)
	}

	return ix
}

func TestReadQueries(t *testing.T) {
	queries, err := ReadQueries(strings.NewReader("10:apple pie\n\n 11 :#and(a b)\n"))
	require.NoError(t, err)

	assert.Equal(t, []Query{{Id: "10", Text: "apple pie"}, {Id: "11", Text: "#and(a b)"}}, queries)

	_, err = ReadQueries(strings.NewReader("10 apple pie\n"))
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func TestReadRankings(t *testing.T) {
	ix := newRunIndex(t)

	rankings, err := ReadRankings(strings.NewReader(
		"7 Q0 doc-b 2 0.5 run\n"+
			"7 Q0 unknown 3 0.4 run\n"+
			"7 Q0 doc-a 1 0.9 run\n"+
			"8 Q0 doc-c 1 1.5 run\n",
	), ix, discard)
	require.NoError(t, err)

	require.Len(t, rankings, 2)
	assert.Equal(t, []query.DocScore{{DocId: 0, Score: 0.9}, {DocId: 1, Score: 0.5}}, rankings["7"].Entries())
	assert.Equal(t, []query.DocScore{{DocId: 2, Score: 1.5}}, rankings["8"].Entries())

	_, err = ReadRankings(strings.NewReader("7 Q0 doc-a\n"), ix, discard)
	assert.ErrorIs(t, err, ErrMalformedLine)
}

func TestWriteTrecResults(t *testing.T) {
	ix := newRunIndex(t)

	scores := query.NewScoreList()
	scores.Add(2, 0.25)
	scores.Add(0, 1.5)
	scores.Add(1, 0.75)
	scores.Sort()

	var buffer bytes.Buffer
	require.NoError(t, WriteTrecResults(&buffer, "3", scores, ix, "run-1", 2))

	assert.Equal(t, "3\tQ0\tdoc-a\t1\t1.5\trun-1\n3\tQ0\tdoc-b\t2\t0.75\trun-1\n", buffer.String())

	buffer.Reset()
	require.NoError(t, WriteTrecResults(&buffer, "4", query.NewScoreList(), ix, "run-1", 2))
	assert.Equal(t, "4\tQ0\tdummy\t1\t0\trun-1\n", buffer.String())
}

func TestWriteExpansion(t *testing.T) {
	var buffer bytes.Buffer

	expansion := &query.WandNode{
		Children: []query.Node{&query.ScoreNode{Arg: &query.TermNode{Field: "body", Term: "pie"}}},
		Weights:  []float64{0.5},
	}
	require.NoError(t, WriteExpansion(&buffer, "3", expansion))
	require.NoError(t, WriteExpansion(&buffer, "4", nil))

	assert.Equal(t, "3: #wand(0.5 pie.body)\n4: #wand()\n", buffer.String())
}

func TestRunner(t *testing.T) {
	registry := prometheus.NewRegistry()

	runner := &Runner{
		Index:      newRunIndex(t),
		Analyzer:   index.NewKeywordAnalyzer(),
		Model:      query.NewModel(query.RankedBoolean),
		MaxResults: 2,
		Workers:    2,
		Metrics:    metrics.New(registry),
		Logger:     discard,
	}

	results, err := runner.Run(context.Background(), []Query{
		{Id: "1", Text: "apple pie"},
		{Id: "2", Text: "#and(apple"},
		{Id: "3", Text: "#sum(apple)"},
		{Id: "4", Text: "zebra"},
	})
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, "1", results[0].QueryId)
	assert.NoError(t, results[0].Err)
	// doc-a matches both terms, doc-b and doc-c one each, doc-c is cut.
	assert.Equal(t, []query.DocScore{{DocId: 0, Score: 1}, {DocId: 1, Score: 1}}, results[0].Scores.Entries())

	assert.ErrorIs(t, results[1].Err, query.ErrSyntax)
	assert.Nil(t, results[1].Scores)
	assert.ErrorIs(t, results[2].Err, query.ErrModelMismatch)

	assert.Equal(t, 0, results[3].Scores.Size())
}

func TestRunnerWithFeedback(t *testing.T) {
	ix := newRunIndex(t)

	runner := &Runner{
		Index:    ix,
		Analyzer: index.NewKeywordAnalyzer(),
		Model:    query.NewModel(query.Indri),
		Feedback: &Feedback{Params: feedback.DefaultParams()},
		Workers:  1,
		Logger:   discard,
	}

	results, err := runner.Run(context.Background(), []Query{{Id: "1", Text: "tart"}})
	require.NoError(t, err)
	require.Len(t, results, 1)

	// doc-b holds apple and tart, apple brings in doc-a.
	require.NotNil(t, results[0].Expansion)
	assert.Len(t, results[0].Expansion.Children, 2)
	require.Equal(t, 2, results[0].Scores.Size())
	assert.Equal(t, uint64(1), results[0].Scores.DocIdAt(0))
	assert.Equal(t, uint64(0), results[0].Scores.DocIdAt(1))
}

func TestRunnerWithRankings(t *testing.T) {
	ix := newRunIndex(t)

	ranking := query.NewScoreList()
	ranking.Add(2, 1)

	runner := &Runner{
		Index:    ix,
		Analyzer: index.NewKeywordAnalyzer(),
		Model:    query.NewModel(query.Indri),
		Feedback: &Feedback{Params: feedback.DefaultParams(), Rankings: map[string]*query.ScoreList{"1": ranking}},
		Workers:  1,
		Logger:   discard,
	}

	results, err := runner.Run(context.Background(), []Query{{Id: "1", Text: "apple"}, {Id: "2", Text: "apple"}})
	require.NoError(t, err)

	// Expansion comes from doc-c only.
	require.NotNil(t, results[0].Expansion)
	assert.Contains(t, results[0].Expansion.String(), "cherry.body")
	assert.Nil(t, results[1].Expansion)
}

func TestRunnerCanceled(t *testing.T) {
	runner := &Runner{
		Index:    newRunIndex(t),
		Analyzer: index.NewKeywordAnalyzer(),
		Model:    query.NewModel(query.BM25),
		Workers:  1,
		Logger:   discard,
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := runner.Run(ctx, []Query{{Id: "1", Text: "apple"}})
	assert.ErrorIs(t, err, context.Canceled)
}
