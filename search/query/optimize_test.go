package query

import (
	"testing"

	"github.com/larose/qryeval/search/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bodyTerm(text string) *TermNode {
	return &TermNode{Field: "body", Term: text}
}

func TestOptimizeRemovesEmptyOperators(t *testing.T) {
	assert.Nil(t, Optimize(&AndNode{}))
	assert.Nil(t, Optimize(&AndNode{Children: []Node{&ScoreNode{Arg: &SynNode{}}}}))
}

func TestOptimizeCollapsesSingleArgument(t *testing.T) {
	optimized := Optimize(&AndNode{Children: []Node{
		&ScoreNode{Arg: &SynNode{Children: []Node{bodyTerm("a")}}},
	}})

	assert.Equal(t, &ScoreNode{Arg: bodyTerm("a")}, optimized)
}

func TestOptimizeDropsWeightOfRemovedArgument(t *testing.T) {
	optimized := Optimize(&WandNode{
		Children: []Node{
			&ScoreNode{Arg: &SynNode{}},
			&ScoreNode{Arg: bodyTerm("a")},
			&ScoreNode{Arg: bodyTerm("b")},
		},
		Weights: []float64{0.2, 0.3, 0.5},
	})

	assert.Equal(t, &WandNode{
		Children: []Node{&ScoreNode{Arg: bodyTerm("a")}, &ScoreNode{Arg: bodyTerm("b")}},
		Weights:  []float64{0.3, 0.5},
	}, optimized)
}

func TestOptimizeDoesNotMutate(t *testing.T) {
	original := &OrNode{Children: []Node{
		&OrNode{Children: []Node{&ScoreNode{Arg: bodyTerm("a")}}},
		&ScoreNode{Arg: bodyTerm("b")},
	}}
	text := original.String()

	optimized := Optimize(original)

	assert.Equal(t, text, original.String())
	assert.Equal(t, "#or(a.body b.body)", optimized.String())
	assert.IsType(t, &OrNode{}, original.Children[0])
}

func TestOptimizeKeepsWeightedQueryValid(t *testing.T) {
	model := NewModel(Indri)

	root, err := Parse("#wand(1 a 2 #and() 3 #wsum(1 #syn() 1 b))", model, index.NewKeywordAnalyzer(), nil)
	require.NoError(t, err)

	optimized := Optimize(root)
	require.NotNil(t, optimized)

	assert.Equal(t, "#wand(1 a.body 3 b.body)", optimized.String())
	assert.NoError(t, Validate(optimized, model))
}
