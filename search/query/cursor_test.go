package query

import (
	"testing"

	"github.com/larose/qryeval/search/index"
	"github.com/stretchr/testify/assert"
)

func listOf(docIds ...uint64) *index.PostingList {
	list := index.NewPostingList("body", "t")
	for _, docId := range docIds {
		list.Append(docId, []uint32{0})
	}
	return list
}

func drain(cursor DocCursor) []uint64 {
	docIds := make([]uint64, 0)
	for cursor.HasMatch() {
		docId := cursor.Match()
		docIds = append(docIds, docId)
		cursor.AdvancePast(docId)
	}
	return docIds
}

func TestInvertedCursor(t *testing.T) {
	cursor := NewInvertedCursor(listOf(2, 4, 9))

	assert.True(t, cursor.HasMatch())
	assert.Equal(t, uint64(2), cursor.Match())

	cursor.AdvancePast(4)
	assert.Equal(t, uint64(9), cursor.Match())

	cursor.AdvancePast(9)
	assert.False(t, cursor.HasMatch())
}

func TestConjunctionCursor(t *testing.T) {
	cursor := NewConjunctionCursor([]DocCursor{
		NewInvertedCursor(listOf(1, 3, 5)),
		NewInvertedCursor(listOf(3, 5, 7)),
	})

	assert.Equal(t, []uint64{3, 5}, drain(cursor))
}

func TestConjunctionCursorLeapfrog(t *testing.T) {
	cursor := NewConjunctionCursor([]DocCursor{
		NewInvertedCursor(listOf(1, 2, 3, 4, 10, 20)),
		NewInvertedCursor(listOf(4, 20, 30)),
		NewInvertedCursor(listOf(0, 4, 5, 20)),
	})

	assert.Equal(t, []uint64{4, 20}, drain(cursor))
}

func TestConjunctionCursorEmpty(t *testing.T) {
	assert.Empty(t, drain(NewConjunctionCursor(nil)))

	cursor := NewConjunctionCursor([]DocCursor{
		NewInvertedCursor(listOf(1, 2)),
		NewInvertedCursor(listOf()),
	})
	assert.Empty(t, drain(cursor))
}

func TestDisjunctionCursor(t *testing.T) {
	cursor := NewDisjunctionCursor([]DocCursor{
		NewInvertedCursor(listOf(1, 3, 5)),
		NewInvertedCursor(listOf(3, 5, 7)),
		NewInvertedCursor(listOf()),
	})

	assert.Equal(t, []uint64{1, 3, 5, 7}, drain(cursor))
}

func TestCursorHasMatchIsCached(t *testing.T) {
	child := NewInvertedCursor(listOf(1, 3))
	cursor := NewDisjunctionCursor([]DocCursor{child})

	assert.True(t, cursor.HasMatch())
	child.AdvancePast(1)

	// Unchanged until the cursor itself advances
	assert.Equal(t, uint64(1), cursor.Match())
}

func TestSegmentDocIdsAscend(t *testing.T) {
	first := index.ToGlobalDocId(7, 3)
	second := index.ToGlobalDocId(9, 0)

	cursor := NewDisjunctionCursor([]DocCursor{
		NewInvertedCursor(listOf(second)),
		NewInvertedCursor(listOf(first)),
	})

	assert.Equal(t, []uint64{first, second}, drain(cursor))
}
