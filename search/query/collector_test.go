package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTopNCollector(t *testing.T) {
	collector := NewTopNCollector(3)

	collector.Collect(1, 0.5)
	collector.Collect(2, 0.9)
	collector.Collect(3, 0.1)
	collector.Collect(4, 0.9)
	collector.Collect(5, 0.7)
	collector.Collect(0, 0.5)

	assert.Equal(t, []DocScore{
		{DocId: 2, Score: 0.9},
		{DocId: 4, Score: 0.9},
		{DocId: 5, Score: 0.7},
	}, collector.Get())
}

func TestTopNCollectorTiesKeepSmallestDocIds(t *testing.T) {
	collector := NewTopNCollector(2)

	collector.Collect(7, 1)
	collector.Collect(3, 1)
	collector.Collect(5, 1)

	assert.Equal(t, []DocScore{{DocId: 3, Score: 1}, {DocId: 5, Score: 1}}, collector.Get())
}

func TestTopNCollectorZero(t *testing.T) {
	collector := NewTopNCollector(0)
	collector.Collect(1, 1)

	assert.Empty(t, collector.Get())
}

func TestScoreList(t *testing.T) {
	scores := NewScoreList()
	scores.Add(4, 0.2)
	scores.Add(1, 0.7)
	scores.Add(3, 0.7)
	scores.Add(2, 0.9)

	scores.Sort()

	assert.Equal(t, 4, scores.Size())
	assert.Equal(t, uint64(2), scores.DocIdAt(0))
	assert.Equal(t, uint64(1), scores.DocIdAt(1))
	assert.Equal(t, uint64(3), scores.DocIdAt(2))
	assert.Equal(t, 0.2, scores.ScoreAt(3))

	scores.Truncate(2)
	assert.Equal(t, []DocScore{{DocId: 2, Score: 0.9}, {DocId: 1, Score: 0.7}}, scores.Entries())

	scores.Truncate(10)
	assert.Equal(t, 2, scores.Size())
}
