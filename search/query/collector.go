package query

import (
	"container/heap"
)

type Collector interface {
	Collect(docId uint64, score float64)
}

// TopNCollector keeps the n best documents in ScoreList order.
type TopNCollector struct {
	topN    int
	minHeap *Heap
}

func NewTopNCollector(topN int) *TopNCollector {
	return &TopNCollector{
		topN:    topN,
		minHeap: NewMinHeap(),
	}
}

func (c *TopNCollector) Collect(docId uint64, score float64) {
	if c.topN <= 0 {
		return
	}

	docScore := DocScore{DocId: docId, Score: score}

	if c.minHeap.Len() < c.topN {
		heap.Push(c.minHeap, docScore)
		return
	}

	// The root is the worst document kept
	if docScore.RanksBefore(c.minHeap.items[0]) {
		c.minHeap.items[0] = docScore
		heap.Fix(c.minHeap, 0)
	}
}

// Get empties the collector, best document first.
func (c *TopNCollector) Get() []DocScore {
	results := make([]DocScore, c.minHeap.Len())

	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(c.minHeap).(DocScore)
	}

	return results
}

// ScoreList empties the collector into a sorted ScoreList.
func (c *TopNCollector) ScoreList() *ScoreList {
	return &ScoreList{scores: c.Get()}
}
