package query

import (
	"cmp"
	"slices"
)

type DocScore struct {
	DocId uint64
	Score float64
}

// Ranks before orders by score descending then doc id ascending.
func (d DocScore) RanksBefore(other DocScore) bool {
	return compareRank(d, other) < 0
}

func compareRank(a, b DocScore) int {
	if c := cmp.Compare(b.Score, a.Score); c != 0 {
		return c
	}
	return cmp.Compare(a.DocId, b.DocId)
}

// ScoreList collects every match of one query. It is a Collector.
type ScoreList struct {
	scores []DocScore
}

func NewScoreList() *ScoreList {
	return &ScoreList{scores: make([]DocScore, 0, 100)}
}

func (l *ScoreList) Collect(docId uint64, score float64) {
	l.scores = append(l.scores, DocScore{DocId: docId, Score: score})
}

func (l *ScoreList) Add(docId uint64, score float64) {
	l.Collect(docId, score)
}

func (l *ScoreList) Size() int {
	return len(l.scores)
}

func (l *ScoreList) DocIdAt(rank int) uint64 {
	return l.scores[rank].DocId
}

func (l *ScoreList) ScoreAt(rank int) float64 {
	return l.scores[rank].Score
}

func (l *ScoreList) Entries() []DocScore {
	return l.scores
}

// Sort orders by score descending, ties by doc id ascending.
func (l *ScoreList) Sort() {
	slices.SortStableFunc(l.scores, compareRank)
}

// Truncate keeps the first n entries.
func (l *ScoreList) Truncate(n int) {
	if n < len(l.scores) {
		l.scores = l.scores[:n]
	}
}
