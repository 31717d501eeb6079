package query

// Heap implements container/heap over DocScore.
type Heap struct {
	items    []DocScore
	lessFunc func(a, b DocScore) bool
}

// NewMinHeap puts the worst ranked document at the root.
func NewMinHeap() *Heap {
	return &Heap{
		lessFunc: func(a, b DocScore) bool {
			return b.RanksBefore(a)
		},
	}
}

func (h *Heap) Len() int { return len(h.items) }

func (h Heap) Less(i, j int) bool {
	return h.lessFunc(h.items[i], h.items[j])
}

func (h Heap) Swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
}

func (h *Heap) Push(item any) {
	h.items = append(h.items, item.(DocScore))
}

func (h *Heap) Pop() any {
	old := h.items
	n := len(old)
	x := old[n-1]
	h.items = old[0 : n-1]
	return x
}
