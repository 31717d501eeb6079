package query

// DisjunctionCursor matches the smallest doc id any child matches.
type DisjunctionCursor struct {
	children []DocCursor
	cached   bool
	hasMatch bool
	match    uint64
}

func NewDisjunctionCursor(children []DocCursor) *DisjunctionCursor {
	return &DisjunctionCursor{children: children}
}

func (d *DisjunctionCursor) HasMatch() bool {
	if d.cached {
		return d.hasMatch
	}

	d.cached = true
	d.hasMatch = false

	for _, child := range d.children {
		if !child.HasMatch() {
			continue
		}

		if !d.hasMatch || child.Match() < d.match {
			d.match = child.Match()
			d.hasMatch = true
		}
	}

	return d.hasMatch
}

func (d *DisjunctionCursor) Match() uint64 {
	return d.match
}

func (d *DisjunctionCursor) AdvancePast(docId uint64) {
	for _, child := range d.children {
		child.AdvancePast(docId)
	}
	d.cached = false
}
