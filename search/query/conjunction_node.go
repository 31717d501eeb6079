package query

// ConjunctionCursor matches documents every child matches. Lagging children
// leapfrog to the largest current doc id.
type ConjunctionCursor struct {
	children []DocCursor
	cached   bool
	hasMatch bool
	match    uint64
}

func NewConjunctionCursor(children []DocCursor) *ConjunctionCursor {
	return &ConjunctionCursor{children: children}
}

func (c *ConjunctionCursor) HasMatch() bool {
	if c.cached {
		return c.hasMatch
	}

	c.cached = true
	c.hasMatch = false

	if len(c.children) == 0 {
		return false
	}

	for {
		maxDocId := uint64(0)
		for _, child := range c.children {
			if !child.HasMatch() {
				return false
			}
			maxDocId = max(maxDocId, child.Match())
		}

		allAtMaxDocId := true
		for _, child := range c.children {
			if child.Match() < maxDocId {
				child.AdvancePast(maxDocId - 1)
				allAtMaxDocId = false
			}
		}

		if allAtMaxDocId {
			c.hasMatch = true
			c.match = maxDocId
			return true
		}
	}
}

func (c *ConjunctionCursor) Match() uint64 {
	return c.match
}

func (c *ConjunctionCursor) AdvancePast(docId uint64) {
	for _, child := range c.children {
		child.AdvancePast(docId)
	}
	c.cached = false
}
