package query

import "github.com/larose/qryeval/search/index"

// DocCursor walks matching documents in increasing doc id order. It never
// goes back.
//
// HasMatch is cached until the next AdvancePast. Match is only valid after
// HasMatch returned true.
type DocCursor interface {
	HasMatch() bool
	Match() uint64
	// AdvancePast moves to the first document strictly greater than docId.
	AdvancePast(docId uint64)
}

// matchesAt reports whether cursor sits on docId.
func matchesAt(cursor DocCursor, docId uint64) bool {
	return cursor.HasMatch() && cursor.Match() == docId
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// InvertedCursor
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// InvertedCursor walks a materialized postings list.
type InvertedCursor struct {
	list     *index.PostingList
	position int
}

func NewInvertedCursor(list *index.PostingList) *InvertedCursor {
	return &InvertedCursor{list: list}
}

func (c *InvertedCursor) HasMatch() bool {
	return c.position < len(c.list.Postings)
}

func (c *InvertedCursor) Match() uint64 {
	return c.list.Postings[c.position].DocId
}

func (c *InvertedCursor) AdvancePast(docId uint64) {
	for c.position < len(c.list.Postings) && c.list.Postings[c.position].DocId <= docId {
		c.position++
	}
}

// Posting is only valid after HasMatch returned true.
func (c *InvertedCursor) Posting() *index.Posting {
	return &c.list.Postings[c.position]
}

func (c *InvertedCursor) List() *index.PostingList {
	return c.list
}
