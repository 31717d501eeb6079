package query

import "github.com/larose/qryeval/search/index"

// Index is the read surface evaluation needs. Implementations must be safe
// for concurrent reads. index.IndexReader and index.MemoryIndex satisfy it.
type Index interface {
	// Postings returns an empty list for an absent term.
	Postings(field, term string) (*index.PostingList, error)
	FieldLength(field string, docId uint64) (int, error)
	SumFieldLengths(field string) (uint64, error)
	DocCount(field string) (int, error)
	NumDocs() (uint64, error)
	CollectionTermFreq(field, term string) (uint64, error)
	DocFreq(field, term string) (int, error)
	// TermVector returns nil when the document has no value for field.
	TermVector(field string, docId uint64) ([]index.TermFreq, error)
	ExternalId(docId uint64) (string, error)
	// InternalId fails with index.ErrNotFound.
	InternalId(externalId string) (uint64, error)
}

var (
	_ Index = (*index.IndexReader)(nil)
	_ Index = (*index.MemoryIndex)(nil)
)
