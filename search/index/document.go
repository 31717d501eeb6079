package index

type FieldType int

// Local to a segment. Global ids are built with ToGlobalDocId.
type DocumentId uint32

const (
	TextFieldType FieldType = iota
	ByteFieldType
)

// ExternalIdField holds the collection-assigned document name. It is indexed
// as a single term so it can be looked up, and stored so it can be returned.
const ExternalIdField = "externalId"

type Field struct {
	FieldType FieldType
	Name      string
	Value     []byte
}

type Document []Field

func (doc Document) ExternalId() (string, bool) {
	for _, field := range doc {
		if field.Name == ExternalIdField {
			return string(field.Value), true
		}
	}

	return "", false
}

// Posting is one document entry of a materialized postings list.
type Posting struct {
	DocId     uint64
	Positions []uint32
}

func (p *Posting) TermFreq() int {
	return len(p.Positions)
}

// PostingList holds every live document of one (field, term) pair in
// ascending global doc id order.
type PostingList struct {
	Field         string
	Term          string
	DocFreq       int
	TotalTermFreq uint64
	Postings      []Posting
}

func NewPostingList(field, term string) *PostingList {
	return &PostingList{Field: field, Term: term}
}

// Append keeps DocFreq and TotalTermFreq in sync. Callers append in
// ascending doc id order.
func (l *PostingList) Append(docId uint64, positions []uint32) {
	l.Postings = append(l.Postings, Posting{DocId: docId, Positions: positions})
	l.DocFreq++
	l.TotalTermFreq += uint64(len(positions))
}

// TermFreq is one entry of a document's term vector.
type TermFreq struct {
	Term string
	Freq uint32
}
