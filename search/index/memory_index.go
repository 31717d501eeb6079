package index

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

type memoryDoc struct {
	externalId string
	// terms[field] in position order
	terms map[string][]string
}

// MemoryIndex holds pre-analyzed documents in memory. Doc ids are assigned
// in insertion order starting at 0. It has the same read surface as
// IndexReader and is safe for concurrent use.
type MemoryIndex struct {
	mu         sync.RWMutex
	docs       []memoryDoc
	internalId map[string]uint64
}

func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{
		internalId: make(map[string]uint64),
	}
}

// AddDocument stores fields as given: each term is at its slice position.
func (m *MemoryIndex) AddDocument(externalId string, fields map[string][]string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.internalId[externalId]; exists {
		return 0, fmt.Errorf("duplicate external id %q", externalId)
	}

	docId := uint64(len(m.docs))
	terms := make(map[string][]string, len(fields))
	for field, fieldTerms := range fields {
		terms[field] = slices.Clone(fieldTerms)
	}

	m.docs = append(m.docs, memoryDoc{externalId: externalId, terms: terms})
	m.internalId[externalId] = docId

	return docId, nil
}

func (m *MemoryIndex) doc(docId uint64) (*memoryDoc, error) {
	if docId >= uint64(len(m.docs)) {
		return nil, fmt.Errorf("document %d: %w", docId, ErrNotFound)
	}

	return &m.docs[docId], nil
}

func (m *MemoryIndex) Postings(field, term string) (*PostingList, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	postings := NewPostingList(field, term)

	for docId, doc := range m.docs {
		var positions []uint32
		for position, docTerm := range doc.terms[field] {
			if docTerm == term {
				positions = append(positions, uint32(position))
			}
		}

		if len(positions) > 0 {
			postings.Append(uint64(docId), positions)
		}
	}

	return postings, nil
}

func (m *MemoryIndex) FieldLength(field string, docId uint64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, err := m.doc(docId)
	if err != nil {
		return 0, err
	}

	return len(doc.terms[field]), nil
}

func (m *MemoryIndex) SumFieldLengths(field string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var sum uint64
	for _, doc := range m.docs {
		sum += uint64(len(doc.terms[field]))
	}

	return sum, nil
}

func (m *MemoryIndex) DocCount(field string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	count := 0
	for _, doc := range m.docs {
		if len(doc.terms[field]) > 0 {
			count++
		}
	}

	return count, nil
}

func (m *MemoryIndex) NumDocs() (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return uint64(len(m.docs)), nil
}

func (m *MemoryIndex) CollectionTermFreq(field, term string) (uint64, error) {
	postings, err := m.Postings(field, term)
	if err != nil {
		return 0, err
	}

	return postings.TotalTermFreq, nil
}

func (m *MemoryIndex) DocFreq(field, term string) (int, error) {
	postings, err := m.Postings(field, term)
	if err != nil {
		return 0, err
	}

	return postings.DocFreq, nil
}

// TermVector returns nil when the document has no value for field.
func (m *MemoryIndex) TermVector(field string, docId uint64) ([]TermFreq, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, err := m.doc(docId)
	if err != nil {
		return nil, err
	}

	fieldTerms, exists := doc.terms[field]
	if !exists {
		return nil, nil
	}

	freqs := make(map[string]uint32)
	for _, term := range fieldTerms {
		freqs[term]++
	}

	vector := make([]TermFreq, 0, len(freqs))
	for _, term := range slices.Sorted(maps.Keys(freqs)) {
		vector = append(vector, TermFreq{Term: term, Freq: freqs[term]})
	}

	return vector, nil
}

func (m *MemoryIndex) ExternalId(docId uint64) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, err := m.doc(docId)
	if err != nil {
		return "", err
	}

	return doc.externalId, nil
}

func (m *MemoryIndex) InternalId(externalId string) (uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	docId, exists := m.internalId[externalId]
	if !exists {
		return 0, fmt.Errorf("external id %q: %w", externalId, ErrNotFound)
	}

	return docId, nil
}
