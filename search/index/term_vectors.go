package index

import (
	"encoding/binary"
	"path/filepath"
	"slices"

	"github.com/larose/qryeval/search/utils"
)

/*
Term vector value, per document and field, terms in ascending order:
  - term count (uvarint)
  - per term: term length (uvarint), term bytes, freq (uvarint)
*/

type TermVectorWriter struct {
	docId DocumentId
	// freqs[fieldName][docId][term]
	freqs        map[string]map[DocumentId]map[string]uint32
	currentField map[string]uint32
}

func newTermVectorWriter() *TermVectorWriter {
	return &TermVectorWriter{
		freqs: make(map[string]map[DocumentId]map[string]uint32, 10),
	}
}

func (w *TermVectorWriter) Doc(docId DocumentId) {
	w.docId = docId
}

func (w *TermVectorWriter) Field(fieldName string, value []byte) {
	docs, exists := w.freqs[fieldName]
	if !exists {
		docs = make(map[DocumentId]map[string]uint32, 100)
		w.freqs[fieldName] = docs
	}

	freqs, exists := docs[w.docId]
	if !exists {
		freqs = make(map[string]uint32)
		docs[w.docId] = freqs
	}

	w.currentField = freqs
}

func (w *TermVectorWriter) EndField() {
	w.currentField = nil
}

func (w *TermVectorWriter) Term(term []byte) {
	w.currentField[string(term)]++
}

func (w *TermVectorWriter) Write(directory, segmentId string) error {
	for fieldName, docs := range w.freqs {
		kvStoreWriter, err := newKVStoreWriter(filepath.Join(directory, "segment."+segmentId+"."+fieldName+".vectors"))
		if err != nil {
			return err
		}

		sortedDocIds := make([]DocumentId, 0, len(docs))
		for docId := range docs {
			sortedDocIds = append(sortedDocIds, docId)
		}
		slices.Sort(sortedDocIds)

		for _, docId := range sortedDocIds {
			if err := kvStoreWriter.Append(utils.Uint32ToBytes(uint32(docId)), encodeTermVector(docs[docId])); err != nil {
				_ = kvStoreWriter.Close()
				return err
			}
		}

		if err := kvStoreWriter.Close(); err != nil {
			return err
		}
	}

	return nil
}

func encodeTermVector(freqs map[string]uint32) []byte {
	terms := make([]string, 0, len(freqs))
	for term := range freqs {
		terms = append(terms, term)
	}
	slices.Sort(terms)

	buffer := binary.AppendUvarint(nil, uint64(len(terms)))
	for _, term := range terms {
		buffer = binary.AppendUvarint(buffer, uint64(len(term)))
		buffer = append(buffer, term...)
		buffer = binary.AppendUvarint(buffer, uint64(freqs[term]))
	}

	return buffer
}

func decodeTermVector(value []byte) ([]TermFreq, error) {
	count, n := binary.Uvarint(value)
	if n <= 0 {
		return nil, errCorruptBlock
	}
	value = value[n:]

	vector := make([]TermFreq, 0, count)
	for range count {
		length, n := binary.Uvarint(value)
		if n <= 0 || uint64(len(value)-n) < length {
			return nil, errCorruptBlock
		}
		value = value[n:]

		term := string(value[:length])
		value = value[length:]

		freq, n := binary.Uvarint(value)
		if n <= 0 {
			return nil, errCorruptBlock
		}
		value = value[n:]

		vector = append(vector, TermFreq{Term: term, Freq: uint32(freq)})
	}

	return vector, nil
}

type TermVectorReader struct {
	kvStoreReader *KVStoreReader
}

func newTermVectorReader(directory, segmentId, fieldName string) (*TermVectorReader, error) {
	kvStoreReader, err := newKVStoreReader(filepath.Join(directory, "segment."+segmentId+"."+fieldName+".vectors"))
	if err != nil {
		return nil, err
	}

	return &TermVectorReader{kvStoreReader: kvStoreReader}, nil
}

// Get returns nil when the document has no value for the field.
func (reader *TermVectorReader) Get(docId DocumentId) ([]TermFreq, error) {
	value := reader.kvStoreReader.Get(utils.Uint32ToBytes(uint32(docId)))
	if value == nil {
		return nil, nil
	}

	return decodeTermVector(value)
}

func (reader *TermVectorReader) Close() error {
	return reader.kvStoreReader.Close()
}
