package index

import (
	"path/filepath"
	"slices"

	"github.com/larose/qryeval/search/utils"
)

type StoreWriter struct {
	currentDocId DocumentId
	values       map[string]map[DocumentId][]byte
}

func newStoreWriter() *StoreWriter {
	return &StoreWriter{
		values: make(map[string]map[DocumentId][]byte, 10),
	}
}

func (writer *StoreWriter) Doc(docId DocumentId) {
	writer.currentDocId = docId
}

// A repeated field keeps its last value.
func (writer *StoreWriter) Field(fieldName string, value []byte) {
	fieldValues, exists := writer.values[fieldName]

	if !exists {
		fieldValues = make(map[DocumentId][]byte, 100)
		writer.values[fieldName] = fieldValues
	}

	fieldValues[writer.currentDocId] = value
}

func (writer *StoreWriter) EndField() {
}

func (writer *StoreWriter) Term(term []byte) {
}

func (writer *StoreWriter) Write(directory, segmentId string) error {
	for fieldName, values := range writer.values {
		kvStoreWriter, err := newKVStoreWriter(filepath.Join(directory, "segment."+segmentId+"."+fieldName+".store"))
		if err != nil {
			return err
		}

		sortedDocIds := make([]DocumentId, 0, len(values))
		for docId := range values {
			sortedDocIds = append(sortedDocIds, docId)
		}

		slices.Sort(sortedDocIds)

		for _, docId := range sortedDocIds {
			if err := kvStoreWriter.Append(utils.Uint32ToBytes(uint32(docId)), values[docId]); err != nil {
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

type FieldStoreReader struct {
	kvStoreReader *KVStoreReader
}

func newFieldStoreReader(directory string, segmentId string, fieldName string) (*FieldStoreReader, error) {
	kvStoreReader, err := newKVStoreReader(filepath.Join(directory, "segment."+segmentId+"."+fieldName+".store"))
	if err != nil {
		return nil, err
	}

	return &FieldStoreReader{kvStoreReader: kvStoreReader}, nil
}

// Value aliases the mapped file and returns nil when the document has no
// value for the field.
func (reader *FieldStoreReader) Value(docId DocumentId) []byte {
	return reader.kvStoreReader.Get(utils.Uint32ToBytes(uint32(docId)))
}

func (reader *FieldStoreReader) Close() error {
	return reader.kvStoreReader.Close()
}
