package index

import (
	"fmt"
	"path/filepath"
)

// FieldLengthReader returns the number of terms a document has in one field.
type FieldLengthReader struct {
	arrayStoreReader *ArrayStoreReader
}

func newFieldLengthReader(directory, segmentId, fieldName string) (*FieldLengthReader, error) {
	arrayStoreReader, err := newArrayStoreReader(filepath.Join(directory, "segment."+segmentId+"."+fieldName+".lengths"))
	if err != nil {
		return nil, err
	}

	return &FieldLengthReader{arrayStoreReader: arrayStoreReader}, nil
}

func (reader *FieldLengthReader) Get(docId DocumentId) (uint32, error) {
	length, ok := reader.arrayStoreReader.GetUint32(uint32(docId))
	if !ok {
		return 0, fmt.Errorf("document %d: %w", docId, ErrNotFound)
	}

	return length, nil
}

func (reader *FieldLengthReader) Close() error {
	return reader.arrayStoreReader.Close()
}
