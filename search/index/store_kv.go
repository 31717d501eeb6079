package index

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"os"
	"sort"

	"github.com/edsrzf/mmap-go"
)

/*
Data file, one record per key:
  - [0] key length (uint32)
  - [4] value length (uint32)
  - [8] key, then value

Index file: one uint64 data offset per record, in key order.
*/
const kvRecordHeaderSize = 8

type KVStoreWriter struct {
	dataFile    *os.File
	dataWriter  *bufio.Writer
	indexFile   *os.File
	indexWriter *bufio.Writer
	offset      uint64
	lastKey     []byte
	count       int
}

func newKVStoreWriter(basename string) (*KVStoreWriter, error) {
	dataFile, err := createFile(basename + ".data")
	if err != nil {
		return nil, err
	}

	indexFile, err := createFile(basename + ".index")
	if err != nil {
		_ = dataFile.Close()
		return nil, err
	}

	return &KVStoreWriter{
		dataFile:    dataFile,
		dataWriter:  bufio.NewWriter(dataFile),
		indexFile:   indexFile,
		indexWriter: bufio.NewWriter(indexFile),
	}, nil
}

// Keys must be appended in strictly increasing byte order.
func (w *KVStoreWriter) Append(key []byte, values ...[]byte) error {
	if w.count > 0 && bytes.Compare(w.lastKey, key) >= 0 {
		return errKeyOrder
	}

	valueLength := 0
	for _, value := range values {
		valueLength += len(value)
	}

	buffer := make([]byte, 0, kvRecordHeaderSize+len(key)+valueLength)
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(len(key)))
	buffer = binary.BigEndian.AppendUint32(buffer, uint32(valueLength))
	buffer = append(buffer, key...)
	for _, value := range values {
		buffer = append(buffer, value...)
	}

	if _, err := w.dataWriter.Write(buffer); err != nil {
		return err
	}

	if _, err := w.indexWriter.Write(binary.BigEndian.AppendUint64(nil, w.offset)); err != nil {
		return err
	}

	w.offset += uint64(len(buffer))
	w.lastKey = append(w.lastKey[:0], key...)
	w.count++

	return nil
}

func (w *KVStoreWriter) Close() error {
	if err := w.dataWriter.Flush(); err != nil {
		_ = w.dataFile.Close()
		_ = w.indexFile.Close()
		return err
	}

	if err := w.dataFile.Close(); err != nil {
		_ = w.indexFile.Close()
		return err
	}

	if err := w.indexWriter.Flush(); err != nil {
		_ = w.indexFile.Close()
		return err
	}

	return w.indexFile.Close()
}

type KVStoreReader struct {
	data      mmap.MMap
	dataFile  *os.File
	index     mmap.MMap
	indexFile *os.File
}

func newKVStoreReader(basename string) (*KVStoreReader, error) {
	dataFile, data, err := mapFile(basename + ".data")
	if err != nil {
		return nil, err
	}

	indexFile, index, err := mapFile(basename + ".index")
	if err != nil {
		if data != nil {
			_ = data.Unmap()
		}
		_ = dataFile.Close()
		return nil, err
	}

	return &KVStoreReader{
		data:      data,
		dataFile:  dataFile,
		index:     index,
		indexFile: indexFile,
	}, nil
}

func (kv *KVStoreReader) Len() int {
	return len(kv.index) / 8
}

// At returns the i-th record in key order.
func (kv *KVStoreReader) At(i int) ([]byte, []byte) {
	offset := binary.BigEndian.Uint64(kv.index[i*8:])
	keyLength := uint64(binary.BigEndian.Uint32(kv.data[offset:]))
	valueLength := uint64(binary.BigEndian.Uint32(kv.data[offset+4:]))

	keyStart := offset + kvRecordHeaderSize
	valueStart := keyStart + keyLength

	return kv.data[keyStart:valueStart], kv.data[valueStart : valueStart+valueLength]
}

// Get returns nil when the key is absent. The value aliases the mapped file.
func (kv *KVStoreReader) Get(key []byte) []byte {
	n := kv.Len()

	i := sort.Search(n, func(i int) bool {
		currentKey, _ := kv.At(i)
		return bytes.Compare(currentKey, key) >= 0
	})

	if i == n {
		return nil
	}

	currentKey, value := kv.At(i)
	if !bytes.Equal(currentKey, key) {
		return nil
	}

	return value
}

func (kv *KVStoreReader) Close() error {
	var firstErr error

	for _, region := range []mmap.MMap{kv.data, kv.index} {
		if region == nil {
			continue
		}
		if err := region.Unmap(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	for _, file := range []*os.File{kv.dataFile, kv.indexFile} {
		if err := file.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
