package index

import (
	"encoding/binary"
	"errors"
)

var errCorruptBlock = errors.New("corrupt postings block")

// TermFreqsIterator walks the postings blocks of one term. Blocks whose last
// doc id is below the target are skipped without being decoded.
type TermFreqsIterator struct {
	data []byte

	// Current block header
	blockOffset int
	numDocs     int
	firstDocId  DocumentId
	LastDocId   DocumentId
	length      int

	// Current block data
	blockDecoded   bool
	indexInBlockId int
	blockDocIds    []DocumentId
	blockPositions [][]uint32

	started bool
	err     error
}

func newTermFreqsIterator(data []byte) *TermFreqsIterator {
	return &TermFreqsIterator{
		data:        data,
		blockDocIds: make([]DocumentId, 0, blockSize),
	}
}

func (it *TermFreqsIterator) decodeHeader(offset int) bool {
	if offset+headerSize > len(it.data) {
		return false
	}

	header := it.data[offset:]
	it.blockOffset = offset
	it.numDocs = int(header[0])
	it.firstDocId = DocumentId(binary.BigEndian.Uint32(header[1:]))
	it.LastDocId = DocumentId(binary.BigEndian.Uint32(header[5:]))
	it.length = int(binary.BigEndian.Uint32(header[9:]))
	it.blockDecoded = false

	if it.length < headerSize || offset+it.length > len(it.data) {
		it.err = errCorruptBlock
		return false
	}

	return true
}

func (it *TermFreqsIterator) decodeBlock() bool {
	body := it.data[it.blockOffset+headerSize : it.blockOffset+it.length]

	read := func() (uint64, bool) {
		value, n := binary.Uvarint(body)
		if n <= 0 {
			it.err = errCorruptBlock
			return 0, false
		}
		body = body[n:]
		return value, true
	}

	it.blockDocIds = it.blockDocIds[:0]
	docId := DocumentId(0)
	for i := 0; i < it.numDocs; i++ {
		delta, ok := read()
		if !ok {
			return false
		}
		docId += DocumentId(delta)
		it.blockDocIds = append(it.blockDocIds, docId)
	}

	freqs := make([]int, it.numDocs)
	for i := range freqs {
		freq, ok := read()
		if !ok {
			return false
		}
		freqs[i] = int(freq)
	}

	// Fresh slices, callers may keep them after the iterator moves on.
	it.blockPositions = make([][]uint32, it.numDocs)
	for i, freq := range freqs {
		positions := make([]uint32, freq)
		position := uint32(0)
		for j := range positions {
			delta, ok := read()
			if !ok {
				return false
			}
			position += uint32(delta)
			positions[j] = position
		}
		it.blockPositions[i] = positions
	}

	it.indexInBlockId = 0
	it.blockDecoded = true

	return true
}

// Next moves to the first document whose id is >= docId. It returns false
// once the postings are exhausted or on a decoding error, see Err.
func (it *TermFreqsIterator) Next(docId DocumentId) bool {
	if it.err != nil {
		return false
	}

	if !it.started {
		it.started = true
		if !it.decodeHeader(0) {
			return false
		}
	}

	for {
		if docId <= it.LastDocId {
			break
		}

		if !it.decodeHeader(it.blockOffset + it.length) {
			return false
		}
	}

	if !it.blockDecoded && !it.decodeBlock() {
		return false
	}

	for it.indexInBlockId < len(it.blockDocIds) && it.blockDocIds[it.indexInBlockId] < docId {
		it.indexInBlockId++
	}

	return it.indexInBlockId < len(it.blockDocIds)
}

func (it *TermFreqsIterator) DocId() DocumentId {
	return it.blockDocIds[it.indexInBlockId]
}

func (it *TermFreqsIterator) TermFreq() uint32 {
	return uint32(len(it.blockPositions[it.indexInBlockId]))
}

func (it *TermFreqsIterator) Positions() []uint32 {
	return it.blockPositions[it.indexInBlockId]
}

func (it *TermFreqsIterator) Err() error {
	return it.err
}
