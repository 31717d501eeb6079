package index

import (
	"path/filepath"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

type occurrence struct {
	docId    DocumentId
	position uint32
}

type InvertedIndexWriter struct {
	docId     DocumentId
	numDocs   uint32
	fieldName string
	fieldId   int
	position  uint32

	fieldIds   map[string]int
	fieldNames []string
	// occurrences[fieldId][term], in (docId, position) order
	occurrences []map[string][]occurrence

	// fieldLengths[fieldName][docId]
	fieldLengths map[string]map[DocumentId]uint32
}

func newInvertedIndexWriter() *InvertedIndexWriter {
	return &InvertedIndexWriter{
		fieldIds:     make(map[string]int),
		fieldNames:   make([]string, 0, 5),
		occurrences:  make([]map[string][]occurrence, 0, 5),
		fieldLengths: make(map[string]map[DocumentId]uint32),
	}
}

func (w *InvertedIndexWriter) Doc(docId DocumentId) {
	w.docId = docId
	if uint32(docId)+1 > w.numDocs {
		w.numDocs = uint32(docId) + 1
	}
}

func (w *InvertedIndexWriter) Field(fieldName string, value []byte) {
	w.fieldName = fieldName

	fieldId, exists := w.fieldIds[fieldName]
	if !exists {
		fieldId = len(w.fieldIds)
		w.fieldNames = append(w.fieldNames, fieldName)
		w.fieldIds[fieldName] = fieldId
		w.occurrences = append(w.occurrences, make(map[string][]occurrence))
		w.fieldLengths[fieldName] = make(map[DocumentId]uint32)
	}

	w.fieldId = fieldId
	// A repeated field continues where the previous value stopped.
	w.position = w.fieldLengths[fieldName][w.docId]
}

func (w *InvertedIndexWriter) EndField() {
	w.fieldLengths[w.fieldName][w.docId] = w.position
}

func (w *InvertedIndexWriter) Term(term []byte) {
	termString := string(term)
	w.occurrences[w.fieldId][termString] = append(w.occurrences[w.fieldId][termString], occurrence{
		docId:    w.docId,
		position: w.position,
	})
	w.position++
}

func (w *InvertedIndexWriter) Fields() []string {
	return w.fieldNames
}

func (w *InvertedIndexWriter) Write(directory, segmentId string) error {
	for fieldId, fieldOccurrences := range w.occurrences {
		if err := w.writeField(directory, segmentId, w.fieldNames[fieldId], fieldOccurrences); err != nil {
			return err
		}
	}

	return nil
}

func (w *InvertedIndexWriter) writeField(directory, segmentId, fieldName string, fieldOccurrences map[string][]occurrence) error {
	fieldFreqsWriter, err := newFieldFreqsWriter(directory, segmentId, fieldName)
	if err != nil {
		return err
	}

	dictWriter, err := newDictionaryWriter(directory, segmentId, fieldName)
	if err != nil {
		_ = fieldFreqsWriter.Close()
		return err
	}

	var fieldSumTermFreq uint64
	fieldDocIds := roaring.NewBitmap()

	termDocIds := make([]uint32, 0, 100)
	termPositions := make([][]uint32, 0, 100)

	writeTerm := func(term string, occurrences []occurrence) error {
		termDocIds = termDocIds[:0]
		termPositions = termPositions[:0]

		for _, occ := range occurrences {
			last := len(termDocIds) - 1
			if last < 0 || termDocIds[last] != uint32(occ.docId) {
				termDocIds = append(termDocIds, uint32(occ.docId))
				termPositions = append(termPositions, make([]uint32, 0, 1))
				last++
			}
			termPositions[last] = append(termPositions[last], occ.position)
		}

		termInfo := &TermInfo{
			DocFreq:       uint32(len(termDocIds)),
			TotalTermFreq: uint64(len(occurrences)),
		}

		firstOffsetSet := false
		for i := 0; i < len(termDocIds); i += blockSize {
			end := min(i+blockSize, len(termDocIds))

			startOffset, endOffset, err := fieldFreqsWriter.WriteBlock(termDocIds[i:end], termPositions[i:end])
			if err != nil {
				return err
			}

			if !firstOffsetSet {
				termInfo.FreqsFileStartOffset = startOffset
				firstOffsetSet = true
			}
			termInfo.FreqsFileEndOffset = endOffset
		}

		for _, docId := range termDocIds {
			fieldDocIds.Add(docId)
		}
		fieldSumTermFreq += termInfo.TotalTermFreq

		return dictWriter.Write([]byte(term), termInfo)
	}

	sortedTerms := make([]string, 0, len(fieldOccurrences))
	for term := range fieldOccurrences {
		sortedTerms = append(sortedTerms, term)
	}
	slices.Sort(sortedTerms)

	for _, term := range sortedTerms {
		if err := writeTerm(term, fieldOccurrences[term]); err != nil {
			_ = fieldFreqsWriter.Close()
			_ = dictWriter.Close()
			return err
		}
	}

	if err := fieldFreqsWriter.Close(); err != nil {
		_ = dictWriter.Close()
		return err
	}

	if err := dictWriter.Close(); err != nil {
		return err
	}

	stats := FieldStats{DocCount: uint32(fieldDocIds.GetCardinality()), SumTermFreq: fieldSumTermFreq}
	if err := writeFieldStats(directory, segmentId, fieldName, stats); err != nil {
		return err
	}

	// One entry per document of the segment, 0 when the field is absent.
	lengths := make([]uint32, w.numDocs)
	for docId, length := range w.fieldLengths[fieldName] {
		lengths[docId] = length
	}

	arrayStoreWriter, err := newArrayStoreWriter(filepath.Join(directory, "segment."+segmentId+"."+fieldName+".lengths"))
	if err != nil {
		return err
	}

	if err := arrayStoreWriter.AppendUint32(lengths); err != nil {
		_ = arrayStoreWriter.Close()
		return err
	}

	return arrayStoreWriter.Close()
}
