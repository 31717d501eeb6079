package query

// FieldStats are collection statistics of one field.
type FieldStats struct {
	DocCount        int
	SumFieldLengths uint64
}

func (s FieldStats) AvgFieldLength() float64 {
	if s.DocCount == 0 {
		return 0
	}
	return float64(s.SumFieldLengths) / float64(s.DocCount)
}

// ExecutionContext holds what every node of one compiled query shares: the
// model, the index and the statistics of the fields the query uses.
type ExecutionContext struct {
	Index      Index
	Model      RetrievalModel
	NumDocs    uint64
	fieldStats map[string]FieldStats
}

func GenerateExecutionContext(queryContext *QueryContext, ix Index, model RetrievalModel) (*ExecutionContext, error) {
	numDocs, err := ix.NumDocs()
	if err != nil {
		return nil, err
	}

	fieldStats := make(map[string]FieldStats, len(queryContext.Fields))

	for _, field := range queryContext.Fields {
		docCount, err := ix.DocCount(field.Name)
		if err != nil {
			return nil, err
		}

		sumFieldLengths, err := ix.SumFieldLengths(field.Name)
		if err != nil {
			return nil, err
		}

		fieldStats[field.Name] = FieldStats{DocCount: docCount, SumFieldLengths: sumFieldLengths}
	}

	return &ExecutionContext{
		Index:      ix,
		Model:      model,
		NumDocs:    numDocs,
		fieldStats: fieldStats,
	}, nil
}

func (c *ExecutionContext) FieldStats(field string) FieldStats {
	return c.fieldStats[field]
}
