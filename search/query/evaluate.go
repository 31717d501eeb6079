package query

// Evaluate feeds every document scorer matches to collector, in ascending
// doc id order.
func Evaluate(scorer Scorer, collector Collector) error {
	for scorer.HasMatch() {
		docId := scorer.Match()

		score, err := scorer.Score(docId)
		if err != nil {
			return err
		}

		collector.Collect(docId, score)
		scorer.AdvancePast(docId)
	}

	return nil
}
