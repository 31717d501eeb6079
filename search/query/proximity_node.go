package query

import (
	"slices"

	"github.com/larose/qryeval/search/index"
)

// matchProximity keeps the documents every cursor matches and replaces their
// positions with the ones match returns. Documents without any match are
// dropped.
func matchProximity(field, name string, cursors []*InvertedCursor, match func(positions [][]uint32) []uint32) *index.PostingList {
	list := index.NewPostingList(field, name)
	conjunction := NewConjunctionCursor(asDocCursors(cursors))

	positions := make([][]uint32, len(cursors))

	for conjunction.HasMatch() {
		docId := conjunction.Match()

		for i, cursor := range cursors {
			positions[i] = cursor.Posting().Positions
		}

		if matches := match(positions); len(matches) > 0 {
			list.Append(docId, matches)
		}

		conjunction.AdvancePast(docId)
	}

	return list
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// NEAR
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

type nearOutcomeKind byte

const (
	// Every term is aligned, position is the first term's.
	nearMatched nearOutcomeKind = iota
	// term is too far from the previous one.
	nearBackoff
	// A term ran out of positions.
	nearExhausted
)

type nearOutcome struct {
	kind     nearOutcomeKind
	position uint32
	term     int
}

// nearMatcher aligns the positions of one document, one cursor per term.
type nearMatcher struct {
	positions [][]uint32
	cursors   []int
	distance  int64
	// Next term to align with the previous one
	term int
}

func (m *nearMatcher) current(term int) uint32 {
	return m.positions[term][m.cursors[term]]
}

func (m *nearMatcher) exhausted(term int) bool {
	return m.cursors[term] >= len(m.positions[term])
}

// step moves each term to its first position at or after the previous
// term's position until the last term is aligned or the alignment fails.
func (m *nearMatcher) step() nearOutcome {
	for {
		previous := m.current(m.term - 1)

		for !m.exhausted(m.term) && m.current(m.term) < previous {
			m.cursors[m.term]++
		}

		if m.exhausted(m.term) {
			return nearOutcome{kind: nearExhausted}
		}

		if int64(m.current(m.term))-int64(previous) > m.distance {
			return nearOutcome{kind: nearBackoff, term: m.term}
		}

		if m.term == len(m.positions)-1 {
			return nearOutcome{kind: nearMatched, position: m.current(0)}
		}

		m.term++
	}
}

// backoff moves the term before term forward by one position and resumes
// the alignment from there. It returns false once that term is exhausted.
func (m *nearMatcher) backoff(term int) bool {
	previous := term - 1
	m.cursors[previous]++
	if m.exhausted(previous) {
		return false
	}

	m.term = max(previous, 1)
	return true
}

// next moves every cursor past the match, matches do not overlap.
func (m *nearMatcher) next() bool {
	for term := range m.cursors {
		m.cursors[term]++
		if m.exhausted(term) {
			return false
		}
	}

	m.term = 1
	return true
}

// matchNear returns the first term's position of every ordered match where
// each term is at most distance positions after the previous one. A term at
// the previous term's position qualifies.
func matchNear(positions [][]uint32, distance int) []uint32 {
	switch len(positions) {
	case 0:
		return nil
	case 1:
		return slices.Clone(positions[0])
	}

	for _, termPositions := range positions {
		if len(termPositions) == 0 {
			return nil
		}
	}

	matcher := &nearMatcher{
		positions: positions,
		cursors:   make([]int, len(positions)),
		distance:  int64(distance),
		term:      1,
	}

	var matches []uint32
	for {
		outcome := matcher.step()

		switch outcome.kind {
		case nearExhausted:
			return matches

		case nearBackoff:
			if !matcher.backoff(outcome.term) {
				return matches
			}

		case nearMatched:
			matches = append(matches, outcome.position)
			if !matcher.next() {
				return matches
			}
		}
	}
}

// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -
// WINDOW
// - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - - -

// matchWindow returns the last position of every unordered match spanning
// less than distance positions.
func matchWindow(positions [][]uint32, distance int) []uint32 {
	if len(positions) == 0 {
		return nil
	}

	for _, termPositions := range positions {
		if len(termPositions) == 0 {
			return nil
		}
	}

	cursors := make([]int, len(positions))
	var matches []uint32

	for {
		minTerm := 0
		minPosition := positions[0][cursors[0]]
		maxPosition := minPosition

		for term := 1; term < len(positions); term++ {
			position := positions[term][cursors[term]]
			if position < minPosition {
				minTerm = term
				minPosition = position
			}
			maxPosition = max(maxPosition, position)
		}

		if int64(maxPosition)-int64(minPosition) < int64(distance) {
			matches = append(matches, maxPosition)

			for term := range cursors {
				cursors[term]++
				if cursors[term] >= len(positions[term]) {
					return matches
				}
			}
			continue
		}

		cursors[minTerm]++
		if cursors[minTerm] >= len(positions[minTerm]) {
			return matches
		}
	}
}
