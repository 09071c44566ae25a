package message

import (
	"sort"

	"modes1090/icaofilter"
)

// Candidate pairs a parsed Message with the demodulator metadata needed
// to score it against overlapping candidates from adjacent starting
// offsets (the parsing rules "Scoring").
type Candidate struct {
	Message *Message
	Offset  int // sample offset within the buffer the candidate was sliced from
	Valid   bool
}

// Score computes the discriminator score for a candidate decode:
// +1000 for a CRC-valid message, +500 for a one-bit repair, +100
// for a two-bit repair, and -1000 if the message is an address-overlaid
// format whose recovered address isn't in filter's recently-seen set.
// filter may be nil, in which case the address-gate penalty never
// applies.
func Score(m *Message, filter *icaofilter.Filter) int {
	if m == nil {
		return -1 << 20
	}
	var score int
	switch m.CorrectedBits {
	case 0:
		score = 1000
	case 1:
		score = 500
	case 2:
		score = 100
	}
	if isOverlaidDF(m.DF) && filter != nil && !filter.Contains(m.Addr) {
		score -= 1000
	}
	return score
}

// BestCandidate selects the winning decode among overlapping candidates
// from adjacent starting offsets: highest score wins, ties broken by
// lowest corrected-bit count then earliest offset (the parsing rules).
func BestCandidate(candidates []Candidate, filter *icaofilter.Filter) *Candidate {
	var best *Candidate
	var bestScore int
	for i := range candidates {
		c := &candidates[i]
		if c.Message == nil {
			continue
		}
		s := Score(c.Message, filter)
		if best == nil {
			best, bestScore = c, s
			continue
		}
		switch {
		case s > bestScore:
			best, bestScore = c, s
		case s == bestScore && c.Message.CorrectedBits < best.Message.CorrectedBits:
			best, bestScore = c, s
		case s == bestScore && c.Message.CorrectedBits == best.Message.CorrectedBits && c.Offset < best.Offset:
			best, bestScore = c, s
		}
	}
	return best
}

// ResolveOverlaps groups candidates whose starting offsets fall within
// minSeparation samples of one another — different phase slices of what
// is likely the same physical frame — and keeps only the BestCandidate
// winner from each group, in ascending offset order. Candidates farther
// apart than minSeparation are assumed to be distinct frames and are
// each kept.
func ResolveOverlaps(candidates []Candidate, minSeparation int, filter *icaofilter.Filter) []*Candidate {
	if len(candidates) == 0 {
		return nil
	}
	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Offset < sorted[j].Offset })

	var out []*Candidate
	i := 0
	for i < len(sorted) {
		j := i + 1
		for j < len(sorted) && sorted[j].Offset-sorted[i].Offset < minSeparation {
			j++
		}
		if best := BestCandidate(sorted[i:j], filter); best != nil {
			out = append(out, best)
		}
		i = j
	}
	return out
}
