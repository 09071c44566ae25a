// Package demod turns a ring of magnitude samples into candidate Mode S
// frames: preamble detection, five-phase PPM bit slicing with a
// per-message confidence score, and CRC-gated acceptance handed off to
// package message.
//
// Grounded on saviobatista-go1090's internal/adsb ADSBProcessor
// (demodulate2400/tryAllPhases/decodeBitsWithPhase/slicePhaseN), which
// is itself a direct port of dump1090's 2.4 Msps demodulator. This
// receiver never demodulated its own samples before (it shelled out to
// rtl_adsb's prebuilt demodulator), so this package is built from that
// sibling implementation's Go rendition instead.
package demod

import (
	"modes1090/crc"
	"modes1090/message"
	"modes1090/ringbuf"
	"modes1090/stats"
)

// PreambleLen is the number of magnitude samples dump1090's preamble
// correlator inspects per candidate start position (8us at 2.4Msps plus
// the post-preamble quiet guard).
const PreambleLen = 19

// longMsgSamples is a conservative upper bound on the samples a 112-bit
// frame spans after the preamble (112 bits * ~2 samples/bit, rounded up
// with slack for phase drift across byte boundaries).
const longMsgSamples = crc.LongMsgBytes * 8 * 2

// slicePhase0..4 correlate a 1-0 symbol pair against one of five PPM
// sub-sample phases, verbatim from the earlier implementation's correlator
// (they sum to zero by construction, so no DC term is needed).
func slicePhase0(m []uint16) int { return 5*int(m[0]) - 3*int(m[1]) - 2*int(m[2]) }
func slicePhase1(m []uint16) int { return 4*int(m[0]) - int(m[1]) - 3*int(m[2]) }
func slicePhase2(m []uint16) int { return 3*int(m[0]) + int(m[1]) - 4*int(m[2]) }
func slicePhase3(m []uint16) int { return 2*int(m[0]) + 3*int(m[1]) - 5*int(m[2]) }
func slicePhase4(m []uint16) int { return int(m[0]) + 5*int(m[1]) - 5*int(m[2]) - int(m[3]) }

func bitValue(corr int) (bit byte, confidence int) {
	if corr > 0 {
		return 1, corr
	}
	return 0, -corr
}

// Demodulator scans MagnitudeBuffers for candidate frames and hands
// each surviving candidate to message.Parse.
type Demodulator struct {
	ParseConfig message.ParseConfig

	// Stats, if set, receives a DecodeFailures increment for every
	// preamble whose five phase slices all fail to produce a message
	// (CRC rejection, bad DF, or too few samples).
	Stats *stats.Counters
}

// Scan searches buf (whose leading ringbuf.OverlapSamples are carried
// from the previous buffer) for preambles and returns every candidate
// decode found, already scored via message.Score. Overlapping starting
// offsets are resolved by the caller via message.BestCandidate.
func (d *Demodulator) Scan(buf *ringbuf.MagnitudeBuffer) []message.Candidate {
	m := buf.Samples
	total := buf.Total()
	var out []message.Candidate

	for j := 0; j+PreambleLen+longMsgSamples < total; j++ {
		preamble := m[j : j+PreambleLen]
		if !(preamble[0] < preamble[1] && preamble[12] > preamble[13]) {
			continue
		}

		high, valid := classifyPreamble(preamble)
		if !valid {
			continue
		}
		if preamble[5] >= high || preamble[6] >= high || preamble[7] >= high ||
			preamble[8] >= high || preamble[14] >= high || preamble[15] >= high ||
			preamble[16] >= high || preamble[17] >= high || preamble[18] >= high {
			continue
		}

		cand := d.tryAllPhases(m[j:min(total, j+PreambleLen+longMsgSamples+4)], j)
		if cand != nil {
			out = append(out, *cand)
			// Skip past the preamble and the frame this candidate actually
			// consumed (56 or 112 bits at 2 samples/bit) so the next
			// preamble search doesn't re-trigger partway through the same
			// frame. Candidates from phase slices that still land close
			// together are resolved by the caller's message.ResolveOverlaps.
			j += PreambleLen + cand.Message.Bits*2
		}
	}
	return out
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// classifyPreamble checks the two dominant phase-alignment patterns
// this receiver recognizes (peaks at 1,3,9,11-12 and 1,3,9,12) and
// returns the estimated "high" reference level.
func classifyPreamble(p []uint16) (high uint16, ok bool) {
	switch {
	case p[1] > p[2] && p[2] < p[3] && p[3] > p[4] &&
		p[8] < p[9] && p[9] > p[10] && p[10] < p[11]:
		h := (uint32(p[1]) + uint32(p[3]) + uint32(p[9]) + uint32(p[11]) + uint32(p[12])) / 5
		return uint16(h), true
	case p[1] > p[2] && p[2] < p[3] && p[3] > p[4] &&
		p[8] < p[9] && p[9] > p[10] && p[11] < p[12]:
		h := (uint32(p[1]) + uint32(p[3]) + uint32(p[9]) + uint32(p[12])) / 4
		return uint16(h), true
	default:
		return 0, false
	}
}

// tryAllPhases slices bits at each of the five PPM phases starting just
// after the preamble and keeps the one whose resulting message scores
// highest once CRC/error-correction has run.
func (d *Demodulator) tryAllPhases(m []uint16, offset int) *message.Candidate {
	var best *message.Candidate
	bestScore := -1 << 30

	for phase := 0; phase < 5; phase++ {
		raw, conf, ok := decodeBitsAtPhase(m, phase)
		if !ok {
			continue
		}
		cfg := d.ParseConfig
		msg, err := message.Parse(raw, cfg)
		if err != nil {
			continue
		}
		msg.Score = conf
		s := message.Score(msg, d.ParseConfig.Filter)
		if s > bestScore {
			best = &message.Candidate{Message: msg, Offset: offset, Valid: true}
			bestScore = s
		}
	}
	if best == nil && d.Stats != nil {
		d.Stats.DecodeFailures.Add(1)
	}
	return best
}

// decodeBitsAtPhase slices a full long-message-sized byte array at the
// given phase, returning the raw bytes, a summed confidence score, and
// whether enough samples were available. Short messages are simply the
// first 7 bytes of the same slice; the caller's crc.MessageLenForDF
// trims appropriately once the DF is known (the earlier implementation instead
// truncates here; message.Parse already expects exactly-sized input, so
// this function always produces a full 14-byte buffer and lets Parse
// read only the bytes its DF needs).
func decodeBitsAtPhase(m []uint16, startPhase int) (raw []byte, confidence int, ok bool) {
	const bytes = crc.LongMsgBytes
	buf := make([]byte, bytes)
	pPtr := startPhase / 5
	phase := startPhase % 5
	total := 0

	for i := 0; i < bytes; i++ {
		if pPtr+8 >= len(m) {
			return nil, 0, false
		}
		var b byte
		var step int
		b, step = sliceByte(m, pPtr, phase)
		if step == 0 {
			return nil, 0, false
		}
		buf[i] = b
		total += step
		pPtr += 19
		if phase == 4 {
			pPtr++
			phase = 0
		} else {
			phase++
		}
	}
	return buf, total, true
}

// sliceByte decodes one 8-bit byte starting at sample index base with
// the correlator sub-phase given by phase (0-4), following the
// earlier implementation's decodeBitsWithPhase case statement. It returns 0,0
// if there are not enough trailing samples to finish the byte.
func sliceByte(m []uint16, base, phase int) (byte, int) {
	need := base + 20
	if need > len(m) {
		return 0, 0
	}
	var bits [8]byte
	var conf int
	pos := base
	phases := [8]int{}
	for k := 0; k < 8; k++ {
		phases[k] = (phase + k) % 5
	}
	correlators := [5]func([]uint16) int{slicePhase0, slicePhase1, slicePhase2, slicePhase3, slicePhase4}
	for k := 0; k < 8; k++ {
		ph := phases[k]
		width := 3
		if ph == 4 {
			width = 4
		}
		if pos+width > len(m) {
			return 0, 0
		}
		corr := correlators[ph](m[pos : pos+width])
		bit, c := bitValue(corr)
		bits[k] = bit
		conf += c
		pos += 3
		if k == 7 && ph == 4 {
			pos++
		}
	}
	var b byte
	for k := 0; k < 8; k++ {
		b = b<<1 | bits[k]
	}
	return b, conf
}
