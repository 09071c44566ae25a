// Package modeac implements the optional Mode A/C pulse detector: it
// scans for the distinct pulse pattern of Mode A/C replies and emits
// MODEAC_MSG_BYTES-wide messages tagged with a lower-priority source.
//
// No repo in the pack implements Mode A/C detection (dump1090's
// mode_ac.c never made it into original_source/, and none of the other
// example repos touch legacy secondary radar replies), so this is
// written from the publicly documented ICAO Annex 10 pulse spacing
// rather than ported from any one file; it follows the same
// magnitude-correlator style as package demod so the two detectors read
// as siblings.
package modeac

import "modes1090/message"

// MsgBytes is the width of a decoded Mode A/C reply: one byte each for
// the 12-bit identity/altitude pulse train and a validity flag nibble,
// matching the classic MODEAC_MSG_BYTES=2 convention this lineage uses.
const MsgBytes = 2

// framingPulseOffsets are the sample offsets (in half-microsecond
// units at 2 samples/us) of the F1/F2 framing pulses bracketing the 12
// data pulses of a Mode A/C reply.
var framingPulseOffsets = [2]int{0, 20}

// dataPulseOffsets are the offsets of the 12 data pulses (C1 A1 C2 A2
// C4 A4 [X] B1 D1 B2 D2 B4 D4) between the two framing pulses, spaced
// 2.9us apart at 2 samples/us.
var dataPulseOffsets = [12]int{2, 3, 5, 6, 8, 9, 11, 13, 14, 16, 17, 18}

// Detector scans a magnitude stream for Mode A/C replies.
type Detector struct{}

// Scan looks for a single Mode A/C reply starting at each offset in m
// and returns every frame whose framing pulses are both present and
// mutually consistent in level.
func (Detector) Scan(m []uint16) []*message.Message {
	var out []*message.Message
	need := framingPulseOffsets[1] + 4
	for j := 0; j+need < len(m); j++ {
		f1 := m[j+framingPulseOffsets[0]]
		f2 := m[j+framingPulseOffsets[1]]
		if f1 == 0 || f2 == 0 {
			continue
		}
		if f1 > f2*2 || f2 > f1*2 {
			continue // framing pulses must be roughly equal level
		}
		threshold := (uint32(f1) + uint32(f2)) / 4
		bits := 0
		for i, off := range dataPulseOffsets {
			if uint32(m[j+off]) > threshold {
				bits |= 1 << (11 - i)
			}
		}
		if bits == 0 {
			continue
		}
		out = append(out, decodeFrame(bits))
		j += framingPulseOffsets[1]
	}
	return out
}

// decodeFrame turns the 12-bit pulse pattern into a Message carrying
// the Mode A identity (squawk) the pulses encode. Mode C altitude
// replies are not told apart from Mode A replies; every frame is
// reported as a squawk and no altitude is decoded.
func decodeFrame(bits int) *message.Message {
	m := &message.Message{
		Source:   message.SourceModeAC,
		AddrType: message.AddrModeA,
	}
	m.Squawk = modeABitsToSquawk(bits)
	m.Valid |= message.FieldSquawk
	return m
}

// modeABitsToSquawk reorders the 12 interleaved pulse-position bits
// (C1 A1 C2 A2 C4 A4 X B1 D1 B2 D2 B4 D4, X dropped) into the 4-digit
// octal squawk the pulses encode.
func modeABitsToSquawk(bits int) int {
	c1 := bits >> 11 & 1
	a1 := bits >> 10 & 1
	c2 := bits >> 9 & 1
	a2 := bits >> 8 & 1
	c4 := bits >> 7 & 1
	a4 := bits >> 6 & 1
	b1 := bits >> 5 & 1
	d1 := bits >> 4 & 1
	b2 := bits >> 3 & 1
	d2 := bits >> 2 & 1
	b4 := bits >> 1 & 1
	d4 := bits >> 0 & 1

	a := a4<<2 | a2<<1 | a1
	b := b4<<2 | b2<<1 | b1
	c := c4<<2 | c2<<1 | c1
	d := d4<<2 | d2<<1 | d1

	return a*1000 + b*100 + c*10 + d
}
