// Package crc implements the 24-bit Mode S cyclic-redundancy checksum,
// its precomputed error syndrome tables, and single-/two-bit error
// correction over a raw Mode S frame.
package crc

const (
	// LongMsgBits is the length in bits of a 112-bit (long) Mode S frame.
	LongMsgBits = 112
	// ShortMsgBits is the length in bits of a 56-bit (short) Mode S frame.
	ShortMsgBits = 56
	// LongMsgBytes is LongMsgBits/8.
	LongMsgBytes = LongMsgBits / 8
	// ShortMsgBytes is ShortMsgBits/8.
	ShortMsgBytes = ShortMsgBits / 8

	// Polynomial is the generator polynomial 0x1FFF409 used by the Mode S
	// CRC, expressed here as the table-driven equivalent below.
	Polynomial = 0x1FFF409
)

// checksumTable contains 112 elements, one per bit position of a long
// frame starting right after the preamble. To compute the CRC, xor
// together the entries whose corresponding message bit is set. The last
// 24 entries are zero because the checksum field itself does not
// contribute to its own value.
var checksumTable = [112]uint32{
	0x3935ea, 0x1c9af5, 0xf1b77e, 0x78dbbf, 0xc397db, 0x9e31e9, 0xb0e2f0, 0x587178,
	0x2c38bc, 0x161c5e, 0x0b0e2f, 0xfa7d13, 0x82c48d, 0xbe9842, 0x5f4c21, 0xd05c14,
	0x682e0a, 0x341705, 0xe5f186, 0x72f8c3, 0xc68665, 0x9cb936, 0x4e5c9b, 0xd8d449,
	0x939020, 0x49c810, 0x24e408, 0x127204, 0x093902, 0x049c81, 0xfdb444, 0x7eda22,
	0x3f6d11, 0xe04c8c, 0x702646, 0x381323, 0xe3f395, 0x8e03ce, 0x4701e7, 0xdc7af7,
	0x91c77f, 0xb719bb, 0xa476d9, 0xadc168, 0x56e0b4, 0x2b705a, 0x15b82d, 0xf52612,
	0x7a9309, 0xc2b380, 0x6159c0, 0x30ace0, 0x185670, 0x0c2b38, 0x06159c, 0x030ace,
	0x018567, 0xff38b7, 0x80665f, 0xbfc92b, 0xa01e91, 0xaff54c, 0x57faa6, 0x2bfd53,
	0xea04ad, 0x8af852, 0x457c29, 0xdd4410, 0x6ea208, 0x375104, 0x1ba882, 0x0dd441,
	0xf91024, 0x7c8812, 0x3e4409, 0xe0d800, 0x706c00, 0x383600, 0x1c1b00, 0x0e0d80,
	0x0706c0, 0x038360, 0x01c1b0, 0x00e0d8, 0x00706c, 0x003836, 0x001c1b, 0xfff409,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
	0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000, 0x000000,
}

// Checksum computes the 24-bit Mode S CRC over the data bits of msg
// (the trailing 24-bit CRC field does not contribute), which must hold
// at least bits/8 bytes. bits is 56 or 112. For a valid clear-CRC frame
// the result equals Residual(msg, bits); the residual is their xor.
func Checksum(msg []byte, bits int) uint32 {
	var offset int
	if bits != LongMsgBits {
		offset = LongMsgBits - ShortMsgBits
	}

	var c uint32
	for j := 0; j < bits; j++ {
		sByte := j / 8
		bitmask := byte(1) << (7 - uint(j%8))
		if msg[sByte]&bitmask != 0 {
			c ^= checksumTable[j+offset]
		}
	}
	return c
}

// Residual extracts the 24-bit CRC field carried in the last three bytes
// of a frame of the given bit length.
func Residual(msg []byte, bits int) uint32 {
	n := bits / 8
	return uint32(msg[n-3])<<16 | uint32(msg[n-2])<<8 | uint32(msg[n-1])
}

// Valid reports whether msg's trailing CRC field matches its computed
// checksum.
func Valid(msg []byte, bits int) bool {
	return Residual(msg, bits) == Checksum(msg, bits)
}

// FixSingleBitErrors tries every single bit flip of msg and returns the
// position of the flip that makes the checksum valid, rewriting msg in
// place on success. It returns -1 if no single bit flip repairs the
// message.
func FixSingleBitErrors(msg []byte, bits int) int {
	msgBytes := bits / 8
	aux := make([]byte, msgBytes)

	for j := 0; j < bits; j++ {
		sByte := j / 8
		bitmask := byte(1) << (7 - uint(j%8))

		copy(aux, msg)
		aux[sByte] ^= bitmask

		if Valid(aux, bits) {
			copy(msg, aux)
			return j
		}
	}
	return -1
}

// FixTwoBitsErrors tries every two-bit flip drawn from candidateBits (a
// ranked list of low-confidence bit positions; pass nil to try every bit
// pair, which is slow and should be reserved for aggressive mode). It
// rewrites msg in place on success and returns the two flipped positions
// packed as j | (i << 8), where j < i. Returns -1 on failure.
//
// When multiple two-bit combinations repair the message, the earliest
// pair (by j, then by i) wins, canonicalizing the tie between equally
// low-confidence bit positions.
func FixTwoBitsErrors(msg []byte, bits int, candidateBits []int) int {
	msgBytes := bits / 8
	aux := make([]byte, msgBytes)

	positions := candidateBits
	if positions == nil {
		positions = make([]int, bits)
		for i := range positions {
			positions[i] = i
		}
	}

	for a := 0; a < len(positions); a++ {
		j := positions[a]

		for b := a + 1; b < len(positions); b++ {
			i := positions[b]
			lo, hi := j, i
			if lo > hi {
				lo, hi = hi, lo
			}
			byte1 := lo / 8
			bitmask1 := byte(1) << (7 - uint(lo%8))
			byte2 := hi / 8
			bitmask2 := byte(1) << (7 - uint(hi%8))

			copy(aux, msg)
			aux[byte1] ^= bitmask1
			aux[byte2] ^= bitmask2

			if Valid(aux, bits) {
				copy(msg, aux)
				return lo | (hi << 8)
			}
		}
	}
	return -1
}

// MessageLenForDF returns the message length in bits implied by a
// Downlink Format value.
func MessageLenForDF(df int) int {
	switch df {
	case 16, 17, 18, 19, 20, 21, 24:
		return LongMsgBits
	default:
		return ShortMsgBits
	}
}

// SyndromeTable maps a single-bit-error CRC residual onto the bit
// position whose flip produced it, for a frame of a given length. It is
// built once per length and reused across messages; this is the
// "precomputed syndrome table" referenced by the design: for an all-zero
// message with exactly one bit set, the CRC field xor the computed
// checksum is the syndrome that bit contributes, which is also the
// residual observed when that bit alone is corrupted in an
// otherwise-valid frame (CRC linearity, see crc_test.go). A data bit
// contributes through the checksum, a CRC-field bit through the field.
type SyndromeTable struct {
	bits   int
	bySynd map[uint32]int
}

// NewSyndromeTable builds the single-bit syndrome table for frames of
// the given bit length.
func NewSyndromeTable(bits int) *SyndromeTable {
	t := &SyndromeTable{bits: bits, bySynd: make(map[uint32]int, bits)}
	msgBytes := bits / 8
	zero := make([]byte, msgBytes)
	for j := 0; j < bits; j++ {
		sByte := j / 8
		bitmask := byte(1) << (7 - uint(j%8))
		zero[sByte] = bitmask
		t.bySynd[Residual(zero, bits)^Checksum(zero, bits)] = j
		zero[sByte] = 0
	}
	return t
}

// Lookup returns the bit position that a given residual syndrome
// corresponds to, and whether an entry was found. syndrome should be the
// xor of the expected and observed CRC residuals.
func (t *SyndromeTable) Lookup(syndrome uint32) (int, bool) {
	pos, ok := t.bySynd[syndrome]
	return pos, ok
}
