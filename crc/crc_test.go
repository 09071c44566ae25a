package crc

import (
	"encoding/hex"
	"testing"

	"pgregory.net/rapid"
)

func mustDecodeHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad test hex %q: %v", s, err)
	}
	return b
}

// Boundary scenario #1: a DF17 squitter whose CRC residual is zero and
// decodes to a known address.
func TestChecksum_DF17Scenario(t *testing.T) {
	msg := mustDecodeHex(t, "8D4840D6202CC371C32CE0576098")
	if !Valid(msg, LongMsgBits) {
		t.Fatalf("expected valid CRC, residual=%06X computed=%06X", Residual(msg, LongMsgBits), Checksum(msg, LongMsgBits))
	}
	if got := Residual(msg, LongMsgBits) ^ Checksum(msg, LongMsgBits); got != 0 {
		t.Fatalf("expected residual 0 for DF17, got %06X", got)
	}
}

// Boundary scenario #3/#4: a single bit flip in the same message is
// repairable at nfix_crc=1 and must be rejected at nfix_crc=0.
func TestFixSingleBitErrors(t *testing.T) {
	msg := mustDecodeHex(t, "8D4840D6202CC371C32CE0576098")
	flipped := make([]byte, len(msg))
	copy(flipped, msg)
	flipped[2] ^= 0x08 // flip one bit well inside the payload

	if Valid(flipped, LongMsgBits) {
		t.Fatalf("flipped message should not validate without correction")
	}

	pos := FixSingleBitErrors(flipped, LongMsgBits)
	if pos < 0 {
		t.Fatalf("expected single-bit correction to succeed")
	}
	if !Valid(flipped, LongMsgBits) {
		t.Fatalf("message should validate after correction")
	}
	for i := range msg {
		if msg[i] != flipped[i] {
			t.Fatalf("corrected message does not match original at byte %d: %02X != %02X", i, flipped[i], msg[i])
		}
	}
}

// Idempotency: checksum of the same bytes computed twice matches.
func TestChecksumIdempotent(t *testing.T) {
	msg := mustDecodeHex(t, "A0001838CA3E51")
	c1 := Checksum(msg, ShortMsgBits)
	c2 := Checksum(msg, ShortMsgBits)
	if c1 != c2 {
		t.Fatalf("checksum not idempotent: %06X != %06X", c1, c2)
	}
}

// CRC linearity: crc(M^F) == crc(M) ^ crc(F) for any single-bit flip F.
func TestChecksumLinearity(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		bits := rapid.SampledFrom([]int{ShortMsgBits, LongMsgBits}).Draw(t, "bits")
		n := bits / 8
		msg := make([]byte, n)
		for i := range msg {
			msg[i] = byte(rapid.IntRange(0, 255).Draw(t, "byte"))
		}
		flipBit := rapid.IntRange(0, bits-1).Draw(t, "flipBit")

		flipped := make([]byte, n)
		copy(flipped, msg)
		flipped[flipBit/8] ^= 1 << (7 - uint(flipBit%8))

		f := make([]byte, n)
		f[flipBit/8] = 1 << (7 - uint(flipBit%8))

		got := Checksum(flipped, bits)
		want := Checksum(msg, bits) ^ Checksum(f, bits)
		if got != want {
			t.Fatalf("crc(M^F) = %06X, want crc(M)^crc(F) = %06X", got, want)
		}
	})
}

func TestSyndromeTableSingleBit(t *testing.T) {
	table := NewSyndromeTable(LongMsgBits)
	msg := mustDecodeHex(t, "8D4840D6202CC371C32CE0576098")

	for bit := 0; bit < LongMsgBits; bit++ {
		flipped := make([]byte, len(msg))
		copy(flipped, msg)
		flipped[bit/8] ^= 1 << (7 - uint(bit%8))

		syndrome := Residual(flipped, LongMsgBits) ^ Checksum(flipped, LongMsgBits)
		pos, ok := table.Lookup(syndrome)
		if !ok {
			t.Fatalf("bit %d: no syndrome table entry", bit)
		}
		if pos != bit {
			t.Fatalf("bit %d: syndrome table returned bit %d", bit, pos)
		}
	}
}

func TestMessageLenForDF(t *testing.T) {
	cases := map[int]int{
		0: ShortMsgBits, 4: ShortMsgBits, 5: ShortMsgBits, 11: ShortMsgBits,
		16: LongMsgBits, 17: LongMsgBits, 18: LongMsgBits, 19: LongMsgBits,
		20: LongMsgBits, 21: LongMsgBits, 24: LongMsgBits,
	}
	for df, want := range cases {
		if got := MessageLenForDF(df); got != want {
			t.Errorf("MessageLenForDF(%d) = %d, want %d", df, got, want)
		}
	}
}
