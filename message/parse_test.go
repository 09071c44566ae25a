package message

import (
	"encoding/hex"
	"testing"
	"time"

	"modes1090/icaofilter"
)

func hexBytes(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("bad hex %q: %v", s, err)
	}
	return b
}

// Boundary scenario #1.
func TestParse_DF17Identification(t *testing.T) {
	raw := hexBytes(t, "8D4840D6202CC371C32CE0576098")
	m, err := Parse(raw, ParseConfig{CheckCRC: true, SysTimestamp: time.Now()})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.DF != 17 {
		t.Fatalf("DF = %d, want 17", m.DF)
	}
	if m.Addr != 0x4840D6 {
		t.Fatalf("Addr = %06X, want 4840D6", m.Addr)
	}
	if m.CRC != 0 {
		t.Fatalf("CRC residual = %06X, want 0", m.CRC)
	}
	if m.METype != 4 {
		t.Fatalf("METype = %d, want 4", m.METype)
	}
	if m.Callsign != "KLM1023 " {
		t.Fatalf("Callsign = %q, want %q", m.Callsign, "KLM1023 ")
	}
}

// Boundary scenarios #3/#4: a single-bit-flipped copy of scenario 1 is
// accepted with corrected_bits=1 under nfix_crc=1, and rejected under
// nfix_crc=0.
func TestParse_SingleBitCorrection(t *testing.T) {
	raw := hexBytes(t, "8D4840D6202CC371C32CE0576098")
	raw[6] ^= 0x10 // flip a bit inside the ME field, well clear of the AA field

	if _, err := Parse(raw, ParseConfig{CheckCRC: true, NFixCRC: NFixNone}); err == nil {
		t.Fatalf("expected rejection at nfix_crc=0")
	}

	m, err := Parse(raw, ParseConfig{CheckCRC: true, NFixCRC: NFixOne})
	if err != nil {
		t.Fatalf("Parse with nfix_crc=1: %v", err)
	}
	if m.CorrectedBits != 1 {
		t.Fatalf("CorrectedBits = %d, want 1", m.CorrectedBits)
	}
	if m.Addr != 0x4840D6 {
		t.Fatalf("Addr after correction = %06X, want unchanged 4840D6", m.Addr)
	}
}

// Boundary scenario #5: DF4/DF20-shaped altitude reply, address overlaid
// with CRC, accepted once the address is in the IcaoFilter.
func TestParse_OverlaidAltitudeReply(t *testing.T) {
	raw := hexBytes(t, "A0001838CA3E51")
	filter := icaofilter.New(time.Minute)
	filter.Add(0x400000)

	m, err := Parse(raw, ParseConfig{CheckCRC: true, Filter: filter})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if m.Addr != 0x400000 {
		t.Fatalf("Addr = %06X, want 400000", m.Addr)
	}
	if !m.Valid.Has(FieldAltitude) {
		t.Fatalf("expected altitude to be decoded")
	}
	if m.Squawk != 0 {
		t.Fatalf("squawk should be untouched on a DF4/DF20-shaped reply, got %d", m.Squawk)
	}
}

func TestParse_OverlaidRejectsUnknownAddress(t *testing.T) {
	raw := hexBytes(t, "A0001838CA3E51")
	filter := icaofilter.New(time.Minute) // empty: address not seen

	if _, err := Parse(raw, ParseConfig{CheckCRC: true, Filter: filter}); err == nil {
		t.Fatalf("expected rejection when address is absent from IcaoFilter")
	}
}

func TestDownlinkFormatDF24Detection(t *testing.T) {
	if df := downlinkFormat(0xFF); df != 24 {
		t.Fatalf("downlinkFormat(0xFF) = %d, want 24", df)
	}
	if df := downlinkFormat(0x88); df != 17 {
		t.Fatalf("downlinkFormat(0x88) = %d, want 17", df)
	}
}

func TestScoreOrdering(t *testing.T) {
	good := &Message{DF: 17, CorrectedBits: 0}
	oneFix := &Message{DF: 17, CorrectedBits: 1}
	twoFix := &Message{DF: 17, CorrectedBits: 2}

	if Score(good, nil) <= Score(oneFix, nil) {
		t.Fatalf("uncorrected message should outscore a one-bit repair")
	}
	if Score(oneFix, nil) <= Score(twoFix, nil) {
		t.Fatalf("one-bit repair should outscore a two-bit repair")
	}
}

func TestBestCandidateTieBreak(t *testing.T) {
	candidates := []Candidate{
		{Message: &Message{DF: 17, CorrectedBits: 1}, Offset: 5},
		{Message: &Message{DF: 17, CorrectedBits: 1}, Offset: 2},
		{Message: &Message{DF: 17, CorrectedBits: 2}, Offset: 0},
	}
	best := BestCandidate(candidates, nil)
	if best == nil || best.Offset != 2 {
		t.Fatalf("expected earliest offset among equal-score/corrected candidates, got %+v", best)
	}
}

func TestResolveOverlapsKeepsDistinctFramesAndDedupesClose(t *testing.T) {
	candidates := []Candidate{
		{Message: &Message{DF: 17, CorrectedBits: 1}, Offset: 5},
		{Message: &Message{DF: 17, CorrectedBits: 0}, Offset: 8},
		{Message: &Message{DF: 17, CorrectedBits: 0}, Offset: 500},
	}
	out := ResolveOverlaps(candidates, 100, nil)
	if len(out) != 2 {
		t.Fatalf("expected 2 resolved candidates, got %d", len(out))
	}
	if out[0].Offset != 8 || out[0].Message.CorrectedBits != 0 {
		t.Fatalf("expected the uncorrected candidate at offset 8 to win the first cluster, got %+v", out[0])
	}
	if out[1].Offset != 500 {
		t.Fatalf("expected the far-offset candidate kept separately, got %+v", out[1])
	}
}
