package modeac

import "testing"

func TestModeABitsToSquawk(t *testing.T) {
	// No pulse bits set should decode as squawk 0000.
	if got := modeABitsToSquawk(0); got != 0 {
		t.Fatalf("modeABitsToSquawk(0) = %d, want 0", got)
	}
}

func TestScanRejectsMismatchedFraming(t *testing.T) {
	m := make([]uint16, 64)
	m[0] = 1000
	m[20] = 10 // far below f1, should reject the framing-consistency check
	d := Detector{}
	if got := d.Scan(m); len(got) != 0 {
		t.Fatalf("expected no frames with mismatched framing pulses, got %d", len(got))
	}
}

func TestScanFindsFrameWithConsistentFraming(t *testing.T) {
	m := make([]uint16, 64)
	m[0] = 500
	m[20] = 500
	for _, off := range dataPulseOffsets {
		m[off] = 600
	}
	d := Detector{}
	got := d.Scan(m)
	if len(got) == 0 {
		t.Fatalf("expected at least one frame with all data pulses above threshold")
	}
}
