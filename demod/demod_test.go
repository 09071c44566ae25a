package demod

import (
	"testing"

	"modes1090/ringbuf"
	"modes1090/stats"
)

func TestSlicePhaseCorrelatorsSumToZero(t *testing.T) {
	// Each correlator's coefficients sum to zero, so a flat input
	// produces a zero correlation regardless of DC level.
	flat := []uint16{100, 100, 100, 100}
	if v := slicePhase0(flat); v != 0 {
		t.Fatalf("slicePhase0(flat) = %d, want 0", v)
	}
	if v := slicePhase4(flat); v != 0 {
		t.Fatalf("slicePhase4(flat) = %d, want 0", v)
	}
}

func TestBitValueSign(t *testing.T) {
	if bit, conf := bitValue(50); bit != 1 || conf != 50 {
		t.Fatalf("bitValue(50) = (%d,%d), want (1,50)", bit, conf)
	}
	if bit, conf := bitValue(-50); bit != 0 || conf != 50 {
		t.Fatalf("bitValue(-50) = (%d,%d), want (0,50)", bit, conf)
	}
}

func TestClassifyPreambleRejectsFlatNoise(t *testing.T) {
	flat := make([]uint16, 19)
	for i := range flat {
		flat[i] = 10
	}
	if _, ok := classifyPreamble(flat); ok {
		t.Fatalf("flat noise should not classify as a preamble")
	}
}

func TestClassifyPreamblePhase3Pattern(t *testing.T) {
	p := make([]uint16, 19)
	for i := range p {
		p[i] = 10
	}
	// peaks at 1,3,9,11,12; everything else low, matching the phase-3
	// pattern the preamble correlator recognizes.
	for _, idx := range []int{1, 3, 9, 11, 12} {
		p[idx] = 200
	}
	p[0] = 5
	high, ok := classifyPreamble(p)
	if !ok {
		t.Fatalf("expected phase-3 preamble pattern to classify")
	}
	if high == 0 {
		t.Fatalf("expected a nonzero high reference level")
	}
}

func TestScanFindsNoCandidatesInSilence(t *testing.T) {
	d := &Demodulator{}
	buf := &ringbuf.MagnitudeBuffer{Samples: make([]uint16, ringbuf.OverlapSamples+4096), Length: 4096}
	cands := d.Scan(buf)
	if len(cands) != 0 {
		t.Fatalf("expected no candidates in silence, got %d", len(cands))
	}
}

func TestTryAllPhasesFeedsDecodeFailures(t *testing.T) {
	counters := stats.New()
	d := &Demodulator{Stats: counters}
	// Too short for any phase to slice a full message: every phase's
	// decodeBitsAtPhase reports ok=false, so best stays nil.
	m := make([]uint16, 4)
	if cand := d.tryAllPhases(m, 0); cand != nil {
		t.Fatalf("expected no candidate from a too-short buffer, got %+v", cand)
	}
	if got := counters.Snapshot().DecodeFailures; got != 1 {
		t.Fatalf("stats.DecodeFailures = %d, want 1", got)
	}
}
