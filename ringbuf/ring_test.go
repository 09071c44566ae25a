package ringbuf

import (
	"bytes"
	"testing"
	"time"

	"modes1090/stats"
)

type fakeClock struct{ t uint64 }

func (f *fakeClock) Now() (uint64, time.Time) { return f.t, time.Unix(0, 0) }
func (f *fakeClock) Advance(n int)             { f.t += uint64(n) }

func TestRingAcquirePublishNext(t *testing.T) {
	r := New(2, 16)
	slot, ok := r.Acquire()
	if !ok {
		t.Fatal("Acquire failed")
	}
	slot.Length = 4
	r.Publish()

	got, ok := r.Next()
	if !ok {
		t.Fatal("Next failed")
	}
	if got.Length != 4 {
		t.Fatalf("Length = %d, want 4", got.Length)
	}
	r.Release()
}

func TestRingRecordDropFeedsStats(t *testing.T) {
	r := New(1, 4)
	counters := stats.New()
	r.SetStats(counters)
	r.RecordDrop(3)
	r.RecordDrop(2)
	if got := r.Dropped(); got != 5 {
		t.Fatalf("Dropped() = %d, want 5", got)
	}
	if got := counters.Snapshot().DroppedSamples; got != 5 {
		t.Fatalf("stats.DroppedSamples = %d, want 5", got)
	}
}

func TestRingCloseUnblocks(t *testing.T) {
	r := New(1, 4)
	done := make(chan struct{})
	go func() {
		_, ok := r.Next()
		if ok {
			t.Error("expected Next to report closed")
		}
		close(done)
	}()
	r.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Next did not unblock on Close")
	}
}

func TestReaderCarriesOverlap(t *testing.T) {
	conv := SC16Converter{}
	raw := make([]byte, 4*16) // 16 IQ pairs: two reads of 8
	for i := range raw {
		raw[i] = byte(i)
	}
	ring := New(2, 32)
	rd := NewReader(bytes.NewReader(raw), conv, ring, &fakeClock{}, 8)

	if err := rd.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	buf, ok := ring.Next()
	if !ok {
		t.Fatal("expected a published buffer")
	}
	if buf.Length != 8 {
		t.Fatalf("Length = %d, want 8", buf.Length)
	}
	first := append([]uint16(nil), buf.Samples[OverlapSamples:OverlapSamples+8]...)
	ring.Release()

	next, ok := ring.Next()
	if !ok {
		t.Fatal("expected a second published buffer")
	}
	for i, want := range first {
		if got := next.Samples[OverlapSamples-8+i]; got != want {
			t.Fatalf("overlap sample %d = %d, want %d carried from the previous buffer", i, got, want)
		}
	}
}

func TestUC8ConverterLutSymmetry(t *testing.T) {
	c := NewUC8Converter()
	out := c.Convert([]byte{127, 127, 255, 255, 0, 0}, nil)
	if len(out) != 3 {
		t.Fatalf("len = %d, want 3", len(out))
	}
	if out[0] >= out[1] {
		t.Fatalf("center sample should have lower magnitude than full-scale corner: %d >= %d", out[0], out[1])
	}
}

func TestDCBlockRemovesOffset(t *testing.T) {
	base := SC16Converter{}
	dc := NewDCBlock(base, 0.1)
	raw := make([]byte, 4*64)
	for i := 0; i < 64; i++ {
		// constant strong I, zero Q: simulates a DC-biased front end.
		raw[4*i] = 0xFF
		raw[4*i+1] = 0x7F
	}
	out := dc.Convert(raw, nil)
	// after the filter settles, the reported magnitude should trend
	// toward zero since the signal has no AC component.
	if out[len(out)-1] >= out[0] {
		t.Fatalf("expected DC block to suppress the constant offset over time: first=%d last=%d", out[0], out[len(out)-1])
	}
}
