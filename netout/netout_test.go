package netout

import (
	"bytes"
	"strings"
	"testing"

	"modes1090/message"
	"modes1090/stats"
	"modes1090/tracker"
)

func TestSBSWriterFormatsIdentMessage(t *testing.T) {
	var buf bytes.Buffer
	w := NewSBSWriter(&buf)

	msg := &message.Message{DF: 17, METype: 4, Addr: 0x4840D6}
	ac := &tracker.AircraftSnapshot{Callsign: "KLM1023 "}

	if err := w.Publish(msg, ac); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	line := buf.String()
	if !strings.HasPrefix(line, "MSG,1,") {
		t.Fatalf("line = %q, want MSG,1,... prefix", line)
	}
	if !strings.Contains(line, "4840D6") {
		t.Fatalf("line missing hex address: %q", line)
	}
	if !strings.Contains(line, "KLM1023") {
		t.Fatalf("line missing callsign: %q", line)
	}
}

func TestSBSWriterSkipsUnmappedDF(t *testing.T) {
	var buf bytes.Buffer
	w := NewSBSWriter(&buf)
	msg := &message.Message{DF: 19} // not a BaseStation transmission type
	if err := w.Publish(msg, &tracker.AircraftSnapshot{}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output for an unmapped DF, got %q", buf.String())
	}
}

type countingWriter struct {
	calls int
}

func (c *countingWriter) Publish(*message.Message, *tracker.AircraftSnapshot) error {
	c.calls++
	return nil
}
func (c *countingWriter) Close() error { return nil }

func TestQueueDropsWhenFull(t *testing.T) {
	cw := &countingWriter{}
	q := NewQueue(cw, 0) // zero-depth: every publish should be visible to drop immediately unless drained fast enough
	msg := &message.Message{}
	ac := &tracker.AircraftSnapshot{}
	for i := 0; i < 10; i++ {
		q.Publish(msg, ac)
	}
	q.Close()
	if q.Dropped()+int64(cw.calls) != 10 {
		t.Fatalf("dropped(%d)+calls(%d) != 10", q.Dropped(), cw.calls)
	}
}

func TestQueueDropFeedsStats(t *testing.T) {
	cw := &countingWriter{}
	q := NewQueue(cw, 0)
	counters := stats.New()
	q.SetStats(counters)
	msg := &message.Message{}
	ac := &tracker.AircraftSnapshot{}
	for i := 0; i < 10; i++ {
		q.Publish(msg, ac)
	}
	q.Close()
	if got := counters.Snapshot().WriterDrops; got != q.Dropped() {
		t.Fatalf("stats.WriterDrops = %d, want %d (Queue.Dropped())", got, q.Dropped())
	}
}
