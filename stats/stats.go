// Package stats holds the process-wide counters the status view
// needs: samples dropped before demodulation, messages
// that failed CRC/parsing, addresses rejected by the ICAO filter, CPR
// pairs rejected as inconsistent, and writer queue drops. Every counter
// is a plain atomic.Int64 updated from whichever goroutine owns that
// stage, preferring simple shared counters over a metrics library.
package stats

import "sync/atomic"

// Counters is a fixed set of atomic counters shared across the
// pipeline's stages.
type Counters struct {
	DroppedSamples      atomic.Int64
	DecodeFailures      atomic.Int64
	AddressGateRejects  atomic.Int64
	CPRInconsistent     atomic.Int64
	WriterDrops         atomic.Int64
	MessagesTotal       atomic.Int64
	ModeACMessagesTotal atomic.Int64
}

// New returns a zeroed Counters.
func New() *Counters { return &Counters{} }

// Snapshot is a point-in-time copy suitable for JSON encoding or
// display, since atomic.Int64 itself is not safely copyable.
type Snapshot struct {
	DroppedSamples      int64 `json:"dropped_samples"`
	DecodeFailures      int64 `json:"decode_failures"`
	AddressGateRejects  int64 `json:"address_gate_rejects"`
	CPRInconsistent     int64 `json:"cpr_inconsistent"`
	WriterDrops         int64 `json:"writer_drops"`
	MessagesTotal       int64 `json:"messages_total"`
	ModeACMessagesTotal int64 `json:"mode_ac_messages_total"`
}

// Snapshot reads every counter into a Snapshot.
func (c *Counters) Snapshot() Snapshot {
	return Snapshot{
		DroppedSamples:      c.DroppedSamples.Load(),
		DecodeFailures:      c.DecodeFailures.Load(),
		AddressGateRejects:  c.AddressGateRejects.Load(),
		CPRInconsistent:     c.CPRInconsistent.Load(),
		WriterDrops:         c.WriterDrops.Load(),
		MessagesTotal:       c.MessagesTotal.Load(),
		ModeACMessagesTotal: c.ModeACMessagesTotal.Load(),
	}
}
