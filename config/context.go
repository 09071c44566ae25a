// Package config wires the pipeline's stages into a single Context,
// generalizing this receiver's earlier main.go Context{decoder, sky} pair
// into the full set of shared state a run needs: the ring buffer, the
// demodulator/parser configuration, the ICAO filter, the aircraft
// table, the output writers, and the running counters.
package config

import (
	"context"
	"time"

	"modes1090/icaofilter"
	"modes1090/message"
	"modes1090/netout"
	"modes1090/ringbuf"
	"modes1090/snapshot"
	"modes1090/stats"
	"modes1090/tracker"
)

// Options mirrors the command-line surface the output format describes. Zero
// values are valid defaults (no fix-up, no CRC bypass, no location).
type Options struct {
	DeviceType string
	Gain       float64
	FreqHz     float64

	NFixCRC    message.NFixCRC
	NoCRCCheck bool
	ModeAC     bool
	Aggressive bool

	ReceiverLat, ReceiverLon float64
	ReceiverSet              bool
	MaxRangeKm               float64

	JSONDir              string
	JSONIntervalSeconds  int
	JSONLocationAccuracy int
	HistorySlots         int

	NetOnly     bool
	ShowOnly    uint32
	ForwardMLAT bool
	NetVerbatim bool
}

// Context holds everything a running receiver needs, built once at
// startup and shared by the demodulation, tracking, and output
// goroutines.
type Context struct {
	Opts Options

	Ring   *ringbuf.Ring
	Filter *icaofilter.Filter
	Sky    *tracker.Sky
	Stats  *stats.Counters

	Writers      []netout.Writer
	SnapshotOut  *snapshot.Writer
	historySlots int

	ParseConfig message.ParseConfig
}

// NewContext builds a Context from Options, constructing the ring
// buffer, ICAO filter, aircraft table and counters with spec-derived
// defaults (generalizes this receiver's earlier CreateContext, which only ever
// built a bare Decoder and Sky with no configuration surface at all).
func NewContext(opts Options, ringDepth, sampleCapacity int) *Context {
	filter := icaofilter.New(60 * time.Second)
	counters := stats.New()

	ctx := &Context{
		Opts:   opts,
		Ring:   ringbuf.New(ringDepth, sampleCapacity),
		Filter: filter,
		Sky: tracker.NewSky(tracker.Config{
			ReceiverLat: opts.ReceiverLat,
			ReceiverLon: opts.ReceiverLon,
			ReceiverSet: opts.ReceiverSet,
			MaxRangeKm:  opts.MaxRangeKm,
			Stats:       counters,
		}),
		Stats: counters,
		ParseConfig: message.ParseConfig{
			NFixCRC:  opts.NFixCRC,
			CheckCRC: !opts.NoCRCCheck,
			Filter:   filter,
		},
	}
	ctx.Ring.SetStats(counters)

	if opts.JSONDir != "" {
		slots := opts.HistorySlots
		if slots == 0 {
			slots = 120
		}
		ctx.historySlots = slots
		ctx.SnapshotOut = snapshot.NewWriter(opts.JSONDir, slots)
	}

	return ctx
}

// WriteReceiverInfo renders the one-shot receiver.json describing this
// run's configuration (version string and refresh interval the client
// should poll aircraft.json at). A no-op if no JSON directory was
// configured. Unlike WriteSnapshots, callers write this once at
// startup rather than on every tick.
func (c *Context) WriteReceiverInfo(version string) error {
	if c.SnapshotOut == nil {
		return nil
	}
	r := snapshot.Receiver{
		Version:     version,
		RefreshRate: c.Opts.JSONIntervalSeconds,
		History:     c.historySlots,
	}
	if c.Opts.ReceiverSet {
		r.Lat, r.Lon = c.Opts.ReceiverLat, c.Opts.ReceiverLon
	}
	return c.SnapshotOut.WriteReceiver(r)
}

// AddWriter registers an output writer (typically wrapped in a
// netout.Queue) to receive every accepted message.
func (c *Context) AddWriter(w netout.Writer) {
	c.Writers = append(c.Writers, w)
}

// Publish hands msg/snapshot to every registered writer.
func (c *Context) Publish(msg *message.Message, ac *tracker.AircraftSnapshot) {
	for _, w := range c.Writers {
		w.Publish(msg, ac)
	}
}

// Close shuts down every registered writer.
func (c *Context) Close() error {
	var first error
	for _, w := range c.Writers {
		if err := w.Close(); first == nil && err != nil {
			first = err
		}
	}
	return first
}

// WriteSnapshots renders the current aircraft table to aircraft.json
// and the next history slot, a no-op if no JSON directory was
// configured.
func (c *Context) WriteSnapshots(now time.Time) error {
	if c.SnapshotOut == nil {
		return nil
	}
	snaps := c.Sky.Snapshots()
	aircraft := make([]snapshot.Aircraft, 0, len(snaps))
	for _, s := range snaps {
		aircraft = append(aircraft, snapshot.FromSnapshot(s, now, c.Stats.MessagesTotal.Load()))
	}
	scan := snapshot.Scan{
		Now:      float64(now.Unix()),
		Messages: c.Stats.MessagesTotal.Load(),
		Aircraft: aircraft,
	}
	if err := c.SnapshotOut.WriteAircraft(scan); err != nil {
		return err
	}
	return c.SnapshotOut.WriteHistory(scan)
}

// ShouldForward reports whether an already-decoded message should be
// handed to the writers, honoring the --show-only address filter.
func (c *Context) ShouldForward(msg *message.Message) bool {
	if c.Opts.ShowOnly != 0 && msg.Addr != c.Opts.ShowOnly {
		return false
	}
	return true
}

// BackgroundContext derives a cancellable context.Context for the
// receiver's lifetime. It does not subscribe to OS signals; cancellation
// happens only through the returned CancelFunc.
func BackgroundContext() (context.Context, context.CancelFunc) {
	return context.WithCancel(context.Background())
}
