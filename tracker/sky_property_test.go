package tracker

import (
	"math/rand"
	"testing"
	"time"

	"modes1090/message"

	"pgregory.net/rapid"
)

// TestMergeFieldsOrderIndependent checks the update rule
// converges to the same field value regardless of delivery order, as
// long as every message arrives within that field's TTL window (the
// rule is explicitly about source priority and timestamp, not arrival
// order).
func TestMergeFieldsOrderIndependent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(1, 8).Draw(t, "n")
		base := time.Now()

		type update struct {
			src  message.SourceTag
			offs time.Duration
			alt  int
		}
		updates := make([]update, n)
		for i := 0; i < n; i++ {
			updates[i] = update{
				src:  message.SourceTag(rapid.IntRange(int(message.SourceModeAC), int(message.SourceADSB)).Draw(t, "src")),
				offs: time.Duration(rapid.IntRange(0, 5000).Draw(t, "offsMs")) * time.Millisecond,
				alt:  rapid.IntRange(-1000, 50000).Draw(t, "alt"),
			}
		}

		// Determine the expected winner: highest source, ties broken by
		// latest timestamp.
		best := updates[0]
		for _, u := range updates[1:] {
			if u.src > best.src || (u.src == best.src && u.offs > best.offs) {
				best = u
			}
		}

		apply := func(order []int) int {
			sky := NewSky(Config{MinSourceForNewAircraft: message.SourceModeAC})
			var addr uint32 = 0x123456
			for _, i := range order {
				u := updates[i]
				msg := &message.Message{
					Addr:         addr,
					AddrType:     message.AddrADSBIcao,
					Source:       u.src,
					SysTimestamp: base.Add(u.offs),
					Valid:        message.FieldAltitude,
					Altitude:     u.alt,
				}
				sky.Update(msg)
			}
			a := sky.aircrafts[aircraftKey{addr: addr, addrType: message.AddrADSBIcao}]
			return a.altitudeVal
		}

		order1 := make([]int, n)
		for i := range order1 {
			order1[i] = i
		}
		order2 := append([]int(nil), order1...)
		rand.Shuffle(n, func(i, j int) { order2[i], order2[j] = order2[j], order2[i] })

		got1 := apply(order1)
		got2 := apply(order2)

		if got1 != best.alt {
			t.Fatalf("in-order result = %d, want %d (source %v)", got1, best.alt, best.src)
		}
		if got2 != best.alt {
			t.Fatalf("shuffled result = %d, want %d (source %v)", got2, best.alt, best.src)
		}
	})
}
