// Package tracker maintains the per-aircraft state table: source-
// priority field merge, per-field expiry, and CPR global/local/surface/
// coarse-TISB position decode (the update rule).
//
// Generalizes this receiver's prior mode_s/aircraft.go Aircraft/Sky, whose
// UpdateData unconditionally overwrote every field on each new message
// and whose decodeCPR only ever performed a global decode with no NL-
// mismatch rejection, range gate, or local/surface/coarse-TISB cases.
package tracker

import (
	"time"

	"modes1090/message"
)

// Default per-field TTLs (the update rule "Per-field expiry").
const (
	TTLPosition    = 60 * time.Second
	TTLAltitude    = 15 * time.Second
	TTLVelocity    = 15 * time.Second
	TTLCallsign    = 300 * time.Second
	TTLSquawk      = 60 * time.Second
	TTLCategory    = 600 * time.Second
	TTLOperStatus  = 60 * time.Second
	TTLDisplay     = 60 * time.Second // aircraft record removed if nothing updated within this
	cprPairMaxSkew = 10 * time.Second
)

// fieldState records which source last wrote a field and when, the
// provenance bookkeeping the merge rule needs per field: updates record
// the new source and timestamp so a later, lower-priority source can't
// clobber a still-fresh higher-priority value.
type fieldState struct {
	source message.SourceTag
	seen   time.Time
	ttl    time.Duration
}

func (f fieldState) expired(now time.Time) bool {
	return f.seen.IsZero() || now.Sub(f.seen) > f.ttl
}

// winsOver reports whether a message with the given source/timestamp
// should overwrite a field currently in state f (the update rule).
func (f fieldState) winsOver(now time.Time, src message.SourceTag, ts time.Time) bool {
	if f.expired(now) {
		return true
	}
	if src > f.source {
		return true
	}
	if src == f.source && ts.After(f.seen) {
		return true
	}
	return false
}

// cprFrame is one half of an even/odd CPR pair for a given encoding
// type (airborne, surface, or coarse TIS-B).
type cprFrame struct {
	lat, lon int
	nBits    int
	seen     time.Time
	valid    bool
}

// Aircraft is the tracker's per-address record (the data model Aircraft).
type Aircraft struct {
	Addr     uint32
	AddrType message.AddressType

	created time.Time

	altitude     fieldState
	altitudeVal  int
	altitudeUnit message.Unit

	heading    fieldState
	headingVal float64

	speed    fieldState
	speedVal float64

	vrate    fieldState
	vrateVal int

	squawk    fieldState
	squawkVal int

	callsign    fieldState
	callsignVal string

	category    fieldState
	categoryVal int

	operStatus fieldState

	onGround    fieldState
	onGroundVal bool

	alert, spi fieldState
	alertVal   bool
	spiVal     bool

	nic, nacp, nacv, sil, gva, sda int

	// CPR state, per encoding type.
	evenAirborne, oddAirborne cprFrame
	evenSurface, oddSurface   cprFrame
	coarseTISB                cprFrame

	position    fieldState
	lat, lon    float64
	cprRelative bool
	rangeMeters float64

	messageCount int64
	lastSeen     time.Time
}

// AircraftSnapshot is the read-only, copy-not-aliased view handed to output
// writers (the update rule Resource policy: "references handed to outputs are
// read-only snapshots or copied fields, never aliased mutable state").
type AircraftSnapshot struct {
	Addr         uint32
	AddrType     message.AddressType
	Callsign     string
	Altitude     int
	AltitudeSet  bool
	Heading      float64
	HeadingSet   bool
	Speed        float64
	SpeedSet     bool
	VerticalRate int
	VRateSet     bool
	Squawk       int
	SquawkSet    bool
	OnGround     bool
	Alert        bool
	SPI          bool
	Lat, Lon     float64
	PositionSet  bool
	RangeMeters  float64
	LastSeen     time.Time
	Messages     int64
}

// Snapshot copies the aircraft's current fields into an immutable value.
func (a *Aircraft) Snapshot() AircraftSnapshot {
	return AircraftSnapshot{
		Addr:         a.Addr,
		AddrType:     a.AddrType,
		Callsign:     a.callsignVal,
		Altitude:     a.altitudeVal,
		AltitudeSet:  !a.altitude.seen.IsZero(),
		Heading:      a.headingVal,
		HeadingSet:   !a.heading.seen.IsZero(),
		Speed:        a.speedVal,
		SpeedSet:     !a.speed.seen.IsZero(),
		VerticalRate: a.vrateVal,
		VRateSet:     !a.vrate.seen.IsZero(),
		Squawk:       a.squawkVal,
		SquawkSet:    !a.squawk.seen.IsZero(),
		OnGround:     a.onGroundVal,
		Alert:        a.alertVal,
		SPI:          a.spiVal,
		Lat:          a.lat,
		Lon:          a.lon,
		PositionSet:  !a.position.seen.IsZero(),
		RangeMeters:  a.rangeMeters,
		LastSeen:     a.lastSeen,
		Messages:     a.messageCount,
	}
}
