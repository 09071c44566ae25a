package tracker

import (
	"sync"
	"time"

	"modes1090/message"
	"modes1090/stats"
)

type aircraftKey struct {
	addr     uint32
	addrType message.AddressType
}

// Config bounds how aggressively the tracker accepts new aircraft and
// gates CPR-decoded positions (the update rule and range gate).
type Config struct {
	// ReceiverLat/Lon, if ReceiverSet, anchor the max-range gate and the
	// surface/coarse-TISB quadrant disambiguation.
	ReceiverLat, ReceiverLon float64
	ReceiverSet              bool

	// MaxRangeKm rejects any globally decoded position farther than this
	// from the receiver (the update rule: "Verify the result is within
	// max_range of the receiver (if configured); otherwise reject").
	// Zero disables the gate.
	MaxRangeKm float64

	// MinSourceForNewAircraft is the minimum SourceTag that may create a
	// new aircraft record (the update rule: "source >= ModeS_Checked unless
	// the message is the sole evidence available").
	MinSourceForNewAircraft message.SourceTag

	// Stats, if set, receives a CPRInconsistent increment alongside
	// Sky's own CPRInconsistentCount whenever a CPR pair is rejected.
	Stats *stats.Counters
}

// Sky is the tracker's aircraft table (the data model Aircraft and the update rule
// rule), generalizing this receiver's prior Sky/aircrafts map with source-
// priority field merge and CPR decode across all four encoding cases.
type Sky struct {
	mu        sync.Mutex
	aircrafts map[aircraftKey]*Aircraft
	cfg       Config

	cprInconsistent int64
}

// NewSky builds an empty tracker with the given acceptance/range
// configuration.
func NewSky(cfg Config) *Sky {
	if cfg.MinSourceForNewAircraft == message.SourceInvalid {
		cfg.MinSourceForNewAircraft = message.SourceModeSChecked
	}
	return &Sky{aircrafts: make(map[aircraftKey]*Aircraft), cfg: cfg}
}

// Count returns the number of tracked aircraft.
func (s *Sky) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.aircrafts)
}

// CPRInconsistentCount returns the cumulative count of CPR pairs
// rejected for NL mismatch, out-of-range, or staleness.
func (s *Sky) CPRInconsistentCount() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cprInconsistent
}

// recordCPRInconsistent bumps the local CPR-inconsistency count and, if
// configured, the shared stats.Counters. Callers hold s.mu.
func (s *Sky) recordCPRInconsistent() {
	s.cprInconsistent++
	if s.cfg.Stats != nil {
		s.cfg.Stats.CPRInconsistent.Add(1)
	}
}

// Snapshots returns a copy of every tracked aircraft's current fields.
func (s *Sky) Snapshots() []AircraftSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]AircraftSnapshot, 0, len(s.aircrafts))
	for _, a := range s.aircrafts {
		out = append(out, a.Snapshot())
	}
	return out
}

// Update applies msg to the aircraft table, creating a new record if
// the address passes acceptance, then merging every valid decoded field
// under the source-priority rule (the update rule "Update rule"). Returns nil
// if the message did not pass acceptance.
func (s *Sky) Update(msg *message.Message) *Aircraft {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := aircraftKey{addr: msg.Addr, addrType: msg.AddrType}
	a := s.aircrafts[key]
	if a == nil {
		if msg.Source < s.cfg.MinSourceForNewAircraft {
			return nil
		}
		a = &Aircraft{Addr: msg.Addr, AddrType: msg.AddrType, created: msg.SysTimestamp}
		s.aircrafts[key] = a
	}

	now := msg.SysTimestamp
	if now.IsZero() {
		now = time.Now()
	}
	a.lastSeen = now
	a.messageCount++

	s.mergeFields(a, msg, now)
	return a
}

func (s *Sky) mergeFields(a *Aircraft, msg *message.Message, now time.Time) {
	src := msg.Source

	if msg.Valid.Has(message.FieldAltitude) && a.altitude.winsOver(now, src, now) {
		a.altitudeVal = msg.Altitude
		a.altitudeUnit = msg.AltitudeUnit
		a.altitude = fieldState{source: src, seen: now, ttl: TTLAltitude}
	}
	if msg.Valid.Has(message.FieldHeading) && a.heading.winsOver(now, src, now) {
		a.headingVal = msg.Heading
		a.heading = fieldState{source: src, seen: now, ttl: TTLVelocity}
	}
	if msg.Valid.Has(message.FieldSpeed) && a.speed.winsOver(now, src, now) {
		a.speedVal = msg.Speed
		a.speed = fieldState{source: src, seen: now, ttl: TTLVelocity}
	}
	if msg.Valid.Has(message.FieldVerticalRate) && a.vrate.winsOver(now, src, now) {
		a.vrateVal = msg.VerticalRate
		a.vrate = fieldState{source: src, seen: now, ttl: TTLVelocity}
	}
	if msg.Valid.Has(message.FieldSquawk) && a.squawk.winsOver(now, src, now) {
		a.squawkVal = msg.Squawk
		a.squawk = fieldState{source: src, seen: now, ttl: TTLSquawk}
	}
	if msg.Valid.Has(message.FieldCallsign) && a.callsign.winsOver(now, src, now) {
		a.callsignVal = msg.Callsign
		a.callsign = fieldState{source: src, seen: now, ttl: TTLCallsign}
	}
	if msg.Valid.Has(message.FieldCategory) && a.category.winsOver(now, src, now) {
		a.categoryVal = msg.Category
		a.category = fieldState{source: src, seen: now, ttl: TTLCategory}
	}
	if msg.Valid.Has(message.FieldOperStatus) && a.operStatus.winsOver(now, src, now) {
		a.nic, a.nacp, a.nacv, a.sil, a.gva, a.sda = msg.NIC, msg.NACp, msg.NACv, msg.SIL, msg.GVA, msg.SDA
		a.operStatus = fieldState{source: src, seen: now, ttl: TTLOperStatus}
	}
	if msg.Valid.Has(message.FieldOnGround) && a.onGround.winsOver(now, src, now) {
		a.onGroundVal = msg.OnGround
		a.onGround = fieldState{source: src, seen: now, ttl: TTLPosition}
	}
	if msg.Valid.Has(message.FieldAlert) && a.alert.winsOver(now, src, now) {
		a.alertVal = msg.Alert
		a.alert = fieldState{source: src, seen: now, ttl: TTLVelocity}
	}
	if msg.Valid.Has(message.FieldSPI) && a.spi.winsOver(now, src, now) {
		a.spiVal = msg.SPI
		a.spi = fieldState{source: src, seen: now, ttl: TTLVelocity}
	}

	if msg.Valid.Has(message.FieldCPR) {
		s.applyCPR(a, msg, now)
	}
}

// RemoveStale deletes any aircraft whose display TTL has elapsed since
// its last message (the update rule Lifecycle: "removed when no field has
// been updated within the display TTL").
func (s *Sky) RemoveStale(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, a := range s.aircrafts {
		if now.Sub(a.lastSeen) > TTLDisplay {
			delete(s.aircrafts, k)
			removed++
		}
	}
	return removed
}
