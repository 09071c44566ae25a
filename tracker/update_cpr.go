package tracker

import (
	"time"

	"modes1090/message"
)

// applyCPR stores the incoming CPR frame and attempts a decode,
// following the update rule's three cases in priority order: a fresh
// even/odd global pair, then a local (relative) decode against the
// aircraft's last known position, then (for surface/coarse-TISB) the
// quadrant/reference-anchored variants.
func (s *Sky) applyCPR(a *Aircraft, msg *message.Message, now time.Time) {
	switch msg.CPRType {
	case message.CPRAirborne:
		s.applyCPRAirborne(a, msg, now)
	case message.CPRSurface:
		s.applyCPRSurface(a, msg, now)
	case message.CPRCoarseTISB:
		s.applyCPRCoarse(a, msg, now)
	}
}

func (a *Aircraft) frameSlot(odd bool, surface bool) *cprFrame {
	switch {
	case surface && odd:
		return &a.oddSurface
	case surface && !odd:
		return &a.evenSurface
	case odd:
		return &a.oddAirborne
	default:
		return &a.evenAirborne
	}
}

func (s *Sky) applyCPRAirborne(a *Aircraft, msg *message.Message, now time.Time) {
	slot := a.frameSlot(msg.CPROdd, false)
	*slot = cprFrame{lat: msg.CPRLat, lon: msg.CPRLon, nBits: msg.CPRNBitsLat, seen: now, valid: true}

	if a.evenAirborne.valid && a.oddAirborne.valid {
		skew := a.evenAirborne.seen.Sub(a.oddAirborne.seen)
		if skew < 0 {
			skew = -skew
		}
		if skew <= cprPairMaxSkew {
			res, err := decodeCPRGlobal(a.evenAirborne.lat, a.evenAirborne.lon, a.oddAirborne.lat, a.oddAirborne.lon, msg.CPROdd)
			if err == nil && s.withinRange(res) {
				a.lat, a.lon = res.lat, res.lon
				a.cprRelative = false
				a.position = fieldState{source: msg.Source, seen: now, ttl: TTLPosition}
				a.rangeMeters = s.rangeTo(res)
				return
			}
			// NL mismatch or out-of-range: reset both frames and count
			// the rejection (the update rule CPR inconsistency).
			a.evenAirborne = cprFrame{}
			a.oddAirborne = cprFrame{}
			s.recordCPRInconsistent()
			return
		}
		// Stale pair: reset both frames, count it, and fall through to
		// a local decode attempt using this message's frame.
		a.evenAirborne = cprFrame{}
		a.oddAirborne = cprFrame{}
		s.recordCPRInconsistent()
	}

	if a.position.seen.IsZero() {
		return
	}
	if now.Sub(a.position.seen) > TTLPosition {
		return
	}
	res := decodeCPRLocal(a.lat, a.lon, msg.CPRLat, msg.CPRLon, msg.CPROdd)
	if !s.withinRange(res) {
		return
	}
	if haversineKm(a.lat, a.lon, res.lat, res.lon) > localZoneRadiusKm {
		return
	}
	a.lat, a.lon = res.lat, res.lon
	a.cprRelative = true
	a.position = fieldState{source: msg.Source, seen: now, ttl: TTLPosition}
	a.rangeMeters = s.rangeTo(res)
}

func (s *Sky) applyCPRSurface(a *Aircraft, msg *message.Message, now time.Time) {
	slot := a.frameSlot(msg.CPROdd, true)
	*slot = cprFrame{lat: msg.CPRLat, lon: msg.CPRLon, nBits: msg.CPRNBitsLat, seen: now, valid: true}

	refLat, refLon, haveRef := s.surfaceReference(a)
	if !haveRef {
		return // no nearby reference to disambiguate the quadrant
	}

	if a.evenSurface.valid && a.oddSurface.valid {
		skew := a.evenSurface.seen.Sub(a.oddSurface.seen)
		if skew < 0 {
			skew = -skew
		}
		if skew > cprPairMaxSkew {
			s.recordCPRInconsistent()
			a.evenSurface = cprFrame{}
			a.oddSurface = cprFrame{}
			return
		}
		res, err := decodeCPRSurfaceGlobal(a.evenSurface.lat, a.evenSurface.lon, a.oddSurface.lat, a.oddSurface.lon, msg.CPROdd, refLat, refLon)
		if err != nil {
			s.recordCPRInconsistent()
			a.evenSurface = cprFrame{}
			a.oddSurface = cprFrame{}
			return
		}
		a.lat, a.lon = res.lat, res.lon
		a.cprRelative = false
		a.position = fieldState{source: msg.Source, seen: now, ttl: TTLPosition}
		a.rangeMeters = s.rangeTo(res)
	}
}

// surfaceReference returns the best available anchor for disambiguating
// a surface position's quartered zone: the aircraft's own last known
// position if fresh, otherwise the configured receiver location
// ("require a recent nearby reference: receiver location or prior
// track").
func (s *Sky) surfaceReference(a *Aircraft) (lat, lon float64, ok bool) {
	if !a.position.seen.IsZero() {
		return a.lat, a.lon, true
	}
	if s.cfg.ReceiverSet {
		return s.cfg.ReceiverLat, s.cfg.ReceiverLon, true
	}
	return 0, 0, false
}

func (s *Sky) applyCPRCoarse(a *Aircraft, msg *message.Message, now time.Time) {
	refLat, refLon, ok := s.surfaceReference(a)
	if !ok {
		return
	}
	res := decodeCPRCoarseTISB(refLat, refLon, msg.CPRLat, msg.CPRLon, msg.CPROdd)
	if !s.withinRange(res) {
		return
	}
	a.lat, a.lon = res.lat, res.lon
	a.cprRelative = true
	a.position = fieldState{source: msg.Source, seen: now, ttl: TTLPosition}
	a.rangeMeters = s.rangeTo(res)
}

func (s *Sky) withinRange(res cprResult) bool {
	if !s.cfg.ReceiverSet || s.cfg.MaxRangeKm <= 0 {
		return true
	}
	return haversineKm(s.cfg.ReceiverLat, s.cfg.ReceiverLon, res.lat, res.lon) <= s.cfg.MaxRangeKm
}

func (s *Sky) rangeTo(res cprResult) float64 {
	if !s.cfg.ReceiverSet {
		return 0
	}
	return haversineKm(s.cfg.ReceiverLat, s.cfg.ReceiverLon, res.lat, res.lon) * 1000
}
