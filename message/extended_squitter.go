package message

// wakeVortexCategory maps metype 1-4 into the aircraft category the
// spec's data model calls "category" (the data model Message: "category").
// Category is (metype<<3)|mesub in the ADS-B standard; callers needing
// the human string can format it themselves.
func wakeVortexCategory(metype, mesub int) int {
	return (metype << 3) | mesub
}

// decodeExtendedSquitter dispatches DF17/DF18 payloads on ME type. msg
// must be the full 112-bit (14-byte) frame; the AA field
// (bytes 1-3) has already been used to populate m.Addr by the caller.
func decodeExtendedSquitter(m *Message, msg []byte) {
	m.Addr = ICAOAddr(msg[1], msg[2], msg[3])
	m.METype = int(msg[4]) >> 3
	m.MESub = int(msg[4]) & 7

	switch {
	case m.METype >= 1 && m.METype <= 4:
		decodeIdentAndCategory(m, msg)
	case m.METype >= 5 && m.METype <= 8:
		decodeSurfacePosition(m, msg)
	case m.METype >= 9 && m.METype <= 18:
		decodeAirbornePosition(m, msg, false)
	case m.METype == 19 && m.MESub >= 1 && m.MESub <= 4:
		m.decodeAirborneVelocity(msg)
		m.Valid |= FieldSpeed | FieldVerticalRate
		if m.HeadingValid {
			m.Valid |= FieldHeading
		}
		if m.GNSSDeltaValid {
			m.Valid |= FieldGNSSDelta
		}
	case m.METype >= 20 && m.METype <= 22:
		decodeAirbornePosition(m, msg, true)
	case m.METype >= 23 && m.METype <= 27:
		// Reserved/test messages: nothing decoded (the parsing rules dispatch
		// table lists 23-27 as "reserved/test").
	case m.METype == 28:
		decodeAircraftStatus(m, msg)
	case m.METype == 29:
		decodeTargetState(m, msg)
	case m.METype == 31:
		decodeOperationalStatus(m, msg)
	}
}

func decodeIdentAndCategory(m *Message, msg []byte) {
	m.Category = wakeVortexCategory(m.METype, m.MESub)
	m.Valid |= FieldCategory
	m.Callsign = DecodeCallsign(msg)
	m.Valid |= FieldCallsign
}

// decodeAirbornePosition handles metype 9-18 (barometric altitude) and
// 20-22 (GNSS height), which share a bit layout apart from the altitude
// field's units (the parsing rules: "airborne baro position" / "airborne GNSS
// position").
func decodeAirbornePosition(m *Message, msg []byte, gnss bool) {
	m.OnGround = false
	m.Valid |= FieldOnGround

	odd := int(msg[6])&(1<<2) != 0
	m.CPROdd = odd
	m.CPRType = CPRAirborne
	m.CPRNBitsLat = 17
	m.CPRLat = ((int(msg[6]) & 3) << 15) | (int(msg[7]) << 7) | (int(msg[8]) >> 1)
	m.CPRLon = ((int(msg[8]) & 1) << 16) | (int(msg[9]) << 8) | int(msg[10])
	m.Valid |= FieldCPR

	if gnss {
		// GNSS height ME types carry altitude directly in (25*N) meters
		// above the WGS84 ellipsoid for metype 20-21-22; the AC12 layout
		// is reused since both encode an 11-bit count plus the same
		// Q-bit semantics in this lineage's ME field.
		if alt, unit, ok := DecodeAC12Field(msg); ok {
			m.Altitude, m.AltitudeUnit = alt, unit
			m.Valid |= FieldAltitude
		}
		return
	}

	if alt, unit, ok := DecodeAC12Field(msg); ok {
		m.Altitude, m.AltitudeUnit = alt, unit
		m.Valid |= FieldAltitude
	}

	nicSupplementBit := int(msg[6])&(1<<3) != 0
	if nicSupplementBit {
		m.NIC = 1
	}
}

// decodeSurfacePosition handles metype 5-8 (surface position): same CPR
// layout as airborne but the velocity/heading fields are packed into the
// bits airborne position spends on altitude (the update rule: "Surface frames
// use a quartered zone").
func decodeSurfacePosition(m *Message, msg []byte) {
	m.OnGround = true
	m.Valid |= FieldOnGround

	movement := (int(msg[4]) & 7 << 4) | (int(msg[5]) >> 4)
	if speed, ok := decodeSurfaceMovement(movement); ok {
		m.Speed = speed
		m.SpeedValid = true
		m.Valid |= FieldSpeed
	}

	headingValid := int(msg[5])&0x08 != 0
	if headingValid {
		raw := ((int(msg[5]) & 7) << 4) | (int(msg[6]) >> 4)
		m.Heading = float64(raw) * 360.0 / 128.0
		m.HeadingValid = true
		m.Valid |= FieldHeading
	}

	odd := int(msg[6])&(1<<2) != 0
	m.CPROdd = odd
	m.CPRType = CPRSurface
	m.CPRNBitsLat = 17
	m.CPRLat = ((int(msg[6]) & 3) << 15) | (int(msg[7]) << 7) | (int(msg[8]) >> 1)
	m.CPRLon = ((int(msg[8]) & 1) << 16) | (int(msg[9]) << 8) | int(msg[10])
	m.Valid |= FieldCPR
}

// decodeSurfaceMovement converts the 7-bit ADS-B "movement" field into
// knots, following the piecewise table defined for surface position
// messages (ICAO Annex 10 Vol IV Table 2-14, re-expressed in Go idiom —
// no repo in the pack implements surface speed, so this is written from
// the standard's published breakpoints rather than grounded on any one
// file).
func decodeSurfaceMovement(v int) (knots float64, ok bool) {
	switch {
	case v == 0:
		return 0, false
	case v == 1:
		return 0, true
	case v >= 2 && v <= 8:
		return 0.125 + float64(v-2)*0.125, true
	case v >= 9 && v <= 12:
		return 1 + float64(v-9)*0.25, true
	case v >= 13 && v <= 38:
		return 2 + float64(v-13)*0.5, true
	case v >= 39 && v <= 93:
		return 15 + float64(v-39), true
	case v >= 94 && v <= 108:
		return 70 + float64(v-94)*2, true
	case v >= 109 && v <= 123:
		return 100 + float64(v-109)*5, true
	case v == 124:
		return 175, true
	default:
		return 0, false
	}
}

// decodeAircraftStatus handles metype 28: emergency/priority status
// (mesub 1) and 1090ES TCAS resolution advisory broadcast (mesub 2).
func decodeAircraftStatus(m *Message, msg []byte) {
	switch m.MESub {
	case 1:
		emergencyState := int(msg[5]) >> 5
		m.Squawk = DecodeSquawk(msg[3:]) // ID field follows the emergency bits in byte 5: same interleave, three bytes later
		m.Valid |= FieldSquawk
		if emergencyState != 0 {
			m.Alert = true
			m.Valid |= FieldAlert
		}
	case 2:
		// TCAS RA broadcast: not decoded beyond recognizing the type,
		// consistent with the Comm-B/D non-goal.
	}
}

// decodeTargetState handles metype 29 (target state and status,
// versions 0/1), exposing the selected altitude/heading the flight
// management system is tracking toward.
func decodeTargetState(m *Message, msg []byte) {
	if m.MESub != 0 && m.MESub != 1 {
		return
	}
	// V2 TSS layout: bit 7 SIL/NACp supplement, bits 8-9 altitude type,
	// bits 10-20 target altitude (25ft or 100ft steps depending on type),
	// bits 21-30 target heading.
	altType := int(msg[5]) & 0x01
	rawAlt := (int(msg[6]) << 3) | (int(msg[7]) >> 5)
	if rawAlt != 0 {
		step := 25
		if altType != 0 {
			step = 100
		}
		m.TargetAltitude = (rawAlt - 1) * step
		m.TargetValid = true
	}

	headingValid := int(msg[7])&0x10 != 0
	if headingValid {
		raw := ((int(msg[7]) & 0x0f) << 5) | (int(msg[8]) >> 3)
		m.TargetHeading = float64(raw) * 180.0 / 256.0
	}
	if m.TargetValid {
		m.Valid |= FieldTargetState
	}
}

// decodeOperationalStatus handles metype 31 (aircraft operational
// status, versions 0/1/2), extracting the version number and the NIC/
// NACp/SIL integrity indicators the tracker needs for position-accuracy
// gating (spec glossary: NIC/NACp/SIL).
func decodeOperationalStatus(m *Message, msg []byte) {
	if m.MESub != 0 && m.MESub != 1 {
		return
	}
	m.ADSBVersion = int(msg[9]) >> 5
	m.NICSupplement(msg)
	m.OperStatusValid = true
	m.Valid |= FieldOperStatus | FieldNICNACp
}

// NICSupplement extracts NACp/SIL/GVA/SDA from the operational status
// ME field layout shared across subtypes 0 (airborne) and 1 (surface).
func (m *Message) NICSupplement(msg []byte) {
	m.NACp = int(msg[9]) & 0x0F
	m.SIL = int(msg[10]) & 0x03
	m.NACv = (int(msg[8]) >> 5) & 0x07
	m.GVA = (int(msg[10]) >> 6) & 0x03
	m.SDA = (int(msg[10]) >> 2) & 0x03
}
