package message

// decodeDF0 parses a DF0 (short air-to-air surveillance) reply: VS
// (vertical status -> on-ground) plus 13-bit altitude.
func decodeDF0(m *Message, msg []byte) {
	m.OnGround = msg[0]&(1<<2) != 0
	m.Valid |= FieldOnGround
	if alt, unit, ok := DecodeAC13Field(msg); ok {
		m.Altitude, m.AltitudeUnit = alt, unit
		m.Valid |= FieldAltitude
	}
}

// decodeDF4 parses a DF4 (surveillance, altitude reply).
func decodeDF4(m *Message, msg []byte) {
	decodeFlightStatus(m, msg)
	m.DR = int(msg[1]) >> 3 & 31
	m.UM = ((int(msg[1]) & 7) << 3) | int(msg[2])>>5
	if alt, unit, ok := DecodeAC13Field(msg); ok {
		m.Altitude, m.AltitudeUnit = alt, unit
		m.Valid |= FieldAltitude
	}
}

// decodeDF5 parses a DF5 (surveillance, identity reply).
func decodeDF5(m *Message, msg []byte) {
	decodeFlightStatus(m, msg)
	m.DR = int(msg[1]) >> 3 & 31
	m.UM = ((int(msg[1]) & 7) << 3) | int(msg[2])>>5
	m.Squawk = DecodeSquawk(msg)
	m.Valid |= FieldSquawk
}

// decodeDF11 parses a DF11 (all-call reply): capability and, once CRC
// is known good, the interrogator identifier overlaid on the low 7 bits
// of the CRC residual (the parsing rules: "CA capability and IID extracted from
// CRC").
func decodeDF11(m *Message, msg []byte) {
	m.AddrType = AddrADSBIcao
	if m.CA == 4 || m.CA == 5 {
		m.OnGround = m.CA == 4
		m.Valid |= FieldOnGround
	}
	m.IID = int(m.CRC & 0x7F)
	m.Valid |= FieldIID
}

// decodeDF16 parses a DF16 (long air-to-air surveillance) reply.
func decodeDF16(m *Message, msg []byte) {
	m.OnGround = msg[0]&(1<<2) != 0
	m.Valid |= FieldOnGround
	if alt, unit, ok := DecodeAC13Field(msg); ok {
		m.Altitude, m.AltitudeUnit = alt, unit
		m.Valid |= FieldAltitude
	}
}

// decodeDF18 parses a DF18 (extended squitter / non-transponder) per
// its control field (CF, in the capability byte position). CF 0 and 1
// carry an ADS-B payload from a non-transponder-equipped or
// anonymous-address ADS-B participant; other CF values are TIS-B/ADS-R
// rebroadcasts (the data model glossary: TIS-B/ADS-R).
func decodeDF18(m *Message, msg []byte) {
	cf := m.CA // control field occupies the same 3 bits as DF17's CA
	switch cf {
	case 0:
		m.AddrType = AddrADSBIcao
		m.Source = SourceADSB
		decodeExtendedSquitter(m, msg)
	case 1:
		m.AddrType = AddrADSBOther
		m.Source = SourceADSB
		decodeExtendedSquitter(m, msg)
	case 2, 3:
		m.AddrType = AddrTISBIcao
		m.Source = SourceTISB
		decodeExtendedSquitter(m, msg)
	case 5:
		m.AddrType = AddrTISBOther
		m.Source = SourceTISB
		decodeExtendedSquitter(m, msg)
	case 6:
		m.AddrType = AddrADSRIcao
		m.Source = SourceADSB
		decodeExtendedSquitter(m, msg)
	default:
		m.AddrType = AddrTISBOther
		m.Source = SourceTISB
	}
}

// decodeDF20 parses a DF20 (Comm-B, altitude request) reply: everything
// DF4 carries, plus an opportunistic look at the Comm-B MB field for a
// BDS register identification (the documented non-goals: "does not attempt to
// decode Mode S Comm-B/D uplink semantics beyond opportunistic BDS
// register identification").
func decodeDF20(m *Message, msg []byte) {
	decodeDF4(m, msg)
	identifyBDS(m, msg)
}

// decodeDF21 parses a DF21 (Comm-B, identity request) reply.
func decodeDF21(m *Message, msg []byte) {
	decodeDF5(m, msg)
	identifyBDS(m, msg)
}

func decodeFlightStatus(m *Message, msg []byte) {
	m.FS = int(msg[0]) & 7
	switch m.FS {
	case 0:
		m.OnGround = false
	case 1:
		m.OnGround = true
	case 2:
		m.OnGround = false
		m.Alert = true
	case 3:
		m.OnGround = true
		m.Alert = true
	case 4:
		m.Alert = true
		m.SPI = true
	case 5:
		m.SPI = true
	}
	m.Valid |= FieldOnGround
	if m.Alert {
		m.Valid |= FieldAlert
	}
	if m.SPI {
		m.Valid |= FieldSPI
	}
}

// bds20Code is the BDS code byte identifying a Comm-B "Data Link
// Capability Report" frame that carries the aircraft's registered
// callsign in the same 6-bit-packed layout as a DF17 identification
// squitter.
const bds20Code = 0x20

// identifyBDS makes a best-effort guess at which Comm-B Data Selector
// register occupies the MB field (bytes 4-10), limited to the
// self-identifying BDS 2,0 (callsign) register, which announces itself
// with a fixed leading code byte. Anything else is left unparsed,
// matching the deliberate limit on uplink semantics beyond opportunistic
// identification.
func identifyBDS(m *Message, msg []byte) {
	if len(msg) < 11 || msg[4] != bds20Code {
		return
	}
	cs := DecodeCallsign(msg)
	if cs != "" && cs != "        " {
		m.Callsign = cs
		m.Valid |= FieldCallsign
	}
}
