package message

// DecodeAC13Field decodes the 13-bit AC altitude field carried by DF0,
// DF4, DF16 and DF20 (the parsing rules). msg must be at least 4 bytes. When Q=1
// the field is a 25-foot-resolution binary count; when Q=0 it is
// Gillham/Gray-coded in 100-ft bands layered over 500-ft bands, and an
// invalid Gillham code reports ok=false.
func DecodeAC13Field(msg []byte) (altitude int, unit Unit, ok bool) {
	mBit := msg[3] & (1 << 6)
	qBit := msg[3] & (1 << 4)

	if mBit != 0 {
		return 0, UnitMeters, false // metric AC13 is not used operationally; not decoded
	}

	unit = UnitFeet
	if qBit != 0 {
		n := (int(msg[2]&31) << 6) |
			(int(msg[3]&0x80) >> 2) |
			(int(msg[3]&0x20) >> 1) |
			int(msg[3]&15)
		return n*25 - 1000, unit, true
	}

	id13 := (int(msg[2]&0x1F) << 8) | int(msg[3])
	alt, ok := gillhamToAltitude(id13)
	return alt, unit, ok
}

// DecodeAC12Field decodes the 12-bit AC altitude field carried by DF17/18
// airborne position messages (the parsing rules). msg must be at least 7 bytes.
func DecodeAC12Field(msg []byte) (altitude int, unit Unit, ok bool) {
	qBit := msg[5] & 1
	// n is the 11-bit value left after stripping the Q bit out of the
	// field's low end; shared by both branches, per dump1090's
	// decodeAC12Field.
	n := (int(msg[5]>>1) << 4) | int(msg[6]>>4)
	if qBit != 0 {
		return n*25 - 1000, UnitFeet, true
	}
	// Gillham-encoded: decodeID13Field expects its input shaped like the
	// 13-bit AC field, where bit 6 is an always-zero placeholder (the M
	// bit there). The 12-bit ME field carries no such bit of its own
	// (and one fewer real Gillham bit than AC13, since D1 is never set
	// for a computed airborne altitude), so splice a zero in at bit 6.
	alt, ok := gillhamToAltitude(spliceGillhamGap(n))
	return alt, UnitFeet, ok
}

// spliceGillhamGap inserts a zero bit at position 6 of the 11-bit value
// n, shifting every bit at or above that position up by one. This turns
// the 12-bit ME-field altitude's post-Q-removal bits into the same
// 13-bit shape decodeID13Field expects (with its own placeholder bit at
// position 6), per dump1090's decodeAC12Field.
func spliceGillhamGap(n int) int {
	return ((n & 0xfc0) << 1) | (n & 0x3f)
}

// decodeID13Field de-interleaves a raw 13-bit Gillham ID field (as found
// in either the AC13 altitude field with Q=0, or an identity/squawk
// field) into its Gray-coded hundreds/500s/A/B/C/D layout. Grounded on
// the canonical dump1090/mutability decodeID13Field function (the
// lineage confirmed by _examples/original_source/dump1090.h); no
// reference repo in the pack carries the function body, only its call
// site (plane-watch-pw-pipeline), so this is reproduced from the
// well-documented public algorithm rather than copied from any one file.
func decodeID13Field(id13Field int) int {
	var hex int
	if id13Field&0x1000 != 0 {
		hex |= 0x0010
	}
	if id13Field&0x0800 != 0 {
		hex |= 0x1000
	}
	if id13Field&0x0400 != 0 {
		hex |= 0x0020
	}
	if id13Field&0x0200 != 0 {
		hex |= 0x2000
	}
	if id13Field&0x0100 != 0 {
		hex |= 0x0040
	}
	if id13Field&0x0080 != 0 {
		hex |= 0x4000
	}
	if id13Field&0x0020 != 0 {
		hex |= 0x0100
	}
	if id13Field&0x0010 != 0 {
		hex |= 0x0001
	}
	if id13Field&0x0008 != 0 {
		hex |= 0x0200
	}
	if id13Field&0x0004 != 0 {
		hex |= 0x0002
	}
	if id13Field&0x0002 != 0 {
		hex |= 0x0400
	}
	if id13Field&0x0001 != 0 {
		hex |= 0x0004
	}
	return hex
}

// modeAToModeC converts a de-interleaved Gillham code into a Mode C
// altitude in (rounded) hundreds of feet, or reports failure for
// codes that don't correspond to a valid Gray-coded band sequence.
func modeAToModeC(modeA int) (hundredFeet int, ok bool) {
	if modeA&0xFFFF8889 != 0 || modeA&0xF0 == 0 {
		return 0, false
	}

	var fiveHundreds, oneHundreds int

	if modeA&0x0010 != 0 {
		oneHundreds ^= 0x07
	}
	if modeA&0x0020 != 0 {
		oneHundreds ^= 0x03
	}
	if modeA&0x0040 != 0 {
		oneHundreds ^= 0x01
	}

	if oneHundreds&5 != 0 {
		fiveHundreds ^= 0xFF
	}
	fiveHundreds ^= oneHundreds

	if modeA&0x0002 != 0 {
		fiveHundreds ^= 0xFF
	}
	if modeA&0x0004 != 0 {
		fiveHundreds ^= 0x7F
	}

	if modeA&0x1000 != 0 {
		fiveHundreds ^= 0x3F
	}
	if modeA&0x2000 != 0 {
		fiveHundreds ^= 0x1F
	}
	if modeA&0x4000 != 0 {
		fiveHundreds ^= 0x0F
	}

	if modeA&0x0100 != 0 {
		fiveHundreds ^= 0x07
	}
	if modeA&0x0200 != 0 {
		fiveHundreds ^= 0x03
	}
	if modeA&0x0400 != 0 {
		fiveHundreds ^= 0x01
	}

	if oneHundreds&1 != 0 {
		fiveHundreds ^= 0xFFF
	}

	return (fiveHundreds * 5) + oneHundreds - 13, true
}

// gillhamToAltitude combines decodeID13Field and modeAToModeC into a
// feet altitude, rejecting invalid Gray-code sequences.
func gillhamToAltitude(id13Field int) (altitude int, ok bool) {
	n, ok := modeAToModeC(decodeID13Field(id13Field))
	if !ok {
		return 0, false
	}
	return n * 100, true
}
