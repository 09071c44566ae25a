package message

// DecodeSquawk decodes the interleaved Mode A identity (squawk) field
// carried in bytes 2 and 3 of DF5/DF21 messages (the parsing rules). Bits are
// interleaved C1-A1-C2-A2-C4-A4-ZERO-B1-D1-B2-D2-B4-D4; every group of
// three bits forms one octal digit, and the four digits are combined
// into a base-ten number that *reads* like the four octal digits (e.g.
// squawk 1200 is stored and returned as the integer 1200, not its octal
// value). Kept from the earlier DecodeModesMessage verbatim — the bit
// layout was already correct.
func DecodeSquawk(msg []byte) int {
	var a, b, c, d byte

	a = ((msg[3] & 0x80) >> 5) |
		((msg[2] & 0x02) >> 0) |
		((msg[2] & 0x08) >> 3)
	b = ((msg[3] & 0x02) << 1) |
		((msg[3] & 0x08) >> 2) |
		((msg[3] & 0x20) >> 5)
	c = ((msg[2] & 0x01) << 2) |
		((msg[2] & 0x04) >> 1) |
		((msg[2] & 0x10) >> 4)
	d = ((msg[3] & 0x01) << 2) |
		((msg[3] & 0x04) >> 1) |
		((msg[3] & 0x10) >> 4)

	return int(a)*1000 + int(b)*100 + int(c)*10 + int(d)
}
