package message

// aisCharset is the 6-bit "IA5 subset" charset used by ADS-B
// identification messages, kept verbatim from this receiver's prior
// DecodeModesMessage.
var aisCharset = []rune("?ABCDEFGHIJKLMNOPQRSTUVWXYZ????? ???????????????0123456789??????")

// DecodeCallsign decodes the 8-character flight identification carried
// in bytes 5-10 of a DF17/18 metype 1-4 message.
func DecodeCallsign(msg []byte) string {
	chars := [8]rune{
		aisCharset[msg[5]>>2],
		aisCharset[((msg[5]&3)<<4)|(msg[6]>>4)],
		aisCharset[((msg[6]&15)<<2)|(msg[7]>>6)],
		aisCharset[msg[7]&63],
		aisCharset[msg[8]>>2],
		aisCharset[((msg[8]&3)<<4)|(msg[9]>>4)],
		aisCharset[((msg[9]&15)<<2)|(msg[10]>>6)],
		aisCharset[msg[10]&63],
	}
	return string(chars[:])
}
