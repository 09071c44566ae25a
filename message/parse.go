package message

import (
	"fmt"
	"time"

	"modes1090/crc"
	"modes1090/icaofilter"
)

// NFixCRC selects the error-correction aggressiveness (the parsing rules).
type NFixCRC int

const (
	NFixNone NFixCRC = 0
	NFixOne  NFixCRC = 1
	NFixTwo  NFixCRC = 2
)

// ParseConfig carries the decoder-wide options that affect parsing and
// CRC-repair policy (generalizes the earlier Decoder.fix_errors/
// check_crc/aggressive booleans into a three-level enum).
type ParseConfig struct {
	NFixCRC           NFixCRC
	CheckCRC          bool // when false, messages with a bad CRC are still parsed (debug/no-crc-check mode)
	Filter            *icaofilter.Filter
	LowConfidenceBits []int // ranked bit positions for two-bit repair; nil tries every bit pair (the demodulator does not fill this in)
	SysTimestamp      time.Time
	Timestamp12MHz    uint64
	SignalLevel       float64
}

// isOverlaidDF reports whether df is a downlink format whose AP
// (address/parity) field holds the ICAO address XORed with the CRC,
// rather than the CRC in the clear.
func isOverlaidDF(df int) bool {
	switch df {
	case 0, 4, 5, 16, 20, 21, 24:
		return true
	}
	return false
}

// Parse validates, CRC-checks and optionally corrects raw, then decodes
// its fields into a Message (the parsing rules). raw must hold at least
// crc.MessageLenForDF(df)/8 bytes, where df = raw[0]>>3 (or 24 if the top
// two bits are both set, per the DF24 special case).
func Parse(raw []byte, cfg ParseConfig) (*Message, error) {
	df := downlinkFormat(raw[0])
	bits := crc.MessageLenForDF(df)
	nbytes := bits / 8
	if len(raw) < nbytes {
		return nil, fmt.Errorf("message: short frame for DF%d: have %d bytes, want %d", df, len(raw), nbytes)
	}

	msg := make([]byte, nbytes)
	copy(msg, raw)

	m := &Message{
		Raw:            msg,
		Bits:           bits,
		DF:             df,
		SysTimestamp:   cfg.SysTimestamp,
		Timestamp12MHz: cfg.Timestamp12MHz,
		SignalLevel:    cfg.SignalLevel,
		CorrectedBits:  -1,
	}

	crcOK, addr, corrected := resolveCRC(msg, df, bits, cfg)
	m.CorrectedBits = corrected
	m.CRC = crc.Checksum(msg, bits) ^ crc.Residual(msg, bits)

	if !crcOK && cfg.CheckCRC {
		return nil, fmt.Errorf("message: DF%d failed CRC check", df)
	}
	if m.CorrectedBits < 0 {
		m.CorrectedBits = 0
	}

	m.Addr = addr
	m.Source = SourceModeSNoCRC
	if crcOK {
		m.Source = SourceModeSChecked
	}

	decodeCommon(m, msg)
	switch df {
	case 0:
		decodeDF0(m, msg)
	case 4:
		decodeDF4(m, msg)
	case 5:
		decodeDF5(m, msg)
	case 11:
		decodeDF11(m, msg)
	case 16:
		decodeDF16(m, msg)
	case 17:
		m.AddrType = AddrADSBIcao
		m.Source = SourceADSB
		decodeExtendedSquitter(m, msg)
	case 18:
		decodeDF18(m, msg)
	case 20:
		decodeDF20(m, msg)
	case 21:
		decodeDF21(m, msg)
	case 24:
		// Comm-D ELM: address recovered above; uplink semantics out of scope.
	}

	if crcOK && (df == 11 || df == 17) && m.CorrectedBits == 0 && cfg.Filter != nil {
		cfg.Filter.Add(m.Addr)
	}

	return m, nil
}

func downlinkFormat(firstByte byte) int {
	if firstByte&0xc0 == 0xc0 {
		return 24
	}
	return int(firstByte) >> 3
}

// resolveCRC validates msg's CRC (correcting it in place when policy
// allows) and returns whether it now validates, the recovered/confirmed
// ICAO address, and how many bits were corrected (-1 if uncorrected and
// invalid).
func resolveCRC(msg []byte, df, bits int, cfg ParseConfig) (ok bool, addr uint32, corrected int) {
	if isOverlaidDF(df) {
		return bruteForceOverlaidAddr(msg, bits, cfg.Filter)
	}

	// DF11/17/18 carry the CRC in the clear; the address is the AA field.
	addr = ICAOAddr(msg[1], msg[2], msg[3])
	if crc.Valid(msg, bits) {
		return true, addr, 0
	}

	if df != 11 && df != 17 {
		return false, addr, -1
	}

	if cfg.NFixCRC >= NFixOne {
		if pos := crc.FixSingleBitErrors(msg, bits); pos >= 0 {
			return true, ICAOAddr(msg[1], msg[2], msg[3]), 1
		}
	}
	if cfg.NFixCRC >= NFixTwo && df == 17 {
		if packed := crc.FixTwoBitsErrors(msg, bits, cfg.LowConfidenceBits); packed >= 0 {
			return true, ICAOAddr(msg[1], msg[2], msg[3]), 2
		}
	}
	return false, addr, -1
}

// bruteForceOverlaidAddr recovers the ICAO address XORed into the AP
// field of address-overlaid formats: (ADDR xor CRC) xor CRC == ADDR.
// Acceptance requires the recovered address to be in the recently-seen
// filter (the parsing rules's nfix_crc=0 baseline for overlaid DFs); this gate
// does not vary with nfix_crc because, as in this receiver's prior decoder and upstream
// dump1090, bit-flip correction is only attempted on the clear-CRC
// formats (DF11/DF17) — overlaid formats have no independent checksum to
// validate a flipped bit against.
func bruteForceOverlaidAddr(msg []byte, bits int, filter *icaofilter.Filter) (ok bool, addr uint32, corrected int) {
	aux := make([]byte, len(msg))
	copy(aux, msg)

	lastByte := bits/8 - 1
	c := crc.Checksum(aux, bits)
	aux[lastByte] ^= byte(c)
	aux[lastByte-1] ^= byte(c >> 8)
	aux[lastByte-2] ^= byte(c >> 16)

	addr = ICAOAddr(aux[lastByte-2], aux[lastByte-1], aux[lastByte])
	if filter != nil && filter.Contains(addr) {
		// The AP field is left untouched: it legitimately holds ICAO xor
		// CRC, not a corrupted CRC, so there is nothing to "fix" in the
		// verbatim bytes — only the recovered address is reported.
		return true, addr, 0
	}
	return false, addr, -1
}

func decodeCommon(m *Message, msg []byte) {
	m.CA = int(msg[0]) & 7
}
