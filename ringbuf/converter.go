package ringbuf

import "math"

// Converter turns a raw IQ sample stream in some SDR-specific wire
// format into unsigned magnitude samples. Implementations follow the
// earlier magnitude lookup table approach (a precomputed uint16 table
// indexed by interleaved I/Q byte pairs) generalized to the three input
// formats the sdrdriver layer supports: rtl-sdr's 8-bit unsigned (UC8),
// and the signed 16-bit formats used by file-replay captures (SC16,
// SC16Q11).
type Converter interface {
	// Convert reads paired I/Q samples from raw and appends their
	// magnitudes to out, returning the extended slice.
	Convert(raw []byte, out []uint16) []uint16

	// BytesPerSample is the wire size of one I or Q component.
	BytesPerSample() int
}

// UC8Converter decodes rtl-sdr's native uint8 I/Q pairs, matching the
// earlier magnitude lookup table (iqMagnitudeLut, built from
// (I-127.5)^2+(Q-127.5)^2 scaled into a uint16 range).
type UC8Converter struct {
	lut [256 * 256]uint16
}

// NewUC8Converter builds the 256x256 magnitude lookup table once, the
// same amortization the earlier initIQLut performed at startup.
func NewUC8Converter() *UC8Converter {
	c := &UC8Converter{}
	for i := 0; i < 256; i++ {
		for q := 0; q < 256; q++ {
			fi := (float64(i) - 127.5) / 128.0
			fq := (float64(q) - 127.5) / 128.0
			mag := math.Sqrt(fi*fi+fq*fq) * 65535.0 / math.Sqrt2
			if mag > 65535 {
				mag = 65535
			}
			c.lut[i<<8|q] = uint16(mag)
		}
	}
	return c
}

func (c *UC8Converter) BytesPerSample() int { return 1 }

func (c *UC8Converter) Convert(raw []byte, out []uint16) []uint16 {
	n := len(raw) / 2
	for i := 0; i < n; i++ {
		iq := int(raw[2*i])<<8 | int(raw[2*i+1])
		out = append(out, c.lut[iq])
	}
	return out
}

// SC16Converter decodes signed 16-bit little-endian I/Q pairs (full
// scale ±32767), the layout most file-replay captures in the pack's
// rtl_adsb lineage use for archival.
type SC16Converter struct{}

func (SC16Converter) BytesPerSample() int { return 2 }

func (SC16Converter) Convert(raw []byte, out []uint16) []uint16 {
	n := len(raw) / 4
	for i := 0; i < n; i++ {
		iRaw := int16(uint16(raw[4*i]) | uint16(raw[4*i+1])<<8)
		qRaw := int16(uint16(raw[4*i+2]) | uint16(raw[4*i+3])<<8)
		fi := float64(iRaw) / 32768.0
		fq := float64(qRaw) / 32768.0
		mag := math.Sqrt(fi*fi+fq*fq) * 65535.0 / math.Sqrt2
		if mag > 65535 {
			mag = 65535
		}
		out = append(out, uint16(mag))
	}
	return out
}

// SC16Q11Converter decodes signed 16-bit Q11 fixed-point I/Q pairs
// (full scale ±2048), the format bladeRF and some SoapySDR front ends
// emit.
type SC16Q11Converter struct{}

func (SC16Q11Converter) BytesPerSample() int { return 2 }

func (c SC16Q11Converter) Convert(raw []byte, out []uint16) []uint16 {
	n := len(raw) / 4
	for i := 0; i < n; i++ {
		iRaw := int16(uint16(raw[4*i]) | uint16(raw[4*i+1])<<8)
		qRaw := int16(uint16(raw[4*i+2]) | uint16(raw[4*i+3])<<8)
		fi := float64(iRaw) / 2048.0
		fq := float64(qRaw) / 2048.0
		mag := math.Sqrt(fi*fi+fq*fq) * 65535.0 / math.Sqrt2
		if mag > 65535 {
			mag = 65535
		}
		out = append(out, uint16(mag))
	}
	return out
}

// DCBlock wraps a Converter with a single-pole DC-offset removal
// filter, compensating the DC bias cheap SDR front ends produce with a
// one-pole blocker.
type DCBlock struct {
	Inner Converter
	mean  float64
	alpha float64
}

// NewDCBlock wraps inner with a one-pole blocker of the given time
// constant (0 < alpha < 1; smaller is slower-tracking).
func NewDCBlock(inner Converter, alpha float64) *DCBlock {
	return &DCBlock{Inner: inner, alpha: alpha}
}

func (d *DCBlock) BytesPerSample() int { return d.Inner.BytesPerSample() }

func (d *DCBlock) Convert(raw []byte, out []uint16) []uint16 {
	start := len(out)
	out = d.Inner.Convert(raw, out)
	for i := start; i < len(out); i++ {
		v := float64(out[i])
		d.mean += d.alpha * (v - d.mean)
		adjusted := v - d.mean
		if adjusted < 0 {
			adjusted = 0
		}
		if adjusted > 65535 {
			adjusted = 65535
		}
		out[i] = uint16(adjusted)
	}
	return out
}

// SoftAGC wraps a Converter with a slow automatic gain normalizer that
// tracks the running peak and rescales samples toward full scale,
// compensating for SDR front ends whose gain setting leaves magnitudes
// well below uint16 headroom.
type SoftAGC struct {
	Inner Converter
	peak  float64
	decay float64
}

// NewSoftAGC wraps inner with an AGC that decays its peak estimate by
// decay (0 < decay < 1) per sample when the instantaneous level is
// below the tracked peak.
func NewSoftAGC(inner Converter, decay float64) *SoftAGC {
	return &SoftAGC{Inner: inner, decay: decay, peak: 1}
}

func (a *SoftAGC) BytesPerSample() int { return a.Inner.BytesPerSample() }

func (a *SoftAGC) Convert(raw []byte, out []uint16) []uint16 {
	start := len(out)
	out = a.Inner.Convert(raw, out)
	for i := start; i < len(out); i++ {
		v := float64(out[i])
		if v > a.peak {
			a.peak = v
		} else {
			a.peak -= a.decay * (a.peak - v)
		}
		if a.peak < 1 {
			a.peak = 1
		}
		scaled := v * 65535.0 / a.peak
		if scaled > 65535 {
			scaled = 65535
		}
		out[i] = uint16(scaled)
	}
	return out
}
