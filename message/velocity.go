package message

import "math"

// decodeAirborneVelocity decodes metype 19 subtypes 1/2 (ground speed)
// and 3/4 (airspeed heading), filling the message's speed/heading/
// vertical-rate fields. Kept from this receiver's prior DecodeModesMessage,
// generalized to also populate IsAirspeed/VertRateBaro/GNSSBaroDelta for
// subtypes the prior version left unimplemented (the parsing rules: "four subtypes for
// ground speed vs airspeed").
func (m *Message) decodeAirborneVelocity(msg []byte) {
	switch m.MESub {
	case 1, 2:
		ewDir := (int(msg[5]) & 4) >> 2
		ewVelocity := ((int(msg[5]) & 3) << 8) | int(msg[6])
		nsDir := (int(msg[7]) & 0x80) >> 7
		nsVelocity := ((int(msg[7]) & 0x7f) << 3) | ((int(msg[8]) & 0xe0) >> 5)

		ewv, nsv := ewVelocity, nsVelocity
		if ewDir == 1 {
			ewv = -ewv
		}
		if nsDir == 1 {
			nsv = -nsv
		}

		supersonic := m.MESub == 2
		scale := 1.0
		if supersonic {
			scale = 4.0
		}

		velocity := math.Sqrt(float64(nsVelocity*nsVelocity + ewVelocity*ewVelocity))
		if ewVelocity != 0 || nsVelocity != 0 {
			velocity -= 1 // raw velocity fields are offset by one
		}
		m.Speed = velocity * scale
		m.SpeedValid = true
		m.IsAirspeed = false

		if ewv != 0 || nsv != 0 {
			heading := math.Atan2(float64(ewv), float64(nsv)) * 360 / (2 * math.Pi)
			if heading < 0 {
				heading += 360
			}
			m.Heading = heading
			m.HeadingValid = true
		}

	case 3, 4:
		headingValid := int(msg[5])&(1<<2) != 0
		heading := (360.0 / 128.0) * float64(((int(msg[5])&3)<<5)|(int(msg[6])>>3))
		m.HeadingValid = headingValid
		m.Heading = heading

		airspeed := ((int(msg[7]) & 0x7f) << 3) | (int(msg[8]) >> 5)
		scale := 1.0
		if m.MESub == 4 {
			scale = 4.0
		}
		if airspeed != 0 {
			m.Speed = float64(airspeed-1) * scale
			m.SpeedValid = true
			m.IsAirspeed = true
		}
	}

	vertRateSource := (int(msg[8]) & 0x10) >> 4
	vertRateSign := (int(msg[8]) & 0x8) >> 3
	vertRate := ((int(msg[8]) & 7) << 6) | ((int(msg[9]) & 0xfc) >> 2)
	if vertRate != 0 {
		rate := (vertRate - 1) * 64
		if vertRateSign != 0 {
			rate = -rate
		}
		m.VerticalRate = rate
		m.VertRateValid = true
		m.VertRateBaro = vertRateSource == 0
	}

	gnssSign := (int(msg[10]) & 0x80) >> 7
	gnssDelta := int(msg[10]) & 0x7f
	if gnssDelta != 0 {
		delta := (gnssDelta - 1) * 25
		if gnssSign != 0 {
			delta = -delta
		}
		m.GNSSBaroDelta = delta
		m.GNSSDeltaValid = true
	}
}
