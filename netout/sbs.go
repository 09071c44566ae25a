package netout

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"modes1090/message"
	"modes1090/tracker"
)

// BaseStation/SBS-1 message-type field (the output format, BaseStation CSV is the
// conventional ADS-B text feed format). Grounded on
// saviobatista-go1090's internal/basestation Writer, whose Message/
// formatCSV this mirrors; this module formats directly from
// message.Message/tracker.AircraftSnapshot rather than re-decoding raw
// bytes, since the parser has already done that work.
const (
	sbsTransmissionIdentCategory = 1
	sbsTransmissionSurface       = 2
	sbsTransmissionAirborne      = 3
	sbsTransmissionVelocity      = 4
	sbsTransmissionSurveillance  = 5
	sbsTransmissionAllCall       = 8
)

// SBSWriter emits BaseStation/SBS-1 CSV lines to an io.Writer, one per
// published message.
type SBSWriter struct {
	out        io.Writer
	sessionID  int
	aircraftID int
}

// NewSBSWriter wraps out (typically a TCP connection or log file).
func NewSBSWriter(out io.Writer) *SBSWriter {
	return &SBSWriter{out: out, sessionID: 1, aircraftID: 1}
}

func (w *SBSWriter) Close() error {
	if c, ok := w.out.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// Publish formats msg/ac as one BaseStation CSV line, following the
// field layout and column order of the classic "MSG,..." transmission
// record.
func (w *SBSWriter) Publish(msg *message.Message, ac *tracker.AircraftSnapshot) error {
	transmission, ok := sbsTransmissionType(msg)
	if !ok {
		return nil // not a transmission type BaseStation represents
	}

	now := time.Now()
	fields := []string{
		"MSG",
		strconv.Itoa(transmission),
		strconv.Itoa(w.sessionID),
		strconv.Itoa(w.aircraftID),
		fmt.Sprintf("%06X", msg.Addr),
		strconv.Itoa(w.aircraftID),
		now.Format("2006/01/02"),
		now.Format("15:04:05.000"),
		now.Format("2006/01/02"),
		now.Format("15:04:05.000"),
		strings.TrimSpace(ac.Callsign),
		optionalInt(ac.Altitude, ac.AltitudeSet),
		optionalFloatInt(ac.Speed, ac.SpeedSet),
		optionalFloat1(ac.Heading, ac.HeadingSet),
		optionalFloat6(ac.Lat, ac.PositionSet),
		optionalFloat6(ac.Lon, ac.PositionSet),
		optionalInt(ac.VerticalRate, ac.VRateSet),
		optionalSquawk(ac.Squawk, ac.SquawkSet),
		boolField(msg.Alert),
		"", // emergency: not decoded beyond the alert bit
		boolField(msg.SPI),
		boolField(ac.OnGround),
	}

	_, err := fmt.Fprintln(w.out, strings.Join(fields, ","))
	return err
}

func sbsTransmissionType(msg *message.Message) (int, bool) {
	switch msg.DF {
	case 4, 20, 5, 21:
		return sbsTransmissionSurveillance, true
	case 11:
		return sbsTransmissionAllCall, true
	case 17, 18:
		switch {
		case msg.METype >= 1 && msg.METype <= 4:
			return sbsTransmissionIdentCategory, true
		case msg.METype >= 5 && msg.METype <= 8:
			return sbsTransmissionSurface, true
		case msg.METype >= 9 && msg.METype <= 18:
			return sbsTransmissionAirborne, true
		case msg.METype == 19:
			return sbsTransmissionVelocity, true
		}
	}
	return 0, false
}

func optionalInt(v int, set bool) string {
	if !set {
		return ""
	}
	return strconv.Itoa(v)
}

func optionalFloatInt(v float64, set bool) string {
	if !set {
		return ""
	}
	return strconv.Itoa(int(v))
}

func optionalFloat1(v float64, set bool) string {
	if !set {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 1, 64)
}

func optionalFloat6(v float64, set bool) string {
	if !set {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func optionalSquawk(v int, set bool) string {
	if !set {
		return ""
	}
	return fmt.Sprintf("%04d", v)
}

func boolField(b bool) string {
	if b {
		return "-1"
	}
	return ""
}
