// Package snapshot writes the periodic JSON files the output format describes:
// aircraft.json (current state), history_NN.json (rolling 120-slot
// history), and receiver.json (one-shot configuration), each published
// atomically via write-tmp-then-rename from the main thread only.
//
// The Aircraft JSON shape is grounded on billglover-go-adsb-console's
// Aircraft/Scan structs, which already mirror dump1090-fa's public
// aircraft.json schema (field names like alt_baro, gs, nic, nac_p are
// kept as-is since they are the de facto wire format this spec's output
// is meant to be compatible with).
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"modes1090/tracker"
)

// Aircraft is one entry in aircraft.json/history_NN.json, field-for-
// field compatible with the dump1090-fa JSON schema.
type Aircraft struct {
	Hex      string  `json:"hex,omitempty"`
	Flight   string  `json:"flight,omitempty"`
	AltBaro  int     `json:"alt_baro,omitempty"`
	Gs       float64 `json:"gs,omitempty"`
	Track    float64 `json:"track,omitempty"`
	BaroRate int     `json:"baro_rate,omitempty"`
	Squawk   string  `json:"squawk,omitempty"`
	Lat      float64 `json:"lat,omitempty"`
	Lon      float64 `json:"lon,omitempty"`
	Nic      int     `json:"nic,omitempty"`
	NacP     int     `json:"nac_p,omitempty"`
	NacV     int     `json:"nac_v,omitempty"`
	Sil      int     `json:"sil,omitempty"`
	Gva      int     `json:"gva,omitempty"`
	Sda      int     `json:"sda,omitempty"`
	Messages int64   `json:"messages,omitempty"`
	Seen     float64 `json:"seen,omitempty"`
	RangeNm  float64 `json:"range_nm,omitempty"`
	Alert    bool    `json:"alert,omitempty"`
	SPI      bool    `json:"spi,omitempty"`
	Ground   bool    `json:"ground,omitempty"`
}

// Scan is the top-level aircraft.json/history_NN.json document.
type Scan struct {
	Now      float64    `json:"now"`
	Messages int64      `json:"messages"`
	Aircraft []Aircraft `json:"aircraft"`
}

// Receiver is the one-shot receiver.json document.
type Receiver struct {
	Version     string  `json:"version"`
	RefreshRate int     `json:"refresh"`
	Lat         float64 `json:"lat,omitempty"`
	Lon         float64 `json:"lon,omitempty"`
	History     int     `json:"history"`
}

// FromSnapshot converts a tracker.AircraftSnapshot into the JSON shape.
func FromSnapshot(ac tracker.AircraftSnapshot, now time.Time, totalMessages int64) Aircraft {
	a := Aircraft{
		Hex:      fmt.Sprintf("%06x", ac.Addr),
		Flight:   ac.Callsign,
		Messages: ac.Messages,
		Seen:     now.Sub(ac.LastSeen).Seconds(),
		RangeNm:  ac.RangeMeters / 1852.0,
		Alert:    ac.Alert,
		SPI:      ac.SPI,
		Ground:   ac.OnGround,
	}
	if ac.AltitudeSet {
		a.AltBaro = ac.Altitude
	}
	if ac.SpeedSet {
		a.Gs = ac.Speed
	}
	if ac.HeadingSet {
		a.Track = ac.Heading
	}
	if ac.VRateSet {
		a.BaroRate = ac.VerticalRate
	}
	if ac.SquawkSet {
		a.Squawk = fmt.Sprintf("%04d", ac.Squawk)
	}
	if ac.PositionSet {
		a.Lat, a.Lon = ac.Lat, ac.Lon
	}
	return a
}

// Writer periodically renders the tracker's state to a directory as
// aircraft.json/history_NN.json/receiver.json, each published
// atomically (the output format: "write-tmp-then-rename").
type Writer struct {
	dir         string
	historySlot int
	maxHistory  int
}

// NewWriter creates a Writer targeting dir, which must already exist.
func NewWriter(dir string, maxHistorySlots int) *Writer {
	return &Writer{dir: dir, maxHistory: maxHistorySlots}
}

// WriteAircraft atomically publishes aircraft.json.
func (w *Writer) WriteAircraft(scan Scan) error {
	return w.writeAtomic("aircraft.json", scan)
}

// WriteHistory atomically publishes the next rolling history_NN.json
// slot, wrapping at maxHistory.
func (w *Writer) WriteHistory(scan Scan) error {
	name := fmt.Sprintf("history_%d.json", w.historySlot)
	w.historySlot = (w.historySlot + 1) % w.maxHistory
	return w.writeAtomic(name, scan)
}

// WriteReceiver atomically publishes the one-shot receiver.json.
func (w *Writer) WriteReceiver(r Receiver) error {
	return w.writeAtomic("receiver.json", r)
}

func (w *Writer) writeAtomic(name string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	final := filepath.Join(w.dir, name)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, final)
}
