package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"modes1090/tracker"
)

func TestFromSnapshotFormatsHexAndSquawk(t *testing.T) {
	now := time.Now()
	ac := tracker.AircraftSnapshot{
		Addr:        0x4840D6,
		Callsign:    "KLM1023 ",
		SquawkSet:   true,
		Squawk:      1200,
		AltitudeSet: true,
		Altitude:    35000,
		LastSeen:    now,
	}
	a := FromSnapshot(ac, now, 42)
	if a.Hex != "4840d6" {
		t.Fatalf("Hex = %q, want 4840d6", a.Hex)
	}
	if a.Squawk != "1200" {
		t.Fatalf("Squawk = %q, want 1200", a.Squawk)
	}
	if a.AltBaro != 35000 {
		t.Fatalf("AltBaro = %d, want 35000", a.AltBaro)
	}
}

func TestWriterAtomicRenameLeavesNoTmpFile(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 120)

	scan := Scan{Now: 1.0, Messages: 1, Aircraft: []Aircraft{{Hex: "abc123"}}}
	if err := w.WriteAircraft(scan); err != nil {
		t.Fatalf("WriteAircraft: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "aircraft.json.tmp")); !os.IsNotExist(err) {
		t.Fatalf("tmp file should not survive a successful write, stat err = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "aircraft.json"))
	if err != nil {
		t.Fatalf("reading aircraft.json: %v", err)
	}
	var got Scan
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(got.Aircraft) != 1 || got.Aircraft[0].Hex != "abc123" {
		t.Fatalf("got = %+v", got)
	}
}

func TestWriterHistoryRotates(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, 2)

	w.WriteHistory(Scan{Now: 1})
	w.WriteHistory(Scan{Now: 2})
	w.WriteHistory(Scan{Now: 3})

	if _, err := os.Stat(filepath.Join(dir, "history_0.json")); err != nil {
		t.Fatalf("history_0.json should exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "history_1.json")); err != nil {
		t.Fatalf("history_1.json should exist: %v", err)
	}
}
