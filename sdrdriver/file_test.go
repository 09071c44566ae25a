package sdrdriver

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestIFileDriverDeliversAllBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "capture.bin")
	want := make([]byte, 200)
	for i := range want {
		want[i] = byte(i)
	}
	if err := os.WriteFile(path, want, 0644); err != nil {
		t.Fatal(err)
	}

	d := NewIFileDriver(path, 64)
	d.InitConfig()
	if err := d.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer d.Close()

	var got []byte
	err := d.Run(context.Background(), func(iq []byte, n int) {
		got = append(got, iq[:n]...)
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d bytes, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("byte %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestIFileDriverRequiresPath(t *testing.T) {
	d := NewIFileDriver("", 64)
	if err := d.Open(); err == nil {
		t.Fatal("expected an error when no path is set")
	}
}
