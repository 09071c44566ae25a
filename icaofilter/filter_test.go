package icaofilter

import (
	"testing"
	"time"
)

func TestAddContains(t *testing.T) {
	f := New(time.Minute)
	if f.Contains(0x400000) {
		t.Fatalf("empty filter should not contain address")
	}
	f.Add(0x400000)
	if !f.Contains(0x400000) {
		t.Fatalf("filter should contain address just added")
	}
}

func TestRotationKeepsPreviousGeneration(t *testing.T) {
	f := New(time.Minute)
	base := time.Now()
	f.now = func() time.Time { return base }

	f.Add(0x400000)

	// Advance past one rotation: address should still be visible via the
	// previous generation.
	f.now = func() time.Time { return base.Add(90 * time.Second) }
	if !f.Contains(0x400000) {
		t.Fatalf("address should survive one rotation via previous generation")
	}

	// Advance past a second rotation: address should now be expired from
	// both generations.
	f.now = func() time.Time { return base.Add(200 * time.Second) }
	if f.Contains(0x400000) {
		t.Fatalf("address should fade out after two rotations")
	}
}
