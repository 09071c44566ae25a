// Package icaofilter implements the recently-seen ICAO address filter
// used as a prior by the CRC error-correction logic when correcting
// overlaid-address downlink formats.
//
// It generalizes this receiver's prior single patrickmn/go-cache instance
// (mode_s.Decoder.icao_cache) into the two-generation set the design
// calls for: addresses live in a "current" generation cache; every
// rotation interval the current generation becomes "previous" and a
// fresh current generation is started. A lookup checks both, so an
// address fades out over one to two rotation intervals rather than
// disappearing the instant its single fixed TTL lapses — smoothing the
// Open Question (a) gate-window behaviour the original spec source left
// ambiguous.
package icaofilter

import (
	"fmt"
	"sync"
	"time"

	cache "github.com/patrickmn/go-cache"
)

// DefaultRotation is the interval at which generations rotate (the data model:
// "the filter rotates generations on a ~1 minute interval").
const DefaultRotation = 60 * time.Second

// Filter is a two-generation recently-seen ICAO address set.
type Filter struct {
	mu         sync.Mutex
	rotation   time.Duration
	current    *cache.Cache
	previous   *cache.Cache
	lastRotate time.Time
	now        func() time.Time
}

// New creates a Filter that rotates generations every rotation interval.
// A zero rotation uses DefaultRotation.
func New(rotation time.Duration) *Filter {
	if rotation <= 0 {
		rotation = DefaultRotation
	}
	return &Filter{
		rotation:   rotation,
		current:    cache.New(2*rotation, rotation/2),
		previous:   cache.New(2*rotation, rotation/2),
		lastRotate: time.Now(),
		now:        time.Now,
	}
}

func key(addr uint32) string {
	return fmt.Sprintf("%06X", addr)
}

// Add records addr as recently seen with full CRC validation.
func (f *Filter) Add(addr uint32) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotateLocked()
	f.current.SetDefault(key(addr), addr)
}

// Contains reports whether addr was seen recently enough (current or
// previous generation) to be trusted as a CRC-repair/overlay prior.
func (f *Filter) Contains(addr uint32) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rotateLocked()
	k := key(addr)
	if _, ok := f.current.Get(k); ok {
		return true
	}
	_, ok := f.previous.Get(k)
	return ok
}

// rotateLocked must be called with mu held. It swaps generations once
// per rotation interval.
func (f *Filter) rotateLocked() {
	if f.now().Sub(f.lastRotate) < f.rotation {
		return
	}
	f.previous = f.current
	f.current = cache.New(2*f.rotation, f.rotation/2)
	f.lastRotate = f.now()
}

// Len reports the number of distinct addresses tracked across both
// generations (statistics use only, not part of Contains' logic).
func (f *Filter) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := make(map[string]struct{}, f.current.ItemCount()+f.previous.ItemCount())
	for k := range f.current.Items() {
		seen[k] = struct{}{}
	}
	for k := range f.previous.Items() {
		seen[k] = struct{}{}
	}
	return len(seen)
}
