package tracker

import (
	"math"
	"testing"

	"pgregory.net/rapid"
)

// encodeCPRGlobal is the inverse of decodeCPRGlobal's per-frame math,
// used only to generate round-trip test vectors; production code never
// needs to encode CPR, only decode it.
func encodeCPRGlobal(lat, lon float64, odd bool) (latCPR, lonCPR int) {
	dlat := 360.0 / 60.0
	nb := 0
	if odd {
		dlat = 360.0 / 59.0
		nb = 1
	}

	yz := math.Floor(cprMaxLat*cprModFloat(lat, dlat)/dlat + 0.5)
	rlat := dlat * (yz/cprMaxLat + math.Floor(lat/dlat))

	ni := cprNFunction(rlat, nb)
	dlon := 360.0 / float64(ni)
	xz := math.Floor(cprMaxLat*cprModFloat(lon, dlon)/dlon + 0.5)

	latCPR = cprModFunction(int(yz), int(cprMaxLat))
	lonCPR = cprModFunction(int(xz), int(cprMaxLat))
	return
}

func cprModFloat(a, b float64) float64 {
	res := math.Mod(a, b)
	if res < 0 {
		res += b
	}
	return res
}

// TestCPRGlobalRoundTripProperty checks the update rule's global-decode
// invariant: encoding a position into an even/odd CPR pair and
// decoding it back reproduces the original within one zone-bit LSB
// (1/2^17 of the zone width).
func TestCPRGlobalRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lat := rapid.Float64Range(-80, 80).Draw(t, "lat")
		lon := rapid.Float64Range(-179, 179).Draw(t, "lon")
		latestIsOdd := rapid.Bool().Draw(t, "latestIsOdd")

		evenLat, evenLon := encodeCPRGlobal(lat, lon, false)
		oddLat, oddLon := encodeCPRGlobal(lat, lon, true)

		res, err := decodeCPRGlobal(evenLat, evenLon, oddLat, oddLon, latestIsOdd)
		if err != nil {
			// NL boundary straddling is an expected, documented edge
			// case (the update rule); skip rather than fail.
			t.Skip("NL boundary straddle:", err)
		}

		const eps = 360.0 / cprMaxLat * 2 // one zone-bit LSB with slack for rounding
		if math.Abs(res.lat-lat) > eps {
			t.Fatalf("lat = %f, want ~%f (eps=%f)", res.lat, lat, eps)
		}
		if math.Abs(res.lon-lon) > eps {
			t.Fatalf("lon = %f, want ~%f (eps=%f)", res.lon, lon, eps)
		}
	})
}
