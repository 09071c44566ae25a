package tracker

import (
	"errors"
	"math"
)

// cprMaxLat is the 2^17 scale of a full-resolution CPR latitude/
// longitude field (the update rule: "17+17 bits").
const cprMaxLat = 131072.0

// ErrCPRInconsistent covers every rejection path the update rule groups under
// "CPR inconsistency" (NL mismatch, out of range, stale pair).
var ErrCPRInconsistent = errors.New("tracker: CPR inconsistent")

// cprNLFunction returns the number of longitude zones at the given
// latitude, kept verbatim from the prior implementation (it already implements the
// 1090-WP-9-14 table the update rule calls "the standard 60-zone latitude
// table").
func cprNLFunction(lat float64) int {
	if lat < 0 {
		lat = -lat
	}
	switch {
	case lat < 10.47047130:
		return 59
	case lat < 14.82817437:
		return 58
	case lat < 18.18626357:
		return 57
	case lat < 21.02939493:
		return 56
	case lat < 23.54504487:
		return 55
	case lat < 25.82924707:
		return 54
	case lat < 27.93898710:
		return 53
	case lat < 29.91135686:
		return 52
	case lat < 31.77209708:
		return 51
	case lat < 33.53993436:
		return 50
	case lat < 35.22899598:
		return 49
	case lat < 36.85025108:
		return 48
	case lat < 38.41241892:
		return 47
	case lat < 39.92256684:
		return 46
	case lat < 41.38651832:
		return 45
	case lat < 42.80914012:
		return 44
	case lat < 44.19454951:
		return 43
	case lat < 45.54626723:
		return 42
	case lat < 46.86733252:
		return 41
	case lat < 48.16039128:
		return 40
	case lat < 49.42776439:
		return 39
	case lat < 50.67150166:
		return 38
	case lat < 51.89342469:
		return 37
	case lat < 53.09516153:
		return 36
	case lat < 54.27817472:
		return 35
	case lat < 55.44378444:
		return 34
	case lat < 56.59318756:
		return 33
	case lat < 57.72747354:
		return 32
	case lat < 58.84763776:
		return 31
	case lat < 59.95459277:
		return 30
	case lat < 61.04917774:
		return 29
	case lat < 62.13216659:
		return 28
	case lat < 63.20427479:
		return 27
	case lat < 64.26616523:
		return 26
	case lat < 65.31845310:
		return 25
	case lat < 66.36171008:
		return 24
	case lat < 67.39646774:
		return 23
	case lat < 68.42322022:
		return 22
	case lat < 69.44242631:
		return 21
	case lat < 70.45451075:
		return 20
	case lat < 71.45986473:
		return 19
	case lat < 72.45884545:
		return 18
	case lat < 73.45177442:
		return 17
	case lat < 74.43893416:
		return 16
	case lat < 75.42056257:
		return 15
	case lat < 76.39684391:
		return 14
	case lat < 77.36789461:
		return 13
	case lat < 78.33374083:
		return 12
	case lat < 79.29428225:
		return 11
	case lat < 80.24923213:
		return 10
	case lat < 81.19801349:
		return 9
	case lat < 82.13956981:
		return 8
	case lat < 83.07199445:
		return 7
	case lat < 83.99173563:
		return 6
	case lat < 84.89166191:
		return 5
	case lat < 85.75541621:
		return 4
	case lat < 86.53536998:
		return 3
	case lat < 87.00000000:
		return 2
	default:
		return 1
	}
}

// cprModFunction is always-positive modulo, used throughout CPR math.
func cprModFunction(a, b int) int {
	res := a % b
	if res < 0 {
		res += b
	}
	return res
}

func cprNFunction(lat float64, odd int) int {
	nl := cprNLFunction(lat) - odd
	if nl < 1 {
		nl = 1
	}
	return nl
}

func cprDlonFunction(lat float64, odd int) float64 {
	return 360.0 / float64(cprNFunction(lat, odd))
}

// cprResult is a decoded (lat, lon) in degrees plus the zone size it was
// resolved at, needed by the local-decode radius check.
type cprResult struct {
	lat, lon float64
}

// decodeCPRGlobal resolves an even/odd pair of full-resolution (17-bit)
// CPR frames into an unambiguous position, following this receiver's prior
// decodeCPR (http://www.lll.lu/~edward/edward/adsb/DecodingADSBposition.html)
// with the NL-mismatch rejection the prior version omitted.
func decodeCPRGlobal(evenLat, evenLon, oddLat, oddLon int, latestIsOdd bool) (cprResult, error) {
	const dLat0 = 360.0 / 60
	const dLat1 = 360.0 / 59

	lat0 := float64(evenLat)
	lat1 := float64(oddLat)
	lon0 := float64(evenLon)
	lon1 := float64(oddLon)

	j := math.Floor((59*lat0-60*lat1)/cprMaxLat + 0.5)
	rlat0 := dLat0 * (float64(cprModFunction(int(j), 60)) + lat0/cprMaxLat)
	rlat1 := dLat1 * (float64(cprModFunction(int(j), 59)) + lat1/cprMaxLat)

	if rlat0 >= 270 {
		rlat0 -= 360
	}
	if rlat1 >= 270 {
		rlat1 -= 360
	}

	if cprNLFunction(rlat0) != cprNLFunction(rlat1) {
		return cprResult{}, ErrCPRInconsistent
	}

	var lat, lon float64
	if !latestIsOdd {
		ni := cprNFunction(rlat0, 0)
		m := math.Floor((lon0*float64(cprNLFunction(rlat0)-1)-lon1*float64(cprNLFunction(rlat0)))/cprMaxLat + 0.5)
		lon = cprDlonFunction(rlat0, 0) * (float64(cprModFunction(int(m), ni)) + lon0/cprMaxLat)
		lat = rlat0
	} else {
		ni := cprNFunction(rlat1, 1)
		m := math.Floor((lon0*float64(cprNLFunction(rlat1)-1)-lon1*float64(cprNLFunction(rlat1)))/cprMaxLat + 0.5)
		lon = cprDlonFunction(rlat1, 1) * (float64(cprModFunction(int(m), ni)) + lon1/cprMaxLat)
		lat = rlat1
	}
	if lon > 180 {
		lon -= 360
	}
	return cprResult{lat: lat, lon: lon}, nil
}

// decodeCPRLocal resolves a single CPR frame relative to a known
// reference position, used when only one new frame has arrived but the
// aircraft's last decoded position is still within the zone's radius
// (the update rule "Local (relative) decode").
func decodeCPRLocal(refLat, refLon float64, cprLat, cprLon int, odd bool) cprResult {
	dLat := 360.0 / 60.0
	isodd := 0
	if odd {
		dLat = 360.0 / 59.0
		isodd = 1
	}

	j := math.Floor(refLat/dLat) + math.Floor(0.5+float64(cprModFunction(int(refLat/dLat*cprMaxLat), int(cprMaxLat)))/cprMaxLat-float64(cprLat)/cprMaxLat)
	lat := dLat * (j + float64(cprLat)/cprMaxLat)

	dlon := cprDlonFunction(lat, isodd)
	m := math.Floor(refLon/dlon) + math.Floor(0.5+float64(cprModFunction(int(refLon/dlon*cprMaxLat), int(cprMaxLat)))/cprMaxLat-float64(cprLon)/cprMaxLat)
	lon := dlon * (m + float64(cprLon)/cprMaxLat)

	return cprResult{lat: lat, lon: lon}
}

// localZoneRadiusKm bounds how far a locally decoded position may lie
// from the aircraft's previous decoded position for the local decode to
// be trusted instead of requiring a fresh global pair (the update rule:
// "the aircraft's previous decoded position is within the zone-size
// radius").
const localZoneRadiusKm = 180.0 // conservative: about a quarter of one 6-degree (~667 km) latitude zone

// decodeCPRSurfaceGlobal resolves a surface position pair. Surface
// frames use a quartered (90 degree) longitude zone, so the decoder
// needs a nearby reference to pick the correct quadrant (the update rule:
// "Surface frames use a quartered zone ... require a recent nearby
// reference").
func decodeCPRSurfaceGlobal(evenLat, evenLon, oddLat, oddLon int, latestIsOdd bool, refLat, refLon float64) (cprResult, error) {
	const dLat0 = 90.0 / 60
	const dLat1 = 90.0 / 59

	lat0 := float64(evenLat)
	lat1 := float64(oddLat)
	lon0 := float64(evenLon)
	lon1 := float64(oddLon)

	j := math.Floor((59*lat0-60*lat1)/cprMaxLat + 0.5)
	rlat0 := dLat0 * (float64(cprModFunction(int(j), 60)) + lat0/cprMaxLat)
	rlat1 := dLat1 * (float64(cprModFunction(int(j), 59)) + lat1/cprMaxLat)

	if cprNLFunction(rlat0) != cprNLFunction(rlat1) {
		return cprResult{}, ErrCPRInconsistent
	}

	var lat, lon float64
	if !latestIsOdd {
		ni := cprNFunction(rlat0, 0)
		m := math.Floor((lon0*float64(cprNLFunction(rlat0)-1)-lon1*float64(cprNLFunction(rlat0)))/cprMaxLat + 0.5)
		lon = (90.0 / float64(ni)) * (float64(cprModFunction(int(m), ni)) + lon0/cprMaxLat)
		lat = rlat0
	} else {
		ni := cprNFunction(rlat1, 1)
		m := math.Floor((lon0*float64(cprNLFunction(rlat1)-1)-lon1*float64(cprNLFunction(rlat1)))/cprMaxLat + 0.5)
		lon = (90.0 / float64(ni)) * (float64(cprModFunction(int(m), ni)) + lon1/cprMaxLat)
		lat = rlat1
	}

	// Resolve the quadrant ambiguity against the reference: surface CPR
	// only ever encodes lat in [0,90) and lon in [0,90), so the true
	// position is one of four reflections of (lat, lon).
	lat, lon = nearestQuadrant(lat, lon, refLat, refLon)
	return cprResult{lat: lat, lon: lon}, nil
}

func nearestQuadrant(lat, lon, refLat, refLon float64) (float64, float64) {
	bestLat, bestLon := lat, lon
	bestDist := math.MaxFloat64
	for _, dlat := range []float64{0, 90, 180, 270} {
		for _, dlon := range []float64{0, 90, 180, 270} {
			cl := lat + dlat
			co := lon + dlon
			if cl > 180 {
				cl -= 360
			}
			if co > 180 {
				co -= 360
			}
			d := haversineKm(refLat, refLon, cl, co)
			if d < bestDist {
				bestDist = d
				bestLat, bestLon = cl, co
			}
		}
	}
	return bestLat, bestLon
}

// decodeCPRCoarseTISB resolves a single 12+12-bit coarse TIS-B frame
// relative to a reference position, at proportionally coarser
// resolution than the 17-bit airborne/surface formats (the update rule:
// "Coarse TIS-B frames are 12+12 bits with proportionally coarser
// resolution").
func decodeCPRCoarseTISB(refLat, refLon float64, cprLat, cprLon int, odd bool) cprResult {
	const coarseScale = 1 << 12
	dLat := 360.0 / 60.0
	isodd := 0
	if odd {
		dLat = 360.0 / 59.0
		isodd = 1
	}
	j := math.Floor(refLat/dLat) + math.Floor(0.5+float64(cprModFunction(int(refLat/dLat*coarseScale), coarseScale))/coarseScale-float64(cprLat)/coarseScale)
	lat := dLat * (j + float64(cprLat)/coarseScale)

	dlon := cprDlonFunction(lat, isodd)
	m := math.Floor(refLon/dlon) + math.Floor(0.5+float64(cprModFunction(int(refLon/dlon*coarseScale), coarseScale))/coarseScale-float64(cprLon)/coarseScale)
	lon := dlon * (m + float64(cprLon)/coarseScale)

	return cprResult{lat: lat, lon: lon}
}
