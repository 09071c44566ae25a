package tracker

import "math"

const earthRadiusKm = 6371.0

// haversineKm computes great-circle distance between two lat/lon pairs
// in degrees. No example in the pack ships a geo/distance library (the
// closest, doismellburning-samoyed's coordconv, solves UTM/MGRS
// conversion, a different problem), so this is plain stdlib math,
// justified as the narrow exception the grounding rule allows.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

// bearingDegrees computes the initial great-circle bearing from (lat1,
// lon1) to (lat2, lon2), in degrees clockwise from true north.
func bearingDegrees(lat1, lon1, lat2, lon2 float64) float64 {
	rlat1 := lat1 * math.Pi / 180
	rlat2 := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(rlat2)
	x := math.Cos(rlat1)*math.Sin(rlat2) - math.Sin(rlat1)*math.Cos(rlat2)*math.Cos(dLon)
	brg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(brg+360, 360)
}
