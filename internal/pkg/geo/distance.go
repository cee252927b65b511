package geo

import "math"

const earthRadiusKm = 6371

// Point is a coordinate pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

func toRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// HaversineDistanceKm returns the great-circle distance between two points in
// kilometers. Pure; callers are responsible for presence checks.
func HaversineDistanceKm(from, to Point) float64 {
	latDelta := toRadians(to.Lat - from.Lat)
	lngDelta := toRadians(to.Lng - from.Lng)
	fromLatRad := toRadians(from.Lat)
	toLatRad := toRadians(to.Lat)

	a := math.Sin(latDelta/2)*math.Sin(latDelta/2) +
		math.Cos(fromLatRad)*math.Cos(toLatRad)*math.Sin(lngDelta/2)*math.Sin(lngDelta/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusKm * c
}
