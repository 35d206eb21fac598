package geo

import (
	"math"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

const (
	earthRadiusM = 6371.0 * 1000.0
)

// S2DistanceMeters. great circle distance between two lat/lon (degree) in meter
func S2DistanceMeters(latOne, lonOne, latTwo, lonTwo float64) float64 {
	a := s2.LatLngFromDegrees(latOne, lonOne)
	b := s2.LatLngFromDegrees(latTwo, lonTwo)
	return a.Distance(b).Radians() * earthRadiusM
}

// DestinationPoint. point reached from (lat, lon) after distM meter along the initial bearing (degree)
func DestinationPoint(lat, lon, bearing, distM float64) (float64, float64) {
	start := s2.LatLngFromDegrees(lat, lon)
	dr := distM / earthRadiusM
	brng := (s1.Angle(bearing) * s1.Degree).Radians()

	lat1, lon1 := start.Lat.Radians(), start.Lng.Radians()
	lat2 := math.Asin(math.Sin(lat1)*math.Cos(dr) + math.Cos(lat1)*math.Sin(dr)*math.Cos(brng))
	lon2 := lon1 + math.Atan2(math.Sin(brng)*math.Sin(dr)*math.Cos(lat1), math.Cos(dr)-math.Sin(lat1)*math.Sin(lat2))

	end := s2.LatLng{Lat: s1.Angle(lat2), Lng: s1.Angle(lon2)}.Normalized()
	return end.Lat.Degrees(), end.Lng.Degrees()
}
