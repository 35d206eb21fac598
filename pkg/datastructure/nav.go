package datastructure

import "github.com/DigitalGeographyLab/r5/pkg/geo"

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

func NewCoordinate(lat, lon float64) Coordinate {
	return Coordinate{
		Lat: lat,
		Lon: lon,
	}
}

func (c Coordinate) GetLat() float64 {
	return c.Lat
}

func (c Coordinate) GetLon() float64 {
	return c.Lon
}

// PolylineLengthMeters. geodesic length of a sequence of coordinates in meter
func PolylineLengthMeters(points []Coordinate) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += geo.S2DistanceMeters(points[i-1].Lat, points[i-1].Lon, points[i].Lat, points[i].Lon)
	}
	return total
}
