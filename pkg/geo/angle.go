package geo

import (
	"math"

	"github.com/DigitalGeographyLab/r5/pkg/util"
)

// BearingTo. initial bearing (degree, clockwise from north) of the segment p1 -> p2
func BearingTo(p1Lat, p1Lon, p2Lat, p2Lon float64) float64 {

	dLon := util.DegreeToRadians(p2Lon - p1Lon)

	lat1 := util.DegreeToRadians(p1Lat)
	lat2 := util.DegreeToRadians(p2Lat)

	y := math.Sin(dLon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) -
		math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)
	brng := math.Mod(util.RadiansToDegree(math.Atan2(y, x))+360, 360.0)

	return brng
}

// DeltaBearing. signed heading change from bearing "from" to bearing "to", in (-180, 180]. negative = left.
func DeltaBearing(from, to float64) float64 {
	delta := math.Mod(to-from+540, 360) - 180
	if delta == -180 {
		return 180
	}
	return delta
}
