package costfunction

import (
	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

// TraversalTimeCalculator. source of edge and turn costs consumed by the router
type TraversalTimeCalculator interface {
	TraversalTimeSeconds(edge *da.Edge, mode pkg.StreetMode, req *ProfileRequest) (int, error)
	TurnTimeSeconds(fromEdge, toEdge da.Index, mode pkg.StreetMode) int
}

/*
CostField. extra seconds added on top of the base traversal time of an edge.

implementations are read only after construction and must be safe for concurrent use.
the returned value may be negative, the composed total is clamped at MIN_TRAVERSAL_TIME_SECONDS.
*/
type CostField interface {
	AdditionalTraversalTimeSeconds(edge *da.Edge, baseTraversalTimeSeconds int) int
	DisplayKey() string
	// DisplayValue. raw value stored for the way, 0 when the way has none. diagnostics only
	DisplayValue(wayId int64) float64
}

// ComposeTraversalTime. base + sum of all field contributions, floor clamped
func ComposeTraversalTime(edge *da.Edge, baseTraversalTimeSeconds int, costFields []CostField) int {
	total := baseTraversalTimeSeconds
	for _, field := range costFields {
		total += field.AdditionalTraversalTimeSeconds(edge, baseTraversalTimeSeconds)
	}
	return util.MaxG(total, pkg.MIN_TRAVERSAL_TIME_SECONDS)
}

// ProfileRequest. per mode travel speeds in m/s. CarSpeed 0 means use the edge speed.
type ProfileRequest struct {
	WalkSpeed float64
	BikeSpeed float64
	CarSpeed  float64
}

func NewProfileRequest() *ProfileRequest {
	return &ProfileRequest{
		WalkSpeed: util.KmhToMs(pkg.DEFAULT_WALK_SPEED_KMH),
		BikeSpeed: util.KmhToMs(pkg.DEFAULT_BIKE_SPEED_KMH),
	}
}

// SetStaticSpeed. same speed for every mode
func (r *ProfileRequest) SetStaticSpeed(speedKmh float64) {
	speedMs := util.KmhToMs(speedKmh)
	r.WalkSpeed = speedMs
	r.BikeSpeed = speedMs
	r.CarSpeed = speedMs
}

// ProfileRequestFor. request for routing mode at speedKmh. CAR keeps CarSpeed 0, so cars drive at the speed of each edge.
func ProfileRequestFor(mode pkg.StreetMode, speedKmh float64) *ProfileRequest {
	r := NewProfileRequest()
	switch mode {
	case pkg.WALK:
		r.WalkSpeed = util.KmhToMs(speedKmh)
	case pkg.BICYCLE:
		r.BikeSpeed = util.KmhToMs(speedKmh)
	}
	return r
}

func (r *ProfileRequest) SpeedFor(mode pkg.StreetMode) float64 {
	switch mode {
	case pkg.WALK:
		return r.WalkSpeed
	case pkg.BICYCLE:
		return r.BikeSpeed
	case pkg.CAR:
		return r.CarSpeed
	default:
		return 0
	}
}
