package costfunction

import (
	"math"

	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/geo"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

// BasicTraversalTimeCalculator. physical travel time from edge length and speed, turn costs for cars
type BasicTraversalTimeCalculator struct {
	store           *da.EdgeStore
	congestionLevel CongestionLevel
	crossingPenalty bool
}

func NewBasicTraversalTimeCalculator(store *da.EdgeStore, congestionLevel CongestionLevel,
	crossingPenalty bool) *BasicTraversalTimeCalculator {
	return &BasicTraversalTimeCalculator{
		store:           store,
		congestionLevel: congestionLevel,
		crossingPenalty: crossingPenalty,
	}
}

func (tf *BasicTraversalTimeCalculator) TraversalTimeSeconds(edge *da.Edge, mode pkg.StreetMode,
	req *ProfileRequest) (int, error) {
	speed := req.SpeedFor(mode)
	if mode == pkg.CAR && speed <= 0 {
		speed = util.KmhToMs(edge.GetSpeedKmh())
	}
	if speed <= 0 || math.IsNaN(speed) {
		return 0, util.WrapErrorf(nil, util.ErrInvalidArgument, "no usable %s speed for edge %d", mode, edge.GetEdgeIndex())
	}
	seconds := util.RoundHalfAwayFromZero(edge.GetLengthM() / speed)
	return util.MaxG(seconds, 0), nil
}

// TurnTimeSeconds. only cars pay for turning. walking and cycling turns are free.
func (tf *BasicTraversalTimeCalculator) TurnTimeSeconds(fromEdge, toEdge da.Index, mode pkg.StreetMode) int {
	if mode != pkg.CAR {
		return 0
	}

	seconds := 0
	switch tf.TurnType(fromEdge, toEdge) {
	case pkg.LEFT_TURN:
		seconds = pkg.LEFT_TURN_SECONDS_CAR
	case pkg.RIGHT_TURN:
		seconds = pkg.RIGHT_TURN_SECONDS_CAR
	case pkg.U_TURN:
		seconds = pkg.U_TURN_SECONDS_CAR
	}

	if tf.crossingPenalty && tf.store.IsIntersection(tf.store.GetToVertex(fromEdge)) {
		class := JaakkonenClassOf(tf.store.GetHighwayType(toEdge))
		seconds += util.RoundHalfAwayFromZero(CrossingPenaltySeconds(tf.congestionLevel, class))
	}
	return seconds
}

// TurnType. classify the heading change between the last segment of fromEdge and the first segment of toEdge
func (tf *BasicTraversalTimeCalculator) TurnType(fromEdge, toEdge da.Index) pkg.TurnType {
	fromGeom := tf.store.GetEdgeGeometry(fromEdge)
	toGeom := tf.store.GetEdgeGeometry(toEdge)
	if len(fromGeom) < 2 || len(toGeom) < 2 {
		return pkg.STRAIGHT_ON
	}

	a, b := fromGeom[len(fromGeom)-2], fromGeom[len(fromGeom)-1]
	c, d := toGeom[0], toGeom[1]
	inBearing := geo.BearingTo(a.Lat, a.Lon, b.Lat, b.Lon)
	outBearing := geo.BearingTo(c.Lat, c.Lon, d.Lat, d.Lon)
	delta := geo.DeltaBearing(inBearing, outBearing)

	switch {
	case math.Abs(delta) < pkg.STRAIGHT_ON_THRESHOLD_DEGREE:
		return pkg.STRAIGHT_ON
	case math.Abs(delta) >= pkg.U_TURN_THRESHOLD_DEGREE:
		return pkg.U_TURN
	case delta < 0:
		return pkg.LEFT_TURN
	default:
		return pkg.RIGHT_TURN
	}
}
