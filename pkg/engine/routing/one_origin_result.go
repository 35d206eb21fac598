package routing

import (
	"math"

	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
)

const (
	UNREACHED = math.MaxInt32
)

/*
OneOriginResult. travel times from one origin to every destination of a batch, plus way id paths when tracking is on.

tracking is fixed when the result is created. without tracking the path slices are never allocated,
WayIDPaths reports them absent instead of returning a slice of empty paths.
*/
type OneOriginResult struct {
	originIndex     int
	travelTimes     []int
	wayIdPaths      [][]da.WayID
	geometries      [][]da.Coordinate
	trackWayIds     bool
	includeGeometry bool
}

func NewOneOriginResult(originIndex, numberOfDestinations int, trackWayIds, includeGeometry bool) *OneOriginResult {
	travelTimes := make([]int, numberOfDestinations)
	for i := range travelTimes {
		travelTimes[i] = UNREACHED
	}

	res := &OneOriginResult{
		originIndex:     originIndex,
		travelTimes:     travelTimes,
		trackWayIds:     trackWayIds,
		includeGeometry: trackWayIds && includeGeometry,
	}
	if trackWayIds {
		res.wayIdPaths = make([][]da.WayID, numberOfDestinations)
	}
	if res.includeGeometry {
		res.geometries = make([][]da.Coordinate, numberOfDestinations)
	}
	return res
}

func (r *OneOriginResult) GetOriginIndex() int {
	return r.originIndex
}

func (r *OneOriginResult) NumberOfDestinations() int {
	return len(r.travelTimes)
}

func (r *OneOriginResult) TracksWayIDs() bool {
	return r.trackWayIds
}

// TravelTimeSeconds. UNREACHED when the destination was not reached within the duration limit
func (r *OneOriginResult) TravelTimeSeconds(destinationIndex int) int {
	return r.travelTimes[destinationIndex]
}

func (r *OneOriginResult) TravelTimes() []int {
	return r.travelTimes
}

// WayIDPaths. per destination way ids in origin -> destination order. nil entry = destination unreached.
// ok is false when the result does not track way ids.
func (r *OneOriginResult) WayIDPaths() ([][]da.WayID, bool) {
	if !r.trackWayIds {
		return nil, false
	}
	return r.wayIdPaths, true
}

func (r *OneOriginResult) WayIDPath(destinationIndex int) ([]da.WayID, bool) {
	if !r.trackWayIds || r.wayIdPaths[destinationIndex] == nil {
		return nil, false
	}
	return r.wayIdPaths[destinationIndex], true
}

func (r *OneOriginResult) Geometry(destinationIndex int) ([]da.Coordinate, bool) {
	if !r.includeGeometry || r.geometries[destinationIndex] == nil {
		return nil, false
	}
	return r.geometries[destinationIndex], true
}

func (r *OneOriginResult) setTravelTime(destinationIndex, seconds int) {
	r.travelTimes[destinationIndex] = seconds
}

func (r *OneOriginResult) setWayIDPath(destinationIndex int, path []da.WayID) {
	r.wayIdPaths[destinationIndex] = path
}

func (r *OneOriginResult) setGeometry(destinationIndex int, geometry []da.Coordinate) {
	r.geometries[destinationIndex] = geometry
}
