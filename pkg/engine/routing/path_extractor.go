package routing

import (
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/samber/lo"
)

// StreetEdgeInfo. one hop of a reconstructed path
type StreetEdgeInfo struct {
	EdgeIndex da.Index
	WayID     da.WayID
}

func WayIDsOf(path []StreetEdgeInfo) []da.WayID {
	return lo.Map(path, func(hop StreetEdgeInfo, _ int) da.WayID {
		return hop.WayID
	})
}

// OriginDestinationPathExtractor. rebuilds origin -> destination edge sequences from a finished search
type OriginDestinationPathExtractor struct {
	store *da.EdgeStore
}

func NewOriginDestinationPathExtractor(store *da.EdgeStore) *OriginDestinationPathExtractor {
	return &OriginDestinationPathExtractor{store: store}
}

/*
ExtractPath. walk parent edges from the arrival edge of destination back to the origin, then reverse.

every hop is recorded, edges without a way id carry NoWayID. the walk is bounded by the number of
edges of the store, a longer chain means the search state is corrupt (cycle) and fails with ErrInternalConsistency.
ok is false when destination was not reached. the origin itself gives an empty path.
*/
func (pe *OriginDestinationPathExtractor) ExtractPath(state SearchState, destination da.Index) ([]StreetEdgeInfo, bool, error) {
	e, ok := state.ArrivalEdge(destination)
	if !ok {
		return nil, false, nil
	}

	numberOfEdges := pe.store.NumberOfEdges()
	path := make([]StreetEdgeInfo, 0)
	for e != da.INVALID_EDGE_ID {
		if int(e) >= numberOfEdges {
			return nil, false, util.WrapErrorf(nil, util.ErrInternalConsistency,
				"path to vertex %d references unknown edge %d", destination, e)
		}
		if len(path) >= numberOfEdges {
			return nil, false, util.WrapErrorf(nil, util.ErrInternalConsistency,
				"path to vertex %d is longer than the number of edges (%d), predecessor chain has a cycle", destination, numberOfEdges)
		}
		path = append(path, StreetEdgeInfo{EdgeIndex: e, WayID: pe.store.GetWayID(e)})
		e = state.ParentEdge(e)
	}

	return util.ReverseG(path), true, nil
}

// PathGeometry. concatenated edge geometries, shared junction points appear once
func (pe *OriginDestinationPathExtractor) PathGeometry(path []StreetEdgeInfo) []da.Coordinate {
	geometry := make([]da.Coordinate, 0, len(path)*2)
	for _, hop := range path {
		edgeGeometry := pe.store.GetEdgeGeometry(hop.EdgeIndex)
		if len(geometry) > 0 && len(edgeGeometry) > 0 && geometry[len(geometry)-1] == edgeGeometry[0] {
			edgeGeometry = edgeGeometry[1:]
		}
		geometry = append(geometry, edgeGeometry...)
	}
	return geometry
}

// Extract. fill travel times of every destination, and way id paths when the result tracks them
func (pe *OriginDestinationPathExtractor) Extract(state SearchState, destinations []da.Index, result *OneOriginResult) error {
	for i, destination := range destinations {
		if travelTime, ok := state.TravelTimeSeconds(destination); ok {
			result.setTravelTime(i, travelTime)
		}
		if !result.TracksWayIDs() {
			continue
		}

		path, ok, err := pe.ExtractPath(state, destination)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		result.setWayIDPath(i, WayIDsOf(path))
		if result.includeGeometry {
			result.setGeometry(i, pe.PathGeometry(path))
		}
	}
	return nil
}
