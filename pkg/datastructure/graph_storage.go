package datastructure

import (
	"math"
)

// GraphStorage. per-edge extra info that the router does not need on the hot path: osm way ids and edge geometry.
type GraphStorage struct {
	globalPoints []Coordinate

	/*
		32 bit -> 32 boolean flag for way id presence

		idx in flag array = floor(edgeID/32)
		idx in flag = edgeID % 32
	*/
	wayIdFlag []Index
	osmWayIds []int64

	mapEdgeInfo []EdgeExtraInfo
}

type EdgeExtraInfo struct {
	startPointsIndex Index
	endPointsIndex   Index
}

func NewEdgeExtraInfo(startPointsIdx, endPointsIdx Index) EdgeExtraInfo {
	return EdgeExtraInfo{
		startPointsIndex: startPointsIdx,
		endPointsIndex:   endPointsIdx,
	}
}

func (e *EdgeExtraInfo) GetStartPointsIndex() Index {
	return e.startPointsIndex
}

func (e *EdgeExtraInfo) GetEndPointsIndex() Index {
	return e.endPointsIndex
}

func NewGraphStorage() *GraphStorage {
	return &GraphStorage{
		globalPoints: make([]Coordinate, 0),
		wayIdFlag:    make([]Index, 0),
		osmWayIds:    make([]int64, 0),
		mapEdgeInfo:  make([]EdgeExtraInfo, 0),
	}
}

func NewGraphStorageWithSize(numberOfEdges int) *GraphStorage {
	return &GraphStorage{
		globalPoints: make([]Coordinate, 0, numberOfEdges*2),
		wayIdFlag:    make([]Index, 0, numberOfEdges/32+1),
		osmWayIds:    make([]int64, 0, numberOfEdges),
		mapEdgeInfo:  make([]EdgeExtraInfo, 0, numberOfEdges),
	}
}

// appendEdge. edgeID must be the next edge index (len of osmWayIds)
func (gs *GraphStorage) appendEdge(edgeID Index, wayId WayID, geometry []Coordinate) {
	id, ok := wayId.Get()
	gs.osmWayIds = append(gs.osmWayIds, id)
	gs.setWayIdFlag(edgeID, ok)

	start := Index(len(gs.globalPoints))
	gs.globalPoints = append(gs.globalPoints, geometry...)
	end := Index(len(gs.globalPoints))
	gs.mapEdgeInfo = append(gs.mapEdgeInfo, NewEdgeExtraInfo(start, end))
}

func (gs *GraphStorage) setWayIdFlag(edgeID Index, present bool) {
	index := int(math.Floor(float64(edgeID) / 32))
	if len(gs.wayIdFlag) <= index {
		gs.wayIdFlag = append(gs.wayIdFlag, make([]Index, index-len(gs.wayIdFlag)+1)...)
	}
	if present {
		gs.wayIdFlag[index] |= 1 << (edgeID % 32)
	}
}

func (gs *GraphStorage) hasWayId(edgeID Index) bool {
	index := int(math.Floor(float64(edgeID) / 32))
	if index >= len(gs.wayIdFlag) {
		return false
	}
	return (gs.wayIdFlag[index] & (1 << (edgeID % 32))) != 0
}

func (gs *GraphStorage) GetWayID(edgeID Index) WayID {
	if !gs.hasWayId(edgeID) {
		return NoWayID()
	}
	return NewWayID(gs.osmWayIds[edgeID])
}

func (gs *GraphStorage) GetEdgeGeometry(edgeID Index) []Coordinate {
	edge := gs.mapEdgeInfo[edgeID]
	return gs.globalPoints[edge.startPointsIndex:edge.endPointsIndex]
}

func (gs *GraphStorage) GetGlobalPointsCount() int {
	return len(gs.globalPoints)
}
