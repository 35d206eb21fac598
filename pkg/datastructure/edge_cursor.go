package datastructure

import (
	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

// Edge. reusable cursor over an EdgeStore. not safe for concurrent use, each goroutine takes its own cursor.
type Edge struct {
	store     *EdgeStore
	edgeIndex int64
}

// Advance. move to the next edge. returns false once past the last edge
func (e *Edge) Advance() bool {
	if e.edgeIndex < int64(e.store.NumberOfEdges()) {
		e.edgeIndex++
	}
	return e.edgeIndex < int64(e.store.NumberOfEdges())
}

func (e *Edge) Seek(edgeIndex Index) error {
	if int(edgeIndex) >= e.store.NumberOfEdges() {
		return util.WrapErrorf(nil, util.ErrInvalidArgument, "edge index %d out of range [0, %d)", edgeIndex, e.store.NumberOfEdges())
	}
	e.edgeIndex = int64(edgeIndex)
	return nil
}

func (e *Edge) GetEdgeIndex() Index {
	return Index(e.edgeIndex)
}

func (e *Edge) GetWayID() WayID {
	return e.store.GetWayID(e.GetEdgeIndex())
}

func (e *Edge) GetLengthMm() int32 {
	return e.store.lengthMm[e.edgeIndex]
}

func (e *Edge) GetLengthM() float64 {
	return float64(e.store.lengthMm[e.edgeIndex]) / 1000.0
}

func (e *Edge) GetSpeedKmh() float64 {
	return float64(e.store.speedKmh[e.edgeIndex])
}

func (e *Edge) GetHighwayType() pkg.OsmHighwayType {
	return e.store.highwayType[e.edgeIndex]
}

func (e *Edge) GetFromVertex() Index {
	return e.store.fromVertex[e.edgeIndex]
}

func (e *Edge) GetToVertex() Index {
	return e.store.toVertex[e.edgeIndex]
}

func (e *Edge) GetPermission() EdgePermission {
	return e.store.permissions[e.edgeIndex]
}

func (e *Edge) AllowsMode(mode pkg.StreetMode) bool {
	return e.GetPermission().Allows(mode)
}

func (e *Edge) GetGeometry() []Coordinate {
	return e.store.GetEdgeGeometry(e.GetEdgeIndex())
}

func (e *Edge) GetStore() *EdgeStore {
	return e.store
}
