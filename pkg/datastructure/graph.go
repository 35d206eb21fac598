package datastructure

import (
	"math"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

type Index uint32

const (
	INVALID_EDGE_ID   = Index(math.MaxUint32)
	INVALID_VERTEX_ID = Index(math.MaxUint32)
)

// EdgePermission. bit flags of the street modes allowed to traverse an edge
type EdgePermission uint8

const (
	ALLOWS_WALK EdgePermission = 1 << iota
	ALLOWS_BIKE
	ALLOWS_CAR

	ALLOWS_ALL = ALLOWS_WALK | ALLOWS_BIKE | ALLOWS_CAR
)

func PermissionFor(mode pkg.StreetMode) EdgePermission {
	switch mode {
	case pkg.WALK:
		return ALLOWS_WALK
	case pkg.BICYCLE:
		return ALLOWS_BIKE
	case pkg.CAR:
		return ALLOWS_CAR
	default:
		return 0
	}
}

func (p EdgePermission) Allows(mode pkg.StreetMode) bool {
	flag := PermissionFor(mode)
	return flag != 0 && p&flag == flag
}

type Vertex struct {
	lat float64
	lon float64
	id  Index
}

func NewVertex(lat, lon float64, id Index) Vertex {
	return Vertex{lat: lat, lon: lon, id: id}
}

func (v *Vertex) GetID() Index {
	return v.id
}

func (v *Vertex) GetLat() float64 {
	return v.lat
}

func (v *Vertex) GetLon() float64 {
	return v.lon
}

type turnPair struct {
	fromEdge Index
	toEdge   Index
}

/*
EdgeStore. street graph stored as dense per-edge arrays.

edges are appended with AddEdge, then Freeze builds the csr adjacency
(outEdgeOffsets[v]..outEdgeOffsets[v+1] in outEdges are the out edges of vertex v).
after Freeze the store is read only and can be shared by any number of searches.
*/
type EdgeStore struct {
	vertices []Vertex

	fromVertex  []Index
	toVertex    []Index
	lengthMm    []int32
	speedKmh    []float32
	highwayType []pkg.OsmHighwayType
	permissions []EdgePermission

	graphStorage *GraphStorage

	outEdgeOffsets []Index
	outEdges       []Index
	inEdgeOffsets  []Index
	inEdges        []Index

	turnRestrictions map[turnPair]struct{}

	// vertices adjacent to at least 3 distinct other vertices, built at Freeze
	intersections []bool

	frozen bool
}

func NewEdgeStore() *EdgeStore {
	return NewEdgeStoreWithSize(0, 0)
}

func NewEdgeStoreWithSize(numberOfVertices, numberOfEdges int) *EdgeStore {
	return &EdgeStore{
		vertices:         make([]Vertex, 0, numberOfVertices),
		fromVertex:       make([]Index, 0, numberOfEdges),
		toVertex:         make([]Index, 0, numberOfEdges),
		lengthMm:         make([]int32, 0, numberOfEdges),
		speedKmh:         make([]float32, 0, numberOfEdges),
		highwayType:      make([]pkg.OsmHighwayType, 0, numberOfEdges),
		permissions:      make([]EdgePermission, 0, numberOfEdges),
		graphStorage:     NewGraphStorageWithSize(numberOfEdges),
		turnRestrictions: make(map[turnPair]struct{}),
	}
}

func (es *EdgeStore) AddVertex(lat, lon float64) (Index, error) {
	if es.frozen {
		return INVALID_VERTEX_ID, util.WrapErrorf(nil, util.ErrInternalConsistency, "edge store is frozen, cannot add vertex")
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return INVALID_VERTEX_ID, util.WrapErrorf(nil, util.ErrInvalidArgument, "invalid vertex coordinate (%f, %f)", lat, lon)
	}
	id := Index(len(es.vertices))
	es.vertices = append(es.vertices, NewVertex(lat, lon, id))
	return id, nil
}

/*
AddEdge. append a directed edge from -> to.

lengthM <= 0 means the length is computed from the geometry (or from the vertex
coordinates when geometry is empty). geometry, when given, must include both end points.
*/
func (es *EdgeStore) AddEdge(from, to Index, lengthM, speedKmh float64, highwayType pkg.OsmHighwayType,
	permission EdgePermission, wayId WayID, geometry []Coordinate) (Index, error) {
	if es.frozen {
		return INVALID_EDGE_ID, util.WrapErrorf(nil, util.ErrInternalConsistency, "edge store is frozen, cannot add edge")
	}
	if int(from) >= len(es.vertices) || int(to) >= len(es.vertices) {
		return INVALID_EDGE_ID, util.WrapErrorf(nil, util.ErrInvalidArgument, "edge (%d -> %d) references an unknown vertex", from, to)
	}
	if speedKmh < 0 || math.IsNaN(speedKmh) {
		return INVALID_EDGE_ID, util.WrapErrorf(nil, util.ErrInvalidArgument, "invalid edge speed %f", speedKmh)
	}

	if len(geometry) == 0 {
		fromV, toV := es.vertices[from], es.vertices[to]
		geometry = []Coordinate{NewCoordinate(fromV.lat, fromV.lon), NewCoordinate(toV.lat, toV.lon)}
	}
	if lengthM <= 0 {
		lengthM = PolylineLengthMeters(geometry)
	}

	edgeID := Index(len(es.fromVertex))
	es.fromVertex = append(es.fromVertex, from)
	es.toVertex = append(es.toVertex, to)
	es.lengthMm = append(es.lengthMm, int32(math.Round(lengthM*1000)))
	es.speedKmh = append(es.speedKmh, float32(speedKmh))
	es.highwayType = append(es.highwayType, highwayType)
	es.permissions = append(es.permissions, permission)
	es.graphStorage.appendEdge(edgeID, wayId, geometry)
	return edgeID, nil
}

// AddTurnRestriction. forbid the turn from fromEdge into toEdge
func (es *EdgeStore) AddTurnRestriction(fromEdge, toEdge Index) error {
	if es.frozen {
		return util.WrapErrorf(nil, util.ErrInternalConsistency, "edge store is frozen, cannot add turn restriction")
	}
	if int(fromEdge) >= es.NumberOfEdges() || int(toEdge) >= es.NumberOfEdges() {
		return util.WrapErrorf(nil, util.ErrInvalidArgument, "turn restriction (%d -> %d) references an unknown edge", fromEdge, toEdge)
	}
	if es.toVertex[fromEdge] != es.fromVertex[toEdge] {
		return util.WrapErrorf(nil, util.ErrInvalidArgument, "turn restriction edges %d and %d do not share a vertex", fromEdge, toEdge)
	}
	es.turnRestrictions[turnPair{fromEdge: fromEdge, toEdge: toEdge}] = struct{}{}
	return nil
}

// Freeze. build csr adjacency. the store is read only afterwards. calling Freeze twice is a no-op
func (es *EdgeStore) Freeze() {
	if es.frozen {
		return
	}
	es.outEdgeOffsets, es.outEdges = buildCSR(len(es.vertices), es.fromVertex)
	es.inEdgeOffsets, es.inEdges = buildCSR(len(es.vertices), es.toVertex)
	es.intersections = es.markIntersections()
	es.frozen = true
}

func (es *EdgeStore) markIntersections() []bool {
	intersections := make([]bool, len(es.vertices))
	neighbours := make(map[Index]struct{}, 8)
	for v := range es.vertices {
		clear(neighbours)
		vertex := Index(v)
		es.ForOutEdgesOf(vertex, func(e Index) {
			neighbours[es.toVertex[e]] = struct{}{}
		})
		es.ForInEdgesOf(vertex, func(e Index) {
			neighbours[es.fromVertex[e]] = struct{}{}
		})
		intersections[v] = len(neighbours) >= 3
	}
	return intersections
}

// IsIntersection. v is adjacent to at least 3 distinct other vertices. only valid after Freeze
func (es *EdgeStore) IsIntersection(v Index) bool {
	return es.intersections[v]
}

// buildCSR. counting sort of edge ids by their key vertex. edges of one vertex keep ascending edge id order
func buildCSR(numberOfVertices int, keyVertex []Index) ([]Index, []Index) {
	offsets := make([]Index, numberOfVertices+1)
	for _, v := range keyVertex {
		offsets[v+1]++
	}
	for v := 1; v <= numberOfVertices; v++ {
		offsets[v] += offsets[v-1]
	}

	edges := make([]Index, len(keyVertex))
	next := make([]Index, numberOfVertices)
	copy(next, offsets[:numberOfVertices])
	for e, v := range keyVertex {
		edges[next[v]] = Index(e)
		next[v]++
	}
	return offsets, edges
}

func (es *EdgeStore) IsFrozen() bool {
	return es.frozen
}

func (es *EdgeStore) NumberOfEdges() int {
	return len(es.fromVertex)
}

func (es *EdgeStore) NumberOfVertices() int {
	return len(es.vertices)
}

func (es *EdgeStore) GetVertex(v Index) Vertex {
	return es.vertices[v]
}

func (es *EdgeStore) GetVertexCoordinates(v Index) (float64, float64) {
	return es.vertices[v].lat, es.vertices[v].lon
}

func (es *EdgeStore) GetVertices() []Vertex {
	return es.vertices
}

// ForOutEdgesOf. only valid after Freeze
func (es *EdgeStore) ForOutEdgesOf(v Index, handle func(edgeID Index)) {
	for i := es.outEdgeOffsets[v]; i < es.outEdgeOffsets[v+1]; i++ {
		handle(es.outEdges[i])
	}
}

// ForInEdgesOf. only valid after Freeze
func (es *EdgeStore) ForInEdgesOf(v Index, handle func(edgeID Index)) {
	for i := es.inEdgeOffsets[v]; i < es.inEdgeOffsets[v+1]; i++ {
		handle(es.inEdges[i])
	}
}

func (es *EdgeStore) GetOutDegree(v Index) int {
	return int(es.outEdgeOffsets[v+1] - es.outEdgeOffsets[v])
}

func (es *EdgeStore) GetInDegree(v Index) int {
	return int(es.inEdgeOffsets[v+1] - es.inEdgeOffsets[v])
}

func (es *EdgeStore) IsTurnRestricted(fromEdge, toEdge Index) bool {
	_, ok := es.turnRestrictions[turnPair{fromEdge: fromEdge, toEdge: toEdge}]
	return ok
}

func (es *EdgeStore) NumberOfTurnRestrictions() int {
	return len(es.turnRestrictions)
}

func (es *EdgeStore) GetFromVertex(e Index) Index {
	return es.fromVertex[e]
}

func (es *EdgeStore) GetToVertex(e Index) Index {
	return es.toVertex[e]
}

func (es *EdgeStore) GetWayID(e Index) WayID {
	return es.graphStorage.GetWayID(e)
}

func (es *EdgeStore) GetEdgeGeometry(e Index) []Coordinate {
	return es.graphStorage.GetEdgeGeometry(e)
}

func (es *EdgeStore) GetLengthMm(e Index) int32 {
	return es.lengthMm[e]
}

func (es *EdgeStore) GetSpeedKmh(e Index) float64 {
	return float64(es.speedKmh[e])
}

func (es *EdgeStore) GetHighwayType(e Index) pkg.OsmHighwayType {
	return es.highwayType[e]
}

func (es *EdgeStore) GetPermission(e Index) EdgePermission {
	return es.permissions[e]
}

// GetCursor. cursor positioned before the first edge, call Advance to move onto edge 0
func (es *EdgeStore) GetCursor() *Edge {
	return &Edge{store: es, edgeIndex: -1}
}

func (es *EdgeStore) GetCursorAt(e Index) (*Edge, error) {
	cursor := es.GetCursor()
	if err := cursor.Seek(e); err != nil {
		return nil, err
	}
	return cursor, nil
}
