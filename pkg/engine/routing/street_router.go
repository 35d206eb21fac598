package routing

import (
	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

/*
StreetRouter. edge based one-to-many dijkstra over a frozen edge store.

labels live on edges instead of vertices so turn costs and turn restrictions (fromEdge, toEdge) can be
applied exactly. the arrival at a vertex is the first settled edge whose head is that vertex.
edge and turn costs come from any TraversalTimeCalculator, so a pre-calculated table can be plugged in.

a StreetRouter holds no per search state, one instance can serve concurrent Route calls.
*/
type StreetRouter struct {
	store              *da.EdgeStore
	calculator         costfunction.TraversalTimeCalculator
	req                *costfunction.ProfileRequest
	mode               pkg.StreetMode
	maxDurationSeconds int
}

// NewStreetRouter. maxDurationSeconds <= 0 means unbounded
func NewStreetRouter(store *da.EdgeStore, calculator costfunction.TraversalTimeCalculator,
	req *costfunction.ProfileRequest, mode pkg.StreetMode, maxDurationSeconds int) *StreetRouter {
	return &StreetRouter{
		store:              store,
		calculator:         calculator,
		req:                req,
		mode:               mode,
		maxDurationSeconds: maxDurationSeconds,
	}
}

type StreetRouterState struct {
	origin          da.Index
	edgeLabels      map[da.Index]*EdgeLabel
	arrivals        map[da.Index]vertexArrival
	numSettledEdges int
}

func newStreetRouterState(origin da.Index) *StreetRouterState {
	return &StreetRouterState{
		origin:     origin,
		edgeLabels: make(map[da.Index]*EdgeLabel),
		arrivals:   make(map[da.Index]vertexArrival),
	}
}

func (s *StreetRouterState) GetOrigin() da.Index {
	return s.origin
}

func (s *StreetRouterState) ArrivalEdge(v da.Index) (da.Index, bool) {
	arrival, ok := s.arrivals[v]
	if !ok {
		return da.INVALID_EDGE_ID, false
	}
	return arrival.edge, true
}

func (s *StreetRouterState) ParentEdge(e da.Index) da.Index {
	label, ok := s.edgeLabels[e]
	if !ok {
		return da.INVALID_EDGE_ID
	}
	return label.GetParent()
}

func (s *StreetRouterState) TravelTimeSeconds(v da.Index) (int, bool) {
	arrival, ok := s.arrivals[v]
	if !ok {
		return 0, false
	}
	return arrival.travelTime, true
}

func (s *StreetRouterState) NumSettledEdges() int {
	return s.numSettledEdges
}

func (s *StreetRouterState) NumReachedVertices() int {
	return len(s.arrivals)
}

type search struct {
	router *StreetRouter
	state  *StreetRouterState
	pq     *da.MinHeap[da.Index]
	cursor *da.Edge
	err    error
}

// Route. search from origin until every target vertex is reached, the duration limit is hit or the queue runs dry.
// an empty targets slice explores everything within the limit.
func (r *StreetRouter) Route(origin da.Index, targets []da.Index) (*StreetRouterState, error) {
	if int(origin) >= r.store.NumberOfVertices() {
		return nil, util.WrapErrorf(nil, util.ErrInvalidArgument, "origin vertex %d out of range", origin)
	}

	remaining := make(map[da.Index]struct{}, len(targets))
	for _, t := range targets {
		remaining[t] = struct{}{}
	}

	s := &search{
		router: r,
		state:  newStreetRouterState(origin),
		pq:     da.NewFourAryHeap[da.Index](),
		cursor: r.store.GetCursor(),
	}

	s.state.arrivals[origin] = vertexArrival{edge: da.INVALID_EDGE_ID, travelTime: 0}
	delete(remaining, origin)
	if len(targets) > 0 && len(remaining) == 0 {
		return s.state, nil
	}

	r.store.ForOutEdgesOf(origin, func(e da.Index) {
		s.relax(e, da.INVALID_EDGE_ID, 0)
	})
	if s.err != nil {
		return nil, s.err
	}

	for !s.pq.IsEmpty() {
		node, err := s.pq.ExtractMin()
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrInternalConsistency, "priority queue")
		}
		e := node.GetItem()
		label := s.state.edgeLabels[e]
		label.Scan()
		s.state.numSettledEdges++

		v := r.store.GetToVertex(e)
		if _, reached := s.state.arrivals[v]; !reached {
			s.state.arrivals[v] = vertexArrival{edge: e, travelTime: label.GetTravelTime()}
			delete(remaining, v)
			if len(targets) > 0 && len(remaining) == 0 {
				break
			}
		}

		r.store.ForOutEdgesOf(v, func(f da.Index) {
			if r.store.IsTurnRestricted(e, f) {
				return
			}
			s.relax(f, e, label.GetTravelTime())
		})
		if s.err != nil {
			return nil, s.err
		}
	}

	return s.state, nil
}

// relax. candidate label for edge f entered from parent at time arrivalTime (end of parent)
func (s *search) relax(f, parent da.Index, arrivalTime int) {
	if s.err != nil {
		return
	}
	r := s.router
	if err := s.cursor.Seek(f); err != nil {
		s.err = err
		return
	}
	if !s.cursor.AllowsMode(r.mode) {
		return
	}

	traversal, err := r.calculator.TraversalTimeSeconds(s.cursor, r.mode, r.req)
	if err != nil {
		s.err = err
		return
	}
	turn := 0
	if parent != da.INVALID_EDGE_ID {
		turn = r.calculator.TurnTimeSeconds(parent, f, r.mode)
	}

	newTime := arrivalTime + turn + traversal
	if r.maxDurationSeconds > 0 && newTime > r.maxDurationSeconds {
		return
	}

	label, ok := s.state.edgeLabels[f]
	if !ok {
		node := da.NewPriorityQueueNode(newTime, f)
		s.pq.Insert(node)
		s.state.edgeLabels[f] = NewEdgeLabel(newTime, parent, node)
		return
	}
	if label.IsScanned() || newTime >= label.GetTravelTime() {
		return
	}

	label.UpdateTravelTime(newTime)
	label.UpdateParent(parent)
	if err := s.pq.DecreaseKey(label.heapNode, newTime); err != nil {
		s.err = util.WrapErrorf(err, util.ErrInternalConsistency, "decrease key of edge %d", f)
	}
}
