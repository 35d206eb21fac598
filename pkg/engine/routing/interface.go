package routing

import (
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
)

/*
SearchState. finished one-to-many search from a single origin vertex.

ArrivalEdge returns the last edge of the best path into v. for the origin itself it returns
INVALID_EDGE_ID with ok = true, for unreached vertices ok = false.
ParentEdge returns the edge before e on the best path into e, INVALID_EDGE_ID when e leaves the origin.
*/
type SearchState interface {
	GetOrigin() da.Index
	ArrivalEdge(v da.Index) (da.Index, bool)
	ParentEdge(e da.Index) da.Index
	TravelTimeSeconds(v da.Index) (int, bool)
}
