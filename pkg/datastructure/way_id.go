package datastructure

import "strconv"

// WayID. osm way id of an edge. edges created without a tagged way (e.g. links to transit stops) carry no id.
type WayID struct {
	id      int64
	present bool
}

func NewWayID(id int64) WayID {
	return WayID{id: id, present: true}
}

// NoWayID. sentinel for edges without a way id
func NoWayID() WayID {
	return WayID{}
}

func (w WayID) Get() (int64, bool) {
	return w.id, w.present
}

func (w WayID) IsPresent() bool {
	return w.present
}

func (w WayID) String() string {
	if !w.present {
		return "none"
	}
	return strconv.FormatInt(w.id, 10)
}
