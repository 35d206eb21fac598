package routing

import (
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
)

// EdgeLabel. search label of an edge: best time to reach the end of the edge and the edge it was entered from
type EdgeLabel struct {
	travelTime int
	parent     da.Index
	scanned    bool // label is final, edge is in the shortest path tree
	heapNode   *da.PriorityQueueNode[da.Index]
}

func NewEdgeLabel(travelTime int, parent da.Index, hnode *da.PriorityQueueNode[da.Index]) *EdgeLabel {
	return &EdgeLabel{
		travelTime: travelTime,
		parent:     parent,
		heapNode:   hnode,
	}
}

func (el *EdgeLabel) GetTravelTime() int {
	return el.travelTime
}

func (el *EdgeLabel) UpdateTravelTime(tt int) {
	el.travelTime = tt
}

func (el *EdgeLabel) UpdateParent(parent da.Index) {
	el.parent = parent
}

func (el *EdgeLabel) GetParent() da.Index {
	return el.parent
}

func (el *EdgeLabel) Scan() {
	el.scanned = true
}

func (el *EdgeLabel) IsScanned() bool {
	return el.scanned
}

// vertexArrival. first settled edge into a vertex, which is the earliest arrival at that vertex
type vertexArrival struct {
	edge       da.Index
	travelTime int
}
