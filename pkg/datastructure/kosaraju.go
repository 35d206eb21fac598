package datastructure

import (
	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

// Components. strongly connected components of the street network for one street mode
type Components struct {
	mode  pkg.StreetMode
	sccs  []Index // component id per vertex
	sizes []int
}

func (c *Components) Mode() pkg.StreetMode {
	return c.mode
}

func (c *Components) ComponentOf(v Index) Index {
	return c.sccs[v]
}

// SizeOf. number of vertices in the component of v
func (c *Components) SizeOf(v Index) int {
	return c.sizes[c.sccs[v]]
}

func (c *Components) NumberOfComponents() int {
	return len(c.sizes)
}

func (c *Components) LargestSize() int {
	largest := 0
	for _, size := range c.sizes {
		largest = util.MaxG(largest, size)
	}
	return largest
}

// RunKosaraju. runs kosaraju's algorithm over the edges mode may traverse.
// turn restrictions are ignored, so components are an upper bound of what the router can connect.
func (es *EdgeStore) RunKosaraju(mode pkg.StreetMode) *Components {
	n := es.NumberOfVertices()

	order := make([]Index, 0, n)
	visited := make([]bool, n)
	for v := 0; v < n; v++ {
		if !visited[v] {
			es.dfs(Index(v), mode, &order, visited, false)
		}
	}

	order = util.ReverseG[Index](order)

	// reset visited
	visited = make([]bool, n)
	sccs := make([]Index, n)
	sizes := make([]int, 0, 10)

	for _, v := range order {
		if visited[v] {
			continue
		}
		component := make([]Index, 0, 10)
		es.dfs(v, mode, &component, visited, true)
		id := Index(len(sizes))
		for _, node := range component {
			sccs[node] = id
		}
		sizes = append(sizes, len(component))
	}

	return &Components{
		mode:  mode,
		sccs:  sccs,
		sizes: sizes,
	}
}

func (es *EdgeStore) dfs(v Index, mode pkg.StreetMode, output *[]Index, visited []bool, reversed bool) {
	visited[v] = true

	if !reversed {
		es.ForOutEdgesOf(v, func(e Index) {
			if !es.GetPermission(e).Allows(mode) {
				return
			}
			head := es.GetToVertex(e)
			if !visited[head] {
				es.dfs(head, mode, output, visited, reversed)
			}
		})
	} else {
		es.ForInEdgesOf(v, func(e Index) {
			if !es.GetPermission(e).Allows(mode) {
				return
			}
			tail := es.GetFromVertex(e)
			if !visited[tail] {
				es.dfs(tail, mode, output, visited, reversed)
			}
		})
	}

	*output = append(*output, v)
}
