package spatialindex

import (
	"math"

	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/geo"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/tidwall/rtree"
	"go.uber.org/zap"
)

// Rtree. point index over street vertices, used to snap origin / destination coordinates
type Rtree struct {
	tr *rtree.RTreeG[da.Index]
	es *da.EdgeStore

	components    map[pkg.StreetMode]*da.Components
	minIslandSize int
}

func NewRtree(es *da.EdgeStore) *Rtree {
	var tr rtree.RTreeG[da.Index]
	return &Rtree{
		tr:         &tr,
		es:         es,
		components: make(map[pkg.StreetMode]*da.Components),
	}
}

// PruneIslands. Snap for mode skips vertices whose strongly connected component has fewer than minSize vertices
func (rt *Rtree) PruneIslands(mode pkg.StreetMode, minSize int, log *zap.Logger) {
	c := rt.es.RunKosaraju(mode)
	rt.components[mode] = c
	rt.minIslandSize = minSize

	islands, islandVertices := 0, 0
	seen := make(map[da.Index]struct{})
	for v := 0; v < rt.es.NumberOfVertices(); v++ {
		size := c.SizeOf(da.Index(v))
		if size >= minSize {
			continue
		}
		islandVertices++
		if _, ok := seen[c.ComponentOf(da.Index(v))]; !ok {
			seen[c.ComponentOf(da.Index(v))] = struct{}{}
			islands++
		}
	}
	log.Info("street network islands excluded from linking",
		zap.String("mode", mode.String()),
		zap.Int("components", c.NumberOfComponents()),
		zap.Int("largestComponent", c.LargestSize()),
		zap.Int("islands", islands),
		zap.Int("islandVertices", islandVertices))
}

// Build. index every vertex that has at least one incident edge
func (rt *Rtree) Build(log *zap.Logger) {
	log.Info("Building R-tree spatial index...")
	for v := 0; v < rt.es.NumberOfVertices(); v++ {
		vertex := da.Index(v)
		if rt.es.GetOutDegree(vertex) == 0 && rt.es.GetInDegree(vertex) == 0 {
			continue
		}
		lat, lon := rt.es.GetVertexCoordinates(vertex)
		point := [2]float64{lon, lat}
		rt.tr.Insert(point, point, vertex)
	}
	log.Info("R-tree spatial index built.", zap.Int("vertices", rt.tr.Len()))
}

// SearchWithinRadius. vertices inside the bounding box of a circle with radius (meter) around (qLat, qLon)
func (rt *Rtree) SearchWithinRadius(qLat, qLon, radiusM float64) []da.Index {
	upperLat, _ := geo.DestinationPoint(qLat, qLon, 0, radiusM)
	lowerLat, _ := geo.DestinationPoint(qLat, qLon, 180, radiusM)
	_, upperLon := geo.DestinationPoint(qLat, qLon, 90, radiusM)
	_, lowerLon := geo.DestinationPoint(qLat, qLon, 270, radiusM)

	results := make([]da.Index, 0, 10)
	rt.tr.Search([2]float64{lowerLon, lowerLat}, [2]float64{upperLon, upperLat},
		func(min, max [2]float64, data da.Index) bool {
			results = append(results, data)
			return true
		})
	return results
}

/*
Snap. closest vertex within radiusM (meter) of (qLat, qLon) that mode can leave or reach.
returns the vertex and its great circle distance in meter, ErrNotFound when nothing qualifies.
*/
func (rt *Rtree) Snap(qLat, qLon, radiusM float64, mode pkg.StreetMode) (da.Index, float64, error) {
	best := da.INVALID_VERTEX_ID
	bestDist := math.MaxFloat64
	for _, v := range rt.SearchWithinRadius(qLat, qLon, radiusM) {
		if !rt.usableBy(v, mode) {
			continue
		}
		lat, lon := rt.es.GetVertexCoordinates(v)
		dist := geo.S2DistanceMeters(qLat, qLon, lat, lon)
		if dist > radiusM {
			continue
		}
		if dist < bestDist || (dist == bestDist && v < best) {
			best, bestDist = v, dist
		}
	}
	if best == da.INVALID_VERTEX_ID {
		return best, 0, util.WrapErrorf(nil, util.ErrNotFound, "no %s vertex within %.0f m of (%f, %f)", mode, radiusM, qLat, qLon)
	}
	return best, bestDist, nil
}

func (rt *Rtree) usableBy(v da.Index, mode pkg.StreetMode) bool {
	if c, ok := rt.components[mode]; ok && c.SizeOf(v) < rt.minIslandSize {
		return false
	}
	usable := false
	check := func(e da.Index) {
		if rt.es.GetPermission(e).Allows(mode) {
			usable = true
		}
	}
	rt.es.ForOutEdgesOf(v, check)
	if !usable {
		rt.es.ForInEdgesOf(v, check)
	}
	return usable
}
