package spatialindex

import (
	"errors"
	"testing"

	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/logger"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildIndex. 0 - 1 walkable, 2 - 3 car only, 4 isolated. vertices roughly 55 m apart along the longitude
func buildIndex(t *testing.T) *Rtree {
	es := da.NewEdgeStore()
	for i := 0; i < 5; i++ {
		_, err := es.AddVertex(60.17, 24.94+float64(i)*0.001)
		require.NoError(t, err)
	}
	_, err := es.AddEdge(0, 1, 0, 30, pkg.FOOTWAY, da.ALLOWS_WALK, da.NewWayID(1), nil)
	require.NoError(t, err)
	_, err = es.AddEdge(2, 3, 0, 30, pkg.MOTORWAY, da.ALLOWS_CAR, da.NewWayID(2), nil)
	require.NoError(t, err)
	es.Freeze()

	rt := NewRtree(es)
	rt.Build(logger.NewNop())
	return rt
}

func TestSnap(t *testing.T) {
	rt := buildIndex(t)

	testCases := []struct {
		name    string
		lat     float64
		lon     float64
		radiusM float64
		mode    pkg.StreetMode
		want    da.Index
		wantErr bool
	}{
		{name: "exact vertex", lat: 60.17, lon: 24.941, radiusM: 100, mode: pkg.WALK, want: 1},
		{name: "closest usable vertex", lat: 60.17, lon: 24.9419, radiusM: 100, mode: pkg.WALK, want: 1},
		{name: "car skips footway", lat: 60.17, lon: 24.9409, radiusM: 100, mode: pkg.CAR, want: 2},
		{name: "isolated vertex is not indexed", lat: 60.17, lon: 24.944, radiusM: 10, mode: pkg.CAR, wantErr: true},
		{name: "nothing within radius", lat: 60.2, lon: 24.94, radiusM: 100, mode: pkg.WALK, wantErr: true},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, dist, err := rt.Snap(tt.lat, tt.lon, tt.radiusM, tt.mode)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, util.ErrNotFound))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, dist, tt.radiusM)
		})
	}
}

func TestSearchWithinRadius(t *testing.T) {
	rt := buildIndex(t)
	got := rt.SearchWithinRadius(60.17, 24.94, 80)
	assert.ElementsMatch(t, []da.Index{0, 1}, got)
}

func TestPruneIslands(t *testing.T) {
	rt := buildIndex(t)

	// every component of the fixture is a single vertex, one-way edges never form a cycle
	rt.PruneIslands(pkg.WALK, 2, logger.NewNop())

	_, _, err := rt.Snap(60.17, 24.941, 100, pkg.WALK)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrNotFound))

	got, _, err := rt.Snap(60.17, 24.9409, 100, pkg.CAR)
	require.NoError(t, err)
	assert.Equal(t, da.Index(2), got)
}
