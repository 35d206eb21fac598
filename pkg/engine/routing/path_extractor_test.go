package routing

import (
	"errors"
	"testing"

	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainWithWayIds(t *testing.T, wayIds []da.WayID) *da.EdgeStore {
	edges := make([]testEdge, 0, len(wayIds))
	for i, w := range wayIds {
		edges = append(edges, testEdge{from: da.Index(i), to: da.Index(i + 1), lengthM: 10, wayId: w})
	}
	return buildStore(t, len(wayIds)+1, edges)
}

func TestExtractPathKeepsEdgesWithoutWayId(t *testing.T) {
	es := chainWithWayIds(t, []da.WayID{da.NewWayID(7), da.NewWayID(7), da.NoWayID()})
	router := newWalkRouter(es, 0)

	state, err := router.Route(0, []da.Index{3})
	require.NoError(t, err)

	extractor := NewOriginDestinationPathExtractor(es)
	path, ok, err := extractor.ExtractPath(state, 3)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, []da.WayID{da.NewWayID(7), da.NewWayID(7), da.NoWayID()}, WayIDsOf(path))
	assert.Equal(t, []da.Index{0, 1, 2}, []da.Index{path[0].EdgeIndex, path[1].EdgeIndex, path[2].EdgeIndex})
}

func TestExtractPathOriginAndUnreached(t *testing.T) {
	es := buildStore(t, 3, []testEdge{{from: 0, to: 1, lengthM: 10, wayId: da.NewWayID(1)}})
	router := newWalkRouter(es, 0)
	state, err := router.Route(0, nil)
	require.NoError(t, err)

	extractor := NewOriginDestinationPathExtractor(es)

	path, ok, err := extractor.ExtractPath(state, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, path)

	path, ok, err = extractor.ExtractPath(state, 2)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, path)
}

// cyclicState. parent chain 0 -> 1 -> 0 never reaches the origin
type cyclicState struct{}

func (cyclicState) GetOrigin() da.Index {
	return 0
}

func (cyclicState) ArrivalEdge(v da.Index) (da.Index, bool) {
	return 0, true
}

func (cyclicState) ParentEdge(e da.Index) da.Index {
	return 1 - e
}

func (cyclicState) TravelTimeSeconds(v da.Index) (int, bool) {
	return 10, true
}

func TestExtractPathCyclicChain(t *testing.T) {
	es := chainWithWayIds(t, []da.WayID{da.NewWayID(1), da.NewWayID(2)})
	es.Freeze()
	extractor := NewOriginDestinationPathExtractor(es)

	_, _, err := extractor.ExtractPath(cyclicState{}, 2)
	require.Error(t, err)
	assert.True(t, errors.Is(err, util.ErrInternalConsistency))

	res := NewOneOriginResult(0, 1, true, false)
	err = extractor.Extract(cyclicState{}, []da.Index{2}, res)
	assert.True(t, errors.Is(err, util.ErrInternalConsistency))
}

func TestExtractPathGeometry(t *testing.T) {
	es := chainWithWayIds(t, []da.WayID{da.NewWayID(1), da.NewWayID(2)})
	router := newWalkRouter(es, 0)
	state, err := router.Route(0, []da.Index{2})
	require.NoError(t, err)

	extractor := NewOriginDestinationPathExtractor(es)
	path, ok, err := extractor.ExtractPath(state, 2)
	require.NoError(t, err)
	require.True(t, ok)

	geometry := extractor.PathGeometry(path)
	require.Len(t, geometry, 3)
	for v := 0; v < 3; v++ {
		lat, lon := es.GetVertexCoordinates(da.Index(v))
		assert.Equal(t, da.NewCoordinate(lat, lon), geometry[v])
	}
}

func TestOneOriginResultTracking(t *testing.T) {
	es := chainWithWayIds(t, []da.WayID{da.NewWayID(5), da.NoWayID()})
	router := newWalkRouter(es, 0)
	state, err := router.Route(0, nil)
	require.NoError(t, err)
	extractor := NewOriginDestinationPathExtractor(es)
	destinations := []da.Index{2, 0}

	t.Run("tracking off", func(t *testing.T) {
		res := NewOneOriginResult(0, len(destinations), false, true)
		require.NoError(t, extractor.Extract(state, destinations, res))

		paths, ok := res.WayIDPaths()
		assert.False(t, ok)
		assert.Nil(t, paths)
		_, ok = res.WayIDPath(0)
		assert.False(t, ok)
		_, ok = res.Geometry(0)
		assert.False(t, ok)
		assert.Equal(t, []int{20, 0}, res.TravelTimes())
	})

	t.Run("tracking on", func(t *testing.T) {
		res := NewOneOriginResult(0, len(destinations), true, true)
		require.NoError(t, extractor.Extract(state, destinations, res))

		paths, ok := res.WayIDPaths()
		require.True(t, ok)
		assert.Equal(t, [][]da.WayID{{da.NewWayID(5), da.NoWayID()}, {}}, paths)
		geometry, ok := res.Geometry(0)
		require.True(t, ok)
		assert.Len(t, geometry, 3)
	})
}
