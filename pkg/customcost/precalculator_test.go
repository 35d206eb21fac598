package customcost

import (
	"errors"
	"testing"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/logger"
	"github.com/DigitalGeographyLab/r5/pkg/network"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEdge struct {
	lengthM float64
	wayId   da.WayID
}

// buildChain. vertices 0..n on a line, edge i goes i -> i+1
func buildChain(t *testing.T, edges []testEdge) *da.EdgeStore {
	es := da.NewEdgeStore()
	for i := 0; i <= len(edges); i++ {
		_, err := es.AddVertex(60.17+float64(i)*0.001, 24.94)
		require.NoError(t, err)
	}
	for i, e := range edges {
		_, err := es.AddEdge(da.Index(i), da.Index(i+1), e.lengthM, 30, pkg.RESIDENTIAL, da.ALLOWS_ALL, e.wayId, nil)
		require.NoError(t, err)
	}
	es.Freeze()
	return es
}

// 3.6 km/h = 1 m/s, base seconds equal the edge length in meter
const oneMeterPerSecondKmh = 3.6

func newPreCalculator(t *testing.T, es *da.EdgeStore, workers int, fields ...costfunction.CostField) (*EdgeCustomCostPreCalculator, *costfunction.BasicTraversalTimeCalculator) {
	layer, err := network.NewStreetLayer(es, oneMeterPerSecondKmh, fields...)
	require.NoError(t, err)
	base := costfunction.NewBasicTraversalTimeCalculator(es, costfunction.AVERAGE, false)
	return NewEdgeCustomCostPreCalculator(layer, base, logger.NewNop(), workers), base
}

func TestCalculateAll(t *testing.T) {
	es := buildChain(t, []testEdge{
		{lengthM: 10, wayId: da.NewWayID(1)},
		{lengthM: 3, wayId: da.NewWayID(2)},
		{lengthM: 20, wayId: da.NoWayID()},
		{lengthM: 0.2, wayId: da.NewWayID(3)},
		{lengthM: 40, wayId: da.NewWayID(4)},
	})

	noise, err := NewCustomCostField("noise", 1, map[int64]int32{1: 5, 2: 5, 4: 100})
	require.NoError(t, err)
	greenery, err := NewCustomCostField("greenery", -1, map[int64]int32{2: 5, 4: 30})
	require.NoError(t, err)

	pc, base := newPreCalculator(t, es, 2, noise, greenery)
	require.NoError(t, pc.CalculateAll())

	want := []int32{15, 3, 20, 1, 110}
	assert.Equal(t, want, pc.PreCalculatedTravelTimes())

	cursor := es.GetCursor()
	for cursor.Advance() {
		got, err := pc.TraversalTimeSeconds(cursor, pkg.WALK, nil)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, got, 1)

		baseSeconds, err := base.TraversalTimeSeconds(cursor, pkg.BICYCLE, pc.req)
		require.NoError(t, err)
		expected := util.MaxG(1, baseSeconds+
			noise.AdditionalTraversalTimeSeconds(cursor, baseSeconds)+
			greenery.AdditionalTraversalTimeSeconds(cursor, baseSeconds))
		assert.Equal(t, expected, got, "edge %d", cursor.GetEdgeIndex())
	}
}

func TestCalculateAllNegativeSensitivityClamps(t *testing.T) {
	es := buildChain(t, []testEdge{{lengthM: 3, wayId: da.NewWayID(9)}})
	field, err := NewCustomCostField("exposure", -1, map[int64]int32{9: 5})
	require.NoError(t, err)

	pc, _ := newPreCalculator(t, es, 1, field)
	require.NoError(t, pc.CalculateAll())

	cursor, err := es.GetCursorAt(0)
	require.NoError(t, err)
	got, err := pc.TraversalTimeSeconds(cursor, pkg.BICYCLE, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestCalculateAllIdempotent(t *testing.T) {
	edges := make([]testEdge, 0, 200)
	costs := make(map[int64]int32)
	for i := 0; i < 200; i++ {
		edges = append(edges, testEdge{lengthM: float64(1 + i%17), wayId: da.NewWayID(int64(i % 50))})
		if i%3 == 0 {
			costs[int64(i%50)] = int32(i % 11)
		}
	}
	es := buildChain(t, edges)
	field, err := NewCustomCostField("noise", 1.5, costs)
	require.NoError(t, err)

	pc, _ := newPreCalculator(t, es, 4, field)
	require.NoError(t, pc.CalculateAll())
	first := pc.PreCalculatedTravelTimes()
	require.NoError(t, pc.CalculateAll())
	second := pc.PreCalculatedTravelTimes()
	assert.Equal(t, first, second)

	serial, _ := newPreCalculator(t, es, 1, field)
	require.NoError(t, serial.CalculateAll())
	assert.Equal(t, first, serial.PreCalculatedTravelTimes())
}

func TestPreCalculatorSpeedChange(t *testing.T) {
	es := buildChain(t, []testEdge{{lengthM: 100, wayId: da.NewWayID(1)}})
	pc, _ := newPreCalculator(t, es, 1)

	require.NoError(t, pc.CalculateAll())
	assert.Equal(t, []int32{100}, pc.PreCalculatedTravelTimes())

	require.NoError(t, pc.SetStaticTravelSpeed(18))
	require.NoError(t, pc.CalculateAll())
	assert.Equal(t, []int32{20}, pc.PreCalculatedTravelTimes())

	err := pc.SetStaticTravelSpeed(0)
	assert.True(t, errors.Is(err, util.ErrInvalidArgument))
}

func TestPreCalculatorBeforeCalculateAll(t *testing.T) {
	es := buildChain(t, []testEdge{{lengthM: 10, wayId: da.NewWayID(1)}})
	pc, _ := newPreCalculator(t, es, 1)

	assert.False(t, pc.IsCalculated())
	assert.Nil(t, pc.PreCalculatedTravelTimes())

	cursor, err := es.GetCursorAt(0)
	require.NoError(t, err)
	_, err = pc.TraversalTimeSeconds(cursor, pkg.WALK, nil)
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestPreCalculatorEdgeOutsideTable(t *testing.T) {
	small := buildChain(t, []testEdge{{lengthM: 10, wayId: da.NewWayID(1)}})
	large := buildChain(t, []testEdge{{lengthM: 10}, {lengthM: 10}})

	pc, _ := newPreCalculator(t, small, 1)
	require.NoError(t, pc.CalculateAll())

	cursor, err := large.GetCursorAt(1)
	require.NoError(t, err)
	_, err = pc.TraversalTimeSeconds(cursor, pkg.WALK, nil)
	assert.True(t, errors.Is(err, util.ErrNotFound))
}

func TestPreCalculatorTurnTimeDelegates(t *testing.T) {
	es := da.NewEdgeStore()
	for _, c := range [][2]float64{{0, 0}, {-0.001, 0}, {0, -0.001}} {
		_, err := es.AddVertex(c[0], c[1])
		require.NoError(t, err)
	}
	_, err := es.AddEdge(1, 0, 0, 30, pkg.RESIDENTIAL, da.ALLOWS_ALL, da.NewWayID(1), nil)
	require.NoError(t, err)
	_, err = es.AddEdge(0, 2, 0, 30, pkg.RESIDENTIAL, da.ALLOWS_ALL, da.NewWayID(2), nil)
	require.NoError(t, err)

	field, err := NewCustomCostField("noise", 10, map[int64]int32{1: 100, 2: 100})
	require.NoError(t, err)
	pc, base := newPreCalculator(t, es, 1, field)
	require.NoError(t, pc.CalculateAll())

	assert.Equal(t, pkg.LEFT_TURN_SECONDS_CAR, pc.TurnTimeSeconds(0, 1, pkg.CAR))
	assert.Equal(t, base.TurnTimeSeconds(0, 1, pkg.CAR), pc.TurnTimeSeconds(0, 1, pkg.CAR))
}
