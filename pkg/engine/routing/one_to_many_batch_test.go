package routing

import (
	"context"
	"errors"
	"testing"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	"github.com/DigitalGeographyLab/r5/pkg/customcost"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/logger"
	"github.com/DigitalGeographyLab/r5/pkg/network"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newBatch. diamond graph, walking at 1 m/s through the pre-calculated table of the layer
func newBatch(t *testing.T, fields ...costfunction.CostField) (*OneToManyBatch, *da.EdgeStore) {
	es := buildStore(t, 4, diamondEdges())
	layer, err := network.NewStreetLayer(es, 3.6, fields...)
	require.NoError(t, err)

	base := costfunction.NewBasicTraversalTimeCalculator(es, costfunction.AVERAGE, false)
	pc := customcost.NewEdgeCustomCostPreCalculator(layer, base, logger.NewNop(), 2)
	require.NoError(t, pc.CalculateAll())

	router := NewStreetRouter(es, pc, oneMeterPerSecond(), pkg.WALK, 0)
	return NewOneToManyBatch(layer, router, logger.NewNop(), 3, true), es
}

func TestOneToManyBatchWithCostField(t *testing.T) {
	// way 2 is the 1 -> 3 edge, 25 extra seconds make 0 -> 2 -> 3 the better route
	field, err := customcost.NewCustomCostField("noise", 1, map[int64]int32{2: 25})
	require.NoError(t, err)
	batch, _ := newBatch(t, field)

	res := batch.Run(context.Background(), []da.Index{0, 2}, []da.Index{3, 1})
	require.Empty(t, res.Failures)
	require.Len(t, res.Results, 2)

	fromZero := res.Results[0]
	assert.Equal(t, 0, fromZero.GetOriginIndex())
	assert.Equal(t, []int{30, 10}, fromZero.TravelTimes())
	path, ok := fromZero.WayIDPath(0)
	require.True(t, ok)
	assert.Equal(t, []da.WayID{da.NewWayID(3), da.NewWayID(4)}, path)

	fromTwo := res.Results[1]
	assert.Equal(t, 15, fromTwo.TravelTimeSeconds(0))
	assert.Equal(t, UNREACHED, fromTwo.TravelTimeSeconds(1))
	_, ok = fromTwo.WayIDPath(1)
	assert.False(t, ok)
}

func TestOneToManyBatchWithoutCostFields(t *testing.T) {
	batch, _ := newBatch(t)

	res := batch.Run(context.Background(), []da.Index{0, 1}, []da.Index{3})
	require.Empty(t, res.Failures)
	for _, r := range res.Results {
		require.NotNil(t, r)
		paths, ok := r.WayIDPaths()
		assert.False(t, ok)
		assert.Nil(t, paths)
	}
	assert.Equal(t, 20, res.Results[0].TravelTimeSeconds(0))
	assert.Equal(t, 10, res.Results[1].TravelTimeSeconds(0))
}

func TestOneToManyBatchPartialFailure(t *testing.T) {
	field, err := customcost.NewCustomCostField("noise", 1, map[int64]int32{2: 1})
	require.NoError(t, err)
	batch, _ := newBatch(t, field)

	res := batch.Run(context.Background(), []da.Index{0, 99, 1}, []da.Index{3})
	require.Equal(t, 1, res.NumberOfFailures())
	assert.True(t, errors.Is(res.Failures[1], util.ErrInvalidArgument))
	assert.Nil(t, res.Results[1])
	assert.NotNil(t, res.Results[0])
	assert.NotNil(t, res.Results[2])
	assert.Equal(t, 11, res.Results[2].TravelTimeSeconds(0))
}

func TestOneToManyBatchCancelled(t *testing.T) {
	batch, _ := newBatch(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := batch.Run(ctx, []da.Index{0, 1, 2}, []da.Index{3})
	assert.Equal(t, 3, res.NumberOfFailures())
	for i := range res.Results {
		assert.Nil(t, res.Results[i])
		assert.True(t, errors.Is(res.Failures[i], context.Canceled))
	}
}

func TestOneToManyBatchWithoutPreCalculation(t *testing.T) {
	es := buildStore(t, 4, diamondEdges())
	layer, err := network.NewStreetLayer(es, 3.6)
	require.NoError(t, err)
	base := costfunction.NewBasicTraversalTimeCalculator(es, costfunction.AVERAGE, false)
	pc := customcost.NewEdgeCustomCostPreCalculator(layer, base, logger.NewNop(), 1)

	router := NewStreetRouter(es, pc, oneMeterPerSecond(), pkg.WALK, 0)
	res := NewOneToManyBatch(layer, router, logger.NewNop(), 2, false).Run(context.Background(), []da.Index{0, 1}, []da.Index{3})
	require.Equal(t, 2, res.NumberOfFailures())
	assert.True(t, errors.Is(res.Failures[0], util.ErrNotFound))
}
