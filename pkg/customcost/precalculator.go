package customcost

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/network"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

/*
EdgeCustomCostPreCalculator. evaluates base traversal time plus every cost field of the layer once per edge
and serves the stored totals to the router.

the table is dense, indexed by edge index. CalculateAll builds a fresh table and publishes it only after
every worker finished, readers either see the previous table or the complete new one.
turn times are not stored, they go straight to the base calculator.
*/
type EdgeCustomCostPreCalculator struct {
	layer   *network.StreetLayer
	base    costfunction.TraversalTimeCalculator
	req     *costfunction.ProfileRequest
	mode    pkg.StreetMode
	workers int
	logger  *zap.Logger

	table atomic.Pointer[[]int32]
}

// NewEdgeCustomCostPreCalculator. workers <= 0 means GOMAXPROCS. speed starts at the layer static speed.
func NewEdgeCustomCostPreCalculator(layer *network.StreetLayer, base costfunction.TraversalTimeCalculator,
	logger *zap.Logger, workers int) *EdgeCustomCostPreCalculator {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	req := costfunction.NewProfileRequest()
	req.SetStaticSpeed(layer.StaticSpeedKmh())
	return &EdgeCustomCostPreCalculator{
		layer:   layer,
		base:    base,
		req:     req,
		mode:    pkg.BICYCLE,
		workers: workers,
		logger:  logger,
	}
}

// SetStaticTravelSpeed. every mode travels at speedKmh, so the mode label given to the base calculator does not matter
func (pc *EdgeCustomCostPreCalculator) SetStaticTravelSpeed(speedKmh float64) error {
	if speedKmh <= 0 || math.IsNaN(speedKmh) || math.IsInf(speedKmh, 0) {
		return util.WrapErrorf(nil, util.ErrInvalidArgument, "static travel speed must be positive, got %f", speedKmh)
	}
	pc.req.SetStaticSpeed(speedKmh)
	return nil
}

// CalculateAll. full sweep over every edge. calling it again recomputes the whole table.
// must not run concurrently with SetStaticTravelSpeed.
func (pc *EdgeCustomCostPreCalculator) CalculateAll() error {
	start := time.Now()
	store := pc.layer.GetEdgeStore()
	costFields := pc.layer.CostFields()
	numberOfEdges := store.NumberOfEdges()

	table := make([]int32, numberOfEdges)
	workers := util.MaxG(util.MinG(pc.workers, numberOfEdges), 1)
	chunkSize := (numberOfEdges + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		from := w * chunkSize
		to := util.MinG(from+chunkSize, numberOfEdges)
		if from >= to {
			break
		}
		g.Go(func() error {
			return pc.calculateRange(store, costFields, table, from, to)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pc.table.Store(&table)

	pc.logger.Info("pre-calculated edge traversal times",
		zap.Int("edges", numberOfEdges),
		zap.Int("costFields", len(costFields)),
		zap.Int("workers", workers),
		zap.Duration("took", time.Since(start)))
	return nil
}

// calculateRange. each worker owns table[from:to] and its own cursor
func (pc *EdgeCustomCostPreCalculator) calculateRange(store *da.EdgeStore, costFields []costfunction.CostField,
	table []int32, from, to int) error {
	cursor := store.GetCursor()
	for i := from; i < to; i++ {
		if err := cursor.Seek(da.Index(i)); err != nil {
			return util.WrapErrorf(err, util.ErrInternalConsistency, "edge store changed during pre-calculation")
		}
		base, err := pc.base.TraversalTimeSeconds(cursor, pc.mode, pc.req)
		if err != nil {
			return util.WrapErrorf(err, util.ErrInternalConsistency, "base traversal time of edge %d", i)
		}
		total := costfunction.ComposeTraversalTime(cursor, base, costFields)
		table[i] = int32(util.MinG(total, math.MaxInt32))
	}
	return nil
}

func (pc *EdgeCustomCostPreCalculator) IsCalculated() bool {
	return pc.table.Load() != nil
}

// TraversalTimeSeconds. mode and request are ignored, the stored total is returned
func (pc *EdgeCustomCostPreCalculator) TraversalTimeSeconds(edge *da.Edge, mode pkg.StreetMode,
	req *costfunction.ProfileRequest) (int, error) {
	table := pc.table.Load()
	edgeIndex := edge.GetEdgeIndex()
	if table == nil {
		return 0, util.WrapErrorf(nil, util.ErrNotFound, "no pre-calculated traversal time for edge %d, CalculateAll was not run", edgeIndex)
	}
	if int(edgeIndex) >= len(*table) {
		return 0, util.WrapErrorf(nil, util.ErrNotFound, "no pre-calculated traversal time for edge %d", edgeIndex)
	}
	return int((*table)[edgeIndex]), nil
}

func (pc *EdgeCustomCostPreCalculator) TurnTimeSeconds(fromEdge, toEdge da.Index, mode pkg.StreetMode) int {
	return pc.base.TurnTimeSeconds(fromEdge, toEdge, mode)
}

// PreCalculatedTravelTimes. copy of the current table, nil before CalculateAll
func (pc *EdgeCustomCostPreCalculator) PreCalculatedTravelTimes() []int32 {
	table := pc.table.Load()
	if table == nil {
		return nil
	}
	out := make([]int32, len(*table))
	copy(out, *table)
	return out
}
