package routing

import (
	"context"
	"time"

	"github.com/DigitalGeographyLab/r5/pkg/concurrent"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/network"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"
)

// BatchResult. Results[i] belongs to origin i and is nil when that origin failed, Failures says why
type BatchResult struct {
	Results  []*OneOriginResult
	Failures map[int]error
}

func (br *BatchResult) NumberOfFailures() int {
	return len(br.Failures)
}

/*
OneToManyBatch. routes every origin to the same destination set on a shared street layer.

origins run in parallel on a worker pool. the layer, its cost fields and the traversal time source are only read.
an origin whose search or path extraction fails is recorded in Failures and the rest of the batch goes on.
after ctx is cancelled origins that did not start yet fail with the context error.
*/
type OneToManyBatch struct {
	layer           *network.StreetLayer
	router          *StreetRouter
	extractor       *OriginDestinationPathExtractor
	workers         int
	includeGeometry bool
	logger          *zap.Logger
}

func NewOneToManyBatch(layer *network.StreetLayer, router *StreetRouter, logger *zap.Logger,
	workers int, includeGeometry bool) *OneToManyBatch {
	return &OneToManyBatch{
		layer:           layer,
		router:          router,
		extractor:       NewOriginDestinationPathExtractor(layer.GetEdgeStore()),
		workers:         util.MaxG(workers, 1),
		includeGeometry: includeGeometry,
		logger:          logger,
	}
}

type originJob struct {
	index  int
	vertex da.Index
}

type originOutcome struct {
	index  int
	result *OneOriginResult
}

func (b *OneToManyBatch) Run(ctx context.Context, origins, destinations []da.Index) *BatchResult {
	start := time.Now()
	trackWayIds := b.layer.HasCostFields()
	failures := xsync.NewMapOf[int, error]()

	wp := concurrent.NewWorkerPool[originJob, originOutcome](b.workers, len(origins))
	wp.Start(ctx, func(ctx context.Context, job originJob) originOutcome {
		if util.StopConcurrentOperation(ctx) {
			failures.Store(job.index, ctx.Err())
			return originOutcome{index: job.index}
		}
		res, err := b.routeOne(job, destinations, trackWayIds)
		if err != nil {
			failures.Store(job.index, err)
			return originOutcome{index: job.index}
		}
		return originOutcome{index: job.index, result: res}
	})

	for i, origin := range origins {
		wp.AddJob(originJob{index: i, vertex: origin})
	}
	wp.Close()
	wp.Wait()

	results := make([]*OneOriginResult, len(origins))
	for outcome := range wp.CollectResults() {
		results[outcome.index] = outcome.result
	}

	failed := make(map[int]error, failures.Size())
	failures.Range(func(index int, err error) bool {
		failed[index] = err
		b.logger.Warn("origin failed",
			zap.Int("originIndex", index),
			zap.Uint32("originVertex", uint32(origins[index])),
			zap.Error(err))
		return true
	})

	b.logger.Info("one-to-many batch finished",
		zap.Int("origins", len(origins)),
		zap.Int("destinations", len(destinations)),
		zap.Int("failed", len(failed)),
		zap.Bool("wayIdPaths", trackWayIds),
		zap.Duration("took", time.Since(start)))

	return &BatchResult{Results: results, Failures: failed}
}

func (b *OneToManyBatch) routeOne(job originJob, destinations []da.Index, trackWayIds bool) (*OneOriginResult, error) {
	state, err := b.router.Route(job.vertex, destinations)
	if err != nil {
		return nil, err
	}
	res := NewOneOriginResult(job.index, len(destinations), trackWayIds, b.includeGeometry)
	if err := b.extractor.Extract(state, destinations, res); err != nil {
		return nil, err
	}
	return res, nil
}
