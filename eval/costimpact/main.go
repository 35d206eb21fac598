package main

import (
	"context"
	"encoding/csv"
	"flag"
	"math/rand"
	"strconv"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	"github.com/DigitalGeographyLab/r5/pkg/customcost"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/engine/routing"
	log "github.com/DigitalGeographyLab/r5/pkg/logger"
	"github.com/DigitalGeographyLab/r5/pkg/network"
	"github.com/DigitalGeographyLab/r5/pkg/osmparser"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"go.uber.org/zap"
)

var (
	osmFile     = flag.String("osm", "./data/helsinki.osm.pbf", "osm network (.pbf, .osm, .osm.bz2)")
	costFile    = flag.String("costs", "./data/noise_exposure.csv.bz2", "custom cost csv (osm_id,cost_seconds)")
	sensitivity = flag.Float64("sensitivity", customcost.DEFAULT_SENSITIVITY_COEFFICIENT, "sensitivity coefficient of the custom cost field")
	speedKmh    = flag.Float64("speed", pkg.DEFAULT_WALK_SPEED_KMH, "static travel speed in km/h")
	n           = flag.Int("n", 200, "number of random vertices used as origins and destinations")
	seed        = flag.Int64("seed", 42, "random seed of the vertex sample")
	maxDuration = flag.Int("max_duration", 3600, "search limit in seconds")
	workers     = flag.Int("workers", 8, "number of concurrent origins")
	outFile     = flag.String("out", "cost_impact.csv", "output csv, .bz2 is compressed")
)

// compares walking travel times on the plain network with travel times under a custom cost field
func main() {
	flag.Parse()
	logger, err := log.New()
	if err != nil {
		panic(err)
	}

	store, err := osmparser.NewOsmParser(logger).Parse(context.Background(), *osmFile)
	if err != nil {
		panic(err)
	}
	costs, err := customcost.ReadCustomCostCSV(*costFile)
	if err != nil {
		panic(err)
	}
	field, err := customcost.NewCustomCostField("custom_cost", *sensitivity, costs)
	if err != nil {
		panic(err)
	}

	plainLayer, err := network.NewStreetLayer(store, *speedKmh)
	if err != nil {
		panic(err)
	}
	costLayer, err := network.NewStreetLayer(store, *speedKmh, field)
	if err != nil {
		panic(err)
	}

	req := costfunction.ProfileRequestFor(pkg.WALK, *speedKmh)
	base := costfunction.NewBasicTraversalTimeCalculator(store, costfunction.AVERAGE, false)
	// same 1 second floor as the pre-calculated totals, so deltas only come from the cost field
	plainCalculator := costfunction.NewMultistageTraversalTimeCalculator(base, nil)

	preCalculator := customcost.NewEdgeCustomCostPreCalculator(costLayer, base, logger, *workers)
	if err := preCalculator.SetStaticTravelSpeed(*speedKmh); err != nil {
		panic(err)
	}
	if err := preCalculator.CalculateAll(); err != nil {
		panic(err)
	}

	vertices := sampleVertices(store, *n, *seed)
	if len(vertices) == 0 {
		logger.Fatal("no vertex with outgoing edges to sample", zap.String("osm", *osmFile))
	}

	plainRouter := routing.NewStreetRouter(store, plainCalculator, req, pkg.WALK, *maxDuration)
	costRouter := routing.NewStreetRouter(store, preCalculator, req, pkg.WALK, *maxDuration)

	ctx := context.Background()
	plain := routing.NewOneToManyBatch(plainLayer, plainRouter, logger, *workers, false).Run(ctx, vertices, vertices)
	withCost := routing.NewOneToManyBatch(costLayer, costRouter, logger, *workers, false).Run(ctx, vertices, vertices)

	fout, err := util.CreateFile(*outFile)
	if err != nil {
		panic(err)
	}
	defer fout.Close()

	writer := csv.NewWriter(fout)
	defer writer.Flush()

	if err := writer.Write([]string{"origin_vertex", "destination_vertex", "plain_s", "custom_s", "delta_s", "path_edges"}); err != nil {
		panic(err)
	}

	pairs, totalDelta := 0, 0
	for o := range vertices {
		plainRes, costRes := plain.Results[o], withCost.Results[o]
		if plainRes == nil || costRes == nil {
			continue
		}
		for d := range vertices {
			plainTime, costTime := plainRes.TravelTimeSeconds(d), costRes.TravelTimeSeconds(d)
			if plainTime == routing.UNREACHED || costTime == routing.UNREACHED {
				continue
			}
			path, _ := costRes.WayIDPath(d)
			record := []string{
				strconv.Itoa(int(vertices[o])),
				strconv.Itoa(int(vertices[d])),
				strconv.Itoa(plainTime),
				strconv.Itoa(costTime),
				strconv.Itoa(costTime - plainTime),
				strconv.Itoa(len(path)),
			}
			if err := writer.Write(record); err != nil {
				panic(err)
			}
			pairs++
			totalDelta += costTime - plainTime
		}
	}

	meanDelta := 0.0
	if pairs > 0 {
		meanDelta = float64(totalDelta) / float64(pairs)
	}
	logger.Info("cost impact evaluated",
		zap.Int("pairs", pairs),
		zap.Float64("meanDeltaSeconds", meanDelta),
		zap.Int("plainFailures", plain.NumberOfFailures()),
		zap.Int("customFailures", withCost.NumberOfFailures()))
}

// sampleVertices. up to n random vertices with at least one out edge
func sampleVertices(store *da.EdgeStore, n int, seed int64) []da.Index {
	candidates := make([]da.Index, 0, store.NumberOfVertices())
	for v := 0; v < store.NumberOfVertices(); v++ {
		if store.GetOutDegree(da.Index(v)) > 0 {
			candidates = append(candidates, da.Index(v))
		}
	}

	rd := rand.New(rand.NewSource(seed))
	vertices := make([]da.Index, 0, n)
	for len(candidates) > 0 && len(vertices) < n {
		vertices = append(vertices, candidates[rd.Intn(len(candidates))])
	}
	return vertices
}
