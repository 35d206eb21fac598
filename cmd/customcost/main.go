package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/DigitalGeographyLab/r5/pkg/config"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	"github.com/DigitalGeographyLab/r5/pkg/customcost"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/engine/routing"
	"github.com/DigitalGeographyLab/r5/pkg/logger"
	"github.com/DigitalGeographyLab/r5/pkg/network"
	"github.com/DigitalGeographyLab/r5/pkg/osmparser"
	"github.com/DigitalGeographyLab/r5/pkg/pointset"
	"github.com/DigitalGeographyLab/r5/pkg/resultwriter"
	"github.com/DigitalGeographyLab/r5/pkg/spatialindex"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	configFile = flag.String("config", "", "config file (yaml/json/toml), default ./data/config.yaml")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := util.ReadConfig(*configFile); err != nil {
		logger.Fatal("read config", zap.Error(err))
	}
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	failed, err := run(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("travel time matrix failed", zap.Error(err))
	}
	if failed > 0 {
		logger.Warn("some origins failed", zap.Int("failed", failed))
	}
	logger.Sugar().Infof("results written to %s", cfg.OutputFile)
}

// run. returns the number of failed origins
func run(ctx context.Context, cfg *config.BatchConfig, logger *zap.Logger) (int, error) {
	store, err := loadNetwork(ctx, cfg, logger)
	if err != nil {
		return 0, err
	}

	costFields := make([]costfunction.CostField, 0, 1)
	if cfg.HasCustomCost() {
		costs, err := customcost.ReadCustomCostCSV(cfg.CustomCostFile)
		if err != nil {
			return 0, err
		}
		field, err := customcost.NewCustomCostField(cfg.CustomCostKey, cfg.SensitivityCoefficient, costs)
		if err != nil {
			return 0, err
		}
		logger.Info("custom cost field loaded",
			zap.String("key", field.DisplayKey()),
			zap.Int("ways", field.NumberOfWays()),
			zap.Float64("sensitivity", field.SensitivityCoefficient()))
		costFields = append(costFields, field)
	}

	layer, err := network.NewStreetLayer(store, cfg.SpeedKmh, costFields...)
	if err != nil {
		return 0, err
	}

	base := costfunction.NewBasicTraversalTimeCalculator(store, cfg.Congestion(), cfg.CrossingPenalty)
	req := costfunction.ProfileRequestFor(cfg.Mode(), cfg.SpeedKmh)

	var calculator costfunction.TraversalTimeCalculator = costfunction.NewMultistageTraversalTimeCalculator(base, layer.CostFields())
	if layer.HasCostFields() {
		preCalculator := customcost.NewEdgeCustomCostPreCalculator(layer, base, logger, cfg.Workers)
		if err := preCalculator.SetStaticTravelSpeed(cfg.SpeedKmh); err != nil {
			return 0, err
		}
		if err := preCalculator.CalculateAll(); err != nil {
			return 0, err
		}
		calculator = preCalculator
	}

	origins, err := pointset.ReadCSV(cfg.OriginsFile)
	if err != nil {
		return 0, err
	}
	destinations, err := pointset.ReadCSV(cfg.DestinationsFile)
	if err != nil {
		return 0, err
	}

	rtree := spatialindex.NewRtree(store)
	rtree.Build(logger)
	if cfg.MinIslandSize > 1 {
		rtree.PruneIslands(cfg.Mode(), cfg.MinIslandSize, logger)
	}
	originVertices := origins.Link(rtree, cfg.SnapRadiusMeters, cfg.Mode(), logger)
	destinationVertices := destinations.Link(rtree, cfg.SnapRadiusMeters, cfg.Mode(), logger)

	router := routing.NewStreetRouter(store, calculator, req, cfg.Mode(), cfg.MaxDurationSeconds)
	batch := routing.NewOneToManyBatch(layer, router, logger, cfg.Workers, cfg.IncludeGeometry)
	result := batch.Run(ctx, originVertices, destinationVertices)

	writer, err := resultwriter.Create(cfg.OutputFile, origins.IDs(), destinations.IDs())
	if err != nil {
		return 0, err
	}
	for _, res := range result.Results {
		if res == nil {
			continue
		}
		if err := writer.WriteOrigin(res); err != nil {
			writer.Close()
			return 0, err
		}
	}
	if err := writer.Close(); err != nil {
		return 0, err
	}
	logger.Info("travel time matrix written",
		zap.String("output", cfg.OutputFile),
		zap.Int("rows", writer.NumberOfRows()))

	return result.NumberOfFailures(), nil
}

// loadNetwork. read the network cache when present, otherwise parse osm and write the cache
func loadNetwork(ctx context.Context, cfg *config.BatchConfig, logger *zap.Logger) (*da.EdgeStore, error) {
	if cfg.HasNetworkCache() {
		if _, err := os.Stat(cfg.NetworkCacheFile); err == nil {
			logger.Info("reading network cache", zap.String("file", cfg.NetworkCacheFile))
			return da.ReadEdgeStore(cfg.NetworkCacheFile)
		}
	}

	store, err := osmparser.NewOsmParser(logger).Parse(ctx, cfg.OsmFile)
	if err != nil {
		return nil, err
	}
	if cfg.HasNetworkCache() {
		if err := store.WriteEdgeStore(cfg.NetworkCacheFile); err != nil {
			return nil, err
		}
		logger.Info("network cache written", zap.String("file", cfg.NetworkCacheFile))
	}
	return store, nil
}
