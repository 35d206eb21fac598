package config

import (
	"errors"
	"runtime"
	"strings"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	"github.com/DigitalGeographyLab/r5/pkg/customcost"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/spf13/viper"
)

// BatchConfig. one travel time matrix run with an optional custom cost field
type BatchConfig struct {
	OsmFile                string  `mapstructure:"osm_file" validate:"required"`
	NetworkCacheFile       string  `mapstructure:"network_cache_file"`
	CustomCostFile         string  `mapstructure:"custom_cost_file"`
	CustomCostKey          string  `mapstructure:"custom_cost_key" validate:"required_with=CustomCostFile"`
	SensitivityCoefficient float64 `mapstructure:"sensitivity_coefficient"`
	SpeedKmh               float64 `mapstructure:"speed_kmh" validate:"gt=0"`
	StreetMode             string  `mapstructure:"street_mode" validate:"oneof=WALK BICYCLE CAR"`
	CongestionLevel        string  `mapstructure:"congestion_level" validate:"oneof=AVERAGE OFF_PEAK RUSH_HOUR"`
	CrossingPenalty        bool    `mapstructure:"crossing_penalty"`
	Workers                int     `mapstructure:"workers" validate:"gte=1"`
	MaxDurationSeconds     int     `mapstructure:"max_duration_seconds" validate:"gt=0"`
	SnapRadiusMeters       float64 `mapstructure:"snap_radius_meters" validate:"gt=0"`
	MinIslandSize          int     `mapstructure:"min_island_size" validate:"gte=0"`
	OriginsFile            string  `mapstructure:"origins_file" validate:"required"`
	DestinationsFile       string  `mapstructure:"destinations_file" validate:"required"`
	OutputFile             string  `mapstructure:"output_file" validate:"required"`
	IncludeGeometry        bool    `mapstructure:"include_geometry"`
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("custom_cost_key", "custom_cost")
	v.SetDefault("sensitivity_coefficient", customcost.DEFAULT_SENSITIVITY_COEFFICIENT)
	v.SetDefault("speed_kmh", pkg.DEFAULT_WALK_SPEED_KMH)
	v.SetDefault("street_mode", pkg.WALK.String())
	v.SetDefault("congestion_level", costfunction.AVERAGE.String())
	v.SetDefault("crossing_penalty", true)
	v.SetDefault("workers", runtime.GOMAXPROCS(0))
	v.SetDefault("max_duration_seconds", 2*60*60)
	v.SetDefault("snap_radius_meters", 300)
	v.SetDefault("min_island_size", 40)
	v.SetDefault("include_geometry", false)
}

// Load. unmarshal and validate a BatchConfig from v. defaults fill every key the config leaves out
func Load(v *viper.Viper) (*BatchConfig, error) {
	SetDefaults(v)

	var cfg BatchConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInvalidArgument, "unmarshal config")
	}
	cfg.StreetMode = strings.ToUpper(cfg.StreetMode)
	cfg.CongestionLevel = strings.ToUpper(cfg.CongestionLevel)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *BatchConfig) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		return util.WrapErrorf(errors.Join(vv...), util.ErrInvalidArgument, "invalid config")
	}
	return nil
}

func translateError(err error, trans ut.Translator) []error {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []error{err}
	}
	errs := make([]error, 0, len(validationErrors))
	for _, e := range validationErrors {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}

func (c *BatchConfig) Mode() pkg.StreetMode {
	mode, _ := pkg.ParseStreetMode(c.StreetMode)
	return mode
}

func (c *BatchConfig) Congestion() costfunction.CongestionLevel {
	level, _ := costfunction.ParseCongestionLevel(c.CongestionLevel)
	return level
}

func (c *BatchConfig) HasNetworkCache() bool {
	return c.NetworkCacheFile != ""
}

func (c *BatchConfig) HasCustomCost() bool {
	return c.CustomCostFile != ""
}
