package customcost

import (
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/samber/lo"
)

const (
	DEFAULT_SENSITIVITY_COEFFICIENT = 1.0
)

/*
CustomCostField. cost field backed by precomputed per osm way seconds (e.g. noise or greenery exposure).

contribution of an edge = round(customCostSeconds[wayId] * sensitivityCoefficient), rounding half away from zero.
edges whose way is not in the map contribute 0. a negative coefficient rewards exposure instead of penalising it.
*/
type CustomCostField struct {
	displayKey             string
	sensitivityCoefficient float64
	customCostSeconds      map[int64]int32
}

// NewCustomCostField. the map is copied, later changes by the caller are not seen by the field
func NewCustomCostField(displayKey string, sensitivityCoefficient float64, customCostSeconds map[int64]int32) (*CustomCostField, error) {
	if len(customCostSeconds) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrInvalidArgument, "custom cost field %q: custom cost map must not be empty", displayKey)
	}
	return &CustomCostField{
		displayKey:             displayKey,
		sensitivityCoefficient: sensitivityCoefficient,
		customCostSeconds:      lo.Assign(customCostSeconds),
	}, nil
}

func (c *CustomCostField) lookup(wayId da.WayID) (int32, bool) {
	id, ok := wayId.Get()
	if !ok {
		return 0, false
	}
	seconds, ok := c.customCostSeconds[id]
	return seconds, ok
}

func (c *CustomCostField) AdditionalTraversalTimeSeconds(edge *da.Edge, baseTraversalTimeSeconds int) int {
	seconds, ok := c.lookup(edge.GetWayID())
	if !ok {
		return 0
	}
	return util.RoundHalfAwayFromZero(float64(seconds) * c.sensitivityCoefficient)
}

func (c *CustomCostField) DisplayKey() string {
	return c.displayKey
}

func (c *CustomCostField) DisplayValue(wayId int64) float64 {
	seconds, ok := c.customCostSeconds[wayId]
	if !ok {
		return 0
	}
	return float64(seconds)
}

func (c *CustomCostField) SensitivityCoefficient() float64 {
	return c.sensitivityCoefficient
}

func (c *CustomCostField) NumberOfWays() int {
	return len(c.customCostSeconds)
}
