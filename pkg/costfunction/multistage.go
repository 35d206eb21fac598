package costfunction

import (
	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
)

// MultistageTraversalTimeCalculator. base calculator plus cost fields evaluated on every call
type MultistageTraversalTimeCalculator struct {
	base       TraversalTimeCalculator
	costFields []CostField
}

func NewMultistageTraversalTimeCalculator(base TraversalTimeCalculator, costFields []CostField) *MultistageTraversalTimeCalculator {
	fields := make([]CostField, len(costFields))
	copy(fields, costFields)
	return &MultistageTraversalTimeCalculator{
		base:       base,
		costFields: fields,
	}
}

func (mc *MultistageTraversalTimeCalculator) TraversalTimeSeconds(edge *da.Edge, mode pkg.StreetMode,
	req *ProfileRequest) (int, error) {
	baseSeconds, err := mc.base.TraversalTimeSeconds(edge, mode, req)
	if err != nil {
		return 0, err
	}
	return ComposeTraversalTime(edge, baseSeconds, mc.costFields), nil
}

func (mc *MultistageTraversalTimeCalculator) TurnTimeSeconds(fromEdge, toEdge da.Index, mode pkg.StreetMode) int {
	return mc.base.TurnTimeSeconds(fromEdge, toEdge, mode)
}
