package network

import (
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/samber/lo"
)

/*
StreetLayer. frozen edge store plus the cost fields attached to it.

cost fields are fixed at construction in insertion order and never change afterwards,
so a layer can be shared by every search of a batch without locking.
*/
type StreetLayer struct {
	store          *da.EdgeStore
	staticSpeedKmh float64
	costFields     []costfunction.CostField
}

func NewStreetLayer(store *da.EdgeStore, staticSpeedKmh float64, costFields ...costfunction.CostField) (*StreetLayer, error) {
	if store == nil {
		return nil, util.WrapErrorf(nil, util.ErrInvalidArgument, "street layer needs an edge store")
	}
	if staticSpeedKmh <= 0 {
		return nil, util.WrapErrorf(nil, util.ErrInvalidArgument, "static speed must be positive, got %f", staticSpeedKmh)
	}
	for i, field := range costFields {
		if field == nil {
			return nil, util.WrapErrorf(nil, util.ErrInvalidArgument, "cost field %d is nil", i)
		}
	}
	store.Freeze()

	fields := make([]costfunction.CostField, len(costFields))
	copy(fields, costFields)
	return &StreetLayer{
		store:          store,
		staticSpeedKmh: staticSpeedKmh,
		costFields:     fields,
	}, nil
}

func (sl *StreetLayer) GetEdgeStore() *da.EdgeStore {
	return sl.store
}

func (sl *StreetLayer) StaticSpeedKmh() float64 {
	return sl.staticSpeedKmh
}

// HasCostFields. decides way id path tracking for every result built on this layer
func (sl *StreetLayer) HasCostFields() bool {
	return len(sl.costFields) > 0
}

// CostFields. copy of the attached fields, callers cannot alter the layer through it
func (sl *StreetLayer) CostFields() []costfunction.CostField {
	fields := make([]costfunction.CostField, len(sl.costFields))
	copy(fields, sl.costFields)
	return fields
}

func (sl *StreetLayer) CostFieldKeys() []string {
	return lo.Map(sl.costFields, func(field costfunction.CostField, _ int) string {
		return field.DisplayKey()
	})
}
