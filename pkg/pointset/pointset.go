package pointset

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	idColumn  = "id"
	latColumn = "lat"
	lonColumn = "lon"
)

// PointSet. origins or destinations of a travel time matrix, in file order
type PointSet struct {
	ids    []string
	coords []da.Coordinate
}

func NewPointSet(ids []string, coords []da.Coordinate) (*PointSet, error) {
	if len(ids) != len(coords) {
		return nil, util.WrapErrorf(nil, util.ErrInvalidArgument, "%d ids for %d coordinates", len(ids), len(coords))
	}
	return &PointSet{ids: ids, coords: coords}, nil
}

func (ps *PointSet) Len() int {
	return len(ps.ids)
}

func (ps *PointSet) IDs() []string {
	return ps.ids
}

func (ps *PointSet) Coordinate(i int) da.Coordinate {
	return ps.coords[i]
}

// ReadCSV. id,lat,lon rows (header required, column order free, extra columns ignored). *.bz2 is decompressed
func ReadCSV(path string) (*PointSet, error) {
	f, err := util.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseCSV(f)
}

func ParseCSV(r io.Reader) (*PointSet, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "read point set header")
	}
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	idCol, okId := columns[idColumn]
	latCol, okLat := columns[latColumn]
	lonCol, okLon := columns[lonColumn]
	if !okId || !okLat || !okLon {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "point set csv needs %s, %s and %s columns, got %v",
			idColumn, latColumn, lonColumn, header)
	}
	width := lo.Max([]int{idCol, latCol, lonCol}) + 1

	ps := &PointSet{ids: make([]string, 0), coords: make([]da.Coordinate, 0)}
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "read point set line %d", line)
		}
		if len(record) < width {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "point set line %d has %d columns", line, len(record))
		}
		lat, err := util.StringToFloat64(strings.TrimSpace(record[latCol]))
		if err != nil || lat < -90 || lat > 90 {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid latitude %q on line %d", record[latCol], line)
		}
		lon, err := util.StringToFloat64(strings.TrimSpace(record[lonCol]))
		if err != nil || lon < -180 || lon > 180 {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "invalid longitude %q on line %d", record[lonCol], line)
		}
		ps.ids = append(ps.ids, strings.TrimSpace(record[idCol]))
		ps.coords = append(ps.coords, da.NewCoordinate(lat, lon))
	}
	if len(ps.ids) == 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "point set csv has no rows")
	}
	return ps, nil
}

type Snapper interface {
	Snap(lat, lon, radiusM float64, mode pkg.StreetMode) (da.Index, float64, error)
}

/*
Link. nearest street vertex of every point that mode can use, within radiusM.

unlinked points map to INVALID_VERTEX_ID: as an origin the batch records it as failed,
as a destination it stays unreached.
*/
func (ps *PointSet) Link(snapper Snapper, radiusM float64, mode pkg.StreetMode, logger *zap.Logger) []da.Index {
	vertices := make([]da.Index, len(ps.coords))
	unlinked := 0
	for i, c := range ps.coords {
		v, _, err := snapper.Snap(c.GetLat(), c.GetLon(), radiusM, mode)
		if err != nil {
			logger.Debug("point not linked", zap.String("id", ps.ids[i]), zap.Error(err))
			vertices[i] = da.INVALID_VERTEX_ID
			unlinked++
			continue
		}
		vertices[i] = v
	}
	logger.Info("linked point set",
		zap.Int("points", len(ps.coords)),
		zap.Int("unlinked", unlinked),
		zap.Float64("radiusMeters", radiusM),
		zap.String("mode", mode.String()))
	return vertices
}
