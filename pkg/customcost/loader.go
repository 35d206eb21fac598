package customcost

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/DigitalGeographyLab/r5/pkg/util"
)

const (
	osmIdColumn       = "osm_id"
	costSecondsColumn = "cost_seconds"
)

// ReadCustomCostCSV. read osm_id,cost_seconds rows (header required, extra columns ignored). *.bz2 is decompressed.
func ReadCustomCostCSV(path string) (map[int64]int32, error) {
	f, err := util.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return ParseCustomCostCSV(f)
}

// ParseCustomCostCSV. fractional seconds are rounded half away from zero. duplicate osm ids keep the last row.
func ParseCustomCostCSV(r io.Reader) (map[int64]int32, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "read custom cost header")
	}

	idCol, costCol := -1, -1
	for i, name := range header {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case osmIdColumn:
			idCol = i
		case costSecondsColumn:
			costCol = i
		}
	}
	if idCol < 0 || costCol < 0 {
		return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "custom cost csv needs %s and %s columns, got %v",
			osmIdColumn, costSecondsColumn, header)
	}

	costs := make(map[int64]int32)
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "read custom cost line %d", line)
		}
		if len(record) <= idCol || len(record) <= costCol {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "custom cost line %d has %d columns", line, len(record))
		}

		wayId, err := strconv.ParseInt(strings.TrimSpace(record[idCol]), 10, 64)
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "custom cost line %d: invalid osm id", line)
		}
		seconds, err := util.StringToFloat64(strings.TrimSpace(record[costCol]))
		if err != nil {
			return nil, util.WrapErrorf(err, util.ErrBadParamInput, "custom cost line %d: invalid cost", line)
		}
		if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "custom cost line %d: cost is not finite", line)
		}
		if seconds < 0 {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "custom cost line %d: negative cost %f", line, seconds)
		}
		if seconds > math.MaxInt32 {
			return nil, util.WrapErrorf(nil, util.ErrBadParamInput, "custom cost line %d: cost %f overflows int32 seconds", line, seconds)
		}
		costs[wayId] = int32(util.RoundHalfAwayFromZero(seconds))
	}
	return costs, nil
}
