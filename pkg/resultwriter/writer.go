package resultwriter

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/engine/routing"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/samber/lo"
	"github.com/twpayne/go-polyline"
)

const (
	WAY_ID_SEPARATOR = ";"
)

var header = []string{"origin", "destination", "travel_time_s", "way_ids", "polyline"}

/*
ResultWriter. one csv row per origin-destination pair.

unreached destinations have empty travel_time_s, way_ids and polyline. way_ids lists the
way id of every traversed edge in travel order, edges without a way id are written as "none".
way_ids and polyline are empty when the batch did not track way ids.
*/
type ResultWriter struct {
	out            io.Writer
	writer         *csv.Writer
	originIds      []string
	destinationIds []string
	rows           int
}

func NewResultWriter(out io.Writer, originIds, destinationIds []string) (*ResultWriter, error) {
	rw := &ResultWriter{
		out:            out,
		writer:         csv.NewWriter(out),
		originIds:      originIds,
		destinationIds: destinationIds,
	}
	if err := rw.writer.Write(header); err != nil {
		return nil, util.WrapErrorf(err, util.ErrInternalServerError, "write result header")
	}
	return rw, nil
}

// Create. write results to path, bzip2 compressed when path ends with .bz2
func Create(path string, originIds, destinationIds []string) (*ResultWriter, error) {
	f, err := util.CreateFile(path)
	if err != nil {
		return nil, err
	}
	rw, err := NewResultWriter(f, originIds, destinationIds)
	if err != nil {
		f.Close()
		return nil, err
	}
	return rw, nil
}

func (rw *ResultWriter) WriteOrigin(result *routing.OneOriginResult) error {
	originId := rw.idOf(rw.originIds, result.GetOriginIndex())
	travelTimes := result.TravelTimes()
	for d, travelTime := range travelTimes {
		record := []string{originId, rw.idOf(rw.destinationIds, d), "", "", ""}
		if travelTime != routing.UNREACHED {
			record[2] = strconv.Itoa(travelTime)
			if path, ok := result.WayIDPath(d); ok {
				record[3] = joinWayIds(path)
			}
			if geometry, ok := result.Geometry(d); ok {
				record[4] = encodePolyline(geometry)
			}
		}
		if err := rw.writer.Write(record); err != nil {
			return util.WrapErrorf(err, util.ErrInternalServerError, "write result row")
		}
		rw.rows++
	}
	return nil
}

func (rw *ResultWriter) NumberOfRows() int {
	return rw.rows
}

// Close. flush buffered rows, then close the output when it is closable
func (rw *ResultWriter) Close() error {
	rw.writer.Flush()
	err := rw.writer.Error()
	if c, ok := rw.out.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return util.WrapErrorf(err, util.ErrInternalServerError, "close result writer")
	}
	return nil
}

func (rw *ResultWriter) idOf(ids []string, i int) string {
	if i < len(ids) {
		return ids[i]
	}
	return strconv.Itoa(i)
}

func joinWayIds(path []da.WayID) string {
	return strings.Join(lo.Map(path, func(w da.WayID, _ int) string {
		return w.String()
	}), WAY_ID_SEPARATOR)
}

func encodePolyline(geometry []da.Coordinate) string {
	coords := lo.Map(geometry, func(c da.Coordinate, _ int) []float64 {
		return []float64{c.GetLat(), c.GetLon()}
	})
	return string(polyline.EncodeCoords(coords))
}
