package datastructure

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

/*
WriteEdgeStore. plain text network cache, bzip2 compressed when filename ends with .bz2.

	numVertices numEdges numTurnRestrictions
	lat lon                                                     (one line per vertex)
	from to lengthMm speedKmh hwType permission hasWayId wayId numPoints lat lon ...  (one line per edge)
	fromEdge toEdge                                             (one line per turn restriction)
*/
func (es *EdgeStore) WriteEdgeStore(filename string) error {
	f, err := util.CreateFile(filename)
	if err != nil {
		return err
	}

	w := bufio.NewWriter(f)
	if err := es.writeTo(w); err != nil {
		f.Close()
		return util.WrapErrorf(err, util.ErrInternalServerError, "write edge store %s", filename)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return util.WrapErrorf(err, util.ErrInternalServerError, "write edge store %s", filename)
	}
	return f.Close()
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (es *EdgeStore) writeTo(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "%d %d %d\n", es.NumberOfVertices(), es.NumberOfEdges(), es.NumberOfTurnRestrictions()); err != nil {
		return err
	}

	for _, v := range es.vertices {
		if _, err := fmt.Fprintf(w, "%s %s\n", formatFloat(v.lat), formatFloat(v.lon)); err != nil {
			return err
		}
	}

	var sb strings.Builder
	for e := 0; e < es.NumberOfEdges(); e++ {
		edgeID := Index(e)
		wayId, hasWayId := es.GetWayID(edgeID).Get()
		geometry := es.GetEdgeGeometry(edgeID)

		sb.Reset()
		fmt.Fprintf(&sb, "%d %d %d %s %d %d %t %d %d",
			es.fromVertex[e], es.toVertex[e], es.lengthMm[e],
			strconv.FormatFloat(float64(es.speedKmh[e]), 'f', -1, 32),
			es.highwayType[e], es.permissions[e], hasWayId, wayId, len(geometry))
		for _, p := range geometry {
			sb.WriteByte(' ')
			sb.WriteString(formatFloat(p.Lat))
			sb.WriteByte(' ')
			sb.WriteString(formatFloat(p.Lon))
		}
		sb.WriteByte('\n')
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}
	}

	restrictions := make([]turnPair, 0, len(es.turnRestrictions))
	for tp := range es.turnRestrictions {
		restrictions = append(restrictions, tp)
	}
	sort.Slice(restrictions, func(i, j int) bool {
		if restrictions[i].fromEdge != restrictions[j].fromEdge {
			return restrictions[i].fromEdge < restrictions[j].fromEdge
		}
		return restrictions[i].toEdge < restrictions[j].toEdge
	})
	for _, tp := range restrictions {
		if _, err := fmt.Fprintf(w, "%d %d\n", tp.fromEdge, tp.toEdge); err != nil {
			return err
		}
	}
	return nil
}

func fields(s string) []string {
	return strings.Fields(s)
}

func ParseIndex(s string) (Index, error) {
	u, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint32 {
		return 0, fmt.Errorf("value %s overflows uint32", s)
	}
	return Index(u), nil
}

func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// ReadEdgeStore. read a network cache written by WriteEdgeStore. the returned store is frozen
func ReadEdgeStore(filename string) (*EdgeStore, error) {
	f, err := util.OpenFile(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	es, err := readFrom(bufio.NewReader(f))
	if err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "read edge store %s", filename)
	}
	return es, nil
}

func readFrom(br *bufio.Reader) (*EdgeStore, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	tokens := fields(line)
	if len(tokens) != 3 {
		return nil, fmt.Errorf("expected 3 header fields, got %d", len(tokens))
	}
	counts := make([]int, 3)
	for i, token := range tokens {
		count, err := ParseIndex(token)
		if err != nil {
			return nil, err
		}
		counts[i] = int(count)
	}
	numVertices, numEdges, numRestrictions := counts[0], counts[1], counts[2]

	es := NewEdgeStoreWithSize(numVertices, numEdges)
	for i := 0; i < numVertices; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		tokens := fields(line)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("vertex %d: expected 2 fields, got %d", i, len(tokens))
		}
		lat, lon, err := parseLatLon(tokens[0], tokens[1])
		if err != nil {
			return nil, err
		}
		if _, err := es.AddVertex(lat, lon); err != nil {
			return nil, err
		}
	}

	for i := 0; i < numEdges; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		if err := es.parseEdge(line); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}

	for i := 0; i < numRestrictions; i++ {
		line, err := readLine(br)
		if err != nil {
			return nil, err
		}
		tokens := fields(line)
		if len(tokens) != 2 {
			return nil, fmt.Errorf("turn restriction %d: expected 2 fields, got %d", i, len(tokens))
		}
		fromEdge, err := ParseIndex(tokens[0])
		if err != nil {
			return nil, err
		}
		toEdge, err := ParseIndex(tokens[1])
		if err != nil {
			return nil, err
		}
		if err := es.AddTurnRestriction(fromEdge, toEdge); err != nil {
			return nil, err
		}
	}

	es.Freeze()
	return es, nil
}

func parseLatLon(latS, lonS string) (float64, float64, error) {
	lat, err := strconv.ParseFloat(latS, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(lonS, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}

func (es *EdgeStore) parseEdge(line string) error {
	tokens := fields(line)
	if len(tokens) < 9 {
		return fmt.Errorf("expected at least 9 fields, got %d", len(tokens))
	}
	from, err := ParseIndex(tokens[0])
	if err != nil {
		return err
	}
	to, err := ParseIndex(tokens[1])
	if err != nil {
		return err
	}
	lengthMm, err := strconv.ParseInt(tokens[2], 10, 32)
	if err != nil {
		return err
	}
	speed, err := strconv.ParseFloat(tokens[3], 32)
	if err != nil {
		return err
	}
	hwType, err := strconv.ParseUint(tokens[4], 10, 8)
	if err != nil {
		return err
	}
	permission, err := strconv.ParseUint(tokens[5], 10, 8)
	if err != nil {
		return err
	}
	hasWayId, err := strconv.ParseBool(tokens[6])
	if err != nil {
		return err
	}
	wayIdValue, err := strconv.ParseInt(tokens[7], 10, 64)
	if err != nil {
		return err
	}
	numPoints, err := ParseIndex(tokens[8])
	if err != nil {
		return err
	}
	if len(tokens) != 9+2*int(numPoints) {
		return fmt.Errorf("expected %d geometry values, got %d", 2*numPoints, len(tokens)-9)
	}

	geometry := make([]Coordinate, numPoints)
	for p := 0; p < int(numPoints); p++ {
		lat, lon, err := parseLatLon(tokens[9+2*p], tokens[10+2*p])
		if err != nil {
			return err
		}
		geometry[p] = NewCoordinate(lat, lon)
	}

	wayId := NoWayID()
	if hasWayId {
		wayId = NewWayID(wayIdValue)
	}

	edgeID, err := es.AddEdge(from, to, float64(lengthMm)/1000, speed, pkg.OsmHighwayType(hwType),
		EdgePermission(permission), wayId, geometry)
	if err != nil {
		return err
	}
	// zero length edges would otherwise be re-measured from their geometry
	es.lengthMm[edgeID] = int32(lengthMm)
	return nil
}
