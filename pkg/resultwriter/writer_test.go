package resultwriter

import (
	"bytes"
	"encoding/csv"
	"io"
	"path/filepath"
	"testing"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/costfunction"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/engine/routing"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-polyline"
)

// routeChain. 0 -> 1 -> 2 (10 m each, way 7 then an untagged edge), vertex 3 unreachable.
// destinations: 2, the origin itself, 3
func routeChain(t *testing.T, trackWayIds bool) *routing.OneOriginResult {
	es := da.NewEdgeStore()
	for i := 0; i < 4; i++ {
		_, err := es.AddVertex(60.17, 24.94+float64(i)*0.001)
		require.NoError(t, err)
	}
	_, err := es.AddEdge(0, 1, 10, 30, pkg.RESIDENTIAL, da.ALLOWS_ALL, da.NewWayID(7), nil)
	require.NoError(t, err)
	_, err = es.AddEdge(1, 2, 10, 30, pkg.RESIDENTIAL, da.ALLOWS_ALL, da.NoWayID(), nil)
	require.NoError(t, err)
	es.Freeze()

	req := costfunction.NewProfileRequest()
	req.SetStaticSpeed(3.6)
	router := routing.NewStreetRouter(es, costfunction.NewBasicTraversalTimeCalculator(es, costfunction.AVERAGE, false), req, pkg.WALK, 0)
	state, err := router.Route(0, nil)
	require.NoError(t, err)

	destinations := []da.Index{2, 0, 3}
	result := routing.NewOneOriginResult(0, len(destinations), trackWayIds, true)
	require.NoError(t, routing.NewOriginDestinationPathExtractor(es).Extract(state, destinations, result))
	return result
}

func readRecords(t *testing.T, r io.Reader) [][]string {
	records, err := csv.NewReader(r).ReadAll()
	require.NoError(t, err)
	return records
}

func TestWriteOrigin(t *testing.T) {
	testCases := []struct {
		name        string
		trackWayIds bool
		wantWayIds  string
	}{
		{name: "with way ids", trackWayIds: true, wantWayIds: "7;none"},
		{name: "travel times only", trackWayIds: false, wantWayIds: ""},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			rw, err := NewResultWriter(&buf, []string{"home"}, []string{"work", "home", "lake"})
			require.NoError(t, err)
			require.NoError(t, rw.WriteOrigin(routeChain(t, tt.trackWayIds)))
			require.NoError(t, rw.Close())
			assert.Equal(t, 3, rw.NumberOfRows())

			records := readRecords(t, &buf)
			require.Len(t, records, 4)
			assert.Equal(t, header, records[0])

			assert.Equal(t, []string{"home", "work", "20", tt.wantWayIds}, records[1][:4])
			assert.Equal(t, []string{"home", "home", "0", ""}, records[2][:4])
			assert.Equal(t, []string{"home", "lake", "", "", ""}, records[3])

			if !tt.trackWayIds {
				assert.Empty(t, records[1][4])
				return
			}
			coords, rest, err := polyline.DecodeCoords([]byte(records[1][4]))
			require.NoError(t, err)
			assert.Empty(t, rest)
			require.Len(t, coords, 3)
			assert.InDelta(t, 24.94, coords[0][1], 1e-5)
			assert.InDelta(t, 24.942, coords[2][1], 1e-5)
		})
	}
}

func TestCreateCompressed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.csv.bz2")
	rw, err := Create(path, nil, nil)
	require.NoError(t, err)
	require.NoError(t, rw.WriteOrigin(routeChain(t, true)))
	require.NoError(t, rw.Close())

	r, err := util.OpenFile(path)
	require.NoError(t, err)
	defer r.Close()

	records := readRecords(t, r)
	require.Len(t, records, 4)
	// ids fall back to the position in the point list
	assert.Equal(t, []string{"0", "2", "", "", ""}, records[3])
}
