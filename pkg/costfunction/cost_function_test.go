package costfunction

import (
	"errors"
	"testing"

	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildCross. centre vertex 0 with arms to the south(1), north(2), east(3), west(4).
// edge 0 enters the centre from the south, edges 1..4 leave it to north, east, west, south.
func buildCross(t *testing.T) *da.EdgeStore {
	es := da.NewEdgeStore()
	coords := [][2]float64{{0, 0}, {-0.001, 0}, {0.001, 0}, {0, 0.001}, {0, -0.001}}
	for _, c := range coords {
		_, err := es.AddVertex(c[0], c[1])
		require.NoError(t, err)
	}

	edges := []struct {
		from, to da.Index
		hw       pkg.OsmHighwayType
	}{
		{1, 0, pkg.RESIDENTIAL},
		{0, 2, pkg.RESIDENTIAL},
		{0, 3, pkg.PRIMARY},
		{0, 4, pkg.SECONDARY},
		{0, 1, pkg.RESIDENTIAL},
	}
	for i, e := range edges {
		_, err := es.AddEdge(e.from, e.to, 100, 36, e.hw, da.ALLOWS_ALL, da.NewWayID(int64(i)), nil)
		require.NoError(t, err)
	}
	es.Freeze()
	return es
}

type constantField struct {
	key     string
	seconds int
}

func (c constantField) AdditionalTraversalTimeSeconds(edge *da.Edge, base int) int {
	return c.seconds
}

func (c constantField) DisplayKey() string {
	return c.key
}

func (c constantField) DisplayValue(wayId int64) float64 {
	return float64(c.seconds)
}

func TestBasicTraversalTimeSeconds(t *testing.T) {
	es := buildCross(t)
	calc := NewBasicTraversalTimeCalculator(es, AVERAGE, false)
	cursor, err := es.GetCursorAt(0)
	require.NoError(t, err)

	testCases := []struct {
		name string
		mode pkg.StreetMode
		req  *ProfileRequest
		want int
	}{
		{
			name: "walk default speed",
			mode: pkg.WALK,
			req:  NewProfileRequest(),
			want: 75,
		},
		{
			name: "bike explicit speed",
			mode: pkg.BICYCLE,
			req:  &ProfileRequest{BikeSpeed: 4},
			want: 25,
		},
		{
			name: "car falls back to edge speed",
			mode: pkg.CAR,
			req:  NewProfileRequest(),
			want: 10,
		},
		{
			name: "static speed for all modes",
			mode: pkg.CAR,
			req: func() *ProfileRequest {
				r := NewProfileRequest()
				r.SetStaticSpeed(18)
				return r
			}(),
			want: 20,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := calc.TraversalTimeSeconds(cursor, tt.mode, tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBasicTraversalTimeZeroSpeed(t *testing.T) {
	es := buildCross(t)
	calc := NewBasicTraversalTimeCalculator(es, AVERAGE, false)
	cursor, err := es.GetCursorAt(0)
	require.NoError(t, err)

	_, err = calc.TraversalTimeSeconds(cursor, pkg.WALK, &ProfileRequest{})
	assert.True(t, errors.Is(err, util.ErrInvalidArgument))
}

func TestTurnTimeSeconds(t *testing.T) {
	es := buildCross(t)

	testCases := []struct {
		name            string
		toEdge          da.Index
		mode            pkg.StreetMode
		crossingPenalty bool
		wantType        pkg.TurnType
		want            int
	}{
		{name: "straight on", toEdge: 1, mode: pkg.CAR, wantType: pkg.STRAIGHT_ON, want: 0},
		{name: "right turn", toEdge: 2, mode: pkg.CAR, wantType: pkg.RIGHT_TURN, want: pkg.RIGHT_TURN_SECONDS_CAR},
		{name: "left turn", toEdge: 3, mode: pkg.CAR, wantType: pkg.LEFT_TURN, want: pkg.LEFT_TURN_SECONDS_CAR},
		{name: "u turn", toEdge: 4, mode: pkg.CAR, wantType: pkg.U_TURN, want: pkg.U_TURN_SECONDS_CAR},
		{name: "walking turns are free", toEdge: 3, mode: pkg.WALK, wantType: pkg.LEFT_TURN, want: 0},
		{
			name: "right turn into primary with crossing penalty", toEdge: 2, mode: pkg.CAR, crossingPenalty: true,
			wantType: pkg.RIGHT_TURN, want: pkg.RIGHT_TURN_SECONDS_CAR + 11,
		},
		{
			name: "left turn into secondary with crossing penalty", toEdge: 3, mode: pkg.CAR, crossingPenalty: true,
			wantType: pkg.LEFT_TURN, want: pkg.LEFT_TURN_SECONDS_CAR + 9,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewBasicTraversalTimeCalculator(es, AVERAGE, tt.crossingPenalty)
			assert.Equal(t, tt.wantType, calc.TurnType(0, tt.toEdge))
			assert.Equal(t, tt.want, calc.TurnTimeSeconds(0, tt.toEdge, tt.mode))
		})
	}
}

func TestCrossingPenaltyTable(t *testing.T) {
	testCases := []struct {
		level CongestionLevel
		hw    pkg.OsmHighwayType
		want  float64
	}{
		{AVERAGE, pkg.MOTORWAY, 11.311},
		{AVERAGE, pkg.SECONDARY, 9.439},
		{AVERAGE, pkg.RESIDENTIAL, 9.362},
		{OFF_PEAK, pkg.PRIMARY, 9.979},
		{OFF_PEAK, pkg.SECONDARY_LINK, 6.650},
		{OFF_PEAK, pkg.TERTIARY, 7.752},
		{RUSH_HOUR, pkg.TRUNK, 12.195},
		{RUSH_HOUR, pkg.SECONDARY, 11.199},
		{RUSH_HOUR, pkg.FOOTWAY, 10.633},
	}

	for _, tt := range testCases {
		t.Run(tt.level.String(), func(t *testing.T) {
			assert.InDelta(t, tt.want, CrossingPenaltySeconds(tt.level, JaakkonenClassOf(tt.hw)), 1e-9)
		})
	}
}

func TestParseCongestionLevel(t *testing.T) {
	level, err := ParseCongestionLevel("rush_hour")
	require.NoError(t, err)
	assert.Equal(t, RUSH_HOUR, level)

	level, err = ParseCongestionLevel("")
	require.NoError(t, err)
	assert.Equal(t, AVERAGE, level)

	_, err = ParseCongestionLevel("gridlock")
	assert.True(t, errors.Is(err, util.ErrInvalidArgument))
}

func TestMultistageTraversalTime(t *testing.T) {
	es := buildCross(t)
	base := NewBasicTraversalTimeCalculator(es, AVERAGE, false)
	cursor, err := es.GetCursorAt(0)
	require.NoError(t, err)

	testCases := []struct {
		name   string
		fields []CostField
		want   int
	}{
		{name: "no fields", fields: nil, want: 75},
		{name: "two fields are summed", fields: []CostField{constantField{"a", 10}, constantField{"b", 5}}, want: 90},
		{name: "negative total clamps to one", fields: []CostField{constantField{"a", -500}}, want: 1},
		{name: "exactly zero clamps to one", fields: []CostField{constantField{"a", -75}}, want: 1},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			calc := NewMultistageTraversalTimeCalculator(base, tt.fields)
			got, err := calc.TraversalTimeSeconds(cursor, pkg.WALK, NewProfileRequest())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, base.TurnTimeSeconds(0, 3, pkg.CAR), calc.TurnTimeSeconds(0, 3, pkg.CAR))
		})
	}
}

func TestProfileRequestForCarUsesEdgeSpeed(t *testing.T) {
	es := da.NewEdgeStore()
	for i := 0; i < 2; i++ {
		_, err := es.AddVertex(0, float64(i)*0.01)
		require.NoError(t, err)
	}
	_, err := es.AddEdge(0, 1, 1000, 50, pkg.PRIMARY, da.ALLOWS_ALL, da.NewWayID(1), nil)
	require.NoError(t, err)
	es.Freeze()

	calc := NewMultistageTraversalTimeCalculator(NewBasicTraversalTimeCalculator(es, AVERAGE, false), nil)
	cursor, err := es.GetCursorAt(0)
	require.NoError(t, err)

	testCases := []struct {
		name string
		mode pkg.StreetMode
		want int
	}{
		{name: "car drives at the edge speed", mode: pkg.CAR, want: 72},
		{name: "walk uses the configured speed", mode: pkg.WALK, want: 750},
		{name: "bike uses the configured speed", mode: pkg.BICYCLE, want: 750},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			req := ProfileRequestFor(tt.mode, pkg.DEFAULT_WALK_SPEED_KMH)
			got, err := calc.TraversalTimeSeconds(cursor, tt.mode, req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
