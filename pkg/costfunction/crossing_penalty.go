package costfunction

import (
	"strings"

	"github.com/DigitalGeographyLab/r5/pkg"
	"github.com/DigitalGeographyLab/r5/pkg/util"
)

// CongestionLevel. time of day bucket of the Jaakkonen (2013) intersection delay survey (Helsinki)
type CongestionLevel uint8

const (
	RUSH_HOUR CongestionLevel = iota
	OFF_PEAK
	AVERAGE
)

func (c CongestionLevel) String() string {
	switch c {
	case RUSH_HOUR:
		return "RUSH_HOUR"
	case OFF_PEAK:
		return "OFF_PEAK"
	case AVERAGE:
		return "AVERAGE"
	default:
		return "UNKNOWN"
	}
}

func ParseCongestionLevel(s string) (CongestionLevel, error) {
	switch strings.ToUpper(s) {
	case "RUSH_HOUR":
		return RUSH_HOUR, nil
	case "OFF_PEAK":
		return OFF_PEAK, nil
	case "AVERAGE", "":
		return AVERAGE, nil
	default:
		return AVERAGE, util.WrapErrorf(nil, util.ErrInvalidArgument, "unknown congestion level %q", s)
	}
}

// JaakkonenStreetClass. functional road classes (digiroad) grouped the way the crossing delays were measured
type JaakkonenStreetClass uint8

const (
	CLASS_1_2 JaakkonenStreetClass = iota
	CLASS_3
	CLASS_4_5_6
)

func JaakkonenClassOf(highwayType pkg.OsmHighwayType) JaakkonenStreetClass {
	switch highwayType {
	case pkg.MOTORWAY, pkg.MOTORWAY_LINK, pkg.TRUNK, pkg.TRUNK_LINK, pkg.MOTORROAD,
		pkg.PRIMARY, pkg.PRIMARY_LINK:
		return CLASS_1_2
	case pkg.SECONDARY, pkg.SECONDARY_LINK:
		return CLASS_3
	default:
		return CLASS_4_5_6
	}
}

// seconds, table 28 of Jaakkonen (2013), http://urn.fi/URN:NBN:fi-fe2017112252365
var crossingPenalties = [3][3]float64{
	RUSH_HOUR: {CLASS_1_2: 12.195, CLASS_3: 11.199, CLASS_4_5_6: 10.633},
	OFF_PEAK:  {CLASS_1_2: 9.979, CLASS_3: 6.650, CLASS_4_5_6: 7.752},
	AVERAGE:   {CLASS_1_2: 11.311, CLASS_3: 9.439, CLASS_4_5_6: 9.362},
}

func CrossingPenaltySeconds(level CongestionLevel, class JaakkonenStreetClass) float64 {
	if int(level) >= len(crossingPenalties) || int(class) >= len(crossingPenalties[level]) {
		return 0
	}
	return crossingPenalties[level][class]
}
