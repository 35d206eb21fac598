package pkg

// enum of turn_type
type TurnType uint8

const (
	LEFT_TURN TurnType = iota
	RIGHT_TURN
	STRAIGHT_ON
	U_TURN
)

// StreetMode. travel mode used when asking a traversal time calculator for an edge cost
type StreetMode uint8

const (
	WALK StreetMode = iota
	BICYCLE
	CAR
)

func (m StreetMode) String() string {
	switch m {
	case WALK:
		return "WALK"
	case BICYCLE:
		return "BICYCLE"
	case CAR:
		return "CAR"
	default:
		return "UNKNOWN"
	}
}

func ParseStreetMode(s string) (StreetMode, bool) {
	switch s {
	case "WALK", "walk":
		return WALK, true
	case "BICYCLE", "bicycle", "BIKE", "bike":
		return BICYCLE, true
	case "CAR", "car":
		return CAR, true
	default:
		return WALK, false
	}
}

const (
	// traversal times are never allowed below this value once cost fields are summed
	MIN_TRAVERSAL_TIME_SECONDS = 1

	DEFAULT_WALK_SPEED_KMH = 4.8
	DEFAULT_BIKE_SPEED_KMH = 16.0

	LEFT_TURN_SECONDS_CAR  = 30
	RIGHT_TURN_SECONDS_CAR = 10
	U_TURN_SECONDS_CAR     = 90

	// heading change (degree) below this is considered going straight on
	STRAIGHT_ON_THRESHOLD_DEGREE = 30.0
	// heading change (degree) above this is considered a u-turn
	U_TURN_THRESHOLD_DEGREE = 160.0
)

type OsmHighwayType uint8

// osm highway classes used for routing: https://wiki.openstreetmap.org/wiki/OSM_tags_for_routing/Telenav
const (
	MOTORWAY       OsmHighwayType = 0
	TRUNK          OsmHighwayType = 1
	PRIMARY        OsmHighwayType = 2
	SECONDARY      OsmHighwayType = 3
	TERTIARY       OsmHighwayType = 4
	RESIDENTIAL    OsmHighwayType = 5
	SERVICE        OsmHighwayType = 6
	UNCLASSIFIED   OsmHighwayType = 7
	MOTORWAY_LINK  OsmHighwayType = 8
	TRUNK_LINK     OsmHighwayType = 9
	PRIMARY_LINK   OsmHighwayType = 10
	SECONDARY_LINK OsmHighwayType = 11
	TERTIARY_LINK  OsmHighwayType = 12
	LIVING_STREET  OsmHighwayType = 13
	ROAD           OsmHighwayType = 14
	TRACK          OsmHighwayType = 15
	MOTORROAD      OsmHighwayType = 16
	FOOTWAY        OsmHighwayType = 17
	PATH           OsmHighwayType = 18
	CYCLEWAY       OsmHighwayType = 19
	PEDESTRIAN     OsmHighwayType = 20
	STEPS          OsmHighwayType = 21
	UNKNOWN        OsmHighwayType = 22
)

func GetHighwayType(roadType string) OsmHighwayType {
	switch roadType {
	case "motorway":
		return MOTORWAY
	case "trunk":
		return TRUNK
	case "primary":
		return PRIMARY
	case "secondary":
		return SECONDARY
	case "tertiary":
		return TERTIARY
	case "unclassified":
		return UNCLASSIFIED
	case "residential":
		return RESIDENTIAL
	case "service":
		return SERVICE
	case "motorway_link":
		return MOTORWAY_LINK
	case "trunk_link":
		return TRUNK_LINK
	case "primary_link":
		return PRIMARY_LINK
	case "secondary_link":
		return SECONDARY_LINK
	case "tertiary_link":
		return TERTIARY_LINK
	case "living_street":
		return LIVING_STREET
	case "road":
		return ROAD
	case "track":
		return TRACK
	case "motorroad":
		return MOTORROAD
	case "footway":
		return FOOTWAY
	case "path":
		return PATH
	case "cycleway":
		return CYCLEWAY
	case "pedestrian":
		return PEDESTRIAN
	case "steps":
		return STEPS
	default:
		return UNKNOWN
	}
}

// RoadTypeSpeed. default speed (km/h) of a highway type when the way has no usable maxspeed tag
func RoadTypeSpeed(hw OsmHighwayType) float64 {
	switch hw {
	case MOTORWAY:
		return 100
	case TRUNK, MOTORROAD:
		return 70
	case PRIMARY:
		return 60
	case SECONDARY:
		return 50
	case TERTIARY:
		return 40
	case MOTORWAY_LINK, TRUNK_LINK, PRIMARY_LINK, SECONDARY_LINK, TERTIARY_LINK:
		return 40
	case RESIDENTIAL, UNCLASSIFIED, ROAD:
		return 30
	case SERVICE, TRACK:
		return 20
	case LIVING_STREET:
		return 10
	default:
		return 5
	}
}
