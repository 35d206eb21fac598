package osmparser

import (
	"strconv"
	"strings"

	"github.com/paulmach/osm"
)

type NodeType uint8

const (
	END_NODE NodeType = iota
	BETWEEN_NODE
	JUNCTION_NODE
)

var carHighway = map[string]struct{}{
	"motorway":       {},
	"motorway_link":  {},
	"trunk":          {},
	"trunk_link":     {},
	"primary":        {},
	"primary_link":   {},
	"secondary":      {},
	"secondary_link": {},
	"tertiary":       {},
	"tertiary_link":  {},
	"residential":    {},
	"service":        {},
	"unclassified":   {},
	"living_street":  {},
	"road":           {},
	"motorroad":      {},
}

var noWalkHighway = map[string]struct{}{
	"motorway":      {},
	"motorway_link": {},
	"motorroad":     {},
}

var noBikeHighway = map[string]struct{}{
	"motorway":      {},
	"motorway_link": {},
	"motorroad":     {},
	"footway":       {},
	"pedestrian":    {},
	"steps":         {},
}

type TurnRestriction uint8

const (
	NO_LEFT_TURN TurnRestriction = iota
	NO_RIGHT_TURN
	NO_STRAIGHT_ON
	NO_U_TURN
	NO_ENTRY
	ONLY_LEFT_TURN
	ONLY_RIGHT_TURN
	ONLY_STRAIGHT_ON
	ONLY_U_TURN
	INVALID_TURN_RESTRICTION
)

func parseTurnRestriction(value string) TurnRestriction {
	switch value {
	case "no_left_turn":
		return NO_LEFT_TURN
	case "no_right_turn":
		return NO_RIGHT_TURN
	case "no_straight_on":
		return NO_STRAIGHT_ON
	case "no_u_turn":
		return NO_U_TURN
	case "no_entry":
		return NO_ENTRY
	case "only_left_turn":
		return ONLY_LEFT_TURN
	case "only_right_turn":
		return ONLY_RIGHT_TURN
	case "only_straight_on":
		return ONLY_STRAIGHT_ON
	case "only_u_turn":
		return ONLY_U_TURN
	default:
		return INVALID_TURN_RESTRICTION
	}
}

func (tr TurnRestriction) isMandatory() bool {
	return tr >= ONLY_LEFT_TURN && tr <= ONLY_U_TURN
}

// restriction. from way -> via node -> to way
type restriction struct {
	from            osm.WayID
	via             osm.NodeID
	to              osm.WayID
	turnRestriction TurnRestriction
}

func isRestricted(value string) bool {
	return value == "no" || value == "private"
}

func isAllowed(value string) bool {
	return value == "yes" || value == "designated" || value == "permissive"
}

// parseMaxSpeed. km/h, 0 when the tag is missing or unusable ("none", "walk", "signals", ...)
func parseMaxSpeed(value string) float64 {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}

	factor := 1.0
	switch {
	case strings.HasSuffix(value, "mph"):
		factor = 1.60934
		value = strings.TrimSpace(strings.TrimSuffix(value, "mph"))
	case strings.HasSuffix(value, "knots"):
		factor = 1.852
		value = strings.TrimSpace(strings.TrimSuffix(value, "knots"))
	case strings.HasSuffix(value, "km/h"):
		value = strings.TrimSpace(strings.TrimSuffix(value, "km/h"))
	}

	speed, err := strconv.ParseFloat(value, 64)
	if err != nil || speed <= 0 {
		return 0
	}
	return speed * factor
}
