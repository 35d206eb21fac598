package osmparser

import (
	"context"
	"io"
	"runtime"
	"strings"

	"github.com/DigitalGeographyLab/r5/pkg"
	da "github.com/DigitalGeographyLab/r5/pkg/datastructure"
	"github.com/DigitalGeographyLab/r5/pkg/util"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"github.com/paulmach/osm/osmxml"
	"go.uber.org/zap"
)

// ScannerFactory. open a fresh scanner over the same osm data. the parser scans twice
type ScannerFactory func(ctx context.Context) (osm.Scanner, error)

type fileScanner struct {
	osm.Scanner
	file io.Closer
}

func (s *fileScanner) Close() error {
	err := s.Scanner.Close()
	if cerr := s.file.Close(); err == nil {
		err = cerr
	}
	return err
}

// FileScannerFactory. *.pbf is read with osmpbf, *.osm / *.xml (optionally .bz2) with osmxml
func FileScannerFactory(path string) ScannerFactory {
	return func(ctx context.Context) (osm.Scanner, error) {
		f, err := util.OpenFile(path)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(strings.ToLower(path), ".bz2")
		if strings.HasSuffix(name, ".pbf") {
			return &fileScanner{Scanner: osmpbf.New(ctx, f, runtime.GOMAXPROCS(0)), file: f}, nil
		}
		return &fileScanner{Scanner: osmxml.New(ctx, f), file: f}, nil
	}
}

type wayEdge struct {
	edgeID   da.Index
	from, to da.Index
}

type OsmParser struct {
	logger *zap.Logger

	wayNodeMap   map[osm.NodeID]NodeType
	nodeCoords   map[osm.NodeID]da.Coordinate
	nodeVertex   map[osm.NodeID]da.Index
	restrictions []restriction

	wayEdges       map[osm.WayID][]wayEdge
	vertexOutEdges map[da.Index][]da.Index

	skippedRestrictions int
}

func NewOsmParser(logger *zap.Logger) *OsmParser {
	return &OsmParser{
		logger:         logger,
		wayNodeMap:     make(map[osm.NodeID]NodeType),
		nodeCoords:     make(map[osm.NodeID]da.Coordinate),
		nodeVertex:     make(map[osm.NodeID]da.Index),
		restrictions:   make([]restriction, 0),
		wayEdges:       make(map[osm.WayID][]wayEdge),
		vertexOutEdges: make(map[da.Index][]da.Index),
	}
}

// Parse. build a frozen edge store from an osm file
func (p *OsmParser) Parse(ctx context.Context, mapFile string) (*da.EdgeStore, error) {
	return p.ParseScanners(ctx, FileScannerFactory(mapFile))
}

/*
ParseScanners. build a frozen edge store from two scans of the same osm data.

first scan: count how many ways use each node and collect turn restriction relations.
second scan: keep coordinates of routable nodes, then split every routable way at its
junction nodes into one edge per direction that some street mode may traverse.
nodes must precede ways (standard osm ordering).
*/
func (p *OsmParser) ParseScanners(ctx context.Context, newScanner ScannerFactory) (*da.EdgeStore, error) {
	scanner, err := newScanner(ctx)
	if err != nil {
		return nil, err
	}
	countWays := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Way:
			if !acceptOsmWay(o) {
				continue
			}
			if (countWays+1)%50000 == 0 {
				p.logger.Sugar().Infof("scanning openstreetmap ways: %d...", countWays+1)
			}
			countWays++
			p.markWayNodes(o)
		case *osm.Relation:
			p.scanRelation(o)
		}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "scan openstreetmap data")
	}
	scanner.Close()

	scanner, err = newScanner(ctx)
	if err != nil {
		return nil, err
	}
	defer scanner.Close()

	es := da.NewEdgeStoreWithSize(0, 2*countWays)
	countWays = 0
	countNodes := 0
	for scanner.Scan() {
		switch o := scanner.Object().(type) {
		case *osm.Node:
			if _, ok := p.wayNodeMap[o.ID]; !ok {
				continue
			}
			if (countNodes+1)%500000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap nodes: %d...", countNodes+1)
			}
			countNodes++
			p.nodeCoords[o.ID] = da.NewCoordinate(o.Lat, o.Lon)
		case *osm.Way:
			if !acceptOsmWay(o) {
				continue
			}
			if (countWays+1)%100000 == 0 {
				p.logger.Sugar().Infof("processing openstreetmap ways: %d...", countWays+1)
			}
			countWays++
			if err := p.processWay(es, o); err != nil {
				return nil, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, util.WrapErrorf(err, util.ErrBadParamInput, "scan openstreetmap data")
	}

	p.applyRestrictions(es)
	es.Freeze()

	p.logger.Info("built street edge store",
		zap.Int("vertices", es.NumberOfVertices()),
		zap.Int("edges", es.NumberOfEdges()),
		zap.Int("turnRestrictions", es.NumberOfTurnRestrictions()),
		zap.Int("skippedRestrictions", p.skippedRestrictions),
	)
	return es, nil
}

func acceptOsmWay(way *osm.Way) bool {
	if len(way.Nodes) < 2 {
		return false
	}
	if pkg.GetHighwayType(way.Tags.Find("highway")) == pkg.UNKNOWN {
		return false
	}
	return way.Tags.Find("area") != "yes"
}

func (p *OsmParser) markWayNodes(way *osm.Way) {
	for i, node := range way.Nodes {
		if _, ok := p.wayNodeMap[node.ID]; ok {
			p.wayNodeMap[node.ID] = JUNCTION_NODE
			continue
		}
		if i == 0 || i == len(way.Nodes)-1 {
			p.wayNodeMap[node.ID] = END_NODE
		} else {
			p.wayNodeMap[node.ID] = BETWEEN_NODE
		}
	}
}

// scanRelation. https://wiki.openstreetmap.org/wiki/Relation:restriction
func (p *OsmParser) scanRelation(relation *osm.Relation) {
	if relation.Tags.Find("type") != "restriction" {
		return
	}
	turnRestriction := parseTurnRestriction(relation.Tags.Find("restriction"))
	if turnRestriction == INVALID_TURN_RESTRICTION {
		turnRestriction = parseTurnRestriction(relation.Tags.Find("restriction:motorcar"))
	}
	if turnRestriction == INVALID_TURN_RESTRICTION {
		return
	}

	rest := restriction{turnRestriction: turnRestriction}
	hasVia := false
	for _, member := range relation.Members {
		switch {
		case member.Role == "from" && member.Type == osm.TypeWay:
			rest.from = osm.WayID(member.Ref)
		case member.Role == "to" && member.Type == osm.TypeWay:
			rest.to = osm.WayID(member.Ref)
		case member.Role == "via" && member.Type == osm.TypeNode:
			rest.via = osm.NodeID(member.Ref)
			hasVia = true
		case member.Role == "via":
			// via ways need multi edge restrictions
			p.skippedRestrictions++
			return
		}
	}
	if !hasVia || rest.from == 0 || rest.to == 0 {
		p.skippedRestrictions++
		return
	}
	p.restrictions = append(p.restrictions, rest)
}

func (p *OsmParser) vertexOf(es *da.EdgeStore, nodeID osm.NodeID) (da.Index, error) {
	if v, ok := p.nodeVertex[nodeID]; ok {
		return v, nil
	}
	coord := p.nodeCoords[nodeID]
	v, err := es.AddVertex(coord.GetLat(), coord.GetLon())
	if err != nil {
		return da.INVALID_VERTEX_ID, err
	}
	p.nodeVertex[nodeID] = v
	return v, nil
}

func (p *OsmParser) processWay(es *da.EdgeStore, way *osm.Way) error {
	for _, node := range way.Nodes {
		if _, ok := p.nodeCoords[node.ID]; !ok {
			p.logger.Debug("skipping way with unknown node", zap.Int64("wayId", int64(way.ID)), zap.Int64("nodeId", int64(node.ID)))
			return nil
		}
	}

	forward, backward := wayPermissions(way)
	if forward == 0 && backward == 0 {
		return nil
	}

	hwType := pkg.GetHighwayType(way.Tags.Find("highway"))
	speed := parseMaxSpeed(way.Tags.Find("maxspeed"))
	if speed == 0 {
		speed = pkg.RoadTypeSpeed(hwType)
	}
	wayId := da.NewWayID(int64(way.ID))

	segmentStart := 0
	geometry := []da.Coordinate{p.nodeCoords[way.Nodes[0].ID]}
	for i := 1; i < len(way.Nodes); i++ {
		nodeID := way.Nodes[i].ID
		geometry = append(geometry, p.nodeCoords[nodeID])
		if i != len(way.Nodes)-1 && p.wayNodeMap[nodeID] == BETWEEN_NODE {
			continue
		}

		from, err := p.vertexOf(es, way.Nodes[segmentStart].ID)
		if err != nil {
			return err
		}
		to, err := p.vertexOf(es, nodeID)
		if err != nil {
			return err
		}
		lengthM := da.PolylineLengthMeters(geometry)

		if forward != 0 {
			if err := p.addEdge(es, way.ID, from, to, lengthM, speed, hwType, forward, wayId, geometry); err != nil {
				return err
			}
		}
		if backward != 0 {
			reversed := util.ReverseG(geometry)
			if err := p.addEdge(es, way.ID, to, from, lengthM, speed, hwType, backward, wayId, reversed); err != nil {
				return err
			}
		}

		segmentStart = i
		geometry = []da.Coordinate{p.nodeCoords[nodeID]}
	}
	return nil
}

func (p *OsmParser) addEdge(es *da.EdgeStore, osmWayID osm.WayID, from, to da.Index, lengthM, speed float64,
	hwType pkg.OsmHighwayType, permission da.EdgePermission, wayId da.WayID, geometry []da.Coordinate) error {
	edgeID, err := es.AddEdge(from, to, lengthM, speed, hwType, permission, wayId, geometry)
	if err != nil {
		return err
	}
	p.wayEdges[osmWayID] = append(p.wayEdges[osmWayID], wayEdge{edgeID: edgeID, from: from, to: to})
	p.vertexOutEdges[from] = append(p.vertexOutEdges[from], edgeID)
	return nil
}

/*
wayPermissions. street modes allowed along (forward) and against (backward) the node order of the way.

walking ignores oneway. bicycle follows oneway unless oneway:bicycle=no.
https://wiki.openstreetmap.org/wiki/Key:access
*/
func wayPermissions(way *osm.Way) (da.EdgePermission, da.EdgePermission) {
	hw := way.Tags.Find("highway")
	access := way.Tags.Find("access")

	walk := true
	if _, ok := noWalkHighway[hw]; ok {
		walk = false
	}
	bike := true
	if _, ok := noBikeHighway[hw]; ok {
		bike = false
	}
	_, car := carHighway[hw]

	if isRestricted(access) {
		walk, bike, car = false, false, false
	}
	if foot := way.Tags.Find("foot"); isRestricted(foot) {
		walk = false
	} else if isAllowed(foot) {
		walk = true
	}
	if bicycle := way.Tags.Find("bicycle"); isRestricted(bicycle) {
		bike = false
	} else if isAllowed(bicycle) {
		bike = true
	}
	motor := way.Tags.Find("motor_vehicle")
	if motorcar := way.Tags.Find("motorcar"); motorcar != "" {
		motor = motorcar
	}
	if isRestricted(motor) {
		car = false
	}

	oneway := way.Tags.Find("oneway")
	isOneway := oneway == "yes" || oneway == "1" || oneway == "true" || oneway == "-1" ||
		way.Tags.Find("junction") == "roundabout" || hw == "motorway"
	reversed := oneway == "-1"
	bikeContraflow := way.Tags.Find("oneway:bicycle") == "no" || way.Tags.Find("cycleway") == "opposite"

	var along, against da.EdgePermission
	if walk {
		along |= da.ALLOWS_WALK
		against |= da.ALLOWS_WALK
	}
	if bike {
		along |= da.ALLOWS_BIKE
		if !isOneway || bikeContraflow {
			against |= da.ALLOWS_BIKE
		}
	}
	if car {
		along |= da.ALLOWS_CAR
		if !isOneway {
			against |= da.ALLOWS_CAR
		}
	}

	if reversed {
		along, against = against, along
	}
	return along, against
}

/*
applyRestrictions. resolve from way -> via node -> to way relations into edge pairs.

no_* forbids every turn from the from-way into the to-way at the via node.
only_* forbids every other turn out of the via node for edges arriving over the from-way.
*/
func (p *OsmParser) applyRestrictions(es *da.EdgeStore) {
	for _, rest := range p.restrictions {
		via, ok := p.nodeVertex[rest.via]
		if !ok {
			p.skippedRestrictions++
			continue
		}

		fromEdges := make([]da.Index, 0, 1)
		for _, we := range p.wayEdges[rest.from] {
			if we.to == via {
				fromEdges = append(fromEdges, we.edgeID)
			}
		}
		toEdges := make(map[da.Index]struct{})
		for _, we := range p.wayEdges[rest.to] {
			if we.from == via {
				toEdges[we.edgeID] = struct{}{}
			}
		}
		if len(fromEdges) == 0 || len(toEdges) == 0 {
			p.skippedRestrictions++
			continue
		}

		for _, fromEdge := range fromEdges {
			for _, outEdge := range p.vertexOutEdges[via] {
				_, isTo := toEdges[outEdge]
				if isTo == rest.turnRestriction.isMandatory() {
					continue
				}
				if err := es.AddTurnRestriction(fromEdge, outEdge); err != nil {
					p.logger.Warn("cannot add turn restriction", zap.Error(err))
				}
			}
		}
	}
}
