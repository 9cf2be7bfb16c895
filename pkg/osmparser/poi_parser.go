package osmparser

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"
	"go.uber.org/zap"
)

// key -> accepted values ("*" accepts any value)
var poiTags = map[string]map[string]struct{}{
	"tourism": {
		"attraction": {}, "museum": {}, "viewpoint": {}, "gallery": {}, "zoo": {}, "theme_park": {},
	},
	"historic": {
		"*": {},
	},
	"amenity": {
		"place_of_worship": {}, "hospital": {}, "police": {}, "university": {}, "marketplace": {},
	},
	"building": {
		"palace": {}, "temple": {}, "mosque": {}, "church": {},
	},
	"leisure": {
		"park": {}, "garden": {},
	},
}

type poiWay struct {
	id    int64
	nodes []int64
	tags  osm.Tags
}

// PoiParser extracts named points of interest from an OSM PBF extract into gazetteer places.
// named ways (e.g. building outlines) become a place at the centroid of their nodes.
type PoiParser struct {
	ways       []poiWay
	neededNode map[int64]struct{}
	nodeCoord  map[int64]datastructure.Coordinate
	places     []datastructure.Place
}

func NewPoiParser() *PoiParser {
	return &PoiParser{
		ways:       make([]poiWay, 0),
		neededNode: make(map[int64]struct{}),
		nodeCoord:  make(map[int64]datastructure.Coordinate),
		places:     make([]datastructure.Place, 0),
	}
}

func (p *PoiParser) Parse(mapFile string, logger *zap.Logger) ([]datastructure.Place, error) {
	f, err := os.Open(mapFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	// first pass: named poi ways, so the second pass knows which node coordinates to keep.
	scanner := osmpbf.New(context.Background(), f, 0)
	countWays := 0
	for scanner.Scan() {
		way, ok := scanner.Object().(*osm.Way)
		if !ok || len(way.Nodes) == 0 || !AcceptPoi(way.Tags) {
			continue
		}
		countWays++
		if countWays%10000 == 0 {
			logger.Sugar().Infof("scanning openstreetmap poi ways: %d...", countWays)
		}
		nodes := make([]int64, 0, len(way.Nodes))
		for _, n := range way.Nodes {
			nodes = append(nodes, int64(n.ID))
			p.neededNode[int64(n.ID)] = struct{}{}
		}
		p.ways = append(p.ways, poiWay{id: int64(way.ID), nodes: nodes, tags: way.Tags})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("scan %s: %w", mapFile, err)
	}
	scanner.Close()

	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, err
	}

	scanner = osmpbf.New(context.Background(), f, 0)
	defer scanner.Close()
	scanner.SkipWays = true
	scanner.SkipRelations = true
	for scanner.Scan() {
		node, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := p.neededNode[int64(node.ID)]; needed {
			p.nodeCoord[int64(node.ID)] = datastructure.NewCoordinate(node.Lat, node.Lon)
		}
		if AcceptPoi(node.Tags) {
			p.places = append(p.places, PlaceFromTags(fmt.Sprintf("n%d", node.ID), node.Tags, node.Lat, node.Lon))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan %s: %w", mapFile, err)
	}

	for _, w := range p.ways {
		lat, lon, ok := p.centroid(w.nodes)
		if !ok {
			continue
		}
		p.places = append(p.places, PlaceFromTags(fmt.Sprintf("w%d", w.id), w.tags, lat, lon))
	}

	logger.Info("openstreetmap pois parsed",
		zap.Int("places", len(p.places)), zap.Int("ways", len(p.ways)))
	return p.places, nil
}

func (p *PoiParser) centroid(nodes []int64) (float64, float64, bool) {
	var lat, lon float64
	n := 0
	for _, id := range nodes {
		c, ok := p.nodeCoord[id]
		if !ok {
			continue
		}
		lat += c.Lat
		lon += c.Lon
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	return lat / float64(n), lon / float64(n), true
}

// AcceptPoi reports whether an element with tags is a named point of interest.
func AcceptPoi(tags osm.Tags) bool {
	if placeName(tags) == "" {
		return false
	}
	for key, values := range poiTags {
		val := tags.Find(key)
		if val == "" {
			continue
		}
		if _, ok := values["*"]; ok {
			return true
		}
		if _, ok := values[val]; ok {
			return true
		}
	}
	return false
}

func placeName(tags osm.Tags) string {
	if name := tags.Find("name:en"); name != "" {
		return name
	}
	return tags.Find("name")
}

// PlaceFromTags builds a place; the address is "city, state" from addr:* tags.
func PlaceFromTags(id string, tags osm.Tags, lat, lon float64) datastructure.Place {
	parts := make([]string, 0, 2)
	city := tags.Find("addr:city")
	if city == "" {
		city = tags.Find("is_in:city")
	}
	if city != "" {
		parts = append(parts, city)
	}
	if state := tags.Find("addr:state"); state != "" {
		parts = append(parts, state)
	}
	return datastructure.NewPlace(id, strings.TrimSpace(placeName(tags)), strings.Join(parts, ", "), lat, lon)
}
