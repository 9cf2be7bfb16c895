package main

import (
	"flag"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/logger"
	"github.com/lintang-b-s/Navisafe/pkg/osmparser"
	"go.uber.org/zap"
)

var (
	mapFile = flag.String("f", "./data/region.osm.pbf", "openstreetmap pbf extract")
	outFile = flag.String("o", "./data/gazetteer.places.bz2", "output gazetteer file (bzip2)")
)

// gazetteer extracts named points of interest from an osm extract for the static place index.
func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	parser := osmparser.NewPoiParser()
	places, err := parser.Parse(*mapFile, logger)
	if err != nil {
		logger.Fatal("failed to parse osm extract", zap.String("file", *mapFile), zap.Error(err))
	}

	if err := datastructure.WritePlaces(*outFile, places); err != nil {
		logger.Fatal("failed to write gazetteer", zap.String("file", *outFile), zap.Error(err))
	}

	logger.Sugar().Infof("gazetteer written: %d places -> %s", len(places), *outFile)
}
