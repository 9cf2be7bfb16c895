package main

import (
	"context"
	"flag"

	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/http"
	"github.com/lintang-b-s/Navisafe/pkg/http/usecases"
	"github.com/lintang-b-s/Navisafe/pkg/location"
	"github.com/lintang-b-s/Navisafe/pkg/logger"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/lintang-b-s/Navisafe/pkg/provider/nominatim"
	"github.com/lintang-b-s/Navisafe/pkg/provider/static"
	"github.com/lintang-b-s/Navisafe/pkg/provider/valhalla"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	providerFlag = flag.String("provider", "", "place/route provider: static or remote (overrides PROVIDER)")
)

func main() {
	flag.Parse()

	util.SetDefaults()
	if err := util.ReadConfig(); err != nil {
		panic(err)
	}
	if *providerFlag != "" {
		viper.Set("PROVIDER", *providerFlag)
	}

	logger, err := logger.New()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	placesFile := viper.GetString("PLACES_FILE")
	if gazetteer := viper.GetString("GAZETTEER_FILE"); gazetteer != "" {
		placesFile = gazetteer
	}
	places, err := static.LoadPlaces(placesFile)
	if err != nil {
		logger.Fatal("failed to load places", zap.String("file", placesFile), zap.Error(err))
	}
	index := static.NewPlaceIndex(places, viper.GetInt("SEARCH_LIMIT"), logger)

	var (
		searcher navigation.PlaceSearcher = index
		routes   navigation.RouteProvider
	)
	switch provider := viper.GetString("PROVIDER"); provider {
	case "static":
		routes, err = static.LoadRoutesTOML(viper.GetString("ROUTES_FILE"), places, logger)
		if err != nil {
			logger.Fatal("failed to load routes", zap.Error(err))
		}
	case "remote":
		timeout := viper.GetDuration("PROVIDER_TIMEOUT")
		searcher, err = nominatim.NewClient(viper.GetString("NOMINATIM_URL"), viper.GetInt("SEARCH_LIMIT"),
			viper.GetInt("SEARCH_CACHE_SIZE"), timeout, logger)
		if err != nil {
			logger.Fatal("failed to create nominatim client", zap.Error(err))
		}
		routes = valhalla.NewClient(viper.GetString("VALHALLA_URL"), timeout, logger)
	default:
		logger.Fatal("unknown provider", zap.String("provider", provider))
	}

	var locator navigation.LocationSource
	if viper.GetBool("LOCATION_ENABLED") {
		locator = location.NewFixed(datastructure.NewPlace("origin",
			viper.GetString("LOCATION_NAME"), viper.GetString("LOCATION_ADDRESS"),
			viper.GetFloat64("LOCATION_LAT"), viper.GetFloat64("LOCATION_LON")),
			viper.GetDuration("LOCATION_DELAY"), viper.GetDuration("LOCATION_INTERVAL"))
	}

	pool := concurrent.NewWorkerPool(viper.GetInt("WORKER_POOL_SIZE"), viper.GetInt("WORKER_QUEUE_SIZE"))
	pool.Spawn(viper.GetInt("WORKER_POOL_SIZE") / 2)

	navigationService := usecases.NewNavigationService(logger, routes, searcher, locator, pool,
		usecases.NavigationConfig{
			Session: navigation.Config{
				Lookahead:         viper.GetInt("LOOKAHEAD_STEPS"),
				OffRouteThreshold: viper.GetFloat64("OFF_ROUTE_THRESHOLD_M"),
			},
			LocateTimeout: viper.GetDuration("LOCATE_TIMEOUT"),
		})
	placeService := usecases.NewPlaceService(logger, searcher, index)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}

	api := http.NewServer(logger)
	if _, err := api.Use(ctx, logger, viper.GetBool("RATE_LIMIT_ENABLED"), pool,
		navigationService, placeService); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}
	go func() {
		if err := api.Wait(); err != nil {
			logger.Error("server stopped", zap.Error(err))
		}
	}()

	logger.Info("Navisafe navigation server started",
		zap.String("provider", viper.GetString("PROVIDER")),
		zap.Int("places", index.Len()))

	signal := http.GracefulShutdown()

	logger.Info("Navisafe navigation server stopped", zap.String("signal", signal.String()))
	cleanup()
	navigationService.Close()
	pool.Close()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
