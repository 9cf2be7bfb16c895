package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ReadConfig loads ./data/config.yaml (if any) into the global viper instance.
// environment variables always override file values.
func ReadConfig() error {
	viper.SetConfigName("config")
	viper.AddConfigPath("./data/")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err := viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("fatal error config file: %w", err)
	}
	return nil
}

func SetDefaults() {
	viper.SetDefault("LOG_LEVEL", "info")

	viper.SetDefault("API_PORT", 6060)
	viper.SetDefault("WEBSOCKET_PORT", 6666)
	viper.SetDefault("PROXY_PORT", 6767)
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("HTTP_SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("HTTP_SERVER_IDLE_TIMEOUT", "60s")
	viper.SetDefault("HTTP_SERVER_READ_HEADER_TIMEOUT", "5s")
	viper.SetDefault("RATE_LIMIT_ENABLED", false)
	viper.SetDefault("RATE_LIMIT_RPS", 20.0)
	viper.SetDefault("RATE_LIMIT_BURST", 40)

	viper.SetDefault("WORKER_POOL_SIZE", 16)
	viper.SetDefault("WORKER_QUEUE_SIZE", 64)

	viper.SetDefault("LOOKAHEAD_STEPS", 3)
	viper.SetDefault("OFF_ROUTE_THRESHOLD_M", 75.0)

	viper.SetDefault("PROVIDER", "static")
	viper.SetDefault("PLACES_FILE", "./data/places.toml")
	viper.SetDefault("GAZETTEER_FILE", "")
	viper.SetDefault("ROUTES_FILE", "./data/routes.toml")
	viper.SetDefault("NOMINATIM_URL", "https://nominatim.openstreetmap.org")
	viper.SetDefault("VALHALLA_URL", "http://localhost:8002/route")
	viper.SetDefault("PROVIDER_TIMEOUT", "10s")
	viper.SetDefault("SEARCH_CACHE_SIZE", 256)
	viper.SetDefault("SEARCH_LIMIT", 5)

	viper.SetDefault("LOCATION_ENABLED", true)
	viper.SetDefault("LOCATION_LAT", 28.6139)
	viper.SetDefault("LOCATION_LON", 77.2090)
	viper.SetDefault("LOCATION_NAME", "Your Location")
	viper.SetDefault("LOCATION_ADDRESS", "Current GPS Position")
	viper.SetDefault("LOCATION_DELAY", "1s")
	viper.SetDefault("LOCATION_INTERVAL", "0s")
	viper.SetDefault("LOCATE_TIMEOUT", "15s")
}
