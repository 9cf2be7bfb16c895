package http

import (
	"context"

	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	http_router "github.com/lintang-b-s/Navisafe/pkg/http/router"
	"github.com/lintang-b-s/Navisafe/pkg/http/router/controllers"
	http_server "github.com/lintang-b-s/Navisafe/pkg/http/server"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Server struct {
	Log *zap.Logger
	g   *errgroup.Group
}

func NewServer(log *zap.Logger) *Server {
	return &Server{Log: log}
}

// Use starts the REST api, the websocket listener and its proxy. Wait returns the first failure.
func (s *Server) Use(
	ctx context.Context,
	log *zap.Logger,

	useRateLimit bool,
	pool *concurrent.WorkerPool,
	navigationService controllers.NavigationService,
	placeService controllers.PlaceService,
) (*Server, error) {
	config := http_server.Config{
		Port:          viper.GetInt("API_PORT"),
		WebsocketPort: viper.GetInt("WEBSOCKET_PORT"),
		ProxyPort:     viper.GetInt("PROXY_PORT"),
		Timeout:       viper.GetDuration("API_TIMEOUT"),
	}

	server := http_router.NewAPI(log, pool)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Run(
			gctx, config,
			useRateLimit, navigationService, placeService,
		)
	})
	s.g = g

	return s, nil
}

func (s *Server) Wait() error {
	if s.g == nil {
		return nil
	}
	return s.g.Wait()
}
