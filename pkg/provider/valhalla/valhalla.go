package valhalla

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lintang-b-s/Navisafe/pkg/datastructure"
	"github.com/lintang-b-s/Navisafe/pkg/geo"
	"github.com/lintang-b-s/Navisafe/pkg/guidance"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

// valhalla error codes meaning the request was fine but no route exists.
var noRouteErrorCodes = map[int]struct{}{
	170: {}, // locations are in unconnected regions
	171: {}, // no suitable edges near location
	442: {}, // no path could be found for input
}

type location struct {
	Lat  float64 `json:"lat"`
	Lon  float64 `json:"lon"`
	Type string  `json:"type"`
}

type routeRequest struct {
	Locations      []location                `json:"locations"`
	Costing        string                    `json:"costing"`
	Units          string                    `json:"units"`
	CostingOptions map[string]map[string]any `json:"costing_options,omitempty"`
}

type maneuver struct {
	Type        int      `json:"type"`
	Instruction string   `json:"instruction"`
	Length      float64  `json:"length"`
	StreetNames []string `json:"street_names"`
}

type leg struct {
	Maneuvers []maneuver `json:"maneuvers"`
	Shape     string     `json:"shape"`
}

type routeResponse struct {
	Trip struct {
		Legs    []leg `json:"legs"`
		Summary struct {
			Time   float64 `json:"time"`
			Length float64 `json:"length"`
		} `json:"summary"`
	} `json:"trip"`
}

type errorResponse struct {
	ErrorCode  int    `json:"error_code"`
	Error      string `json:"error"`
	StatusCode int    `json:"status_code"`
}

// Client is a navigation.RouteProvider backed by a Valhalla /route endpoint.
type Client struct {
	url  string
	http *http.Client
	log  *zap.Logger
}

func NewClient(url string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		url:  url,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

func costingOptions(opts datastructure.RouteOptions) map[string]map[string]any {
	auto := map[string]any{
		"use_display_name": false,
		"shortest":         !opts.FastestRoute,
	}
	if opts.AvoidTolls {
		auto["use_tolls"] = 0.0
	}
	if opts.AvoidHighways {
		auto["use_highways"] = 0.0
	}
	return map[string]map[string]any{"auto": auto}
}

func (c *Client) Route(ctx context.Context, origin, destination datastructure.Place,
	opts datastructure.RouteOptions) (*datastructure.Route, error) {
	body, err := json.Marshal(routeRequest{
		Locations: []location{
			{Lat: origin.GetLat(), Lon: origin.GetLon(), Type: "break"},
			{Lat: destination.GetLat(), Lon: destination.GetLon(), Type: "break"},
		},
		Costing:        "auto",
		Units:          "kilometers",
		CostingOptions: costingOptions(opts),
	})
	if err != nil {
		return nil, fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, util.WrapErrorf(err, navigation.ErrProviderUnreachable, "error making request to valhalla")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, util.WrapErrorf(err, navigation.ErrProviderUnreachable, "error reading valhalla response")
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp.StatusCode, payload)
	}

	var vResp routeResponse
	if err := json.Unmarshal(payload, &vResp); err != nil {
		return nil, util.WrapErrorf(err, navigation.ErrProviderUnreachable, "error decoding valhalla response")
	}
	return toRoute(vResp)
}

func (c *Client) statusError(status int, payload []byte) error {
	var vErr errorResponse
	if err := json.Unmarshal(payload, &vErr); err == nil && vErr.ErrorCode != 0 {
		if _, ok := noRouteErrorCodes[vErr.ErrorCode]; ok {
			return util.WrapErrorf(nil, navigation.ErrNoRouteFound, "no route found: %s", vErr.Error)
		}
		c.log.Warn("valhalla routing error", zap.Int("error_code", vErr.ErrorCode), zap.String("error", vErr.Error))
		return util.WrapErrorf(nil, navigation.ErrProviderUnreachable, "routing error %d: %s", vErr.ErrorCode, vErr.Error)
	}
	return util.WrapErrorf(nil, navigation.ErrProviderUnreachable, "valhalla returned status %d", status)
}

func toRoute(vResp routeResponse) (*datastructure.Route, error) {
	if len(vResp.Trip.Legs) == 0 {
		return nil, util.WrapErrorf(nil, navigation.ErrNoRouteFound, "valhalla trip has no legs")
	}

	steps := make([]datastructure.ManeuverStep, 0)
	shape := make([]geo.Coordinate, 0)
	for _, l := range vResp.Trip.Legs {
		for _, m := range l.Maneuvers {
			sign := turnSign(m.Type)
			instruction := m.Instruction
			if instruction == "" {
				street := ""
				if len(m.StreetNames) > 0 {
					street = m.StreetNames[0]
				}
				instruction = guidance.GetTurnDescription(sign, street, 0, "")
			}
			steps = append(steps, datastructure.NewManeuverStep(len(steps), instruction,
				datastructure.NewDistanceKM(m.Length), sign.Direction()))
		}

		coords, err := geo.CoordsFromPolyline(l.Shape, 6)
		if err != nil {
			return nil, util.WrapErrorf(err, navigation.ErrProviderUnreachable, "invalid valhalla shape")
		}
		shape = append(shape, coords...)
	}

	summary := datastructure.NewTripSummary(
		datastructure.NewDistanceKM(vResp.Trip.Summary.Length),
		time.Duration(vResp.Trip.Summary.Time*float64(time.Second)),
	)
	polyline := ""
	if len(shape) > 0 {
		polyline = geo.PolylineFromCoords(shape)
	}
	return datastructure.NewRoute(steps, summary, polyline), nil
}

// turnSign maps valhalla maneuver types onto guidance turn signs.
func turnSign(maneuverType int) guidance.TurnSign {
	switch maneuverType {
	case 1, 2, 3:
		return guidance.START
	case 4, 5, 6:
		return guidance.FINISH
	case 9:
		return guidance.TURN_SLIGHT_RIGHT
	case 10, 18, 20:
		return guidance.TURN_RIGHT
	case 11:
		return guidance.TURN_SHARP_RIGHT
	case 12:
		return guidance.U_TURN_RIGHT
	case 13:
		return guidance.U_TURN_LEFT
	case 14:
		return guidance.TURN_SHARP_LEFT
	case 15, 19, 21:
		return guidance.TURN_LEFT
	case 16:
		return guidance.TURN_SLIGHT_LEFT
	case 23, 37:
		return guidance.KEEP_RIGHT
	case 24, 38:
		return guidance.KEEP_LEFT
	default:
		return guidance.CONTINUE_ON_STREET
	}
}
