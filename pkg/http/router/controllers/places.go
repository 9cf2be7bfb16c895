package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	helper "github.com/lintang-b-s/Navisafe/pkg/http/router/routerhelper"
	"go.uber.org/zap"
)

const (
	defaultNearbyRadius = 1.0
	defaultNearbyLimit  = 10
)

type placesAPI struct {
	baseAPI
	placeService PlaceService
}

func NewPlacesAPI(placeService PlaceService, log *zap.Logger) *placesAPI {
	return &placesAPI{
		baseAPI:      baseAPI{log: log},
		placeService: placeService,
	}
}

func (api *placesAPI) Routes(group *helper.RouteGroup) {
	group.GET("/places/search", api.search)
	group.GET("/places/nearby", api.nearby)
}

// search
//
//	@Summary		free text place lookup, outside any session
//	@Tags			places
//	@Param			q	query	string	true	"query"
//	@Router			/api/places/search [get]
//	@Success		200	{object}	placesResponse
func (api *placesAPI) search(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	request := placeSearchRequest{Query: r.URL.Query().Get("q")}
	if err := validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	places, err := api.placeService.Search(r.Context(), request.Query)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"data": placesResponse{Places: places}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// nearby
//
//	@Summary		places around a coordinate, nearest first
//	@Tags			places
//	@Param			lat		query	number	true	"latitude"
//	@Param			lon		query	number	true	"longitude"
//	@Param			radius	query	number	false	"radius in km"
//	@Param			limit	query	int		false	"max results"
//	@Router			/api/places/nearby [get]
//	@Success		200	{object}	nearbyResponse
func (api *placesAPI) nearby(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		request = nearbyRequest{Radius: defaultNearbyRadius, Limit: defaultNearbyLimit}
		err     error
	)
	query := r.URL.Query()

	request.Lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	request.Lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	if raw := query.Get("radius"); raw != "" {
		request.Radius, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("radius must be a valid float"))
			return
		}
	}
	if raw := query.Get("limit"); raw != "" {
		request.Limit, err = strconv.Atoi(raw)
		if err != nil {
			api.BadRequestResponse(w, r, errors.New("limit must be a valid int"))
			return
		}
	}
	if err := validateStruct(request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}

	places, err := api.placeService.Nearby(request.Lat, request.Lon, request.Radius, request.Limit)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"data": nearbyResponse{Places: places}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
