package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/julienschmidt/httprouter"
	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	helper "github.com/lintang-b-s/Navisafe/pkg/http/router/routerhelper"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"go.uber.org/zap"
)

type navigationAPI struct {
	baseAPI
	navigationService NavigationService
}

func NewNavigationAPI(navigationService NavigationService, log *zap.Logger) *navigationAPI {
	return &navigationAPI{
		baseAPI:           baseAPI{log: log},
		navigationService: navigationService,
	}
}

func (api *navigationAPI) Routes(group *helper.RouteGroup) {
	group.POST("/sessions", api.createSession)
	group.GET("/sessions/:id", api.getSession)
	group.DELETE("/sessions/:id", api.deleteSession)

	group.PUT("/sessions/:id/query", api.setQuery)
	group.POST("/sessions/:id/search/select", api.selectCandidate)
	group.DELETE("/sessions/:id/search", api.clearSearch)

	group.PUT("/sessions/:id/destination", api.selectDestination)
	group.DELETE("/sessions/:id/destination", api.clearDestination)

	group.POST("/sessions/:id/navigation/start", api.startNavigation)
	group.POST("/sessions/:id/navigation/stop", api.stopNavigation)
	group.POST("/sessions/:id/navigation/advance", api.advance)

	group.PUT("/sessions/:id/options", api.setOptions)
	group.PUT("/sessions/:id/origin", api.updateOrigin)
}

// createSession
//
//	@Summary		create a navigation session (screen mount)
//	@Tags			navigation
//	@Produce		application/json
//	@Router			/api/sessions [post]
//	@Success		201	{object}	sessionResponse
func (api *navigationAPI) createSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session := api.navigationService.CreateSession()

	headers := make(http.Header)
	headers.Set("Location", fmt.Sprintf("/api/sessions/%s", session.ID()))
	if err := writeJSON(w, http.StatusCreated, envelope{"data": NewSessionResponse(session.Snapshot())}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *navigationAPI) getSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, ok := api.session(w, r, p)
	if !ok {
		return
	}
	api.writeSnapshot(w, r, http.StatusOK, session)
}

func (api *navigationAPI) deleteSession(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	id := p.ByName("id")
	if err := api.navigationService.DeleteSession(id); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, envelope{"data": map[string]string{"id": id, "status": "deleted"}}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

// setQuery
//
//	@Summary		update the search text. with wait=true the response carries the lookup result
//	@Tags			search
//	@Param			id		path	string	true	"session id"
//	@Param			wait	query	bool	false	"block until the lookup completes"
//	@Router			/api/sessions/{id}/query [put]
//	@Success		200	{object}	navigation.Snapshot
//	@Success		202	{object}	navigation.Snapshot
func (api *navigationAPI) setQuery(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request queryRequest
	if !api.decode(w, r, &request) {
		return
	}
	wait, ok := api.waitParam(w, r)
	if !ok {
		return
	}

	id := p.ByName("id")
	fut, err := api.navigationService.SetQuery(id, request.Query)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.finish(w, r, id, fut, wait)
}

func (api *navigationAPI) selectCandidate(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, ok := api.session(w, r, p)
	if !ok {
		return
	}
	var request placeRequest
	if !api.decode(w, r, &request) {
		return
	}
	if err := session.Search().SelectCandidate(request.ToPlace()); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeSnapshot(w, r, http.StatusOK, session)
}

func (api *navigationAPI) clearSearch(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.command(w, r, p, func(s *navigation.Session) error {
		return s.Search().Clear()
	})
}

func (api *navigationAPI) selectDestination(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, ok := api.session(w, r, p)
	if !ok {
		return
	}
	var request placeRequest
	if !api.decode(w, r, &request) {
		return
	}
	if err := session.SelectDestination(request.ToPlace()); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeSnapshot(w, r, http.StatusOK, session)
}

func (api *navigationAPI) clearDestination(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.command(w, r, p, (*navigation.Session).ClearDestination)
}

// startNavigation
//
//	@Summary		request a route to the selected destination
//	@Tags			navigation
//	@Param			id		path	string	true	"session id"
//	@Param			wait	query	bool	false	"block until the route request completes"
//	@Router			/api/sessions/{id}/navigation/start [post]
//	@Success		200	{object}	navigation.Snapshot
//	@Success		202	{object}	navigation.Snapshot
//	@Failure		409	{object}	errorResponse
//	@Failure		422	{object}	errorResponse
//	@Failure		503	{object}	errorResponse
func (api *navigationAPI) startNavigation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	wait, ok := api.waitParam(w, r)
	if !ok {
		return
	}
	id := p.ByName("id")
	fut, err := api.navigationService.StartNavigation(id)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.finish(w, r, id, fut, wait)
}

func (api *navigationAPI) stopNavigation(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	api.command(w, r, p, (*navigation.Session).StopNavigation)
}

func (api *navigationAPI) advance(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, ok := api.session(w, r, p)
	if !ok {
		return
	}
	advanced, err := session.Advance()
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	resp := advanceResponse{Advanced: advanced, Snapshot: session.Snapshot()}
	if err := writeJSON(w, http.StatusOK, envelope{"data": resp}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}

func (api *navigationAPI) setOptions(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, ok := api.session(w, r, p)
	if !ok {
		return
	}
	var request optionsRequest
	if !api.decode(w, r, &request) {
		return
	}
	if err := session.SetRouteOptions(request.ToOptions()); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeSnapshot(w, r, http.StatusOK, session)
}

func (api *navigationAPI) updateOrigin(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	session, ok := api.session(w, r, p)
	if !ok {
		return
	}
	var request originRequest
	if !api.decode(w, r, &request) {
		return
	}
	if err := session.UpdateOrigin(request.ToPlace()); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeSnapshot(w, r, http.StatusOK, session)
}

func (api *navigationAPI) session(w http.ResponseWriter, r *http.Request, p httprouter.Params) (*navigation.Session, bool) {
	session, err := api.navigationService.GetSession(p.ByName("id"))
	if err != nil {
		api.getStatusCode(w, r, err)
		return nil, false
	}
	return session, true
}

func (api *navigationAPI) command(w http.ResponseWriter, r *http.Request, p httprouter.Params,
	do func(*navigation.Session) error) {
	session, ok := api.session(w, r, p)
	if !ok {
		return
	}
	if err := do(session); err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeSnapshot(w, r, http.StatusOK, session)
}

func (api *navigationAPI) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := readJSON(w, r, dst); err != nil {
		api.BadRequestResponse(w, r, err)
		return false
	}
	if err := validateStruct(dst); err != nil {
		api.BadRequestResponse(w, r, err)
		return false
	}
	return true
}

func (api *navigationAPI) waitParam(w http.ResponseWriter, r *http.Request) (bool, bool) {
	raw := r.URL.Query().Get("wait")
	if raw == "" {
		return false, true
	}
	wait, err := strconv.ParseBool(raw)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("wait must be a valid bool"))
		return false, false
	}
	return wait, true
}

// finish answers 202 right away, or waits for fut and answers with the settled snapshot.
// a superseded request is not a failure: the newer request owns the state.
func (api *navigationAPI) finish(w http.ResponseWriter, r *http.Request, id string, fut *concurrent.Future, wait bool) {
	session, err := api.navigationService.GetSession(id)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}
	if !wait {
		api.writeSnapshot(w, r, http.StatusAccepted, session)
		return
	}

	err = fut.Wait(r.Context())
	if err != nil && !errors.Is(err, navigation.ErrSuperseded) {
		api.getStatusCode(w, r, err)
		return
	}
	api.writeSnapshot(w, r, http.StatusOK, session)
}

func (api *navigationAPI) writeSnapshot(w http.ResponseWriter, r *http.Request, status int, session *navigation.Session) {
	if err := writeJSON(w, status, envelope{"data": session.Snapshot()}, nil); err != nil {
		api.ServerErrorResponse(w, r, err)
	}
}
