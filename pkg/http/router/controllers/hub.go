package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"sort"
	"sync"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"go.uber.org/zap"
)

// User is one websocket connection bound to a navigation session.
type User struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id          uint
	hub         *Hub
	session     *navigation.Session
	unsubscribe func()
}

func (u *User) readRequest() (*wsCommand, error) {
	u.io.Lock()
	defer u.io.Unlock()

	h, r, err := wsutil.NextReader(u.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(u.conn, ws.StateServerSide)(h, r)
	}

	req := &wsCommand{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

// HandleCommand reads one command from the connection and applies it to the session.
// a returned error means the connection is unusable.
func (u *User) HandleCommand() error {
	req, err := u.readRequest()
	if err != nil {
		u.conn.Close()
		return err
	}

	if req == nil {
		return nil
	}

	if err := validateStruct(req); err != nil {
		return u.writeError(http.StatusBadRequest, err)
	}

	resp, err := u.apply(req)
	if err != nil {
		return u.writeError(statusFor(err), err)
	}
	return u.write(resp)
}

func (u *User) apply(req *wsCommand) (envelope, error) {
	s := u.session
	var err error

	switch req.Action {
	case "snapshot":
	case "start":
		_, err = u.hub.navigationService.StartNavigation(s.ID())
	case "stop":
		err = s.StopNavigation()
	case "advance":
		var advanced bool
		advanced, err = s.Advance()
		if err == nil {
			return envelope{"data": advanceResponse{Advanced: advanced, Snapshot: s.Snapshot()}}, nil
		}
	case "query":
		_, err = u.hub.navigationService.SetQuery(s.ID(), req.Query)
	case "select", "destination":
		if req.Place == nil {
			return nil, errors.New("place is required")
		}
		if err := validateStruct(req.Place); err != nil {
			return nil, err
		}
		if req.Action == "select" {
			err = s.Search().SelectCandidate(req.Place.ToPlace())
		} else {
			err = s.SelectDestination(req.Place.ToPlace())
		}
	case "clear_search":
		err = s.Search().Clear()
	case "clear_destination":
		err = s.ClearDestination()
	case "options":
		if req.Options == nil {
			return nil, errors.New("options is required")
		}
		err = s.SetRouteOptions(req.Options.ToOptions())
	case "origin":
		if req.Origin == nil {
			return nil, errors.New("origin is required")
		}
		if err := validateStruct(req.Origin); err != nil {
			return nil, err
		}
		err = s.UpdateOrigin(req.Origin.ToPlace())
	}
	if err != nil {
		return nil, err
	}
	return envelope{"data": s.Snapshot()}, nil
}

func (u *User) writeError(status int, err error) error {
	return u.write(envelope{"error": map[string]string{
		"code":    http.StatusText(status),
		"message": err.Error(),
	}})
}

func (u *User) write(x interface{}) error {
	w := wsutil.NewWriter(u.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	u.io.Lock()
	defer u.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// forward pushes every session event to the client until the subscription ends.
func (u *User) forward(events <-chan navigation.Event) {
	for ev := range events {
		if err := u.write(envelope{"event": ev.Kind, "data": ev.Snapshot}); err != nil {
			u.hub.log.Debug("push event", zap.Uint("user", u.id), zap.Error(err))
			return
		}
	}
}

type Hub struct {
	mu                sync.RWMutex
	seq               uint
	us                []*User
	ns                map[uint]*User
	navigationService NavigationService
	log               *zap.Logger
}

func NewHub(navigationService NavigationService, log *zap.Logger) *Hub {
	hub := &Hub{
		ns:                make(map[uint]*User),
		us:                make([]*User, 0),
		navigationService: navigationService,
		log:               log,
	}

	return hub
}

// Session resolves the session a new connection asks for.
func (h *Hub) Session(id string) (*navigation.Session, error) {
	return h.navigationService.GetSession(id)
}

// Register binds conn to session, pushes the current snapshot and starts event forwarding.
func (h *Hub) Register(conn net.Conn, session *navigation.Session) *User {
	events, unsubscribe := session.Subscribe()
	user := &User{
		hub:         h,
		conn:        conn,
		session:     session,
		unsubscribe: unsubscribe,
	}

	h.mu.Lock()
	user.id = h.seq
	h.ns[user.id] = user
	h.us = append(h.us, user)

	h.seq++
	h.mu.Unlock()

	if err := user.write(envelope{"event": "connected", "data": session.Snapshot()}); err != nil {
		h.log.Debug("write initial snapshot", zap.Error(err))
	}
	go user.forward(events)

	return user
}

func (h *Hub) Remove(user *User) {
	h.mu.Lock()
	if _, oki := h.ns[user.id]; !oki {
		h.mu.Unlock()
		return
	}
	delete(h.ns, user.id)

	i := sort.Search(len(h.us), func(i int) bool {
		return h.us[i].id >= user.id
	})

	newUs := make([]*User, len(h.us)-1)
	copy(newUs[:i], h.us[:i])
	copy(newUs[i:], h.us[i+1:])
	h.us = newUs

	h.mu.Unlock()

	user.unsubscribe()
	user.conn.Close()
}

func (h *Hub) RemoveAllUser() {
	h.mu.RLock()
	users := make([]*User, len(h.us))
	copy(users, h.us)
	h.mu.RUnlock()

	for _, user := range users {
		h.Remove(user)
	}
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.us)
}
