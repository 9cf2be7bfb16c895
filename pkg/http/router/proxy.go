package router

import (
	"errors"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/lintang-b-s/Navisafe/pkg/util"
	"go.uber.org/zap"
)

// sessionTunnel forwards websocket upgrades for a known session to the netpoll listener at addr.
type sessionTunnel struct {
	api     *API
	name    string
	network string
	addr    string
}

// upstream hijacks the client connection and pipes it to the websocket listener at addr.
// upgrades without a live ?session= are refused before anything is dialed.
func (api *API) upstream(name, network, addr string) http.HandlerFunc {
	t := &sessionTunnel{api: api, name: name, network: network, addr: addr}
	return t.ServeHTTP
}

func (t *sessionTunnel) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := t.api.log.With(zap.String("upstream", t.name))

	id := r.URL.Query().Get("session")
	if id == "" {
		http.Error(w, "session query parameter is required", http.StatusBadRequest)
		return
	}
	if _, err := t.api.hub.Session(id); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, util.ErrNotFound) {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	log = log.With(zap.String("session_id", id))

	peer, err := net.Dial(t.network, t.addr)
	if err != nil {
		log.Error("dial upstream error", zap.Error(err))
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	if err := r.Write(peer); err != nil {
		log.Error("write request to upstream error", zap.Error(err))
		peer.Close()
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	hj, ok := w.(http.Hijacker)
	if !ok {
		peer.Close()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	conn, _, err := hj.Hijack()
	if err != nil {
		peer.Close()
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	log.Debug("session tunnel opened")

	var once sync.Once
	closeBoth := func() {
		once.Do(func() {
			peer.Close()
			conn.Close()
			log.Debug("session tunnel closed")
		})
	}
	go func() {
		defer closeBoth()
		io.Copy(peer, conn)
	}()
	go func() {
		defer closeBoth()
		io.Copy(conn, peer)
	}()
}
