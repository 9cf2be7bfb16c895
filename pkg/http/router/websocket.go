package router

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gobwas/ws"
	"github.com/lintang-b-s/Navisafe/pkg/concurrent"
	http_server "github.com/lintang-b-s/Navisafe/pkg/http/server"
	"github.com/lintang-b-s/Navisafe/pkg/navigation"
	"github.com/mailru/easygo/netpoll"
	"go.uber.org/zap"
)

// handleWebsocket accepts session event streams on config.WebsocketPort until ctx ends.
// clients connect with /ws?session=<id>.
func (api *API) handleWebsocket(ctx context.Context, config http_server.Config, errChan chan error) {
	var err error

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", config.WebsocketPort))
	if err != nil {
		errChan <- err
		return
	}
	api.log.Info(fmt.Sprintf("session events websocket API run on port %d", config.WebsocketPort))

	acceptDesc := netpoll.Must(netpoll.HandleListener(
		ln, netpoll.EventRead|netpoll.EventOneShot,
	))

	api.poller, err = netpoll.New(nil)
	if err != nil {
		errChan <- err
		return
	}

	// accept is a channel to signal about next incoming connection Accept()
	// results.
	accept := make(chan error, 1)

	api.poller.Start(acceptDesc, func(ev netpoll.Event) {
		defer api.poller.Resume(acceptDesc)
		err := api.pool.ScheduleTimeout(time.Second, func() {
			conn, err := ln.Accept()
			if err != nil {
				accept <- err
				return
			}

			accept <- nil
			api.handle(conn)
		})
		if err == nil {
			err = <-accept
		}
		if err != nil {
			/*
				if the goroutine pool stays full for the schedule timeout, or accept
				failed temporarily, cooldown the listener for 5 ms
			*/
			var ne net.Error
			if errors.Is(err, concurrent.ErrScheduleTimeout) || (errors.As(err, &ne) && ne.Timeout()) {
				delay := 5 * time.Millisecond
				api.log.Sugar().Infof("accept error: %v; retrying in %s", err, delay)
				time.Sleep(delay)
				return
			}
			api.log.Error("accept error", zap.Error(err))
		}
	})

	<-ctx.Done()

	api.poller.Stop(acceptDesc)
	ln.Close()

	api.hub.RemoveAllUser()

	api.log.Info("websocket server stopped")
}

/*
handle upgrades conn and binds it to the requested navigation session.
use epoll api to reduce memory stack, ref: https://sergey.kamardin.org/articles/million-websocket-and-go/
*/
func (api *API) handle(conn net.Conn) {
	br := bufio.NewReader(conn)

	rw := struct {
		io.Reader
		io.Writer
	}{br, conn}

	var session *navigation.Session
	u := ws.Upgrader{
		OnRequest: func(uri []byte) error {
			reqURL, err := url.ParseRequestURI(string(uri))
			if err != nil {
				return ws.RejectConnectionError(ws.RejectionStatus(http.StatusBadRequest),
					ws.RejectionReason("malformed request uri"))
			}
			session, err = api.hub.Session(reqURL.Query().Get("session"))
			if err != nil {
				return ws.RejectConnectionError(ws.RejectionStatus(http.StatusNotFound),
					ws.RejectionReason(err.Error()))
			}
			return nil
		},
	}

	hs, err := u.Upgrade(rw)
	if err != nil {
		api.log.Info("upgrade error", zap.Error(err), zap.String("connection name", nameConn(conn)))
		conn.Close()
		return
	}

	api.log.Info("established websocket connection", zap.String("connection name", nameConn(conn)),
		zap.String("protocol", hs.Protocol), zap.String("session_id", session.ID()))

	user := api.hub.Register(conn, session)

	desc := netpoll.Must(netpoll.HandleRead(conn))

	api.poller.Start(desc, func(ev netpoll.Event) {
		if ev&(netpoll.EventReadHup|netpoll.EventHup) != 0 {
			// peer closed its end
			api.log.Info("user disconnected from websocket server", zap.String("session_id", session.ID()))

			api.poller.Stop(desc)
			api.hub.Remove(user)
			return
		}

		err := api.pool.Schedule(func() {
			if err := user.HandleCommand(); err != nil {
				api.log.Debug("websocket command failed", zap.Error(err))
				api.poller.Stop(desc)
				api.hub.Remove(user)
			}
		})
		if err != nil {
			api.log.Warn("schedule websocket command", zap.Error(err))
		}
	})
}

func nameConn(conn net.Conn) string {
	return conn.LocalAddr().String() + " > " + conn.RemoteAddr().String()
}
