package ws

import (
	"context"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"ride-dispatch/internal/dispatch-service/core/domain/dto"
	"ride-dispatch/internal/dispatch-service/core/ports"
	"ride-dispatch/internal/mylogger"
)

var websocketUpgrader = websocket.Upgrader{
	// TODO: add checkOrigin before exposing outside the gateway
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// ClientList is a map used to help manage a map of clients
type ClientList map[*Client]bool

// Dispatcher owns the live websocket connections and routes events to them
// by user id. One user may hold several connections at once.
type Dispatcher struct {
	clients ClientList
	sync.RWMutex
	log mylogger.Logger
}

func NewDispatcher(log mylogger.Logger) *Dispatcher {
	return &Dispatcher{
		clients: make(ClientList),
		log:     log,
	}
}

var _ ports.INotifyWebsocket = (*Dispatcher)(nil)

// WsHandler upgrades the request and registers the connection under the user
// id the auth middleware resolved.
func (d *Dispatcher) WsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := d.log.Action("WsHandler")

		userId := r.Header.Get("X-UserId")
		if userId == "" {
			w.WriteHeader(http.StatusUnauthorized)
			log.Warn("websocket upgrade without resolved user")
			return
		}

		conn, err := websocketUpgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Error("cannot upgrade", err)
			return
		}

		client := NewClient(context.Background(), conn, d, userId)
		d.AddClient(client)
		go client.ReadMessage()
		go client.WriteMessage()

		log.Debug("websocket connected", "user_id", userId)
	}
}

// WriteToUser pushes the event to every open connection of the user. A slow
// client is skipped rather than blocking the fan-out.
func (d *Dispatcher) WriteToUser(userID string, msg dto.Event) {
	d.RLock()
	defer d.RUnlock()

	for client := range d.clients {
		if client.userId != userID {
			continue
		}
		select {
		case client.egress <- msg:
		default:
			d.log.Action("WriteToUser").Warn("egress full, dropping event", "user_id", userID, "type", msg.Type)
		}
	}
}

func (d *Dispatcher) AddClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	d.clients[client] = true
}

func (d *Dispatcher) RemoveClient(client *Client) {
	d.Lock()
	defer d.Unlock()

	if _, ok := d.clients[client]; ok {
		client.conn.Close()
		close(client.egress)
		delete(d.clients, client)
	}
}
