package controllers

import (
	"log"
	"net/http"

	"pehredar/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// local monitoring endpoint; all origins accepted
		return true
	},
}

// StreamController upgrades HTTP connections and attaches them to the hub
type StreamController struct {
	hub *services.StreamHub
}

// NewStreamController wires the controller to a stream hub
func NewStreamController(hub *services.StreamHub) *StreamController {
	return &StreamController{hub: hub}
}

// HandleStream handles an incoming websocket connection
func (sc *StreamController) HandleStream(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[ws] upgrade error: %v", err)
		return
	}

	client := &services.StreamClient{
		ID:   uuid.NewString(),
		Conn: ws,
		Send: make(chan services.StreamMessage, 256),
	}
	sc.hub.Register(client)

	go sc.readPump(client)
	go sc.writePump(client)
}

// readPump reads control messages from the client
func (sc *StreamController) readPump(client *services.StreamClient) {
	defer func() {
		sc.hub.Unregister(client.ID)
		client.Conn.Close()
	}()

	for {
		var msg services.StreamMessage
		if err := client.Conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] read error: %v", err)
			}
			return
		}

		switch msg.Type {
		case "ping":
			select {
			case client.Send <- services.StreamMessage{Type: "pong"}:
			default:
			}

		case "unsubscribe":
			return

		default:
			log.Printf("[ws] unknown message type: %s", msg.Type)
		}
	}
}

// writePump forwards hub messages to the client
func (sc *StreamController) writePump(client *services.StreamClient) {
	defer client.Conn.Close()

	for msg := range client.Send {
		if err := client.Conn.WriteJSON(msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[ws] write error: %v", err)
			}
			return
		}
	}
	// channel closed by the hub
	client.Conn.WriteMessage(websocket.CloseMessage, []byte{})
}
