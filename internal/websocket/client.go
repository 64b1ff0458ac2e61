package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quickchat/internal/config"
	"quickchat/internal/relay"
)

// Client is the middleman between a websocket connection and the relay hub.
// It implements relay.Session.
type Client struct {
	hub  *relay.Hub
	conn *websocket.Conn

	// Buffered channel of outbound frames.
	send chan []byte

	// Transport session id, assigned at upgrade. Distinct from any account id.
	id string
}

// ID returns the transport session id.
func (c *Client) ID() string { return c.id }

// Emit marshals an event envelope and queues it for delivery. If the send
// buffer is full the frame is dropped; live delivery is best effort.
func (c *Client) Emit(event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		log.Printf("websocket: marshal %s payload for session %s: %v", event, c.id, err)
		return
	}
	frame, err := json.Marshal(relay.Envelope{Event: event, Data: payload})
	if err != nil {
		log.Printf("websocket: marshal %s envelope for session %s: %v", event, c.id, err)
		return
	}
	select {
	case c.send <- frame:
	default:
		log.Printf("websocket: send buffer full for session %s, dropping %s", c.id, event)
	}
}

// readPump pumps frames from the websocket connection into the hub.
func (c *Client) readPump(wsCfg config.WebSocketConfig) {
	defer func() {
		c.hub.Disconnect(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(int64(wsCfg.MaxMessageSizeBytes))
	c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(time.Duration(wsCfg.PongWaitSeconds) * time.Second))
		return nil
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket: session %s read error: %v", c.id, err)
			}
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}
		c.dispatch(raw)
	}
}

// dispatch decodes one inbound envelope and routes it to the hub. Malformed
// frames are dropped; the relay channel is fire-and-forget in both
// directions.
func (c *Client) dispatch(raw []byte) {
	var env relay.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("websocket: session %s sent an undecodable frame: %v", c.id, err)
		return
	}

	ctx := context.Background()
	switch env.Event {
	case relay.EventJoin:
		var identity string
		if err := json.Unmarshal(env.Data, &identity); err != nil {
			log.Printf("websocket: session %s join payload: %v", c.id, err)
			return
		}
		c.hub.Join(ctx, c, identity)

	case relay.EventSendMessage:
		var p relay.SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			log.Printf("websocket: session %s send-message payload: %v", c.id, err)
			return
		}
		c.hub.Relay(ctx, p)

	case relay.EventTyping:
		var p relay.TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		c.hub.Typing(ctx, c, p.ReceiverID)

	case relay.EventStopTyping:
		var p relay.TypingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			return
		}
		c.hub.StopTyping(ctx, c, p.ReceiverID)

	default:
		log.Printf("websocket: session %s sent unknown event %q", c.id, env.Event)
	}
}

// writePump pumps frames from the send channel to the websocket connection.
func (c *Client) writePump(wsCfg config.WebSocketConfig) {
	ticker := time.NewTicker(time.Duration(wsCfg.PingPeriodSeconds) * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(time.Duration(wsCfg.WriteWaitSeconds) * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(time.Duration(wsCfg.WriteWaitSeconds) * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWsPerConnection upgrades an HTTP request to a websocket connection
// and attaches the resulting session to the hub.
func ServeWsPerConnection(hub *relay.Hub, w http.ResponseWriter, r *http.Request, wsCfg config.WebSocketConfig) {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("ServeWsPerConnection - upgrade failed:", err)
		return
	}
	client := &Client{
		hub:  hub,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.New().String(),
	}
	hub.Connect(client)

	go client.writePump(wsCfg)
	go client.readPump(wsCfg)

	log.Printf("websocket: session %s connected", client.id)
}
