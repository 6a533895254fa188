package ws

import (
	"context"
	"encoding/json"
	"time"

	"membership_webapp/internal/logger"

	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 30 * time.Second
	pingPeriod = 25 * time.Second

	sendBuffer = 64
)

type Client struct {
	UserID int64
	Conn   *websocket.Conn
	Send   chan []byte
	Hub    *Hub
}

func NewClient(userID int64, conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, sendBuffer),
		Hub:    hub,
	}
}

// Run serves the connection until the peer goes away or ctx ends.
func (c *Client) Run(ctx context.Context) {
	c.Hub.Register(c)
	go c.writePump()

	c.Send <- encode(Outbound{Type: MsgReady})

	c.readPump(ctx)
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.Hub.Unregister(c)
		_ = c.Conn.Close()
	}()

	c.Conn.SetReadLimit(4096)
	_ = c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		return c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug("feed read error", "user_id", c.UserID, "error", err)
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		c.handle(ctx, msg)
	}
}

func (c *Client) handle(ctx context.Context, raw []byte) {
	var in Inbound
	if err := json.Unmarshal(raw, &in); err != nil {
		c.reply(Outbound{Type: MsgError, Data: ErrorPayload{Message: "invalid message"}})
		return
	}

	switch in.Type {
	case MsgSubscribe:
		if !knownTopic(in.Topic) {
			c.reply(Outbound{Type: MsgError, Topic: in.Topic, Data: ErrorPayload{Message: "unknown topic"}})
			return
		}
		c.Hub.Subscribe(ctx, c, in.Topic)
	case MsgUnsubscribe:
		c.Hub.Unsubscribe(c, in.Topic)
	case MsgPing:
		c.reply(Outbound{Type: MsgPong})
	default:
		c.reply(Outbound{Type: MsgError, Data: ErrorPayload{Message: "unknown message type"}})
	}
}

func (c *Client) reply(o Outbound) {
	c.Hub.deliver(c, encode(o))
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.Conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				logger.Debug("feed write error", "user_id", c.UserID, "error", err)
				return
			}

		case <-ticker.C:
			_ = c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
