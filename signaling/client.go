package signaling

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/Dosada05/esports-arena/models"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
	persistTimeout = 5 * time.Second
)

// Identity: данные пользователя из проверенного JWT.
type Identity struct {
	UserID int
	Name   string
	Role   string
}

// Client обслуживает одно WebSocket-соединение.
// Поле rooms принадлежит горутине хаба и вне её не читается.
type Client struct {
	ID       string
	Identity Identity

	hub   *Hub
	conn  *websocket.Conn
	send  chan []byte
	rooms map[string]struct{}
}

func NewClient(hub *Hub, conn *websocket.Conn, identity Identity, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Client{
		ID:       uuid.NewString(),
		Identity: identity,
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBuffer),
		rooms:    make(map[string]struct{}),
	}
}

func (c *Client) peer() Peer {
	return Peer{SocketID: c.ID, UserID: c.Identity.UserID, Name: c.Identity.Name}
}

func (c *Client) logger() *slog.Logger {
	return c.hub.logger.With("socket_id", c.ID, "user_id", c.Identity.UserID)
}

// ReadPump читает кадры из сокета и передаёт их хабу. Завершается при ошибке чтения.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error { c.conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger().Warn("websocket read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			c.hub.reject(c, "", CodeInvalidRequest, "only text frames are accepted")
			continue
		}
		c.handleFrame(data)
	}
}

// WritePump отправляет исходящую очередь в сокет и держит keepalive.
// Закрытие send хабом означает отключение клиента.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger().Debug("websocket write failed", "error", err)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger().Debug("websocket ping failed", "error", err)
				return
			}
		}
	}
}

// handleFrame разбирает один входящий кадр. Чат сохраняется здесь, в горутине
// чтения отправителя, чтобы запись в БД не блокировала хаб; порядок кадров
// одного отправителя при этом сохраняется.
func (c *Client) handleFrame(data []byte) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		c.hub.reject(c, "", CodeInvalidRequest, "malformed frame")
		return
	}
	env.From = c.ID

	if env.Type == TypeChat {
		c.handleChat(env)
		return
	}
	c.hub.submit(inbound{client: c, env: env})
}

func (c *Client) handleChat(env Envelope) {
	if !ValidRoomName(env.Room) {
		c.hub.reject(c, env.Type, CodeInvalidRequest, "invalid room name")
		return
	}
	member, err := c.hub.isMember(c, env.Room)
	if err != nil {
		return
	}
	if !member {
		c.hub.reject(c, env.Type, CodeNotMember, "join the room first")
		return
	}

	var body chatPayload
	if err := json.Unmarshal(env.Payload, &body); err != nil {
		c.hub.reject(c, env.Type, CodeInvalidRequest, "chat payload must be {\"text\": string}")
		return
	}

	// Без sink сообщение не сохраняется (ID == 0), но форма payload та же.
	var msg *models.ChatMessage
	if c.hub.sink == nil {
		text := strings.TrimSpace(body.Text)
		if text == "" {
			c.hub.reject(c, env.Type, CodeInvalidRequest, "message is empty")
			return
		}
		msg = &models.ChatMessage{
			Room:      env.Room,
			UserID:    c.Identity.UserID,
			Nickname:  c.Identity.Name,
			Text:      text,
			CreatedAt: c.hub.now().UTC(),
		}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		saved, err := c.hub.sink.SaveChat(ctx, env.Room, c.Identity, body.Text)
		if err != nil {
			if errors.Is(err, ErrInvalidPayload) {
				c.hub.reject(c, env.Type, CodeInvalidRequest, err.Error())
				return
			}
			c.logger().Error("failed to persist chat message", "room", env.Room, "error", err)
			c.hub.reject(c, env.Type, CodeInternal, "message could not be stored")
			return
		}
		msg = saved
	}

	stored, err := newEnvelope(TypeChat, env.Room, c.ID, msg)
	if err != nil {
		c.logger().Error("failed to encode chat message", "error", err)
		return
	}
	c.hub.submit(inbound{client: c, env: stored})
}
