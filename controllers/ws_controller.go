package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"chat-app/config"
	"chat-app/models"
	"chat-app/services"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const maxMessageSize = 8192

// WS serves the websocket endpoint and routes client events into the
// presence registry, the message pipeline and the hub.
type WS struct {
	Presence *services.Presence
	Hub      *services.Hub
}

// inbound is a raw client frame; Data is decoded per event.
type inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinLeaveInput struct {
	ConversationID uint `json:"conversation_id"`
}

type sendMessageInput struct {
	ConversationID uint   `json:"conversation_id"`
	Content        string `json:"content"`
}

// Handle authenticates the connection, registers it with the presence
// registry, auto-joins the user's personal room and then pumps events
// until the socket closes. Browsers cannot set an Authorization header
// on a websocket, so the token travels as a query parameter.
func (h *WS) Handle(c *gin.Context) {
	userID, err := services.ParseToken(c.Query("token"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	var user models.User
	if err := config.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the error response.
		return
	}

	connID := uuid.NewString()
	client := services.NewClient(connID, user.ID, conn)

	h.Hub.Attach(client)
	h.Presence.Register(connID, user.ID)
	h.Presence.JoinRoom(connID, services.PersonalRoom(user.ID))
	log.Printf("client connected: %s (%s)", user.Username, connID)

	go client.WritePump()
	h.readLoop(client, &user)
}

// readLoop processes inbound frames until the connection drops, then
// tears the connection out of the registry so later broadcasts never
// touch a dead socket.
func (h *WS) readLoop(client *services.Client, user *models.User) {
	defer func() {
		h.Presence.Unregister(client.ConnID)
		h.Hub.Detach(client.ConnID)
		log.Printf("client disconnected: %s (%s)", user.Username, client.ConnID)
	}()

	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(services.PongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(services.PongWait))
	})

	for {
		_, raw, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("read error on %s: %v", client.ConnID, err)
			}
			return
		}

		var frame inbound
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.sendError(client, "invalid event frame")
			continue
		}
		h.dispatch(client, user, frame)
	}
}

func (h *WS) dispatch(client *services.Client, user *models.User, frame inbound) {
	switch frame.Event {
	case "join_chat":
		h.handleJoinChat(client, user, frame.Data)
	case "leave_chat":
		h.handleLeaveChat(client, user, frame.Data)
	case "send_message":
		h.handleSendMessage(client, user, frame.Data)
	default:
		h.sendError(client, fmt.Sprintf("unknown event %q", frame.Event))
	}
}

func (h *WS) handleJoinChat(client *services.Client, user *models.User, data json.RawMessage) {
	var input joinLeaveInput
	if err := json.Unmarshal(data, &input); err != nil || input.ConversationID == 0 {
		h.sendError(client, "conversation_id is required")
		return
	}

	var conv models.Conversation
	if err := config.DB.First(&conv, input.ConversationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.sendError(client, "conversation not found")
			return
		}
		h.sendError(client, "internal server error")
		return
	}

	if !services.IsParticipant(user.ID, input.ConversationID) {
		h.sendError(client, services.ErrNotAuthorized.Error())
		return
	}

	room := services.ConversationRoom(input.ConversationID)
	h.Presence.JoinRoom(client.ConnID, room)
	h.Hub.Publish(room, services.Event{
		Event: "status",
		Data: gin.H{
			"message": fmt.Sprintf("User %s joined conversation %d.", user.Username, input.ConversationID),
		},
	})
}

func (h *WS) handleLeaveChat(client *services.Client, user *models.User, data json.RawMessage) {
	var input joinLeaveInput
	if err := json.Unmarshal(data, &input); err != nil || input.ConversationID == 0 {
		h.sendError(client, "conversation_id is required")
		return
	}

	room := services.ConversationRoom(input.ConversationID)
	h.Presence.LeaveRoom(client.ConnID, room)
	h.Hub.Publish(room, services.Event{
		Event: "status",
		Data: gin.H{
			"message": fmt.Sprintf("User %s left conversation %d.", user.Username, input.ConversationID),
		},
	})
}

func (h *WS) handleSendMessage(client *services.Client, user *models.User, data json.RawMessage) {
	var input sendMessageInput
	if err := json.Unmarshal(data, &input); err != nil {
		h.sendError(client, "conversation_id and content are required")
		return
	}

	if _, err := services.SendMessage(h.Hub, user, input.ConversationID, input.Content); err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidInput),
			errors.Is(err, services.ErrNotFound),
			errors.Is(err, services.ErrNotAuthorized),
			errors.Is(err, services.ErrUnauthenticated):
			h.sendError(client, err.Error())
		default:
			log.Printf("send_message by user %d failed: %v", user.ID, err)
			h.sendError(client, "failed to deliver message")
		}
	}
}

// sendError reports a rejection to the originating connection only.
func (h *WS) sendError(client *services.Client, message string) {
	client.Enqueue(services.Event{Event: "error", Data: gin.H{"message": message}})
}
