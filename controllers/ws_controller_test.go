package controllers_test

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chat-app/services"
)

type wsEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func dialWS(t *testing.T, srv *httptest.Server, token string) *websocket.Conn {
	t.Helper()

	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendEvent(t *testing.T, conn *websocket.Conn, event string, data any) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(gin.H{"event": event, "data": data}))
}

// readUntil skips unrelated frames (join/leave status chatter) until
// the wanted event arrives.
func readUntil(t *testing.T, conn *websocket.Conn, event string) wsEvent {
	t.Helper()

	deadline := time.Now().Add(3 * time.Second)
	require.NoError(t, conn.SetReadDeadline(deadline))
	for {
		var ev wsEvent
		require.NoError(t, conn.ReadJSON(&ev), "waiting for %q", event)
		if ev.Event == event {
			return ev
		}
	}
}

func TestWebSocketRejectsMissingToken(t *testing.T) {
	env := setupEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	url := strings.Replace(srv.URL, "http", "ws", 1) + "/ws"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestWebSocketMessageFlow(t *testing.T) {
	env := setupEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice, aliceToken := registerUser(t, "alice")
	bob, bobToken := registerUser(t, "bob")
	conv, _, err := services.GetOrCreateDirectConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	aliceConn := dialWS(t, srv, aliceToken)
	bobConn := dialWS(t, srv, bobToken)

	sendEvent(t, aliceConn, "join_chat", gin.H{"conversation_id": conv.ID})
	readUntil(t, aliceConn, "status")
	sendEvent(t, bobConn, "join_chat", gin.H{"conversation_id": conv.ID})
	readUntil(t, bobConn, "status")

	sendEvent(t, aliceConn, "send_message", gin.H{"conversation_id": conv.ID, "content": "hi bob"})

	for _, conn := range []*websocket.Conn{aliceConn, bobConn} {
		ev := readUntil(t, conn, "new_message")
		var payload services.MessagePayload
		require.NoError(t, json.Unmarshal(ev.Data, &payload))
		assert.Equal(t, "hi bob", payload.Content)
		assert.Equal(t, "alice", payload.SenderUsername)
		assert.Equal(t, conv.ID, payload.ConversationID)
		assert.Equal(t, "sent", payload.Status)
		assert.NotZero(t, payload.MessageID)
	}

	// The broadcast message is immediately visible in history.
	history, err := services.ListMessages(bob.ID, conv.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "hi bob", history[0].Content)
}

func TestWebSocketRejectsNonParticipant(t *testing.T) {
	env := setupEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice, _ := registerUser(t, "alice")
	bob, _ := registerUser(t, "bob")
	_, malloryToken := registerUser(t, "mallory")
	conv, _, err := services.GetOrCreateDirectConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	malloryConn := dialWS(t, srv, malloryToken)

	sendEvent(t, malloryConn, "join_chat", gin.H{"conversation_id": conv.ID})
	readUntil(t, malloryConn, "error")

	sendEvent(t, malloryConn, "send_message", gin.H{"conversation_id": conv.ID, "content": "sneaky"})
	readUntil(t, malloryConn, "error")

	// The rejected send persisted nothing.
	history, err := services.ListMessages(alice.ID, conv.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestWebSocketValidationErrors(t *testing.T) {
	env := setupEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	_, aliceToken := registerUser(t, "alice")
	conn := dialWS(t, srv, aliceToken)

	sendEvent(t, conn, "join_chat", gin.H{})
	readUntil(t, conn, "error")

	sendEvent(t, conn, "join_chat", gin.H{"conversation_id": 9999})
	readUntil(t, conn, "error")

	sendEvent(t, conn, "bogus_event", gin.H{})
	readUntil(t, conn, "error")
}

func TestWebSocketDisconnectCleansPresence(t *testing.T) {
	env := setupEnv(t)
	srv := httptest.NewServer(env.router)
	defer srv.Close()

	alice, aliceToken := registerUser(t, "alice")
	bob, bobToken := registerUser(t, "bob")
	conv, _, err := services.GetOrCreateDirectConversation(alice.ID, bob.ID)
	require.NoError(t, err)

	room := services.ConversationRoom(conv.ID)

	aliceConn := dialWS(t, srv, aliceToken)
	bobConn := dialWS(t, srv, bobToken)
	sendEvent(t, aliceConn, "join_chat", gin.H{"conversation_id": conv.ID})
	readUntil(t, aliceConn, "status")
	sendEvent(t, bobConn, "join_chat", gin.H{"conversation_id": conv.ID})
	readUntil(t, bobConn, "status")

	require.Len(t, env.presence.ConnectionsIn(room), 2)

	bobConn.Close()
	require.Eventually(t, func() bool {
		return len(env.presence.ConnectionsIn(room)) == 1
	}, 2*time.Second, 10*time.Millisecond)

	// Publishing to the room after the disconnect reaches only alice
	// and does not error against the dead connection.
	sendEvent(t, aliceConn, "send_message", gin.H{"conversation_id": conv.ID, "content": "still here?"})
	ev := readUntil(t, aliceConn, "new_message")
	var payload services.MessagePayload
	require.NoError(t, json.Unmarshal(ev.Data, &payload))
	assert.Equal(t, "still here?", payload.Content)
}
