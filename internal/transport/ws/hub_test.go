package ws

import (
	"encoding/json"
	"testing"
	"time"

	"growwise/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch chan []byte) []byte {
	t.Helper()
	select {
	case data := <-ch:
		return data
	case <-time.After(time.Second):
		t.Fatal("no message delivered")
		return nil
	}
}

func TestHub_SendToChatDeliversToSessionConnections(t *testing.T) {
	hub := NewHub()

	conn := &Connection{SessionID: "chat-1", UserID: "u1", Send: make(chan []byte, 4), Hub: hub}
	sibling := &Connection{SessionID: "chat-1", UserID: "u1", Send: make(chan []byte, 4), Hub: hub}
	outsider := &Connection{SessionID: "chat-2", UserID: "u2", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(conn)
	hub.Register(sibling)
	hub.Register(outsider)

	reply := &model.ChatMessage{SessionID: "chat-1", Sender: model.SenderMentor, Text: "a JOIN combines rows"}
	hub.SendToChat("chat-1", string(MsgMentorMessage), reply)

	// Both connections on the session get the envelope, the outsider does not
	for _, c := range []*Connection{conn, sibling} {
		var msg Message
		require.NoError(t, json.Unmarshal(receive(t, c.Send), &msg))
		assert.Equal(t, MsgMentorMessage, msg.Type)

		var payload model.ChatMessage
		require.NoError(t, json.Unmarshal(msg.Payload, &payload))
		assert.Equal(t, "a JOIN combines rows", payload.Text)
	}

	select {
	case data := <-outsider.Send:
		t.Fatalf("outsider received %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_UnregisterClosesSend(t *testing.T) {
	hub := NewHub()

	conn := &Connection{SessionID: "chat-1", UserID: "u1", Send: make(chan []byte, 4), Hub: hub}
	hub.Register(conn)
	hub.Unregister(conn)

	select {
	case _, ok := <-conn.Send:
		assert.False(t, ok, "send channel should be closed")
	case <-time.After(time.Second):
		t.Fatal("send channel was not closed")
	}

	// Broadcasting to the emptied session is a no-op, not a panic
	hub.SendToChat("chat-1", string(MsgMentorMessage), map[string]string{"text": "hi"})
}
