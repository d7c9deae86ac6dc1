package live

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func receive(t *testing.T, client *Client) Message {
	t.Helper()
	select {
	case data := <-client.Send:
		var msg Message
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := runHub(t)
	client := NewClient(uuid.New())

	hub.Register(client)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 1, hub.ClientCount())

	hub.Unregister(client)
	time.Sleep(10 * time.Millisecond)
	assert.Equal(t, 0, hub.ClientCount())

	_, ok := <-client.Send
	assert.False(t, ok, "send channel should be closed")
}

func TestHub_SendToUsers(t *testing.T) {
	hub := runHub(t)
	annaId := uuid.New()
	boId := uuid.New()
	annaPhone := NewClient(annaId)
	annaLaptop := NewClient(annaId)
	bo := NewClient(boId)
	hub.Register(annaPhone)
	hub.Register(annaLaptop)
	hub.Register(bo)
	time.Sleep(10 * time.Millisecond)

	groupId := uuid.New()
	hub.SendToUsers([]uuid.UUID{annaId}, Message{Type: TypeInvalidate, QueryKeys: []string{"events", "todos"}, GroupID: &groupId})

	for _, c := range []*Client{annaPhone, annaLaptop} {
		msg := receive(t, c)
		assert.Equal(t, TypeInvalidate, msg.Type)
		assert.Equal(t, []string{"events", "todos"}, msg.QueryKeys)
		assert.Equal(t, groupId, *msg.GroupID)
	}

	time.Sleep(10 * time.Millisecond)
	assert.Empty(t, bo.Send)
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := runHub(t)
	userId := uuid.New()
	client := &Client{ID: "slow", UserID: userId, Send: make(chan []byte, 1)}
	hub.Register(client)
	time.Sleep(10 * time.Millisecond)

	hub.SendToUsers([]uuid.UUID{userId}, Message{Type: TypeInvalidate, QueryKeys: []string{"groups"}})
	hub.SendToUsers([]uuid.UUID{userId}, Message{Type: TypeInvalidate, QueryKeys: []string{"invitations"}})
	time.Sleep(10 * time.Millisecond)

	assert.Len(t, client.Send, 1)
	msg := receive(t, client)
	assert.Equal(t, []string{"groups"}, msg.QueryKeys)
}

func TestHub_RunStopsOnCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(done)
	}()
	client := NewClient(uuid.New())
	hub.Register(client)

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	_, ok := <-client.Send
	assert.False(t, ok)
}
