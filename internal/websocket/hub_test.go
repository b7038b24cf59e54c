package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

type stubChatBackend struct {
	conversation *models.Conversation
	convErr      error
	delivery     *services.ChatDelivery
	sendErr      error
	receipt      *services.ChatReadReceipt
	readErr      error
}

func (s *stubChatBackend) GetConversationForParticipant(_ context.Context, _ int64, _ int64) (*models.Conversation, error) {
	return s.conversation, s.convErr
}

func (s *stubChatBackend) SendMessage(_ context.Context, _ int64, _ string, _ int64, _ string, _ string) (*services.ChatDelivery, error) {
	return s.delivery, s.sendErr
}

func (s *stubChatBackend) MarkMessagesRead(_ context.Context, _ int64, _ string, _ int64, _ []int64) (*services.ChatReadReceipt, error) {
	return s.receipt, s.readErr
}

type receivedEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func nextEvent(t *testing.T, client *Client) receivedEvent {
	t.Helper()
	select {
	case payload := <-client.send:
		var event receivedEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		return event
	case <-time.After(time.Second):
		t.Fatal("no event delivered within 1s")
		return receivedEvent{}
	}
}

func assertNoEvent(t *testing.T, client *Client) {
	t.Helper()
	select {
	case payload := <-client.send:
		t.Fatalf("unexpected delivery: %s", payload)
	default:
	}
}

func TestSendMessageReachesBothConversationMembersOnce(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	sender := NewClient(hub, nil, 1, "customer")
	recipient := NewClient(hub, nil, 2, "provider")
	hub.Register(sender)
	hub.Register(recipient)
	hub.JoinRoom(sender, ConversationRoom(42))
	hub.JoinRoom(recipient, ConversationRoom(42))

	service := &stubChatBackend{
		delivery: &services.ChatDelivery{
			Message: &models.ChatMessage{
				ID:             9,
				ConversationID: 42,
				SenderID:       1,
				Content:        "Hola",
			},
			RecipientID: 2,
		},
	}

	sender.handleSend(service, json.RawMessage(`{"conversation_id":42,"content":"Hola"}`))

	event := nextEvent(t, recipient)
	if event.Event != "new_message" {
		t.Fatalf("expected new_message, got %q", event.Event)
	}
	var message models.ChatMessage
	if err := json.Unmarshal(event.Data, &message); err != nil {
		t.Fatalf("Unmarshal message: %v", err)
	}
	if message.Content != "Hola" || message.ConversationID != 42 {
		t.Fatalf("unexpected message: %+v", message)
	}

	// Recipient is in the conversation room and the personal room; one copy.
	assertNoEvent(t, recipient)

	if event := nextEvent(t, sender); event.Event != "new_message" {
		t.Fatalf("sender should see the room broadcast, got %q", event.Event)
	}
}

func TestMarkAsReadExcludesTheReader(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	reader := NewClient(hub, nil, 2, "provider")
	other := NewClient(hub, nil, 1, "customer")
	hub.Register(reader)
	hub.Register(other)
	hub.JoinRoom(reader, ConversationRoom(42))
	hub.JoinRoom(other, ConversationRoom(42))

	service := &stubChatBackend{
		receipt: &services.ChatReadReceipt{
			ConversationID: 42,
			MessageIDs:     []int64{9},
			ReaderID:       2,
			OtherPartyID:   1,
		},
	}

	reader.handleMarkRead(service, json.RawMessage(`{"conversation_id":42,"message_ids":[9]}`))

	event := nextEvent(t, other)
	if event.Event != "messages_read" {
		t.Fatalf("expected messages_read, got %q", event.Event)
	}
	assertNoEvent(t, reader)
}

func TestTypingExcludesTheSender(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	typist := NewClient(hub, nil, 1, "customer")
	other := NewClient(hub, nil, 2, "provider")
	hub.Register(typist)
	hub.Register(other)
	hub.JoinRoom(typist, ConversationRoom(42))
	hub.JoinRoom(other, ConversationRoom(42))

	service := &stubChatBackend{
		conversation: &models.Conversation{ID: 42, CustomerID: 1, ProviderID: 2},
	}

	typist.handleTyping(service, json.RawMessage(`{"conversation_id":42}`), true)

	event := nextEvent(t, other)
	if event.Event != "user_typing" {
		t.Fatalf("expected user_typing, got %q", event.Event)
	}
	var data struct {
		UserID int64 `json:"user_id"`
		Typing bool  `json:"typing"`
	}
	if err := json.Unmarshal(event.Data, &data); err != nil {
		t.Fatalf("Unmarshal typing data: %v", err)
	}
	if data.UserID != 1 || !data.Typing {
		t.Fatalf("unexpected typing data: %+v", data)
	}
	assertNoEvent(t, typist)
}

func TestJoinConversationRejectsNonParticipant(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	client := NewClient(hub, nil, 3, "customer")
	hub.Register(client)

	service := &stubChatBackend{convErr: errors.New("not a participant")}

	client.handleJoin(service, json.RawMessage(`{"conversation_id":42}`))

	event := nextEvent(t, client)
	if event.Event != "error" {
		t.Fatalf("expected error event, got %q", event.Event)
	}
	var reason string
	if err := json.Unmarshal(event.Data, &reason); err != nil {
		t.Fatalf("Unmarshal reason: %v", err)
	}
	if reason != "forbidden" {
		t.Fatalf("expected forbidden, got %q", reason)
	}
}

func TestSlowConsumerDropDoesNotPanicLaterWrites(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	// No WritePump draining the buffer, so the hub drops this client once
	// its send buffer overflows.
	client := NewClient(hub, nil, 7, "provider")
	hub.Register(client)

	for i := 0; i < 40; i++ {
		hub.Broadcast(Event{Event: "new_message", Data: i}, UserRoom(7))
	}

	deadline := time.Now().Add(2 * time.Second)
	for !client.dropped() {
		if time.Now().After(deadline) {
			t.Fatal("hub never dropped the stalled client")
		}
		time.Sleep(5 * time.Millisecond)
	}

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("writeError after drop panicked: %v", r)
		}
	}()
	client.writeError("backpressure")

	if client.trySend([]byte("late")) {
		t.Fatal("trySend must refuse a dropped client")
	}

	// A later broadcast to the same room must not panic either.
	hub.Broadcast(Event{Event: "new_message", Data: "late"}, UserRoom(7))
}
