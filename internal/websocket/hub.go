package chatws

import (
	"context"
	"encoding/json"
	"log"
	"strconv"
	"sync"
	"time"

	websocket "github.com/gofiber/contrib/websocket"
	"github.com/servicioshogar/ServiciosHogarBack/internal/models"
	"github.com/servicioshogar/ServiciosHogarBack/internal/services"
)

// Room naming: every connection sits in its personal room user_<id>; joining
// a conversation adds the connection to conversation_<id> as well.
func UserRoom(userID int64) string {
	return "user_" + strconv.FormatInt(userID, 10)
}

func ConversationRoom(conversationID int64) string {
	return "conversation_" + strconv.FormatInt(conversationID, 10)
}

type Hub struct {
	rooms       map[string]map[*Client]struct{}
	clientRooms map[*Client]map[string]struct{}
	register    chan *Client
	unregister  chan *Client
	join        chan roomChange
	broadcast   chan *RoomMessage
}

type roomChange struct {
	client *Client
	room   string
}

type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID int64
	role   string

	mu     sync.Mutex
	closed bool
	send   chan []byte
}

type chatService interface {
	GetConversationForParticipant(ctx context.Context, actorID int64, conversationID int64) (*models.Conversation, error)
	SendMessage(ctx context.Context, actorID int64, role string, conversationID int64, content string, messageType string) (*services.ChatDelivery, error)
	MarkMessagesRead(ctx context.Context, actorID int64, role string, conversationID int64, messageIDs []int64) (*services.ChatReadReceipt, error)
}

// RoomMessage fans one payload out to every member of any listed room. A
// client in several of the rooms still receives the payload once. When
// ExcludeUserID is set, every connection of that user is skipped.
type RoomMessage struct {
	Rooms         []string
	Payload       []byte
	ExcludeUserID int64
}

type Event struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		rooms:       make(map[string]map[*Client]struct{}),
		clientRooms: make(map[*Client]map[string]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		join:        make(chan roomChange),
		broadcast:   make(chan *RoomMessage, 64),
	}
}

func NewClient(hub *Hub, conn *websocket.Conn, userID int64, role string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		userID: userID,
		role:   role,
		send:   make(chan []byte, 32),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addToRoom(client, UserRoom(client.userID))
		case client := <-h.unregister:
			h.drop(client)
		case change := <-h.join:
			h.addToRoom(change.client, change.room)
		case message := <-h.broadcast:
			h.deliver(message)
		}
	}
}

func (h *Hub) Register(client *Client) {
	h.register <- client
}

func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}

func (h *Hub) JoinRoom(client *Client, room string) {
	h.join <- roomChange{client: client, room: room}
}

// Broadcast queues an event for every connection in the given rooms.
func (h *Hub) Broadcast(event Event, rooms ...string) {
	h.BroadcastExcept(event, 0, rooms...)
}

// BroadcastExcept queues an event for the given rooms, skipping every
// connection that belongs to excludeUserID.
func (h *Hub) BroadcastExcept(event Event, excludeUserID int64, rooms ...string) {
	payload, err := json.Marshal(event)
	if err != nil {
		log.Printf("chat hub encode event: %v", err)
		return
	}
	h.broadcast <- &RoomMessage{Rooms: rooms, Payload: payload, ExcludeUserID: excludeUserID}
}

func (h *Hub) addToRoom(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[client] = struct{}{}

	joined, ok := h.clientRooms[client]
	if !ok {
		joined = make(map[string]struct{})
		h.clientRooms[client] = joined
	}
	joined[room] = struct{}{}
}

func (h *Hub) drop(client *Client) {
	joined, ok := h.clientRooms[client]
	if !ok {
		return
	}
	for room := range joined {
		h.removeFromRoom(client, room)
	}
	delete(h.clientRooms, client)
	client.closeSend()
}

func (h *Hub) removeFromRoom(client *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, client)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) deliver(message *RoomMessage) {
	delivered := make(map[*Client]struct{})
	for _, room := range message.Rooms {
		for client := range h.rooms[room] {
			if message.ExcludeUserID != 0 && client.userID == message.ExcludeUserID {
				continue
			}
			if _, done := delivered[client]; done {
				continue
			}
			delivered[client] = struct{}{}

			// Slow consumer: drop the connection rather than block the hub.
			if !client.trySend(message.Payload) {
				h.drop(client)
			}
		}
	}
}

// trySend queues a payload unless the client was already dropped or its
// buffer is full. The closed flag keeps ReadPump writers off the channel
// after the hub goroutine closes it.
func (c *Client) trySend(payload []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- payload:
		return true
	default:
		return false
	}
}

func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

func (c *Client) dropped() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

type incomingEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func (c *Client) ReadPump(service chatService) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var incoming incomingEvent
		if err := json.Unmarshal(payload, &incoming); err != nil {
			c.writeError("invalid event payload")
			continue
		}

		switch incoming.Event {
		case "join_conversation":
			c.handleJoin(service, incoming.Data)
		case "send_message":
			c.handleSend(service, incoming.Data)
		case "mark_as_read":
			c.handleMarkRead(service, incoming.Data)
		case "typing_start":
			c.handleTyping(service, incoming.Data, true)
		case "typing_stop":
			c.handleTyping(service, incoming.Data, false)
		default:
			c.writeError("unsupported event")
		}
	}
}

func (c *Client) handleJoin(service chatService, data json.RawMessage) {
	var req struct {
		ConversationID int64 `json:"conversation_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.ConversationID <= 0 {
		c.writeError("invalid conversation id")
		return
	}

	_, err := service.GetConversationForParticipant(context.Background(), c.userID, req.ConversationID)
	if err != nil {
		c.writeError("forbidden")
		return
	}

	c.hub.JoinRoom(c, ConversationRoom(req.ConversationID))
}

func (c *Client) handleSend(service chatService, data json.RawMessage) {
	var req struct {
		ConversationID int64  `json:"conversation_id"`
		Content        string `json:"content"`
		MessageType    string `json:"message_type"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		c.writeError("invalid message payload")
		return
	}

	delivery, err := service.SendMessage(
		context.Background(),
		c.userID,
		c.role,
		req.ConversationID,
		req.Content,
		req.MessageType,
	)
	if err != nil {
		c.writeError("failed to send message")
		return
	}

	c.hub.Broadcast(
		Event{Event: "new_message", Data: delivery.Message},
		ConversationRoom(delivery.Message.ConversationID),
		UserRoom(delivery.RecipientID),
	)
}

func (c *Client) handleMarkRead(service chatService, data json.RawMessage) {
	var req struct {
		ConversationID int64   `json:"conversation_id"`
		MessageIDs     []int64 `json:"message_ids"`
	}
	if err := json.Unmarshal(data, &req); err != nil {
		c.writeError("invalid read receipt payload")
		return
	}

	receipt, err := service.MarkMessagesRead(
		context.Background(),
		c.userID,
		c.role,
		req.ConversationID,
		req.MessageIDs,
	)
	if err != nil {
		c.writeError("failed to mark messages read")
		return
	}

	c.hub.BroadcastExcept(
		Event{Event: "messages_read", Data: map[string]any{
			"conversation_id": receipt.ConversationID,
			"message_ids":     receipt.MessageIDs,
			"reader_id":       receipt.ReaderID,
		}},
		receipt.ReaderID,
		ConversationRoom(receipt.ConversationID),
		UserRoom(receipt.OtherPartyID),
	)
}

func (c *Client) handleTyping(service chatService, data json.RawMessage, typing bool) {
	var req struct {
		ConversationID int64 `json:"conversation_id"`
	}
	if err := json.Unmarshal(data, &req); err != nil || req.ConversationID <= 0 {
		c.writeError("invalid conversation id")
		return
	}

	if _, err := service.GetConversationForParticipant(context.Background(), c.userID, req.ConversationID); err != nil {
		c.writeError("forbidden")
		return
	}

	c.hub.BroadcastExcept(
		Event{Event: "user_typing", Data: map[string]any{
			"conversation_id": req.ConversationID,
			"user_id":         c.userID,
			"typing":          typing,
			"timestamp":       services.FormatChatTimestamp(time.Now().UTC()),
		}},
		c.userID,
		ConversationRoom(req.ConversationID),
	)
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

func (c *Client) writeError(message string) {
	payload, err := json.Marshal(Event{Event: "error", Data: message})
	if err != nil {
		return
	}
	if !c.trySend(payload) {
		c.hub.Unregister(c)
	}
}
