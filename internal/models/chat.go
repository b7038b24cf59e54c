package models

import "time"

type Conversation struct {
	ID                  int64      `json:"id"`
	CustomerID          int64      `json:"customer_id"`
	ProviderID          int64      `json:"provider_id"`
	ServiceRequestID    *int64     `json:"service_request_id"`
	LastMessageAt       *time.Time `json:"last_message_at"`
	CustomerUnreadCount int        `json:"customer_unread_count"`
	ProviderUnreadCount int        `json:"provider_unread_count"`
	CreatedAt           time.Time  `json:"created_at"`
}

type ChatMessage struct {
	ID             int64      `json:"id"`
	ConversationID int64      `json:"conversation_id"`
	SenderID       int64      `json:"sender_id"`
	Content        string     `json:"content"`
	MessageType    string     `json:"message_type"`
	IsRead         bool       `json:"is_read"`
	ReadAt         *time.Time `json:"read_at"`
	CreatedAt      time.Time  `json:"created_at"`
}

type ConversationSummary struct {
	Conversation
	LastMessage *ChatMessage `json:"last_message,omitempty"`
	UnreadCount int          `json:"unread_count"`
}
