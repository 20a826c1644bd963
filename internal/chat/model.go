// Package chat implements per-room real-time messaging between buyers and sellers.
package chat

import (
	"context"
	"errors"
	"time"
)

var (
	ErrRoomNotFound    = errors.New("chat room not found")
	ErrRoomExists      = errors.New("chat room already exists")
	ErrNotParticipant  = errors.New("user is not a participant of this room")
	ErrSelfChat        = errors.New("cannot open a chat on your own listing")
	ErrEmptyMessage    = errors.New("message content is empty")
	ErrMessageTooLong  = errors.New("message content is too long")
	ErrListingNotFound = errors.New("listing for chat room not found")
)

const MaxMessageLength = 2000

// ChatRoom is a conversation between a buyer and the seller of one listing.
type ChatRoom struct {
	ID          string    `json:"id"`
	BuyerID     string    `json:"buyerId"`
	SellerID    string    `json:"sellerId"`
	ListingID   string    `json:"listingId"`
	LastMessage string    `json:"lastMessage"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (r *ChatRoom) HasParticipant(userID string) bool {
	return userID != "" && (r.BuyerID == userID || r.SellerID == userID)
}

type Message struct {
	ID       string    `json:"id"`
	RoomID   string    `json:"roomId"`
	SenderID string    `json:"senderId"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}

// InboundMessage is the frame a client sends over the socket.
type InboundMessage struct {
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

// OutboundMessage is the frame delivered to every connection in a room.
type OutboundMessage struct {
	RoomID   string `json:"roomId"`
	SenderID string `json:"senderId"`
	Content  string `json:"content"`
}

// Subscriber is one live connection in a room. Implementations must be
// comparable so the registry can find them again on disconnect.
type Subscriber interface {
	Send(ctx context.Context, msg OutboundMessage) error
}

type MessageStore interface {
	Create(ctx context.Context, msg *Message) error
	// ListByRoom returns messages in the order they were sent.
	ListByRoom(ctx context.Context, roomID string) ([]*Message, error)
}

type RoomStore interface {
	// Create returns ErrRoomExists when the participants already share a room for the listing.
	Create(ctx context.Context, room *ChatRoom) error
	FindByID(ctx context.Context, id string) (*ChatRoom, error)
	FindByParticipants(ctx context.Context, buyerID, sellerID, listingID string) (*ChatRoom, error)
	ListByUser(ctx context.Context, userID string) ([]*ChatRoom, error)
	TouchLastMessage(ctx context.Context, roomID, content string, at time.Time) error
}

type EventPublisher interface {
	PublishMessageSent(ctx context.Context, msg *Message) error
}
