package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ChatRoomRepository struct {
	collection *mongo.Collection
}

func NewChatRoomRepository(db *mongo.Database) *ChatRoomRepository {
	return &ChatRoomRepository{collection: db.Collection(roomsCollection)}
}

func (r *ChatRoomRepository) Create(ctx context.Context, room *chat.ChatRoom) error {
	doc, err := toRoomDocument(room)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return chat.ErrRoomExists
		}
		return fmt.Errorf("failed to insert chat room: %w", err)
	}
	room.ID = doc.ID.Hex()
	return nil
}

func (r *ChatRoomRepository) FindByID(ctx context.Context, id string) (*chat.ChatRoom, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, chat.ErrRoomNotFound
	}
	return r.findOne(ctx, bson.M{"_id": objID})
}

func (r *ChatRoomRepository) FindByParticipants(ctx context.Context, buyerID, sellerID, listingID string) (*chat.ChatRoom, error) {
	return r.findOne(ctx, bson.M{"buyer_id": buyerID, "seller_id": sellerID, "listing_id": listingID})
}

func (r *ChatRoomRepository) findOne(ctx context.Context, filter bson.M) (*chat.ChatRoom, error) {
	var doc roomDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, chat.ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to find chat room: %w", err)
	}
	return toRoomEntity(&doc), nil
}

func (r *ChatRoomRepository) ListByUser(ctx context.Context, userID string) ([]*chat.ChatRoom, error) {
	filter := bson.M{"$or": bson.A{bson.M{"buyer_id": userID}, bson.M{"seller_id": userID}}}
	opts := options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat rooms: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []roomDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode chat rooms: %w", err)
	}
	rooms := make([]*chat.ChatRoom, 0, len(docs))
	for i := range docs {
		rooms = append(rooms, toRoomEntity(&docs[i]))
	}
	return rooms, nil
}

func (r *ChatRoomRepository) TouchLastMessage(ctx context.Context, roomID, content string, at time.Time) error {
	objID, err := primitive.ObjectIDFromHex(roomID)
	if err != nil {
		return chat.ErrRoomNotFound
	}
	update := bson.M{"$set": bson.M{
		"last_message": content,
		"updated_at":   primitive.NewDateTimeFromTime(at),
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, update)
	if err != nil {
		return fmt.Errorf("failed to touch chat room: %w", err)
	}
	if res.MatchedCount == 0 {
		return chat.ErrRoomNotFound
	}
	return nil
}

type ChatMessageRepository struct {
	collection *mongo.Collection
}

func NewChatMessageRepository(db *mongo.Database) *ChatMessageRepository {
	return &ChatMessageRepository{collection: db.Collection(messagesCollection)}
}

func (r *ChatMessageRepository) Create(ctx context.Context, msg *chat.Message) error {
	doc := &messageDocument{
		ID:       primitive.NewObjectID(),
		RoomID:   msg.RoomID,
		SenderID: msg.SenderID,
		Content:  msg.Content,
		SentAt:   primitive.NewDateTimeFromTime(msg.SentAt),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert chat message: %w", err)
	}
	msg.ID = doc.ID.Hex()
	return nil
}

// ListByRoom orders by send time; the ObjectID breaks ties within one millisecond.
func (r *ChatMessageRepository) ListByRoom(ctx context.Context, roomID string) ([]*chat.Message, error) {
	opts := options.Find().SetSort(bson.D{{Key: "sent_at", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"room_id": roomID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []messageDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode chat messages: %w", err)
	}
	messages := make([]*chat.Message, 0, len(docs))
	for i := range docs {
		messages = append(messages, toMessageEntity(&docs[i]))
	}
	return messages, nil
}
