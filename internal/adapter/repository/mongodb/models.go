package mongodb

import (
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/chat"
	listingdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	reportdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/report/domain"
	userdomain "github.com/Abdurahmanit/GroupProject/marketplace-service/internal/user/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type userDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Name         string             `bson:"name"`
	Role         string             `bson:"role"`
	PasswordHash string             `bson:"password_hash"`
	CreatedAt    primitive.DateTime `bson:"created_at"`
}

type listingDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	SellerID    string             `bson:"seller_id"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Price       float64            `bson:"price"`
	Category    string             `bson:"category"`
	Location    string             `bson:"location,omitempty"`
	PhotoURL    string             `bson:"photo_url,omitempty"`
	Status      string             `bson:"status"`
	IsSold      bool               `bson:"is_sold"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

type roomDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	BuyerID     string             `bson:"buyer_id"`
	SellerID    string             `bson:"seller_id"`
	ListingID   string             `bson:"listing_id"`
	LastMessage string             `bson:"last_message"`
	CreatedAt   primitive.DateTime `bson:"created_at"`
	UpdatedAt   primitive.DateTime `bson:"updated_at"`
}

type messageDocument struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	RoomID   string             `bson:"room_id"`
	SenderID string             `bson:"sender_id"`
	Content  string             `bson:"content"`
	SentAt   primitive.DateTime `bson:"sent_at"`
}

type reportDocument struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	ListingID  string             `bson:"listing_id"`
	ReporterID string             `bson:"reporter_id"`
	Reason     string             `bson:"reason"`
	Resolved   bool               `bson:"resolved"`
	CreatedAt  primitive.DateTime `bson:"created_at"`
}

func objectID(hex string) (primitive.ObjectID, error) {
	if hex == "" {
		return primitive.NilObjectID, nil
	}
	id, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id format %q: %w", hex, err)
	}
	return id, nil
}

func toUserDocument(u *userdomain.User) (*userDocument, error) {
	id, err := objectID(u.ID)
	if err != nil {
		return nil, err
	}
	return &userDocument{
		ID:           id,
		Email:        u.Email,
		Name:         u.Name,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		CreatedAt:    primitive.NewDateTimeFromTime(u.CreatedAt),
	}, nil
}

func toUserEntity(doc *userDocument) *userdomain.User {
	return &userdomain.User{
		ID:           doc.ID.Hex(),
		Email:        doc.Email,
		Name:         doc.Name,
		Role:         userdomain.Role(doc.Role),
		PasswordHash: doc.PasswordHash,
		CreatedAt:    doc.CreatedAt.Time().UTC(),
	}
}

func toListingDocument(l *listingdomain.Listing) (*listingDocument, error) {
	id, err := objectID(l.ID)
	if err != nil {
		return nil, err
	}
	return &listingDocument{
		ID:          id,
		SellerID:    l.SellerID,
		Title:       l.Title,
		Description: l.Description,
		Price:       l.Price,
		Category:    l.Category,
		Location:    l.Location,
		PhotoURL:    l.PhotoURL,
		Status:      string(l.Status),
		IsSold:      l.IsSold,
		CreatedAt:   primitive.NewDateTimeFromTime(l.CreatedAt),
		UpdatedAt:   primitive.NewDateTimeFromTime(l.UpdatedAt),
	}, nil
}

func toListingEntity(doc *listingDocument) *listingdomain.Listing {
	return &listingdomain.Listing{
		ID:          doc.ID.Hex(),
		SellerID:    doc.SellerID,
		Title:       doc.Title,
		Description: doc.Description,
		Price:       doc.Price,
		Category:    doc.Category,
		Location:    doc.Location,
		PhotoURL:    doc.PhotoURL,
		Status:      listingdomain.ListingStatus(doc.Status),
		IsSold:      doc.IsSold,
		CreatedAt:   doc.CreatedAt.Time().UTC(),
		UpdatedAt:   doc.UpdatedAt.Time().UTC(),
	}
}

func toRoomDocument(r *chat.ChatRoom) (*roomDocument, error) {
	id, err := objectID(r.ID)
	if err != nil {
		return nil, err
	}
	return &roomDocument{
		ID:          id,
		BuyerID:     r.BuyerID,
		SellerID:    r.SellerID,
		ListingID:   r.ListingID,
		LastMessage: r.LastMessage,
		CreatedAt:   primitive.NewDateTimeFromTime(r.CreatedAt),
		UpdatedAt:   primitive.NewDateTimeFromTime(r.UpdatedAt),
	}, nil
}

func toRoomEntity(doc *roomDocument) *chat.ChatRoom {
	return &chat.ChatRoom{
		ID:          doc.ID.Hex(),
		BuyerID:     doc.BuyerID,
		SellerID:    doc.SellerID,
		ListingID:   doc.ListingID,
		LastMessage: doc.LastMessage,
		CreatedAt:   doc.CreatedAt.Time().UTC(),
		UpdatedAt:   doc.UpdatedAt.Time().UTC(),
	}
}

func toMessageEntity(doc *messageDocument) *chat.Message {
	return &chat.Message{
		ID:       doc.ID.Hex(),
		RoomID:   doc.RoomID,
		SenderID: doc.SenderID,
		Content:  doc.Content,
		SentAt:   doc.SentAt.Time().UTC(),
	}
}

func toReportEntity(doc *reportDocument) *reportdomain.Report {
	return &reportdomain.Report{
		ID:         doc.ID.Hex(),
		ListingID:  doc.ListingID,
		ReporterID: doc.ReporterID,
		Reason:     doc.Reason,
		Resolved:   doc.Resolved,
		CreatedAt:  doc.CreatedAt.Time().UTC(),
	}
}
