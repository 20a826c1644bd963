package mongodb

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/listing/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ListingRepository struct {
	collection *mongo.Collection
}

func NewListingRepository(db *mongo.Database) *ListingRepository {
	return &ListingRepository{collection: db.Collection(listingsCollection)}
}

func (r *ListingRepository) Create(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert listing: %w", err)
	}
	listing.ID = doc.ID.Hex()
	return nil
}

func (r *ListingRepository) Update(ctx context.Context, listing *domain.Listing) error {
	doc, err := toListingDocument(listing)
	if err != nil || doc.ID.IsZero() {
		return domain.ErrListingNotFound
	}
	update := bson.M{"$set": bson.M{
		"title":       doc.Title,
		"description": doc.Description,
		"price":       doc.Price,
		"category":    doc.Category,
		"location":    doc.Location,
		"photo_url":   doc.PhotoURL,
		"status":      doc.Status,
		"is_sold":     doc.IsSold,
		"updated_at":  doc.UpdatedAt,
	}}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": doc.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update listing: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) Delete(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrListingNotFound
	}
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": objID})
	if err != nil {
		return fmt.Errorf("failed to delete listing: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrListingNotFound
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id string) (*domain.Listing, error) {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, domain.ErrListingNotFound
	}
	var doc listingDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": objID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrListingNotFound
		}
		return nil, fmt.Errorf("failed to find listing: %w", err)
	}
	return toListingEntity(&doc), nil
}

func (r *ListingRepository) FindByFilter(ctx context.Context, filter domain.Filter) ([]*domain.Listing, error) {
	order := 1
	if filter.NewestFirst {
		order = -1
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: order}, {Key: "_id", Value: order}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.collection.Find(ctx, listingQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []listingDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode listings: %w", err)
	}
	listings := make([]*domain.Listing, 0, len(docs))
	for i := range docs {
		listings = append(listings, toListingEntity(&docs[i]))
	}
	return listings, nil
}

func listingQuery(filter domain.Filter) bson.M {
	query := bson.M{}
	if filter.SellerID != "" {
		query["seller_id"] = filter.SellerID
	}
	if filter.Status != "" {
		query["status"] = string(filter.Status)
	}
	if filter.Category != "" {
		query["category"] = filter.Category
	}
	price := bson.M{}
	if filter.MinPrice != nil {
		price["$gte"] = *filter.MinPrice
	}
	if filter.MaxPrice != nil {
		price["$lte"] = *filter.MaxPrice
	}
	if len(price) > 0 {
		query["price"] = price
	}
	if filter.Query != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Query), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
		}
	}
	return query
}

func (r *ListingRepository) Count(ctx context.Context) (domain.Counts, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "total", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "sold", Value: bson.D{{Key: "$sum", Value: bson.D{
				{Key: "$cond", Value: bson.A{"$is_sold", 1, 0}},
			}}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.Counts{}, fmt.Errorf("failed to aggregate listing counts: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Total  int64  `bson:"total"`
		Sold   int64  `bson:"sold"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return domain.Counts{}, fmt.Errorf("failed to decode listing counts: %w", err)
	}

	var counts domain.Counts
	for _, row := range rows {
		counts.Total += row.Total
		counts.Sold += row.Sold
		switch domain.ListingStatus(row.Status) {
		case domain.StatusPending:
			counts.Pending = row.Total
		case domain.StatusApproved:
			counts.Approved = row.Total
		case domain.StatusRejected:
			counts.Rejected = row.Total
		}
	}
	return counts, nil
}
