package mongodb

import (
	"context"
	"fmt"

	"github.com/Abdurahmanit/GroupProject/marketplace-service/internal/report/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ReportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(db *mongo.Database) *ReportRepository {
	return &ReportRepository{collection: db.Collection(reportsCollection)}
}

func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	doc := &reportDocument{
		ID:         primitive.NewObjectID(),
		ListingID:  report.ListingID,
		ReporterID: report.ReporterID,
		Reason:     report.Reason,
		Resolved:   report.Resolved,
		CreatedAt:  primitive.NewDateTimeFromTime(report.CreatedAt),
	}
	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	report.ID = doc.ID.Hex()
	return nil
}

func (r *ReportRepository) List(ctx context.Context, unresolvedOnly bool) ([]*domain.Report, error) {
	filter := bson.M{}
	if unresolvedOnly {
		filter["resolved"] = false
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []reportDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode reports: %w", err)
	}
	reports := make([]*domain.Report, 0, len(docs))
	for i := range docs {
		reports = append(reports, toReportEntity(&docs[i]))
	}
	return reports, nil
}

func (r *ReportRepository) Resolve(ctx context.Context, id string) error {
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return domain.ErrReportNotFound
	}
	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": objID}, bson.M{"$set": bson.M{"resolved": true}})
	if err != nil {
		return fmt.Errorf("failed to resolve report: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrReportNotFound
	}
	return nil
}

func (r *ReportRepository) CountOpen(ctx context.Context) (int64, error) {
	n, err := r.collection.CountDocuments(ctx, bson.M{"resolved": false})
	if err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return n, nil
}
