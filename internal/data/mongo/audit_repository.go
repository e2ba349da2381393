package mongo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gym-coin-ledger/internal/domain/audit"
	"github.com/gym-coin-ledger/internal/domain/shared"
)

// DefaultAuditCollection is used when no collection name is configured
const DefaultAuditCollection = "coin_audit"

// AuditRepository implements audit.Repository for MongoDB
type AuditRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewAuditRepository creates a repository over the named collection
func NewAuditRepository(logger *slog.Logger, db *mongo.Database, collection string) *AuditRepository {
	if collection == "" {
		collection = DefaultAuditCollection
	}
	return &AuditRepository{
		collection: db.Collection(collection),
		logger:     logger,
	}
}

// indexModels are the indexes the audit trail relies on. The unique
// transaction_id index makes projection idempotent under redelivery.
func indexModels() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "transaction_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("ux_transaction_id"),
		},
		{
			Keys:    bson.D{{Key: "member_id", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("ix_member_occurred"),
		},
		{
			Keys:    bson.D{{Key: "venue_id", Value: 1}, {Key: "kind", Value: 1}, {Key: "occurred_at", Value: -1}},
			Options: options.Index().SetName("ix_venue_kind_occurred"),
		},
	}
}

// EnsureIndexes creates the audit indexes if they are missing
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	names, err := r.collection.Indexes().CreateMany(ctx, indexModels())
	if err != nil {
		r.logger.Error("Failed to create audit indexes", "error", err)
		return fmt.Errorf("failed to create audit indexes: %w", err)
	}
	r.logger.Info("Audit indexes ensured", "indexes", names)
	return nil
}

// Record inserts an entry. A duplicate transaction id returns ErrDuplicateEntry.
func (r *AuditRepository) Record(ctx context.Context, entry *audit.Entry) error {
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return audit.ErrDuplicateEntry{TransactionID: entry.TransactionID}
		}
		r.logger.Error("Failed to record audit entry",
			"transaction_id", entry.TransactionID,
			"error", err)
		return fmt.Errorf("failed to record audit entry: %w", err)
	}

	return nil
}

// Find returns entries matching the filter, newest first
func (r *AuditRepository) Find(ctx context.Context, filter audit.Filter, limit, offset int) ([]*audit.Entry, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "occurred_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(int64(offset))

	cursor, err := r.collection.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		r.logger.Error("Failed to query audit entries", "error", err)
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	entries := make([]*audit.Entry, 0)
	if err := cursor.All(ctx, &entries); err != nil {
		r.logger.Error("Failed to decode audit entries", "error", err)
		return nil, fmt.Errorf("failed to decode audit entries: %w", err)
	}

	return entries, nil
}

// Count returns the number of entries matching the filter
func (r *AuditRepository) Count(ctx context.Context, filter audit.Filter) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, buildFilter(filter))
	if err != nil {
		r.logger.Error("Failed to count audit entries", "error", err)
		return 0, fmt.Errorf("failed to count audit entries: %w", err)
	}
	return count, nil
}

// SumByVenue aggregates completed entries of one kind per venue over [from, to)
func (r *AuditRepository) SumByVenue(ctx context.Context, kind shared.TransactionKind, from, to time.Time) ([]audit.VenueSum, error) {
	cursor, err := r.collection.Aggregate(ctx, venueSumPipeline(kind, from, to))
	if err != nil {
		r.logger.Error("Failed to aggregate audit entries", "kind", string(kind), "error", err)
		return nil, fmt.Errorf("failed to aggregate audit entries: %w", err)
	}
	defer cursor.Close(ctx)

	sums := make([]audit.VenueSum, 0)
	if err := cursor.All(ctx, &sums); err != nil {
		r.logger.Error("Failed to decode audit sums", "error", err)
		return nil, fmt.Errorf("failed to decode audit sums: %w", err)
	}

	return sums, nil
}

func buildFilter(f audit.Filter) bson.M {
	filter := bson.M{}
	if f.MemberID != nil {
		filter["member_id"] = f.MemberID.String()
	}
	if f.VenueID != nil {
		filter["venue_id"] = f.VenueID.String()
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	return filter
}

func venueSumPipeline(kind shared.TransactionKind, from, to time.Time) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.D{
			{Key: "kind", Value: kind},
			{Key: "status", Value: shared.TransactionStatusCompleted},
			{Key: "occurred_at", Value: bson.D{
				{Key: "$gte", Value: from.UTC()},
				{Key: "$lt", Value: to.UTC()},
			}},
		}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$venue_id"},
			{Key: "coins", Value: bson.D{{Key: "$sum", Value: "$coins"}}},
			{Key: "events", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}
}
