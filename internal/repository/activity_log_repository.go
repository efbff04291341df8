package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/character-gallery/internal/domain"
)

// ActivityLogFilter captures audit query parameters.
type ActivityLogFilter struct {
	Actions  []domain.ActivityAction
	ActorID  string
	TargetID string
	From     *time.Time
	To       *time.Time
	Page     Page
}

// ActivityLogRepository stores audit entries. Entries are never updated.
type ActivityLogRepository interface {
	Insert(ctx context.Context, entry *domain.ActivityLogEntry) error
	List(ctx context.Context, filter ActivityLogFilter) ([]domain.ActivityLogEntry, error)
}

// ErrActivityLogDisabled is returned when no audit store is configured.
var ErrActivityLogDisabled = errors.New("activity log store not configured")

type activityLogDocument struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Timestamp   time.Time          `bson:"timestamp"`
	Action      string             `bson:"action"`
	ActorID     string             `bson:"actor_id,omitempty"`
	ActorPseudo string             `bson:"actor_pseudo,omitempty"`
	TargetType  string             `bson:"target_type,omitempty"`
	TargetID    string             `bson:"target_id,omitempty"`
	TargetName  string             `bson:"target_name,omitempty"`
	Details     string             `bson:"details,omitempty"`
	IPAddress   string             `bson:"ip_address,omitempty"`
}

type activityLogRepository struct {
	coll *mongo.Collection
}

// NewActivityLogRepository builds a Mongo-backed repository. A nil
// collection yields a repository that refuses every call.
func NewActivityLogRepository(coll *mongo.Collection) ActivityLogRepository {
	return &activityLogRepository{coll: coll}
}

// EnsureActivityLogIndexes creates the indexes the admin queries rely on.
func EnsureActivityLogIndexes(ctx context.Context, coll *mongo.Collection) error {
	if coll == nil {
		return ErrActivityLogDisabled
	}
	_, err := coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "action", Value: 1}, {Key: "timestamp", Value: -1}}},
		{Keys: bson.D{{Key: "actor_id", Value: 1}, {Key: "timestamp", Value: -1}}},
	})
	return err
}

func (r *activityLogRepository) Insert(ctx context.Context, entry *domain.ActivityLogEntry) error {
	if r.coll == nil {
		return ErrActivityLogDisabled
	}
	doc := activityLogDocument{
		Timestamp:   entry.Timestamp.UTC(),
		Action:      string(entry.Action),
		ActorID:     entry.ActorID,
		ActorPseudo: entry.ActorPseudo,
		TargetType:  entry.TargetType,
		TargetID:    entry.TargetID,
		TargetName:  entry.TargetName,
		Details:     entry.Details,
		IPAddress:   entry.IPAddress,
	}
	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		entry.ID = id.Hex()
	}
	return nil
}

// activityLogQuery translates filter into a Mongo query document.
func activityLogQuery(filter ActivityLogFilter) bson.M {
	query := bson.M{}
	if len(filter.Actions) > 0 {
		actions := make([]string, len(filter.Actions))
		for i, a := range filter.Actions {
			actions[i] = string(a)
		}
		query["action"] = bson.M{"$in": actions}
	}
	if filter.ActorID != "" {
		query["actor_id"] = filter.ActorID
	}
	if filter.TargetID != "" {
		query["target_id"] = filter.TargetID
	}
	if filter.From != nil || filter.To != nil {
		window := bson.M{}
		if filter.From != nil {
			window["$gte"] = filter.From.UTC()
		}
		if filter.To != nil {
			window["$lte"] = filter.To.UTC()
		}
		query["timestamp"] = window
	}
	return query
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityLogFilter) ([]domain.ActivityLogEntry, error) {
	if r.coll == nil {
		return nil, ErrActivityLogDisabled
	}
	page := filter.Page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetSkip(int64(page.Offset)).
		SetLimit(int64(page.Limit))

	cursor, err := r.coll.Find(ctx, activityLogQuery(filter), opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []activityLogDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}

	result := make([]domain.ActivityLogEntry, 0, len(docs))
	for _, doc := range docs {
		result = append(result, domain.ActivityLogEntry{
			ID:          doc.ID.Hex(),
			Timestamp:   doc.Timestamp,
			Action:      domain.ActivityAction(doc.Action),
			ActorID:     doc.ActorID,
			ActorPseudo: doc.ActorPseudo,
			TargetType:  doc.TargetType,
			TargetID:    doc.TargetID,
			TargetName:  doc.TargetName,
			Details:     doc.Details,
			IPAddress:   doc.IPAddress,
		})
	}
	return result, nil
}
