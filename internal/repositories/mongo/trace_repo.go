package mongo

import (
	"context"
	"time"

	"github.com/yoockh/wacrm/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const TraceCollection = "reply_traces"

type TraceRepository interface {
	Insert(ctx context.Context, t *models.ReplyTrace) error
	ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.ReplyTrace, error)
}

type traceRepo struct {
	col *mongo.Collection
}

func NewTraceRepo(db *mongo.Database) TraceRepository {
	return &traceRepo{col: db.Collection(TraceCollection)}
}

func (r *traceRepo) Insert(ctx context.Context, t *models.ReplyTrace) error {
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now().UTC()
	}
	_, err := r.col.InsertOne(ctx, t)
	return err
}

func (r *traceRepo) ListBySession(ctx context.Context, sessionID string, limit int64) ([]models.ReplyTrace, error) {
	if limit <= 0 {
		limit = 50
	}

	cur, err := r.col.Find(ctx,
		bson.M{"session_id": sessionID},
		options.Find().
			SetSort(bson.D{{Key: "created_at", Value: -1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.ReplyTrace
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
