package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ecomhub/storefront-api/internal/core/domain"
	"github.com/ecomhub/storefront-api/internal/core/ports"
)

const authEventsCollection = "auth_events"

// AuditRepository stores the authentication audit trail.
type AuditRepository struct {
	col *mongo.Collection
}

var _ ports.AuditRepository = (*AuditRepository)(nil)

func NewAuditRepository(db *mongo.Database) *AuditRepository {
	return &AuditRepository{col: db.Collection(authEventsCollection)}
}

type authEventDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	Type       string             `bson:"type"`
	Username   string             `bson:"username"`
	ClientIP   string             `bson:"client_ip,omitempty"`
	UserAgent  string             `bson:"user_agent,omitempty"`
	Detail     string             `bson:"detail,omitempty"`
	OccurredAt primitive.DateTime `bson:"occurred_at"`
}

func toAuthEventDoc(e domain.AuthEvent) authEventDoc {
	return authEventDoc{
		Type:       string(e.Type),
		Username:   e.Username,
		ClientIP:   e.ClientIP,
		UserAgent:  e.UserAgent,
		Detail:     e.Detail,
		OccurredAt: primitive.NewDateTimeFromTime(e.OccurredAt.UTC()),
	}
}

func (r *AuditRepository) InsertAuthEvent(ctx context.Context, event domain.AuthEvent) error {
	if _, err := r.col.InsertOne(ctx, toAuthEventDoc(event)); err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}

// EnsureIndexes creates the lookup indexes on the auth_events collection.
func (r *AuditRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{Keys: bson.D{{Key: "type", Value: 1}, {Key: "occurred_at", Value: -1}}},
		{
			Keys:    bson.D{{Key: "occurred_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retentionDays * 24 * 60 * 60)),
		},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}

// Auth events are kept for this many days.
const retentionDays = 90
