package services

import (
	"context"
	"time"

	"github.com/inventagious/funding-gateway/internal/database"
	"github.com/inventagious/funding-gateway/internal/walletauth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const onboardingEventsCollection = "onboarding_events"

// EnsureAnalyticsIndexes configures indexes for the onboarding events
// collection. Called on startup from main after Mongo has connected.
func EnsureAnalyticsIndexes(ctx context.Context) error {
	col := database.DB.Collection(onboardingEventsCollection)

	// Compound index on (session_id, timestamp) for per-session funnel reads,
	// plus type+timestamp for dashboard aggregation.
	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "session_id", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_session_timestamp"),
		},
		{
			Keys: bson.D{
				{Key: "type", Value: 1},
				{Key: "timestamp", Value: -1},
			},
			Options: options.Index().SetName("idx_type_timestamp"),
		},
	}

	for _, m := range indexModels {
		if _, err := col.Indexes().CreateOne(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

// MongoEventSink persists onboarding funnel events to MongoDB. The event log
// calls Write from a goroutine; a lost event is acceptable, a blocked flow
// is not.
type MongoEventSink struct{}

// NewMongoEventSink returns a sink writing to the shared Mongo connection.
func NewMongoEventSink() *MongoEventSink {
	return &MongoEventSink{}
}

// Write inserts one event.
func (s *MongoEventSink) Write(ctx context.Context, event walletauth.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	col := database.DB.Collection(onboardingEventsCollection)
	_, err := col.InsertOne(ctx, event)
	return err
}

// LoadSessionEvents returns a session's funnel events, newest first, capped
// at limit (default 50, max 100). Used by the admin funnel view.
func LoadSessionEvents(ctx context.Context, sessionID string, limit int64) ([]walletauth.Event, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}

	col := database.DB.Collection(onboardingEventsCollection)
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cursor, err := col.Find(ctx, bson.M{"session_id": sessionID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []walletauth.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
