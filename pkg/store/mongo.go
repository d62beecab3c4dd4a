package store

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/menta2k/blueprint-analyzer/pkg/types"
)

const (
	analysesCollection = "blueprint_analyses"
	statusCollection   = "status_checks"
)

// Mongo persists analyses and status checks in MongoDB.
type Mongo struct {
	client   *mongo.Client
	analyses *mongo.Collection
	statuses *mongo.Collection
}

// NewMongo connects to MongoDB and returns a store backed by the named
// database.
func NewMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	if uri == "" {
		return nil, fmt.Errorf("mongo URI must be provided")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	db := client.Database(database)
	return &Mongo{
		client:   client,
		analyses: db.Collection(analysesCollection),
		statuses: db.Collection(statusCollection),
	}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// Save inserts one analysis document.
func (m *Mongo) Save(ctx context.Context, a types.StoredAnalysis) error {
	if _, err := m.analyses.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("failed to insert analysis: %w", err)
	}
	return nil
}

// List returns up to limit analyses in insertion order.
func (m *Mongo) List(ctx context.Context, limit int) ([]types.StoredAnalysis, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := m.analyses.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query analyses: %w", err)
	}
	defer cur.Close(ctx)

	out := []types.StoredAnalysis{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode analyses: %w", err)
	}
	return out, nil
}

// SaveStatus inserts one status check document.
func (m *Mongo) SaveStatus(ctx context.Context, s types.StatusCheck) error {
	if _, err := m.statuses.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to insert status check: %w", err)
	}
	return nil
}

// ListStatuses returns up to limit status checks in insertion order.
func (m *Mongo) ListStatuses(ctx context.Context, limit int) ([]types.StatusCheck, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 0})
	if limit > 0 {
		opts = opts.SetLimit(int64(limit))
	}

	cur, err := m.statuses.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query status checks: %w", err)
	}
	defer cur.Close(ctx)

	out := []types.StatusCheck{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("failed to decode status checks: %w", err)
	}
	return out, nil
}
