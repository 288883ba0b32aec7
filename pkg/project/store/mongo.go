package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/stackforge/pkg/project"
)

// MongoConfig configures a MongoStore.
type MongoConfig struct {
	URI        string
	Database   string // default "stackforge"
	Collection string // default "projects"
}

// MongoStore keeps one document per project, keyed by project ID.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB, verifies the connection and ensures
// the name index exists.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = "stackforge"
	}
	if cfg.Collection == "" {
		cfg.Collection = "projects"
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, &RetryableError{Err: fmt.Errorf("ping mongodb: %w", err)}
	}

	coll := client.Database(cfg.Database).Collection(cfg.Collection)
	_, err = coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("create name index: %w", err)
	}
	return &MongoStore{client: client, coll: coll}, nil
}

func (s *MongoStore) Get(ctx context.Context, id string) (*project.Project, error) {
	var p project.Project
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("mongodb get: %w", err)
	}
	return &p, nil
}

func (s *MongoStore) Put(ctx context.Context, p *project.Project) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongodb put: %w", err)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("mongodb delete: %w", err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]*project.Project, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "_id", Value: 1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongodb list: %w", err)
	}
	var out []*project.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongodb list: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
