package snapshot

import (
	"context"
	"errors"
	"io"

	"github.com/charmbracelet/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	apperrors "github.com/matzehuels/agentcanvas/pkg/errors"
)

// mongoDocumentID is the fixed _id of the single snapshot document.
const mongoDocumentID = "canvas"

// Defaults for MongoConfig fields left empty.
const (
	defaultMongoDatabase   = "agentcanvas"
	defaultMongoCollection = "snapshots"
)

// MongoConfig configures a MongoDB-backed snapshot store.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

// MongoStore persists the snapshot as a single upserted document.
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *log.Logger
}

// mongoDocument wraps the snapshot with its fixed document id.
type mongoDocument struct {
	ID       string   `bson:"_id"`
	Snapshot Snapshot `bson:"snapshot"`
}

// NewMongoStore connects to MongoDB and verifies the connection with a ping.
func NewMongoStore(ctx context.Context, cfg MongoConfig, logger *log.Logger) (*MongoStore, error) {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	database := cfg.Database
	if database == "" {
		database = defaultMongoDatabase
	}
	collection := cfg.Collection
	if collection == "" {
		collection = defaultMongoCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "connect to mongodb")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "ping mongodb")
	}

	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger,
	}, nil
}

func (s *MongoStore) Save(ctx context.Context, snap Snapshot) error {
	doc := mongoDocument{ID: mongoDocumentID, Snapshot: snap}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection.ReplaceOne(ctx, bson.M{"_id": mongoDocumentID}, doc, opts); err != nil {
		return apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "upsert snapshot document")
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context) (Snapshot, error) {
	var doc mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": mongoDocumentID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Snapshot{}, nil
		}
		return Snapshot{}, apperrors.Wrap(apperrors.ErrCodeSnapshotIO, err, "read snapshot document")
	}
	return doc.Snapshot, nil
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

var _ Store = (*MongoStore)(nil)
