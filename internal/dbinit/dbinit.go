// Package dbinit provisions the recipe platform database: collections with
// their validators, then indexes. Apply is safe to run against a database
// that is already provisioned.
package dbinit

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/vango-dev/recipebox/internal/errors"
)

// ErrCollectionExists is returned by Target.CreateCollection when the
// collection already exists.
var ErrCollectionExists = stderrors.New("dbinit: collection already exists")

// namespaceExists is the server error code for an existing collection.
const namespaceExists = 48

// Target is the database Apply provisions.
type Target interface {
	CreateCollection(ctx context.Context, name string, validator bson.M) error
	UpdateValidator(ctx context.Context, name string, validator bson.M) error
	CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) ([]string, error)
}

// Apply creates every collection of schema and then its indexes. An
// existing collection gets its validator replaced instead.
func Apply(ctx context.Context, target Target, schema []Collection, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "dbinit")

	for _, c := range schema {
		err := target.CreateCollection(ctx, c.Name, c.Validator)
		switch {
		case err == nil:
			logger.Info("collection created", "collection", c.Name)
		case stderrors.Is(err, ErrCollectionExists):
			if err := target.UpdateValidator(ctx, c.Name, c.Validator); err != nil {
				return errors.New("E141").WithDetailf("update validator of %s", c.Name).Wrap(err)
			}
			logger.Info("collection exists, validator updated", "collection", c.Name)
		default:
			return errors.New("E141").WithDetailf("create %s", c.Name).Wrap(err)
		}
	}

	for _, c := range schema {
		if len(c.Indexes) == 0 {
			continue
		}
		names, err := target.CreateIndexes(ctx, c.Name, c.Indexes)
		if err != nil {
			return errors.New("E142").WithDetailf("indexes of %s", c.Name).Wrap(err)
		}
		logger.Info("indexes created", "collection", c.Name, "indexes", names)
	}

	logger.Info("initialization completed")
	return nil
}

// MongoTarget provisions a MongoDB database.
type MongoTarget struct {
	db *mongo.Database
}

// NewMongoTarget wraps db.
func NewMongoTarget(db *mongo.Database) *MongoTarget {
	return &MongoTarget{db: db}
}

// CreateCollection implements Target.
func (t *MongoTarget) CreateCollection(ctx context.Context, name string, validator bson.M) error {
	err := t.db.CreateCollection(ctx, name, options.CreateCollection().SetValidator(validator))
	var cmdErr mongo.CommandError
	if stderrors.As(err, &cmdErr) && cmdErr.Code == namespaceExists {
		return ErrCollectionExists
	}
	return err
}

// UpdateValidator implements Target with collMod.
func (t *MongoTarget) UpdateValidator(ctx context.Context, name string, validator bson.M) error {
	return t.db.RunCommand(ctx, bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}).Err()
}

// CreateIndexes implements Target.
func (t *MongoTarget) CreateIndexes(ctx context.Context, collection string, models []mongo.IndexModel) ([]string, error) {
	return t.db.Collection(collection).Indexes().CreateMany(ctx, models)
}

// Connect opens a client for uri and checks it with a ping.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.New("E140").WithDetail(uri).Wrap(err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, errors.New("E140").WithDetail(uri).Wrap(err)
	}
	return client, nil
}
