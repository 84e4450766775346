package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/matzehuels/orgchart/pkg/errors"
	"github.com/matzehuels/orgchart/pkg/orgchart"
)

// DefaultMongoDatabase is used when no database name is configured.
const DefaultMongoDatabase = "orgchart"

const mongoCollection = "charts"

// MongoStore keeps charts in a MongoDB collection, one document per chart
// keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to uri and pings the server, retrying network
// failures a few times.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	if uri == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "mongo store needs a connection uri")
	}
	if database == "" {
		database = DefaultMongoDatabase
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, storageErr(err, "connect to mongo")
	}
	err = retry(ctx, connectAttempts, connectDelay, func() error {
		err := client.Ping(ctx, nil)
		if mongo.IsNetworkError(err) || mongo.IsTimeout(err) {
			return transient(err)
		}
		return err
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, storageErr(err, "ping mongo")
	}
	return &MongoStore{client: client, coll: client.Database(database).Collection(mongoCollection)}, nil
}

func (s *MongoStore) Save(ctx context.Context, name string, snap orgchart.Snapshot) error {
	if err := errors.ValidateChartName(name); err != nil {
		return err
	}
	now := time.Now().UTC()
	update := bson.M{
		"$set": bson.M{
			"nodes":     len(snap.Nodes),
			"snapshot":  snap,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{"createdAt": now},
	}
	_, err := s.coll.UpdateByID(ctx, name, update, options.Update().SetUpsert(true))
	if err != nil {
		return storageErr(err, "save chart %q", name)
	}
	return nil
}

func (s *MongoStore) Load(ctx context.Context, name string) (orgchart.Snapshot, error) {
	if err := errors.ValidateChartName(name); err != nil {
		return orgchart.Snapshot{}, err
	}
	var rec Record
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&rec)
	if err == mongo.ErrNoDocuments {
		return orgchart.Snapshot{}, notFound(name)
	}
	if err != nil {
		return orgchart.Snapshot{}, storageErr(err, "load chart %q", name)
	}
	return rec.Snapshot, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errors.ValidateChartName(name); err != nil {
		return err
	}
	if _, err := s.coll.DeleteOne(ctx, bson.M{"_id": name}); err != nil {
		return storageErr(err, "delete chart %q", name)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context) ([]Info, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetProjection(bson.M{"snapshot": 0})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, storageErr(err, "list charts")
	}
	var out []Info
	if err := cur.All(ctx, &out); err != nil {
		return nil, storageErr(err, "list charts")
	}
	return out, nil
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
