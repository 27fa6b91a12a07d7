package archive

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCollection is the collection MongoIndex writes to.
const MongoCollection = "assessments"

// MongoIndex implements Index over a MongoDB collection.
type MongoIndex struct {
	coll *mongo.Collection
}

// NewMongoIndex creates an index in db's assessments collection.
func NewMongoIndex(db *mongo.Database) *MongoIndex {
	return &MongoIndex{coll: db.Collection(MongoCollection)}
}

// ConnectMongo connects to uri, pings the server and returns the named
// database. Callers disconnect the returned client.
func ConnectMongo(ctx context.Context, uri, database string) (*mongo.Client, *mongo.Database, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, client.Database(database), nil
}

// EnsureIndexes creates the created_at index List sorts on.
func (x *MongoIndex) EnsureIndexes(ctx context.Context) error {
	_, err := x.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "created_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create mongo index: %w", err)
	}
	return nil
}

func (x *MongoIndex) Insert(ctx context.Context, e Entry) error {
	if _, err := x.coll.InsertOne(ctx, e); err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	return nil
}

func (x *MongoIndex) List(ctx context.Context, limit int) ([]Entry, error) {
	cur, err := x.coll.Find(ctx, bson.M{}, listOptions(limit))
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer cur.Close(ctx)

	entries := []Entry{}
	if err := cur.All(ctx, &entries); err != nil {
		return nil, fmt.Errorf("decode assessments: %w", err)
	}
	return entries, nil
}

func (x *MongoIndex) Get(ctx context.Context, id string) (*Entry, error) {
	var e Entry
	err := x.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&e)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get assessment: %w", err)
	}
	return &e, nil
}

// listOptions sorts newest first, breaking ties by id like the other indexes.
func listOptions(limit int) *options.FindOptions {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	return opts
}
