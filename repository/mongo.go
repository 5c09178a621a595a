package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore keeps documents in a MongoDB database. The native identity is
// the _id field, normally an ObjectID.
type MongoStore struct {
	Client *mongo.Client
	DB     *mongo.Database
}

// NewMongoStore creates a client for uri. The driver connects lazily and
// reconnects on its own, so an unreachable server is not an error here.
func NewMongoStore(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(5 * time.Second).
		SetConnectTimeout(5 * time.Second)
	cli, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	return &MongoStore{Client: cli, DB: cli.Database(dbName)}, nil
}

func (m *MongoStore) Name() string { return m.DB.Name() }

func (m *MongoStore) Insert(ctx context.Context, collection string, doc any) (ID, error) {
	res, err := m.DB.Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return ID{}, err
	}
	raw, err := bson.Marshal(bson.M{"_id": res.InsertedID})
	if err != nil {
		return ID{}, fmt.Errorf("encode inserted id: %w", err)
	}
	return idFromRaw(bson.Raw(raw).Lookup("_id")), nil
}

func (m *MongoStore) Find(ctx context.Context, collection string, filter Filter, limit int, fn func(ID, Decoder) error) error {
	if limit <= 0 {
		return nil
	}
	q := bson.M{}
	for k, v := range filter {
		q[k] = v
	}
	opts := options.Find().
		SetLimit(int64(limit)).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cur, err := m.DB.Collection(collection).Find(ctx, q, opts)
	if err != nil {
		return err
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		if err := fn(idFromRaw(cur.Current.Lookup("_id")), cur); err != nil {
			return err
		}
	}
	return cur.Err()
}

func (m *MongoStore) CollectionNames(ctx context.Context) ([]string, error) {
	return m.DB.ListCollectionNames(ctx, bson.D{})
}

func (m *MongoStore) Ping(ctx context.Context) error {
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoStore) Close(ctx context.Context) error {
	return m.Client.Disconnect(ctx)
}

// idFromRaw converts a native _id to its canonical string form.
func idFromRaw(v bson.RawValue) ID {
	if oid, ok := v.ObjectIDOK(); ok {
		return NewID(oid.Hex())
	}
	if s, ok := v.StringValueOK(); ok {
		return NewID(s)
	}
	if v.Type == 0 {
		return ID{}
	}
	return NewID(v.String())
}
