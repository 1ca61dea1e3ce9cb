package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ Store = (*mongoStore)(nil)

const createdAtField = "_createdAt"

type mongoStore struct {
	db *mongo.Database
}

// NewMongo connects to MongoDB and uses one Mongo collection per store
// collection. Ids are uuid strings kept in _id.
func NewMongo(ctx context.Context, uri, database string) (Store, func(), error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().
		ApplyURI(uri).
		SetMaxConnIdleTime(5 * time.Minute)
	client, err := mongo.Connect(connectCtx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(connectCtx, nil); err != nil {
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(database)
	for _, name := range []string{Players, Matches} {
		_, err := db.Collection(name).Indexes().CreateOne(connectCtx, mongo.IndexModel{
			Keys: bson.D{{Key: createdAtField, Value: 1}},
		})
		if err != nil {
			log.Warn("Failed to create ordering index", "collection", name, "error", err)
		}
	}

	teardown := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Error("Failed to disconnect from MongoDB", "error", err)
		}
	}
	log.Info("Connected to MongoDB", "database", database)
	return &mongoStore{db: db}, teardown, nil
}

func (s *mongoStore) List(ctx context.Context, collection string) ([]Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: createdAtField, Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := s.db.Collection(collection).Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	records := []Record{}
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode %s document: %w", collection, err)
		}
		records = append(records, fromBSON(raw))
	}
	return records, cursor.Err()
}

func (s *mongoStore) Get(ctx context.Context, collection, id string) (Record, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
		}
		return Record{}, fmt.Errorf("failed to get %s/%s: %w", collection, id, err)
	}
	return fromBSON(raw), nil
}

func (s *mongoStore) Create(ctx context.Context, collection string, data Document) (string, error) {
	id := uuid.NewString()
	doc := bson.M{"_id": id, createdAtField: time.Now().UnixNano()}
	for k, v := range data {
		doc[k] = v
	}
	if _, err := s.db.Collection(collection).InsertOne(ctx, doc); err != nil {
		return "", fmt.Errorf("failed to create %s document: %w", collection, err)
	}
	return id, nil
}

func (s *mongoStore) Update(ctx context.Context, collection, id string, data Document) error {
	if len(data) == 0 {
		return nil
	}
	res, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": map[string]any(data)})
	if err != nil {
		return fmt.Errorf("failed to update %s/%s: %w", collection, id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s/%s: %w", collection, id, ErrNotFound)
	}
	return nil
}

func (s *mongoStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *mongoStore) FindOne(ctx context.Context, collection, field string, value any) (Record, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: createdAtField, Value: 1}})
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{field: value}, opts).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Record{}, fmt.Errorf("%s where %s=%v: %w", collection, field, value, ErrNotFound)
		}
		return Record{}, fmt.Errorf("failed to query %s: %w", collection, err)
	}
	return fromBSON(raw), nil
}

func fromBSON(raw bson.M) Record {
	id := String(raw["_id"])
	data := make(Document, len(raw))
	for k, v := range raw {
		if k == "_id" || k == createdAtField {
			continue
		}
		data[k] = plain(v)
	}
	return Record{ID: id, Data: data}
}

// plain converts driver container types into the map/slice shapes the rest
// of the code reads.
func plain(v any) any {
	switch t := v.(type) {
	case bson.M:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = plain(e)
		}
		return out
	case bson.D:
		out := make(map[string]any, len(t))
		for _, e := range t {
			out[e.Key] = plain(e.Value)
		}
		return out
	case primitive.A:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = plain(e)
		}
		return out
	case primitive.DateTime:
		return t.Time().UTC().Format(time.RFC3339)
	default:
		return v
	}
}
