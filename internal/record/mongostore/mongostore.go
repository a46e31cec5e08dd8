// Package mongostore keeps each user record as one document in the userData
// collection, keyed by user id, with camelCase fields.
package mongostore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ahmetcoskunkizilkaya/bus2college-backend/internal/record"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "userData"

type Store struct {
	coll *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{coll: db.Collection(CollectionName)}
}

// Dial connects to uri and returns a store on database dbName together with
// the client so the caller can disconnect it.
func Dial(ctx context.Context, uri, dbName string) (*Store, *mongo.Client, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri).SetConnectTimeout(10 * time.Second))
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping: %w", err)
	}
	return New(client.Database(dbName)), client, nil
}

func (s *Store) Load(ctx context.Context, userID uuid.UUID) (*record.UserRecord, error) {
	filter := bson.D{{Key: "_id", Value: userID.String()}}

	now := time.Now().UTC()
	onInsert := bson.D{{Key: "createdAt", Value: now}}
	for _, f := range record.Fields {
		v, err := toBSON(f.EmptyValue())
		if err != nil {
			return nil, err
		}
		onInsert = append(onInsert, bson.E{Key: string(f), Value: v})
	}

	_, err := s.coll.UpdateOne(ctx, filter,
		bson.D{{Key: "$setOnInsert", Value: onInsert}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user data: %w", err)
	}

	doc, err := s.coll.FindOne(ctx, filter).Raw()
	if err != nil {
		return nil, fmt.Errorf("failed to load user data: %w", err)
	}

	raw := make(map[record.Field]json.RawMessage, len(record.Fields))
	for _, f := range record.Fields {
		v := doc.Lookup(string(f))
		if v.Type == 0 {
			continue
		}
		js, err := toJSON(v)
		if err != nil {
			return nil, fmt.Errorf("failed to convert %s: %w", f, err)
		}
		raw[f] = js
	}
	return record.Assemble(raw)
}

func (s *Store) SavePartial(ctx context.Context, userID uuid.UUID, field record.Field, value json.RawMessage) error {
	v, err := toBSON(value)
	if err != nil {
		return err
	}

	_, err = s.coll.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: userID.String()}},
		bson.D{
			{Key: "$set", Value: bson.D{
				{Key: string(field), Value: v},
				{Key: "updatedAt", Value: time.Now().UTC()},
			}},
		},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", field, err)
	}
	return nil
}

// toBSON converts a JSON value (object or array) into a BSON value by way of
// relaxed extended JSON.
func toBSON(value json.RawMessage) (any, error) {
	wrapped := make([]byte, 0, len(value)+6)
	wrapped = append(wrapped, `{"v":`...)
	wrapped = append(wrapped, value...)
	wrapped = append(wrapped, '}')

	var doc bson.D
	if err := bson.UnmarshalExtJSON(wrapped, false, &doc); err != nil {
		return nil, fmt.Errorf("failed to convert value to bson: %w", err)
	}
	if len(doc) != 1 {
		return nil, fmt.Errorf("failed to convert value to bson: unexpected shape")
	}
	return doc[0].Value, nil
}

func toJSON(v bson.RawValue) (json.RawMessage, error) {
	doc, err := bson.Marshal(bson.D{{Key: "v", Value: v}})
	if err != nil {
		return nil, err
	}
	ext, err := bson.MarshalExtJSON(bson.Raw(doc), false, false)
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		V json.RawMessage `json:"v"`
	}
	if err := json.Unmarshal(ext, &wrapper); err != nil {
		return nil, err
	}
	return wrapper.V, nil
}
