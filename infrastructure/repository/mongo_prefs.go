package repository

import (
	"context"
	"fmt"
	"log/slog"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"cocbot-go/domain/prefs"
)

// prefDocument is the MongoDB document structure for one preference key.
type prefDocument struct {
	Namespace string `bson:"namespace"`
	Key       string `bson:"key"`
	Value     string `bson:"value"`
}

// MongoPrefsRepository implements prefs.Repository using MongoDB.
// Several devices can share calibration through one database.
type MongoPrefsRepository struct {
	collection *mongo.Collection
	logger     *slog.Logger
}

func newMongoPrefsRepository(collection *mongo.Collection, logger *slog.Logger) *MongoPrefsRepository {
	return &MongoPrefsRepository{
		collection: collection,
		logger:     logger,
	}
}

func prefFilter(namespace, key string) bson.M {
	return bson.M{"namespace": namespace, "key": key}
}

// Get returns a single value.
func (r *MongoPrefsRepository) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	var doc prefDocument
	if err := r.collection.FindOne(ctx, prefFilter(namespace, key)).Decode(&doc); err != nil {
		if err == mongo.ErrNoDocuments {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to find pref: %w", err)
	}
	return doc.Value, true, nil
}

// Put upserts a single key.
func (r *MongoPrefsRepository) Put(ctx context.Context, namespace, key, value string) error {
	doc := prefDocument{Namespace: namespace, Key: key, Value: value}
	_, err := r.collection.ReplaceOne(ctx, prefFilter(namespace, key), doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to upsert pref %s/%s: %w", namespace, key, err)
	}
	return nil
}

// PutAll upserts several keys with one ordered bulk write.
func (r *MongoPrefsRepository) PutAll(ctx context.Context, namespace string, values map[string]string) error {
	if len(values) == 0 {
		return nil
	}
	models := make([]mongo.WriteModel, 0, len(values))
	for _, key := range sortedKeys(values) {
		models = append(models, mongo.NewReplaceOneModel().
			SetFilter(prefFilter(namespace, key)).
			SetReplacement(prefDocument{Namespace: namespace, Key: key, Value: values[key]}).
			SetUpsert(true))
	}
	if _, err := r.collection.BulkWrite(ctx, models, options.BulkWrite().SetOrdered(true)); err != nil {
		return fmt.Errorf("failed to upsert prefs in %s: %w", namespace, err)
	}
	r.logger.Debug("Prefs written", "namespace", namespace, "keys", len(values))
	return nil
}

// Delete removes a key.
func (r *MongoPrefsRepository) Delete(ctx context.Context, namespace, key string) error {
	if _, err := r.collection.DeleteOne(ctx, prefFilter(namespace, key)); err != nil {
		return fmt.Errorf("failed to delete pref: %w", err)
	}
	return nil
}

// List returns the whole namespace.
func (r *MongoPrefsRepository) List(ctx context.Context, namespace string) (map[string]string, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"namespace": namespace})
	if err != nil {
		return nil, fmt.Errorf("failed to find prefs: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []prefDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode prefs: %w", err)
	}
	return documentsToMap(docs), nil
}

func documentsToMap(docs []prefDocument) map[string]string {
	out := make(map[string]string, len(docs))
	for _, d := range docs {
		out[d.Key] = d.Value
	}
	return out
}

var _ prefs.Repository = (*MongoPrefsRepository)(nil)
