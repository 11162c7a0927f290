// Package repository implements prefs.Repository on SQLite and MongoDB.
package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDBConfig describes the shared prefs database.
type MongoDBConfig struct {
	URI        string
	Database   string
	Collection string
	// ConnectTimeout also bounds index creation.
	ConnectTimeout time.Duration
	PingTimeout    time.Duration
}

// DefaultMongoDBConfig returns a local, unauthenticated setup.
func DefaultMongoDBConfig() *MongoDBConfig {
	return &MongoDBConfig{
		URI:            "mongodb://localhost:27017",
		Database:       "cocbot",
		Collection:     "prefs",
		ConnectTimeout: 10 * time.Second,
		PingTimeout:    5 * time.Second,
	}
}

func (c MongoDBConfig) withDefaults() MongoDBConfig {
	def := DefaultMongoDBConfig()
	if c.URI == "" {
		c.URI = def.URI
	}
	if c.Database == "" {
		c.Database = def.Database
	}
	if c.Collection == "" {
		c.Collection = def.Collection
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = def.ConnectTimeout
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = def.PingTimeout
	}
	return c
}

// MongoDB is a verified connection to the prefs database.
type MongoDB struct {
	client *mongo.Client
	prefs  *mongo.Collection
	cfg    MongoDBConfig
	logger *slog.Logger
}

// NewMongoDB connects and pings the server. Zero config fields take their defaults.
func NewMongoDB(ctx context.Context, cfg *MongoDBConfig, logger *slog.Logger) (*MongoDB, error) {
	if cfg == nil {
		cfg = DefaultMongoDBConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	c := cfg.withDefaults()

	connectCtx, cancel := context.WithTimeout(ctx, c.ConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(c.URI))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, c.PingTimeout)
	defer pingCancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB at %s: %w", c.URI, err)
	}

	logger.Info("Connected to prefs database", "database", c.Database, "collection", c.Collection)

	return &MongoDB{
		client: client,
		prefs:  client.Database(c.Database).Collection(c.Collection),
		cfg:    c,
		logger: logger.With("component", "mongodb"),
	}, nil
}

// prefsIndex keeps one document per (namespace, key); upserts rely on it.
func prefsIndex() mongo.IndexModel {
	return mongo.IndexModel{
		Keys:    bson.D{{Key: "namespace", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("namespace_key"),
	}
}

// OpenPrefs ensures the prefs index and returns the repository over it.
func (m *MongoDB) OpenPrefs(ctx context.Context) (*MongoPrefsRepository, error) {
	indexCtx, cancel := context.WithTimeout(ctx, m.cfg.ConnectTimeout)
	defer cancel()

	if _, err := m.prefs.Indexes().CreateOne(indexCtx, prefsIndex()); err != nil {
		return nil, fmt.Errorf("failed to create prefs index: %w", err)
	}
	return newMongoPrefsRepository(m.prefs, m.logger), nil
}

// Close disconnects, bounded by the connect timeout.
func (m *MongoDB) Close() error {
	if m.client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), m.cfg.ConnectTimeout)
	defer cancel()

	if err := m.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect from MongoDB: %w", err)
	}
	m.client = nil
	return nil
}
