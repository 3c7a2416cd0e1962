package mongo

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/swirlhq/aio-assistant/internal/config"
	"github.com/swirlhq/aio-assistant/internal/domain"
)

// Client wraps the MongoDB client with a lazily-created, memoized handle.
// All requests share the one connection; reconnection after a drop is left to
// the driver's own retry behavior.
type Client struct {
	cfg config.MongoConfig

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

// NewClient creates an unconnected client. The first call that needs the
// store establishes the connection.
func NewClient(cfg config.MongoConfig) *Client {
	return &Client{cfg: cfg}
}

var passwordPattern = regexp.MustCompile(`:[^:@/]+@`)

func redactURI(uri string) string {
	return passwordPattern.ReplaceAllString(uri, ":****@")
}

// Connect establishes the connection if needed and returns the database
// handle. Safe for concurrent use; idempotent.
func (c *Client) Connect(ctx context.Context) (*mongo.Database, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.db != nil {
		return c.db, nil
	}

	uri, err := c.cfg.ConnectionString()
	if err != nil {
		return nil, &domain.ConnectionError{
			Kind: domain.ConnectionAuth,
			Hint: "set MONGODB_PASSWORD in the environment or .env file",
			Err:  err,
		}
	}

	log.Info().Str("uri", redactURI(uri)).Msg("Connecting to MongoDB")

	opts := options.Client().
		ApplyURI(uri).
		SetConnectTimeout(c.cfg.ConnectTimeout).
		SetServerSelectionTimeout(c.cfg.ConnectTimeout).
		SetRetryWrites(true).
		SetRetryReads(true)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, classifyConnectError(err)
	}

	if err := client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, classifyConnectError(err)
	}

	c.client = client
	c.db = client.Database(c.cfg.Database)

	if err := c.ensureIndexes(ctx); err != nil {
		// The store works without indexes, just slower.
		log.Warn().Err(err).Msg("Failed to create MongoDB indexes")
	}

	log.Info().Str("database", c.cfg.Database).Msg("Connected to MongoDB")
	return c.db, nil
}

// Ping verifies the store is reachable, connecting first if needed.
func (c *Client) Ping(ctx context.Context) error {
	db, err := c.Connect(ctx)
	if err != nil {
		return err
	}
	return db.Client().Ping(ctx, nil)
}

// Close disconnects from the store.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client == nil {
		return nil
	}
	err := c.client.Disconnect(ctx)
	c.client = nil
	c.db = nil
	return err
}

func (c *Client) ensureIndexes(ctx context.Context) error {
	_, err := c.db.Collection(contextsCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "sessionId", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "updatedAt", Value: -1}}},
	})
	if err != nil {
		return err
	}

	_, err = c.db.Collection(conversationsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "timestamp", Value: -1},
		},
	})
	if err != nil {
		return err
	}

	_, err = c.db.Collection(preferencesCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "sessionId", Value: 1},
			{Key: "key", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	return err
}

// classifyConnectError turns a raw driver error into a ConnectionError with
// an actionable hint: auth failure, network failure or timeout.
func classifyConnectError(err error) *domain.ConnectionError {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "authentication") || strings.Contains(msg, "bad auth") || strings.Contains(msg, "sasl"):
		return &domain.ConnectionError{
			Kind: domain.ConnectionAuth,
			Hint: "check MONGODB_PASSWORD; special characters must be URL-encoded",
			Err:  err,
		}
	case errors.Is(err, context.DeadlineExceeded) || strings.Contains(msg, "timeout") || strings.Contains(msg, "server selection"):
		return &domain.ConnectionError{
			Kind: domain.ConnectionTimeout,
			Hint: "verify the cluster is reachable and your IP is allowlisted",
			Err:  err,
		}
	case strings.Contains(msg, "no such host") || strings.Contains(msg, "dns") || strings.Contains(msg, "connection refused") || strings.Contains(msg, "tls") || strings.Contains(msg, "ssl"):
		return &domain.ConnectionError{
			Kind: domain.ConnectionNetwork,
			Hint: "check the connection string host and network access settings",
			Err:  err,
		}
	default:
		return &domain.ConnectionError{Kind: domain.ConnectionUnknown, Err: err}
	}
}
