package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"tasktracker/config"
)

const (
	mongoConnectTimeout = 10 * time.Second
	mongoMaxPoolSize    = 20
)

var ErrUnreachable = errors.New("database unreachable")

type Connection struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// New connects to the configured deployment, retrying up to DB_MONGO_MAX_RETRY times.
func New(config *config.Config) (*Connection, error) {
	client := CreateMongoConnection(
		config.DB.Mongo.URI,
		config.DB.Mongo.Database,
		config.DB.Mongo.MaxRetry,
		config.DB.Mongo.RetryWaitTime,
	)
	if client == nil {
		return nil, ErrUnreachable
	}

	return &Connection{
		Client:   client,
		Database: client.Database(config.DB.Mongo.Database),
	}, nil
}

// CreateMongoConnection creates a client and waits for the primary to answer a ping.
func CreateMongoConnection(uri, dbName string, maxRetry, waitTime int) *mongo.Client {
	opts := options.Client().
		ApplyURI(uri).
		SetMaxPoolSize(mongoMaxPoolSize).
		SetConnectTimeout(mongoConnectTimeout)

	for retry := range maxRetry {
		client, err := connect(opts)
		if err == nil {
			log.
				Info().
				Str("dbName", dbName).
				Msg("Connected to database")

			return client
		}

		log.
			Error().
			Err(err).
			Str("dbName", dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil
}

func connect(opts *options.ClientOptions) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, err //nolint:wrapcheck
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())

		return nil, err //nolint:wrapcheck
	}

	return client, nil
}

// Close disconnects the client. It is safe to call on a nil connection.
func (c *Connection) Close(ctx context.Context) error {
	if c == nil || c.Client == nil {
		return nil
	}

	return c.Client.Disconnect(ctx) //nolint:wrapcheck
}
