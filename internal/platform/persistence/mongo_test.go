package persistence

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gym-coin-ledger/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

func TestClientOptions(t *testing.T) {
	cfg := &config.MongoDBConfig{
		URI:             "mongodb://localhost:27017",
		Database:        "gym_coins",
		AuditCollection: "coin_audit",
		Timeout:         5 * time.Second,
		MaxPoolSize:     50,
		MinPoolSize:     5,
		MaxConnIdleTime: time.Minute,
	}

	opts := clientOptions(cfg)

	require.NotNil(t, opts.MaxPoolSize)
	assert.Equal(t, uint64(50), *opts.MaxPoolSize)
	require.NotNil(t, opts.MinPoolSize)
	assert.Equal(t, uint64(5), *opts.MinPoolSize)
	require.NotNil(t, opts.Timeout)
	assert.Equal(t, 5*time.Second, *opts.Timeout)
	require.NotNil(t, opts.RetryWrites)
	assert.True(t, *opts.RetryWrites)
	require.NotNil(t, opts.WriteConcern)
	assert.Equal(t, "majority", opts.WriteConcern.W)
	assert.Equal(t, readpref.PrimaryMode, opts.ReadPreference.Mode())
}

func TestMongoDB_Database(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	// mongo.Connect does not dial until the first operation
	client, err := mongo.Connect(context.Background(), clientOptions(&config.MongoDBConfig{
		URI:     "mongodb://localhost:27017",
		Timeout: time.Second,
	}))
	require.NoError(t, err)
	defer func() { _ = client.Disconnect(context.Background()) }()

	mdb := &MongoDB{
		logger:   logger,
		client:   client,
		database: client.Database("gym_coins"),
	}

	assert.Equal(t, "gym_coins", mdb.Database().Name())
}
