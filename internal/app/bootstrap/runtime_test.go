package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/clinicdesk/internal/cache"
	appconfig "github.com/wolfman30/clinicdesk/internal/config"
	"github.com/wolfman30/clinicdesk/pkg/logging"
)

func TestBuildRedisClientDisabled(t *testing.T) {
	logger := logging.Discard()
	assert.Nil(t, BuildRedisClient(context.Background(), nil, logger, false))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{CacheBackend: "memory", RedisAddr: "localhost:6379"}, logger, false))
	assert.Nil(t, BuildRedisClient(context.Background(), &appconfig.Config{CacheBackend: "redis"}, logger, false))
}

func TestBuildRedisClientVerify(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := &appconfig.Config{CacheBackend: "redis", RedisAddr: mr.Addr()}

	client := BuildRedisClient(context.Background(), cfg, logging.Discard(), true)
	require.NotNil(t, client)
	defer client.Close()

	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, logging.Discard(), true))
}

func TestBuildCacheFactoryMemory(t *testing.T) {
	factory := BuildCacheFactory(nil, logging.Discard())
	a, b := factory("clients"), factory("orders")
	_, isMemory := a.(*cache.Memory)
	assert.True(t, isMemory)

	ctx := context.Background()
	require.NoError(t, a.Set(ctx, "clients_1", []byte("x"), time.Minute))
	_, ok := b.Get(ctx, "clients_1")
	assert.False(t, ok, "services must not share a cache")
}

func TestBuildCacheFactoryRedisNamespaces(t *testing.T) {
	mr := miniredis.RunT(t)
	client := BuildRedisClient(context.Background(), &appconfig.Config{CacheBackend: "redis", RedisAddr: mr.Addr()}, logging.Discard(), false)
	require.NotNil(t, client)
	defer client.Close()

	factory := BuildCacheFactory(client, logging.Discard())
	clients, orders := factory("clients"), factory("orders")
	ctx := context.Background()

	require.NoError(t, clients.Set(ctx, "clients_list", []byte("a"), time.Minute))
	require.NoError(t, orders.Set(ctx, "orders_list", []byte("b"), time.Minute))
	assert.True(t, mr.Exists("clinicdesk:clients:clients_list"))
	assert.True(t, mr.Exists("clinicdesk:orders:orders_list"))

	require.NoError(t, clients.Clear(ctx, ""))
	assert.False(t, mr.Exists("clinicdesk:clients:clients_list"))
	assert.True(t, mr.Exists("clinicdesk:orders:orders_list"), "clearing one service leaves the others")
}

func TestBuildExportUploader(t *testing.T) {
	awsCfg := aws.Config{Region: "us-east-1"}
	assert.Nil(t, BuildExportUploader(awsCfg, &appconfig.Config{}, logging.Discard()))

	u := BuildExportUploader(awsCfg, &appconfig.Config{ExportBucket: "exports", AWSEndpointOverride: "http://localhost:4566"}, logging.Discard())
	require.NotNil(t, u)
	assert.True(t, u.Enabled())
}
