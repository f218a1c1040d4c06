package cache_test

import (
	"context"
	"testing"
	"time"

	"agenda/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestRedisIntegration runs the cache against a real Redis container
func TestRedisIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping Redis integration test in short mode")
	}

	ctx := context.Background()
	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:latest",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}
	defer redisContainer.Terminate(ctx)

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := cache.Connect(ctx, host+":"+port.Port())
	require.NoError(t, err)
	defer client.Close()

	c := cache.NewRedis(client, time.Minute, nil)

	_, ok, err := c.Get(ctx, "lookup:title:Opening")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "lookup:title:Opening", []byte(`{"rows":[]}`)))
	require.NoError(t, c.Set(ctx, "lookup:speaker:Alice", []byte(`{"rows":[]}`)))
	require.NoError(t, client.Set(ctx, "unrelated", "keep", 0).Err())

	val, ok, err := c.Get(ctx, "lookup:title:Opening")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"rows":[]}`, string(val))

	removed, err := c.Purge(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	_, ok, err = c.Get(ctx, "lookup:title:Opening")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "keep", client.Get(ctx, "unrelated").Val())
}
