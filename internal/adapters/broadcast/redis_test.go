package broadcast

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"metalrates/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("redis container test skipped in short mode")
	}

	ctx := context.Background()
	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Terminate(context.Background()) })

	endpoint, err := c.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisPublisher_Publish_DeliversJSONPayload(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()

	sub := client.Subscribe(ctx, "live-rate-test")
	defer func() { _ = sub.Close() }()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)

	p := NewRedisPublisher(client, "live-rate-test")
	require.NoError(t, p.Publish(ctx, payloadAt(7)))

	select {
	case msg := <-sub.Channel():
		var got domain.RatePayload
		require.NoError(t, json.Unmarshal([]byte(msg.Payload), &got))
		require.Equal(t, "emerald", got.Source)
		require.Equal(t, 7000.0, got.Rates[0].DisplayRate)
		require.True(t, payloadAt(7).Timestamp.Equal(got.Timestamp))
	case <-time.After(5 * time.Second):
		t.Fatal("no message received")
	}
}

func TestRedisPublisher_Publish_UnreachableServer(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond, MaxRetries: -1})
	defer func() { _ = client.Close() }()

	err := NewRedisPublisher(client, "").Publish(context.Background(), payloadAt(1))
	require.ErrorContains(t, err, `"live-rate"`)
}
