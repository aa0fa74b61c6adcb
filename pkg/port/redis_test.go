package port

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/nobletooth/lru/pkg/cache"
	"github.com/nobletooth/lru/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func newTestHandler(t *testing.T, capacity int) *redisHandler {
	t.Helper()
	lru, err := cache.NewLRU[string, string](capacity, nil /*onEvict*/)
	require.NoError(t, err)
	handler, err := newRedisHandler(lru)
	require.NoError(t, err)
	return handler
}

func TestNewRedisHandler_NilStore(t *testing.T) {
	_, err := newRedisHandler(nil)
	assert.Error(t, err)
}

func TestRedisHandler(t *testing.T) {
	handler := newTestHandler(t, 2)
	run := func(command string, args ...string) redisOutput {
		return handler.handle(redisCommand{command: command, args: args})
	}

	t.Run("ping", func(t *testing.T) {
		assert.Equal(t, writeRedisString("PONG"), run("PING"))
		assert.Equal(t, writeRedisBulk("hello"), run("ping", "hello"))
	})
	t.Run("set_and_get", func(t *testing.T) {
		assert.Equal(t, writeRedisString(RedisOk), run("SET", "k1", "v1"))
		assert.Equal(t, writeRedisBulk("v1"), run("GET", "k1"))
		assert.Equal(t, writeRedisNil(), run("GET", "missing"))
	})
	t.Run("eviction", func(t *testing.T) {
		run("FLUSHALL")
		run("SET", "k1", "v1")
		run("SET", "k2", "v2")
		run("GET", "k1")
		run("SET", "k3", "v3") // Evicts k2.
		assert.Equal(t, writeRedisNil(), run("GET", "k2"))
		assert.Equal(t, writeRedisInt(2), run("DBSIZE"))
	})
	t.Run("keys", func(t *testing.T) {
		run("FLUSHALL")
		run("SET", "user:1", "a")
		run("SET", "order:1", "b")
		assert.Equal(t, writeRedisArray([]string{"user:1"}), run("KEYS", "user:*"))
		assert.Equal(t, writeRedisArray([]string{"order:1", "user:1"}), run("KEYS", "*"))
		assert.Equal(t, writeRedisArray([]string{}), run("KEYS", "nothing*"))
	})
	t.Run("flushall", func(t *testing.T) {
		run("SET", "k1", "v1")
		assert.Equal(t, writeRedisString(RedisOk), run("FLUSHALL", "async"))
		assert.Equal(t, writeRedisInt(0), run("DBSIZE"))
		assert.NotNil(t, run("FLUSHALL", "later").err)
	})
	t.Run("quit", func(t *testing.T) {
		output := run("QUIT")
		assert.True(t, output.closeConnection)
		assert.Equal(t, RedisOk, output.writeString)
	})
	t.Run("errors", func(t *testing.T) {
		for _, testCase := range []struct {
			name     string
			command  redisCommand
			expected string
		}{
			{
				name:     "unknown command",
				command:  redisCommand{command: "HGETALL", args: []string{"h"}},
				expected: "ERR unknown command 'HGETALL'",
			},
			{
				name:     "get arity",
				command:  redisCommand{command: "GET"},
				expected: "ERR wrong number of arguments for 'get' command",
			},
			{
				name:     "set arity",
				command:  redisCommand{command: "set", args: []string{"k"}},
				expected: "ERR wrong number of arguments for 'set' command",
			},
			{
				name:     "dbsize arity",
				command:  redisCommand{command: "DBSIZE", args: []string{"x"}},
				expected: "ERR wrong number of arguments for 'dbsize' command",
			},
		} {
			t.Run(testCase.name, func(t *testing.T) {
				output := handler.handle(testCase.command)
				require.NotNil(t, output.err)
				assert.Equal(t, testCase.expected, *output.err)
			})
		}
	})
}

// startTestServer runs the Redis server on a random local port and returns a connected client.
func startTestServer(t *testing.T, store cache.Layer[string, string]) (*redis.Client, context.CancelFunc, <-chan error) {
	t.Helper()
	utils.SetTestFlag(t, "address", "127.0.0.1:0")

	ctx, cancel := context.WithCancel(context.Background())
	addrs := make(chan net.Addr, 1)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- RunRedisServer(ctx, store, func(addr net.Addr) { addrs <- addr })
	}()

	select {
	case addr := <-addrs:
		return redis.NewClient(&redis.Options{Addr: addr.String()}), cancel, serverErr
	case err := <-serverErr:
		cancel()
		require.FailNow(t, "Redis server failed to start.", "error: %v", err)
	case <-time.After(5 * time.Second):
		cancel()
		require.FailNow(t, "Redis server didn't start in time.")
	}
	return nil, cancel, serverErr
}

func TestRunRedisServer(t *testing.T) {
	ignoreBefore := goleak.IgnoreCurrent()

	lru, err := cache.NewLRU[string, string](2, nil /*onEvict*/)
	require.NoError(t, err)
	client, cancel, serverErr := startTestServer(t, cache.NewSynchronized[string, string](lru))
	ctx := context.Background()

	pong, err := client.Ping(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, "PONG", pong)

	require.NoError(t, client.Set(ctx, "1", "a", 0).Err())
	require.NoError(t, client.Set(ctx, "2", "b", 0).Err())
	got, err := client.Get(ctx, "1").Result()
	require.NoError(t, err)
	assert.Equal(t, "a", got)

	require.NoError(t, client.Set(ctx, "3", "c", 0).Err()) // Evicts 2.
	_, err = client.Get(ctx, "2").Result()
	assert.ErrorIs(t, err, redis.Nil)

	size, err := client.DBSize(ctx).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(2), size)

	keys, err := client.Keys(ctx, "*").Result()
	require.NoError(t, err)
	assert.Equal(t, []string{"3", "1"}, keys, "Expected keys from the most to the least recently used")

	assert.ErrorContains(t, client.Do(ctx, "HGETALL", "h").Err(), "unknown command")

	require.NoError(t, client.FlushAll(ctx).Err())
	_, err = client.Get(ctx, "1").Result()
	assert.ErrorIs(t, err, redis.Nil)

	// Shut everything down and make sure no goroutine is left behind.
	require.NoError(t, client.Close())
	cancel()
	select {
	case err := <-serverErr:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		require.FailNow(t, "Redis server didn't stop in time.")
	}
	goleak.VerifyNone(t, ignoreBefore)
}

func TestRunRedisServer_InvalidAddress(t *testing.T) {
	utils.SetTestFlag(t, "address", "")
	err := RunRedisServer(context.Background(), cache.NewNoOp[string, string](), nil /*listening*/)
	assert.ErrorContains(t, err, "--address")

	utils.SetTestFlag(t, "address", "not-an-address")
	err = RunRedisServer(context.Background(), cache.NewNoOp[string, string](), nil /*listening*/)
	assert.ErrorContains(t, err, "failed to listen")
}
