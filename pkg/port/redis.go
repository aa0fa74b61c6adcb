// The cache is exposed to network clients over the Redis protocol (RESP). Only the commands that map onto the cache
// operations are supported; values are stored as given, there are no expiry options.

package port

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"slices"
	"strings"

	"github.com/nobletooth/lru/pkg/cache"
	"github.com/nobletooth/lru/pkg/scan"
	"github.com/tidwall/redcon"
)

const RedisOk = "OK"

var address = flag.String("address", ":6380", "The ip:port to listen on for Redis protocol.")

// redisCommand represents a Redis command with its arguments.
type redisCommand struct {
	command string
	args    []string
}

// redisOutput conforms to a real Redis server output on non pub / sub commands.
type redisOutput struct {
	closeConnection bool     // Closes the connection if true.
	writeNil        bool     // Writes a nil value if true.
	err             *string  // Error to return if set.
	writeInt        *int     // Writes an integer value if set.
	writeBulk       *string  // Writes a bulk string if set.
	writeArray      bool     // Writes `array` as an array of bulk strings if true.
	array           []string // Only used when `writeArray` is set.
	writeString     string   // Writes a simple string otherwise.
}

func closeRedisConnection(msg string) redisOutput {
	return redisOutput{writeString: msg, closeConnection: true}
}

func writeRedisNil() redisOutput {
	return redisOutput{writeNil: true}
}

func writeRedisInt(i int) redisOutput {
	return redisOutput{writeInt: &i}
}

func writeRedisString(s string) redisOutput {
	return redisOutput{writeString: s}
}

func writeRedisBulk(s string) redisOutput {
	return redisOutput{writeBulk: &s}
}

func writeRedisArray(items []string) redisOutput {
	return redisOutput{writeArray: true, array: items}
}

func writeRedisError(err error) redisOutput {
	msg := "ERR " + err.Error()
	return redisOutput{err: &msg}
}

func wrongArity(command string) redisOutput {
	return writeRedisError(fmt.Errorf("wrong number of arguments for '%s' command", strings.ToLower(command)))
}

type redisHandler struct {
	store cache.Layer[string, string]
}

// newRedisHandler creates a new redisHandler.
func newRedisHandler(store cache.Layer[string, string]) (*redisHandler, error) {
	if store == nil {
		return nil, errors.New("expected a non-nil cache")
	}
	return &redisHandler{store: store}, nil
}

func (rh *redisHandler) handle(cmd redisCommand) redisOutput {
	command := strings.ToUpper(cmd.command)
	switch command {
	case "PING":
		switch len(cmd.args) {
		case 0:
			return writeRedisString("PONG")
		case 1:
			return writeRedisBulk(cmd.args[0])
		default:
			return wrongArity(command)
		}
	case "QUIT":
		return closeRedisConnection(RedisOk)
	case "SET":
		if len(cmd.args) != 2 {
			return wrongArity(command)
		}
		rh.store.Add(cmd.args[0], cmd.args[1])
		return writeRedisString(RedisOk)
	case "GET":
		if len(cmd.args) != 1 {
			return wrongArity(command)
		}
		value, found := rh.store.Get(cmd.args[0])
		if !found {
			return writeRedisNil()
		}
		return writeRedisBulk(value)
	case "DBSIZE":
		if len(cmd.args) != 0 {
			return wrongArity(command)
		}
		return writeRedisInt(rh.store.Len())
	case "KEYS":
		if len(cmd.args) != 1 {
			return wrongArity(command)
		}
		matched, err := scan.MatchGlob(cmd.args[0], slices.Values(rh.store.Keys()))
		if err != nil {
			return writeRedisError(err)
		}
		keys := slices.Collect(matched)
		if keys == nil {
			keys = []string{}
		}
		return writeRedisArray(keys)
	case "FLUSHALL":
		// The ASYNC / SYNC modifiers are accepted for compatibility; purging is always synchronous.
		if len(cmd.args) > 1 ||
			(len(cmd.args) == 1 && !slices.Contains([]string{"ASYNC", "SYNC"}, strings.ToUpper(cmd.args[0]))) {
			return writeRedisError(errors.New("syntax error"))
		}
		rh.store.Purge()
		return writeRedisString(RedisOk)
	default:
		return writeRedisError(fmt.Errorf("unknown command '%s'", cmd.command))
	}
}

// writeRedisOutput writes the handler output to the client connection.
func writeRedisOutput(conn redcon.Conn, output redisOutput) {
	switch {
	case output.err != nil:
		conn.WriteError(*output.err)
	case output.writeNil:
		conn.WriteNull()
	case output.writeInt != nil:
		conn.WriteInt(*output.writeInt)
	case output.writeBulk != nil:
		conn.WriteBulkString(*output.writeBulk)
	case output.writeArray:
		conn.WriteArray(len(output.array))
		for _, item := range output.array {
			conn.WriteBulkString(item)
		}
	default:
		conn.WriteString(output.writeString)
	}
	if output.closeConnection {
		if err := conn.Close(); err != nil {
			slog.Error("Failed to close connection.", "remote", conn.RemoteAddr(), "error", err)
		}
	}
}

// RunRedisServer serves the given cache over the Redis protocol until `ctx` is cancelled. The optional `listening`
// callback is called with the bound address once the server accepts connections.
func RunRedisServer(ctx context.Context, store cache.Layer[string, string], listening func(addr net.Addr)) error {
	if *address == "" {
		return errors.New("expected a non-empty --address flag")
	}

	redisHandler, err := newRedisHandler(store)
	if err != nil {
		return fmt.Errorf("failed to create a new redis handler: %w", err)
	}

	redisServer := redcon.NewServerNetwork("tcp" /*net*/, *address,
		/*handler*/ func(conn redcon.Conn, cmd redcon.Command) {
			// Convert redcon.Command to redisCommand; the arguments are copied since redcon reuses its buffers.
			command := redisCommand{command: string(cmd.Args[0]), args: make([]string, len(cmd.Args)-1)}
			for i := 1; i < len(cmd.Args); i++ {
				command.args[i-1] = string(cmd.Args[i])
			}
			writeRedisOutput(conn, redisHandler.handle(command))
		},
		/*accept*/ func(conn redcon.Conn) bool {
			return true // Accept all connections.
		},
		/*closed*/ func(conn redcon.Conn, err error) {
			if err != nil {
				slog.Debug("Connection closed with an error.", "remote", conn.RemoteAddr(), "error", err)
			}
		})

	listenSignal := make(chan error, 1)
	serverErrSignal := make(chan error, 1)
	go func() {
		serverErrSignal <- redisServer.ListenServeAndSignal(listenSignal)
		close(serverErrSignal)
	}()
	if err := <-listenSignal; err != nil {
		return fmt.Errorf("failed to listen on %s: %w", *address, err)
	}
	slog.Info("Redis server is listening.", "address", redisServer.Addr().String())
	if listening != nil {
		listening(redisServer.Addr())
	}

	select {
	case <-ctx.Done():
		closeErr := redisServer.Close()
		serveErr := <-serverErrSignal
		if exitErr := errors.Join(closeErr, serveErr); exitErr != nil {
			return fmt.Errorf("failed to close redis server: %w", exitErr)
		}
	case err := <-serverErrSignal:
		return fmt.Errorf("redis server stopped unexpectedly: %w", err)
	}

	return nil // Exited with no errors.
}
