package workspace

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/lyzr/sequencer/internal/value"
)

// RedisConn is the resource a group of RedisVariable instances share:
// one client connection, dialed once per workspace regardless of how
// many Redis-backed variables reference it. Grounded on
// common/redis.Client and the teacher's clients.NewRedisCASClient,
// which likewise wrap a single *redis.Client behind connect/close.
type RedisConn struct {
	identifier string
	opts       *redis.Options

	mu        sync.Mutex
	client    *redis.Client
	connected bool
}

// NewRedisConn builds a shared connection descriptor. identifier is the
// SharedSetup key multiple RedisVariable instances publish so the
// workspace dials Redis exactly once for all of them.
func NewRedisConn(identifier string, opts *redis.Options) *RedisConn {
	return &RedisConn{identifier: identifier, opts: opts}
}

func (c *RedisConn) connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.connected {
		return nil
	}
	client := redis.NewClient(c.opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		return fmt.Errorf("workspace: redis connect %s: %w", c.identifier, err)
	}
	c.client = client
	c.connected = true
	return nil
}

func (c *RedisConn) disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return nil
	}
	err := c.client.Close()
	c.connected = false
	c.client = nil
	return err
}

func (c *RedisConn) isConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

func (c *RedisConn) underlying() *redis.Client {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client
}

// RedisVariable is an externally-backed variable (spec.md §4.3's
// "external-backed variables" aside, generalized from
// original_source's file_variable.cpp's pattern of an is_available
// check that also requires the backing source connected). Its current
// value lives in Redis under key, JSON-encoded; remote writers publish
// on the same key's pub/sub channel to drive this workspace's ordinary
// change-notification path (Workspace.Add wires this through OnChange).
type RedisVariable struct {
	conn *RedisConn
	key  string
	kind value.Kind

	mu      sync.Mutex
	cached  value.Value
	watcher *redis.PubSub
	cancel  context.CancelFunc

	onChange func(val value.Value)
}

// NewRedisVariable builds a Redis-backed variable of a single scalar
// kind (arrays/structs are out of scope for this backend — it exists
// to mirror simple externally-reported telemetry, not structured
// workspace data).
func NewRedisVariable(conn *RedisConn, key string, kind value.Kind) *RedisVariable {
	return &RedisVariable{conn: conn, key: key, kind: kind}
}

// OnChange installs the callback the workspace uses to forward remote
// updates into its own listener dispatch. Not part of the Variable
// interface; Workspace type-asserts for it.
func (v *RedisVariable) OnChange(cb func(val value.Value)) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.onChange = cb
}

func (v *RedisVariable) TypeTag() string { return "Redis" }

func (v *RedisVariable) Setup() (*SharedSetup, error) {
	setup := &SharedSetup{
		Identifier: v.conn.identifier,
		Setup:      v.conn.connect,
		Teardown:   v.conn.disconnect,
	}
	if err := v.conn.connect(); err != nil {
		return setup, err
	}
	v.startWatch()
	return setup, nil
}

func (v *RedisVariable) Teardown() error {
	v.mu.Lock()
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	watcher := v.watcher
	v.watcher = nil
	v.cached = value.Value{}
	v.mu.Unlock()
	if watcher != nil {
		return watcher.Close()
	}
	return nil
}

func (v *RedisVariable) startWatch() {
	client := v.conn.underlying()
	if client == nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	ps := client.Subscribe(ctx, "workspace:"+v.key)

	v.mu.Lock()
	v.watcher = ps
	v.cancel = cancel
	v.mu.Unlock()

	ch := ps.Channel()
	go func() {
		for msg := range ch {
			val, err := decodeRedisValue(msg.Payload, v.kind)
			if err != nil {
				continue
			}
			v.mu.Lock()
			v.cached = val
			cb := v.onChange
			v.mu.Unlock()
			if cb != nil {
				cb(val)
			}
		}
	}()
}

func (v *RedisVariable) IsAvailable() bool {
	if !v.conn.isConnected() {
		return false
	}
	val, ok := v.fetch()
	return ok && !val.IsEmpty()
}

func (v *RedisVariable) fetch() (value.Value, bool) {
	client := v.conn.underlying()
	if client == nil {
		return value.Value{}, false
	}
	raw, err := client.Get(context.Background(), v.key).Result()
	if err != nil {
		return value.Value{}, false
	}
	val, err := decodeRedisValue(raw, v.kind)
	if err != nil {
		return value.Value{}, false
	}
	v.mu.Lock()
	v.cached = val
	v.mu.Unlock()
	return val, true
}

func (v *RedisVariable) Get(path string) (value.Value, bool) {
	val, ok := v.fetch()
	if !ok {
		return value.Value{}, false
	}
	if path == "" {
		return val, true
	}
	return val.GetField(path)
}

func (v *RedisVariable) Set(path string, newVal value.Value) error {
	client := v.conn.underlying()
	if client == nil {
		return fmt.Errorf("workspace: redis variable %s: not connected", v.key)
	}
	current, _ := v.fetch()
	if current.IsEmpty() {
		current = value.Empty()
	}
	updated, err := current.SetField(path, newVal)
	if err != nil && path == "" {
		updated, err = current.ConvertAssign(newVal)
	}
	if err != nil {
		return err
	}
	encoded, err := encodeRedisValue(updated)
	if err != nil {
		return err
	}
	ctx := context.Background()
	if err := client.Set(ctx, v.key, encoded, 0).Err(); err != nil {
		return fmt.Errorf("workspace: redis variable %s: set: %w", v.key, err)
	}
	if err := client.Publish(ctx, "workspace:"+v.key, encoded).Err(); err != nil {
		return fmt.Errorf("workspace: redis variable %s: publish: %w", v.key, err)
	}
	v.mu.Lock()
	v.cached = updated
	v.mu.Unlock()
	return nil
}

func encodeRedisValue(v value.Value) (string, error) {
	b, err := v.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("workspace: encode redis value: %w", err)
	}
	return string(b), nil
}

func decodeRedisValue(raw string, kind value.Kind) (value.Value, error) {
	switch kind {
	case value.KindBool:
		var b bool
		if err := json.Unmarshal([]byte(raw), &b); err != nil {
			return value.Value{}, err
		}
		return value.NewBool(b), nil
	case value.KindString:
		var s string
		if err := json.Unmarshal([]byte(raw), &s); err != nil {
			return value.Value{}, err
		}
		return value.NewString(s), nil
	case value.KindFloat32, value.KindFloat64:
		var f float64
		if err := json.Unmarshal([]byte(raw), &f); err != nil {
			return value.Value{}, err
		}
		if kind == value.KindFloat32 {
			return value.NewFloat32(float32(f)), nil
		}
		return value.NewFloat64(f), nil
	case value.KindInt8, value.KindInt16, value.KindInt32, value.KindInt64:
		var i int64
		if err := json.Unmarshal([]byte(raw), &i); err != nil {
			return value.Value{}, err
		}
		return intFromRedis(kind, i), nil
	case value.KindUint8, value.KindUint16, value.KindUint32, value.KindUint64:
		var u uint64
		if err := json.Unmarshal([]byte(raw), &u); err != nil {
			return value.Value{}, err
		}
		return uintFromRedis(kind, u), nil
	default:
		return value.Value{}, fmt.Errorf("workspace: redis variable: unsupported kind %s", kind)
	}
}

func intFromRedis(kind value.Kind, i int64) value.Value {
	switch kind {
	case value.KindInt8:
		return value.NewInt8(int8(i))
	case value.KindInt16:
		return value.NewInt16(int16(i))
	case value.KindInt32:
		return value.NewInt32(int32(i))
	default:
		return value.NewInt64(i)
	}
}

func uintFromRedis(kind value.Kind, u uint64) value.Value {
	switch kind {
	case value.KindUint8:
		return value.NewUint8(uint8(u))
	case value.KindUint16:
		return value.NewUint16(uint16(u))
	case value.KindUint32:
		return value.NewUint32(uint32(u))
	default:
		return value.NewUint64(u)
	}
}
