package procedure

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/lyzr/sequencer/internal/attribute"
	"github.com/lyzr/sequencer/internal/value"
	"github.com/lyzr/sequencer/internal/workspace"
)

func kindByName(name string) (value.Kind, error) {
	switch name {
	case "bool":
		return value.KindBool, nil
	case "int8":
		return value.KindInt8, nil
	case "int16":
		return value.KindInt16, nil
	case "int32":
		return value.KindInt32, nil
	case "int64":
		return value.KindInt64, nil
	case "uint8":
		return value.KindUint8, nil
	case "uint16":
		return value.KindUint16, nil
	case "uint32":
		return value.KindUint32, nil
	case "uint64":
		return value.KindUint64, nil
	case "float32":
		return value.KindFloat32, nil
	case "float64":
		return value.KindFloat64, nil
	case "char8":
		return value.KindChar8, nil
	case "string":
		return value.KindString, nil
	default:
		return value.KindEmpty, fmt.Errorf("procedure: unknown variable kind %q", name)
	}
}

// parseLiteralOfKind parses raw as a literal of kind by routing it
// through a throwaway attribute.Handler, reusing the engine's one
// strict-literal-parsing implementation instead of a second copy of
// it here.
func parseLiteralOfKind(kind value.Kind, raw string) (value.Value, bool) {
	h := attribute.NewHandler()
	h.Define("v", kind)
	h.SetString("v", raw)
	return h.GetValue("v")
}

// redisConnPool caches one *workspace.RedisConn per distinct "addr"
// attribute within a single buildWorkspace call, so N Redis
// variables pointed at the same address share one SharedSetup
// identifier (and therefore one dialed connection) the way
// workspace.Workspace.Setup expects.
type redisConnPool struct {
	conns map[string]*workspace.RedisConn
}

func newRedisConnPool() *redisConnPool {
	return &redisConnPool{conns: make(map[string]*workspace.RedisConn)}
}

func (p *redisConnPool) get(addr string) *workspace.RedisConn {
	if c, ok := p.conns[addr]; ok {
		return c
	}
	c := workspace.NewRedisConn("redis:"+addr, &redis.Options{Addr: addr})
	p.conns[addr] = c
	return c
}

// buildVariable constructs one workspace.Variable from its doc.
func buildVariable(v VariableDoc, redisConns *redisConnPool) (workspace.Variable, error) {
	kind, err := kindByName(v.Kind)
	if err != nil {
		return nil, fmt.Errorf("procedure: variable %q: %w", v.Name, err)
	}

	switch v.Type {
	case "", "Local":
		initial := value.Empty()
		if raw, ok := v.Attrs["value"]; ok {
			parsed, ok := parseLiteralOfKind(kind, raw)
			if !ok {
				return nil, fmt.Errorf("procedure: variable %q: initial value %q does not parse as %s", v.Name, raw, kind)
			}
			initial = parsed
		}
		return workspace.NewLocalVariable(initial), nil
	case "Redis":
		addr, ok := v.Attrs["addr"]
		if !ok || addr == "" {
			return nil, fmt.Errorf("procedure: variable %q: Redis variable requires an \"addr\" attribute", v.Name)
		}
		key, ok := v.Attrs["key"]
		if !ok || key == "" {
			key = v.Name
		}
		return workspace.NewRedisVariable(redisConns.get(addr), key, kind), nil
	default:
		return nil, fmt.Errorf("procedure: variable %q: unknown variable type %q", v.Name, v.Type)
	}
}

// buildWorkspace populates ws with every variable doc in vars, sharing
// one RedisConn per distinct Redis "addr" among them.
func buildWorkspace(ws *workspace.Workspace, vars []VariableDoc) error {
	pool := newRedisConnPool()
	for _, v := range vars {
		variable, err := buildVariable(v, pool)
		if err != nil {
			return err
		}
		if err := ws.Add(v.Name, variable); err != nil {
			return fmt.Errorf("procedure: %w", err)
		}
	}
	return nil
}
