package procedure

import (
	"context"
	"fmt"
	"sync"

	"github.com/lyzr/sequencer/internal/instruction"
)

// DocLoader loads a named procedure document's raw bytes and decodes
// them into a Doc. internal/parser implements this for JSON and YAML
// procedure files; Store depends only on the interface so it never
// imports a concrete file format.
type DocLoader interface {
	Load(path string) ([]byte, error)
	Decode(raw []byte) (Doc, error)
}

// RemoteCache is an optional shared cache for an Include's post-patch,
// pre-decode bytes, keyed the same way Store's own in-process cache is
// keyed (bare path, or path plus a digest of its placeholder patch).
// Sharing one backing store (Redis, typically) across job-controller
// processes means a sub-procedure included by many concurrently
// running jobs is fetched from disk and patched once per cluster, not
// once per job. A miss or a nil RemoteCache simply falls back to
// loading from the DocLoader.
type RemoteCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, raw []byte) error
}

type includeRegistration struct {
	path  string
	patch string
}

// Store is the per-procedure include cache (spec.md §4.7): it
// implements instruction.ProcedureResolver, resolving the opaque keys
// the Builder mints for each Include site back to a parsed (and, if a
// placeholder patch was supplied, patched) Doc, cached by key so a
// path+patch combination is loaded and decoded at most once. Every
// ResolveRoot call still builds a *fresh* instruction tree from that
// cached Doc, so two Include sites sharing one key never share one
// mutable Status-carrying instruction instance.
type Store struct {
	loader    DocLoader
	catalogue *Catalogue
	remote    RemoteCache

	mu            sync.Mutex
	registrations map[string]includeRegistration
	cache         map[string]Doc
}

// NewStore builds a Store backed by loader. Call SetCatalogue before
// any ResolveRoot call; DefaultCatalogue wires the two together.
func NewStore(loader DocLoader) *Store {
	return &Store{
		loader:        loader,
		registrations: make(map[string]includeRegistration),
		cache:         make(map[string]Doc),
	}
}

// SetCatalogue attaches the catalogue this store uses to build
// resolved roots. Required before any ResolveRoot call.
func (s *Store) SetCatalogue(cat *Catalogue) { s.catalogue = cat }

// SetRemoteCache attaches an optional shared cache consulted before
// the DocLoader and populated after it, so a cluster of job-controller
// processes sharing one rc fetches and patches a given include at
// most once cluster-wide rather than once per process. Passing nil
// (the default) disables it; only this process's in-memory cache
// applies then.
func (s *Store) SetRemoteCache(rc RemoteCache) { s.remote = rc }

// Loader returns the document loader this store was built with, so a
// Procedure can reuse it for RegisterType file references without
// needing its own copy.
func (s *Store) Loader() DocLoader { return s.loader }

// registerInclude records path/patch under a key derived from them and
// returns that key, for the Builder to hand to instruction.NewInclude.
func (s *Store) registerInclude(path, patch string) string {
	key := includeKey(path, patch)
	s.mu.Lock()
	s.registrations[key] = includeRegistration{path: path, patch: patch}
	s.mu.Unlock()
	return key
}

// ResolveRoot implements instruction.ProcedureResolver.
func (s *Store) ResolveRoot(key string) (instruction.Instruction, error) {
	if s.catalogue == nil {
		return nil, fmt.Errorf("procedure: store: ResolveRoot called before SetCatalogue")
	}
	doc, err := s.doc(key)
	if err != nil {
		return nil, err
	}
	return buildRoot(s.catalogue, doc)
}

func (s *Store) doc(key string) (Doc, error) {
	s.mu.Lock()
	if d, ok := s.cache[key]; ok {
		s.mu.Unlock()
		return d, nil
	}
	reg, ok := s.registrations[key]
	s.mu.Unlock()
	if !ok {
		return Doc{}, fmt.Errorf("procedure: include: no registered path for key %q", key)
	}

	raw, hit := s.remoteGet(key)
	if !hit {
		var err error
		raw, err = s.loader.Load(reg.path)
		if err != nil {
			return Doc{}, fmt.Errorf("procedure: include: load %q: %w", reg.path, err)
		}
		raw, err = applyPlaceholderPatch(raw, reg.patch)
		if err != nil {
			return Doc{}, err
		}
		s.remoteSet(key, raw)
	}

	doc, err := s.loader.Decode(raw)
	if err != nil {
		return Doc{}, fmt.Errorf("procedure: include: decode %q: %w", reg.path, err)
	}

	s.mu.Lock()
	s.cache[key] = doc
	s.mu.Unlock()
	return doc, nil
}

// remoteGet consults the optional RemoteCache, logging nothing and
// failing open: any error or miss is treated the same as "not cached",
// so a transient backing-store hiccup never blocks ResolveRoot when
// the DocLoader itself is perfectly able to serve the request.
func (s *Store) remoteGet(key string) ([]byte, bool) {
	if s.remote == nil {
		return nil, false
	}
	raw, ok, err := s.remote.Get(context.Background(), key)
	if err != nil || !ok {
		return nil, false
	}
	return raw, true
}

func (s *Store) remoteSet(key string, raw []byte) {
	if s.remote == nil {
		return
	}
	_ = s.remote.Set(context.Background(), key, raw)
}
