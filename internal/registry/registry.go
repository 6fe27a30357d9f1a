package registry

import (
	"fmt"
	"math/rand"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"callback-registry-api/internal/store"
)

// DefaultMountPrefix is the path segment under which registry addresses
// are nested unless configured otherwise.
const DefaultMountPrefix = "/_r/"

// EventType classifies a registry lifecycle event.
type EventType string

const (
	EventRegistered EventType = "registered"
	EventInvoked    EventType = "invoked"
	EventFailed     EventType = "failed"
	EventExhausted  EventType = "exhausted"
	EventExpired    EventType = "expired"
	EventDeleted    EventType = "deleted"
)

// Event describes something that happened to a registry entry.
type Event struct {
	Type   EventType `json:"type"`
	Key    string    `json:"key"`
	Detail string    `json:"detail,omitempty"`
	At     time.Time `json:"at"`
}

// Config configures a Registry instance. All knobs live here; the
// registry keeps no package-level mutable state.
type Config struct {
	// MountPrefix is the path segment all registry addresses live under.
	// Defaults to DefaultMountPrefix; a trailing slash is ensured.
	MountPrefix string
	// DefaultMaxAge is the idle threshold after which the sweeper evicts
	// an entry, and doubles as the sweep interval. Zero disables the
	// sweeper entirely; entries then live until their count reaches zero
	// or they are dropped explicitly.
	DefaultMaxAge time.Duration
	// OnEvent, when set, receives every lifecycle event. It is called
	// synchronously from the dispatching goroutine.
	OnEvent func(Event)
}

// Registry maps ephemeral keys to stored callbacks. Dispatch, renewal and
// the idle sweep all operate against the injected store; mutation
// discipline per key is last-writer-wins, which suffices because each key
// backs a temporary single-purpose URL.
type Registry struct {
	cfg   Config
	store store.Store[*Entry]

	stop      chan struct{}
	done      chan struct{}
	sweeping  bool
	closeOnce sync.Once
}

// now is a small indirection to allow test stubbing.
var now = time.Now

// New constructs a Registry over the given store. A nil store gets an
// in-memory one.
func New(cfg Config, st store.Store[*Entry]) *Registry {
	if cfg.MountPrefix == "" {
		cfg.MountPrefix = DefaultMountPrefix
	}
	if !strings.HasSuffix(cfg.MountPrefix, "/") {
		cfg.MountPrefix += "/"
	}
	if st == nil {
		st = store.NewMemory[*Entry]()
	}
	return &Registry{
		cfg:   cfg,
		store: st,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
}

// MountPrefix returns the normalized prefix registry addresses live under.
func (g *Registry) MountPrefix() string {
	return g.cfg.MountPrefix
}

// Emit registers a callback and returns the address it is reachable
// under, suitable as a redirect target. The address resolves to exactly
// this callback until it has been invoked Options.Count times or idles
// out.
func (g *Registry) Emit(cb Callback, desc Descriptor, opts Options) string {
	key := opts.Key
	if key == "" {
		key = g.generateKey()
	}

	env := opts.Env.clone()
	count := opts.Count
	if count <= 0 {
		if c, ok := fieldInt(env, FieldCount); ok && c > 0 {
			count = c
		} else {
			count = 1
		}
	}
	env[FieldCount] = count
	if opts.MaxAge > 0 {
		env[FieldMaxAge] = int64(opts.MaxAge / time.Second)
	}
	env[FieldAccessTime] = now().Unix()

	g.store.Set(key, &Entry{Key: key, Callback: cb, Desc: desc, Env: env})
	g.emit(Event{Type: EventRegistered, Key: key, At: now()})

	return g.cfg.MountPrefix + key
}

// Dispatch resolves an inbound request to its registered callback,
// invokes it with the bound arguments, updates the entry's bookkeeping
// and returns the response mapping.
//
// A failure inside the callback is recovered here, converted into a
// *CallbackError and leaves the entry untouched: no decrement, no
// deletion. Paths that do not resolve yield ErrNotFound.
func (g *Registry) Dispatch(req *Request) (Fields, error) {
	suffix := req.Suffix
	if suffix == "" {
		trimmed := strings.TrimPrefix(req.Path, g.cfg.MountPrefix)
		// A remainder that still looks absolute means the path never
		// belonged under the mount prefix.
		if trimmed != "" && strings.HasPrefix(trimmed, "/") {
			return nil, ErrNotFound
		}
		suffix = trimmed
	}

	e, ok := g.store.Get(suffix)
	if !ok {
		return nil, ErrNotFound
	}

	// Merge the stored environment into the request so its fields are
	// visible to the callback and available for renewal.
	if req.Fields == nil {
		req.Fields = Fields{}
	}
	req.env = e.Env.clone()
	for k, v := range req.env {
		req.Fields[k] = v
	}

	args := bindArgs(e.Desc, req.Query)

	result, err := safeInvoke(e.Callback, req, args)
	if err != nil {
		g.emit(Event{Type: EventFailed, Key: suffix, Detail: err.Error(), At: now()})
		return nil, &CallbackError{Key: suffix, Err: err}
	}
	if result == nil {
		result = Fields{}
	}

	// A replacement environment in the result overrides the stored one
	// for the entry's next invocation.
	env := req.env
	if raw, present := result[FieldEnv]; present {
		switch t := raw.(type) {
		case Fields:
			env = t.clone()
		case map[string]any:
			env = Fields(t).clone()
		}
		delete(result, FieldEnv)
	}

	count := 1
	if c, ok := fieldInt(env, FieldCount); ok {
		count = c
	}
	count--
	if count <= 0 {
		g.store.Unset(suffix)
		g.emit(Event{Type: EventExhausted, Key: suffix, At: now()})
	} else {
		env[FieldCount] = count
		env[FieldAccessTime] = now().Unix()
		g.store.Set(suffix, &Entry{Key: suffix, Callback: e.Callback, Desc: e.Desc, Env: env})
		g.emit(Event{Type: EventInvoked, Key: suffix, At: now()})
	}

	resp := req.Fields.clone()
	for k, v := range result {
		resp[k] = v
	}
	return resp, nil
}

// Drop removes an entry explicitly, reporting whether it existed.
func (g *Registry) Drop(key string) bool {
	if !g.store.Exists(key) {
		return false
	}
	g.store.Unset(key)
	g.emit(Event{Type: EventDeleted, Key: key, At: now()})
	return true
}

// EntryInfo is a read-only snapshot of one live entry's bookkeeping.
type EntryInfo struct {
	Key        string `json:"key"`
	Count      int    `json:"count"`
	MaxAge     int64  `json:"maxAge,omitempty"`
	AccessTime int64  `json:"accessTime"`
	Age        int64  `json:"age"`
}

// Entries returns a snapshot of all live entries, sorted by key. Reading
// does not refresh access times.
func (g *Registry) Entries() []EntryInfo {
	keys := g.store.Keys()
	sort.Strings(keys)
	nowTs := now().Unix()

	infos := make([]EntryInfo, 0, len(keys))
	for _, key := range keys {
		e, ok := g.store.Get(key)
		if !ok {
			continue
		}
		info := EntryInfo{Key: key, Count: 1}
		if c, ok := fieldInt(e.Env, FieldCount); ok {
			info.Count = c
		}
		if m, ok := fieldInt(e.Env, FieldMaxAge); ok {
			info.MaxAge = int64(m)
		}
		if at, ok := fieldInt(e.Env, FieldAccessTime); ok {
			info.AccessTime = int64(at)
			info.Age = nowTs - int64(at)
		}
		infos = append(infos, info)
	}
	return infos
}

// Len returns the number of live entries.
func (g *Registry) Len() int {
	return g.store.Len()
}

func (g *Registry) emit(evt Event) {
	if g.cfg.OnEvent != nil {
		g.cfg.OnEvent(evt)
	}
}

// generateKey combines a high-resolution timestamp with a random integer
// and retries until the candidate is free. Collision avoidance, not
// cryptographic uniqueness.
func (g *Registry) generateKey() string {
	for {
		key := strconv.FormatInt(now().UnixNano(), 36) + strconv.FormatInt(rand.Int63(), 36)
		if !g.store.Exists(key) {
			return key
		}
	}
}

// bindArgs binds query arguments to the descriptor's parameters
// positionally: single string per name, []string when a name carried
// multiple values, declared default (or empty string) when absent. For
// variadic descriptors, unconsumed query arguments are appended as
// interleaved name/value pairs, name-sorted for determinism.
func bindArgs(desc Descriptor, query url.Values) []any {
	args := make([]any, 0, len(desc.Params))
	consumed := make(map[string]bool, len(desc.Params))

	for _, p := range desc.Params {
		if vals, ok := query[p.Name]; ok && len(vals) > 0 {
			consumed[p.Name] = true
			if len(vals) > 1 {
				args = append(args, append([]string(nil), vals...))
			} else {
				args = append(args, vals[0])
			}
			continue
		}
		if p.HasDefault {
			args = append(args, p.Default)
			continue
		}
		args = append(args, "")
	}

	if desc.Variadic {
		rest := make([]string, 0, len(query))
		for name := range query {
			if !consumed[name] {
				rest = append(rest, name)
			}
		}
		sort.Strings(rest)
		for _, name := range rest {
			for _, v := range query[name] {
				args = append(args, name, v)
			}
		}
	}

	return args
}

// safeInvoke runs the callback, converting a panic into an error so the
// dispatch boundary recovers it like any other callback failure.
func safeInvoke(cb Callback, req *Request, args []any) (result Fields, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("callback panic: %v", r)
		}
	}()
	return cb(req, args...)
}
