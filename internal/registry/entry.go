package registry

import (
	"net/url"
	"time"
)

// Fields is the flat field mapping used for request records, entry
// environments and callback results, mirroring the host framework's
// request/response dictionaries.
type Fields map[string]any

// Reserved environment/result field names.
const (
	// FieldCount is the number of invocations remaining before the entry
	// is removed.
	FieldCount = "count"
	// FieldMaxAge is a per-entry idle threshold override, in seconds.
	FieldMaxAge = "maxAge"
	// FieldAccessTime is the unix timestamp of the last successful
	// invocation (or of registration), maintained internally.
	FieldAccessTime = "accessTime"
	// FieldEnv, when present in a callback result, holds a replacement
	// environment for the entry's next invocation.
	FieldEnv = "env"
)

// Callback is an invocable registered under an ephemeral address.
// The first argument is the request record with the entry's environment
// merged in. The following arguments are the values bound from the query
// string per the entry's Descriptor: a string for a single-valued query
// name, a []string when the name carried multiple values, and, for
// variadic descriptors, trailing interleaved name/value string pairs for
// every query argument no named parameter consumed.
// The returned mapping is merged into the request to form the response.
type Callback func(req *Request, args ...any) (Fields, error)

// Param describes one positional callback parameter.
type Param struct {
	Name       string
	HasDefault bool
	Default    string
}

// Descriptor describes how query arguments bind to a callback's
// parameters. Binding is positional: each Param is matched against the
// query argument of the same name, falling back to its default (or the
// empty string) when absent. Variadic marks that leftover query
// arguments are collected as trailing name/value pairs.
type Descriptor struct {
	Params   []Param
	Variadic bool
}

// Options configures a registration.
type Options struct {
	// Key is an explicit address suffix. When empty a fresh key is
	// generated.
	Key string
	// Count is the number of invocations before auto-removal. Zero means
	// the default of 1.
	Count int
	// MaxAge overrides the registry-wide idle threshold for this entry.
	MaxAge time.Duration
	// Env holds extra environment fields merged into every request that
	// reaches the callback.
	Env Fields
}

// Entry is a registered callback with its environment. Entries are owned
// exclusively by the registry's store.
type Entry struct {
	Key      string
	Callback Callback
	Desc     Descriptor
	Env      Fields
}

// Request is the inbound record handed to Dispatch and, environment
// merged in, to the callback.
type Request struct {
	// Path is the full request path; Dispatch strips the mount prefix
	// from it to obtain the registry key.
	Path string
	// Suffix, when non-empty, is the already-computed registry key and
	// takes precedence over Path.
	Suffix string
	// Query holds the decoded query arguments.
	Query url.Values
	// Fields carries the host request fields; Dispatch merges the entry
	// environment into it before invoking the callback.
	Fields Fields

	// env is the live environment for the invocation in flight. Renew
	// mutates it; Dispatch reads the remaining count back out of it
	// after the callback returns.
	env Fields
}

// Renew grants the entry one additional future invocation: it increments
// the live environment's count so that the decrement Dispatch performs
// after the callback returns nets out to no change. Intended to be called
// by a callback that wants its own address to stay valid.
func (r *Request) Renew() {
	if r.env == nil {
		return
	}
	count := 1
	if c, ok := fieldInt(r.env, FieldCount); ok {
		count = c
	}
	r.env[FieldCount] = count + 1
	if r.Fields != nil {
		r.Fields[FieldCount] = count + 1
	}
}

func (f Fields) clone() Fields {
	out := make(Fields, len(f)+3)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// fieldInt reads an integer field, tolerating the numeric types a Fields
// value picks up from Go literals and JSON decoding.
func fieldInt(f Fields, key string) (int, bool) {
	switch v := f[key].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
