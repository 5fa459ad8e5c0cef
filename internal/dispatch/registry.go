package dispatch

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// Handler is the signature every registered method implements. It
// receives the raw positional params (post-layout) plus the request
// context, and returns either a JSON-serializable result or an error.
// Per spec.md §4.5 step 6, a non-nil error returned here is treated
// identically to one constructed by the dispatcher itself.
type Handler func(ctx context.Context, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error)

// LayoutKind tags how params are rearranged before the handler is
// invoked (spec.md §9 "dynamic parameter rearrangement").
type LayoutKind int

const (
	// LayoutDefault appends the RequestContext after the user params;
	// the handler receives params unchanged.
	LayoutDefault LayoutKind = iota
	// LayoutContextOnly drops all user params; the handler is invoked
	// with none.
	LayoutContextOnly
)

// ParamLayout is the tagged variant described in spec.md §9.
type ParamLayout struct {
	Kind LayoutKind
}

// CachePolicy is the per-method cache policy (spec.md §4.2).
type CachePolicy struct {
	Enabled bool
	TTL     time.Duration
	// UseL2 consults the shared tier in addition to L1 when true.
	UseL2 bool
	// Uncacheable reports whether the given params disable caching for
	// this call (e.g. a block tag of latest/pending/finalized/safe).
	Uncacheable func(params []json.RawMessage) bool
}

// MethodDescriptor is the registry entry for one JSON-RPC method.
type MethodDescriptor struct {
	Name       string
	Handler    Handler
	Schema     Schema
	AllowExtra bool
	Layout     ParamLayout
	Cache      CachePolicy
	// RateLimit overrides the tier default when non-zero.
	RateLimit RateLimitOverride
}

// RateLimitOverride carries a per-method rate budget; a zero value means
// "use the tier default."
type RateLimitOverride struct {
	Max    uint64
	Window time.Duration
}

// Registry is the immutable method table, built once at process start.
type Registry struct {
	methods map[string]*MethodDescriptor
}

// Builder accumulates descriptors before Build freezes them into a
// Registry, mirroring the teacher's "construct the RPC API table once,
// hand it to the server" shape in server/json_rpc.go.
type Builder struct {
	methods map[string]*MethodDescriptor
}

func NewBuilder() *Builder {
	return &Builder{methods: make(map[string]*MethodDescriptor)}
}

func (b *Builder) Register(d MethodDescriptor) *Builder {
	b.methods[d.Name] = &d
	return b
}

func (b *Builder) Build() *Registry {
	frozen := make(map[string]*MethodDescriptor, len(b.methods))
	for k, v := range b.methods {
		frozen[k] = v
	}
	return &Registry{methods: frozen}
}

func (r *Registry) Lookup(method string) (*MethodDescriptor, bool) {
	d, ok := r.methods[method]
	return d, ok
}

// classification describes how an unregistered method is treated, per
// spec.md §4.5 step 1.
type classification int

const (
	classMethodNotFound classification = iota
	classUnsupported
	classNotYetImplemented
)

// classifyUnregistered buckets a method absent from the registry.
func classifyUnregistered(method string) classification {
	switch {
	case strings.HasPrefix(method, "engine_"):
		return classUnsupported
	case strings.HasPrefix(method, "trace_"):
		return classNotYetImplemented
	case strings.HasPrefix(method, "debug_"):
		// debug_traceTransaction and debug_traceBlockByNumber are always
		// registered directly; anything else under debug_ reaching here
		// is deliberately unimplemented.
		return classNotYetImplemented
	default:
		return classMethodNotFound
	}
}
