package dispatch

import (
	"context"
	"encoding/json"
	"time"

	"cosmossdk.io/log"

	"github.com/hiero-ledger/relay-gateway/internal/cache"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/metrics"
	"github.com/hiero-ledger/relay-gateway/internal/ratelimit"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// Dispatcher wires the registry to the shared cache and rate-limit
// substrate and runs the pipeline described in spec.md §4.5.
type Dispatcher struct {
	registry *Registry
	cache    *cache.Cache
	limiter  *ratelimit.Limiter
	logger   log.Logger
	metrics  metrics.Recorder
}

func New(registry *Registry, c *cache.Cache, limiter *ratelimit.Limiter, logger log.Logger) *Dispatcher {
	return &Dispatcher{registry: registry, cache: c, limiter: limiter, logger: logger}
}

// WithMetrics attaches a metrics.Recorder that observes every dispatch,
// cache lookup, and rate-limit rejection. Optional: a Dispatcher with no
// recorder attached simply skips recording.
func (d *Dispatcher) WithMetrics(r metrics.Recorder) *Dispatcher {
	d.metrics = r
	return d
}

// Dispatch runs one JSON-RPC call through validate → cache → rate-limit →
// layout → invoke → normalize, per spec.md §4.5.
func (d *Dispatcher) Dispatch(ctx context.Context, method string, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
	start := time.Now()
	result, err := d.dispatch(ctx, method, params, rc)
	if d.metrics != nil {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		d.metrics.RecordDispatch(method, time.Since(start), outcome)
	}
	return result, err
}

func (d *Dispatcher) dispatch(ctx context.Context, method string, params []json.RawMessage, rc *rpctypes.RequestContext) (interface{}, error) {
	desc, ok := d.registry.Lookup(method)
	if !ok {
		return nil, d.classifyMissing(rc.RequestID, method)
	}

	if err := ValidateParams(rc.RequestID, desc.Schema, params, desc.AllowExtra); err != nil {
		return nil, err
	}

	cacheKey := ""
	if desc.Cache.Enabled && (desc.Cache.Uncacheable == nil || !desc.Cache.Uncacheable(params)) {
		cacheKey = d.buildCacheKey(method, params)
		var cached json.RawMessage
		hit, _ := d.cache.GetJSON(cacheKey, &cached)
		if d.metrics != nil {
			d.metrics.RecordCacheResult(method, hit)
		}
		if hit {
			var out interface{}
			if err := json.Unmarshal(cached, &out); err == nil {
				return out, nil
			}
		}
	}

	override := ratelimit.Limit{Max: desc.RateLimit.Max, Window: desc.RateLimit.Window}
	if d.limiter != nil && !d.limiter.AllowOverride(rc.IP, method, override) {
		if d.metrics != nil {
			d.metrics.RecordRateLimited(method)
		}
		return nil, gatewayerrors.RateLimited(rc.RequestID, method)
	}

	effective := d.applyLayout(desc.Layout, params)

	result, err := desc.Handler(ctx, effective, rc)
	if err != nil {
		return nil, d.normalize(rc.RequestID, err)
	}

	if cacheKey != "" {
		ttl := desc.Cache.TTL
		if ttl <= 0 {
			ttl = defaultCacheTTL
		}
		if err := d.cache.SetJSON(cacheKey, result, ttl); err != nil {
			d.logger.Debug("failed to cache dispatch result", "method", method, "error", err)
		}
	}

	return result, nil
}

const defaultCacheTTL = 20 * time.Second

func (d *Dispatcher) buildCacheKey(method string, params []json.RawMessage) string {
	args := make([]string, len(params))
	for i, p := range params {
		args[i] = string(p)
	}
	return cache.BuildKey(method, args...)
}

func (d *Dispatcher) applyLayout(layout ParamLayout, params []json.RawMessage) []json.RawMessage {
	if layout.Kind == LayoutContextOnly {
		return nil
	}
	return params
}

func (d *Dispatcher) classifyMissing(requestID, method string) error {
	switch classifyUnregistered(method) {
	case classUnsupported:
		return gatewayerrors.UnsupportedMethod(requestID)
	case classNotYetImplemented:
		return gatewayerrors.NotYetImplemented(requestID, method)
	default:
		return gatewayerrors.MethodNotFound(requestID, method)
	}
}

// normalize ensures every error leaving the dispatcher is a
// *gatewayerrors.GatewayError with the request id stamped exactly once,
// per spec.md §4.5 step 7 / §7.
func (d *Dispatcher) normalize(requestID string, err error) error {
	if err == nil {
		return nil
	}
	if gwErr, ok := err.(*gatewayerrors.GatewayError); ok {
		gwErr.Message = gatewayerrors.WithRequestID(requestID, gwErr.Message)
		return gwErr
	}
	return gatewayerrors.Internal(requestID, err)
}
