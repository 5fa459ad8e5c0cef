package debugapi

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

const blockTraceCacheTTL = 5 * time.Second

// BlockTraceEntry pairs a transaction hash with its tracer result.
type BlockTraceEntry struct {
	TxHash string      `json:"txHash"`
	Result interface{} `json:"result"`
}

// TraceBlockByNumber implements debug_traceBlockByNumber: resolves the
// block, fetches all contract results in its timestamp range, filters
// out WRONG_NONCE results, and runs the configured tracer (default call
// tracer) over each remaining result.
func (s *Service) TraceBlockByNumber(ctx context.Context, rc *rpctypes.RequestContext, block mirror.Block, cfg TracerConfig, isConcreteBlockParam bool) ([]BlockTraceEntry, error) {
	if !s.debugAPIEnabled {
		return nil, gatewayerrors.UnsupportedMethod(rc.RequestID)
	}
	if cfg.Tracer == "" {
		cfg.Tracer = defaultForBlock
	}

	cacheKey := "trace:block:" + block.Hash + ":" + string(cfg.Tracer)
	if isConcreteBlockParam && s.cache != nil {
		var cached []BlockTraceEntry
		if ok, err := s.cache.GetJSON(cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	results, err := s.mirror.GetContractResultsByBlock(ctx, rc.RequestID, block.Hash)
	if err != nil {
		return nil, gatewayerrors.Internal(rc.RequestID, err)
	}

	filtered := make([]mirror.ContractResult, 0, len(results))
	for _, r := range results {
		if strings.EqualFold(r.Result, "WRONG_NONCE") {
			continue
		}
		filtered = append(filtered, r)
	}

	entries := make([]BlockTraceEntry, len(filtered))
	g, gctx := errgroup.WithContext(ctx)
	for i, r := range filtered {
		i, r := i, r
		g.Go(func() error {
			result, err := s.traceOneResult(gctx, rc, r, cfg)
			if err != nil {
				return err
			}
			entries[i] = BlockTraceEntry{TxHash: r.Hash, Result: result}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, gatewayerrors.Internal(rc.RequestID, err)
	}

	if isConcreteBlockParam && s.cache != nil {
		_ = s.cache.SetJSON(cacheKey, entries, blockTraceCacheTTL)
	}
	return entries, nil
}

// blockTagAliases mirrors the non-numeric block tags TraceBlockByNumber's
// caller must resolve before calling it, since this package has no
// chain-head concept of its own beyond "ask the mirror for latest."
var blockTagAliases = map[string]bool{
	"latest": true, "pending": true, "safe": true, "finalized": true,
}

// ResolveBlockParam resolves a debug_traceBlockByNumber block parameter
// (a tag or a 0x-quantity) into the mirror block record, reporting
// whether the param named a concrete block number (tags are never safe
// to cache the resulting trace under).
func (s *Service) ResolveBlockParam(ctx context.Context, rc *rpctypes.RequestContext, param string, toNumber func(string) (int64, error)) (mirror.Block, bool, error) {
	isConcrete := param != "" && !blockTagAliases[param] && param != "earliest"
	number, err := toNumber(param)
	if err != nil {
		return mirror.Block{}, false, err
	}
	b, err := s.mirror.GetBlockByNumber(ctx, rc.RequestID, number)
	if err != nil {
		return mirror.Block{}, false, gatewayerrors.Internal(rc.RequestID, err)
	}
	if b == nil {
		return mirror.Block{}, false, gatewayerrors.ResourceNotFound(rc.RequestID, "block")
	}
	return *b, isConcrete, nil
}

func (s *Service) traceOneResult(ctx context.Context, rc *rpctypes.RequestContext, r mirror.ContractResult, cfg TracerConfig) (interface{}, error) {
	switch cfg.Tracer {
	case OpcodeLogger:
		if !s.opcodeLoggerEnabled {
			return nil, nil
		}
		return s.traceOpcode(ctx, rc, r.Hash, cfg)
	case PrestateTracer:
		return s.tracePrestate(ctx, rc, r.Hash, cfg)
	default:
		return s.traceCall(ctx, rc, r.Hash, cfg)
	}
}
