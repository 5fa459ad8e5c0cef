package debugapi

import (
	"context"
	"math/big"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// tinybarToWeibarCoef mirrors the eth package's conversion constant; kept
// package-local to avoid a cross-package dependency for one constant.
const tinybarToWeibarCoef = 10_000_000_000

const prestateCacheTTL = 5 * time.Second

// tracePrestate implements the prestateTracer, only reachable at block
// scope per the single-transaction rejection in TraceTransaction.
func (s *Service) tracePrestate(ctx context.Context, rc *rpctypes.RequestContext, txHashOrID string, cfg TracerConfig) (map[string]rpctypes.PrestateAccount, error) {
	cacheKey := "trace:prestate:" + txHashOrID + ":" + boolKey(cfg.OnlyTopCall)
	if s.cache != nil {
		var cached map[string]rpctypes.PrestateAccount
		if ok, err := s.cache.GetJSON(cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	actions, err := s.mirror.GetContractResultActions(ctx, rc.RequestID, txHashOrID)
	if err != nil {
		return nil, gatewayerrors.Internal(rc.RequestID, err)
	}
	if cfg.OnlyTopCall && len(actions) > 0 {
		top := actions[0]
		actions = []mirror.Action{top}
	}

	addrTimestamp := make(map[string]string)
	for _, a := range actions {
		if a.CallDepth == 0 || !cfg.OnlyTopCall {
			addrTimestamp[a.From] = ""
			addrTimestamp[a.To] = ""
		}
	}
	delete(addrTimestamp, "")

	result := make(map[string]rpctypes.PrestateAccount, len(addrTimestamp))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for addr := range addrTimestamp {
		addr := addr
		g.Go(func() error {
			acct, err := s.resolvePrestateAccount(gctx, rc, addr)
			if err != nil {
				return err
			}
			mu.Lock()
			result[addr] = acct
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, gatewayerrors.Internal(rc.RequestID, err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(cacheKey, result, prestateCacheTTL)
	}
	return result, nil
}

// resolvePrestateAccount assembles {balance, nonce, code, storage} for a
// single address, resolving entity type first to decide whether to
// fetch contract state or treat it as a plain account.
func (s *Service) resolvePrestateAccount(ctx context.Context, rc *rpctypes.RequestContext, address string) (rpctypes.PrestateAccount, error) {
	resolved, err := s.mirror.ResolveEntityType(ctx, rc.RequestID, address, []mirror.EntityType{mirror.EntityContract, mirror.EntityAccount}, "")
	if err != nil {
		return rpctypes.PrestateAccount{}, err
	}
	if resolved == nil {
		return rpctypes.PrestateAccount{Balance: "0x0", Code: "0x", Storage: map[string]string{}}, nil
	}

	switch resolved.Type {
	case mirror.EntityContract:
		acc, err := s.mirror.GetBalanceAtTimestamp(ctx, rc.RequestID, address, "")
		if err != nil {
			return rpctypes.PrestateAccount{}, err
		}
		states, err := s.mirror.GetContractState(ctx, rc.RequestID, address)
		if err != nil {
			return rpctypes.PrestateAccount{}, err
		}
		storage := make(map[string]string, len(states))
		for _, st := range states {
			storage[st.Slot] = st.Value
		}
		balance := "0x0"
		var nonce uint64
		if acc != nil {
			balance = normalizeBalanceHex(acc.Balance.Balance)
			if acc.EthereumNonce != nil {
				nonce = *acc.EthereumNonce
			}
		}
		code := "0x"
		if cs, ok := resolved.Entity.(*mirror.ContractSummary); ok && cs.Bytecode != "" {
			code = cs.Bytecode
		}
		return rpctypes.PrestateAccount{Balance: balance, Nonce: nonce, Code: code, Storage: storage}, nil
	default:
		acc, ok := resolved.Entity.(*mirror.Account)
		if !ok || acc == nil {
			return rpctypes.PrestateAccount{Balance: "0x0", Code: "0x", Storage: map[string]string{}}, nil
		}
		var nonce uint64
		if acc.EthereumNonce != nil {
			nonce = *acc.EthereumNonce
		}
		return rpctypes.PrestateAccount{
			Balance: normalizeBalanceHex(acc.Balance.Balance),
			Nonce:   nonce,
			Code:    "0x",
			Storage: map[string]string{},
		}, nil
	}
}

// normalizeBalanceHex handles the edge case called out in the design
// notes: the upstream's balance field, passed through a hex-conversion
// helper, may yield an empty or bare-zero string; normalize both to
// "0x0".
func normalizeBalanceHex(tinybar int64) string {
	if tinybar == 0 {
		return "0x0"
	}
	weibar := new(big.Int).Mul(big.NewInt(tinybar), big.NewInt(tinybarToWeibarCoef))
	return "0x" + weibar.Text(16)
}

func boolKey(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
