package eth

import (
	"context"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// blockTagAliases are the non-numeric block parameter values that all
// resolve to the chain head in this gateway's simplified fork-choice
// model (there is no notion of safe/finalized distinct from latest
// against a mirror-backed read path).
var blockTagAliases = map[string]bool{
	"latest": true, "pending": true, "safe": true, "finalized": true,
}

// ChainID implements eth_chainId.
func (s *Service) ChainID() string {
	return quantityHexUint64(s.chainID)
}

// BlockNumber implements eth_blockNumber.
func (s *Service) BlockNumber(ctx context.Context, rc *rpctypes.RequestContext) (string, error) {
	latest, err := s.mirror.GetLatestBlock(ctx, rc.RequestID)
	if err != nil {
		return "", s.wrapUpstream(rc, err)
	}
	if latest == nil {
		return rpctypes.ZeroHex, nil
	}
	return quantityHex(latest.Number), nil
}

// ResolveBlockNumberOrTag turns a block parameter (a tag, or an already-
// validated 0x-prefixed quantity) into a concrete block number, per
// §4.6.1's "tag resolution happens before the handler is called" split.
func (s *Service) ResolveBlockNumberOrTag(ctx context.Context, rc *rpctypes.RequestContext, param string) (int64, error) {
	if param == "" || blockTagAliases[param] {
		latest, err := s.mirror.GetLatestBlock(ctx, rc.RequestID)
		if err != nil {
			return 0, s.wrapUpstream(rc, err)
		}
		if latest == nil {
			return 0, gatewayerrors.ResourceNotFound(rc.RequestID, "block")
		}
		return latest.Number, nil
	}
	if param == "earliest" {
		return 0, nil
	}
	n, err := hexutil.DecodeUint64(param)
	if err != nil {
		return 0, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "invalid block number", nil)
	}
	return int64(n), nil
}

// GetBlockTransactionCountByHash implements
// eth_getBlockTransactionCountByHash.
func (s *Service) GetBlockTransactionCountByHash(ctx context.Context, rc *rpctypes.RequestContext, hash string) (string, error) {
	b, err := s.mirror.GetBlockByHash(ctx, rc.RequestID, hash)
	if err != nil {
		return "", s.wrapUpstream(rc, err)
	}
	if b == nil {
		return "", nil
	}
	return quantityHex(int64(b.Count)), nil
}

// GetBlockTransactionCountByNumber implements
// eth_getBlockTransactionCountByNumber.
func (s *Service) GetBlockTransactionCountByNumber(ctx context.Context, rc *rpctypes.RequestContext, number int64) (string, error) {
	b, err := s.mirror.GetBlockByNumber(ctx, rc.RequestID, number)
	if err != nil {
		return "", s.wrapUpstream(rc, err)
	}
	if b == nil {
		return "", nil
	}
	return quantityHex(int64(b.Count)), nil
}

// FeeHistoryResult is the eth_feeHistory response shape.
type FeeHistoryResult struct {
	OldestBlock   string       `json:"oldestBlock"`
	BaseFeePerGas []string     `json:"baseFeePerGas"`
	GasUsedRatio  []float64    `json:"gasUsedRatio"`
	Reward        [][]string  `json:"reward,omitempty"`
}

// FeeHistory implements eth_feeHistory. The upstream has no per-block fee
// market, so every entry in the window reports the single current network
// gas price and a fixed gas-used ratio; the reward matrix is all-zero
// entries at the requested percentiles, matching the degenerate fee
// market this gateway fronts.
func (s *Service) FeeHistory(ctx context.Context, rc *rpctypes.RequestContext, blockCount int, newestBlock int64, rewardPercentiles []float64) (*FeeHistoryResult, error) {
	if blockCount <= 0 {
		blockCount = 1
	}
	price, err := s.fetchNetworkGasPrice(ctx, rc, "")
	if err != nil {
		return nil, err
	}

	oldest := newestBlock - int64(blockCount) + 1
	if oldest < 0 {
		oldest = 0
		blockCount = int(newestBlock) + 1
	}

	result := &FeeHistoryResult{
		OldestBlock:   quantityHex(oldest),
		BaseFeePerGas: make([]string, blockCount+1),
		GasUsedRatio:  make([]float64, blockCount),
	}
	for i := range result.BaseFeePerGas {
		result.BaseFeePerGas[i] = price
	}
	for i := range result.GasUsedRatio {
		result.GasUsedRatio[i] = 0.5
	}
	if len(rewardPercentiles) > 0 {
		result.Reward = make([][]string, blockCount)
		for i := range result.Reward {
			row := make([]string, len(rewardPercentiles))
			for j := range row {
				row[j] = rpctypes.ZeroHex
			}
			result.Reward[i] = row
		}
	}
	return result, nil
}

// MaxPriorityFeePerGas implements eth_maxPriorityFeePerGas. The upstream's
// gas price already prices ordering in full, so the suggested tip is
// always zero.
func (s *Service) MaxPriorityFeePerGas() string {
	return rpctypes.ZeroHex
}

// Async reports whether eth_sendRawTransaction should submit without
// waiting for mirror reconciliation, per the UseAsyncTxProcessing switch.
func (s *Service) Async() bool {
	return s.cfg.UseAsyncTxProcessing
}

