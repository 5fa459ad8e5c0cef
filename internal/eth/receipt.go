package eth

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// systemContractCreationSelectors is the closed list of function
// selectors the native system contracts use to front-run a contract
// creation; when a contract result's function_parameters start with one
// of these, the created address is recovered from call_result rather
// than the contract result's own address field.
var systemContractCreationSelectors = map[string]bool{
	"0x00000000": true, // HTS createFungibleToken-style system proxies
	"0xea83e4e8": true,
}

// GetTransactionReceipt implements eth_getTransactionReceipt.
func (s *Service) GetTransactionReceipt(ctx context.Context, rc *rpctypes.RequestContext, hash string) (*rpctypes.Receipt, error) {
	cr, err := s.mirror.GetContractResult(ctx, rc.RequestID, hash)
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	if cr == nil {
		logs, err := s.mirror.GetLogsByTransactionHash(ctx, rc.RequestID, hash)
		if err != nil {
			return nil, s.wrapUpstream(rc, err)
		}
		if len(logs) == 0 {
			return nil, nil
		}
		return s.syntheticReceipt(ctx, rc, logs)
	}
	return s.receiptFromContractResult(ctx, rc, *cr)
}

// GetBlockReceipts implements eth_getBlockReceipts: the receipt batch for
// every transaction in a block, including synthetic receipts for
// unmatched logs.
func (s *Service) GetBlockReceipts(ctx context.Context, rc *rpctypes.RequestContext, blockHashOrNumber string) ([]rpctypes.Receipt, error) {
	var b *mirror.Block
	var err error
	if strings.HasPrefix(blockHashOrNumber, "0x") && len(blockHashOrNumber) == 66 {
		b, err = s.mirror.GetBlockByHash(ctx, rc.RequestID, blockHashOrNumber)
	} else {
		n, perr := hexutil.DecodeUint64(blockHashOrNumber)
		if perr != nil {
			return nil, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "invalid block identifier", nil)
		}
		b, err = s.mirror.GetBlockByNumber(ctx, rc.RequestID, int64(n))
	}
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	if b == nil {
		return nil, nil
	}

	results, err := s.mirror.GetContractResultsByBlock(ctx, rc.RequestID, b.Hash)
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	logs, err := s.mirror.GetLogs(ctx, rc.RequestID, mirror.LogsQuery{FromTime: b.Timestamp.From, ToTime: b.Timestamp.To})
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	logsByTxHash := make(map[string][]mirror.Log)
	for _, l := range logs {
		logsByTxHash[l.TransactionHash] = append(logsByTxHash[l.TransactionHash], l)
	}

	seen := make(map[string]bool, len(results))
	var out []rpctypes.Receipt
	for _, r := range results {
		if isSyntheticCandidate(r.Result) {
			continue
		}
		seen[r.Hash] = true
		rec, err := s.buildReceipt(ctx, rc, r, logsByTxHash[r.Hash])
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	for h, group := range logsByTxHash {
		if seen[h] || len(group) == 0 {
			continue
		}
		rec := buildSyntheticReceiptObject(group)
		out = append(out, *rec)
	}
	return out, nil
}

func (s *Service) receiptFromContractResult(ctx context.Context, rc *rpctypes.RequestContext, cr mirror.ContractResult) (*rpctypes.Receipt, error) {
	logs, err := s.mirror.GetLogsByTransactionHash(ctx, rc.RequestID, cr.Hash)
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	return s.buildReceipt(ctx, rc, cr, logs)
}

func (s *Service) buildReceipt(ctx context.Context, rc *rpctypes.RequestContext, cr mirror.ContractResult, logs []mirror.Log) (*rpctypes.Receipt, error) {
	from, to, err := s.resolveAddressPair(ctx, rc, cr.From, derefOrEmpty(cr.To))
	if err != nil {
		return nil, err
	}
	if from == "" {
		return nil, gatewayerrors.Internal(rc.RequestID, errUnresolvedFrom)
	}

	effectiveGasPrice, err := s.currentGasPriceForBlock(ctx, rc, cr.Timestamp)
	if err != nil {
		return nil, err
	}

	contractAddress := resolveContractAddress(cr)

	status := rpctypes.ZeroHex
	if cr.Status == "0x1" {
		status = "0x1"
	}

	txType := receiptType(cr.Type)

	var toPtr *string
	if to != "" {
		toPtr = &to
	}

	rpcLogs := make([]rpctypes.Log, 0, len(logs))
	for _, l := range logs {
		rpcLogs = append(rpcLogs, toRPCLog(l))
	}

	return &rpctypes.Receipt{
		BlockHash:         cr.BlockHash,
		BlockNumber:       quantityHex(cr.BlockNumber),
		From:              from,
		To:                toPtr,
		CumulativeGasUsed: quantityHex(cr.GasUsed),
		GasUsed:           quantityHex(cr.GasUsed),
		ContractAddress:   contractAddress,
		Logs:              rpcLogs,
		LogsBloom:         rpctypes.EmptyBloomHex,
		TransactionHash:   cr.Hash,
		TransactionIndex:  quantityHex(int64(cr.TransactionIndex)),
		EffectiveGasPrice: effectiveGasPrice,
		Root:              nil,
		Status:            status,
		Type:              quantityHex(int64(txType)),
	}, nil
}

// resolveContractAddress derives contractAddress per §4.6.3: when the
// first 4 bytes of function_parameters match a system-contract creation
// selector, the created address is the last 20 bytes of call_result;
// otherwise it falls through to nil (the mirror's own address field is
// attached by the caller when applicable, e.g. a CREATE-type result).
func resolveContractAddress(cr mirror.ContractResult) *string {
	selector := firstFourBytes(cr.FunctionParameters)
	if selector != "" && systemContractCreationSelectors[selector] {
		if addr := lastTwentyBytes(cr.CallResult); addr != "" {
			return &addr
		}
	}
	if cr.To == nil {
		return nil
	}
	return cr.To
}

func firstFourBytes(hex string) string {
	if len(hex) < 10 {
		return ""
	}
	return hex[:10]
}

func lastTwentyBytes(hex string) string {
	if len(hex) < 42 {
		return ""
	}
	return "0x" + hex[len(hex)-40:]
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (s *Service) syntheticReceipt(ctx context.Context, rc *rpctypes.RequestContext, logs []mirror.Log) (*rpctypes.Receipt, error) {
	return buildSyntheticReceiptObject(logs), nil
}

func buildSyntheticReceiptObject(logs []mirror.Log) *rpctypes.Receipt {
	first := logs[0]
	addr := first.Address
	rpcLogs := make([]rpctypes.Log, 0, len(logs))
	for _, l := range logs {
		rpcLogs = append(rpcLogs, toRPCLog(l))
	}
	return &rpctypes.Receipt{
		BlockHash:         first.BlockHash,
		BlockNumber:       quantityHex(first.BlockNumber),
		From:              addr,
		To:                &addr,
		CumulativeGasUsed: rpctypes.ZeroHex,
		GasUsed:            rpctypes.ZeroHex,
		ContractAddress:   nil,
		Logs:              rpcLogs,
		LogsBloom:         rpctypes.EmptyBloomHex,
		TransactionHash:   first.TransactionHash,
		TransactionIndex:  quantityHex(int64(first.TransactionIndex)),
		EffectiveGasPrice: rpctypes.ZeroHex,
		Root:              nil,
		Status:            "0x1",
		Type:              "0x2",
	}
}

type unresolvedFromErr struct{}

func (*unresolvedFromErr) Error() string { return "could not resolve transaction sender address" }

var errUnresolvedFrom = &unresolvedFromErr{}
