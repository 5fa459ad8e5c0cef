package eth

import (
	"context"
	"crypto/sha1" //nolint:gosec // cache fingerprint only, not a security boundary
	"encoding/hex"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

const callCacheTTLSeconds = 5

// CallRequest is the normalized eth_call / eth_estimateGas transaction
// object, after data/input reconciliation and address validation.
type CallRequest struct {
	From     string
	To       string
	Data     string
	Gas      int64
	GasPrice string
	Value    int64 // tinybar, after weibar->tinybar conversion
	Block    string
}

// NormalizeCallRequest reconciles the data/input aliasing rule (input
// wins when both are present and differ) and ensures From is populated
// for value-bearing calls.
func NormalizeCallRequest(from, to, data, input string, value int64) (CallRequest, error) {
	payload := data
	if input != "" {
		payload = input
	}
	if to != "" && !common.IsHexAddress(to) {
		return CallRequest{}, errInvalidAddress
	}
	if from != "" && !common.IsHexAddress(from) {
		return CallRequest{}, errInvalidAddress
	}
	return CallRequest{From: from, To: to, Data: payload, Value: value}, nil
}

var errInvalidAddress = &invalidAddressErr{}

type invalidAddressErr struct{}

func (*invalidAddressErr) Error() string { return "invalid address" }

// Call implements eth_call: validate, normalize, route to the consensus
// collaborator or the mirror's contract-call endpoint, cache by a
// (from,to,sha1(data)) fingerprint.
func (s *Service) Call(ctx context.Context, rc *rpctypes.RequestContext, req CallRequest) (string, error) {
	fingerprint := callFingerprint(req.From, req.To, req.Data)
	if s.cache != nil {
		var cached string
		if ok, err := s.cache.GetJSON(fingerprint, &cached); err == nil && ok {
			return cached, nil
		}
	}

	gasCap := req.Gas
	if s.cfg.MaxGasPerCall > 0 && (gasCap == 0 || gasCap > s.cfg.MaxGasPerCall) {
		gasCap = s.cfg.MaxGasPerCall
	}

	var result string
	if s.cfg.UseConsensusForCalls && s.consensus != nil {
		r, err := s.callViaConsensus(ctx, rc, req, gasCap)
		if err != nil {
			return "", err
		}
		result = r
	} else {
		r, err := s.callViaMirror(ctx, rc, req, gasCap)
		if err != nil {
			return "", err
		}
		result = r
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(fingerprint, result, callCacheTTLSeconds*1e9)
	}
	return result, nil
}

// callViaMirror routes eth_call to the mirror's contract-call endpoint.
func (s *Service) callViaMirror(ctx context.Context, rc *rpctypes.RequestContext, req CallRequest, gasCap int64) (string, error) {
	resp, err := s.mirror.Call(ctx, rc.RequestID, mirror.CallRequest{
		From:     req.From,
		To:       req.To,
		Data:     req.Data,
		Gas:      gasCap,
		GasPrice: req.GasPrice,
		Value:    req.Value,
		Block:    req.Block,
	})
	if err != nil {
		return "", s.classifyCallError(rc, err)
	}
	if resp == nil {
		return "0x", nil
	}
	if resp.ErrorMessage != "" {
		return "", s.classifyRevert(rc, resp)
	}
	return orZero(resp.Result), nil
}

// callViaConsensus routes eth_call to the consensus collaborator instead
// of the mirror, per §4.6.6's configuration-gated dispatch.
func (s *Service) callViaConsensus(ctx context.Context, rc *rpctypes.RequestContext, req CallRequest, gasCap int64) (string, error) {
	out, err := s.consensus.Call(ctx, req.From, req.To, common.FromHex(req.Data), uint64(gasCap), req.Block)
	if err != nil {
		return "", gatewayerrors.Internal(rc.RequestID, err)
	}
	return hexutil.Encode(out), nil
}

func callFingerprint(from, to, data string) string {
	sum := sha1.Sum([]byte(data)) //nolint:gosec
	return "call:" + from + ":" + to + ":" + hex.EncodeToString(sum[:])
}

// classifyCallError applies the upstream error handling order from
// §4.6.6: explicit invalid-transaction markers become an empty result at
// the handler layer (represented here as the sentinel emptyResultErr so
// callers can distinguish it from a genuine failure), 429/5xx propagate
// as upstream errors, everything else becomes internal.
func (s *Service) classifyCallError(rc *rpctypes.RequestContext, err error) error {
	var ue *mirror.UpstreamError
	if asUpstreamError(err, &ue) {
		if ue.StatusCode == 400 && (strings.Contains(ue.Body, "INVALID_TRANSACTION") || strings.Contains(ue.Body, "FAIL_INVALID")) {
			return errEmptyResult
		}
		return gatewayerrors.Upstream(rc.RequestID, ue.StatusCode, err)
	}
	return gatewayerrors.Internal(rc.RequestID, err)
}

var errEmptyResult = &emptyResultErr{}

type emptyResultErr struct{}

func (*emptyResultErr) Error() string { return "empty result" }

func asUpstreamError(err error, target **mirror.UpstreamError) bool {
	ue, ok := err.(*mirror.UpstreamError)
	if !ok {
		return false
	}
	*target = ue
	return true
}

// classifyRevert builds the typed contract-revert error, decoding the
// reason when the payload matches a recognized selector.
func (s *Service) classifyRevert(rc *rpctypes.RequestContext, resp *mirror.CallResponse) error {
	raw, err := hexDecodeLoose(resp.ErrorMessage)
	if err != nil {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeContractRevert, resp.ErrorMessage, map[string]interface{}{"data": resp.ErrorMessage})
	}
	reason, ok := gatewayerrors.DecodeRevert(raw)
	data := map[string]interface{}{"data": resp.ErrorMessage}
	if ok {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeContractRevert, "execution reverted: "+reason, data)
	}
	return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeContractRevert, "execution reverted", data)
}

func hexDecodeLoose(s string) ([]byte, error) {
	return common.FromHex(s), nil
}

// EstimateGas implements eth_estimateGas with the predefined-gas fallback
// table from §4.6.6.
func (s *Service) EstimateGas(ctx context.Context, rc *rpctypes.RequestContext, req CallRequest, recipientExists bool) (string, error) {
	resp, err := s.mirror.EstimateGas(ctx, rc.RequestID, mirror.CallRequest{
		From: req.From, To: req.To, Data: req.Data, Gas: req.Gas, GasPrice: req.GasPrice, Value: req.Value, Block: req.Block,
	})
	if err != nil {
		if s.cfg.EstimateGasThrows {
			var ue *mirror.UpstreamError
			if asUpstreamError(err, &ue) && strings.Contains(ue.Body, "CONTRACT_REVERT") {
				return "", s.classifyCallError(rc, err)
			}
		}
		return s.predefinedGasFallback(req, recipientExists), nil
	}
	if resp == nil || resp.Result == "" {
		return s.predefinedGasFallback(req, recipientExists), nil
	}
	return stripLeadingZeros(resp.Result), nil
}

const (
	gasSimpleTransferToExisting = 21_000
	gasHollowAccountCreation    = 587_000
	gasAverageContractCall      = 500_000
	gasDefaultFallback          = 400_000
)

// predefinedGasFallback implements the fallback table: simple transfer to
// an existing account, simple transfer to an unknown address (hollow
// account creation), contract creation (intrinsic gas of the code),
// contract call (average-call gas), or the default.
func (s *Service) predefinedGasFallback(req CallRequest, recipientExists bool) string {
	isTransfer := req.Data == "" || req.Data == "0x"
	switch {
	case req.To == "" && !isTransfer:
		return quantityHex(intrinsicGas(common.FromHex(req.Data)))
	case req.To != "" && isTransfer && recipientExists:
		return quantityHex(gasSimpleTransferToExisting)
	case req.To != "" && isTransfer && !recipientExists:
		return quantityHex(gasHollowAccountCreation)
	case req.To != "" && !isTransfer:
		return quantityHex(gasAverageContractCall)
	default:
		return quantityHex(gasDefaultFallback)
	}
}

// intrinsicGas computes base + zero_byte_cost*n_zero + nonzero_byte_cost*n_nonzero.
func intrinsicGas(data []byte) int64 {
	const base = 21_000
	const zeroCost = 4
	const nonzeroCost = 16
	var zero, nonzero int64
	for _, b := range data {
		if b == 0 {
			zero++
		} else {
			nonzero++
		}
	}
	return base + zero*zeroCost + nonzero*nonzeroCost
}
