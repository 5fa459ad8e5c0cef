// Package dispatch implements the method registry and dispatcher (C5):
// method lookup, parameter schema validation, parameter layout
// rearrangement, cache-policy and rate-limit consultation, and error
// normalization at the JSON-RPC boundary. Grounded on the teacher's
// `server/json_rpc.go` registry-builder pattern (a table mapping
// namespace to service, registered once into the RPC server), made one
// level more granular here since per-method cache/rate-limit/layout
// policy needs method-level, not namespace-level, metadata.
package dispatch

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
)

// ParamType names the semantic validator applied to one parameter
// position, per spec.md §4.5.
type ParamType string

const (
	ParamAddress            ParamType = "address"
	ParamHex                ParamType = "hex"
	ParamBoolean            ParamType = "boolean"
	ParamBlockNumber        ParamType = "blockNumber"
	ParamBlockNumberOrHash  ParamType = "blockNumberOrHash"
	ParamTransactionHash    ParamType = "transactionHash"
	ParamTransactionHashOrID ParamType = "transactionHashOrId"
	ParamTransactionCall    ParamType = "transactionCallObject"
	ParamGetLogsParams      ParamType = "getLogsParams"
	ParamTracerConfig       ParamType = "tracerConfigWrapper"
)

// ParamSpec describes one positional parameter.
type ParamSpec struct {
	Type       ParamType
	Required   bool
	CustomErrMsg string
}

// Schema is the ordered parameter schema for one method. Extra params
// beyond len(Schema) are rejected unless AllowExtra is set on the
// descriptor.
type Schema []ParamSpec

// blockTags are the recognized non-numeric block parameter values.
var blockTags = map[string]bool{
	"latest": true, "pending": true, "earliest": true, "safe": true, "finalized": true,
}

// ValidateParams checks raw JSON params against schema, returning a
// gatewayerrors.GatewayError on the first failure.
func ValidateParams(requestID string, schema Schema, params []json.RawMessage, allowExtra bool) error {
	if len(params) > len(schema) && !allowExtra {
		return gatewayerrors.InvalidParams(requestID, fmt.Sprintf("too many parameters: expected at most %d", len(schema)))
	}

	for i, spec := range schema {
		if i >= len(params) || isJSONNull(params[i]) {
			if spec.Required {
				return gatewayerrors.InvalidParams(requestID, spec.CustomErrMsg)
			}
			continue
		}
		if err := validateOne(requestID, spec, params[i]); err != nil {
			return err
		}
	}
	return nil
}

func isJSONNull(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}

func validateOne(requestID string, spec ParamSpec, raw json.RawMessage) error {
	var s string
	isString := json.Unmarshal(raw, &s) == nil

	switch spec.Type {
	case ParamAddress:
		if !isString || !common.IsHexAddress(s) {
			return invalidParam(requestID, spec, "invalid address")
		}
	case ParamHex:
		if !isString || !hexutil.Has0xPrefix(s) {
			return invalidParam(requestID, spec, "invalid hex value")
		}
	case ParamBoolean:
		var b bool
		if json.Unmarshal(raw, &b) != nil {
			return invalidParam(requestID, spec, "invalid boolean")
		}
	case ParamBlockNumber:
		if err := validateBlockNumber(s, isString); err != nil {
			return invalidParam(requestID, spec, err.Error())
		}
	case ParamBlockNumberOrHash:
		if err := validateBlockNumberOrHash(raw, s, isString); err != nil {
			return invalidParam(requestID, spec, err.Error())
		}
	case ParamTransactionHash, ParamTransactionHashOrID:
		if !isString || s == "" {
			return invalidParam(requestID, spec, "invalid transaction hash")
		}
	case ParamTransactionCall:
		var m map[string]interface{}
		if json.Unmarshal(raw, &m) != nil {
			return invalidParam(requestID, spec, "invalid transaction call object")
		}
	case ParamGetLogsParams:
		var m map[string]interface{}
		if json.Unmarshal(raw, &m) != nil {
			return invalidParam(requestID, spec, "invalid getLogs params")
		}
	case ParamTracerConfig:
		var m map[string]interface{}
		if len(raw) > 0 && !isJSONNull(raw) && json.Unmarshal(raw, &m) != nil {
			return invalidParam(requestID, spec, "invalid tracer config")
		}
	}
	return nil
}

func invalidParam(requestID string, spec ParamSpec, fallback string) error {
	msg := spec.CustomErrMsg
	if msg == "" {
		msg = fallback
	}
	return gatewayerrors.InvalidParams(requestID, msg)
}

func validateBlockNumber(s string, isString bool) error {
	if !isString {
		return fmt.Errorf("invalid block number")
	}
	if blockTags[s] {
		return nil
	}
	if _, err := hexutil.DecodeUint64(s); err != nil {
		return fmt.Errorf("invalid block number")
	}
	return nil
}

// blockNumberOrHash mirrors EIP-1898: {blockNumber} | {blockHash} | bare
// hex number | bare hash | tag.
func validateBlockNumberOrHash(raw json.RawMessage, s string, isString bool) error {
	if isString {
		if blockTags[s] {
			return nil
		}
		if common.IsHexAddress(s) {
			return fmt.Errorf("invalid block number or hash")
		}
		if len(s) == 66 && hexutil.Has0xPrefix(s) {
			return nil
		}
		if _, err := hexutil.DecodeUint64(s); err == nil {
			return nil
		}
		return fmt.Errorf("invalid block number or hash")
	}

	var obj struct {
		BlockNumber *string `json:"blockNumber"`
		BlockHash   *string `json:"blockHash"`
	}
	if json.Unmarshal(raw, &obj) != nil {
		return fmt.Errorf("invalid block number or hash")
	}
	if obj.BlockNumber == nil && obj.BlockHash == nil {
		return fmt.Errorf("invalid block number or hash")
	}
	return nil
}
