// Package handlers binds the eth and debugapi services into the
// dispatch registry: one MethodDescriptor per supported JSON-RPC method,
// decoding positional params into the service-level call shapes and
// translating nil/empty results into the JSON-RPC null the Ethereum
// Execution API expects. Grounded on the teacher's own namespace-table
// construction in server/json_rpc.go, generalized from "bind a
// struct-method namespace" to "bind one closure per method" since this
// gateway's methods take resolved, pre-validated positional params rather
// than a Go-typed RPC receiver.
package handlers

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
)

func decodeHexQuantity(s string) (int64, error) {
	n, err := hexutil.DecodeUint64(s)
	if err != nil {
		return 0, err
	}
	return int64(n), nil
}

func paramAt(params []json.RawMessage, i int) (json.RawMessage, bool) {
	if i < 0 || i >= len(params) {
		return nil, false
	}
	raw := params[i]
	if len(raw) == 0 || string(raw) == "null" {
		return nil, false
	}
	return raw, true
}

func decodeString(requestID string, params []json.RawMessage, i int) (string, error) {
	raw, ok := paramAt(params, i)
	if !ok {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", gatewayerrors.InvalidParams(requestID, "expected a string parameter")
	}
	return s, nil
}

func invalidIndex(requestID string) error {
	return gatewayerrors.InvalidParams(requestID, "invalid transaction index")
}

func invalidBlockParam(requestID string) error {
	return gatewayerrors.InvalidParams(requestID, "invalid block number")
}

func invalidRawTx(requestID string) error {
	return gatewayerrors.InvalidParams(requestID, "invalid raw transaction bytes")
}

func decodeBool(params []json.RawMessage, i int, def bool) bool {
	raw, ok := paramAt(params, i)
	if !ok {
		return def
	}
	var b bool
	if json.Unmarshal(raw, &b) != nil {
		return def
	}
	return b
}

// txCallObject is the decoded shape of eth_call/eth_estimateGas's first
// positional parameter.
type txCallObject struct {
	From     string `json:"from"`
	To       string `json:"to"`
	Data     string `json:"data"`
	Input    string `json:"input"`
	Gas      string `json:"gas"`
	GasPrice string `json:"gasPrice"`
	Value    string `json:"value"`
}

func decodeTxCallObject(requestID string, params []json.RawMessage, i int) (txCallObject, error) {
	raw, ok := paramAt(params, i)
	if !ok {
		return txCallObject{}, gatewayerrors.InvalidParams(requestID, "a transaction call object is required")
	}
	var obj txCallObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return txCallObject{}, gatewayerrors.InvalidParams(requestID, "invalid transaction call object")
	}
	return obj, nil
}

// getLogsObject is the decoded shape of eth_getLogs's sole parameter.
type getLogsObject struct {
	BlockHash string        `json:"blockHash"`
	FromBlock string        `json:"fromBlock"`
	ToBlock   string        `json:"toBlock"`
	Address   interface{}   `json:"address"`
	Topics    []interface{} `json:"topics"`
}

func decodeGetLogsObject(requestID string, params []json.RawMessage, i int) (getLogsObject, error) {
	raw, ok := paramAt(params, i)
	if !ok {
		return getLogsObject{}, gatewayerrors.InvalidParams(requestID, "getLogs filter object is required")
	}
	var obj getLogsObject
	if err := json.Unmarshal(raw, &obj); err != nil {
		return getLogsObject{}, gatewayerrors.InvalidParams(requestID, "invalid getLogs filter object")
	}
	return obj, nil
}

// addressList normalizes getLogsObject.Address, which may be absent, a
// single string, or an array of strings.
func addressList(v interface{}) []string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return []string{t}
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// flattenTopics renders the getLogs topics array (each entry either null,
// a string, or an array of alternatives) into the mirror query's
// per-position OR-group shape; null/absent entries become an empty group
// so positional indexing (topic0, topic1, ...) is preserved.
func flattenTopics(topics []interface{}) [][]string {
	out := make([][]string, len(topics))
	for i, t := range topics {
		switch v := t.(type) {
		case string:
			out[i] = []string{v}
		case []interface{}:
			group := make([]string, 0, len(v))
			for _, e := range v {
				if s, ok := e.(string); ok {
					group = append(group, s)
				}
			}
			out[i] = group
		}
	}
	return out
}

// tracerConfigObject is the decoded shape of debug_traceTransaction and
// debug_traceBlockByNumber's trailing tracer-config parameter.
type tracerConfigObject struct {
	Tracer         string `json:"tracer"`
	TracerConfig   struct {
		OnlyTopCall    bool `json:"onlyTopCall"`
		EnableMemory   bool `json:"enableMemory"`
		DisableStack   bool `json:"disableStack"`
		DisableStorage bool `json:"disableStorage"`
	} `json:"tracerConfig"`
	OnlyTopCall    bool `json:"onlyTopCall"`
	EnableMemory   bool `json:"enableMemory"`
	DisableStack   bool `json:"disableStack"`
	DisableStorage bool `json:"disableStorage"`
}

func decodeTracerConfig(params []json.RawMessage, i int) tracerConfigObject {
	raw, ok := paramAt(params, i)
	if !ok {
		return tracerConfigObject{}
	}
	var obj tracerConfigObject
	_ = json.Unmarshal(raw, &obj)
	return obj
}
