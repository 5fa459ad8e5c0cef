package gatewayerrors

import (
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// standardErrorSelector is the 4-byte selector for Error(string), the
// Solidity-generated revert reason encoding.
var standardErrorSelector = []byte{0x08, 0xc3, 0x79, 0xa0}

// DecodeRevert attempts to decode a contract-revert payload as the
// standard Error(string) selector, falling back to a generic
// custom-error-with-string-arg decode, and finally passing the raw bytes
// through unmodified when neither shape matches.
//
// The decoded human message, when present, replaces the raw payload in the
// constructed error's message while the raw payload remains available in
// Data under "data" for callers that need the untouched bytes.
func DecodeRevert(raw []byte) (reason string, ok bool) {
	if len(raw) < 4 {
		return "", false
	}
	selector := raw[:4]
	payload := raw[4:]

	if bytesEqual(selector, standardErrorSelector) {
		if s, decodeErr := decodeABIString(payload); decodeErr == nil {
			return s, true
		}
		return "", false
	}

	// Custom-error selector followed by an ABI-encoded string: same layout
	// as Error(string) but with an application-defined selector, so the
	// decode step is identical; only recognition of the selector differs.
	if s, decodeErr := decodeABIString(payload); decodeErr == nil && len(s) > 0 {
		return s, true
	}

	return "", false
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// decodeABIString decodes a single ABI-encoded `string` parameter from a
// word-aligned payload: offset word, length word, then the UTF-8 bytes.
func decodeABIString(payload []byte) (string, error) {
	strTy, err := abi.NewType("string", "", nil)
	if err != nil {
		return "", err
	}
	args := abi.Arguments{{Type: strTy}}
	vals, err := args.Unpack(payload)
	if err != nil {
		return "", err
	}
	if len(vals) != 1 {
		return "", errNotRevert
	}
	s, ok := vals[0].(string)
	if !ok {
		return "", errNotRevert
	}
	return s, nil
}

// RevertSelectorFromData extracts the raw revert selector (if present) as a
// hex string, for diagnostics and to recognize the standard selector.
func RevertSelectorFromData(raw []byte) string {
	if len(raw) < 4 {
		return ""
	}
	return hexutil.Encode(raw[:4])
}
