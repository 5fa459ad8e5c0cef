// Package gatewayerrors implements the closed error taxonomy (C1): a stable
// set of JSON-RPC error codes, message templates and an optional data
// payload, plus the request-id prefixing and contract-revert decoding rules
// the rest of the gateway relies on.
//
// The codespace/code pairing follows the registered-error pattern used
// throughout the teacher codebase (cosmossdk.io/errors), generalized here
// to a flat JSON-RPC code space since the gateway has no ABCI codespace of
// its own.
package gatewayerrors

import (
	"fmt"
	"strings"

	errorsmod "cosmossdk.io/errors"
	"github.com/pkg/errors"
)

// Code is a JSON-RPC error code, either a standard JSON-RPC 2.0 code or one
// of this gateway's registered extension codes.
type Code int

const (
	CodeParseError     Code = -32700
	CodeInvalidRequest Code = -32600
	CodeMethodNotFound Code = -32601
	CodeInvalidParams  Code = -32602
	CodeInternal       Code = -32603

	CodeContractRevert  Code = 3
	CodeResourceNotFound Code = -32001
	CodeUnknownBlock     Code = -32000
	CodeBeyondHead       Code = -32000

	CodeNonceTooLow          Code = -32003
	CodeNonceTooHigh         Code = -32003
	CodeGasLimitTooHigh      Code = -32005
	CodeGasLimitTooLow       Code = -32005
	CodeGasPriceTooLow       Code = -32009
	CodeInsufficientBalance  Code = -32003
	CodeValueTooLow          Code = -32602
	CodeTxSizeExceeded       Code = -32005
	CodeCallDataSizeExceeded Code = -32005
	CodeUnsupportedTxType    Code = -32602
	CodeUnsupportedChainID   Code = -32000
	CodeInvalidContractAddr  Code = -32602

	CodeUpstreamFailure Code = -32020
	CodeRequestTimeout  Code = -32008

	CodeRateLimit Code = -32605

	CodeUnsupportedMethod   Code = -32601
	CodeNotYetImplemented   Code = -32601
	CodeBatchDisabled       Code = -32600
	CodeBatchTooLarge       Code = -32600
	CodeMissingFromBlock    Code = -32602
	CodeInvalidBlockRange   Code = -32602
	CodeBlockRangeTooLarge  Code = -32005
)

// GatewayError is the canonical error type returned by every handler and
// surfaced to the JSON-RPC boundary. It carries a stable code, a rendered
// message (already request-id prefixed once constructed via New/Wrap),
// optional structured data, and the request id it was built with.
type GatewayError struct {
	Code      Code
	Message   string
	Data      interface{}
	RequestID string
	cause     error
}

func (e *GatewayError) Error() string { return e.Message }

func (e *GatewayError) Unwrap() error { return e.cause }

// requestIDPrefix renders the idempotent request-id prefix for msg.
func requestIDPrefix(requestID string) string {
	return fmt.Sprintf("[Request ID: %s] ", requestID)
}

// WithRequestID prefixes msg with the request id exactly once. If the
// pattern already occurs anywhere in msg, msg is returned unchanged,
// making the helper idempotent under repeated application.
func WithRequestID(requestID, msg string) string {
	prefix := requestIDPrefix(requestID)
	if strings.Contains(msg, "[Request ID:") {
		return msg
	}
	return prefix + msg
}

// New constructs a GatewayError with the request id stamped into the
// message exactly once.
func New(requestID string, code Code, msg string, data interface{}) *GatewayError {
	return &GatewayError{
		Code:      code,
		Message:   WithRequestID(requestID, msg),
		Data:      data,
		RequestID: requestID,
	}
}

// Wrap attaches requestID/code to an existing error, preserving it as the
// Unwrap cause (grounded on the teacher's errorsmod.Wrapf pattern).
func Wrap(requestID string, code Code, cause error, msgf string, args ...interface{}) *GatewayError {
	base := errorsmod.Wrapf(cause, msgf, args...)
	return &GatewayError{
		Code:      code,
		Message:   WithRequestID(requestID, base.Error()),
		RequestID: requestID,
		cause:     cause,
	}
}

// MethodNotFound builds the protocol error for an unregistered method.
func MethodNotFound(requestID, method string) *GatewayError {
	return New(requestID, CodeMethodNotFound, fmt.Sprintf("Method %s not found", method), nil)
}

// UnsupportedMethod builds the error for methods intentionally excluded
// (the engine_ namespace and the explicit unsupported list).
func UnsupportedMethod(requestID string) *GatewayError {
	return New(requestID, CodeUnsupportedMethod, "Unsupported JSON-RPC method", nil)
}

// NotYetImplemented builds the error for trace_/debug_ methods other than
// the two debug tracing methods this gateway implements.
func NotYetImplemented(requestID, method string) *GatewayError {
	return New(requestID, CodeNotYetImplemented, fmt.Sprintf("Method %s is not implemented", method), nil)
}

// InvalidParams builds the error for a parameter that failed schema
// validation, using the schema's custom message when supplied.
func InvalidParams(requestID, customMsg string) *GatewayError {
	msg := customMsg
	if msg == "" {
		msg = "Invalid parameters"
	}
	return New(requestID, CodeInvalidParams, msg, nil)
}

// ResourceNotFound builds the error for an entity the mirror reports
// absent (404) or that the gateway explicitly could not locate. Never used
// as a fallback for unrelated failures.
func ResourceNotFound(requestID, what string) *GatewayError {
	return New(requestID, CodeResourceNotFound, fmt.Sprintf("%s not found", what), nil)
}

// RateLimited builds the rate-limit error, naming the offending method.
func RateLimited(requestID, method string) *GatewayError {
	return New(requestID, CodeRateLimit, fmt.Sprintf("IP rate limit exceeded for method %q", method), nil)
}

// RequestTimeout builds the error for an abandoned upstream call.
func RequestTimeout(requestID string) *GatewayError {
	return New(requestID, CodeRequestTimeout, "Request timeout", nil)
}

// Upstream builds the error wrapping a mirror upstream failure, preserving
// the original HTTP status in Data.
func Upstream(requestID string, httpStatus int, cause error) *GatewayError {
	msg := "Upstream request failed"
	if cause != nil {
		msg = cause.Error()
	}
	return &GatewayError{
		Code:      CodeUpstreamFailure,
		Message:   WithRequestID(requestID, msg),
		Data:      map[string]interface{}{"statusCode": httpStatus},
		RequestID: requestID,
		cause:     cause,
	}
}

// Internal builds a generic internal-error response, wrapping cause.
func Internal(requestID string, cause error) *GatewayError {
	msg := "Internal error"
	if cause != nil {
		msg = cause.Error()
	}
	return &GatewayError{Code: CodeInternal, Message: WithRequestID(requestID, msg), RequestID: requestID, cause: cause}
}

// NonceTooLow / NonceTooHigh embed the observed and required nonce values.
func NonceTooLow(requestID string, got, want uint64) *GatewayError {
	return New(requestID, CodeNonceTooLow, fmt.Sprintf("Nonce too low. Provided nonce: %d, current account nonce: %d", got, want), nil)
}

func NonceTooHigh(requestID string, got, want uint64) *GatewayError {
	return New(requestID, CodeNonceTooHigh, fmt.Sprintf("Nonce too high. Provided nonce: %d, current account nonce: %d", got, want), nil)
}

// GasPriceTooLow embeds the observed and required gas price.
func GasPriceTooLow(requestID string, got, want string) *GatewayError {
	return New(requestID, CodeGasPriceTooLow, fmt.Sprintf("Gas price %s is below configured minimum gas price %s", got, want), nil)
}

// InsufficientBalance reports that from's balance cannot cover value+fee.
func InsufficientBalance(requestID string) *GatewayError {
	return New(requestID, CodeInsufficientBalance, "Insufficient funds for transfer", nil)
}

var errNotRevert = errors.New("not a revert payload")

// IsRegistered reports whether code has a registry entry (used by tests to
// assert the taxonomy stays closed).
func IsRegistered(code Code) bool {
	_, ok := map[Code]struct{}{
		CodeParseError: {}, CodeInvalidRequest: {}, CodeMethodNotFound: {}, CodeInvalidParams: {},
		CodeInternal: {}, CodeContractRevert: {}, CodeResourceNotFound: {}, CodeUpstreamFailure: {},
		CodeRequestTimeout: {}, CodeRateLimit: {}, CodeUnsupportedMethod: {}, CodeNotYetImplemented: {},
		CodeBatchDisabled: {}, CodeBatchTooLarge: {}, CodeMissingFromBlock: {}, CodeInvalidBlockRange: {},
		CodeBlockRangeTooLarge: {}, CodeNonceTooLow: {}, CodeGasPriceTooLow: {}, CodeInsufficientBalance: {},
	}[code]
	return ok
}
