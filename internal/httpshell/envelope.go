// Package httpshell is the thin JSON-RPC HTTP/WebSocket front end (C9):
// request/batch parsing, the per-request RequestContext, HTTP status
// mapping, and client-IP extraction, with every call handed straight to
// the dispatcher. Grounded on the teacher's server/json_rpc.go (mux
// router, rs/cors, graceful-shutdown http.Server pair for HTTP and WS),
// generalized from wrapping a geth ethrpc.Server around a fixed
// namespace table to driving this gateway's own dispatch.Dispatcher.
package httpshell

import "encoding/json"

// Request is one JSON-RPC 2.0 call.
type Request struct {
	JSONRPC string            `json:"jsonrpc"`
	ID      json.RawMessage   `json:"id"`
	Method  string            `json:"method"`
	Params  []json.RawMessage `json:"params"`
}

// Response is one JSON-RPC 2.0 reply.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id"`
	Result  interface{}     `json:"result,omitempty"`
	Error   *ResponseError  `json:"error,omitempty"`
}

// ResponseError is the error object embedded in a failed Response.
type ResponseError struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func successResponse(id json.RawMessage, result interface{}) Response {
	return Response{JSONRPC: "2.0", ID: id, Result: result}
}

func errorResponse(id json.RawMessage, code int, message string, data interface{}) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &ResponseError{Code: code, Message: message, Data: data}}
}
