package httpshell

import "github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"

// httpStatusFor implements spec's single-request HTTP status mapping
// table: contract revert stays 200 so eth clients decode the revert
// reason from the JSON-RPC body the same way they decode a success.
func httpStatusFor(gwErr *gatewayerrors.GatewayError) int {
	switch gwErr.Code {
	case gatewayerrors.CodeContractRevert:
		return 200
	case gatewayerrors.CodeInternal:
		return 500
	case gatewayerrors.CodeInvalidRequest, gatewayerrors.CodeInvalidParams, gatewayerrors.CodeMethodNotFound:
		return 400
	case gatewayerrors.CodeRateLimit:
		return 429
	case gatewayerrors.CodeUpstreamFailure:
		return upstreamHTTPStatus(gwErr.Data)
	default:
		return 400
	}
}

// upstreamHTTPStatus maps the original mirror HTTP status embedded in a
// CodeUpstreamFailure error's Data (see gatewayerrors.Upstream) onto the
// gateway's own response status.
func upstreamHTTPStatus(data interface{}) int {
	m, ok := data.(map[string]interface{})
	if !ok {
		return 500
	}
	status, ok := m["statusCode"].(int)
	if !ok {
		return 500
	}
	switch status {
	case 404:
		return 400
	case 429:
		return 429
	case 501:
		return 501
	default:
		return 500
	}
}
