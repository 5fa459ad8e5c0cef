package httpshell

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
)

func TestHTTPStatusForContractRevertStays200(t *testing.T) {
	err := gatewayerrors.New("r1", gatewayerrors.CodeContractRevert, "execution reverted", nil)
	require.Equal(t, 200, httpStatusFor(err))
}

func TestHTTPStatusForRateLimitIs429(t *testing.T) {
	err := gatewayerrors.RateLimited("r1", "eth_call")
	require.Equal(t, 429, httpStatusFor(err))
}

func TestHTTPStatusForInvalidParamsIs400(t *testing.T) {
	err := gatewayerrors.InvalidParams("r1", "bad address")
	require.Equal(t, 400, httpStatusFor(err))
}

func TestHTTPStatusForInternalIs500(t *testing.T) {
	err := gatewayerrors.Internal("r1", nil)
	require.Equal(t, 500, httpStatusFor(err))
}

func TestHTTPStatusForUpstreamMapsOriginalStatus(t *testing.T) {
	notFound := gatewayerrors.Upstream("r1", 404, nil)
	require.Equal(t, 400, httpStatusFor(notFound))

	tooMany := gatewayerrors.Upstream("r1", 429, nil)
	require.Equal(t, 429, httpStatusFor(tooMany))

	notImplemented := gatewayerrors.Upstream("r1", 501, nil)
	require.Equal(t, 501, httpStatusFor(notImplemented))

	serverErr := gatewayerrors.Upstream("r1", 503, nil)
	require.Equal(t, 500, httpStatusFor(serverErr))
}
