package gatewayerrors

import (
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func TestWithRequestIDIsIdempotent(t *testing.T) {
	msg := WithRequestID("abc-123", "something broke")
	require.Equal(t, "[Request ID: abc-123] something broke", msg)

	again := WithRequestID("abc-123", msg)
	require.Equal(t, msg, again, "re-applying the prefix must be a no-op")

	// applying with a different request id still leaves the first prefix
	// untouched, since the pattern already occurs in the message.
	other := WithRequestID("xyz-999", msg)
	require.Equal(t, msg, other)
}

func TestNewPrefixesExactlyOnce(t *testing.T) {
	err := New("req-1", CodeInternal, "boom", nil)
	require.Equal(t, "[Request ID: req-1] boom", err.Error())
}

func TestDecodeRevertStandardErrorString(t *testing.T) {
	strTy, err := abi.NewType("string", "", nil)
	require.NoError(t, err)
	args := abi.Arguments{{Type: strTy}}
	packed, err := args.Pack("insufficient allowance")
	require.NoError(t, err)

	payload := append(append([]byte{}, standardErrorSelector...), packed...)

	reason, ok := DecodeRevert(payload)
	require.True(t, ok)
	require.Equal(t, "insufficient allowance", reason)
}

func TestDecodeRevertTooShortIsNotOK(t *testing.T) {
	_, ok := DecodeRevert([]byte{0x01, 0x02})
	require.False(t, ok)
}

func TestDecodeRevertRandomSelectorFails(t *testing.T) {
	sel := crypto.Keccak256([]byte("NotARevert()"))[:4]
	_, ok := DecodeRevert(sel)
	require.False(t, ok)
}
