// Package eth implements the read/write services (C6): block,
// transaction, receipt, log, account, call/estimate-gas, gas-price and
// raw-transaction submission. Grounded throughout on the teacher's
// rpc/backend package (blocks.go, tx_info.go, comet_to_eth.go) and on
// houpo-bob-evm's call_tx.go for the call/estimateGas/gas-price shapes,
// generalized from "query a local gRPC client" to "query the mirror REST
// client or the consensus collaborator".
package eth

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// TinybarToWeibarCoef is the fixed conversion coefficient between the
// upstream's native sub-unit (tinybar) and its Ethereum equivalent
// (weibar), per the Glossary.
const TinybarToWeibarCoef = 10_000_000_000

// TinybarToWeibar converts a tinybar-denominated amount to weibar.
func TinybarToWeibar(tinybar int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(tinybar), big.NewInt(TinybarToWeibarCoef))
}

// WeibarToTinybar converts a weibar-denominated big.Int to tinybar,
// truncating any sub-tinybar remainder.
func WeibarToTinybar(weibar *big.Int) int64 {
	if weibar == nil {
		return 0
	}
	return new(big.Int).Div(weibar, big.NewInt(TinybarToWeibarCoef)).Int64()
}

// parseTimestampSeconds splits a mirror "seconds.nanos" timestamp string
// into its integer seconds component, used for window comparisons.
func parseTimestampSeconds(ts string) (int64, bool) {
	if ts == "" {
		return 0, false
	}
	parts := strings.SplitN(ts, ".", 2)
	secs, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, false
	}
	return secs, true
}

// compareTimestamps reports -1, 0, 1 for a<b, a==b, a>b, comparing
// "seconds.nanos" strings lexically once zero-padded; the mirror always
// emits fixed-width nanos, so a straight string comparison after
// confirming both parse is both cheap and exact.
func compareTimestamps(a, b string) int {
	as, aok := parseTimestampSeconds(a)
	bs, bok := parseTimestampSeconds(b)
	if !aok || !bok {
		return strings.Compare(a, b)
	}
	switch {
	case as < bs:
		return -1
	case as > bs:
		return 1
	default:
		return strings.Compare(a, b)
	}
}

// quantityHex renders n as a minimal 0x-prefixed hex integer.
func quantityHex(n int64) string {
	if n == 0 {
		return rpctypes.ZeroHex
	}
	return "0x" + strconv.FormatInt(n, 16)
}

func quantityHexUint64(n uint64) string {
	if n == 0 {
		return rpctypes.ZeroHex
	}
	return "0x" + strconv.FormatUint(n, 16)
}

// stripLeadingZeros trims leading zero nibbles from a 0x-prefixed hex
// string, collapsing an all-zero value to "0x0".
func stripLeadingZeros(hex string) string {
	return rpctypes.TrimHexZeroes(hex)
}
