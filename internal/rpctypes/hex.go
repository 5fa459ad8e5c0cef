// Package rpctypes defines the Ethereum-shaped wire types returned by the
// gateway: blocks, transactions, logs, receipts and tracer results. These
// mirror the shapes consumed by go-ethereum's RPC clients, matching the
// field widths and hex encoding rules called out in the data model.
package rpctypes

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
)

// ZeroHex is the canonical zero value for a hex-encoded quantity.
const ZeroHex = "0x0"

// TrimHexZeroes strips leading zero nibbles from a "0x"-prefixed hex string,
// leaving exactly one digit when the value is zero. Non-hex input is
// returned unchanged.
func TrimHexZeroes(s string) string {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return s
	}
	body := strings.TrimLeft(s[2:], "0")
	if body == "" {
		return ZeroHex
	}
	return "0x" + body
}

// NormalizeQuantity renders b as a minimal "0x"-prefixed hex integer,
// "0x0" for nil or zero.
func NormalizeQuantity(b []byte) string {
	if len(b) == 0 {
		return ZeroHex
	}
	return TrimHexZeroes(hexutil.Encode(b))
}

// Hash32 renders h as a lower-case, 66-character 0x-prefixed hash.
func Hash32(h common.Hash) string {
	return strings.ToLower(h.Hex())
}

// Address20 renders a as a lower-case, 42-character 0x-prefixed address.
func Address20(a common.Address) string {
	return strings.ToLower(a.Hex())
}

// EmptyBloomHex is the sentinel bloom filter returned for blocks the
// upstream reports as having no log activity.
var EmptyBloomHex = "0x" + strings.Repeat("0", 512)

// ZeroAddressHex is the address rendered for fields the upstream never
// populates (miner, etc.) absent a real value.
const ZeroAddressHex = "0x0000000000000000000000000000000000000000"

// ZeroHash32 is the 32-byte zero hash, used for uncle/mix hash sentinels.
var ZeroHash32 = Hash32(common.Hash{})

// EmptyArrayHash is sha3(rlp([])), the value geth reports for sha3Uncles
// on blocks with no uncles.
var EmptyArrayHash = Hash32(ethtypes.EmptyUncleHash)

// DefaultRootHash is the sentinel root hash used for state/transactions
// roots the gateway cannot compute from upstream data (e.g. stateRoot, or
// transactionsRoot when a block has no transactions).
var DefaultRootHash = Hash32(ethtypes.EmptyRootHash)
