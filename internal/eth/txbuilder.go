package eth

import (
	"strings"

	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// buildTransaction dispatches on cr.Type to construct the Ethereum-shaped
// transaction envelope, grounded on the teacher's comet_to_eth tx-type
// dispatch. Returns nil for a type this gateway does not recognize.
func buildTransaction(cr mirror.ContractResult, chainID uint64) *rpctypes.Transaction {
	txType := 0
	if cr.Type != nil {
		txType = *cr.Type
	}

	var tx *rpctypes.Transaction
	switch txType {
	case 0:
		tx = buildLegacy(cr, chainID)
	case 1:
		tx = buildAccessList(cr, chainID)
	case 2:
		tx = buildDynamicFee(cr, chainID)
	default:
		return nil
	}

	tx.R = stripLeadingZeros(orZero(cr.R))
	tx.S = stripLeadingZeros(orZero(cr.S))
	return tx
}

func orZero(s string) string {
	if s == "" {
		return rpctypes.ZeroHex
	}
	return s
}

func baseEnvelope(cr mirror.ContractResult, txType int) *rpctypes.Transaction {
	var to *string
	if cr.To != nil {
		to = cr.To
	}
	var blockHash, blockNumber, txIndex *string
	if cr.BlockHash != "" {
		bh := cr.BlockHash
		blockHash = &bh
	}
	if cr.BlockNumber != 0 {
		bn := quantityHex(cr.BlockNumber)
		blockNumber = &bn
	}
	ti := quantityHex(int64(cr.TransactionIndex))
	txIndex = &ti

	return &rpctypes.Transaction{
		Type:             txType,
		Hash:             cr.Hash,
		Nonce:            quantityHexUint64(cr.Nonce),
		From:             cr.From,
		To:               to,
		Value:            tinybarAmountToWeibarHex(cr.Amount),
		Gas:              quantityHex(cr.GasLimit),
		Input:            orZero(cr.FunctionParameters),
		V:                quantityHex(cr.V),
		BlockHash:        blockHash,
		BlockNumber:      blockNumber,
		TransactionIndex: txIndex,
	}
}

func tinybarAmountToWeibarHex(tinybar int64) string {
	return "0x" + TinybarToWeibar(tinybar).Text(16)
}

// buildLegacy constructs a type-0 transaction. A chain id of "0x" (present
// but empty) is left unset, matching unprotected legacy transactions that
// predate EIP-155.
func buildLegacy(cr mirror.ContractResult, chainID uint64) *rpctypes.Transaction {
	tx := baseEnvelope(cr, 0)
	tx.GasPrice = orZero(cr.GasPrice)
	if cr.ChainID != "" && cr.ChainID != "0x" {
		tx.ChainID = stripLeadingZeros(cr.ChainID)
	}
	return tx
}

// buildAccessList constructs a type-1 transaction; the access list is
// always forced empty since the mirror does not surface its contents in a
// form this gateway can faithfully reconstruct.
func buildAccessList(cr mirror.ContractResult, chainID uint64) *rpctypes.Transaction {
	tx := baseEnvelope(cr, 1)
	tx.GasPrice = orZero(cr.GasPrice)
	tx.AccessList = []string{}
	tx.ChainID = stripLeadingZeros(orZero(cr.ChainID))
	return tx
}

// buildDynamicFee constructs a type-2 transaction. maxFeePerGas and
// maxPriorityFeePerGas normalize null/empty to "0x0"; nonzero values have
// their leading zeros stripped.
func buildDynamicFee(cr mirror.ContractResult, chainID uint64) *rpctypes.Transaction {
	tx := baseEnvelope(cr, 2)
	tx.AccessList = []string{}
	tx.ChainID = stripLeadingZeros(orZero(cr.ChainID))
	tx.MaxFeePerGas = normalizeFeeField(cr.MaxFeePerGas)
	tx.MaxPriorityFeePerGas = normalizeFeeField(cr.MaxPriorityFeePerGas)
	return tx
}

func normalizeFeeField(v string) string {
	if v == "" || v == "0x" {
		return rpctypes.ZeroHex
	}
	return stripLeadingZeros(v)
}

// isSyntheticCandidate reports whether a contract-result's result code
// indicates it failed host-specific validation and should be skipped when
// assembling a block's transaction array, rather than treated as a normal
// failed-but-included transaction.
func isSyntheticCandidate(result string) bool {
	switch strings.ToUpper(result) {
	case "DUPLICATE_TRANSACTION", "WRONG_NONCE", "INVALID_NODE_ACCOUNT", "INSUFFICIENT_TX_FEE":
		return true
	default:
		return false
	}
}

// syntheticTransaction builds the minimal type-2 placeholder transaction
// for a log whose transaction hash has no matching contract result: an
// EVM-visible effect of the upstream's native operations. from and to both
// equal the log's emitting address.
func syntheticTransaction(l mirror.Log, blockNumber int64) *rpctypes.Transaction {
	addr := l.Address
	bh := l.BlockHash
	bn := quantityHex(l.BlockNumber)
	ti := quantityHex(int64(l.TransactionIndex))
	return &rpctypes.Transaction{
		Type:                 2,
		Hash:                 l.TransactionHash,
		Nonce:                rpctypes.ZeroHex,
		From:                 addr,
		To:                   &addr,
		Value:                rpctypes.ZeroHex,
		Gas:                  rpctypes.ZeroHex,
		Input:                "0x",
		V:                    rpctypes.ZeroHex,
		R:                    rpctypes.ZeroHex,
		S:                    rpctypes.ZeroHex,
		BlockHash:            &bh,
		BlockNumber:          &bn,
		TransactionIndex:     &ti,
		ChainID:              rpctypes.ZeroHex,
		AccessList:           []string{},
		MaxFeePerGas:         rpctypes.ZeroHex,
		MaxPriorityFeePerGas: rpctypes.ZeroHex,
	}
}
