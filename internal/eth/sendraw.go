package eth

import (
	"context"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// txState tags the raw-transaction submission state machine's current
// stage, per §4.6.10.
type txState int

const (
	stateParsed txState = iota
	statePrechecked
	stateSubmitting
	stateSubmitted
	stateReconciling
	stateDone
)

const reconcilePollAttempts = 10
const reconcilePollInterval = 1500 * time.Millisecond
const maxTransactionFeeThreshold = 15_000_000

const wrongNoncePollAttempts = 5
const wrongNoncePollInterval = 500 * time.Millisecond

func (st txState) String() string {
	switch st {
	case stateParsed:
		return "parsed"
	case statePrechecked:
		return "prechecked"
	case stateSubmitting:
		return "submitting"
	case stateSubmitted:
		return "submitted"
	case stateReconciling:
		return "reconciling"
	case stateDone:
		return "done"
	default:
		return "unknown"
	}
}

// SendRawTransaction implements eth_sendRawTransaction's synchronous
// path: parse, precheck, submit, reconcile. When UseAsyncTxProcessing is
// enabled the handler layer calls SendRawTransactionAsync instead.
func (s *Service) SendRawTransaction(ctx context.Context, rc *rpctypes.RequestContext, raw []byte) (string, error) {
	tx, err := parseSignedTransaction(raw)
	if err != nil {
		return "", gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "invalid raw transaction encoding", nil)
	}

	if err := s.precheckTransaction(ctx, rc, tx, raw); err != nil {
		return "", err
	}

	return s.submitAndReconcile(ctx, rc, tx, raw)
}

// SendRawTransactionAsync implements the async-mode variant: the hash is
// returned immediately after prechecks, and submission/reconciliation run
// on a detached background task that must not inherit the caller's
// cancellation.
func (s *Service) SendRawTransactionAsync(ctx context.Context, rc *rpctypes.RequestContext, raw []byte) (string, error) {
	tx, err := parseSignedTransaction(raw)
	if err != nil {
		return "", gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "invalid raw transaction encoding", nil)
	}
	if err := s.precheckTransaction(ctx, rc, tx, raw); err != nil {
		return "", err
	}

	hash := tx.Hash().Hex()
	bgCtx := context.Background()
	go func() {
		_, _ = s.submitAndReconcile(bgCtx, rc, tx, raw)
	}()
	return hash, nil
}

func parseSignedTransaction(raw []byte) (*types.Transaction, error) {
	tx := new(types.Transaction)
	if err := tx.UnmarshalBinary(raw); err != nil {
		return nil, err
	}
	return tx, nil
}

// precheckTransaction runs every step in §4.6.10 step 2, in order,
// failing fast with a specific error.
func (s *Service) precheckTransaction(ctx context.Context, rc *rpctypes.RequestContext, tx *types.Transaction, raw []byte) error {
	if s.cfg.TxCallDataSizeLimit > 0 && len(tx.Data()) > s.cfg.TxCallDataSizeLimit {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeCallDataSizeExceeded, "transaction call data exceeds the configured size limit", nil)
	}
	if s.cfg.TxTotalSizeLimit > 0 && len(raw) > s.cfg.TxTotalSizeLimit {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeTxSizeExceeded, "transaction size exceeds the configured limit", nil)
	}
	if tx.Type() == types.BlobTxType {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeUnsupportedTxType, "blob transactions are not supported", nil)
	}

	intrinsic := intrinsicGas(tx.Data())
	if int64(tx.Gas()) < intrinsic || int64(tx.Gas()) > maxTransactionFeeThreshold {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeGasLimitTooLow, "gas limit outside the permitted range", nil)
	}

	from, err := senderAddress(tx)
	if err != nil {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "could not recover sender from signature", nil)
	}

	acc, err := s.mirror.GetAccount(ctx, rc.RequestID, from.Hex())
	if err != nil {
		return s.wrapUpstream(rc, err)
	}
	if acc == nil {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "sender account does not exist", nil)
	}
	if acc.EthereumNonce != nil && *acc.EthereumNonce > tx.Nonce() {
		return gatewayerrors.NonceTooLow(rc.RequestID, tx.Nonce(), *acc.EthereumNonce)
	}

	if !s.chainIDAccepted(tx) {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeUnsupportedChainID, "chain id does not match and transaction is not legacy-unprotected", nil)
	}

	valueWeibar := tx.Value().Int64()
	if valueWeibar < 0 || (valueWeibar > 0 && valueWeibar < TinybarToWeibarCoef) {
		return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeValueTooLow, "value must be zero or at least one tinybar-equivalent", nil)
	}

	if err := s.checkGasPriceAgainstNetwork(ctx, rc, tx, raw); err != nil {
		return err
	}

	requiredTinybar := WeibarToTinybar(tx.Value()) + tx.Gas()*WeibarToTinybar(tx.GasPrice())
	if acc.Balance.Balance < requiredTinybar {
		return gatewayerrors.InsufficientBalance(rc.RequestID)
	}

	if tx.To() != nil {
		toAcc, err := s.mirror.GetAccount(ctx, rc.RequestID, tx.To().Hex())
		if err != nil {
			return s.wrapUpstream(rc, err)
		}
		if toAcc != nil && toAcc.ReceiverSigRequired {
			return gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "receiver requires a signature for this transfer", nil)
		}
	}

	return nil
}

func senderAddress(tx *types.Transaction) (common.Address, error) {
	signer := types.LatestSignerForChainID(tx.ChainId())
	return types.Sender(signer, tx)
}

// chainIDAccepted implements the chainId precheck: either the transaction
// targets this gateway's configured chain, or it is a legacy-unprotected
// transaction (chainId == 0, v in {27,28}).
func (s *Service) chainIDAccepted(tx *types.Transaction) bool {
	if tx.ChainId() != nil && tx.ChainId().Uint64() == s.chainID {
		return true
	}
	if tx.Type() != types.LegacyTxType {
		return false
	}
	v, _, _ := tx.RawSignatureValues()
	if v == nil {
		return false
	}
	vv := v.Uint64()
	return vv == 27 || vv == 28
}

// checkGasPriceAgainstNetwork accepts a gas price within the configured
// tinybar tolerance of the current network price, or whose raw bytes
// exactly match a whitelisted deterministic-deployer transaction.
func (s *Service) checkGasPriceAgainstNetwork(ctx context.Context, rc *rpctypes.RequestContext, tx *types.Transaction, raw []byte) error {
	if s.isDeterministicDeployer(raw) {
		return nil
	}

	networkTinybar, err := s.currentNetworkGasPriceTinybar(ctx, rc.RequestID)
	if err != nil {
		return s.wrapUpstream(rc, err)
	}
	txTinybar := WeibarToTinybar(tx.GasPrice())
	tolerance := s.cfg.GasPriceTinybarToleranceTinybar
	if txTinybar < networkTinybar-tolerance {
		return gatewayerrors.GasPriceTooLow(rc.RequestID, quantityHex(txTinybar), quantityHex(networkTinybar))
	}
	return nil
}

func (s *Service) isDeterministicDeployer(raw []byte) bool {
	rawHex := common.Bytes2Hex(raw)
	for _, whitelisted := range s.cfg.DeterministicDeployerRawTxHex {
		if rawHex == whitelisted {
			return true
		}
	}
	return false
}

// submitAndReconcile runs §4.6.10 steps 3-5: submit to the consensus
// collaborator, then poll the mirror for the authoritative record.
func (s *Service) submitAndReconcile(ctx context.Context, rc *rpctypes.RequestContext, tx *types.Transaction, raw []byte) (string, error) {
	if s.consensus == nil {
		return "", gatewayerrors.Internal(rc.RequestID, errNoConsensusClient)
	}

	fallbackHash := tx.Hash().Hex()
	logger := s.logger.With("requestId", rc.RequestID, "txHash", fallbackHash)

	if tx.To() == nil && s.cfg.InlineBytecodeLimit > 0 && len(tx.Data()) > s.cfg.InlineBytecodeLimit {
		fileID, uploadErr := s.consensus.UploadFile(ctx, tx.Data())
		if uploadErr == nil {
			defer s.consensus.DeleteFile(context.Background(), fileID)
		}
	}

	logger.Debug("tx state transition", "state", stateSubmitting.String())
	submitResult, submitErr := s.consensus.SubmitTransaction(ctx, raw)
	if submitErr != nil && !submitResult.Submitted {
		return "", gatewayerrors.Wrap(rc.RequestID, gatewayerrors.CodeInternal, submitErr, "transaction submission failed")
	}
	logger.Debug("tx state transition", "state", stateSubmitted.String())

	if submitResult.TransactionID == "" {
		if submitErr != nil {
			return "", gatewayerrors.Wrap(rc.RequestID, gatewayerrors.CodeInternal, submitErr, "transaction submission failed")
		}
		return "", gatewayerrors.Internal(rc.RequestID, errMissingTransactionID)
	}

	logger.Debug("tx state transition", "state", stateReconciling.String())
	cr, found, err := s.reconcileByTransactionID(ctx, rc, submitResult.TransactionID)
	if err != nil || !found {
		if submitErr != nil {
			return fallbackHash, nil
		}
		return "", gatewayerrors.Internal(rc.RequestID, errReconciliationFailed)
	}

	if strings.EqualFold(cr.Result, "WRONG_NONCE") {
		from, senderErr := senderAddress(tx)
		if senderErr != nil {
			return "", gatewayerrors.Internal(rc.RequestID, senderErr)
		}
		return "", s.resolveWrongNonce(ctx, rc, tx, from)
	}

	logger.Debug("tx state transition", "state", stateDone.String())
	return cr.Hash, nil
}

// reconcileByTransactionID polls the mirror's contract-results endpoint
// for the record corresponding to a submitted transaction id, per
// §4.6.10 step 4. The record's own hash field is authoritative; its
// Result field carries the upstream outcome tag (e.g. WRONG_NONCE).
func (s *Service) reconcileByTransactionID(ctx context.Context, rc *rpctypes.RequestContext, transactionID string) (*mirror.ContractResult, bool, error) {
	for attempt := 0; attempt < reconcilePollAttempts; attempt++ {
		cr, err := s.mirror.GetContractResult(ctx, rc.RequestID, transactionID)
		if err != nil {
			return nil, false, err
		}
		if cr != nil {
			return cr, true, nil
		}
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-time.After(reconcilePollInterval):
		}
	}
	return nil, false, nil
}

// resolveWrongNonce implements §4.6.10 step 5's WRONG_NONCE path: poll the
// account endpoint for the updated nonce and classify the mismatch as
// NONCE_TOO_HIGH or NONCE_TOO_LOW relative to the submitted transaction.
func (s *Service) resolveWrongNonce(ctx context.Context, rc *rpctypes.RequestContext, tx *types.Transaction, from common.Address) error {
	var currentNonce uint64
	for attempt := 0; attempt < wrongNoncePollAttempts; attempt++ {
		acc, err := s.mirror.GetAccount(ctx, rc.RequestID, from.Hex())
		if err == nil && acc != nil && acc.EthereumNonce != nil {
			currentNonce = *acc.EthereumNonce
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wrongNoncePollInterval):
		}
	}
	if tx.Nonce() > currentNonce {
		return gatewayerrors.NonceTooHigh(rc.RequestID, tx.Nonce(), currentNonce)
	}
	return gatewayerrors.NonceTooLow(rc.RequestID, tx.Nonce(), currentNonce)
}

type noConsensusClientErr struct{}

func (*noConsensusClientErr) Error() string { return "no consensus collaborator client configured" }

var errNoConsensusClient = &noConsensusClientErr{}

type missingTransactionIDErr struct{}

func (*missingTransactionIDErr) Error() string {
	return "consensus collaborator accepted submission without a transaction id"
}

var errMissingTransactionID = &missingTransactionIDErr{}

type reconciliationFailedErr struct{}

func (*reconciliationFailedErr) Error() string {
	return "reconciliation exhausted its poll budget without a partial-failure error in hand"
}

var errReconciliationFailed = &reconciliationFailedErr{}

