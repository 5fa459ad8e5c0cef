package eth

import (
	"context"

	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// GetTransactionByHash implements eth_getTransactionByHash: query the
// contract-results endpoint; on absence probe logs for a synthetic
// transaction before giving up.
func (s *Service) GetTransactionByHash(ctx context.Context, rc *rpctypes.RequestContext, hash string) (*rpctypes.Transaction, error) {
	cr, err := s.mirror.GetContractResult(ctx, rc.RequestID, hash)
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	if cr != nil {
		tx := buildTransaction(*cr, s.chainID)
		if tx == nil {
			return nil, nil
		}
		if err := s.resolveTransactionAddresses(ctx, rc, tx); err != nil {
			return nil, err
		}
		return tx, nil
	}

	logs, err := s.mirror.GetLogsByTransactionHash(ctx, rc.RequestID, hash)
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	if len(logs) == 0 {
		return nil, nil
	}
	return syntheticTransaction(logs[0], logs[0].BlockNumber), nil
}

// GetTransactionByBlockHashAndIndex implements
// eth_getTransactionByBlockHashAndIndex.
func (s *Service) GetTransactionByBlockHashAndIndex(ctx context.Context, rc *rpctypes.RequestContext, blockHash string, index int64) (*rpctypes.Transaction, error) {
	return s.getTransactionByBlockKeyAndIndex(ctx, rc, blockHash, index)
}

// GetTransactionByBlockNumberAndIndex implements
// eth_getTransactionByBlockNumberAndIndex.
func (s *Service) GetTransactionByBlockNumberAndIndex(ctx context.Context, rc *rpctypes.RequestContext, blockNumber int64, index int64) (*rpctypes.Transaction, error) {
	return s.getTransactionByBlockKeyAndIndex(ctx, rc, quantityHex(blockNumber), index)
}

func (s *Service) getTransactionByBlockKeyAndIndex(ctx context.Context, rc *rpctypes.RequestContext, blockHashOrNumber string, index int64) (*rpctypes.Transaction, error) {
	results, err := s.mirror.GetContractResultsByBlock(ctx, rc.RequestID, blockHashOrNumber)
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}
	for _, r := range results {
		if int64(r.TransactionIndex) == index {
			tx := buildTransaction(r, s.chainID)
			if tx == nil {
				return nil, nil
			}
			if err := s.resolveTransactionAddresses(ctx, rc, tx); err != nil {
				return nil, err
			}
			return tx, nil
		}
	}
	return nil, nil
}

// resolveTransactionAddresses resolves from/to to their canonical EVM
// addresses in parallel, per §4.6.9.
func (s *Service) resolveTransactionAddresses(ctx context.Context, rc *rpctypes.RequestContext, tx *rpctypes.Transaction) error {
	var toAddr string
	if tx.To != nil {
		toAddr = *tx.To
	}
	from, to, err := s.resolveAddressPair(ctx, rc, tx.From, toAddr)
	if err != nil {
		return err
	}
	tx.From = from
	if tx.To != nil && to != "" {
		tx.To = &to
	}
	return nil
}

