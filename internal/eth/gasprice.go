package eth

import (
	"context"
	"time"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

const gasPriceCacheTTL = 10 * time.Second

// GasPrice implements eth_gasPrice: the current network gas price in
// weibar, with the configured percentage buffer applied.
func (s *Service) GasPrice(ctx context.Context, rc *rpctypes.RequestContext) (string, error) {
	const cacheKey = "gasprice:current"
	if s.cache != nil {
		var cached string
		if ok, err := s.cache.GetJSON(cacheKey, &cached); err == nil && ok {
			return cached, nil
		}
	}

	price, err := s.fetchNetworkGasPrice(ctx, rc, "")
	if err != nil {
		return "", err
	}
	if s.cache != nil {
		_ = s.cache.SetJSON(cacheKey, price, gasPriceCacheTTL)
	}
	return price, nil
}

// currentGasPriceForBlock resolves the fee at the block's timestamp.from,
// used for a block's baseFeePerGas and a receipt's effectiveGasPrice, per
// the "fee at the block's timestamp, not request time" invariant.
func (s *Service) currentGasPriceForBlock(ctx context.Context, rc *rpctypes.RequestContext, timestamp string) (string, error) {
	return s.fetchNetworkGasPrice(ctx, rc, timestamp)
}

func (s *Service) fetchNetworkGasPrice(ctx context.Context, rc *rpctypes.RequestContext, timestamp string) (string, error) {
	fees, err := s.mirror.GetNetworkFees(ctx, rc.RequestID, timestamp)
	if err != nil {
		return "", s.wrapUpstream(rc, err)
	}
	if fees == nil {
		return "", gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInternal, "network fee schedule unavailable", nil)
	}

	gasTinybar, found := ethereumTransactionFee(fees.Fees)
	if !found {
		return "", gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInternal, "no EthereumTransaction fee entry", nil)
	}

	weibar := TinybarToWeibar(gasTinybar)
	buffered := applyPercentBuffer(weibar.Int64(), s.cfg.GasPriceBufferPercent)
	return quantityHex(buffered), nil
}

func ethereumTransactionFee(fees []mirror.NetworkFee) (int64, bool) {
	for _, f := range fees {
		if f.TransactionType == "EthereumTransaction" {
			return f.Gas, true
		}
	}
	return 0, false
}

func applyPercentBuffer(base int64, percent int) int64 {
	if percent == 0 {
		return base
	}
	delta := base * int64(percent) / 100
	result := base + delta
	if result < 0 {
		return 0
	}
	return result
}

// currentNetworkGasPriceTinybar returns the raw tinybar fee, used by the
// raw-transaction precheck to compare against the submitted gas price
// with a tinybar-denominated tolerance.
func (s *Service) currentNetworkGasPriceTinybar(ctx context.Context, requestID string) (int64, error) {
	fees, err := s.mirror.GetNetworkFees(ctx, requestID, "")
	if err != nil {
		return 0, err
	}
	if fees == nil {
		return 0, errNoFeeSchedule
	}
	gas, found := ethereumTransactionFee(fees.Fees)
	if !found {
		return 0, errNoFeeSchedule
	}
	return gas, nil
}

type noFeeScheduleErr struct{}

func (*noFeeScheduleErr) Error() string {
	return "no EthereumTransaction fee entry in network fee schedule"
}

var errNoFeeSchedule = &noFeeScheduleErr{}
