package eth

import (
	"context"
	"sort"
	"time"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// LogsFilter is the resolved getLogs request, after block-tag resolution
// has already turned fromBlock/toBlock/blockHash into concrete values.
type LogsFilter struct {
	BlockHash       string
	FromBlockNumber *int64
	ToBlockNumber   *int64
	Address         []string
	Topics          [][]string
}

// GetLogs implements eth_getLogs, resolving either a single block's range
// or a from/to block-number range into a mirror timestamp window, then
// querying and sorting the result.
func (s *Service) GetLogs(ctx context.Context, rc *rpctypes.RequestContext, f LogsFilter) ([]rpctypes.Log, error) {
	var fromTime, toTime string

	if f.BlockHash != "" {
		b, err := s.mirror.GetBlockByHash(ctx, rc.RequestID, f.BlockHash)
		if err != nil {
			return nil, s.wrapUpstream(rc, err)
		}
		if b == nil {
			return nil, gatewayerrors.ResourceNotFound(rc.RequestID, "block")
		}
		fromTime, toTime = b.Timestamp.From, b.Timestamp.To
	} else {
		// Both fromBlock and toBlock absent resolve to the same latest
		// block and proceed; resolveBlockNumber maps a nil bound to latest.
		from, err := s.resolveBlockNumber(ctx, rc, f.FromBlockNumber)
		if err != nil {
			return nil, err
		}
		to, err := s.resolveBlockNumber(ctx, rc, f.ToBlockNumber)
		if err != nil {
			return nil, err
		}
		if from > to {
			return nil, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidBlockRange, "fromBlock is greater than toBlock", nil)
		}

		blockRange := to - from
		waiveRangeGuard := len(f.Address) == 1
		if !waiveRangeGuard && s.cfg.GetLogsBlockRangeLimit > 0 && blockRange > int64(s.cfg.GetLogsBlockRangeLimit) {
			return nil, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeBlockRangeTooLarge, "block range exceeds the configured maximum", nil)
		}

		fromBlock, err := s.mirror.GetBlockByNumber(ctx, rc.RequestID, from)
		if err != nil {
			return nil, s.wrapUpstream(rc, err)
		}
		toBlock, err := s.mirror.GetBlockByNumber(ctx, rc.RequestID, to)
		if err != nil {
			return nil, s.wrapUpstream(rc, err)
		}
		if fromBlock == nil || toBlock == nil {
			return nil, gatewayerrors.ResourceNotFound(rc.RequestID, "block")
		}
		fromTime, toTime = fromBlock.Timestamp.From, toBlock.Timestamp.To
	}

	if s.cfg.GetLogsTimestampRangeMax > 0 {
		fromSecs, _ := parseTimestampSecondsPublic(fromTime)
		toSecs, _ := parseTimestampSecondsPublic(toTime)
		if time.Duration(toSecs-fromSecs)*time.Second > s.cfg.GetLogsTimestampRangeMax {
			return nil, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidBlockRange, "timestamp range exceeds the configured maximum", nil)
		}
	}

	logs, err := s.mirror.GetLogs(ctx, rc.RequestID, mirror.LogsQuery{
		Address:  f.Address,
		FromTime: fromTime,
		ToTime:   toTime,
		Topics:   f.Topics,
	})
	if err != nil {
		return nil, s.wrapUpstream(rc, err)
	}

	sort.Slice(logs, func(i, j int) bool {
		return compareTimestamps(logs[i].Timestamp, logs[j].Timestamp) < 0
	})

	out := make([]rpctypes.Log, 0, len(logs))
	for _, l := range logs {
		out = append(out, toRPCLog(l))
	}
	return out, nil
}

func parseTimestampSecondsPublic(ts string) (int64, bool) {
	return parseTimestampSeconds(ts)
}

// resolveBlockNumber returns the latest block number when n is nil
// (meaning the param was omitted and defaults to latest).
func (s *Service) resolveBlockNumber(ctx context.Context, rc *rpctypes.RequestContext, n *int64) (int64, error) {
	if n != nil {
		return *n, nil
	}
	latest, err := s.mirror.GetLatestBlock(ctx, rc.RequestID)
	if err != nil {
		return 0, s.wrapUpstream(rc, err)
	}
	if latest == nil {
		return 0, gatewayerrors.ResourceNotFound(rc.RequestID, "block")
	}
	return latest.Number, nil
}

func toRPCLog(l mirror.Log) rpctypes.Log {
	return rpctypes.Log{
		Address:          l.Address,
		BlockHash:        l.BlockHash,
		BlockNumber:      quantityHex(l.BlockNumber),
		Data:             orZero(l.Data),
		LogIndex:         quantityHex(int64(l.Index)),
		Removed:          false,
		Topics:           l.Topics,
		TransactionHash:  l.TransactionHash,
		TransactionIndex: quantityHex(int64(l.TransactionIndex)),
	}
}
