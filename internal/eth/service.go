package eth

import (
	"context"
	"errors"
	"time"

	"cosmossdk.io/log"

	"github.com/hiero-ledger/relay-gateway/internal/cache"
	"github.com/hiero-ledger/relay-gateway/internal/consensus"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// Config carries the subset of process configuration the eth services
// consult directly (the rest lives behind the mirror client and
// dispatcher's own configuration).
type Config struct {
	ChainID                         uint64
	GasPriceBufferPercent           int
	GasPriceTinybarToleranceTinybar int64
	GetLogsBlockRangeLimit          int
	GetLogsTimestampRangeMax        time.Duration
	EstimateGasThrows               bool
	UseAsyncTxProcessing            bool
	TxCallDataSizeLimit             int
	TxTotalSizeLimit                int
	InlineBytecodeLimit             int
	DeterministicDeployerRawTxHex   []string
	UseConsensusForCalls            bool
	MaxGasPerCall                   int64
}

// Service implements the eth read/write business logic (C6), holding the
// mirror client, an optional consensus-collaborator client, the shared
// cache, and resolved configuration. Handlers in internal/handlers
// construct one Service per process and bind its methods into the
// dispatch registry.
type Service struct {
	mirror    *mirror.Client
	consensus consensus.Client
	cache     *cache.Cache
	logger    log.Logger
	cfg       Config
	chainID   uint64
}

// New constructs a Service.
func New(m *mirror.Client, cs consensus.Client, c *cache.Cache, logger log.Logger, cfg Config) *Service {
	return &Service{
		mirror:    m,
		consensus: cs,
		cache:     c,
		logger:    logger,
		cfg:       cfg,
		chainID:   cfg.ChainID,
	}
}

// wrapUpstream normalizes a mirror-client error into the canonical
// upstream-failure GatewayError, preserving the original HTTP status in
// Data, per the propagation policy in §7.
func (s *Service) wrapUpstream(rc *rpctypes.RequestContext, err error) error {
	if err == nil {
		return nil
	}
	var ue *mirror.UpstreamError
	if errors.As(err, &ue) {
		return gatewayerrors.Upstream(rc.RequestID, ue.StatusCode, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return gatewayerrors.RequestTimeout(rc.RequestID)
	}
	return gatewayerrors.Internal(rc.RequestID, err)
}
