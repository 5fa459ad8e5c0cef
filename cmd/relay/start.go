package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hiero-ledger/relay-gateway/internal/cache"
	"github.com/hiero-ledger/relay-gateway/internal/config"
	"github.com/hiero-ledger/relay-gateway/internal/consensus"
	"github.com/hiero-ledger/relay-gateway/internal/debugapi"
	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/eth"
	"github.com/hiero-ledger/relay-gateway/internal/handlers"
	"github.com/hiero-ledger/relay-gateway/internal/httpshell"
	"github.com/hiero-ledger/relay-gateway/internal/logging"
	"github.com/hiero-ledger/relay-gateway/internal/metrics"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/ratelimit"
)

func newStartCmd() *cobra.Command {
	var logLevel string
	var logJSON bool

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Run the JSON-RPC gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(cmd.Context(), logLevel, logJSON)
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	cmd.Flags().BoolVar(&logJSON, "log-json", false, "emit structured JSON logs")
	return cmd
}

func runStart(parentCtx context.Context, logLevel string, logJSON bool) error {
	logger := logging.New(logging.Options{Level: logLevel, JSON: logJSON})

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if _, err := metrics.NewSink("relay"); err != nil {
		logger.Warn("metrics sink unavailable, continuing without telemetry export", "error", err)
	}
	recorder := metrics.NewGoMetrics()

	mirrorClient := mirror.New(mirror.Config{
		BaseURL:        cfg.MirrorBaseURL,
		MaxRetries:     cfg.MirrorMaxRetries,
		RetryDeadline:  cfg.MirrorRetryDeadline,
		BackoffBase:    cfg.MirrorBackoffBase,
		BackoffCap:     cfg.MirrorBackoffCap,
		RequestsPerSec: cfg.MirrorRequestsPerSec,
	}, &http.Client{Timeout: 30 * time.Second}, logger.With("component", "mirror"))

	consensusClient := consensus.NewHTTPClient(cfg.ConsensusEndpoint, nil, logger.With("component", "consensus"))

	l1 := cache.NewL1(cfg.CacheL1Size, cfg.CacheL1DefaultTTL)
	var l2 cache.Store
	if cfg.CacheL2Enabled {
		l2 = cache.NewInMemoryL2()
	}
	sharedCache := cache.New(l1, l2, logger.With("component", "cache"))

	limiter := ratelimit.New(
		ratelimit.NewInMemoryStore(),
		logger.With("component", "ratelimit"),
		map[string]ratelimit.Limit{},
		ratelimit.Limit{Max: cfg.RateLimitDefaultMax, Window: cfg.RateLimitWindow},
	)

	ethService := eth.New(mirrorClient, consensusClient, sharedCache, logger.With("component", "eth"), eth.Config{
		ChainID:                         cfg.ChainID,
		GasPriceBufferPercent:           cfg.GasPriceBufferPercent,
		GasPriceTinybarToleranceTinybar: cfg.GasPriceTinybarToleranceTinybar,
		GetLogsBlockRangeLimit:          cfg.GetLogsBlockRangeLimit,
		GetLogsTimestampRangeMax:        cfg.GetLogsTimestampRangeMax,
		EstimateGasThrows:               cfg.EstimateGasThrows,
		UseAsyncTxProcessing:            cfg.UseAsyncTxProcessing,
		TxCallDataSizeLimit:             cfg.TxCallDataSizeLimit,
		TxTotalSizeLimit:                cfg.TxTotalSizeLimit,
		InlineBytecodeLimit:             cfg.InlineBytecodeLimit,
		DeterministicDeployerRawTxHex:   cfg.DeterministicDeployerWhitelist,
		UseConsensusForCalls:            cfg.UseConsensusForCalls,
		MaxGasPerCall:                   cfg.MaxGasPerCall,
	})

	debugService := debugapi.New(mirrorClient, sharedCache, logger.With("component", "debugapi"), cfg.DebugAPIEnabled, cfg.OpcodeLoggerEnabled)

	registry := handlers.Build(ethService, debugService)
	dispatcher := dispatch.New(registry, sharedCache, limiter, logger.With("component", "dispatch")).WithMetrics(recorder)

	server := httpshell.New(httpshell.Config{
		Port:                 cfg.Port,
		WSPort:               cfg.WSPort,
		BatchRequestsEnabled: cfg.BatchRequestsEnabled,
		BatchRequestsMaxSize: cfg.BatchRequestsMaxSize,
		TrustProxyHeaders:    cfg.TrustProxyHeaders,
	}, dispatcher, logger.With("component", "httpshell"))

	ctx, stop := signal.NotifyContext(parentCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return server.Start(gCtx)
	})
	return g.Wait()
}
