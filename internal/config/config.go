// Package config loads gateway configuration from environment variables
// via spf13/viper, the same configuration library the teacher pulls in
// (cosmos/evm's cmd/evmd/cmd/root.go binds a *viper.Viper into server
// options) though the teacher's own usage is narrow; this expands it to
// the full env-driven surface a gateway process needs, following
// viper's standard AutomaticEnv/SetEnvPrefix idiom.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the fully resolved gateway configuration.
type Config struct {
	Port int
	WSPort int

	ChainID uint64

	MirrorBaseURL        string
	MirrorMaxRetries     int
	MirrorRetryDeadline  time.Duration
	MirrorBackoffBase    time.Duration
	MirrorBackoffCap     time.Duration
	MirrorRequestsPerSec float64

	ConsensusEndpoint string

	CacheL1Size        int
	CacheL1DefaultTTL  time.Duration
	CacheL2Enabled     bool

	RateLimitDefaultMax    uint64
	RateLimitWindow        time.Duration

	BatchRequestsEnabled bool
	BatchRequestsMaxSize int

	DebugAPIEnabled      bool
	OpcodeLoggerEnabled  bool

	UseAsyncTxProcessing bool
	EstimateGasThrows    bool

	TxCallDataSizeLimit int
	TxTotalSizeLimit    int
	InlineBytecodeLimit int

	GasPriceBufferPercent  int
	GasPriceTinybarToleranceTinybar int64

	GetLogsBlockRangeLimit int
	GetLogsTimestampRangeMax time.Duration

	DeterministicDeployerWhitelist []string

	TrustProxyHeaders bool

	UseConsensusForCalls bool
	MaxGasPerCall        int64
}

const envPrefix = "RELAY"

// Load reads configuration from environment variables prefixed RELAY_,
// applying defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	cfg := &Config{
		Port:   v.GetInt("port"),
		WSPort: v.GetInt("ws_port"),

		ChainID: v.GetUint64("chain_id"),

		MirrorBaseURL:        v.GetString("mirror.base_url"),
		MirrorMaxRetries:     v.GetInt("mirror.max_retries"),
		MirrorRetryDeadline:  v.GetDuration("mirror.retry_deadline"),
		MirrorBackoffBase:    v.GetDuration("mirror.backoff_base"),
		MirrorBackoffCap:     v.GetDuration("mirror.backoff_cap"),
		MirrorRequestsPerSec: v.GetFloat64("mirror.requests_per_sec"),

		ConsensusEndpoint: v.GetString("consensus.endpoint"),

		CacheL1Size:       v.GetInt("cache.l1_size"),
		CacheL1DefaultTTL: v.GetDuration("cache.l1_default_ttl"),
		CacheL2Enabled:    v.GetBool("cache.l2_enabled"),

		RateLimitDefaultMax: uint64(v.GetInt64("ratelimit.default_max")),
		RateLimitWindow:     v.GetDuration("ratelimit.window"),

		BatchRequestsEnabled: v.GetBool("batch.enabled"),
		BatchRequestsMaxSize: v.GetInt("batch.max_size"),

		DebugAPIEnabled:     v.GetBool("debug_api_enabled"),
		OpcodeLoggerEnabled: v.GetBool("opcodelogger_enabled"),

		UseAsyncTxProcessing: v.GetBool("use_async_tx_processing"),
		EstimateGasThrows:    v.GetBool("estimate_gas_throws"),

		TxCallDataSizeLimit: v.GetInt("tx.calldata_size_limit"),
		TxTotalSizeLimit:    v.GetInt("tx.total_size_limit"),
		InlineBytecodeLimit: v.GetInt("tx.inline_bytecode_limit"),

		GasPriceBufferPercent:           v.GetInt("gas_price.buffer_percent"),
		GasPriceTinybarToleranceTinybar: v.GetInt64("gas_price.tolerance_tinybar"),

		GetLogsBlockRangeLimit:   v.GetInt("get_logs.block_range_limit"),
		GetLogsTimestampRangeMax: v.GetDuration("get_logs.timestamp_range_max"),

		DeterministicDeployerWhitelist: v.GetStringSlice("deterministic_deployer_whitelist"),

		TrustProxyHeaders: v.GetBool("trust_proxy_headers"),

		UseConsensusForCalls: v.GetBool("use_consensus_for_calls"),
		MaxGasPerCall:        v.GetInt64("max_gas_per_call"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", 7546)
	v.SetDefault("ws_port", 8546)
	v.SetDefault("chain_id", 296)

	v.SetDefault("mirror.max_retries", 5)
	v.SetDefault("mirror.retry_deadline", 10*time.Second)
	v.SetDefault("mirror.backoff_base", 100*time.Millisecond)
	v.SetDefault("mirror.backoff_cap", 2*time.Second)
	v.SetDefault("mirror.requests_per_sec", 0.0)

	v.SetDefault("cache.l1_size", 2000)
	v.SetDefault("cache.l1_default_ttl", 20*time.Second)
	v.SetDefault("cache.l2_enabled", false)

	v.SetDefault("ratelimit.default_max", 200)
	v.SetDefault("ratelimit.window", time.Minute)

	v.SetDefault("batch.enabled", true)
	v.SetDefault("batch.max_size", 100)

	v.SetDefault("debug_api_enabled", false)
	v.SetDefault("opcodelogger_enabled", false)

	v.SetDefault("use_async_tx_processing", false)
	v.SetDefault("estimate_gas_throws", false)

	v.SetDefault("tx.calldata_size_limit", 128*1024)
	v.SetDefault("tx.total_size_limit", 128*1024)
	v.SetDefault("tx.inline_bytecode_limit", 24*1024)

	v.SetDefault("gas_price.buffer_percent", 10)
	v.SetDefault("gas_price.tolerance_tinybar", 1)

	v.SetDefault("get_logs.block_range_limit", 1000)
	v.SetDefault("get_logs.timestamp_range_max", 7*24*time.Hour)

	v.SetDefault("trust_proxy_headers", false)

	v.SetDefault("use_consensus_for_calls", false)
	v.SetDefault("max_gas_per_call", 15_000_000)
}

func (c *Config) validate() error {
	if c.MirrorBaseURL == "" {
		return fmt.Errorf("config: RELAY_MIRROR_BASE_URL is required")
	}
	if c.ChainID == 0 {
		return fmt.Errorf("config: RELAY_CHAIN_ID must be non-zero")
	}
	return nil
}
