// Package debugapi implements the debug tracing path (C7):
// debug_traceTransaction and debug_traceBlockByNumber, backed by the
// mirror's actions and opcodes endpoints. Grounded on the teacher's own
// tracer dispatch in rpc/backend's tracing helpers, generalized from a
// local EVM replay to a mirror-sourced call-frame reconstruction.
package debugapi

import (
	"context"
	"strings"

	"cosmossdk.io/log"
	"golang.org/x/sync/errgroup"

	"github.com/hiero-ledger/relay-gateway/internal/cache"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/mirror"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// TracerKind names the three supported tracer shapes.
type TracerKind string

const (
	CallTracer      TracerKind = "callTracer"
	OpcodeLogger    TracerKind = "opcodeLogger"
	PrestateTracer  TracerKind = "prestateTracer"
	defaultForBlock TracerKind = CallTracer
)

// TracerConfig is the wrapper object accompanying a trace request,
// corresponding to the second positional parameter of
// debug_traceTransaction and debug_traceBlockByNumber.
type TracerConfig struct {
	Tracer         TracerKind
	OnlyTopCall    bool
	EnableMemory   bool
	DisableStack   bool
	DisableStorage bool
}

// Service implements the debug tracing handlers.
type Service struct {
	mirror              *mirror.Client
	cache               *cache.Cache
	logger              log.Logger
	debugAPIEnabled     bool
	opcodeLoggerEnabled bool
}

func New(m *mirror.Client, c *cache.Cache, logger log.Logger, debugAPIEnabled, opcodeLoggerEnabled bool) *Service {
	return &Service{mirror: m, cache: c, logger: logger, debugAPIEnabled: debugAPIEnabled, opcodeLoggerEnabled: opcodeLoggerEnabled}
}

// errDebugDisabled is returned (wrapped with the request id at the
// dispatcher boundary) when the runtime flag gating this subsystem is off.
var errDebugAPIDisabled = "debug API is disabled"

// TraceTransaction implements debug_traceTransaction.
func (s *Service) TraceTransaction(ctx context.Context, rc *rpctypes.RequestContext, txHashOrID string, cfg TracerConfig) (interface{}, error) {
	if !s.debugAPIEnabled {
		return nil, gatewayerrors.UnsupportedMethod(rc.RequestID)
	}
	if cfg.Tracer == "" {
		cfg.Tracer = OpcodeLogger
	}

	switch cfg.Tracer {
	case OpcodeLogger:
		if !s.opcodeLoggerEnabled {
			return nil, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeUnsupportedMethod, errDebugAPIDisabled, nil)
		}
		return s.traceOpcode(ctx, rc, txHashOrID, cfg)
	case CallTracer:
		return s.traceCall(ctx, rc, txHashOrID, cfg)
	case PrestateTracer:
		return nil, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "prestateTracer is not supported for single-transaction traces", nil)
	default:
		return nil, gatewayerrors.New(rc.RequestID, gatewayerrors.CodeInvalidParams, "unknown tracer", nil)
	}
}

func (s *Service) traceCall(ctx context.Context, rc *rpctypes.RequestContext, txHashOrID string, cfg TracerConfig) (*rpctypes.CallFrame, error) {
	var actions []mirror.Action
	var root *mirror.ContractResult

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		actions, err = s.mirror.GetContractResultActions(gctx, rc.RequestID, txHashOrID)
		return err
	})
	g.Go(func() error {
		var err error
		root, err = s.mirror.GetContractResult(gctx, rc.RequestID, txHashOrID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, gatewayerrors.Internal(rc.RequestID, err)
	}
	if len(actions) == 0 || root == nil {
		return nil, gatewayerrors.ResourceNotFound(rc.RequestID, "transaction")
	}

	return buildCallFrame(actions, *root, cfg.OnlyTopCall), nil
}

func buildCallFrame(actions []mirror.Action, root mirror.ContractResult, onlyTopCall bool) *rpctypes.CallFrame {
	top := actions[0]
	frame := &rpctypes.CallFrame{
		Type:    top.CallType,
		From:    top.From,
		To:      top.To,
		Value:   top.Value,
		Gas:     quantityHex(top.Gas),
		GasUsed: quantityHex(top.GasUsed),
		Input:   orZero(root.FunctionParameters),
		Output:  orZero(root.CallResult),
	}

	if strings.ToUpper(root.Status) != "0x1" {
		frame.Error = root.ErrorMessage
		if reason, ok := gatewayerrors.DecodeRevert(hexToBytes(root.CallResult)); ok {
			frame.RevertReason = reason
		}
	}

	if onlyTopCall || len(actions) == 1 {
		return frame
	}

	calls := make([]rpctypes.CallFrame, 0, len(actions)-1)
	for _, a := range actions[1:] {
		calls = append(calls, rpctypes.CallFrame{
			Type:    a.CallType,
			From:    a.From,
			To:      a.To,
			Value:   a.Value,
			Gas:     quantityHex(a.Gas),
			GasUsed: quantityHex(a.GasUsed),
			Input:   orZero(a.Input),
			Output:  orZero(a.ResultData),
		})
	}
	frame.Calls = calls
	return frame
}

func (s *Service) traceOpcode(ctx context.Context, rc *rpctypes.RequestContext, txHashOrID string, cfg TracerConfig) (*rpctypes.OpcodeLoggerResult, error) {
	flags := mirror.OpcodeTraceFlags{Memory: cfg.EnableMemory, Stack: !cfg.DisableStack, Storage: !cfg.DisableStorage}
	opcodes, err := s.mirror.GetContractResultOpcodesWithFlags(ctx, rc.RequestID, txHashOrID, flags)
	if err != nil {
		return nil, gatewayerrors.Internal(rc.RequestID, err)
	}
	if len(opcodes) == 0 {
		return nil, gatewayerrors.ResourceNotFound(rc.RequestID, "transaction")
	}

	root, err := s.mirror.GetContractResult(ctx, rc.RequestID, txHashOrID)
	if err != nil {
		return nil, gatewayerrors.Internal(rc.RequestID, err)
	}

	structLogs := make([]rpctypes.StructLog, 0, len(opcodes))
	var totalGas int64
	for _, op := range opcodes {
		totalGas += op.GasCost
		structLogs = append(structLogs, toStructLog(op, cfg))
	}

	failed := root != nil && strings.ToUpper(root.Status) != "0x1"
	returnValue := "0x"
	if root != nil {
		returnValue = strings.TrimPrefix(orZero(root.CallResult), "0x")
	}

	return &rpctypes.OpcodeLoggerResult{
		Gas:         totalGas,
		Failed:      failed,
		ReturnValue: returnValue,
		StructLogs:  structLogs,
	}, nil
}

func toStructLog(op mirror.Opcode, cfg TracerConfig) rpctypes.StructLog {
	sl := rpctypes.StructLog{
		Pc:      int64(op.Pc),
		Op:      op.Op,
		Gas:     op.Gas,
		GasCost: op.GasCost,
		Depth:   op.Depth,
	}
	if cfg.EnableMemory {
		sl.Memory = op.Memory
	}
	if !cfg.DisableStack {
		sl.Stack = op.Stack
	}
	if !cfg.DisableStorage {
		sl.Storage = op.Storage
	}
	if op.Reason != "" {
		r := op.Reason
		sl.Reason = &r
	}
	return sl
}

func hexToBytes(s string) []byte {
	s = strings.TrimPrefix(s, "0x")
	if len(s)%2 == 1 {
		s = "0" + s
	}
	out := make([]byte, len(s)/2)
	for i := 0; i < len(out); i++ {
		hi := hexNibble(s[i*2])
		lo := hexNibble(s[i*2+1])
		out[i] = hi<<4 | lo
	}
	return out
}

func hexNibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	default:
		return 0
	}
}

func orZero(s string) string {
	if s == "" {
		return "0x"
	}
	return s
}

func quantityHex(n int64) string {
	if n == 0 {
		return "0x0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	s := formatHex(uint64(n))
	if neg {
		return "-0x" + s
	}
	return "0x" + s
}

func formatHex(n uint64) string {
	const digits = "0123456789abcdef"
	if n == 0 {
		return "0"
	}
	var buf [16]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = digits[n&0xf]
		n >>= 4
	}
	return string(buf[i:])
}
