package httpshell

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"cosmossdk.io/log"
	"github.com/gorilla/mux"
	"github.com/rs/cors"

	"github.com/hiero-ledger/relay-gateway/internal/dispatch"
	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
	"github.com/hiero-ledger/relay-gateway/internal/rpctypes"
)

// disallowedInBatch are methods that must never be admitted inside a
// batch request: a raw transaction submission depends on nonce ordering
// a batch's unspecified execution order cannot guarantee.
var disallowedInBatch = map[string]bool{
	"eth_sendRawTransaction": true,
}

// Config configures the HTTP/WS front end.
type Config struct {
	Port                 int
	WSPort               int
	BatchRequestsEnabled bool
	BatchRequestsMaxSize int
	TrustProxyHeaders    bool
	HTTPTimeout          time.Duration
	HTTPIdleTimeout      time.Duration
}

// Server is the JSON-RPC HTTP/WS front end.
type Server struct {
	cfg        Config
	dispatcher *dispatch.Dispatcher
	logger     log.Logger

	httpSrv *http.Server
	wsSrv   *http.Server
}

func New(cfg Config, d *dispatch.Dispatcher, logger log.Logger) *Server {
	return &Server{cfg: cfg, dispatcher: d, logger: logger.With("module", "httpshell")}
}

// Start brings up the HTTP and WebSocket listeners and blocks until ctx
// is canceled, then gracefully shuts both down.
func (s *Server) Start(ctx context.Context) error {
	router := mux.NewRouter()
	router.HandleFunc("/", s.handleHTTP).Methods(http.MethodPost)

	s.httpSrv = &http.Server{
		Addr:              addrForPort(s.cfg.Port),
		Handler:           cors.Default().Handler(router),
		ReadHeaderTimeout: nonZero(s.cfg.HTTPTimeout, 30*time.Second),
		ReadTimeout:       nonZero(s.cfg.HTTPTimeout, 30*time.Second),
		WriteTimeout:      nonZero(s.cfg.HTTPTimeout, 30*time.Second),
		IdleTimeout:       nonZero(s.cfg.HTTPIdleTimeout, 2*time.Minute),
	}

	wsRouter := mux.NewRouter()
	wsRouter.HandleFunc("/", s.handleWS)
	s.wsSrv = &http.Server{
		Addr:    addrForPort(s.cfg.WSPort),
		Handler: wsRouter,
	}

	errCh := make(chan error, 2)
	go func() {
		s.logger.Info("starting JSON-RPC HTTP server", "address", s.httpSrv.Addr)
		if err := s.httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	go func() {
		s.logger.Info("starting JSON-RPC WebSocket server", "address", s.wsSrv.Addr)
		if err := s.wsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("stopping JSON-RPC servers")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = s.httpSrv.Shutdown(shutdownCtx)
		_ = s.wsSrv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func addrForPort(port int) string {
	return ":" + strconv.Itoa(port)
}

func nonZero(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

func (s *Server) handleHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 10<<20))
	if err != nil {
		writeSingle(w, errorResponse(nil, int(gatewayerrors.CodeInvalidRequest), "failed to read request body", nil), 400)
		return
	}

	ip := clientIP(r, s.cfg.TrustProxyHeaders)

	trimmed := firstNonSpace(body)
	if trimmed == '[' {
		s.handleBatch(w, r.Context(), body, ip)
		return
	}
	s.handleSingle(w, r.Context(), body, ip)
}

func firstNonSpace(b []byte) byte {
	for _, c := range b {
		if c != ' ' && c != '\t' && c != '\n' && c != '\r' {
			return c
		}
	}
	return 0
}

func (s *Server) handleSingle(w http.ResponseWriter, ctx context.Context, body []byte, ip string) {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeSingle(w, errorResponse(nil, int(gatewayerrors.CodeParseError), "invalid JSON", nil), 400)
		return
	}
	resp, status := s.dispatchOne(ctx, req, ip)
	writeSingle(w, resp, status)
}

func (s *Server) handleBatch(w http.ResponseWriter, ctx context.Context, body []byte, ip string) {
	if !s.cfg.BatchRequestsEnabled {
		writeSingle(w, errorResponse(nil, int(gatewayerrors.CodeBatchDisabled), "batch requests are disabled", nil), 200)
		return
	}

	var reqs []Request
	if err := json.Unmarshal(body, &reqs); err != nil {
		writeSingle(w, errorResponse(nil, int(gatewayerrors.CodeParseError), "invalid JSON", nil), 400)
		return
	}
	if s.cfg.BatchRequestsMaxSize > 0 && len(reqs) > s.cfg.BatchRequestsMaxSize {
		writeSingle(w, errorResponse(nil, int(gatewayerrors.CodeBatchTooLarge), "batch exceeds the maximum allowed size", nil), 200)
		return
	}
	for _, req := range reqs {
		if disallowedInBatch[req.Method] {
			writeSingle(w, errorResponse(nil, int(gatewayerrors.CodeBatchDisabled), "method not allowed in a batch request: "+req.Method, nil), 200)
			return
		}
	}

	responses := make([]Response, len(reqs))
	for i, req := range reqs {
		resp, _ := s.dispatchOne(ctx, req, ip)
		responses[i] = resp
	}

	// Batch responses always use HTTP 200, regardless of any individual
	// call's own status.
	writeJSON(w, 200, responses)
}

func (s *Server) dispatchOne(ctx context.Context, req Request, ip string) (Response, int) {
	return s.dispatchOneConn(ctx, req, ip, "")
}

func (s *Server) dispatchOneConn(ctx context.Context, req Request, ip, connID string) (Response, int) {
	requestID := newRequestID()
	rc := &rpctypes.RequestContext{RequestID: requestID, IP: ip, ConnID: connID}

	result, err := s.dispatcher.Dispatch(ctx, req.Method, req.Params, rc)
	if err != nil {
		gwErr, ok := err.(*gatewayerrors.GatewayError)
		if !ok {
			gwErr = gatewayerrors.Internal(requestID, err)
		}
		return errorResponse(req.ID, int(gwErr.Code), gwErr.Message, gwErr.Data), httpStatusFor(gwErr)
	}
	return successResponse(req.ID, result), 200
}

func newRequestID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}

func writeSingle(w http.ResponseWriter, resp Response, status int) {
	writeJSON(w, status, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
