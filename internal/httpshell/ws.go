package httpshell

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/hiero-ledger/relay-gateway/internal/gatewayerrors"
)

// upgrader has no literal pack-example server-side grounding (the pack
// only exercises gorilla/websocket from test code); the zero-value
// Upgrader with a permissive CheckOrigin follows the library's own
// documented idiom.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// handleWS upgrades the connection and serves a read-dispatch-write loop:
// one JSON-RPC request per frame, one response per frame, in request order.
// Each connection gets its own connection id, reused as the RequestContext's
// ConnID for every call made over it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	connID := newRequestID()
	ip := clientIP(r, s.cfg.TrustProxyHeaders)
	ctx := r.Context()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req Request
		if err := json.Unmarshal(message, &req); err != nil {
			s.writeWS(conn, errorResponse(nil, int(gatewayerrors.CodeParseError), "invalid JSON", nil))
			continue
		}

		resp, _ := s.dispatchOneConn(ctx, req, ip, connID)
		if s.writeWS(conn, resp) != nil {
			return
		}
	}
}

func (s *Server) writeWS(conn *websocket.Conn, resp Response) error {
	_ = conn.SetWriteDeadline(timeNowPlus(wsWriteTimeout))
	return conn.WriteJSON(resp)
}

func timeNowPlus(d time.Duration) time.Time {
	return time.Now().Add(d)
}
