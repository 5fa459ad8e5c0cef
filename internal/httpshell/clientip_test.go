package httpshell

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientIPFallsBackToRemoteAddrWhenProxyNotTrusted(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1")

	require.Equal(t, "203.0.113.5", clientIP(r, false))
}

func TestClientIPPrefersXForwardedForWhenTrusted(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	r.Header.Set("X-Forwarded-For", "198.51.100.1, 10.0.0.1")

	require.Equal(t, "198.51.100.1", clientIP(r, true))
}

func TestClientIPParsesForwardedHeaderUnquoted(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	r.Header.Set("Forwarded", "for=192.0.2.60;proto=http;by=203.0.113.43")

	require.Equal(t, "192.0.2.60", clientIP(r, true))
}

func TestClientIPParsesForwardedHeaderQuotedWithPort(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	r.Header.Set("Forwarded", `for="192.0.2.60:8080"`)

	require.Equal(t, "192.0.2.60", clientIP(r, true))
}

func TestClientIPParsesForwardedHeaderBracketedIPv6(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	r.Header.Set("Forwarded", `for="[2001:db8:cafe::17]:4711"`)

	require.Equal(t, "2001:db8:cafe::17", clientIP(r, true))
}

func TestClientIPTruncatesOversizedInput(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "203.0.113.5:54321"
	r.Header.Set("X-Forwarded-For", strings.Repeat("a", maxForwardedInputLen+500))

	got := clientIP(r, true)
	require.LessOrEqual(t, len(got), maxClientIPLen)
}
