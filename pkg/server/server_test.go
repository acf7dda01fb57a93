package server

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	tests := []struct {
		name      string
		env       map[string]string
		wantPort  int
		wantLevel string
	}{
		{"defaults", nil, 8080, "INFO"},
		{"port", map[string]string{EnvPort: "9090"}, 9090, "INFO"},
		{"functions port wins", map[string]string{EnvPort: "9090", EnvFunctionsPort: "7071"}, 7071, "INFO"},
		{"invalid functions port falls back", map[string]string{EnvPort: "9090", EnvFunctionsPort: "abc"}, 9090, "INFO"},
		{"out of range port ignored", map[string]string{EnvPort: "70000"}, 8080, "INFO"},
		{"log level", map[string]string{"LOG_LEVEL": "debug"}, 8080, "debug"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, k := range []string{EnvPort, EnvFunctionsPort, "LOG_LEVEL"} {
				t.Setenv(k, tt.env[k])
			}

			cfg := DefaultConfig()
			assert.Equal(t, tt.wantPort, cfg.Port)
			assert.Equal(t, tt.wantLevel, cfg.LogLevel)
			assert.Positive(t, cfg.ShutdownTimeout)
		})
	}
}

func testConfig() *Config {
	cfg := DefaultConfig()
	cfg.Address = "127.0.0.1"
	cfg.Port = 0
	cfg.ShutdownTimeout = 5 * time.Second
	return cfg
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, "ok")
}

func newTestServer(handlers map[string]http.HandlerFunc, opts ...Option) *Server {
	opts = append([]Option{
		WithName("rgvalidator-test"),
		WithVersion("v0.0.1"),
		WithConfig(testConfig()),
		WithHandler(handlers),
	}, opts...)
	return New(opts...)
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNew_Defaults(t *testing.T) {
	s := New(WithConfig(nil))
	assert.Equal(t, defaultName, s.name)
	assert.Equal(t, defaultVersion, s.version)
	assert.NotNil(t, s.config)
	assert.Empty(t, s.Addr())
}

func TestRootRoute(t *testing.T) {
	s := newTestServer(map[string]http.HandlerFunc{"/api/validate": okHandler})
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/")
	require.Equal(t, http.StatusOK, w.Code)

	var info InfoResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "rgvalidator-test", info.Name)
	assert.Equal(t, "v0.0.1", info.Version)
	assert.False(t, info.Ready)
	assert.Equal(t, []string{"/api/validate", "/health", "/metrics", "/ready"}, info.Routes)

	w = do(t, h, http.MethodGet, "/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decodeError(t, w).Code)
}

func TestHealthAndReady(t *testing.T) {
	s := newTestServer(nil)
	h := s.Handler()

	w := do(t, h, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")

	w = do(t, h, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "not_ready")

	s.setReady(true, "127.0.0.1:1")
	w = do(t, h, http.MethodGet, "/ready")
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, h, http.MethodPost, "/health")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	assert.Equal(t, http.MethodGet, w.Header().Get("Allow"))
	assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, w).Code)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(map[string]http.HandlerFunc{"/api/validate": okHandler})
	h := s.Handler()

	do(t, h, http.MethodGet, "/api/validate")
	w := do(t, h, http.MethodGet, "/metrics")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "rgvalidator_http_requests_total")
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	s := newTestServer(map[string]http.HandlerFunc{
		"/echo": func(w http.ResponseWriter, r *http.Request) {
			seen = RequestIDFromContext(r.Context())
		},
	})
	h := s.Handler()

	t.Run("generated", func(t *testing.T) {
		w := do(t, h, http.MethodGet, "/echo")
		id := w.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Equal(t, id, seen)
	})

	t.Run("propagated", func(t *testing.T) {
		in := uuid.New().String()
		r := httptest.NewRequest(http.MethodGet, "/echo", nil)
		r.Header.Set(HeaderRequestID, in)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, in, w.Header().Get(HeaderRequestID))
		assert.Equal(t, in, seen)
	})

	t.Run("malformed replaced", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/echo", nil)
		r.Header.Set(HeaderRequestID, "<script>")
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	cfg := testConfig()
	cfg.RateLimit = 0.001
	cfg.RateLimitBurst = 2
	s := New(WithConfig(cfg), WithHandler(map[string]http.HandlerFunc{"/api/validate": okHandler}))
	h := s.Handler()

	for range 2 {
		assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/api/validate").Code)
	}

	w := do(t, h, http.MethodGet, "/api/validate")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	resp := decodeError(t, w)
	assert.Equal(t, "RATE_LIMIT_EXCEEDED", resp.Code)
	assert.True(t, resp.Retryable)
	assert.Equal(t, w.Header().Get(HeaderRequestID), resp.RequestID)

	// system routes are not limited
	assert.Equal(t, http.StatusOK, do(t, h, http.MethodGet, "/health").Code)
}

func TestRecoverMiddleware(t *testing.T) {
	s := newTestServer(map[string]http.HandlerFunc{
		"/panic": func(http.ResponseWriter, *http.Request) { panic("kaboom") },
	})

	w := do(t, s.Handler(), http.MethodGet, "/panic")
	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "INTERNAL", resp.Code)
	assert.Equal(t, "internal server error", resp.Message)
	assert.NotContains(t, w.Body.String(), "kaboom")
}

func TestStatusRecorder(t *testing.T) {
	w := httptest.NewRecorder()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

	rec.WriteHeader(http.StatusTeapot)
	rec.WriteHeader(http.StatusOK)
	n, err := rec.Write([]byte("body"))
	require.NoError(t, err)

	assert.Equal(t, http.StatusTeapot, rec.status)
	assert.Equal(t, 4, n)
	assert.Equal(t, 4, rec.bytes)
	assert.Same(t, w, rec.Unwrap())
}

func TestRun_ServesUntilCanceled(t *testing.T) {
	s := newTestServer(map[string]http.HandlerFunc{"/api/validate": okHandler})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return s.Addr() != "" }, 5*time.Second, 10*time.Millisecond)

	resp, err := http.Get("http://" + s.Addr() + "/ready")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post("http://"+s.Addr()+"/api/validate", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	cancel()
	select {
	case err := <-errCh:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("server did not shut down")
	}
	assert.False(t, s.isReady())
}

func TestRun_ListenFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port
	s := New(WithConfig(cfg))

	err = s.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to listen")
}
