package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidrunnerhq/coderunner/internal/config"
	"github.com/voidrunnerhq/coderunner/internal/docker"
	"github.com/voidrunnerhq/coderunner/internal/executor"
)

func testRunDefaults() config.RunDefaultsConfig {
	return config.RunDefaultsConfig{
		DefaultMaxExecutionTime: 5 * time.Second,
		DefaultMaxOutputSize:    1 << 20,
		MaxExecutionTimeCap:     10 * time.Second,
		MaxOutputSizeCap:        2 << 20,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestRunHandler(t *testing.T, socketPath string) *RunHandler {
	t.Helper()
	return NewRunHandler(
		docker.SocketConfig{Path: socketPath, ReadTimeout: time.Second, WriteTimeout: time.Second},
		executor.ContainerPolicy{Hostname: "runner"},
		testRunDefaults(),
		false,
		discardLogger(),
	)
}

func TestRunHandler_Run_MissingValidatedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestRunHandler(t, filepath.Join(t.TempDir(), "docker.sock"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)

	h.Run(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "coderunner.unknown", body["error"])
}

func TestRunHandler_Run_InvalidPayloadJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestRunHandler(t, filepath.Join(t.TempDir(), "docker.sock"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)
	c.Set("validated_body", &RunHTTPRequest{
		Image:   "python:3.12",
		Payload: json.RawMessage(`not-json`),
	})

	h.Run(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "request.payload", body["error"])
}

func TestRunHandler_Run_UnreachableSocketMapsToUnixSocketError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestRunHandler(t, filepath.Join(t.TempDir(), "no-such.sock"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)
	c.Set("validated_body", &RunHTTPRequest{
		Image:   "python:3.12",
		Payload: json.RawMessage(`{"a":1}`),
	})

	h.Run(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "docker.unixsocket", body["error"])
}

func TestRunHandler_Run_CreateContainerFailureReturns400(t *testing.T) {
	gin.SetMode(gin.TestMode)

	sockPath := filepath.Join(t.TempDir(), "docker.sock")
	listener, err := net.Listen("unix", sockPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = listener.Close() })

	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer func() { _ = c.Close() }()
				buf := make([]byte, 4096)
				_, _ = c.Read(buf)
				body := `{"message":"no such image"}`
				_, _ = c.Write([]byte("HTTP/1.1 404 Not Found\r\nContent-Type: application/json\r\nContent-Length: " +
					strconv.Itoa(len(body)) + "\r\n\r\n" + body))
			}(conn)
		}
	}()

	h := newTestRunHandler(t, sockPath)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/api/v1/run", nil)
	c.Set("validated_body", &RunHTTPRequest{
		Image:   "does-not-exist:latest",
		Payload: json.RawMessage(`{"a":1}`),
	})

	h.Run(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "docker.container.create", body["error"])
}

func TestRunHandler_resolveLimits(t *testing.T) {
	h := newTestRunHandler(t, filepath.Join(t.TempDir(), "docker.sock"))

	t.Run("nil input falls back to defaults", func(t *testing.T) {
		limits := h.resolveLimits(nil)
		assert.Equal(t, 5*time.Second, limits.MaxExecutionTime)
		assert.Equal(t, 1<<20, limits.MaxOutputSize)
	})

	t.Run("caller override within caps is honored", func(t *testing.T) {
		limits := h.resolveLimits(&RunLimitsHTTP{MaxExecutionTimeMs: 2000, MaxOutputSize: 512})
		assert.Equal(t, 2*time.Second, limits.MaxExecutionTime)
		assert.Equal(t, 512, limits.MaxOutputSize)
	})

	t.Run("caller override beyond caps is clamped", func(t *testing.T) {
		limits := h.resolveLimits(&RunLimitsHTTP{MaxExecutionTimeMs: 60_000, MaxOutputSize: 10 << 20})
		assert.Equal(t, h.defaults.MaxExecutionTimeCap, limits.MaxExecutionTime)
		assert.Equal(t, h.defaults.MaxOutputSizeCap, limits.MaxOutputSize)
	})
}
