//go:build integration

package main

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidrunnerhq/coderunner/internal/api/routes"
	"github.com/voidrunnerhq/coderunner/internal/auth"
	"github.com/voidrunnerhq/coderunner/internal/config"
	"github.com/voidrunnerhq/coderunner/internal/docker"
	"github.com/voidrunnerhq/coderunner/internal/executor"
	"github.com/voidrunnerhq/coderunner/pkg/logger"
)

// TestCheckDockerSocket_Unreachable exercises checkDockerSocket against a
// socket path that does not exist.
func TestCheckDockerSocket_Unreachable(t *testing.T) {
	err := checkDockerSocket(docker.SocketConfig{
		Path:        filepath.Join(t.TempDir(), "no-such.sock"),
		ReadTimeout: time.Second,
	})
	require.Error(t, err)
}

// TestRouterStartsAndServesHealth builds the router exactly as main() does
// and verifies the service responds to its own health endpoint.
func TestRouterStartsAndServesHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		Server: config.ServerConfig{Env: "test"},
		CORS: config.CORSConfig{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST"},
			AllowedHeaders: []string{"Content-Type", "Authorization"},
		},
		RunDefaults: config.RunDefaultsConfig{
			DefaultMaxExecutionTime: 5 * time.Second,
			DefaultMaxOutputSize:    1 << 20,
			MaxExecutionTimeCap:     10 * time.Second,
			MaxOutputSizeCap:        2 << 20,
		},
		Auth: config.AuthConfig{SecretKey: "test-secret", Issuer: "coderunner", Audience: "coderunner-api"},
	}

	log := logger.New("error", "json")
	authService := auth.NewService(&cfg.Auth)
	socketCfg := docker.SocketConfig{Path: filepath.Join(t.TempDir(), "docker.sock"), ReadTimeout: time.Second, WriteTimeout: time.Second}
	policy := executor.ContainerPolicy{Hostname: "runner"}

	router := gin.New()
	routes.Setup(router, cfg, log, authService, socketCfg, policy)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}
