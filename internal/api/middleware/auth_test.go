package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voidrunnerhq/coderunner/internal/auth"
	"github.com/voidrunnerhq/coderunner/internal/config"
	"github.com/voidrunnerhq/coderunner/pkg/logger"
)

func testAuthConfig() *config.AuthConfig {
	return &config.AuthConfig{
		SecretKey: "test-secret-key-for-testing-only",
		Issuer:    "coderunner-test",
		Audience:  "coderunner-api-test",
	}
}

func setupTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	return gin.New()
}

func TestNewAuthMiddleware(t *testing.T) {
	authSvc := auth.NewService(testAuthConfig())
	log := logger.New("debug", "console")

	middleware := NewAuthMiddleware(authSvc, log.Logger)

	assert.NotNil(t, middleware)
	assert.Equal(t, authSvc, middleware.authService)
	assert.Equal(t, log.Logger, middleware.logger)
}

func TestAuthMiddleware_RequireAuth_Success(t *testing.T) {
	authSvc := auth.NewService(testAuthConfig())
	log := logger.New("debug", "console")
	middleware := NewAuthMiddleware(authSvc, log.Logger)

	token, err := authSvc.IssueAccessToken("ci-runner", time.Hour)
	require.NoError(t, err)

	router := setupTestRouter()
	router.Use(middleware.RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		subject, _ := c.Get("token_subject")
		assert.Equal(t, "ci-runner", subject)
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthMiddleware_RequireAuth_MissingToken(t *testing.T) {
	authSvc := auth.NewService(testAuthConfig())
	log := logger.New("debug", "console")
	middleware := NewAuthMiddleware(authSvc, log.Logger)

	router := setupTestRouter()
	router.Use(middleware.RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequireAuth_InvalidToken(t *testing.T) {
	authSvc := auth.NewService(testAuthConfig())
	log := logger.New("debug", "console")
	middleware := NewAuthMiddleware(authSvc, log.Logger)

	router := setupTestRouter()
	router.Use(middleware.RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-valid-token")
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequireAuth_ExpiredToken(t *testing.T) {
	authSvc := auth.NewService(testAuthConfig())
	log := logger.New("debug", "console")
	middleware := NewAuthMiddleware(authSvc, log.Logger)

	token, err := authSvc.IssueAccessToken("ci-runner", -time.Minute)
	require.NoError(t, err)

	router := setupTestRouter()
	router.Use(middleware.RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthMiddleware_RequireAuth_MalformedHeader(t *testing.T) {
	authSvc := auth.NewService(testAuthConfig())
	log := logger.New("debug", "console")
	middleware := NewAuthMiddleware(authSvc, log.Logger)

	router := setupTestRouter()
	router.Use(middleware.RequireAuth())
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "success"})
	})

	testCases := []struct {
		name   string
		header string
	}{
		{"no bearer prefix", "just-a-token"},
		{"empty bearer", "Bearer "},
		{"wrong prefix", "Basic token"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/protected", nil)
			req.Header.Set("Authorization", tc.header)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestExtractToken(t *testing.T) {
	testCases := []struct {
		name     string
		header   string
		expected string
	}{
		{"valid bearer token", "Bearer valid-token-123", "valid-token-123"},
		{"empty header", "", ""},
		{"no bearer prefix", "just-a-token", ""},
		{"bearer with no token", "Bearer ", ""},
		{"bearer with only spaces", "Bearer   ", ""},
		{"wrong case", "bearer token-123", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gin.SetMode(gin.TestMode)
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			req := httptest.NewRequest("GET", "/test", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			c.Request = req

			token := extractToken(c)
			assert.Equal(t, tc.expected, token)
		})
	}
}
