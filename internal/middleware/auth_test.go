package middleware

import (
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opensupplyhub/oshub/internal/config"
	"github.com/opensupplyhub/oshub/internal/pkg/jwt"
)

func testConfig() *config.Config {
	return &config.Config{JWTSecret: "test-secret", JWTExpireHours: 1}
}

func protectedRouter(cfg *config.Config, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{Auth(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(200, gin.H{
			"userID": c.GetString("userID"),
			"role":   c.GetString("role"),
		})
	})
	r.GET("/protected", handlers...)
	return r
}

func signToken(t *testing.T, cfg *config.Config, role string) string {
	t.Helper()
	jwtCfg := jwt.DefaultConfig(cfg.JWTSecret)
	jwtCfg.AccessExpiry = time.Hour
	token, err := jwt.GenerateTokenWithRole("user-1", "user@example.com", role, jwtCfg)
	require.NoError(t, err)
	return token
}

func TestAuthNoHeader(t *testing.T) {
	r := protectedRouter(testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	r.ServeHTTP(w, req)

	require.Equal(t, 401, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Authorization header required", body["error"])
}

func TestAuthInvalidToken(t *testing.T) {
	r := protectedRouter(testConfig())

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	r.ServeHTTP(w, req)

	require.Equal(t, 401, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Invalid token", body["error"])
}

func TestAuthValidTokenSetsContext(t *testing.T) {
	cfg := testConfig()
	r := protectedRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "moderator"))
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "user-1", body["userID"])
	assert.Equal(t, "moderator", body["role"])
}

func TestAuthRawTokenWithoutBearerPrefix(t *testing.T) {
	cfg := testConfig()
	r := protectedRouter(cfg)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", signToken(t, cfg, ""))
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
}

func TestRequireRoleRejectsOtherRoles(t *testing.T) {
	cfg := testConfig()
	r := protectedRouter(cfg, RequireRole("moderator"))

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "user"))
	r.ServeHTTP(w, req)

	require.Equal(t, 403, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, cfg, "moderator"))
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
}
