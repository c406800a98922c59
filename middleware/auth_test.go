package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/presensi/presensi-server/config"
	"github.com/presensi/presensi-server/models"
	"github.com/presensi/presensi-server/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	config.Set(config.AppConfig{JWTSecret: "middleware-test-secret"})
	m.Run()
}

func newEngine() *gin.Engine {
	r := gin.New()
	r.GET("/me", AuthRequired(), func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"id":   ctx.MustGet(ContextUserIDKey),
			"role": ctx.GetString(ContextRoleKey),
		})
	})
	r.GET("/admin", AuthRequired(), AdminOnly(), func(ctx *gin.Context) {
		ctx.Status(http.StatusNoContent)
	})
	return r
}

func get(r http.Handler, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequiredRejectsBadHeaders(t *testing.T) {
	r := newEngine()
	for _, h := range []string{"", "Token abc", "Bearer ", "Bearer not-a-jwt"} {
		w := get(r, "/me", h)
		assert.Equal(t, http.StatusUnauthorized, w.Code, "header %q", h)
	}
}

func TestAuthRequiredAcceptsValidToken(t *testing.T) {
	r := newEngine()
	token, err := utils.GenerateToken(5, "Ana", models.RoleUser, time.Hour)
	require.NoError(t, err)

	w := get(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":5,"role":"user"}`, w.Body.String())
}

func TestAuthRequiredRejectsRevokedToken(t *testing.T) {
	r := newEngine()
	token, err := utils.GenerateToken(5, "Ana", models.RoleUser, time.Hour)
	require.NoError(t, err)
	claims, err := utils.ParseToken(token)
	require.NoError(t, err)
	utils.RevokeToken(context.Background(), claims.ID, time.Now().Add(time.Hour))

	w := get(r, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "token revoked")
}

func TestAdminOnly(t *testing.T) {
	r := newEngine()
	user, err := utils.GenerateToken(5, "Ana", models.RoleUser, time.Hour)
	require.NoError(t, err)
	admin, err := utils.GenerateToken(6, "Boss", models.RoleAdmin, time.Hour)
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, get(r, "/admin", "Bearer "+user).Code)
	assert.Equal(t, http.StatusNoContent, get(r, "/admin", "Bearer "+admin).Code)
}

func TestRateLimiter(t *testing.T) {
	l := NewRateLimiter(2)
	r := gin.New()
	r.GET("/", l.Middleware(), func(ctx *gin.Context) { ctx.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, get(r, "/", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, "/", "").Code)

	assert.True(t, l.Allow("someone-else"))
}
