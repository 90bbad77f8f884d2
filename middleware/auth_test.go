package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagora/forum/utils"
)

func newOptionalAuthRouter(t *testing.T) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(AuthOptional())
	r.GET("/echo", func(ctx *gin.Context) {
		if id, ok := ctx.Get(ContextUserIDKey); ok {
			ctx.JSON(http.StatusOK, gin.H{"user_id": id})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"user_id": nil})
	})
	return r
}

func TestAuthOptionalResolvesIdentity(t *testing.T) {
	r := newOptionalAuthRouter(t)

	token, err := utils.GenerateToken(7, "alice", time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
}

func TestAuthOptionalAnonymousPassesThrough(t *testing.T) {
	r := newOptionalAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":null`)
}

func TestAuthOptionalBadTokenIgnored(t *testing.T) {
	r := newOptionalAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/echo", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":null`)
}
