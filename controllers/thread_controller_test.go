package controllers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openagora/forum/forum"
	"github.com/openagora/forum/middleware"
	"github.com/openagora/forum/models"
	"github.com/openagora/forum/store"
	"github.com/openagora/forum/utils"
)

// testAuth injects a fixed user ID the way AuthRequired would after
// validating a token.
func testAuth(userID uint) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if userID != 0 {
			ctx.Set(middleware.ContextUserIDKey, userID)
		}
		ctx.Next()
	}
}

func newTestRouter(t *testing.T, st store.Store, userID uint) *gin.Engine {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	svc := forum.NewService(st)
	tc := NewThreadController(svc)

	r := gin.New()
	r.Use(testAuth(userID))
	r.POST("/api/v1/threads", tc.CreateThread)
	r.GET("/api/v1/threads/:id", tc.GetThread)
	r.POST("/api/v1/threads/:id/comments", tc.CreateComment)
	r.POST("/api/v1/vote/:type/:id", tc.ToggleUpvote)
	r.POST("/api/v1/flag/:type/:id", tc.FlagContent)
	r.POST("/api/v1/threads/:id/subscribe", tc.ToggleSubscription)
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) (*httptest.ResponseRecorder, utils.JSONResponse) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var envelope utils.JSONResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w, envelope
}

func seedStoreThread(t *testing.T, st store.Store) *models.Thread {
	t.Helper()
	thread := &models.Thread{AuthorID: 1, Title: "Existing thread", Content: "body text", Category: "general", IsVisible: true}
	require.NoError(t, st.CreateThread(t.Context(), thread))
	return thread
}

func TestCreateThreadEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(t.Context(), &models.User{Username: "alice"}))
	r := newTestRouter(t, st, 1)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/threads", gin.H{
		"title":   "A new discussion",
		"content": "With a real body",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, envelope.Code)
	assert.Equal(t, "success", envelope.Message)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	thread, ok := data["thread"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "A new discussion", thread["title"])
}

func TestCreateThreadEndpointUnauthorized(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryStore(), 0)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/threads", gin.H{
		"title":   "A new discussion",
		"content": "With a real body",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 40110, envelope.Code)
}

func TestCreateThreadEndpointModerationVerdict(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(t.Context(), &models.User{Username: "alice"}))
	r := newTestRouter(t, st, 1)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/threads", gin.H{
		"title":   "Totally legit",
		"content": "this is spam content",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, 42201, envelope.Code)

	data, ok := envelope.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, string(forum.ModerationFlagged), data["status"])
	assert.Contains(t, data["reason"], "spam")
}

func TestGetThreadEndpointNotFound(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryStore(), 1)

	w, envelope := doJSON(t, r, http.MethodGet, "/api/v1/threads/42", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 40401, envelope.Code)
}

func TestCreateCommentEndpoint(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(t.Context(), &models.User{Username: "alice"}))
	thread := seedStoreThread(t, st)
	r := newTestRouter(t, st, 1)

	w, envelope := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/threads/%d/comments", thread.ID), gin.H{
		"content": "a decent reply",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, envelope.Code)

	count, err := st.CountThreadComments(t.Context(), thread.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestVoteEndpointToggle(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(t.Context(), &models.User{Username: "alice"}))
	thread := seedStoreThread(t, st)
	r := newTestRouter(t, st, 1)
	path := fmt.Sprintf("/api/v1/vote/thread/%d", thread.ID)

	w, envelope := doJSON(t, r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, true, data["upvoted"])

	w, envelope = doJSON(t, r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = envelope.Data.(map[string]interface{})
	assert.Equal(t, false, data["upvoted"])
}

func TestVoteEndpointInvalidTarget(t *testing.T) {
	r := newTestRouter(t, store.NewMemoryStore(), 1)

	w, envelope := doJSON(t, r, http.MethodPost, "/api/v1/vote/post/1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40025, envelope.Code)
}

func TestFlagEndpointRequiresReason(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(t.Context(), &models.User{Username: "alice"}))
	thread := seedStoreThread(t, st)
	r := newTestRouter(t, st, 1)

	w, envelope := doJSON(t, r, http.MethodPost, fmt.Sprintf("/api/v1/flag/thread/%d", thread.ID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, 40027, envelope.Code)
}

func TestSubscribeEndpointToggle(t *testing.T) {
	st := store.NewMemoryStore()
	require.NoError(t, st.CreateUser(t.Context(), &models.User{Username: "alice"}))
	thread := seedStoreThread(t, st)
	r := newTestRouter(t, st, 1)
	path := fmt.Sprintf("/api/v1/threads/%d/subscribe", thread.ID)

	w, envelope := doJSON(t, r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data := envelope.Data.(map[string]interface{})
	assert.Equal(t, true, data["subscribed"])

	w, envelope = doJSON(t, r, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	data = envelope.Data.(map[string]interface{})
	assert.Equal(t, false, data["subscribed"])
}
