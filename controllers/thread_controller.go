package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/openagora/forum/forum"
	"github.com/openagora/forum/store"
	"github.com/openagora/forum/utils"
)

// ThreadController manages threads, comments, votes, flags and
// subscriptions.
type ThreadController struct {
	svc *forum.Service
}

// NewThreadController creates a new ThreadController instance.
func NewThreadController(svc *forum.Service) *ThreadController {
	return &ThreadController{svc: svc}
}

// CreateThread allows authenticated users to open new threads.
func (t *ThreadController) CreateThread(ctx *gin.Context) {
	var req struct {
		Title    string   `json:"title" binding:"required,min=1"`
		Content  string   `json:"content" binding:"required"`
		Category string   `json:"category"`
		Tags     []string `json:"tags"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	thread, err := t.svc.CreateThread(ctx.Request.Context(), userID, forum.ThreadInput{
		Title:    req.Title,
		Content:  req.Content,
		Category: req.Category,
		Tags:     req.Tags,
	})
	if err != nil {
		renderError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:threads:list:")
	utils.Success(ctx, gin.H{"thread": thread})
}

// ListThreads returns paginated visible threads, newest first.
func (t *ThreadController) ListThreads(ctx *gin.Context) {
	page, pageSize := parsePagination(ctx.Query("page"), ctx.Query("page_size"))
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))

	// Cache homepage/category pages only; search terms would explode the
	// key space.
	cacheKey := fmt.Sprintf("cache:threads:list:cat=%s:page=%d:size=%d", category, page, pageSize)
	if search == "" {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	threads, total, err := t.svc.ListThreads(ctx.Request.Context(), store.ThreadFilter{
		Category: category,
		Search:   search,
		Page:     page,
		PageSize: pageSize,
	})
	if err != nil {
		renderError(ctx, err)
		return
	}

	payload := gin.H{
		"items":      threads,
		"pagination": paginationPayload(page, pageSize, total),
	}
	if search == "" {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, utils.CacheTTL())
	}
	utils.Success(ctx, payload)
}

// GetThread returns a single thread with its nested comment tree and
// rendered markdown bodies.
func (t *ThreadController) GetThread(ctx *gin.Context) {
	threadID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid thread id")
		return
	}

	cacheKey := fmt.Sprintf("cache:thread:detail:%d", threadID)
	if b, ok := utils.CacheGetBytes(cacheKey); ok {
		ctx.Data(http.StatusOK, "application/json", b)
		return
	}

	thread, comments, err := t.svc.GetThreadWithComments(ctx.Request.Context(), threadID)
	if err != nil {
		renderError(ctx, err)
		return
	}

	thread.ContentHTML = utils.RenderMarkdown(thread.Content)
	for i := range comments {
		comments[i].ContentHTML = utils.RenderMarkdown(comments[i].Content)
	}

	payload := gin.H{
		"thread":   thread,
		"comments": forum.BuildCommentTree(comments),
	}
	utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, utils.CacheTTL())
	utils.Success(ctx, payload)
}

// CreateComment allows authenticated users to reply inside a thread.
func (t *ThreadController) CreateComment(ctx *gin.Context) {
	threadID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid thread id")
		return
	}

	var req struct {
		Content  string `json:"content" binding:"required"`
		ParentID *uint  `json:"parent_id"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	comment, err := t.svc.CreateComment(ctx.Request.Context(), userID, threadID, req.ParentID, req.Content)
	if err != nil {
		renderError(ctx, err)
		return
	}

	utils.InvalidateByPrefix(fmt.Sprintf("cache:thread:detail:%d", threadID))
	utils.Success(ctx, gin.H{"comment": comment})
}

// ToggleUpvote flips the caller's upvote on a thread or comment and
// reports the resulting state.
func (t *ThreadController) ToggleUpvote(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	target, ok := parseTarget(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40025, "invalid vote target")
		return
	}

	active, err := t.svc.ToggleUpvote(ctx.Request.Context(), userID, target)
	if err != nil {
		renderError(ctx, err)
		return
	}

	invalidateTarget(target)
	utils.Success(ctx, gin.H{"upvoted": active})
}

// FlagContent files a moderation flag against a thread or comment.
func (t *ThreadController) FlagContent(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	target, ok := parseTarget(ctx)
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40026, "invalid flag target")
		return
	}

	var req struct {
		Reason string `json:"reason" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40027, "invalid request payload")
		return
	}

	flag, err := t.svc.FlagContent(ctx.Request.Context(), userID, target, req.Reason)
	if err != nil {
		renderError(ctx, err)
		return
	}

	invalidateTarget(target)
	utils.Success(ctx, gin.H{"flag": flag})
}

// PendingFlags lists unresolved flags for moderators.
func (t *ThreadController) PendingFlags(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	flags, err := t.svc.PendingFlags(ctx.Request.Context(), userID)
	if err != nil {
		renderError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": flags})
}

// ResolveFlag marks a flag resolved. Moderators only.
func (t *ThreadController) ResolveFlag(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	flagID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40028, "invalid flag id")
		return
	}

	flag, err := t.svc.ResolveFlag(ctx.Request.Context(), userID, flagID)
	if err != nil {
		renderError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"flag": flag})
}

// SetThreadVisibility hides or restores a thread. Moderators only.
func (t *ThreadController) SetThreadVisibility(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	threadID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid thread id")
		return
	}

	var req struct {
		Visible *bool `json:"visible" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40029, "invalid request payload")
		return
	}

	if err := t.svc.SetThreadVisibility(ctx.Request.Context(), userID, threadID, *req.Visible); err != nil {
		renderError(ctx, err)
		return
	}

	utils.InvalidateByPrefix("cache:threads:list:")
	utils.InvalidateByPrefix(fmt.Sprintf("cache:thread:detail:%d", threadID))
	utils.Success(ctx, gin.H{"visible": *req.Visible})
}

// ToggleSubscription flips the caller's subscription to a thread.
func (t *ThreadController) ToggleSubscription(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	threadID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid thread id")
		return
	}

	subscribed, err := t.svc.ToggleSubscription(ctx.Request.Context(), userID, threadID)
	if err != nil {
		renderError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"subscribed": subscribed})
}

// GetSubscription reports whether the caller subscribes to a thread.
func (t *ThreadController) GetSubscription(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	threadID, ok := parseID(ctx.Param("id"))
	if !ok {
		utils.Error(ctx, http.StatusBadRequest, 40023, "invalid thread id")
		return
	}

	subscribed, err := t.svc.IsSubscribed(ctx.Request.Context(), userID, threadID)
	if err != nil {
		renderError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"subscribed": subscribed})
}

// Notifications returns the caller's notifications, optionally unread
// only via ?unread=true.
func (t *ThreadController) Notifications(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	onlyUnread := ctx.Query("unread") == "true"
	items, err := t.svc.Notifications(ctx.Request.Context(), userID, onlyUnread)
	if err != nil {
		renderError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"items": items})
}

// MarkNotificationsRead marks all of the caller's notifications read.
func (t *ThreadController) MarkNotificationsRead(ctx *gin.Context) {
	userID, ok := getUserID(ctx)
	if !ok {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
		return
	}

	if err := t.svc.MarkNotificationsRead(ctx.Request.Context(), userID); err != nil {
		renderError(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"read": true})
}

// parseTarget reads the :type/:id route segments into a vote or flag
// target.
func parseTarget(ctx *gin.Context) (forum.Target, bool) {
	id, ok := parseID(ctx.Param("id"))
	if !ok {
		return forum.Target{}, false
	}
	switch ctx.Param("type") {
	case "thread":
		return forum.ThreadTarget(id), true
	case "comment":
		return forum.CommentTarget(id), true
	default:
		return forum.Target{}, false
	}
}

// invalidateTarget drops cached detail pages affected by a vote or flag.
func invalidateTarget(target forum.Target) {
	if target.ThreadID != nil {
		utils.InvalidateByPrefix(fmt.Sprintf("cache:thread:detail:%d", *target.ThreadID))
		utils.InvalidateByPrefix("cache:threads:list:")
		return
	}
	// Comment votes live inside a thread detail page; without the thread
	// id here the whole detail prefix is dropped.
	utils.InvalidateByPrefix("cache:thread:detail:")
}
