package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/openagora/forum/forum"
	"github.com/openagora/forum/middleware"
	"github.com/openagora/forum/utils"
)

// renderError maps service errors onto HTTP statuses and site codes so
// every handler reports failures the same way.
func renderError(ctx *gin.Context, err error) {
	var modErr *forum.ModerationError
	if errors.As(err, &modErr) {
		utils.ErrorWithData(ctx, http.StatusUnprocessableEntity, 42201, modErr.Error(), gin.H{
			"status": modErr.Result.Status,
			"reason": modErr.Result.Reason,
		})
		return
	}

	switch {
	case errors.Is(err, forum.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40001, err.Error())
	case errors.Is(err, forum.ErrUnauthenticated):
		utils.Error(ctx, http.StatusUnauthorized, 40110, "unauthorized")
	case errors.Is(err, forum.ErrPermission):
		utils.Error(ctx, http.StatusForbidden, 40301, "permission denied")
	case errors.Is(err, forum.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, err.Error())
	default:
		if utils.Sugar != nil {
			utils.Sugar.Errorf("request failed: %v", err)
		}
		utils.Error(ctx, http.StatusInternalServerError, 50000, "internal error")
	}
}

func getUserID(ctx *gin.Context) (uint, bool) {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return 0, false
	}

	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		return uint(v), true
	case int64:
		return uint(v), true
	case float64:
		return uint(v), true
	default:
		return 0, false
	}
}

func parsePagination(pageStr, sizeStr string) (int, int) {
	page := 1
	pageSize := 10
	if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
		page = p
	}
	if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
		pageSize = s
	}
	return page, pageSize
}

func parseID(raw string) (uint, bool) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func paginationPayload(page, pageSize int, total int64) gin.H {
	return gin.H{
		"page":        page,
		"page_size":   pageSize,
		"total":       total,
		"total_pages": int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
