package controllers

import (
	"github.com/gin-gonic/gin"

	"github.com/openagora/forum/forum"
	"github.com/openagora/forum/utils"
)

// StatsController exposes aggregate forum statistics.
type StatsController struct {
	svc *forum.Service
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(svc *forum.Service) *StatsController {
	return &StatsController{svc: svc}
}

// GetStats returns user, thread and comment totals.
func (s *StatsController) GetStats(ctx *gin.Context) {
	stats, err := s.svc.GetStats(ctx.Request.Context())
	if err != nil {
		renderError(ctx, err)
		return
	}

	utils.Success(ctx, gin.H{
		"user_count":    stats.Users,
		"thread_count":  stats.Threads,
		"comment_count": stats.Comments,
	})
}
