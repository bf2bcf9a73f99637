package handler

import (
	"errors"
	"net/http"

	"github.com/creatorstats/internal/service"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

// statsErrorStatus 将统计查询错误映射为 HTTP 状态码与对外提示，不暴露内部细节。
func statsErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		return http.StatusUnauthorized, "Unauthorized"
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound, "User not found"
	case errors.Is(err, service.ErrProviderFetch):
		return http.StatusBadGateway, "Failed to load stats"
	default:
		return http.StatusInternalServerError, "Failed to load stats"
	}
}
