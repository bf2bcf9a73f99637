package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Healthz 检查数据库连接是否可用。
func (a *API) Healthz(c *gin.Context) {
	if a.db == nil {
		respondError(c, http.StatusServiceUnavailable, "database not initialized")
		return
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		respondError(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		c.Error(err)
		respondError(c, http.StatusServiceUnavailable, "database unavailable")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
