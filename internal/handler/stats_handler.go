package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStats 返回当前用户的频道统计：有 access token 时刷新，否则返回已保存的快照。
func (a *API) GetStats(c *gin.Context) {
	identity, ok := a.sessions.ResolveIdentity(c)
	if !ok {
		respondError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	result, err := a.stats.Query(c.Request.Context(), identity.Email, identity.AccessToken)
	if err != nil {
		c.Error(err)
		status, message := statsErrorStatus(err)
		respondError(c, status, message)
		return
	}

	c.JSON(http.StatusOK, result)
}
