package handler

import (
	"net/http"

	"github.com/creatorstats/internal/view"
	"github.com/gin-gonic/gin"
)

var loginErrorMessages = map[string]string{
	"access_denied":      "Sign-in was cancelled.",
	"account_not_linked": "This email is already registered with another sign-in. Ask the administrator to enable email account linking.",
	"email_not_verified": "Your Google email address is not verified.",
	"oauth_failed":       "Sign-in failed. Please try again.",
}

// ShowDashboard 渲染仪表盘：未登录时展示登录引导，加载失败时只显示通用提示。
func (a *API) ShowDashboard(c *gin.Context) {
	data := gin.H{
		"title":    "Creator Analytics",
		"signedIn": false,
	}
	if msg, ok := loginErrorMessages[c.Query("error")]; ok {
		data["errorMessage"] = msg
	}

	identity, ok := a.sessions.ResolveIdentity(c)
	if !ok {
		c.HTML(http.StatusOK, "dashboard.html", data)
		return
	}
	data["signedIn"] = true
	data["email"] = identity.Email

	result, err := a.stats.Query(c.Request.Context(), identity.Email, identity.AccessToken)
	if err != nil {
		c.Error(err)
		data["loadFailed"] = true
		c.HTML(http.StatusOK, "dashboard.html", data)
		return
	}

	data["dashboard"] = view.BuildDashboard(result.YouTube)
	c.HTML(http.StatusOK, "dashboard.html", data)
}
