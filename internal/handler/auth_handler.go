package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/creatorstats/internal/db"
	"github.com/creatorstats/internal/service"
	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
)

// BeginGoogleLogin 生成 state 并跳转到 Google 授权页。
func (a *API) BeginGoogleLogin(c *gin.Context) {
	state, err := a.sessions.BeginLogin(c)
	if err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to start sign-in")
		return
	}
	c.Redirect(http.StatusFound, a.oauth.AuthCodeURL(state))
}

// GoogleCallback 处理授权回调：校验 state、换取令牌、解析身份并写入会话。
func (a *API) GoogleCallback(c *gin.Context) {
	if errParam := strings.TrimSpace(c.Query("error")); errParam != "" {
		a.logger.Info().Str("error", errParam).Msg("oauth consent not granted")
		redirectWithLoginError(c, "access_denied")
		return
	}

	if err := a.sessions.VerifyState(c, c.Query("state")); err != nil {
		c.Error(err)
		respondError(c, http.StatusBadRequest, "Invalid OAuth state")
		return
	}

	code := strings.TrimSpace(c.Query("code"))
	if code == "" {
		respondError(c, http.StatusBadRequest, "Missing authorization code")
		return
	}

	ctx := c.Request.Context()
	token, err := a.oauth.Exchange(ctx, code)
	if err != nil {
		a.logger.Warn().Err(err).Msg("oauth code exchange failed")
		redirectWithLoginError(c, "oauth_failed")
		return
	}

	profile, err := a.oauth.UserInfo(ctx, token)
	if err != nil {
		a.logger.Warn().Err(err).Msg("oauth userinfo failed")
		redirectWithLoginError(c, "oauth_failed")
		return
	}

	user, err := a.accounts.SignIn(ctx, service.SignInInput{
		Provider:      db.ProviderGoogle,
		Subject:       profile.Subject,
		Email:         profile.Email,
		Name:          profile.Name,
		EmailVerified: profile.EmailVerified,
		AccessToken:   token.AccessToken,
		RefreshToken:  token.RefreshToken,
		ExpiresAt:     tokenExpiry(token),
		Scope:         tokenScope(token),
	})
	if err != nil {
		a.logger.Warn().Err(err).Str("email", profile.Email).Msg("sign-in rejected")
		switch {
		case errors.Is(err, service.ErrAccountNotLinked):
			redirectWithLoginError(c, "account_not_linked")
		case errors.Is(err, service.ErrEmailNotVerified):
			redirectWithLoginError(c, "email_not_verified")
		default:
			redirectWithLoginError(c, "oauth_failed")
		}
		return
	}

	if err := a.sessions.SaveLogin(c, user.Email, token); err != nil {
		c.Error(err)
		respondError(c, http.StatusInternalServerError, "Failed to save session")
		return
	}

	c.Redirect(http.StatusFound, "/")
}

// Logout 清空会话并回到首页。
func (a *API) Logout(c *gin.Context) {
	if err := a.sessions.Clear(c); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusFound, "/")
}

func redirectWithLoginError(c *gin.Context, code string) {
	c.Redirect(http.StatusFound, "/?error="+url.QueryEscape(code))
}

func tokenExpiry(token *oauth2.Token) *time.Time {
	if token == nil || token.Expiry.IsZero() {
		return nil
	}
	expiry := token.Expiry.UTC()
	return &expiry
}

func tokenScope(token *oauth2.Token) string {
	if token == nil {
		return ""
	}
	scope, _ := token.Extra("scope").(string)
	return scope
}
