package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
)

// ErrInvalidState 表示 OAuth 回调中的 state 与会话不一致。
var ErrInvalidState = errors.New("invalid oauth state")

// Identity 是从会话中解析出的调用者身份及其委托令牌。
type Identity struct {
	Email        string
	AccessToken  string
	RefreshToken string
	ExpiresAt    *time.Time
}

// HasAccessToken 表示是否持有可用于调用外部接口的 access token。
func (i Identity) HasAccessToken() bool {
	return strings.TrimSpace(i.AccessToken) != ""
}

// TokenRefresher 用 refresh token 换取新的 access token。
type TokenRefresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// Gateway 读写会话中的身份信息，依赖 sessions 中间件。
type Gateway struct {
	refresher TokenRefresher
	now       func() time.Time
	logger    zerolog.Logger
}

// NewGateway 构造 Gateway；refresher 为 nil 时过期令牌直接视为不可用。
func NewGateway(refresher TokenRefresher, logger zerolog.Logger) *Gateway {
	return &Gateway{
		refresher: refresher,
		now:       time.Now,
		logger:    logger.With().Str("component", "session").Logger(),
	}
}

// WithClock 允许在测试中固定当前时间。
func (g *Gateway) WithClock(now func() time.Time) *Gateway {
	if now != nil {
		g.now = now
	}
	return g
}

// ResolveIdentity 返回会话中的身份。access token 已过期时尝试刷新，刷新失败则去掉 access token，
// 调用方会退回到读取已保存的快照。
func (g *Gateway) ResolveIdentity(c *gin.Context) (Identity, bool) {
	session := sessions.Default(c)

	email, _ := session.Get(sessionKeyEmail).(string)
	if strings.TrimSpace(email) == "" {
		return Identity{}, false
	}

	identity := Identity{Email: email}
	identity.AccessToken, _ = session.Get(sessionKeyAccessToken).(string)
	identity.RefreshToken, _ = session.Get(sessionKeyRefreshToken).(string)
	if unix, ok := session.Get(sessionKeyExpiresAt).(int64); ok && unix > 0 {
		expiresAt := time.Unix(unix, 0).UTC()
		identity.ExpiresAt = &expiresAt
	}

	if !identity.HasAccessToken() || identity.ExpiresAt == nil || g.now().Before(*identity.ExpiresAt) {
		return identity, true
	}

	if identity.RefreshToken == "" || g.refresher == nil {
		identity.AccessToken = ""
		return identity, true
	}

	token, err := g.refresher.Refresh(c.Request.Context(), &oauth2.Token{
		AccessToken:  identity.AccessToken,
		RefreshToken: identity.RefreshToken,
		Expiry:       *identity.ExpiresAt,
	})
	if err != nil || token == nil || token.AccessToken == "" {
		g.logger.Warn().Err(err).Str("email", email).Msg("refresh access token failed")
		identity.AccessToken = ""
		return identity, true
	}

	if err := g.saveToken(session, token); err != nil {
		g.logger.Warn().Err(err).Msg("save refreshed token failed")
	}

	identity.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		identity.RefreshToken = token.RefreshToken
	}
	identity.ExpiresAt = nil
	if !token.Expiry.IsZero() {
		expiresAt := token.Expiry.UTC()
		identity.ExpiresAt = &expiresAt
	}
	return identity, true
}

// BeginLogin 生成 OAuth state 并写入会话。
func (g *Gateway) BeginLogin(c *gin.Context) (string, error) {
	state := uuid.NewString()
	session := sessions.Default(c)
	session.Set(sessionKeyOAuthState, state)
	if err := session.Save(); err != nil {
		return "", err
	}
	return state, nil
}

// VerifyState 校验并清除会话中的 OAuth state，只能使用一次。
func (g *Gateway) VerifyState(c *gin.Context, state string) error {
	session := sessions.Default(c)
	expected, _ := session.Get(sessionKeyOAuthState).(string)
	session.Delete(sessionKeyOAuthState)
	if err := session.Save(); err != nil {
		return err
	}

	if expected == "" || strings.TrimSpace(state) != expected {
		return ErrInvalidState
	}
	return nil
}

// SaveLogin 在登录成功后保存邮箱与令牌。
func (g *Gateway) SaveLogin(c *gin.Context, email string, token *oauth2.Token) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionKeyEmail, email)
	if token == nil {
		return session.Save()
	}
	return g.saveToken(session, token)
}

// Clear 清空会话，用于登出。
func (g *Gateway) Clear(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	session.Options(sessions.Options{Path: "/", MaxAge: -1})
	return session.Save()
}

func (g *Gateway) saveToken(session sessions.Session, token *oauth2.Token) error {
	session.Set(sessionKeyAccessToken, token.AccessToken)
	if token.RefreshToken != "" {
		session.Set(sessionKeyRefreshToken, token.RefreshToken)
	}
	if token.Expiry.IsZero() {
		session.Delete(sessionKeyExpiresAt)
	} else {
		session.Set(sessionKeyExpiresAt, token.Expiry.Unix())
	}
	return session.Save()
}
