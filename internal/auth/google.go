package auth

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/creatorstats/internal/config"
	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// YouTubeReadonlyScope 允许只读访问 YouTube 频道数据。
const YouTubeReadonlyScope = "https://www.googleapis.com/auth/youtube.readonly"

// GoogleScopes 是登录时申请的全部 scope。
var GoogleScopes = []string{"openid", "email", "profile", YouTubeReadonlyScope}

const defaultUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

// Profile 是从 userinfo 接口读取的身份信息。
type Profile struct {
	Subject       string `json:"sub"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
}

// GoogleProvider 封装 Google OAuth2 授权码流程。协议细节交给 x/oauth2。
type GoogleProvider struct {
	config      *oauth2.Config
	userInfoURL string
	httpClient  *http.Client
}

// NewGoogleProvider 根据配置构造 GoogleProvider。
func NewGoogleProvider(cfg config.OAuthConfig, timeout time.Duration) *GoogleProvider {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       GoogleScopes,
			Endpoint:     google.Endpoint,
		},
		userInfoURL: defaultUserInfoURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

// SetEndpoints 覆盖授权、令牌与 userinfo 地址，主要用于测试。
func (p *GoogleProvider) SetEndpoints(endpoint oauth2.Endpoint, userInfoURL string) {
	p.config.Endpoint = endpoint
	if strings.TrimSpace(userInfoURL) != "" {
		p.userInfoURL = userInfoURL
	}
}

// AuthCodeURL 返回授权地址：每次都强制 consent，并申请离线访问以获得 refresh token。
func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)
}

// Exchange 用授权码换取令牌。
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	return p.config.Exchange(p.withClient(ctx), code)
}

// Refresh 使用 refresh token 获取新的 access token。
func (p *GoogleProvider) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	return p.config.TokenSource(p.withClient(ctx), token).Token()
}

// UserInfo 读取登录用户的 sub、邮箱与昵称。
func (p *GoogleProvider) UserInfo(ctx context.Context, token *oauth2.Token) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userInfoURL, nil)
	if err != nil {
		return Profile{}, fmt.Errorf("build userinfo request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := oauth2.NewClient(p.withClient(ctx), oauth2.StaticTokenSource(token)).Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("request userinfo: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Profile{}, fmt.Errorf("read userinfo: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return Profile{}, fmt.Errorf("userinfo returned %d", resp.StatusCode)
	}

	var profile Profile
	if err := json.Unmarshal(body, &profile); err != nil {
		return Profile{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return profile, nil
}

func (p *GoogleProvider) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
}
