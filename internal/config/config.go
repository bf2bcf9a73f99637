package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/spf13/viper"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr          string        `validate:"required"`
	Port                string        `validate:"required"`
	DatabasePath        string        `validate:"required"`
	SessionSecret       string        `validate:"required|minLen:8"`
	SessionSecureCookie bool
	GinMode             string        `validate:"required|in:debug,release,test"`
	LogLevel            string        `validate:"required|in:trace,debug,info,warn,error"`
	LogFormat           string        `validate:"required|in:json,console"`
	MetricsEnabled      bool
	// MetricsListenAddr 非空时 /metrics 只在该地址上单独提供，不挂在对外路由上。
	MetricsListenAddr string
	HTTPTimeout         time.Duration `validate:"required"`
	YouTubeAPIBaseURL   string        `validate:"required"`
	OAuth               OAuthConfig
}

// OAuthConfig 描述 Google OAuth 客户端配置。
type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// AllowEmailAccountLinking 为 true 时，新的 OAuth 身份会直接关联到同邮箱的已有账号。
	AllowEmailAccountLinking bool
}

var (
	// ErrOAuthNotConfigured 表示缺少 Google OAuth 客户端凭据。
	ErrOAuthNotConfigured = errors.New("GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET are required")
	// ErrInsecureSessionSecret 表示 release 模式下仍在使用内置的开发用会话密钥。
	ErrInsecureSessionSecret = errors.New("SESSION_SECRET must be set to a private value in release mode")
)

const (
	defaultPort              = "8080"
	defaultDatabasePath      = "creatorstats.db"
	defaultSessionSecret     = "creatorstats-dev-secret"
	defaultYouTubeAPIBaseURL = "https://www.googleapis.com/youtube/v3"
)

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (AppConfig, error) {
	v.AutomaticEnv()

	v.SetDefault("PORT", defaultPort)
	v.SetDefault("DATABASE_PATH", defaultDatabasePath)
	v.SetDefault("SESSION_SECRET", defaultSessionSecret)
	v.SetDefault("SESSION_SECURE_COOKIE", false)
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("HTTP_TIMEOUT", 15*time.Second)
	v.SetDefault("YOUTUBE_API_BASE_URL", defaultYouTubeAPIBaseURL)
	v.SetDefault("ALLOW_EMAIL_ACCOUNT_LINKING", false)

	port := trimmed(v, "PORT")
	if port == "" {
		port = defaultPort
	}

	listenAddr := trimmed(v, "LISTEN_ADDR")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	redirectURL := trimmed(v, "OAUTH_REDIRECT_URL")
	if redirectURL == "" {
		redirectURL = fmt.Sprintf("http://localhost:%s/auth/google/callback", port)
	}

	cfg := AppConfig{
		ListenAddr:          listenAddr,
		Port:                port,
		DatabasePath:        trimmed(v, "DATABASE_PATH"),
		SessionSecret:       trimmed(v, "SESSION_SECRET"),
		SessionSecureCookie: v.GetBool("SESSION_SECURE_COOKIE"),
		GinMode:             strings.ToLower(trimmed(v, "GIN_MODE")),
		LogLevel:            strings.ToLower(trimmed(v, "LOG_LEVEL")),
		LogFormat:           strings.ToLower(trimmed(v, "LOG_FORMAT")),
		MetricsEnabled:      v.GetBool("METRICS_ENABLED"),
		MetricsListenAddr:   trimmed(v, "METRICS_LISTEN_ADDR"),
		HTTPTimeout:         v.GetDuration("HTTP_TIMEOUT"),
		YouTubeAPIBaseURL:   strings.TrimRight(trimmed(v, "YOUTUBE_API_BASE_URL"), "/"),
		OAuth: OAuthConfig{
			ClientID:                 trimmed(v, "GOOGLE_CLIENT_ID"),
			ClientSecret:             trimmed(v, "GOOGLE_CLIENT_SECRET"),
			RedirectURL:              redirectURL,
			AllowEmailAccountLinking: v.GetBool("ALLOW_EMAIL_ACCOUNT_LINKING"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return AppConfig{}, err
	}
	return cfg, nil
}

// Validate 校验配置项取值。
func (c AppConfig) Validate() error {
	v := validate.Struct(&c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %w", v.Errors)
	}
	return nil
}

// RequireOAuth 在启动 HTTP 服务前确认 OAuth 凭据已配置，migrate 等命令不需要。
func (c AppConfig) RequireOAuth() error {
	if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" {
		return ErrOAuthNotConfigured
	}
	return nil
}

func trimmed(v *viper.Viper, key string) string {
	return strings.TrimSpace(v.GetString(key))
}

// RequireSessionSecret 拒绝在 release 模式下使用空的或内置的会话密钥。
func (c AppConfig) RequireSessionSecret() error {
	if c.GinMode != "release" {
		return nil
	}
	secret := strings.TrimSpace(c.SessionSecret)
	if secret == "" || secret == defaultSessionSecret {
		return ErrInsecureSessionSecret
	}
	return nil
}
