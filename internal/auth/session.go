package auth

import (
	"crypto/sha256"
	"errors"
	"io"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"golang.org/x/crypto/hkdf"
)

// SessionName 是会话 cookie 的名称。
const SessionName = "creatorstats_session"

const sessionMaxAge = 30 * 24 * 60 * 60

const (
	sessionKeyEmail        = "email"
	sessionKeyAccessToken  = "access_token"
	sessionKeyRefreshToken = "refresh_token"
	sessionKeyExpiresAt    = "expires_at"
	sessionKeyOAuthState   = "oauth_state"
)

// DeriveCookieKeys 由 SESSION_SECRET 派生签名密钥(64 字节)与 AES-256 加密密钥(32 字节)。
// 会话中保存了 access token，因此 cookie 需要加密而不仅是签名。
func DeriveCookieKeys(secret string) (hashKey, blockKey []byte, err error) {
	if secret == "" {
		return nil, nil, errors.New("session secret is required")
	}

	reader := hkdf.New(sha256.New, []byte(secret), []byte("creatorstats-session"), []byte("cookie-keys"))
	hashKey = make([]byte, 64)
	blockKey = make([]byte, 32)
	if _, err := io.ReadFull(reader, hashKey); err != nil {
		return nil, nil, err
	}
	if _, err := io.ReadFull(reader, blockKey); err != nil {
		return nil, nil, err
	}
	return hashKey, blockKey, nil
}

// NewStore 构造加密的 cookie 会话存储。
func NewStore(secret string, secure bool) (sessions.Store, error) {
	hashKey, blockKey, err := DeriveCookieKeys(secret)
	if err != nil {
		return nil, err
	}

	store := cookie.NewStore(hashKey, blockKey)
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   secure,
		// OAuth 回调是跨站顶层跳转，Lax 才能带上 state 所在的 cookie。
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}
