package auth

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveCookieKeys(t *testing.T) {
	hashKey, blockKey, err := DeriveCookieKeys("a-long-session-secret")
	require.NoError(t, err)
	assert.Len(t, hashKey, 64)
	assert.Len(t, blockKey, 32)
	assert.False(t, bytes.Equal(hashKey[:32], blockKey))

	again, _, err := DeriveCookieKeys("a-long-session-secret")
	require.NoError(t, err)
	assert.Equal(t, hashKey, again)

	other, _, err := DeriveCookieKeys("another-session-secret")
	require.NoError(t, err)
	assert.NotEqual(t, hashKey, other)

	_, _, err = DeriveCookieKeys("")
	assert.Error(t, err)
}

func TestStoreEncryptsSessionCookie(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store, err := NewStore("a-long-session-secret", false)
	require.NoError(t, err)

	r := gin.New()
	r.Use(sessions.Sessions(SessionName, store))
	r.GET("/set", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(sessionKeyAccessToken, "ya29.secret-token")
		require.NoError(t, session.Save())
		c.Status(http.StatusNoContent)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/set", nil))

	cookie := rr.Header().Get("Set-Cookie")
	require.NotEmpty(t, cookie)
	assert.Contains(t, cookie, SessionName+"=")
	assert.Contains(t, cookie, "HttpOnly")
	assert.Contains(t, cookie, "SameSite=Lax")
	assert.NotContains(t, cookie, "secret-token")
}
