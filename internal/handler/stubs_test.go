package handler

import (
	"context"
	"net/http"

	"github.com/creatorstats/internal/auth"
	"github.com/creatorstats/internal/db"
	"github.com/creatorstats/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"golang.org/x/oauth2"
)

type stubHTMLRender struct {
	name string
	data interface{}
}

type stubHTMLInstance struct{}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.name = name
	r.data = data
	return &stubHTMLInstance{}
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

type stubSessions struct {
	identity   auth.Identity
	signedIn   bool
	state      string
	stateErr   error
	savedEmail string
	savedToken *oauth2.Token
	cleared    bool
}

func (s *stubSessions) ResolveIdentity(*gin.Context) (auth.Identity, bool) {
	return s.identity, s.signedIn
}

func (s *stubSessions) BeginLogin(*gin.Context) (string, error) {
	return s.state, nil
}

func (s *stubSessions) VerifyState(_ *gin.Context, state string) error {
	if s.stateErr != nil {
		return s.stateErr
	}
	if state != s.state {
		return auth.ErrInvalidState
	}
	return nil
}

func (s *stubSessions) SaveLogin(_ *gin.Context, email string, token *oauth2.Token) error {
	s.savedEmail = email
	s.savedToken = token
	return nil
}

func (s *stubSessions) Clear(*gin.Context) error {
	s.cleared = true
	return nil
}

type stubStats struct {
	result      service.StatsResult
	err         error
	calls       int
	email       string
	accessToken string
}

func (s *stubStats) Query(_ context.Context, email, accessToken string) (service.StatsResult, error) {
	s.calls++
	s.email = email
	s.accessToken = accessToken
	return s.result, s.err
}

type stubOAuth struct {
	token       *oauth2.Token
	exchangeErr error
	profile     auth.Profile
	profileErr  error
	code        string
}

func (s *stubOAuth) AuthCodeURL(state string) string {
	return "https://accounts.example.com/auth?state=" + state
}

func (s *stubOAuth) Exchange(_ context.Context, code string) (*oauth2.Token, error) {
	s.code = code
	return s.token, s.exchangeErr
}

func (s *stubOAuth) UserInfo(context.Context, *oauth2.Token) (auth.Profile, error) {
	return s.profile, s.profileErr
}

type stubAccounts struct {
	user  *db.User
	err   error
	input service.SignInInput
}

func (s *stubAccounts) SignIn(_ context.Context, input service.SignInInput) (*db.User, error) {
	s.input = input
	return s.user, s.err
}
