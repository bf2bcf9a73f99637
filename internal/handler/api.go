package handler

import (
	"context"

	"github.com/creatorstats/internal/auth"
	"github.com/creatorstats/internal/db"
	"github.com/creatorstats/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

type identityResolver interface {
	ResolveIdentity(c *gin.Context) (auth.Identity, bool)
}

type sessionGateway interface {
	identityResolver
	BeginLogin(c *gin.Context) (string, error)
	VerifyState(c *gin.Context, state string) error
	SaveLogin(c *gin.Context, email string, token *oauth2.Token) error
	Clear(c *gin.Context) error
}

type statsQuerier interface {
	Query(ctx context.Context, email, accessToken string) (service.StatsResult, error)
}

type oauthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	UserInfo(ctx context.Context, token *oauth2.Token) (auth.Profile, error)
}

type accountSigner interface {
	SignIn(ctx context.Context, input service.SignInInput) (*db.User, error)
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	sessions sessionGateway
	stats    statsQuerier
	accounts accountSigner
	oauth    oauthProvider
	logger   zerolog.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, sessions *auth.Gateway, oauth *auth.GoogleProvider, stats *service.StatsService, accounts *service.AccountService, logger zerolog.Logger) *API {
	return &API{
		db:       gdb,
		sessions: sessions,
		stats:    stats,
		accounts: accounts,
		oauth:    oauth,
		logger:   logger.With().Str("component", "handler").Logger(),
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}
