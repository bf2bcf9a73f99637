package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/creatorstats/internal/db"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	// ErrAccountNotLinked 表示同邮箱用户已存在，但未开启按邮箱关联账号。
	ErrAccountNotLinked = errors.New("account exists for this email but is not linked")
	// ErrEmailNotVerified 表示提供方未确认该邮箱。
	ErrEmailNotVerified = errors.New("email is not verified by the provider")
	// ErrInvalidSignIn 表示 OAuth 回调缺少必要的身份字段。
	ErrInvalidSignIn = errors.New("invalid sign-in profile")
)

// SignInInput 汇总一次 OAuth 登录回调得到的身份与令牌。
type SignInInput struct {
	Provider      string
	Subject       string
	Email         string
	Name          string
	EmailVerified bool
	AccessToken   string
	RefreshToken  string
	ExpiresAt     *time.Time
	Scope         string
}

// AccountService 负责把 OAuth 身份映射到本地用户。
type AccountService struct {
	db              *gorm.DB
	allowEmailLinks bool
	logger          zerolog.Logger
}

// NewAccountService 构造 AccountService。allowEmailLinks 控制是否把新身份关联到同邮箱的已有用户。
func NewAccountService(gdb *gorm.DB, allowEmailLinks bool, logger zerolog.Logger) *AccountService {
	return &AccountService{
		db:              gdb,
		allowEmailLinks: allowEmailLinks,
		logger:          logger.With().Str("component", "accounts").Logger(),
	}
}

// SignIn 查找或创建用户，并保存提供方账号与令牌。
func (s *AccountService) SignIn(ctx context.Context, input SignInInput) (*db.User, error) {
	provider := strings.TrimSpace(input.Provider)
	subject := strings.TrimSpace(input.Subject)
	email := db.NormalizeEmail(input.Email)
	if provider == "" || subject == "" || email == "" {
		return nil, ErrInvalidSignIn
	}
	if !input.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	var user db.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var account db.Account
		err := tx.Where("provider = ? AND provider_account_id = ?", provider, subject).First(&account).Error
		switch {
		case err == nil:
			if err := tx.First(&user, account.UserID).Error; err != nil {
				return fmt.Errorf("load linked user: %w", err)
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			existing, findErr := db.FindUserByEmail(tx, email)
			switch {
			case findErr == nil:
				if !s.allowEmailLinks {
					return ErrAccountNotLinked
				}
				user = *existing
				s.logger.Info().Uint("user_id", user.ID).Str("provider", provider).Msg("linking account by email")
			case errors.Is(findErr, gorm.ErrRecordNotFound):
				user = db.User{Email: email, Name: strings.TrimSpace(input.Name)}
				if err := tx.Create(&user).Error; err != nil {
					return fmt.Errorf("create user: %w", err)
				}
			default:
				return fmt.Errorf("find user: %w", findErr)
			}
		default:
			return fmt.Errorf("find account: %w", err)
		}

		updates := []string{"user_id", "access_token", "expires_at", "scope", "updated_at"}
		if input.RefreshToken != "" {
			updates = append(updates, "refresh_token")
		}
		account = db.Account{
			UserID:            user.ID,
			Provider:          provider,
			ProviderAccountID: subject,
			AccessToken:       input.AccessToken,
			RefreshToken:      input.RefreshToken,
			ExpiresAt:         input.ExpiresAt,
			Scope:             input.Scope,
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_account_id"}},
			DoUpdates: clause.AssignmentColumns(updates),
		}).Create(&account).Error
	})
	if err != nil {
		return nil, err
	}

	return &user, nil
}
