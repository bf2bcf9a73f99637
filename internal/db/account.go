package db

import "time"

// ProviderGoogle 标识 Google OAuth 登录来源。
const ProviderGoogle = "google"

// Account 记录用户在某个 OAuth 提供方下的身份与授权令牌。
type Account struct {
	ID                uint   `gorm:"primaryKey"`
	UserID            uint   `gorm:"index;not null"`
	Provider          string `gorm:"size:32;not null;uniqueIndex:idx_account_provider_subject,priority:1"`
	ProviderAccountID string `gorm:"size:128;not null;uniqueIndex:idx_account_provider_subject,priority:2"`
	AccessToken       string `gorm:"type:text"`
	RefreshToken      string `gorm:"type:text"`
	ExpiresAt         *time.Time
	Scope             string `gorm:"type:text"`
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName 指定自定义表名。
func (Account) TableName() string {
	return "accounts"
}
