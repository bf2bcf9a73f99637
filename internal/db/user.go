package db

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// User 定义了用户模型，以邮箱作为身份键
type User struct {
	gorm.Model
	Email string `gorm:"size:320;uniqueIndex;not null"`
	Name  string `gorm:"size:200"`
}

// NormalizeEmail 统一邮箱格式，去掉首尾空白并转为小写。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// FindUserByEmail 按邮箱查找用户，未找到时返回 gorm.ErrRecordNotFound。
func FindUserByEmail(gdb *gorm.DB, email string) (*User, error) {
	if gdb == nil {
		return nil, errors.New("database not initialized")
	}

	normalized := NormalizeEmail(email)
	if normalized == "" {
		return nil, gorm.ErrRecordNotFound
	}

	var user User
	if err := gdb.Where("email = ?", normalized).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
