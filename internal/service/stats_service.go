package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/creatorstats/internal/db"
	"gorm.io/gorm"
)

var (
	// ErrUnauthenticated 表示请求没有可识别的登录身份。
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUserNotFound 表示身份存在但没有对应的用户记录。
	ErrUserNotFound = errors.New("user not found")
)

// StatsResult 是 /api/stats 的响应体。Pinterest 与 Instagram 尚未接入，始终为 null。
type StatsResult struct {
	YouTube   *db.ChannelSnapshot `json:"youtube"`
	Pinterest interface{}         `json:"pinterest"`
	Instagram interface{}         `json:"instagram"`
}

type snapshotRefresher interface {
	Refresh(ctx context.Context, userID uint, accessToken string) (*db.ChannelSnapshot, error)
	Latest(ctx context.Context, userID uint) (*db.ChannelSnapshot, error)
}

// StatsService 根据是否持有 access token 决定刷新还是直接读取缓存快照。
type StatsService struct {
	db        *gorm.DB
	snapshots snapshotRefresher
}

// NewStatsService 构造 StatsService。
func NewStatsService(gdb *gorm.DB, snapshots snapshotRefresher) *StatsService {
	return &StatsService{db: gdb, snapshots: snapshots}
}

// Query 返回当前用户的统计。有 access token 时调用 Refresh，否则只读已保存的快照，不访问外部接口。
func (s *StatsService) Query(ctx context.Context, email, accessToken string) (StatsResult, error) {
	if strings.TrimSpace(email) == "" {
		return StatsResult{}, ErrUnauthenticated
	}

	user, err := db.FindUserByEmail(s.db.WithContext(ctx), email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return StatsResult{}, ErrUserNotFound
		}
		return StatsResult{}, fmt.Errorf("find user: %w", err)
	}

	var snapshot *db.ChannelSnapshot
	if strings.TrimSpace(accessToken) != "" {
		snapshot, err = s.snapshots.Refresh(ctx, user.ID, accessToken)
	} else {
		snapshot, err = s.snapshots.Latest(ctx, user.ID)
	}
	if err != nil {
		return StatsResult{}, err
	}

	return StatsResult{YouTube: snapshot}, nil
}
