package service

import (
	"context"
	"errors"
	"time"

	"github.com/creatorstats/internal/db"
	"github.com/creatorstats/internal/metrics"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatsFetcher 抽象外部频道统计来源。
type StatsFetcher interface {
	FetchChannelStats(ctx context.Context, accessToken string) (*ChannelStats, error)
}

// SnapshotService 负责拉取最新统计并写入当前快照与当天的日统计。
type SnapshotService struct {
	db      *gorm.DB
	fetcher StatsFetcher
	now     func() time.Time
	logger  zerolog.Logger
	metrics metrics.Recorder
}

// NewSnapshotService 创建 SnapshotService，默认使用系统时钟。
func NewSnapshotService(gdb *gorm.DB, fetcher StatsFetcher, logger zerolog.Logger, rec metrics.Recorder) *SnapshotService {
	if rec == nil {
		rec = metrics.Noop{}
	}
	return &SnapshotService{
		db:      gdb,
		fetcher: fetcher,
		now:     time.Now,
		logger:  logger.With().Str("component", "snapshot").Logger(),
		metrics: rec,
	}
}

// WithClock 允许在测试中固定当前时间。
func (s *SnapshotService) WithClock(now func() time.Time) *SnapshotService {
	if now == nil {
		return s
	}
	s.now = now
	return s
}

// Refresh 拉取用户频道的最新统计，并在同一事务内 upsert 快照与当天的 DailyStat。
// 提供方没有频道时返回 nil, nil 且不写库；拉取失败时同样不写库。
// “当天”按 UTC 日期计算。
func (s *SnapshotService) Refresh(ctx context.Context, userID uint, accessToken string) (*db.ChannelSnapshot, error) {
	if userID == 0 {
		return nil, errors.New("invalid user id")
	}

	stats, err := s.fetcher.FetchChannelStats(ctx, accessToken)
	if err != nil {
		s.metrics.IncSnapshotRefresh(metrics.OutcomeError)
		return nil, err
	}
	if stats == nil {
		s.metrics.IncSnapshotRefresh(metrics.OutcomeSkipped)
		return nil, nil
	}

	now := s.now().UTC()
	today := db.DayOf(now)

	var snapshot db.ChannelSnapshot
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		row := db.ChannelSnapshot{
			UserID:        userID,
			ChannelID:     stats.ChannelID,
			Title:         stats.Title,
			Subscribers:   stats.Subscribers,
			Views:         stats.Views,
			VideoCount:    stats.VideoCount,
			LastFetchedAt: now,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"channel_id", "title", "subscribers", "views", "video_count", "last_fetched_at", "updated_at",
			}),
		}).Create(&row).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", userID).First(&snapshot).Error; err != nil {
			return err
		}

		daily := db.DailyStat{
			SnapshotID:  snapshot.ID,
			Date:        today,
			Views:       stats.Views,
			Subscribers: stats.Subscribers,
			Videos:      stats.VideoCount,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "snapshot_id"}, {Name: "date"}},
			DoUpdates: clause.AssignmentColumns([]string{"views", "subscribers", "videos", "updated_at"}),
		}).Create(&daily).Error; err != nil {
			return err
		}

		return tx.Preload("DailyStats", orderByDate).First(&snapshot, snapshot.ID).Error
	}); err != nil {
		s.metrics.IncSnapshotRefresh(metrics.OutcomeError)
		return nil, err
	}

	s.metrics.IncSnapshotRefresh(metrics.OutcomeWritten)
	s.logger.Info().
		Uint("user_id", userID).
		Str("channel_id", snapshot.ChannelID).
		Str("day", today).
		Msg("channel snapshot refreshed")

	return &snapshot, nil
}

// Latest 返回用户最近一次保存的快照及按日期升序的历史，不存在时返回 nil, nil。
func (s *SnapshotService) Latest(ctx context.Context, userID uint) (*db.ChannelSnapshot, error) {
	var snapshot db.ChannelSnapshot
	err := s.db.WithContext(ctx).
		Preload("DailyStats", orderByDate).
		Where("user_id = ?", userID).
		First(&snapshot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

func orderByDate(tx *gorm.DB) *gorm.DB {
	return tx.Order("date ASC")
}
