package db

import "time"

// DateLayout 是 DailyStat.Date 的存储格式，只保留到天。
const DateLayout = "2006-01-02"

// ChannelSnapshot 保存某个用户当前绑定的 YouTube 频道概况，每个用户至多一条。
type ChannelSnapshot struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	UserID        uint        `gorm:"uniqueIndex;not null" json:"userId"`
	ChannelID     string      `gorm:"size:64;not null" json:"channelId"`
	Title         string      `gorm:"size:200" json:"title"`
	Subscribers   int64       `gorm:"default:0" json:"subscribers"`
	Views         int64       `gorm:"default:0" json:"views"`
	VideoCount    int64       `gorm:"default:0" json:"videoCount"`
	LastFetchedAt time.Time   `json:"lastFetchedAt"`
	CreatedAt     time.Time   `json:"-"`
	UpdatedAt     time.Time   `json:"-"`
	DailyStats    []DailyStat `gorm:"foreignKey:SnapshotID" json:"dailyStats"`
}

// TableName 指定自定义表名。
func (ChannelSnapshot) TableName() string {
	return "youtube_channels"
}

// DailyStat 记录频道在某一天的数据点，(SnapshotID, Date) 唯一。
// SnapshotID 在 JSON 中以 channelId 输出，指向所属的 ChannelSnapshot。
// Date 以 UTC 日期字符串保存，不含时间部分。
type DailyStat struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SnapshotID  uint      `gorm:"not null;uniqueIndex:idx_daily_stat_snapshot_date,priority:1" json:"channelId"`
	Date        string    `gorm:"size:10;not null;uniqueIndex:idx_daily_stat_snapshot_date,priority:2" json:"date"`
	Views       int64     `gorm:"default:0" json:"views"`
	Subscribers int64     `gorm:"default:0" json:"subscribers"`
	Videos      int64     `gorm:"default:0" json:"videos"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

// TableName 指定自定义表名。
func (DailyStat) TableName() string {
	return "youtube_daily_stats"
}

// DayOf 将时间截断到 UTC 日期。
func DayOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
