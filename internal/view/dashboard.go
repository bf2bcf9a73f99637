package view

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/creatorstats/internal/db"
	"github.com/samber/lo"
)

// MetricTile is one number card on the dashboard.
type MetricTile struct {
	Provider    string
	Label       string
	Value       string
	Sublabel    string
	Placeholder bool
}

// ChartData is serialised into the page for the client-side line chart.
type ChartData struct {
	Labels      []string `json:"labels"`
	Views       []int64  `json:"views"`
	Subscribers []int64  `json:"subscribers"`
}

// Dashboard is everything the dashboard template needs.
type Dashboard struct {
	Tiles        []MetricTile
	Placeholders []MetricTile
	Chart        ChartData
	HasHistory   bool
}

// BuildDashboard maps a snapshot (possibly nil) to tiles and chart series.
func BuildDashboard(snapshot *db.ChannelSnapshot) Dashboard {
	var subscribers, views, videos int64
	title := "Not linked yet"
	var history []db.DailyStat
	if snapshot != nil {
		subscribers = snapshot.Subscribers
		views = snapshot.Views
		videos = snapshot.VideoCount
		if strings.TrimSpace(snapshot.Title) != "" {
			title = snapshot.Title
		}
		history = sortedHistory(snapshot.DailyStats)
	}

	return Dashboard{
		Tiles: []MetricTile{
			{Provider: "youtube", Label: "YouTube subscribers", Value: FormatCount(subscribers), Sublabel: title},
			{Provider: "youtube", Label: "YouTube total views", Value: FormatCount(views), Sublabel: "Lifetime channel views"},
			{Provider: "youtube", Label: "YouTube videos", Value: FormatCount(videos), Sublabel: "Uploaded videos"},
		},
		Placeholders: []MetricTile{
			{Provider: "pinterest", Label: "Pinterest impressions", Value: FormatCount(0), Sublabel: "Connect Pinterest API", Placeholder: true},
			{Provider: "pinterest", Label: "Pinterest outbound clicks", Value: FormatCount(0), Sublabel: "Connect Pinterest API", Placeholder: true},
			{Provider: "instagram", Label: "Instagram reach", Value: FormatCount(0), Sublabel: "Connect Instagram API", Placeholder: true},
		},
		Chart: ChartData{
			Labels:      lo.Map(history, func(d db.DailyStat, _ int) string { return ShortDateLabel(d.Date) }),
			Views:       lo.Map(history, func(d db.DailyStat, _ int) int64 { return d.Views }),
			Subscribers: lo.Map(history, func(d db.DailyStat, _ int) int64 { return d.Subscribers }),
		},
		HasHistory: len(history) > 0,
	}
}

func sortedHistory(stats []db.DailyStat) []db.DailyStat {
	history := make([]db.DailyStat, len(stats))
	copy(history, stats)
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date < history[j].Date
	})
	return history
}

// ShortDateLabel renders a stored day as "2 Jan". Unparseable input is returned unchanged.
func ShortDateLabel(date string) string {
	day, err := time.Parse(db.DateLayout, strings.TrimSpace(date))
	if err != nil {
		return date
	}
	return day.Format("2 Jan")
}

// FormatCount groups digits the en-IN way: last three, then pairs (12,34,567).
func FormatCount(n int64) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}

	digits := strconv.FormatInt(n, 10)
	if len(digits) <= 3 {
		return digits
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	groups = append([]string{head}, groups...)
	return strings.Join(groups, ",") + "," + tail
}
