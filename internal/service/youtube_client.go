package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/creatorstats/internal/metrics"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// DefaultYouTubeAPIBaseURL 是 YouTube Data API v3 的默认地址。
const DefaultYouTubeAPIBaseURL = "https://www.googleapis.com/youtube/v3"

const providerYouTube = "youtube"

// ErrProviderFetch 表示调用外部统计接口失败（网络错误或非 2xx 响应）。
var ErrProviderFetch = errors.New("provider fetch failed")

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// ChannelStats 是从 YouTube 接口归一化后的频道统计。
type ChannelStats struct {
	ChannelID   string
	Title       string
	Subscribers int64
	Views       int64
	VideoCount  int64
}

type youtubeChannelListResponse struct {
	Items []struct {
		ID      string `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
		Statistics struct {
			ViewCount       string `json:"viewCount"`
			SubscriberCount string `json:"subscriberCount"`
			VideoCount      string `json:"videoCount"`
		} `json:"statistics"`
	} `json:"items"`
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// YouTubeClient 使用用户授权的 access token 读取其频道统计。
type YouTubeClient struct {
	http    httpDoer
	baseURL string
	logger  zerolog.Logger
	metrics metrics.Recorder
}

// NewYouTubeClient 构造 YouTubeClient，baseURL 为空时使用官方地址。
func NewYouTubeClient(baseURL string, timeout time.Duration, logger zerolog.Logger, rec metrics.Recorder) *YouTubeClient {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	c := &YouTubeClient{
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "youtube").Logger(),
		metrics: rec,
	}
	c.SetBaseURL(baseURL)
	return c
}

func (c *YouTubeClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		c.http = &http.Client{Timeout: 15 * time.Second}
		return
	}
	c.http = client
}

func (c *YouTubeClient) SetBaseURL(base string) {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		base = DefaultYouTubeAPIBaseURL
	}
	c.baseURL = base
}

// FetchChannelStats 请求 channels?part=snippet,statistics&mine=true。
// 账号下没有频道时返回 nil, nil；网络错误与非 2xx 响应包装为 ErrProviderFetch，不做重试。
func (c *YouTubeClient) FetchChannelStats(ctx context.Context, accessToken string) (*ChannelStats, error) {
	accessToken = strings.TrimSpace(accessToken)
	if accessToken == "" {
		return nil, fmt.Errorf("%w: access token is required", ErrProviderFetch)
	}

	stats, err := c.fetch(ctx, accessToken)
	switch {
	case err != nil:
		c.metrics.IncProviderFetch(providerYouTube, metrics.OutcomeError)
		c.logger.Warn().Err(err).Msg("fetch channel stats failed")
	case stats == nil:
		c.metrics.IncProviderFetch(providerYouTube, metrics.OutcomeNoChannel)
	default:
		c.metrics.IncProviderFetch(providerYouTube, metrics.OutcomeOK)
	}
	return stats, err
}

func (c *YouTubeClient) fetch(ctx context.Context, accessToken string) (*ChannelStats, error) {
	query := url.Values{}
	query.Set("part", "snippet,statistics")
	query.Set("mine", "true")
	endpoint := c.baseURL + "/channels?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrProviderFetch, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "creatorstats/1.0")

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderFetch, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrProviderFetch, err)
	}

	var payload youtubeChannelListResponse
	decodeErr := json.Unmarshal(body, &payload)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := ""
		if decodeErr == nil {
			msg = strings.TrimSpace(payload.Error.Message)
		}
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("%w: youtube returned %d: %s", ErrProviderFetch, resp.StatusCode, msg)
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrProviderFetch, decodeErr)
	}

	if len(payload.Items) == 0 {
		return nil, nil
	}

	item := payload.Items[0]
	return &ChannelStats{
		ChannelID:   item.ID,
		Title:       item.Snippet.Title,
		Subscribers: parseCount(item.Statistics.SubscriberCount),
		Views:       parseCount(item.Statistics.ViewCount),
		VideoCount:  parseCount(item.Statistics.VideoCount),
	}, nil
}

// parseCount 解析 YouTube 以字符串返回的计数，缺失或无法解析时为 0。
func parseCount(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
