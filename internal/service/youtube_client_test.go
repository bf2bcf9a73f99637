package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeHTTPClient struct {
	handler func(*http.Request) (*http.Response, error)
}

func (f fakeHTTPClient) Do(req *http.Request) (*http.Response, error) {
	if f.handler == nil {
		return nil, errors.New("no handler configured")
	}
	return f.handler(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Status:     http.StatusText(status),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(bytes.NewBufferString(body)),
	}
}

func newTestYouTubeClient(handler func(*http.Request) (*http.Response, error)) *YouTubeClient {
	client := NewYouTubeClient("https://yt.test/youtube/v3/", 0, zerolog.Nop(), nil)
	client.SetHTTPClient(fakeHTTPClient{handler: handler})
	return client
}

func TestFetchChannelStatsNormalizesResponse(t *testing.T) {
	client := newTestYouTubeClient(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/youtube/v3/channels", r.URL.Path)
		assert.Equal(t, "snippet,statistics", r.URL.Query().Get("part"))
		assert.Equal(t, "true", r.URL.Query().Get("mine"))
		assert.Equal(t, "Bearer token-1", r.Header.Get("Authorization"))

		return jsonResponse(http.StatusOK, `{
			"items": [{
				"id": "C1",
				"snippet": {"title": "Chan"},
				"statistics": {"subscriberCount": "100", "viewCount": "5000", "videoCount": "10"}
			}]
		}`), nil
	})

	stats, err := client.FetchChannelStats(context.Background(), "token-1")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, ChannelStats{ChannelID: "C1", Title: "Chan", Subscribers: 100, Views: 5000, VideoCount: 10}, *stats)
}

func TestFetchChannelStatsDefaultsMissingCounts(t *testing.T) {
	client := newTestYouTubeClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"items":[{"id":"C2","snippet":{"title":"Hidden"},"statistics":{"viewCount":"42","hiddenSubscriberCount":true}}]}`), nil
	})

	stats, err := client.FetchChannelStats(context.Background(), "token")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, int64(0), stats.Subscribers)
	assert.Equal(t, int64(42), stats.Views)
	assert.Equal(t, int64(0), stats.VideoCount)
}

func TestFetchChannelStatsReturnsNilWithoutChannel(t *testing.T) {
	client := newTestYouTubeClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `{"kind":"youtube#channelListResponse","pageInfo":{"totalResults":0}}`), nil
	})

	stats, err := client.FetchChannelStats(context.Background(), "token")
	require.NoError(t, err)
	assert.Nil(t, stats)
}

func TestFetchChannelStatsPropagatesFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler func(*http.Request) (*http.Response, error)
		message string
	}{
		{
			name: "network",
			handler: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("connection reset")
			},
			message: "connection reset",
		},
		{
			name: "unauthorized",
			handler: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusUnauthorized, `{"error":{"code":401,"message":"Invalid Credentials"}}`), nil
			},
			message: "Invalid Credentials",
		},
		{
			name: "server error without body",
			handler: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusBadGateway, ``), nil
			},
			message: "502",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestYouTubeClient(tt.handler)
			stats, err := client.FetchChannelStats(context.Background(), "token")
			assert.Nil(t, stats)
			require.ErrorIs(t, err, ErrProviderFetch)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestFetchChannelStatsRequiresToken(t *testing.T) {
	called := false
	client := newTestYouTubeClient(func(*http.Request) (*http.Response, error) {
		called = true
		return nil, nil
	})

	_, err := client.FetchChannelStats(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrProviderFetch)
	assert.False(t, called)
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, int64(0), parseCount(""))
	assert.Equal(t, int64(0), parseCount("abc"))
	assert.Equal(t, int64(0), parseCount("-5"))
	assert.Equal(t, int64(1234567890123), parseCount(" 1234567890123 "))
}
