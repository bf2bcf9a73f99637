package metrics

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder 是业务代码依赖的指标接口，关闭指标时使用空实现。
type Recorder interface {
	ObserveRequest(route string, status int, duration time.Duration)
	IncProviderFetch(provider, outcome string)
	IncSnapshotRefresh(outcome string)
}

const (
	OutcomeOK        = "ok"
	OutcomeNoChannel = "no_channel"
	OutcomeError     = "error"
	OutcomeWritten   = "written"
	OutcomeSkipped   = "skipped"
)

// Metrics 基于独立 registry 的 prometheus 实现。
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	providerFetch   *prometheus.CounterVec
	snapshotRefresh *prometheus.CounterVec
}

// New 创建指标集合并注册 Go 运行时指标。
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		requestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "status"}),
		requestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "creatorstats_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		providerFetch: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_provider_fetch_total",
			Help: "Calls to external stats providers by outcome",
		}, []string{"provider", "outcome"}),
		snapshotRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "creatorstats_snapshot_refresh_total",
			Help: "Channel snapshot refreshes by outcome",
		}, []string{"outcome"}),
	}
}

func (m *Metrics) ObserveRequest(route string, status int, duration time.Duration) {
	m.requestsTotal.WithLabelValues(route, statusBucket(status)).Inc()
	m.requestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

func (m *Metrics) IncProviderFetch(provider, outcome string) {
	m.providerFetch.WithLabelValues(provider, outcome).Inc()
}

func (m *Metrics) IncSnapshotRefresh(outcome string) {
	m.snapshotRefresh.WithLabelValues(outcome).Inc()
}

// Handler 暴露 /metrics。
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gatherer 供测试读取指标。
func (m *Metrics) Gatherer() prometheus.Gatherer {
	return m.registry
}

// Middleware 按路由模板统计请求数与耗时，未匹配的路由记为 unmatched。
func Middleware(rec Recorder) gin.HandlerFunc {
	if rec == nil {
		rec = Noop{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		rec.ObserveRequest(route, c.Writer.Status(), time.Since(start))
	}
}

func statusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

// Noop 在关闭指标时使用。
type Noop struct{}

func (Noop) ObserveRequest(string, int, time.Duration) {}
func (Noop) IncProviderFetch(string, string)           {}
func (Noop) IncSnapshotRefresh(string)                 {}
