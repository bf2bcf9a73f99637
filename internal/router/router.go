package router

import (
	"fmt"
	"html/template"

	"github.com/creatorstats/internal/auth"
	"github.com/creatorstats/internal/config"
	"github.com/creatorstats/internal/handler"
	"github.com/creatorstats/internal/logging"
	"github.com/creatorstats/internal/metrics"
	"github.com/creatorstats/internal/service"
	"github.com/creatorstats/internal/view"
	"github.com/creatorstats/web"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// SetupRouter 配置 Gin 引擎、会话、指标与全部路由。
// m 为 nil 时不采集指标；配置了 MetricsListenAddr 时 /metrics 不挂在这里。
func SetupRouter(cfg config.AppConfig, gdb *gorm.DB, logger zerolog.Logger, m *metrics.Metrics) (*gin.Engine, error) {
	r := gin.New()
	r.Use(gin.Recovery(), logging.Middleware(logger))

	var rec metrics.Recorder = metrics.Noop{}
	if m != nil {
		rec = m
	}
	r.Use(metrics.Middleware(rec))

	// 配置会话中间件
	store, err := auth.NewStore(cfg.SessionSecret, cfg.SessionSecureCookie)
	if err != nil {
		return nil, fmt.Errorf("session store: %w", err)
	}
	r.Use(sessions.Sessions(auth.SessionName, store))

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	youtube := service.NewYouTubeClient(cfg.YouTubeAPIBaseURL, cfg.HTTPTimeout, logger, rec)
	snapshots := service.NewSnapshotService(gdb, youtube, logger, rec)
	stats := service.NewStatsService(gdb, snapshots)
	accounts := service.NewAccountService(gdb, cfg.OAuth.AllowEmailAccountLinking, logger)
	google := auth.NewGoogleProvider(cfg.OAuth, cfg.HTTPTimeout)
	gateway := auth.NewGateway(google, logger)

	api := handler.NewAPI(gdb, gateway, google, stats, accounts, logger)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})
	r.GET("/healthz", api.Healthz)
	if m != nil && cfg.MetricsListenAddr == "" {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	r.GET("/", api.ShowDashboard)
	r.GET("/api/stats", api.GetStats)
	r.GET("/stats", api.GetStats)

	authGroup := r.Group("/auth")
	{
		authGroup.GET("/google/login", api.BeginGoogleLogin)
		authGroup.GET("/google/callback", api.GoogleCallback)
		authGroup.GET("/logout", api.Logout)
		authGroup.POST("/logout", api.Logout)
	}

	return r, nil
}

// parseTemplates 加载内嵌页面模板并注册自定义函数。
func parseTemplates() (*template.Template, error) {
	return template.New("").Funcs(template.FuncMap{
		"providerIcon": view.ProviderIcon,
	}).ParseFS(web.Templates, "template/*.html")
}
