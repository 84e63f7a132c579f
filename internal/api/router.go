// 文件路径: internal/api/router.go
// 模块说明: 组装 chi 路由与中间件链；/api/health、/api/auth、/api/users/detail 与 /api/overview 为公开接口。
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lababa/lababa/internal/api/handler"
	"github.com/lababa/lababa/internal/api/middleware"
	"github.com/lababa/lababa/internal/api/requestctx"
	"github.com/lababa/lababa/internal/config"
	"github.com/lababa/lababa/internal/service"
	"github.com/lababa/lababa/internal/stats"
	"github.com/lababa/lababa/internal/support/i18n"
	"github.com/lababa/lababa/internal/support/sysinfo"
)

// Services 路由依赖的服务集合。
type Services struct {
	Auth       service.AuthService
	User       service.UserService
	Record     service.RecordService
	Statistics service.StatisticsService
	Ranking    service.RankingService
	Friend     service.FriendService
	I18n       *i18n.Manager
}

// RouterOption 调整路由的可选依赖。
type RouterOption func(*routerOptions)

type routerOptions struct {
	http     config.HTTPConfig
	registry interface {
		prometheus.Registerer
		prometheus.Gatherer
	}
	clock   stats.Clock
	monitor *sysinfo.Monitor
	dbPing  func(ctx context.Context) error
}

// WithHTTPConfig 设置 CORS、限流与请求体大小。
func WithHTTPConfig(cfg config.HTTPConfig) RouterOption {
	return func(ro *routerOptions) { ro.http = cfg }
}

// WithRegistry 使用独立的 Prometheus registry（默认全局）。
func WithRegistry(reg *prometheus.Registry) RouterOption {
	return func(ro *routerOptions) { ro.registry = reg }
}

// WithClock 注入月历默认年月使用的时钟。
func WithClock(clock stats.Clock) RouterOption {
	return func(ro *routerOptions) { ro.clock = clock }
}

// WithHealth 设置健康检查的主机指标采集器与数据库探测函数。
func WithHealth(monitor *sysinfo.Monitor, dbPing func(ctx context.Context) error) RouterOption {
	return func(ro *routerOptions) {
		ro.monitor = monitor
		ro.dbPing = dbPing
	}
}

// NewRouter wires every REST endpoint.
func NewRouter(logger *slog.Logger, services Services, metricsCfg config.MetricsConfig, opts ...RouterOption) http.Handler {
	var options routerOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&options)
		}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if services.Auth == nil {
		panic("router requires AuthService")
	}
	if services.User == nil {
		panic("router requires UserService")
	}
	if services.Record == nil {
		panic("router requires RecordService")
	}
	if services.Statistics == nil {
		panic("router requires StatisticsService")
	}
	if services.Ranking == nil {
		panic("router requires RankingService")
	}
	if services.Friend == nil {
		panic("router requires FriendService")
	}
	if services.I18n == nil {
		panic("router requires I18n Manager")
	}

	r := chi.NewRouter()
	r.Use(
		chiMiddleware.RequestID,
		chiMiddleware.RealIP,
	)

	var gatherer prometheus.Gatherer
	if metricsCfg.Enabled {
		mCfg := middleware.DefaultMetricsConfig()
		if metricsCfg.Namespace != "" {
			mCfg.Namespace = metricsCfg.Namespace
		}
		if metricsCfg.Subsystem != "" {
			mCfg.Subsystem = metricsCfg.Subsystem
		}
		if len(metricsCfg.Buckets) > 0 {
			mCfg.Buckets = metricsCfg.Buckets
		}
		gatherer = prometheus.DefaultGatherer
		if options.registry != nil {
			mCfg.Registerer = options.registry
			gatherer = options.registry
		}
		r.Use(middleware.NewMetrics(mCfg).Middleware())
	}

	origins := options.http.CORS.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Token", "X-I18N-Lang"},
		ExposedHeaders:   []string{"Authorization", "X-Token", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(middleware.BodyLimit(options.http.BodyLimit))
	if options.http.RateLimit.RPS > 0 {
		r.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RPS:       options.http.RateLimit.RPS,
			Burst:     options.http.RateLimit.Burst,
			SkipPaths: []string{"/api/health/ping", "/metrics"},
			I18n:      services.I18n,
		}))
	}
	r.Use(
		middleware.StructuredLogger(middleware.LoggingConfig{
			Logger:        logger,
			SlowThreshold: 500 * time.Millisecond,
			SkipPaths:     []string{"/api/health/ping", "/metrics"},
		}),
		chiMiddleware.Recoverer,
		middleware.I18n(services.I18n),
	)

	// chi 要求所有中间件在注册路由之前声明。
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
	registerAPIRoutes(r, logger, services, options)

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		logger.Warn("unmapped route hit", "method", req.Method, "path", req.URL.Path)
		requestctx.WriteJSON(w, http.StatusNotFound, map[string]string{"error": "not_found"})
	})
	return r
}

func registerAPIRoutes(root chi.Router, logger *slog.Logger, services Services, options routerOptions) {
	health := handler.NewHealthHandler(options.monitor, options.dbPing, services.I18n)
	auth := handler.NewAuthHandler(services.Auth, services.I18n, logger)
	users := handler.NewUserHandler(services.User, services.I18n, logger)
	records := handler.NewRecordHandler(services.Record, services.Statistics, services.I18n, logger)
	statistics := handler.NewStatisticsHandler(services.Statistics, services.Ranking, options.clock, services.I18n, logger)
	friends := handler.NewFriendHandler(services.Friend, services.I18n, logger)

	root.Route("/api", func(api chi.Router) {
		api.Get("/health/ping", health.Ping)
		api.Get("/health/status", health.Status)
		api.Post("/auth/weapp", auth.Weapp)
		api.Get("/users/detail/{id}", users.Detail)
		api.Get("/overview/personal", statistics.Overview)

		api.Group(func(private chi.Router) {
			private.Use(middleware.UserGuard(services.Auth, services.I18n))

			private.Post("/auth/logout", auth.Logout)
			private.Put("/users/update/{id}", users.Update)

			private.Get("/records/list", records.List)
			private.Post("/records/list", records.List)
			private.Post("/records/create", records.Create)
			private.Get("/records/detail/{id}", records.Detail)
			private.Put("/records/update/{id}", records.Update)
			private.Delete("/records/delete/{id}", records.Delete)

			private.Get("/index/list", records.Index)
			private.Post("/index/list", records.Index)

			private.Get("/statistics/summary", statistics.Summary)
			private.Post("/statistics/summary", statistics.Summary)
			private.Get("/statistics/month-days", statistics.MonthDays)

			private.Get("/ranking/list", statistics.Ranking)
			private.Post("/ranking/list", statistics.Ranking)

			private.Post("/friends/invite", friends.Invite)
			private.Post("/friends/accept", friends.Accept)
			private.Get("/friends/list", friends.List)
		})
	})
}
