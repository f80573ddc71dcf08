package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/server"
	mdw "go-gin-storefront/internal/transport/http/middleware"
)

type Limits struct {
	RPS         float64
	Burst       int
	PerIPRPS    float64
	PerIPBurst  int
	Concurrency int64
	BodyBytes   int64
	Timeout     time.Duration
}

func (l Limits) withDefaults() Limits {
	if l.RPS <= 0 {
		l.RPS, l.Burst = 200, 400
	}
	if l.PerIPRPS <= 0 {
		l.PerIPRPS, l.PerIPBurst = 20, 40
	}
	if l.Concurrency <= 0 {
		l.Concurrency = 300
	}
	if l.BodyBytes <= 0 {
		l.BodyBytes = 1 << 20
	}
	if l.Timeout <= 0 {
		l.Timeout = 10 * time.Second
	}
	return l
}

// Deps 构造 engine 需要的全部依赖
type Deps struct {
	Log          *zap.Logger
	Verifier     auth.Verifier
	Users        mdw.UserResolver
	Modules      *Registry
	Limits       Limits
	AllowOrigins []string
	Ready        func() error // /health 探测下游，可为空
}

func (d Deps) withDefaults() Deps {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Modules == nil {
		d.Modules = NewRegistry()
	}
	d.Limits = d.Limits.withDefaults()
	return d
}

func baseEngine(d Deps) *gin.Engine {
	lim := d.Limits
	r := server.NewRouter(d.Log, server.Options{AllowOrigins: d.AllowOrigins})

	// 中间件
	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(lim.RPS), lim.Burst),
		mdw.RateLimitPerIP(rate.Limit(lim.PerIPRPS), lim.PerIPBurst, 10*time.Minute),
		mdw.ConcurrencyLimit(lim.Concurrency),
		mdw.MaxBodyBytes(lim.BodyBytes),
		mdw.Timeout(lim.Timeout),
		mdw.Metrics(),
		mdw.AccessLog(d.Log),
	)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		if d.Ready != nil {
			if err := d.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"ok": 0, "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"ok": 1})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func NewAPIEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := baseEngine(d)

	// 前缀
	api := r.Group("/api/v1")

	// 鉴权分组：身份只来自校验过的 token
	authUser := api.Group("")
	authUser.Use(mdw.Authenticate(d.Verifier, d.Users, d.Log))

	d.Modules.MountAPI(api, authUser)
	return r
}
