package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"go-gin-storefront/internal/app"
	"go-gin-storefront/internal/core/config"
	"go-gin-storefront/internal/core/logger"
	"go-gin-storefront/internal/core/server"
	"go-gin-storefront/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, cleanup := logger.FromConfig(cfg.Log, zap.String("service", "admin"), zap.String("env", cfg.App.Env))
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	a, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = a.Close() }()

	// 路由（后台端）
	r := router.NewAdminEngine(a.Deps)

	addr := server.Addr(cfg.App.Admin.Host, cfg.App.Admin.Port)
	rt, wt, it := cfg.App.Admin.Timeouts()
	srv := server.BuildServer(addr, r, rt, wt, it, log)

	// 启动前打印可点击地址
	baseURL := server.BaseURL(cfg.App.Admin.Host, cfg.App.Admin.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 异步启动；失败立即标红退出
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()

	// 关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}
