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
	log, cleanup := logger.FromConfig(cfg.Log, zap.String("service", "api"), zap.String("env", cfg.App.Env))
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
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close dependencies", zap.Error(err))
		}
	}()

	// 路由（用户端）
	r := router.NewAPIEngine(a.Deps)

	// HTTP Server
	addr := server.Addr(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	rt, wt, it := cfg.App.HTTP.Timeouts()
	srv := server.BuildServer(addr, r, rt, wt, it, log)

	baseURL := server.BaseURL(cfg.App.HTTP.Host, cfg.App.HTTP.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.String("auth_mode", cfg.Auth.Mode),
		zap.String("db", cfg.DB.Driver),
	)

	// 异步启动
	go func() {
		if err := server.StartHTTP(srv, log); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("user api stopped gracefully")
}
