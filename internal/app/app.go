// Package app wires configuration into stores, services and HTTP modules. Both the
// user API and the admin API binaries build on it.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/cache"
	"go-gin-storefront/internal/core/config"
	"go-gin-storefront/internal/core/database"
	"go-gin-storefront/internal/core/events"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/repo"
	"go-gin-storefront/internal/repo/memory"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/handler"
	"go-gin-storefront/internal/transport/http/router"
	"go-gin-storefront/pkg/utils"
)

type stores struct {
	users    domain.UserRepository
	products domain.ProductRepository
	orders   domain.OrderRepository
}

// App holds the wired dependencies and everything that must be closed on shutdown.
type App struct {
	Cfg      *config.Config
	Log      *zap.Logger
	Deps     router.Deps
	Accounts *service.AccountService

	closers []func() error
}

func Build(cfg *config.Config, l *zap.Logger) (*App, error) {
	a := &App{Cfg: cfg, Log: l}

	st, ping, err := a.openStores()
	if err != nil {
		return nil, err
	}

	verifier, err := newVerifier(cfg.Auth)
	if err != nil {
		return nil, err
	}

	var (
		rc      *cache.Cache
		counter service.CartCounter = service.DirectCounter{}
	)
	if cfg.Redis.Enabled() {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			// 缓存不可用时不阻止启动，GetOrLoad 会回源
			l.Warn("redis unreachable, continuing with read-through to store", zap.Error(err))
		}
		counter = service.NewRedisCounter(rc, time.Duration(cfg.Redis.CartCountTTLSec)*time.Second, l)
		a.closers = append(a.closers, rc.Close)
	}

	var pub events.Publisher = events.NewLogPublisher(l)
	if cfg.Kafka.Enabled() {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, map[string]string{events.OrderPlaced: cfg.Kafka.Topic})
		if err != nil {
			return nil, err
		}
		pub = kp
		a.closers = append(a.closers, kp.Close)
		l.Info("kafka publisher enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	a.Accounts = service.NewAccountService(st.users, l)
	cart := service.NewCartService(st.users, st.products, counter, l)
	orders := service.NewOrderService(st.users, st.products, st.orders, counter, pub, l)
	catalog := service.NewCatalogService(st.products, rc, time.Duration(cfg.Redis.ProductTTLSec)*time.Second, l)

	a.Deps = router.Deps{
		Log:      l,
		Verifier: verifier,
		Users:    a.Accounts,
		Modules: router.NewRegistry(
			handler.NewAccountHandler(a.Accounts, l),
			handler.NewCartHandler(cart, l),
			handler.NewOrderHandler(orders, l),
			handler.NewCatalogHandler(catalog, l),
		),
		Limits: router.Limits{
			RPS:         cfg.Limits.RPS,
			Burst:       cfg.Limits.Burst,
			PerIPRPS:    cfg.Limits.PerIPRPS,
			PerIPBurst:  cfg.Limits.PerIPBurst,
			Concurrency: cfg.Limits.Concurrency,
			BodyBytes:   cfg.Limits.BodyBytes,
			Timeout:     time.Duration(cfg.Limits.TimeoutSec) * time.Second,
		},
		AllowOrigins: cfg.CORS.AllowOrigins,
		Ready:        ping,
	}
	return a, nil
}

func (a *App) openStores() (stores, func() error, error) {
	cfg := a.Cfg
	if cfg.DB.Driver == "memory" {
		a.Log.Warn("using in-memory store; data is lost on restart")
		m := memory.NewStore()
		seed, err := seedProducts(cfg.Seed.Products)
		if err != nil {
			return stores{}, nil, err
		}
		m.SeedProducts(seed...)
		if len(seed) > 0 {
			a.Log.Info("memory catalog seeded", zap.Int("products", len(seed)))
		}
		return stores{m.Users(), m.Products(), m.Orders()}, nil, nil
	}
	if len(cfg.Seed.Products) > 0 {
		a.Log.Warn("seed.products ignored: only the memory driver is seeded", zap.String("driver", cfg.DB.Driver))
	}

	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		SlowQueryMs:        cfg.DB.SlowQueryMs,
	}, a.Log)
	if err != nil {
		return stores{}, nil, fmt.Errorf("db open: %w", err)
	}
	a.Log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := repo.Migrate(db); err != nil {
			return stores{}, nil, fmt.Errorf("automigrate: %w", err)
		}
		a.Log.Info("automigrate done")
	}
	sqlDB, err := db.DB()
	if err != nil {
		return stores{}, nil, err
	}
	a.closers = append(a.closers, sqlDB.Close)
	return stores{repo.NewUserRepo(db), repo.NewProductRepo(db), repo.NewOrderRepo(db)}, pingDB(db), nil
}

func seedProducts(in []config.SeedProduct) ([]domain.Product, error) {
	out := make([]domain.Product, 0, len(in))
	now := time.Now().UTC()
	for i, sp := range in {
		id := sp.ID
		if id == "" {
			id = utils.NewID()
		} else if !utils.IsID(id) {
			return nil, fmt.Errorf("seed.products[%d]: id %q is not a uuid", i, id)
		}
		out = append(out, domain.Product{
			ID:          id,
			Name:        sp.Name,
			Description: sp.Description,
			Category:    sp.Category,
			ImageURL:    sp.ImageURL,
			Price:       domain.Money(sp.Price),
			Active:      sp.Active == nil || *sp.Active,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}
	return out, nil
}

func pingDB(db *gorm.DB) func() error {
	return func() error {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return database.Ping(ctx, db)
	}
}

func newVerifier(c config.Auth) (auth.Verifier, error) {
	switch c.Mode {
	case "jwks":
		return auth.NewJWKSVerifier(c.JWKSURL, c.Issuer, c.Audience), nil
	case "hs256":
		return HS256(c), nil
	default:
		return nil, fmt.Errorf("unknown auth mode %q", c.Mode)
	}
}

// HS256 builds the shared-secret token issuer/verifier from the auth section.
func HS256(c config.Auth) *auth.JWTer {
	return &auth.JWTer{
		Secret:   []byte(c.Secret),
		Issuer:   c.Issuer,
		Audience: c.Audience,
		TTL:      time.Duration(c.AccessTokenTTLMin) * time.Minute,
	}
}

// Close releases stores, cache and broker connections in reverse order.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
