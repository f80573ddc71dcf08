package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}

func (h HTTP) Timeouts() (read, write, idle time.Duration) {
	return time.Duration(h.ReadTimeoutSec) * time.Second,
		time.Duration(h.WriteTimeoutSec) * time.Second,
		time.Duration(h.IdleTimeoutSec) * time.Second
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin HTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

// Auth 身份校验：hs256 用本地密钥（开发/测试），jwks 用身份提供方的公钥
type Auth struct {
	Mode              string
	Secret            string
	Issuer            string
	Audience          string
	JWKSURL           string `mapstructure:"jwksURL"`
	AccessTokenTTLMin int
}

type Redis struct {
	Addr            string `mapstructure:"addr"`
	Password        string `mapstructure:"password"`
	DB              int    `mapstructure:"db"`
	Prefix          string `mapstructure:"prefix"`
	ProductTTLSec   int    `mapstructure:"productTTLSec"`
	CartCountTTLSec int    `mapstructure:"cartCountTTLSec"`
}

func (r Redis) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
	SlowQueryMs        int
}

type Kafka struct {
	Brokers []string
	Topic   string
}

func (k Kafka) Enabled() bool { return len(k.Brokers) > 0 }

type Limits struct {
	RPS         float64
	Burst       int
	PerIPRPS    float64 `mapstructure:"perIPRPS"`
	PerIPBurst  int     `mapstructure:"perIPBurst"`
	Concurrency int64
	BodyBytes   int64
	TimeoutSec  int
}

type CORS struct {
	AllowOrigins []string `mapstructure:"allowOrigins"`
}

// SeedProduct is a catalog entry loaded into the memory store at startup.
// Price is in minor units; an empty ID gets a fresh one.
type SeedProduct struct {
	ID          string
	Name        string
	Description string
	Category    string
	ImageURL    string `mapstructure:"image"`
	Price       int64
	Active      *bool
}

// Seed 只对 memory 驱动生效，方便本地跑通下单流程
type Seed struct {
	Products []SeedProduct
}

type Config struct {
	App    App
	Log    Log
	Auth   Auth
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Kafka  Kafka
	Limits Limits
	CORS   CORS `mapstructure:"cors"`
	Seed   Seed
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "storefront")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 15)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("app.admin.readTimeoutSec", 5)
	v.SetDefault("app.admin.writeTimeoutSec", 10)
	v.SetDefault("app.admin.idleTimeoutSec", 60)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxSizeMB", 100)
	v.SetDefault("log.file.maxBackups", 7)
	v.SetDefault("log.file.maxAgeDays", 14)

	// 仅为了让 APP_* 环境变量在 Unmarshal 时可见
	for _, k := range []string{"auth.secret", "auth.issuer", "auth.audience", "auth.jwksURL",
		"db.dsn", "db.username", "db.password", "redis.addr", "redis.password"} {
		v.SetDefault(k, "")
	}
	v.SetDefault("kafka.brokers", []string{})

	v.SetDefault("auth.mode", "hs256")
	v.SetDefault("auth.accessTokenTTLMin", 60)

	v.SetDefault("db.driver", "memory")
	v.SetDefault("db.maxOpenConns", 50)
	v.SetDefault("db.maxIdleConns", 10)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("db.slowQueryMs", 200)

	v.SetDefault("redis.prefix", "storefront:")
	v.SetDefault("redis.productTTLSec", 300)
	v.SetDefault("redis.cartCountTTLSec", 600)

	v.SetDefault("kafka.topic", "storefront.orders")

	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.perIPRPS", 20)
	v.SetDefault("limits.perIPBurst", 40)
	v.SetDefault("limits.concurrency", 300)
	v.SetDefault("limits.bodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)
}

// Load reads path (or CONFIG_PATH, or ./configs/config.local.yaml). APP_* environment
// variables override file values, e.g. APP_AUTH_SECRET for auth.secret.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) Validate() error {
	switch c.Auth.Mode {
	case "hs256":
		if len(c.Auth.Secret) < 16 {
			return fmt.Errorf("config: auth.secret must be at least 16 bytes in hs256 mode")
		}
	case "jwks":
		if c.Auth.JWKSURL == "" || c.Auth.Audience == "" {
			return fmt.Errorf("config: auth.jwksURL and auth.audience are required in jwks mode")
		}
	default:
		return fmt.Errorf("config: unknown auth.mode %q", c.Auth.Mode)
	}
	switch c.DB.Driver {
	case "memory", "postgres", "mysql":
	default:
		return fmt.Errorf("config: unsupported db.driver %q", c.DB.Driver)
	}
	for i, p := range c.Seed.Products {
		if strings.TrimSpace(p.Name) == "" || p.Price < 0 {
			return fmt.Errorf("config: seed.products[%d] needs a name and a non-negative price", i)
		}
	}
	return nil
}
