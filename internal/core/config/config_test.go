package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadAppliesDefaultsAndFile(t *testing.T) {
	p := writeYAML(t, `
app:
  http:
    port: 9090
auth:
  secret: "0123456789abcdef0123"
kafka:
  brokers: ["localhost:9092"]
cors:
  allowOrigins: ["http://localhost:5173"]
`)
	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, 8081, c.App.Admin.Port)
	assert.Equal(t, "hs256", c.Auth.Mode)
	assert.Equal(t, "memory", c.DB.Driver)
	assert.Equal(t, 300, c.Redis.ProductTTLSec)
	assert.False(t, c.Redis.Enabled())
	assert.True(t, c.Kafka.Enabled())
	assert.Equal(t, []string{"http://localhost:5173"}, c.CORS.AllowOrigins)
	assert.EqualValues(t, 300, c.Limits.Concurrency)
}

func TestLoadEnvOverride(t *testing.T) {
	p := writeYAML(t, "auth:\n  secret: \"0123456789abcdef0123\"\n")
	t.Setenv("APP_DB_DRIVER", "postgres")
	t.Setenv("APP_REDIS_ADDR", "127.0.0.1:6379")

	c, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.True(t, c.Redis.Enabled())
}

func TestLoadRejectsBadAuth(t *testing.T) {
	_, err := Load(writeYAML(t, "auth:\n  secret: short\n"))
	assert.Error(t, err)

	_, err = Load(writeYAML(t, "auth:\n  mode: jwks\n"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoadSeedProducts(t *testing.T) {
	c, err := Load(writeYAML(t, `
auth:
  secret: "0123456789abcdef0123"
seed:
  products:
    - name: Lamp
      price: 1000
      image: /img/lamp.png
    - name: Bulb
      price: 199
      active: false
`))
	require.NoError(t, err)
	require.Len(t, c.Seed.Products, 2)
	assert.Equal(t, int64(1000), c.Seed.Products[0].Price)
	assert.Equal(t, "/img/lamp.png", c.Seed.Products[0].ImageURL)
	assert.Nil(t, c.Seed.Products[0].Active)
	require.NotNil(t, c.Seed.Products[1].Active)
	assert.False(t, *c.Seed.Products[1].Active)

	_, err = Load(writeYAML(t, "auth:\n  secret: \"0123456789abcdef0123\"\nseed:\n  products:\n    - price: 5\n"))
	assert.Error(t, err, "nameless seed product")
}
