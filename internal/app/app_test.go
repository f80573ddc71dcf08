package app

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/core/config"
	"go-gin-storefront/internal/transport/http/router"
	"go-gin-storefront/pkg/utils"
)

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.Auth{Mode: "hs256", Secret: "0123456789abcdef", AccessTokenTTLMin: 5},
		DB:   config.DB{Driver: "memory"},
	}
}

func TestBuildMemoryWithRedis(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.Redis = config.Redis{Addr: mr.Addr(), Prefix: "t:", CartCountTTLSec: 60, ProductTTLSec: 60}

	a, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	tok, err := HS256(cfg.Auth).Issue(auth.Identity{SubjectID: "sub"})
	require.NoError(t, err)

	r := router.NewAPIEngine(a.Deps)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/cart/count", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, mr.Keys(), "count projection cached in redis")
}

func serveJSON(t *testing.T, h http.Handler, method, path, tok, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestBuildSeedsMemoryCatalog(t *testing.T) {
	gin.SetMode(gin.TestMode)
	lampID := utils.NewID()
	off := false
	cfg := testConfig()
	cfg.Seed.Products = []config.SeedProduct{
		{ID: lampID, Name: "Lamp", Price: 1000},
		{Name: "Retired", Price: 50, Active: &off},
	}

	a, err := Build(cfg, zap.NewNop())
	require.NoError(t, err)
	defer a.Close()
	r := router.NewAPIEngine(a.Deps)

	w := serveJSON(t, r, http.MethodGet, "/api/v1/products", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var env struct {
		Data struct {
			Total int64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, int64(1), env.Data.Total, "inactive seed entries are not listed")

	// the whole cart → order path works on the API process alone
	tok, err := HS256(cfg.Auth).Issue(auth.Identity{SubjectID: "local"})
	require.NoError(t, err)
	w = serveJSON(t, r, http.MethodPost, "/api/v1/users/me/cart", tok, `{"productId":"`+lampID+`","quantity":2}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = serveJSON(t, r, http.MethodPost, "/api/v1/users/me/orders", tok, `{"shippingAddress":{"city":"x"},"paymentMethod":"cod"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"totalAmount":2000`)
}

func TestBuildRejectsBadSeedID(t *testing.T) {
	cfg := testConfig()
	cfg.Seed.Products = []config.SeedProduct{{ID: "p1", Name: "Lamp", Price: 1}}
	_, err := Build(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestBuildRejectsUnknownAuthMode(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Mode = "saml"
	_, err := Build(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestNewVerifierJWKS(t *testing.T) {
	v, err := newVerifier(config.Auth{Mode: "jwks", JWKSURL: "http://127.0.0.1:0/jwks", Audience: "aud"})
	require.NoError(t, err)
	_, ok := v.(*auth.JWKSVerifier)
	assert.True(t, ok)
}
