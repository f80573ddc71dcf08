package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-gin-storefront/internal/core/auth"
	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/repo/memory"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/handler"
	"go-gin-storefront/internal/transport/http/router"
	"go-gin-storefront/pkg/utils"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

type envelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type harness struct {
	api, admin http.Handler
	jwt        *auth.JWTer
	store      *memory.Store
	acc        *service.AccountService
	p1, p2     domain.Product
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	st := memory.NewStore()
	h := &harness{
		store: st,
		jwt:   &auth.JWTer{Secret: []byte("test-secret-0123456789"), Issuer: "test", TTL: time.Hour},
		p1:    domain.Product{ID: utils.NewID(), Name: "Lamp", Price: 1000, Active: true},
		p2:    domain.Product{ID: utils.NewID(), Name: "Bulb", Price: 199, Active: true},
	}
	st.SeedProducts(h.p1, h.p2)

	h.acc = service.NewAccountService(st.Users(), nil)
	cart := service.NewCartService(st.Users(), st.Products(), nil, nil)
	orders := service.NewOrderService(st.Users(), st.Products(), st.Orders(), nil, nil, nil)
	catalog := service.NewCatalogService(st.Products(), nil, 0, nil)

	mods := router.NewRegistry(
		handler.NewAccountHandler(h.acc, nil),
		handler.NewCartHandler(cart, nil),
		handler.NewOrderHandler(orders, nil),
		handler.NewCatalogHandler(catalog, nil),
	)
	deps := router.Deps{Verifier: h.jwt, Users: h.acc, Modules: mods}
	h.api = router.NewAPIEngine(deps)
	h.admin = router.NewAdminEngine(deps)
	return h
}

func (h *harness) token(t *testing.T, sub string) string {
	t.Helper()
	tok, err := h.jwt.Issue(auth.Identity{SubjectID: sub, Email: sub + "@example.com"})
	require.NoError(t, err)
	return tok
}

// admin provisions sub and promotes it out of band.
func (h *harness) adminToken(t *testing.T, sub string) string {
	t.Helper()
	u, err := h.acc.ResolveOrCreate(context.Background(), auth.Identity{SubjectID: sub})
	require.NoError(t, err)
	_, err = h.acc.SetRole(context.Background(), u.ID, domain.RoleAdmin)
	require.NoError(t, err)
	return h.token(t, sub)
}

func do(t *testing.T, hd http.Handler, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	hd.ServeHTTP(w, req)

	var env envelope
	if w.Header().Get("Content-Type") != "" && bytes.HasPrefix(bytes.TrimSpace(w.Body.Bytes()), []byte("{")) {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func TestMeRequiresToken(t *testing.T) {
	h := newHarness(t)

	w, env := do(t, h.api, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 401, env.Code)

	w, _ = do(t, h.api, http.MethodGet, "/api/v1/users/me", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMeProvisionsOnFirstRequest(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "alice")

	w, env := do(t, h.api, http.MethodGet, "/api/v1/users/me", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, env.Code)
	var u domain.User
	require.NoError(t, json.Unmarshal(env.Data, &u))
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, domain.RoleUser, u.Role)
	assert.Equal(t, "alice", u.Name)
	assert.NotNil(t, u.Cart)

	do(t, h.api, http.MethodGet, "/api/v1/users/me", tok, nil)
	assert.Equal(t, 1, h.store.UserCount())
}

func TestUpdateProfileIgnoresRole(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "bob")

	w, env := do(t, h.api, http.MethodPut, "/api/v1/users/me", tok, map[string]any{
		"name": "Bobby", "phone": "555", "role": "admin", "isBlocked": true,
		"addresses": []map[string]any{{"line1": "1 Main St", "city": "Springfield"}},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out struct {
		Message string      `json:"message"`
		User    domain.User `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "Bobby", out.User.Name)
	assert.Equal(t, domain.RoleUser, out.User.Role)
	assert.False(t, out.User.IsBlocked)
	assert.Len(t, out.User.Addresses, 1)
}

type cartResp struct {
	Message string      `json:"message"`
	Cart    domain.Cart `json:"cart"`
}

func TestCartFlow(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "carol")

	w, env := do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": h.p1.ID, "quantity": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, env = do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": h.p1.ID, "quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	var cr cartResp
	require.NoError(t, json.Unmarshal(env.Data, &cr))
	assert.Equal(t, domain.Cart{{ProductID: h.p1.ID, Quantity: 4}}, cr.Cart)
	assert.Equal(t, "Added to cart", cr.Message)

	_, env = do(t, h.api, http.MethodGet, "/api/v1/users/me/cart/count", tok, nil)
	assert.JSONEq(t, `{"count":4}`, string(env.Data))

	w, env = do(t, h.api, http.MethodGet, "/api/v1/users/me/cart", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view service.CartView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, "Lamp", view.Items[0].Product.Name)

	w, env = do(t, h.api, http.MethodDelete, "/api/v1/users/me/cart/"+h.p2.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cr))
	assert.Len(t, cr.Cart, 1, "removing an absent line is a no-op")

	w, env = do(t, h.api, http.MethodDelete, "/api/v1/users/me/cart/"+h.p1.ID, tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(env.Data, &cr))
	assert.Empty(t, cr.Cart)
	assert.Equal(t, "Removed from cart", cr.Message)
}

func TestCartValidation(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "dave")

	w, _ := do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": "nope", "quantity": 1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": h.p1.ID, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// quantity has no default: missing and null are both rejected, nothing is written
	w, _ = do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": h.p1.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": h.p1.ID, "quantity": nil})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, env := do(t, h.api, http.MethodGet, "/api/v1/users/me/cart/count", tok, nil)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))

	w, env = do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": utils.NewID(), "quantity": 1})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, env.Code)

	w, _ = do(t, h.api, http.MethodDelete, "/api/v1/users/me/cart/nope", tok, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlaceOrderFlow(t *testing.T) {
	h := newHarness(t)
	tok := h.token(t, "erin")
	order := map[string]any{
		"shippingAddress": map[string]any{"line1": "1 Main St", "city": "Springfield"},
		"paymentMethod":   "card",
	}

	w, env := do(t, h.api, http.MethodPost, "/api/v1/users/me/orders", tok, order)
	assert.Equal(t, http.StatusBadRequest, w.Code, "empty cart")
	assert.Equal(t, 400, env.Code)
	assert.Zero(t, h.store.OrderCount())

	do(t, h.api, http.MethodPost, "/api/v1/users/me/cart", tok, map[string]any{"productId": h.p1.ID, "quantity": 2})

	w, _ = do(t, h.api, http.MethodPost, "/api/v1/users/me/orders", tok, map[string]any{"paymentMethod": "card"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "missing shippingAddress")

	w, env = do(t, h.api, http.MethodPost, "/api/v1/users/me/orders", tok, order)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var placed struct {
		Message string       `json:"message"`
		Order   domain.Order `json:"order"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &placed))
	assert.Equal(t, domain.Money(2000), placed.Order.TotalAmount)
	assert.Equal(t, domain.OrderPending, placed.Order.Status)
	assert.Equal(t, "Order placed", placed.Message)

	_, env = do(t, h.api, http.MethodGet, "/api/v1/users/me/cart/count", tok, nil)
	assert.JSONEq(t, `{"count":0}`, string(env.Data))

	w, env = do(t, h.api, http.MethodGet, "/api/v1/users/me/orders", tok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var views []service.OrderView
	require.NoError(t, json.Unmarshal(env.Data, &views))
	require.Len(t, views, 1)
	assert.Equal(t, placed.Order.ID, views[0].ID)
	assert.Equal(t, "Lamp", views[0].Items[0].Product.Name)
}

func TestListUsersRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	userTok := h.token(t, "frank")
	adminTok := h.adminToken(t, "root")

	w, env := do(t, h.api, http.MethodGet, "/api/v1/users", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 403, env.Code)

	w, env = do(t, h.api, http.MethodGet, "/api/v1/users?limit=10", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Total int64            `json:"total"`
		Items []map[string]any `json:"items"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.EqualValues(t, 2, out.Total)
	for _, it := range out.Items {
		assert.NotContains(t, it, "cart")
		assert.NotContains(t, it, "orders")
	}
}

func TestBlockedUserRejectedEvenAsAdmin(t *testing.T) {
	h := newHarness(t)
	tok := h.adminToken(t, "mallory")
	u, err := h.acc.ResolveOrCreate(context.Background(), auth.Identity{SubjectID: "mallory"})
	require.NoError(t, err)
	_, err = h.acc.SetBlocked(context.Background(), u.ID, true)
	require.NoError(t, err)

	w, _ := do(t, h.api, http.MethodGet, "/api/v1/users/me", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(t, h.api, http.MethodGet, "/api/v1/users", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = do(t, h.admin, http.MethodGet, "/admin/v1/users", tok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminEngine(t *testing.T) {
	h := newHarness(t)
	userTok := h.token(t, "gina")
	adminTok := h.adminToken(t, "ops")

	w, _ := do(t, h.admin, http.MethodGet, "/admin/v1/users", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	u, err := h.acc.ResolveOrCreate(context.Background(), auth.Identity{SubjectID: "gina"})
	require.NoError(t, err)

	w, _ = do(t, h.admin, http.MethodPost, "/admin/v1/users/"+u.ID+"/block", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w, _ = do(t, h.api, http.MethodGet, "/api/v1/users/me", userTok, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, _ = do(t, h.admin, http.MethodPost, "/admin/v1/users/"+u.ID+"/unblock", adminTok, nil)
	require.Equal(t, http.StatusOK, w.Code)
	w, _ = do(t, h.api, http.MethodGet, "/api/v1/users/me", userTok, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, h.admin, http.MethodPut, "/admin/v1/users/"+u.ID+"/role", adminTok, map[string]any{"role": "superuser"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, h.admin, http.MethodPut, "/admin/v1/users/"+utils.NewID()+"/role", adminTok, map[string]any{"role": "admin"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, env := do(t, h.admin, http.MethodPost, "/admin/v1/products", adminTok, map[string]any{"name": "Desk", "price": 12000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &p))

	w, env = do(t, h.api, http.MethodGet, "/api/v1/products/"+p.ID, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got domain.Product
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, domain.Money(12000), got.Price)
}

func TestCatalogIsPublic(t *testing.T) {
	h := newHarness(t)

	w, env := do(t, h.api, http.MethodGet, "/api/v1/products?limit=5", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var out struct {
		Total int64 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.EqualValues(t, 2, out.Total)

	w, _ = do(t, h.api, http.MethodGet, "/api/v1/products/bad", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w, _ = do(t, h.api, http.MethodGet, "/api/v1/products/"+utils.NewID(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	h := newHarness(t)

	w, _ := do(t, h.api, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	h.api.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}
