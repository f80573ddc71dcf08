package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/ez"
)

type CartHandler struct {
	cart *service.CartService
	log  *zap.Logger
}

func NewCartHandler(cart *service.CartService, l *zap.Logger) *CartHandler {
	return &CartHandler{cart: cart, log: l}
}

type cartOut struct {
	Message string      `json:"message"`
	Cart    domain.Cart `json:"cart"`
}

func (h *CartHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, service.CartView]{
		Method: http.MethodGet,
		Path:   "/users/me/cart",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (service.CartView, error) {
			return h.cart.GetCart(c.Request.Context(), ez.CurrentUser(c).ID)
		},
	})

	type countOut struct {
		Count int `json:"count"`
	}
	ez.RegisterAction(e, ez.Action[struct{}, countOut]{
		Method: http.MethodGet,
		Path:   "/users/me/cart/count",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (countOut, error) {
			n, err := h.cart.Count(c.Request.Context(), ez.CurrentUser(c).ID)
			return countOut{Count: n}, err
		},
	})

	type addIn struct {
		ProductID string `json:"productId" binding:"required"`
		Quantity  *int   `json:"quantity"`
	}
	ez.RegisterAction(e, ez.Action[addIn, cartOut]{
		Method: http.MethodPost,
		Path:   "/users/me/cart",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *addIn) (cartOut, error) {
			// 缺省或 null 不补默认值
			if in.Quantity == nil {
				return cartOut{}, ez.BadRequest("quantity required")
			}
			cart, err := h.cart.AddItem(c.Request.Context(), ez.CurrentUser(c).ID, in.ProductID, *in.Quantity)
			if err != nil {
				return cartOut{}, err
			}
			return cartOut{Message: "Added to cart", Cart: cart}, nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, cartOut]{
		Method: http.MethodDelete,
		Path:   "/users/me/cart/:productId",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (cartOut, error) {
			cart, err := h.cart.RemoveItem(c.Request.Context(), ez.CurrentUser(c).ID, c.Param("productId"))
			if err != nil {
				return cartOut{}, err
			}
			return cartOut{Message: "Removed from cart", Cart: cart}, nil
		},
	})
}
