package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/ez"
	resp "go-gin-storefront/internal/transport/http/response"
)

// CatalogHandler serves public product browsing and admin product maintenance.
type CatalogHandler struct {
	catalog *service.CatalogService
	log     *zap.Logger
}

func NewCatalogHandler(catalog *service.CatalogService, l *zap.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, log: l}
}

// Public reports that the catalog is mounted outside the authenticated group.
func (h *CatalogHandler) Public() bool { return true }

func (h *CatalogHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	type listQ struct {
		Offset   int    `form:"offset,default=0"`
		Limit    int    `form:"limit,default=20"`
		Category string `form:"category"`
		Q        string `form:"q"`
	}
	ez.RegisterAction(e, ez.Action[listQ, resp.Page[domain.Product]]{
		Method: http.MethodGet,
		Path:   "/products",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (resp.Page[domain.Product], error) {
			ps, total, err := h.catalog.List(c.Request.Context(), domain.ProductQuery{
				Offset: in.Offset, Limit: in.Limit, Category: in.Category, Q: in.Q,
			})
			if err != nil {
				return resp.Page[domain.Product]{}, err
			}
			return resp.NewPage(ps, total), nil
		},
	})

	ez.RegisterAction(e, ez.Action[struct{}, *domain.Product]{
		Method: http.MethodGet,
		Path:   "/products/:id",
		Binder: ez.BindNone,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.Product, error) {
			return h.catalog.Get(c.Request.Context(), c.Param("id"))
		},
	})
}

func (h *CatalogHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[service.ProductInput, *domain.Product]{
		Method: http.MethodPost,
		Path:   "/products",
		Binder: ez.BindJSON,
		Status: http.StatusCreated,
		Handler: func(c *gin.Context, in *service.ProductInput) (*domain.Product, error) {
			return h.catalog.Create(c.Request.Context(), *in)
		},
	})
	ez.RegisterAction(e, ez.Action[service.ProductInput, *domain.Product]{
		Method: http.MethodPut,
		Path:   "/products/:id",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *service.ProductInput) (*domain.Product, error) {
			return h.catalog.Update(c.Request.Context(), c.Param("id"), *in)
		},
	})
}
