package router

import (
	"github.com/gin-gonic/gin"

	"go-gin-storefront/internal/domain"
	mdw "go-gin-storefront/internal/transport/http/middleware"
)

func NewAdminEngine(d Deps) *gin.Engine {
	d = d.withDefaults()
	r := baseEngine(d)

	// 管理端 v1（统一要求 admin 角色）
	admin := r.Group("/admin/v1")
	admin.Use(
		mdw.Authenticate(d.Verifier, d.Users, d.Log),
		mdw.RequireRole(domain.RoleAdmin, d.Log),
	)

	d.Modules.MountAdmin(admin)
	return r
}
