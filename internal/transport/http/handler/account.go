package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-storefront/internal/domain"
	"go-gin-storefront/internal/service"
	"go-gin-storefront/internal/transport/http/ez"
	resp "go-gin-storefront/internal/transport/http/response"
)

type AccountHandler struct {
	acc *service.AccountService
	log *zap.Logger
}

func NewAccountHandler(acc *service.AccountService, l *zap.Logger) *AccountHandler {
	return &AccountHandler{acc: acc, log: l}
}

func (h *AccountHandler) Priority() int { return 10 }

type profileIn struct {
	Name      *string           `json:"name"      binding:"omitempty,max=128"`
	Profile   *string           `json:"profile"   binding:"omitempty,max=2048"`
	Phone     *string           `json:"phone"     binding:"omitempty,max=32"`
	Addresses *[]domain.Address `json:"addresses" binding:"omitempty,max=20"`
}

type profileOut struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

// userRow is the listing shape; cart and orders are left out.
type userRow struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	Role      domain.Role `json:"role"`
	IsBlocked bool        `json:"isBlocked"`
	CreatedAt time.Time   `json:"createdAt"`
}

type listQ struct {
	Offset int    `form:"offset,default=0"`
	Limit  int    `form:"limit,default=20"`
	Q      string `form:"q"` // 按 email/name 模糊搜
}

// MountAPI 挂在已鉴权分组上
func (h *AccountHandler) MountAPI(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, ez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/users/me",
		Binder: ez.BindNone,
		Auth:   true,
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return ez.CurrentUser(c), nil
		},
	})

	ez.RegisterAction(e, ez.Action[profileIn, profileOut]{
		Method: http.MethodPut,
		Path:   "/users/me",
		Binder: ez.BindJSON,
		Auth:   true,
		Handler: func(c *gin.Context, in *profileIn) (profileOut, error) {
			u, err := h.acc.UpdateProfile(c.Request.Context(), ez.CurrentUser(c).ID, domain.ProfilePatch{
				Name: in.Name, AvatarURL: in.Profile, Phone: in.Phone, Addresses: in.Addresses,
			})
			if err != nil {
				return profileOut{}, err
			}
			return profileOut{Message: "Profile updated", User: u}, nil
		},
	})

	ez.RegisterAction(e, h.listAction(true))
}

// MountAdmin 挂在 admin 分组上（分组已校验 admin 角色）
func (h *AccountHandler) MountAdmin(g *gin.RouterGroup) {
	e := ez.New(g, h.log)

	ez.RegisterAction(e, h.listAction(false))

	type idOut struct {
		ID        string      `json:"id"`
		Role      domain.Role `json:"role"`
		IsBlocked bool        `json:"isBlocked"`
	}
	setBlocked := func(blocked bool) func(c *gin.Context, _ *struct{}) (idOut, error) {
		return func(c *gin.Context, _ *struct{}) (idOut, error) {
			u, err := h.acc.SetBlocked(c.Request.Context(), c.Param("id"), blocked)
			if err != nil {
				return idOut{}, err
			}
			return idOut{ID: u.ID, Role: u.Role, IsBlocked: u.IsBlocked}, nil
		}
	}
	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodPost, Path: "/users/:id/block", Binder: ez.BindNone,
		Handler: setBlocked(true),
	})
	ez.RegisterAction(e, ez.Action[struct{}, idOut]{
		Method: http.MethodPost, Path: "/users/:id/unblock", Binder: ez.BindNone,
		Handler: setBlocked(false),
	})

	type roleIn struct {
		Role domain.Role `json:"role" binding:"required"`
	}
	ez.RegisterAction(e, ez.Action[roleIn, idOut]{
		Method: http.MethodPut,
		Path:   "/users/:id/role",
		Binder: ez.BindJSON,
		Handler: func(c *gin.Context, in *roleIn) (idOut, error) {
			u, err := h.acc.SetRole(c.Request.Context(), c.Param("id"), in.Role)
			if err != nil {
				return idOut{}, err
			}
			return idOut{ID: u.ID, Role: u.Role, IsBlocked: u.IsBlocked}, nil
		},
	})
}

func (h *AccountHandler) listAction(gated bool) ez.Action[listQ, resp.Page[userRow]] {
	a := ez.Action[listQ, resp.Page[userRow]]{
		Method: http.MethodGet,
		Path:   "/users",
		Binder: ez.BindQuery,
		Handler: func(c *gin.Context, in *listQ) (resp.Page[userRow], error) {
			us, total, err := h.acc.ListUsers(c.Request.Context(), domain.UserQuery{
				Offset: in.Offset, Limit: in.Limit, Q: in.Q,
			})
			if err != nil {
				return resp.Page[userRow]{}, err
			}
			rows := make([]userRow, 0, len(us))
			for _, u := range us {
				rows = append(rows, userRow{
					ID: u.ID, Email: u.Email, Name: u.Name, Role: u.Role,
					IsBlocked: u.IsBlocked, CreatedAt: u.CreatedAt,
				})
			}
			return resp.NewPage(rows, total), nil
		},
	}
	if gated {
		a.Role = domain.RoleAdmin
	}
	return a
}
