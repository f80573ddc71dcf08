package ez

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-gin-storefront/internal/core/logger"
	"go-gin-storefront/internal/domain"
	resp "go-gin-storefront/internal/transport/http/response"
)

type EZ struct {
	g   *gin.RouterGroup
	log *zap.Logger
}

func New(g *gin.RouterGroup, l *zap.Logger) EZ {
	if l == nil {
		l = zap.NewNop()
	}
	return EZ{g: g, log: l}
}

// 绑定方式
type Binder string

const (
	BindJSON  Binder = "json"  // 从 JSON 绑定
	BindQuery Binder = "query" // 从 URL ?a=b 绑定
	BindNone  Binder = "none"  // 不绑定，自己从 c.Param 取
)

// 动作定义：I 入参，O 出参
type Action[I any, O any] struct {
	Method  string // "GET" | "POST" | "PUT" | "DELETE"
	Path    string // 例："/users/me/cart/:productId"
	Binder  Binder
	Auth    bool        // 要求已解析出用户（由 Authenticate 中间件放入）
	Role    domain.Role // 限定角色（可选）
	Status  int         // 成功状态码，默认 200
	Handler func(c *gin.Context, in *I) (O, error)
}

// RegisterAction 在当前 EZ 下注册动作接口
func RegisterAction[I any, O any](e EZ, a Action[I, O]) {
	h := func(c *gin.Context) {
		// 1) 鉴权/角色
		if a.Auth || a.Role != "" {
			u := CurrentUser(c)
			if u == nil {
				Fail(c, e.log, domain.ErrUnauthorized)
				return
			}
			if a.Role != "" {
				if err := domain.Authorize(u, a.Role); err != nil {
					Fail(c, e.log, err)
					return
				}
			}
		}

		// 2) 绑定入参
		var in I
		var bindErr error
		switch a.Binder {
		case BindJSON:
			bindErr = c.ShouldBindJSON(&in)
		case BindQuery:
			bindErr = c.ShouldBindQuery(&in)
		default: // BindNone: 不绑定
		}
		if bindErr != nil {
			var mbe *http.MaxBytesError
			if errors.As(bindErr, &mbe) {
				Fail(c, e.log, &AErr{Code: resp.CodeTooLarge, Msg: "request body too large"})
				return
			}
			Fail(c, e.log, BadRequest(bindErr.Error()))
			return
		}

		// 3) 执行
		out, err := a.Handler(c, &in)
		if err != nil {
			Fail(c, e.log, err)
			return
		}
		status := a.Status
		if status == 0 {
			status = http.StatusOK
		}
		c.JSON(status, resp.OK(out))
	}

	switch strings.ToUpper(a.Method) {
	case http.MethodGet:
		e.g.GET(a.Path, h)
	case http.MethodPut:
		e.g.PUT(a.Path, h)
	case http.MethodDelete:
		e.g.DELETE(a.Path, h)
	default: // 默认 POST
		e.g.POST(a.Path, h)
	}
}

// Fail writes err as an envelope with its HTTP status and aborts the chain.
// Server errors are logged with the cause; client errors are not.
func Fail(c *gin.Context, l *zap.Logger, err error) {
	ae := FromDomain(err)
	if ae.Code >= http.StatusInternalServerError {
		// 请求级 logger 已带 rid
		logger.FromContext(c.Request.Context(), l).Error("request failed",
			zap.String("path", c.FullPath()),
			zap.Error(ae.Err),
		)
	}
	c.AbortWithStatusJSON(resp.Status(ae.Code), resp.Error(ae.Code, ae.Msg))
}
