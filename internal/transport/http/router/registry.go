package router

import (
	"sort"

	"github.com/gin-gonic/gin"
)

// APIModule 模块可选择实现其中一个或两个接口
type APIModule interface{ MountAPI(*gin.RouterGroup) }
type AdminModule interface{ MountAdmin(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

// 可选：公开模块挂在未鉴权分组上
type publicModule interface{ Public() bool }

// Registry 收集模块；每个 engine 一份，不用全局变量
type Registry struct {
	apiMods   []APIModule
	adminMods []AdminModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 统一注册入口：根据类型断言分发到 API/Admin 列表
func (r *Registry) Register(mod any) {
	if m, ok := mod.(APIModule); ok {
		r.apiMods = append(r.apiMods, m)
	}
	if m, ok := mod.(AdminModule); ok {
		r.adminMods = append(r.adminMods, m)
	}
}

// MountAPI 公开模块挂 public，其余挂 authed
func (r *Registry) MountAPI(public, authed *gin.RouterGroup) {
	for _, m := range sorted(r.apiMods) {
		if p, ok := m.(publicModule); ok && p.Public() {
			m.MountAPI(public)
			continue
		}
		m.MountAPI(authed)
	}
}

func (r *Registry) MountAdmin(admin *gin.RouterGroup) {
	for _, m := range sorted(r.adminMods) {
		m.MountAdmin(admin)
	}
}

func sorted[T any](mods []T) []T {
	out := append([]T(nil), mods...)
	sort.SliceStable(out, func(i, j int) bool {
		return priorityOf(out[i]) < priorityOf(out[j])
	})
	return out
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
