package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	handlers "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/interface/http"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/interface/middleware"
)

// UserLimits are per-minute request budgets. Zero disables a limit.
type UserLimits struct {
	PerMinute      int  // per IP and method, all /users routes
	WritePerMinute int  // per IP and route, POST/PATCH/DELETE only
	AllowPrivate   bool // private addresses bypass both limits
}

// UserModule wires the user handlers into routes under /users:
//
//	POST   /users          create
//	GET    /users          list (page, limit)
//	GET    /users/stats    statistics
//	GET    /users/search   full-text search (q, size)
//	GET    /users/:id      fetch
//	PATCH  /users/:id      partial update
//	DELETE /users/:id      delete
type UserModule struct {
	Handler *handlers.UserHandler
	Redis   *redis.Client
	Limits  UserLimits
}

func NewUserModule(h *handlers.UserHandler, rdb *redis.Client, limits UserLimits) *UserModule {
	return &UserModule{Handler: h, Redis: rdb, Limits: limits}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	var allow middleware.AllowFunc
	if m.Limits.AllowPrivate {
		allow = middleware.AllowPrivateIP()
	}
	write := middleware.RateLimit(m.Redis, m.Limits.WritePerMinute, time.Minute, middleware.KeyByIPAndPath(), allow)

	users := rg.Group("/users")
	users.Use(middleware.RateLimit(m.Redis, m.Limits.PerMinute, time.Minute, middleware.KeyByIPAndMethod(), allow))
	{
		users.POST("", write, m.Handler.Create)
		users.GET("", m.Handler.List)
		users.GET("/stats", m.Handler.Stats)
		users.GET("/search", m.Handler.Search)
		users.GET("/:id", m.Handler.Get)
		users.PATCH("/:id", write, m.Handler.Update)
		users.DELETE("/:id", write, m.Handler.Delete)
	}
}
