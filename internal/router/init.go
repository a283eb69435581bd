package router

import (
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/container"
	handlers "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/interface/http"
	"github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/router/modules"
)

// InitModules wires every module from the container and adds it to the registry.
// Call once during startup, after the container is populated.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	h := handlers.NewUserHandler(container.GetUserService(), container.GetLogger())

	r.AddRoot(modules.NewHealthModule())
	r.Add(modules.NewUserModule(h, container.GetRedis(), modules.UserLimits{
		PerMinute:      cfg.RateLimitPerMinute,
		WritePerMinute: cfg.WriteLimitPerMinute,
		AllowPrivate:   cfg.Env == "development",
	}))
}
