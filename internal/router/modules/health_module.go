package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/dzikrisyairozi/turborepo-fullstack-starter/internal/interface/http"
)

// HealthModule exposes the liveness check. It is never rate limited.
type HealthModule struct{}

func NewHealthModule() *HealthModule { return &HealthModule{} }

func (m *HealthModule) Register(rg *gin.RouterGroup) {
	rg.GET("/health", handlers.Health)
}
