package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/homematch/assistant-api/internal/interfaces/httpserver/handlers"
	v1 "github.com/homematch/assistant-api/internal/interfaces/httpserver/routes/v1"
)

// Provider aggregates versioned route registrars.
type Provider struct {
	v1 *v1.Routes
}

// NewProvider constructs the route provider.
func NewProvider(handlerProvider *handlers.Provider) *Provider {
	return &Provider{
		v1: v1.NewRoutes(handlerProvider),
	}
}

// Register attaches all API routes to the engine.
func (p *Provider) Register(engine *gin.Engine) {
	p.v1.Register(engine)
}
