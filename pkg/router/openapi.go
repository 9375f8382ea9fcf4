package router

import (
	_ "embed"
	"fmt"
	"net/http"

	"ai-agent-character-demo/client/internal/transport"
	"ai-agent-character-demo/client/pkg/validator"

	"github.com/gin-gonic/gin"
)

//go:embed companion.yaml
var companionSchema []byte

const yamlContentType = "application/yaml; charset=utf-8"

// openAPIValidation returns middleware checking request bodies and path
// parameters against the companion API description
func (r *Router) openAPIValidation() (gin.HandlerFunc, error) {
	v, err := validator.NewOpenAPIValidator(companionSchema)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenAPI validator: %w", err)
	}
	r.Logger.Info("OpenAPI validation enabled", "schema", "/api/docs/companion.yaml")
	return v.Middleware(), nil
}

// setupDocsRoutes serves the companion's own API description and the
// backend description responses are validated against
func (r *Router) setupDocsRoutes() {
	docs := r.Engine.Group("/api/docs")
	docs.GET("/companion.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, yamlContentType, companionSchema)
	})
	docs.GET("/backend.yaml", func(c *gin.Context) {
		c.Data(http.StatusOK, yamlContentType, transport.BackendSchema())
	})
}
