package router

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
)

// setupHealthRoutes registers health check endpoints
func (r *Router) setupHealthRoutes() {
	healthHandler := func(c *gin.Context) {
		status := "ok"
		code := http.StatusOK
		if !r.Container.Health.IsSystemHealthy() {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}

		activeConnections := 0
		if r.Container.Hub != nil {
			activeConnections = r.Container.Hub.ClientCount()
		}

		// Get memory stats
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		c.JSON(code, gin.H{
			"status":     status,
			"version":    os.Getenv("APP_VERSION"),
			"timestamp":  time.Now().Format(time.RFC3339),
			"uptime":     time.Since(startTime).Round(time.Second).String(),
			"session":    r.Container.Session.State().String(),
			"components": r.Container.Health.GetStatus(),
			"websocket": gin.H{
				"active_connections": activeConnections,
			},
			"memory": gin.H{
				"alloc_mb":  memStats.Alloc / 1024 / 1024,
				"sys_mb":    memStats.Sys / 1024 / 1024,
				"gc_cycles": memStats.NumGC,
			},
		})
	}

	// Register both health endpoint paths for compatibility
	r.Engine.GET("/health", healthHandler)
	r.Engine.GET("/api/health", healthHandler)
}
