package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"patta-backend/internal/assignments"
	"patta-backend/internal/pattas"
	"patta-backend/internal/policies"
	"patta-backend/internal/shared/config"
	"patta-backend/internal/shared/server/middleware"
	"patta-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config             config.Config
	UsersHandler       *users.Handler
	PattasHandler      *pattas.Handler
	AssignmentsHandler *assignments.Handler
	PoliciesHandler    *policies.Handler
}

// NewRouter builds the gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Config.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
	)

	api := engine.Group("/api")
	api.GET("/health", healthHandler)

	if deps.UsersHandler != nil {
		deps.UsersHandler.RegisterRoutes(api)
	}
	if deps.PattasHandler != nil {
		deps.PattasHandler.RegisterRoutes(api)
	}
	if deps.AssignmentsHandler != nil {
		deps.AssignmentsHandler.RegisterRoutes(api)
	}
	if deps.PoliciesHandler != nil {
		deps.PoliciesHandler.RegisterRoutes(api)
	}

	return engine
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Addr returns a normalized listen address for the given port.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}
