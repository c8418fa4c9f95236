package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/voidrunnerhq/coderunner/internal/api/handlers"
	"github.com/voidrunnerhq/coderunner/internal/api/middleware"
	"github.com/voidrunnerhq/coderunner/internal/auth"
	"github.com/voidrunnerhq/coderunner/internal/config"
	"github.com/voidrunnerhq/coderunner/internal/docker"
	"github.com/voidrunnerhq/coderunner/internal/executor"
	"github.com/voidrunnerhq/coderunner/pkg/logger"
)

const maxRunRequestBodyBytes = 1 << 20 // 1 MiB; the payload is a JSON value, not a file upload

// Setup wires every route this service exposes: the public banner, health
// and docs endpoints, and the bearer-gated version and run endpoints.
func Setup(
	router *gin.Engine,
	cfg *config.Config,
	log *logger.Logger,
	authService *auth.Service,
	socketCfg docker.SocketConfig,
	policy executor.ContainerPolicy,
) {
	setupMiddleware(router, cfg, log)
	setupRoutes(router, cfg, log, authService, socketCfg, policy)
}

func setupMiddleware(router *gin.Engine, cfg *config.Config, log *logger.Logger) {
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS(cfg.CORS.AllowedOrigins, cfg.CORS.AllowedMethods, cfg.CORS.AllowedHeaders))
	router.Use(log.GinLogger())
	router.Use(log.GinRecovery())
	router.Use(middleware.ErrorHandler())
}

func setupRoutes(
	router *gin.Engine,
	cfg *config.Config,
	log *logger.Logger,
	authService *auth.Service,
	socketCfg docker.SocketConfig,
	policy executor.ContainerPolicy,
) {
	healthHandler := handlers.NewHealthHandler()
	healthHandler.AddHealthCheck("docker", handlers.NewDockerSocketChecker(socketCfg))

	authMiddleware := middleware.NewAuthMiddleware(authService, log.Logger)
	docsHandler := handlers.NewDocsHandler()
	rootHandler := handlers.NewRootHandler()
	versionHandler := handlers.NewVersionHandler(socketCfg, log.Logger)
	runHandler := handlers.NewRunHandler(socketCfg, policy, cfg.RunDefaults, cfg.Debug.KeepContainer, log.Logger)
	runValidation := middleware.NewValidationMiddleware(log.Logger)

	router.GET("/", rootHandler.Root)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Readiness)
	router.NoRoute(handlers.NotFound)

	router.GET("/api", docsHandler.GetAPIIndex)
	router.GET("/docs", docsHandler.RedirectToSwaggerUI)
	router.GET("/docs/*any", docsHandler.GetSwaggerUI())
	router.GET("/swagger.json", docsHandler.GetSwaggerJSON)
	router.GET("/swagger.yaml", docsHandler.GetSwaggerYAML)

	var runRateLimit gin.HandlerFunc
	if cfg.IsTest() {
		runRateLimit = middleware.RunRateLimitForTest(log.Logger)
	} else {
		runRateLimit = middleware.RunRateLimit(log.Logger)
	}

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware.RequireAuth())
	{
		v1.GET("/version", versionHandler.Version)

		v1.POST("/run",
			middleware.RequestSizeLimit(maxRunRequestBodyBytes, log.Logger),
			runRateLimit,
			runValidation.ValidateJSON(handlers.RunHTTPRequest{}),
			runHandler.Run,
		)
	}
}
