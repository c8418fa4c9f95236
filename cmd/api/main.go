// Package main Code Runner API Server
//
//	@title			Code Runner API
//	@version		1.0.0
//	@description	Runs untrusted code in single-use Docker containers and returns its JSON output.
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:8080
//	@BasePath	/
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Type "Bearer" followed by a space and the service access token.
//
//	@tag.name			Run
//	@tag.description	Container run operations
//	@tag.name			Version
//	@tag.description	Docker daemon version reporting
//	@tag.name			Health
//	@tag.description	Service health and readiness
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voidrunnerhq/coderunner/internal/api/routes"
	"github.com/voidrunnerhq/coderunner/internal/auth"
	"github.com/voidrunnerhq/coderunner/internal/config"
	"github.com/voidrunnerhq/coderunner/internal/docker"
	"github.com/voidrunnerhq/coderunner/internal/executor"
	"github.com/voidrunnerhq/coderunner/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logger.Level, cfg.Logger.Format)

	authService := auth.NewService(&cfg.Auth)

	socketCfg := docker.SocketConfig{
		Path:         cfg.Socket.Path,
		ReadTimeout:  cfg.Socket.DefaultReadTimeout,
		WriteTimeout: cfg.Socket.DefaultWriteTimeout,
	}

	if err := checkDockerSocket(socketCfg); err != nil {
		log.Warn("docker socket not reachable at startup; readiness will report unhealthy until it is", "error", err)
	}

	policy := executor.ContainerPolicy{
		Hostname: cfg.RunDefaults.Hostname,
		User:     cfg.RunDefaults.User,

		MemoryBytes:     cfg.RunDefaults.MemoryBytes,
		NetworkDisabled: true,

		UlimitNofileSoft: cfg.RunDefaults.UlimitNofileSoft,
		UlimitNofileHard: cfg.RunDefaults.UlimitNofileHard,
		UlimitNprocSoft:  cfg.RunDefaults.UlimitNprocSoft,
		UlimitNprocHard:  cfg.RunDefaults.UlimitNprocHard,

		CapDrop: []string{"ALL"},

		ReadonlyRootfs: cfg.RunDefaults.ReadonlyRootfs,

		TmpDir:  &executor.Tmpfs{Path: "/tmp", Options: "rw,noexec,nosuid,size=64m"},
		WorkDir: &executor.Tmpfs{Path: "/work", Options: "rw,noexec,nosuid,size=64m"},
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	routes.Setup(router, cfg, log, authService, socketCfg, policy)

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      cfg.RunDefaults.MaxExecutionTimeCap + 30*time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		log.Info("starting server",
			"host", cfg.Server.Host,
			"port", cfg.Server.Port,
			"env", cfg.Server.Env,
			"docker_socket", cfg.Socket.Path,
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}

func checkDockerSocket(socketCfg docker.SocketConfig) error {
	probeCfg := socketCfg.WithReadTimeout(2 * time.Second)
	_, err := docker.WithStream(probeCfg, func(conn net.Conn) (docker.VersionResponse, error) {
		return docker.Version(conn)
	})
	return err
}
