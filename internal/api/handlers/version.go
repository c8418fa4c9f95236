package handlers

import (
	"errors"
	"log/slog"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voidrunnerhq/coderunner/internal/docker"
)

// VersionHandler reports the Docker Engine version behind this service.
type VersionHandler struct {
	socketCfg docker.SocketConfig
	logger    *slog.Logger
}

func NewVersionHandler(socketCfg docker.SocketConfig, logger *slog.Logger) *VersionHandler {
	return &VersionHandler{socketCfg: socketCfg, logger: logger}
}

type versionResponse struct {
	Docker docker.VersionResponse `json:"docker"`
}

// Version reports the daemon's own /version payload.
//
//	@Summary		Docker daemon version
//	@Description	Returns the version information of the Docker daemon this service drives
//	@Tags			Version
//	@Produce		json
//	@Success		200	{object}	versionResponse
//	@Failure		500	{object}	map[string]interface{}
//	@Security		BearerAuth
//	@Router			/api/v1/version [get]
func (h *VersionHandler) Version(c *gin.Context) {
	info, err := docker.WithStream(h.socketCfg, func(conn net.Conn) (docker.VersionResponse, error) {
		return docker.Version(conn)
	})
	if err != nil {
		h.logger.Error("failed to get docker version", "error", err)

		code := "docker.version"
		var socketErr *docker.SocketError
		if errors.As(err, &socketErr) {
			code = "docker.unixsocket"
		}

		c.JSON(http.StatusInternalServerError, gin.H{"error": code, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, versionResponse{Docker: info})
}
