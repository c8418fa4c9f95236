package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const serviceVersion = "1.0.0"

type rootResponse struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
}

// RootHandler serves the unauthenticated service banner at GET /.
type RootHandler struct{}

func NewRootHandler() *RootHandler {
	return &RootHandler{}
}

// Root reports the service name, version and a short description.
//
//	@Summary		Service info
//	@Description	Returns the service name, version, and description
//	@Tags			Root
//	@Produce		json
//	@Success		200	{object}	rootResponse
//	@Router			/ [get]
func (h *RootHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, rootResponse{
		Name:        "coderunner",
		Version:     serviceVersion,
		Description: "Runs untrusted code in single-use Docker containers and returns its JSON output",
	})
}
