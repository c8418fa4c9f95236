package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voidrunnerhq/coderunner/internal/config"
	"github.com/voidrunnerhq/coderunner/internal/docker"
	"github.com/voidrunnerhq/coderunner/internal/executor"
)

// RunHTTPRequest is the wire shape of POST /api/v1/run: an image to run,
// an arbitrary JSON payload to hand the container on stdin, and an
// optional override of the service's default execution limits.
type RunHTTPRequest struct {
	Image   string          `json:"image" validate:"required,docker_image"`
	Payload json.RawMessage `json:"payload" validate:"required"`
	Limits  *RunLimitsHTTP  `json:"limits,omitempty"`
}

// RunLimitsHTTP lets a caller tighten (or loosen, up to the service's
// caps) the default execution window and output budget for one run.
type RunLimitsHTTP struct {
	MaxExecutionTimeMs int64 `json:"max_execution_time_ms,omitempty" validate:"omitempty,min=1"`
	MaxOutputSize      int   `json:"max_output_size,omitempty" validate:"omitempty,min=1"`
}

// RunHandler drives requests through the container-run engine.
type RunHandler struct {
	socketCfg     docker.SocketConfig
	policy        executor.ContainerPolicy
	defaults      config.RunDefaultsConfig
	keepContainer bool
	logger        *slog.Logger
}

func NewRunHandler(
	socketCfg docker.SocketConfig,
	policy executor.ContainerPolicy,
	defaults config.RunDefaultsConfig,
	keepContainer bool,
	logger *slog.Logger,
) *RunHandler {
	return &RunHandler{
		socketCfg:     socketCfg,
		policy:        policy,
		defaults:      defaults,
		keepContainer: keepContainer,
		logger:        logger,
	}
}

// Run executes one submitted image+payload to completion and returns its
// decoded stdout JSON object, or a classified error.
//
//	@Summary		Run a container
//	@Description	Creates a single-use container from the given image, streams the payload to its stdin, and returns the JSON object it printed to stdout
//	@Tags			Run
//	@Accept			json
//	@Produce		json
//	@Param			request	body	RunHTTPRequest	true	"Run request"
//	@Success		200	{object}	map[string]interface{}
//	@Failure		400	{object}	map[string]interface{}
//	@Failure		500	{object}	map[string]interface{}
//	@Security		BearerAuth
//	@Router			/api/v1/run [post]
func (h *RunHandler) Run(c *gin.Context) {
	body, ok := c.MustGet("validated_body").(*RunHTTPRequest)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "coderunner.unknown", "message": "validated body missing or of the wrong type"})
		return
	}

	var payload any
	if err := json.Unmarshal(body.Payload, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request.payload", "message": "payload must be a JSON value: " + err.Error()})
		return
	}

	req := executor.RunRequest{
		Image:   body.Image,
		Payload: payload,
		Limits:  h.resolveLimits(body.Limits),
	}

	requestLogger := h.logger
	if requestID := c.GetString("request_id"); requestID != "" {
		requestLogger = h.logger.With("request_id", requestID)
	}

	outcome, err := executor.Run(h.socketCfg, h.policy, req, h.keepContainer, requestLogger)
	if err != nil {
		var runErr *executor.RunError
		if errors.As(err, &runErr) {
			requestLogger.Warn("run failed", "code", runErr.Code(), "error", runErr.Error())
			c.JSON(runErr.StatusCode(), gin.H{"error": runErr.Code(), "message": runErr.Error()})
			return
		}

		requestLogger.Error("run failed with an unclassified error", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "coderunner.unknown", "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// resolveLimits fills in any limit the caller omitted with the service
// default, then caps the result — a caller can tighten its own budget but
// never loosen it past what the operator allows.
func (h *RunHandler) resolveLimits(input *RunLimitsHTTP) executor.RunLimits {
	maxExecutionTime := h.defaults.DefaultMaxExecutionTime
	maxOutputSize := h.defaults.DefaultMaxOutputSize

	if input != nil {
		if input.MaxExecutionTimeMs > 0 {
			maxExecutionTime = time.Duration(input.MaxExecutionTimeMs) * time.Millisecond
		}
		if input.MaxOutputSize > 0 {
			maxOutputSize = input.MaxOutputSize
		}
	}

	if maxExecutionTime > h.defaults.MaxExecutionTimeCap {
		maxExecutionTime = h.defaults.MaxExecutionTimeCap
	}
	if maxOutputSize > h.defaults.MaxOutputSizeCap {
		maxOutputSize = h.defaults.MaxOutputSizeCap
	}

	return executor.RunLimits{
		MaxExecutionTime: maxExecutionTime,
		MaxOutputSize:    maxOutputSize,
	}
}
