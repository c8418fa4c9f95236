package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"regexp"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// dockerImageRef matches a reasonably well-formed "name[:tag]" or
// "name@sha256:..." reference. It is deliberately permissive — Docker
// itself is the authority on whether an image exists; this only rejects
// obvious garbage before a request reaches the core.
var dockerImageRef = regexp.MustCompile(`^[a-z0-9]+((\.|_|__|-+)[a-z0-9]+)*(/[a-z0-9]+((\.|_|__|-+)[a-z0-9]+)*)*(:[\w][\w.-]{0,127}|@sha256:[a-f0-9]{64})?$`)

// ValidationMiddleware validates inbound run requests against struct tags
// before they reach the handler.
type ValidationMiddleware struct {
	validator *validator.Validate
	logger    *slog.Logger
}

func NewValidationMiddleware(logger *slog.Logger) *ValidationMiddleware {
	v := validator.New()
	_ = v.RegisterValidation("docker_image", validateDockerImage)

	return &ValidationMiddleware{
		validator: v,
		logger:    logger,
	}
}

// ValidateJSON binds the request body into a fresh instance of modelType,
// validates it against its struct tags, and stores the result under
// "validated_body" for the handler to retrieve.
func (vm *ValidationMiddleware) ValidateJSON(modelType interface{}) gin.HandlerFunc {
	return func(c *gin.Context) {
		model := reflect.New(reflect.TypeOf(modelType)).Interface()

		if err := c.ShouldBindJSON(model); err != nil {
			vm.logger.Warn("request body binding failed", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "invalid request format",
				"details": err.Error(),
			})
			c.Abort()
			return
		}

		if err := vm.validator.Struct(model); err != nil {
			vm.logger.Warn("request validation failed", "error", err)
			c.JSON(http.StatusBadRequest, gin.H{
				"error":             "validation failed",
				"validation_errors": vm.formatValidationErrors(err),
			})
			c.Abort()
			return
		}

		c.Set("validated_body", model)
		c.Next()
	}
}

func (vm *ValidationMiddleware) formatValidationErrors(err error) []map[string]string {
	var errs []map[string]string

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return errs
	}

	for _, fe := range validationErrs {
		errs = append(errs, map[string]string{
			"field":   fe.Field(),
			"tag":     fe.Tag(),
			"message": vm.getValidationMessage(fe),
		})
	}

	return errs
}

func (vm *ValidationMiddleware) getValidationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "docker_image":
		return "image must be a valid Docker image reference"
	default:
		return fmt.Sprintf("%s failed validation: %s", fe.Field(), fe.Tag())
	}
}

// validateDockerImage backs the "docker_image" struct tag.
func validateDockerImage(fl validator.FieldLevel) bool {
	ref := fl.Field().String()
	if ref == "" || len(ref) > 255 {
		return false
	}
	return dockerImageRef.MatchString(ref)
}

// RequestSizeLimit rejects request bodies larger than maxSize, protecting
// the JSON decoder from an unbounded payload before it ever reaches the
// handler or the core.
func RequestSizeLimit(maxSize int64, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > maxSize {
			logger.Warn("request body too large",
				"content_length", c.Request.ContentLength,
				"max_size", maxSize,
			)
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"error": fmt.Sprintf("request body too large, maximum size is %d bytes", maxSize),
			})
			c.Abort()
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}
