package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NotFound is the catch-all for any route this service doesn't define.
func NotFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":   "route.not_found",
		"message": "Route not found",
	})
}
