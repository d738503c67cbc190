package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"memorial-platform/internal/apperr"
)

// writeError maps service-layer error kinds onto HTTP statuses. Anything
// unrecognized is a 500 with a generic message.
func writeError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case apperr.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case apperr.IsInvalidTransition(err):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case apperr.IsConflict(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case apperr.IsUpstream(err):
		c.JSON(http.StatusBadGateway, gin.H{"error": "Upstream dependency error."})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error."})
	}
}
