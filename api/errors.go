package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rannerhq/ranner/internal/domain"
)

// sendError maps domain failures onto the response envelope every
// endpoint shares: {"error": {"message": ..., "status": ...}}.
func sendError(c *gin.Context, err error) {
	status := http.StatusInternalServerError

	var perr *domain.ProviderError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNoOffersFound):
		status = http.StatusNotFound
	case errors.As(err, &perr):
		// Forward the provider's status when it gave a usable one.
		if perr.Status >= http.StatusBadRequest {
			status = perr.Status
		}
	}

	c.JSON(status, gin.H{"error": gin.H{"message": err.Error(), "status": status}})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": gin.H{"message": message, "status": http.StatusBadRequest}})
}
