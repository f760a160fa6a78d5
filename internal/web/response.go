package web

import (
	"github.com/gin-gonic/gin"

	"badmincal/internal/apperr"
)

// envelope is the common JSON response contract.
type envelope struct {
	Data  interface{}   `json:"data,omitempty"`
	Error *apperr.Error `json:"error,omitempty"`
}

func respondJSON(c *gin.Context, status int, data interface{}) {
	c.Header("Cache-Control", "no-store")
	c.JSON(status, envelope{Data: data})
}

// respondError converts any error to the common error envelope with its
// HTTP-equivalent status.
func respondError(c *gin.Context, err error) {
	appErr := apperr.FromError(err)
	c.Header("Cache-Control", "no-store")
	c.JSON(appErr.Status, envelope{Error: appErr})
}
