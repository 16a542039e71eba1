package handlers

import (
	"net/http"

	"github.com/andresuchdata/stockcast/internal/forecast"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// statusFor maps the forecast error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, forecast.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, forecast.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error, message string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg(message)
	}
	c.JSON(status, gin.H{"error": message, "details": err.Error()})
}

func badRequest(c *gin.Context, message string, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message, "details": err.Error()})
}
