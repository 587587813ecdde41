package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/riskdash-backend/internal/apperr"
)

// Response is the error envelope. Successful payloads are written bare so the
// dashboard can consume them directly.
type Response struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success sends a 200 with data as the body
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Error sends an error envelope
func Error(c *gin.Context, status int, code apperr.Kind, message string) {
	c.AbortWithStatusJSON(status, Response{
		Code:    string(code),
		Message: message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, apperr.InvalidInput, message)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, apperr.NotFound, message)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, apperr.Internal, message)
}

// StatusOf maps an error kind to its HTTP status
func StatusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.InvalidInput:
		return http.StatusBadRequest
	case apperr.NotFound:
		return http.StatusNotFound
	case apperr.Unauthorized:
		return http.StatusUnauthorized
	case apperr.RateLimited:
		return http.StatusTooManyRequests
	case apperr.DataUnavailable, apperr.UpstreamFailure:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// FromError writes err with the status of its kind. Internal errors hide
// their message from the client.
func FromError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := StatusOf(kind)
	_ = c.Error(err)

	if kind == apperr.Internal {
		var ae *apperr.Error
		if !errors.As(err, &ae) {
			slog.Error("Unhandled error", "path", c.FullPath(), "error", err)
		}
		Error(c, status, kind, "internal server error")
		return
	}
	Error(c, status, kind, apperr.MessageOf(err))
}
