package middleware

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/slidewise/slidewise-server/services"
)

var kindStatus = map[services.Kind]int{
	services.KindValidation:     http.StatusBadRequest,
	services.KindAuthentication: http.StatusUnauthorized,
	services.KindAuthorization:  http.StatusForbidden,
	services.KindNotFound:       http.StatusNotFound,
	services.KindConflict:       http.StatusConflict,
	services.KindUpstream:       http.StatusBadGateway,
	services.KindInternal:       http.StatusInternalServerError,
}

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind services.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// ErrorBody renders {"kind", "message"}. Internal details never reach the client.
func ErrorBody(err error) gin.H {
	kind := services.KindOf(err)
	msg := services.MessageOf(err)
	if kind == services.KindInternal {
		msg = "Server Error"
	}
	return gin.H{"kind": kind, "message": msg}
}

// AbortWithError writes err as the response and stops the chain.
func AbortWithError(c *gin.Context, err error) {
	kind := services.KindOf(err)
	switch kind {
	case services.KindInternal:
		slog.ErrorContext(c.Request.Context(), "request failed",
			"error", err,
			"method", c.Request.Method,
			"path", c.FullPath(),
		)
	case services.KindUpstream:
		slog.WarnContext(c.Request.Context(), "upstream failure",
			"error", err,
			"path", c.FullPath(),
		)
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(StatusFor(kind), ErrorBody(err))
}
