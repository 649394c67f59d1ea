package handlers

import (
	"errors"
	"net/http"

	"globetrail/apperr"
	"globetrail/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError writes the {success:false, error, details?} envelope.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := apperr.Status(err)

	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		h.Log.Error("❌ request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err))
		c.JSON(status, gin.H{"success": false, "error": "Internal server error"})
		return
	}

	body := gin.H{"success": false, "error": appErr.Message}
	switch {
	case len(appErr.Fields) > 0:
		body["fields"] = appErr.Fields
	case appErr.Details != "":
		body["details"] = appErr.Details
	}
	if status >= http.StatusInternalServerError {
		h.Log.Error("❌ request failed", zap.String("path", c.FullPath()), zap.Error(err))
	} else {
		h.Log.Debug("request rejected", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, body)
}

// bindJSON decodes the body or responds 400.
func (h *Handler) bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request: " + err.Error()})
		return false
	}
	return true
}

// sessionUser is the caller's user id, or "" without a session.
func sessionUser(c *gin.Context) string {
	if s, ok := session.FromContext(c); ok {
		return s.UserID
	}
	return ""
}
