package handlers

import (
	"errors"
	"net/http"
	"strings"

	"globetrail/apperr"
	"globetrail/database"
	"globetrail/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type LoginRequest struct {
	Email       string `json:"email"`
	FirebaseUID string `json:"firebaseUid"`
	DisplayName string `json:"displayName"`
	IDToken     string `json:"idToken"`
}

// Login verifies the identity provider token, creates the profile on first
// login and starts a session.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	req.FirebaseUID = strings.TrimSpace(req.FirebaseUID)
	if req.Email == "" || req.FirebaseUID == "" {
		h.respondError(c, apperr.Validation("email and firebaseUid are required", "email", "firebaseUid"))
		return
	}

	if _, err := h.Identity.Verify(req.IDToken, req.FirebaseUID); err != nil {
		if errors.Is(err, session.ErrInvalidIdentity) {
			h.respondError(c, apperr.Unauthenticated("invalid identity token"))
			return
		}
		h.respondError(c, err)
		return
	}

	name := strings.TrimSpace(req.DisplayName)
	if name == "" {
		name, _, _ = strings.Cut(req.Email, "@")
	}

	created, err := h.Users.EnsureUser(c.Request.Context(), &database.User{
		ID:        req.FirebaseUID,
		Email:     req.Email,
		Name:      name,
		CreatedAt: h.now().UTC(),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	if created {
		h.Log.Info("✅ user profile created", zap.String("user_id", req.FirebaseUID))
	}

	if _, err := h.Sessions.Start(c, req.FirebaseUID, req.Email, name); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) Logout(c *gin.Context) {
	if err := h.Sessions.End(c); err != nil {
		h.Log.Error("❌ logout failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Error during logout"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) CheckSession(c *gin.Context) {
	s, ok := session.FromContext(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{
			"authenticated": false,
			"userId":        nil,
			"name":          nil,
			"email":         nil,
		})
		return
	}

	name := s.Name
	if name == "" {
		name = s.Email
	}
	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"userId":        s.UserID,
		"name":          name,
		"email":         s.Email,
	})
}
