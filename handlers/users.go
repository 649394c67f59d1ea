package handlers

import (
	"errors"
	"net/http"
	"sort"
	"strings"

	"globetrail/apperr"
	"globetrail/database"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ProfileUpdate carries only the fields the client sent.
type ProfileUpdate struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Phone   *string `json:"phone"`
	Country *string `json:"country"`
	State   *string `json:"state"`
}

// uniqueProfileFields may not be shared between users.
var uniqueProfileFields = []string{"email", "phone"}

func (h *Handler) loadProfile(c *gin.Context) (*database.User, bool) {
	u, err := h.Users.GetUser(c.Request.Context(), sessionUser(c))
	if errors.Is(err, database.ErrNotFound) {
		h.respondError(c, apperr.NotFound("user"))
		return nil, false
	}
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return u, true
}

func (h *Handler) GetProfile(c *gin.Context) {
	u, ok := h.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

// changedFields compares the update with the stored profile by bson name.
func changedFields(u *database.User, req ProfileUpdate) map[string]string {
	changed := map[string]string{}
	check := func(field string, in *string, current string) {
		if in == nil {
			return
		}
		v := strings.TrimSpace(*in)
		if v != current {
			changed[field] = v
		}
	}
	check("name", req.Name, u.Name)
	check("email", req.Email, u.Email)
	check("phone", req.Phone, u.Phone)
	check("country", req.Country, u.Country)
	check("state", req.State, u.State)
	return changed
}

// UpdateProfile writes only changed fields. Email and phone must not belong
// to another user.
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req ProfileUpdate
	if !h.bindJSON(c, &req) {
		return
	}
	u, ok := h.loadProfile(c)
	if !ok {
		return
	}

	changed := changedFields(u, req)
	if v, ok := changed["email"]; ok && v == "" {
		h.respondError(c, apperr.Validation("email cannot be empty", "email"))
		return
	}
	if len(changed) == 0 {
		c.JSON(http.StatusOK, gin.H{"success": true, "updated": []string{}, "user": u})
		return
	}

	for _, field := range uniqueProfileFields {
		v, ok := changed[field]
		if !ok || v == "" {
			continue
		}
		taken, err := h.Users.FieldTakenByOther(c.Request.Context(), field, v, u.ID)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if taken {
			h.respondError(c, apperr.Conflict(field+" is already in use by another account"))
			return
		}
	}

	if err := h.Users.UpdateUser(c.Request.Context(), u.ID, changed, h.now().UTC()); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			h.respondError(c, apperr.NotFound("user"))
			return
		}
		h.respondError(c, err)
		return
	}

	updated := make([]string, 0, len(changed))
	for k := range changed {
		updated = append(updated, k)
	}
	sort.Strings(updated)
	h.Log.Info("profile updated", zap.String("user_id", u.ID), zap.Strings("fields", updated))

	u, ok = h.loadProfile(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "updated": updated, "user": u})
}
