package handlers

import (
	"net/http"
	"strings"

	"globetrail/apperr"
	"globetrail/database"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxReviewLength = 2000

type ReviewRequest struct {
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (h *Handler) CreateReview(c *gin.Context) {
	var req ReviewRequest
	if !h.bindJSON(c, &req) {
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Message = strings.TrimSpace(req.Message)

	var fields []string
	if req.Name == "" {
		fields = append(fields, "name")
	}
	if req.Message == "" || len(req.Message) > maxReviewLength {
		fields = append(fields, "message")
	}
	if len(fields) > 0 {
		h.respondError(c, apperr.Validation("name and message are required", fields...))
		return
	}

	r := &database.Review{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Message:   req.Message,
		UserID:    sessionUser(c),
		Timestamp: h.now().UTC(),
	}
	if err := h.Reviews.InsertReview(c.Request.Context(), r); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "review": r})
}

func (h *Handler) ListReviews(c *gin.Context) {
	reviews, err := h.Reviews.ListReviews(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []database.Review{}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "reviews": reviews})
}
