package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxiq/internal/service"
)

type EmailHandler struct {
	emailService *service.EmailService
	logger       *zap.Logger
}

func NewEmailHandler(emailService *service.EmailService, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		emailService: emailService,
		logger:       logger,
	}
}

// Create handles POST /emails. Classification runs inline before the
// response is written.
func (h *EmailHandler) Create(c *gin.Context) {
	var req struct {
		Subject    string     `json:"subject"`
		Body       string     `json:"body"`
		Sender     string     `json:"sender"`
		ReceivedAt *time.Time `json:"receivedAt"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	if req.Subject == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Subject is required"})
		return
	}

	userID := c.GetInt("user_id")
	email, analysis, err := h.emailService.Ingest(c.Request.Context(), service.IngestInput{
		UserID:     userID,
		Subject:    req.Subject,
		Body:       req.Body,
		Sender:     req.Sender,
		ReceivedAt: req.ReceivedAt,
		Source:     "api",
	})
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.logger.Error("Add email failed", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process email"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"email":    email,
		"analysis": analysis,
	})
}

// List handles GET /emails with an optional relevance filter.
func (h *EmailHandler) List(c *gin.Context) {
	userID := c.GetInt("user_id")
	onlyRelevant := c.Query("relevant") == "true"

	emails, err := h.emailService.List(c.Request.Context(), userID, onlyRelevant)
	if err != nil {
		h.logger.Error("List emails failed", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list emails"})
		return
	}

	c.JSON(http.StatusOK, emails)
}

// Get handles GET /emails/:id.
func (h *EmailHandler) Get(c *gin.Context) {
	userID := c.GetInt("user_id")
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}

	email, err := h.emailService.Get(c.Request.Context(), id, userID)
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Email not found"})
		return
	}
	if err != nil {
		h.logger.Error("Get email failed", zap.Int("user_id", userID), zap.Int("email_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch email"})
		return
	}

	c.JSON(http.StatusOK, email)
}
