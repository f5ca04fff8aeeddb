package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"inboxiq/internal/service"
)

type GmailHandler struct {
	gmailService *service.GmailService
	logger       *zap.Logger
}

func NewGmailHandler(gmailService *service.GmailService, logger *zap.Logger) *GmailHandler {
	return &GmailHandler{
		gmailService: gmailService,
		logger:       logger,
	}
}

// AuthURL handles GET /auth/gmail/auth
func (h *GmailHandler) AuthURL(c *gin.Context) {
	userID := c.GetInt("user_id")

	url, err := h.gmailService.AuthURL(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to build Gmail auth URL", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get authorization URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"authUrl": url})
}

// Callback handles GET /auth/gmail/callback. The response is an HTML
// page rendered into the OAuth popup window, not JSON.
func (h *GmailHandler) Callback(c *gin.Context) {
	if oauthErr := c.Query("error"); oauthErr != "" {
		h.logger.Warn("OAuth error returned to callback", zap.String("error", oauthErr))
		h.renderPopup(c, http.StatusBadRequest, "OAuth Error",
			"Google reported an error during authorization. Please check your Google Cloud Console configuration.")
		return
	}

	code := c.Query("code")
	if code == "" {
		h.renderPopup(c, http.StatusBadRequest, "Missing Authorization Code",
			"The authorization code was not provided.")
		return
	}

	if err := h.gmailService.HandleCallback(c.Request.Context(), c.Query("state"), code); err != nil {
		h.logger.Error("Gmail callback failed", zap.Error(err))
		h.renderPopup(c, http.StatusInternalServerError, "Connection Error",
			"Failed to connect Gmail. Please try again.")
		return
	}

	h.renderPopup(c, http.StatusOK, "Gmail Successfully Connected!",
		"Your Gmail account has been connected. You can now sync your emails for analysis.")
}

// Sync handles POST /auth/gmail/sync
func (h *GmailHandler) Sync(c *gin.Context) {
	userID := c.GetInt("user_id")

	result, err := h.gmailService.Sync(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Gmail sync failed", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync emails"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":     "Emails synced successfully",
		"syncedCount": result.SyncedCount,
		"emails":      result.Emails,
	})
}

// Status handles GET /auth/gmail/status
func (h *GmailHandler) Status(c *gin.Context) {
	userID := c.GetInt("user_id")

	status, err := h.gmailService.Status(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("Gmail status check failed", zap.Int("user_id", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check Gmail status"})
		return
	}

	c.JSON(http.StatusOK, status)
}

const popupTemplate = `<html>
  <head>
    <title>%s</title>
    <style>
      body { font-family: Arial, sans-serif; text-align: center; padding: 50px; }
    </style>
  </head>
  <body>
    <h2>%s</h2>
    <p>%s</p>
    <p>This window will close automatically.</p>
    <script>
      setTimeout(() => window.close(), 3000);
    </script>
  </body>
</html>`

func (h *GmailHandler) renderPopup(c *gin.Context, status int, title, message string) {
	page := fmt.Sprintf(popupTemplate, title, title, message)
	c.Data(status, "text/html; charset=utf-8", []byte(page))
}
