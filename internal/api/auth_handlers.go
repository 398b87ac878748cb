package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mayu-0506/studytime-tracker-sub000/internal/auth"
)

type LoginRequest struct {
	Token    string            `json:"token"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// PostLogin exchanges an auth token for a session cookie. The cookie guard
// runs on the issue path, so oversized metadata never reaches the client.
func PostLogin(app App, provider auth.Provider) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
			c.AbortWithStatusJSON(400, gin.H{"error": "token required"})
			return
		}

		user, err := provider.ValidateToken(c.Request.Context(), req.Token)
		if err != nil {
			c.AbortWithStatusJSON(401, gin.H{"error": "Unauthorized"})
			return
		}

		meta := make(map[string]string, len(user.Metadata)+len(req.Metadata))
		for k, v := range user.Metadata {
			meta[k] = v
		}
		for k, v := range req.Metadata {
			meta[k] = v
		}

		payload := &auth.SessionPayload{
			UserID:   user.ID,
			Token:    user.Token,
			Name:     user.Name,
			IssuedAt: time.Now(),
			Metadata: meta,
		}
		if err := auth.SetSessionCookie(c, payload, app.Logger()); err != nil {
			HandleError(c, app.Logger(), err, 500, "Failed to issue session")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"user_id": user.ID, "name": user.Name}, nil)
	}
}

// GetRecovery is the dedicated recovery page for sessions the size guard has
// rejected. It describes the two clean-up actions.
func GetRecovery(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Your session data grew too large and was rejected. Choose a cleanup action and sign in again.",
			"actions": gin.H{
				"clear_auth": "POST /auth/recovery/clear-auth",
				"clear_all":  "POST /auth/recovery/clear-all",
			},
		})
	}
}

// PostRecoveryClearAuth clears only the auth-prefixed cookies.
func PostRecoveryClearAuth(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth.ClearAuthCookies(c)
		app.Logger().Infof("recovery: cleared auth cookies")
		c.JSON(200, gin.H{"cleared": "auth"})
	}
}

// PostRecoveryClearAll clears every cookie on the request.
func PostRecoveryClearAll(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, cookie := range c.Request.Cookies() {
			c.SetCookie(cookie.Name, "", -1, "/", "", false, true)
		}
		app.Logger().Infof("recovery: cleared all cookies")
		c.JSON(200, gin.H{"cleared": "all"})
	}
}
