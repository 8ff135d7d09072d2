package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/invoicely/apperr"
	"github.com/yourusername/invoicely/middleware"
	"github.com/yourusername/invoicely/services"
)

const genericErrorMessage = "Something went wrong, please try again later"

func respondSuccess(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{"success": true, "data": data})
}

func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": data})
}

// respondError renders an apperr kind as the error envelope. Server
// faults are logged with their cause and surfaced with a generic
// message only.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	e := apperr.From(err)

	message := e.Message
	if !e.Operational() {
		log.Error("request failed",
			zap.String("path", c.Request.URL.Path),
			zap.String("type", e.Type()),
			zap.Error(e))
		message = genericErrorMessage
	}

	body := gin.H{
		"success": false,
		"type":    e.Type(),
		"message": message,
	}
	if len(e.Fields) > 0 {
		body["errors"] = e.Fields
	}
	c.JSON(e.HTTPStatus(), body)
}

// bindPayload decodes the JSON body into a map. An absent or malformed
// body yields an empty map and lets schema validation report what is
// missing.
func bindPayload(c *gin.Context) map[string]any {
	payload := map[string]any{}
	if c.Request.Body != nil {
		_ = c.ShouldBindJSON(&payload)
	}
	return payload
}

// attachCurrentUser copies the authenticated principal from the gin
// context into the payload for the service layer.
func attachCurrentUser(c *gin.Context, payload map[string]any) {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return
	}
	claims, ok := value.(*middleware.Claims)
	if !ok {
		return
	}
	payload["currentUser"] = services.CurrentUser{
		UserID: claims.UserID,
		Email:  claims.Email,
		Role:   claims.Role,
	}
}
