package router

import (
	"github.com/gin-gonic/gin"

	"basegraph.app/autofix/internal/http/handler/webhook"
)

func WebhookRouter(rg *gin.RouterGroup, h *webhook.GitHubWebhookHandler) {
	rg.POST("/github-webhook", h.HandleEvent)
}
