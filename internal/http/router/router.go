package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"basegraph.app/autofix/internal/http/handler"
	"basegraph.app/autofix/internal/http/handler/webhook"
)

type RouterConfig struct {
	// BasePath prefixes the webhook and status routes, e.g. "/api".
	BasePath string
}

type Handlers struct {
	Webhook *webhook.GitHubWebhookHandler
	Status  *handler.StatusHandler
}

func SetupRoutes(router *gin.Engine, handlers Handlers, cfg RouterConfig) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	base := router.Group(normalizeBasePath(cfg.BasePath))
	WebhookRouter(base, handlers.Webhook)
	if handlers.Status != nil {
		base.GET("/status", handlers.Status.Get)
	}

	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}
	router.NoRoute(notFound)
	router.NoMethod(notFound)
}

func normalizeBasePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
