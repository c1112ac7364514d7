package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/channel"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/models"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/service"
	"github.com/DavidGrupoDeCell/bot-whatsapp-impressao/internal/util"
)

// Handler contains HTTP handlers
type Handler struct {
	orchestrator  *service.OrderOrchestrator
	reconciler    *service.WebhookReconciler
	webhookSecret string
}

// NewHandler creates a new HTTP handler. webhookSecret may be empty, in
// which case the payment webhook accepts unauthenticated calls.
func NewHandler(orch *service.OrderOrchestrator, rec *service.WebhookReconciler, webhookSecret string) *Handler {
	return &Handler{
		orchestrator:  orch,
		reconciler:    rec,
		webhookSecret: webhookSecret,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/whatsapp", h.inboundMessage)
	router.POST("/pix-webhook", h.paymentWebhook)
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// inboundMessage handles one customer message delivered by the channel
// provider as a form post. The reply goes back in the HTTP response as
// TwiML, so the provider relays it without a second API call.
func (h *Handler) inboundMessage(c *gin.Context) {
	numMedia, _ := strconv.Atoi(c.PostForm("NumMedia"))

	msg := models.InboundMessage{
		SenderContact:   channel.StripAddressPrefix(c.PostForm("From")),
		RawBody:         c.PostForm("Body"),
		AttachmentCount: numMedia,
		AttachmentURL:   c.PostForm("MediaUrl0"),
	}

	reply := h.orchestrator.HandleMessage(c.Request.Context(), msg)

	c.Data(http.StatusOK, "application/xml", channel.RenderReply(reply))
}

// paymentWebhookBody is the gateway's push notification payload. The id is
// a json.Number because the gateway sends it both quoted and bare.
type paymentWebhookBody struct {
	Type string `json:"type"`
	Data struct {
		ID json.Number `json:"id"`
	} `json:"data"`
}

// paymentWebhook handles asynchronous payment notifications. It always
// acknowledges with 200 so the gateway does not retry storms over payloads
// we already decided to ignore; the secret check is the one exception.
func (h *Handler) paymentWebhook(c *gin.Context) {
	if h.webhookSecret != "" && c.Query("secret") != h.webhookSecret {
		c.String(http.StatusUnauthorized, "unauthorized")
		return
	}

	var body paymentWebhookBody
	if err := c.ShouldBindJSON(&body); err != nil {
		util.GetLogger().Warn("Unparseable webhook payload", zap.Error(err))
		util.WebhookEventsTotal.WithLabelValues("malformed").Inc()
		c.String(http.StatusOK, "OK")
		return
	}

	h.reconciler.HandleEvent(c.Request.Context(), models.PaymentEvent{
		Type:       body.Type,
		GatewayRef: body.Data.ID.String(),
	})

	c.String(http.StatusOK, "OK")
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
