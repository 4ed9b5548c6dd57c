package handler

import (
	"net/http"

	"tradewatch/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

type Handler struct {
	tracer         trace.Tracer
	channelService *service.ChannelService
	signalService  *service.SignalService
}

func New(
	tracer trace.Tracer,
	channelService *service.ChannelService,
	signalService *service.SignalService,
) *Handler {
	return &Handler{
		tracer:         tracer,
		channelService: channelService,
		signalService:  signalService,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/api/stats", h.GetStats)
	r.GET("/api/channels", h.ListChannels)
	r.POST("/api/channels", h.AddChannel)
	r.DELETE("/api/channels/:id", h.RemoveChannel)
	r.POST("/api/channels/:id/start", h.StartChannel)
	r.POST("/api/channels/:id/stop", h.StopChannel)
	r.GET("/api/signals", h.GetSignals)
	r.GET("/api/signals/recent", h.GetRecentSignals)
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetStats godoc
// @Summary      Get aggregate monitoring stats
// @Description  Channel and signal counts, including signals captured today (UTC)
// @Tags         system
// @Produce      json
// @Success      200  {object}  domain.Stats
// @Failure      500  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	if h.channelService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "channel service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-stats")
	defer span.End()

	stats, err := h.channelService.Stats(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
