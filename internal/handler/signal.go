package handler

import (
	"net/http"
	"strconv"
	"strings"

	"tradewatch/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetSignals godoc
// @Summary      Get captured trading signals
// @Description  Returns signals newest first, optionally filtered by channel
// @Tags         signals
// @Produce      json
// @Param        channel_id  query  int  false  "Restrict to one channel"
// @Param        limit       query  int  false  "Number of signals (default 50, max 200)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/signals [get]
func (h *Handler) GetSignals(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-signals")
	defer span.End()

	var filter domain.SignalFilter

	if rawChannel := strings.TrimSpace(c.Query("channel_id")); rawChannel != "" {
		id, err := strconv.ParseInt(rawChannel, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "channel_id must be a positive integer"})
			return
		}
		filter.ChannelID = id
		span.SetAttributes(attribute.Int64("channel.id", id))
	}

	limit := 50
	if rawLimit := strings.TrimSpace(c.Query("limit")); rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n <= 0 || n > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
			return
		}
		limit = n
	}
	filter.Limit = limit

	signals, err := h.signalService.List(ctx, filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals})
}

// GetRecentSignals godoc
// @Summary      Get today's signals
// @Description  Returns up to 20 signals captured since UTC midnight, newest first
// @Tags         signals
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/signals/recent [get]
func (h *Handler) GetRecentSignals(c *gin.Context) {
	if h.signalService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "signal service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-recent-signals")
	defer span.End()

	signals, err := h.signalService.Recent(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"signals": signals})
}
