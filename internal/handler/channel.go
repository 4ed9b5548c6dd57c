package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"tradewatch/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type addChannelRequest struct {
	Name     string `json:"name"`
	Username string `json:"username" binding:"required"`
}

// ListChannels godoc
// @Summary      List registered channels
// @Tags         channels
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      500  {object}  map[string]string
// @Router       /api/channels [get]
func (h *Handler) ListChannels(c *gin.Context) {
	if h.channelService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "channel service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-channels")
	defer span.End()

	channels, err := h.channelService.List(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"channels": channels})
}

// AddChannel godoc
// @Summary      Register a channel for monitoring
// @Description  Adds the channel in the stopped state; start it explicitly afterwards
// @Tags         channels
// @Accept       json
// @Produce      json
// @Param        channel  body  addChannelRequest  true  "Channel to register"
// @Success      201  {object}  domain.Channel
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/channels [post]
func (h *Handler) AddChannel(c *gin.Context) {
	if h.channelService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "channel service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.add-channel")
	defer span.End()

	var req addChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	span.SetAttributes(attribute.String("channel.username", req.Username))

	ch, err := h.channelService.Register(ctx, strings.TrimSpace(req.Name), req.Username)
	if err != nil {
		if errors.Is(err, service.ErrChannelExists) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, ch)
}

// RemoveChannel godoc
// @Summary      Remove a channel
// @Description  Stops any running monitor and deletes the channel with its signals
// @Tags         channels
// @Produce      json
// @Param        id  path  int  true  "Channel ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/channels/{id} [delete]
func (h *Handler) RemoveChannel(c *gin.Context) {
	if h.channelService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "channel service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.remove-channel")
	defer span.End()

	id, ok := channelID(c)
	if !ok {
		return
	}

	if err := h.channelService.Remove(ctx, id); err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

// StartChannel godoc
// @Summary      Start monitoring a channel
// @Tags         channels
// @Produce      json
// @Param        id  path  int  true  "Channel ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/channels/{id}/start [post]
func (h *Handler) StartChannel(c *gin.Context) {
	if h.channelService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "channel service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.start-channel")
	defer span.End()

	id, ok := channelID(c)
	if !ok {
		return
	}

	if err := h.channelService.Start(ctx, id); err != nil {
		switch {
		case errors.Is(err, service.ErrChannelNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrChannelRunning):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "started"})
}

// StopChannel godoc
// @Summary      Stop monitoring a channel
// @Description  Stopping a channel that is not running is a no-op
// @Tags         channels
// @Produce      json
// @Param        id  path  int  true  "Channel ID"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/channels/{id}/stop [post]
func (h *Handler) StopChannel(c *gin.Context) {
	if h.channelService == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "channel service unavailable"})
		return
	}

	ctx, span := h.tracer.Start(c.Request.Context(), "handler.stop-channel")
	defer span.End()

	id, ok := channelID(c)
	if !ok {
		return
	}

	if err := h.channelService.Stop(ctx, id); err != nil {
		if errors.Is(err, service.ErrChannelNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "stopped"})
}

func channelID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimSpace(c.Param("id")), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
