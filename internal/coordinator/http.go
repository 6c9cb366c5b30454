package coordinator

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/middleware"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// Handler exposes the Cycle Coordinator's public contract over HTTP.
type Handler struct {
	coordinator *Coordinator
	logger      *zap.Logger
}

func NewHandler(coordinator *Coordinator, logger *zap.Logger) *Handler {
	return &Handler{coordinator: coordinator, logger: logger}
}

func (h *Handler) Register(router gin.IRouter) {
	router.POST("/start_trading_cycle", h.startCycle)
	router.POST("/cancel_cycle", h.cancelCycle)
	router.GET("/current_cycle", h.currentCycle)
	router.GET("/service_health", h.serviceHealth)
	router.POST("/workflow_config", h.updateConfig)
	router.GET("/health", h.health)
}

func respondErr(c *gin.Context, logger *zap.Logger, err error) {
	if ae, ok := apperr.As(err); ok {
		logger.Warn("request failed", zap.String("kind", string(ae.Kind)), zap.Error(err))
		c.JSON(ae.HTTPStatus(), gin.H{"status": "error", "code": ae.Kind, "message": ae.Message})
		return
	}
	logger.Error("request failed", zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"status": "error", "code": "internal", "message": err.Error()})
}

type startCycleRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (h *Handler) startCycle(c *gin.Context) {
	var req startCycleRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	cycleID, err := h.coordinator.StartCycle(c.Request.Context(), model.Mode(req.Mode))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": gin.H{"cycle_id": cycleID}})
}

func (h *Handler) cancelCycle(c *gin.Context) {
	if err := h.coordinator.Cancel(c.Request.Context()); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) currentCycle(c *gin.Context) {
	view := h.coordinator.GetCurrentCycle()
	if view == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "data": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": view})
}

func (h *Handler) serviceHealth(c *gin.Context) {
	health := h.coordinator.ServiceHealth(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": health})
}

type updateConfigRequest struct {
	Key        string `json:"key" binding:"required"`
	Value      string `json:"value" binding:"required"`
	ModifiedBy string `json:"modified_by"`
}

func (h *Handler) updateConfig(c *gin.Context) {
	var req updateConfigRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	if err := h.coordinator.UpdateConfig(c.Request.Context(), req.Key, req.Value, req.ModifiedBy); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "cycle-coordinator"})
}
