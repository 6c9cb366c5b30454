package scanner

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/middleware"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
)

// Handler exposes the Catalyst Scanner's public contract over HTTP.
type Handler struct {
	scanner *Scanner
	logger  *zap.Logger
}

func NewHandler(scanner *Scanner, logger *zap.Logger) *Handler {
	return &Handler{scanner: scanner, logger: logger}
}

func (h *Handler) Register(router gin.IRouter) {
	router.POST("/scan", h.scan)
	router.POST("/scan_symbols", h.scanSymbols)
	router.GET("/get_scan_results", h.getScanResults)
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

type scanRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (h *Handler) scan(c *gin.Context) {
	var req scanRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	result, err := h.scanner.Scan(c.Request.Context(), model.Mode(req.Mode))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": result})
}

type scanSymbolsRequest struct {
	Mode    string   `json:"mode" binding:"required"`
	Symbols []string `json:"symbols" binding:"required"`
}

func (h *Handler) scanSymbols(c *gin.Context) {
	var req scanSymbolsRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	result, err := h.scanner.ScanSymbols(c.Request.Context(), model.Mode(req.Mode), req.Symbols)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": result})
}

func (h *Handler) getScanResults(c *gin.Context) {
	scanID := c.Query("scan_id")
	if scanID == "" {
		respondErr(c, h.logger, apperr.NewValidation("scan_id is required"))
		return
	}
	result, err := h.scanner.GetScanResults(c.Request.Context(), scanID)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": result})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "catalyst-scanner"})
}
