package news

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/TradingApplication/catalyst-trading-system/internal/apperr"
	"github.com/TradingApplication/catalyst-trading-system/internal/middleware"
	"github.com/TradingApplication/catalyst-trading-system/internal/model"
	"github.com/TradingApplication/catalyst-trading-system/internal/store"
)

// Handler exposes the News Collector's public contract over HTTP.
type Handler struct {
	collector *Collector
	logger    *zap.Logger
}

func NewHandler(collector *Collector, logger *zap.Logger) *Handler {
	return &Handler{collector: collector, logger: logger}
}

// Register wires every route onto router.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/collect_news", h.collectNews)
	router.GET("/search_news", h.searchNews)
	router.GET("/trending_news", h.trendingNews)
	router.POST("/update_outcome", h.updateOutcome)
	router.GET("/source_analysis", h.sourceAnalysis)
	router.GET("/coordinated_narratives", h.coordinatedNarratives)
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

type collectNewsRequest struct {
	Mode string `json:"mode" binding:"required"`
}

func (h *Handler) collectNews(c *gin.Context) {
	var req collectNewsRequest
	if !middleware.BindJSON(c, &req) {
		return
	}

	report, err := h.collector.Collect(c.Request.Context(), model.Mode(req.Mode))
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": report})
}

func (h *Handler) searchNews(c *gin.Context) {
	filter := store.NewsFilter{
		Symbol:  c.Query("symbol"),
		MinTier: 0,
	}
	if v := c.Query("min_tier"); v != "" {
		if t, err := parseInt(v); err == nil {
			filter.MinTier = t
		}
	}
	if v := c.Query("since"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.Since = t
		}
	}
	if v := c.Query("until"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.Until = t
		}
	}
	if v := c.Query("limit"); v != "" {
		if n, err := parseInt(v); err == nil {
			filter.Limit = n
		}
	}

	items, err := h.collector.Search(c.Request.Context(), filter)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": items})
}

func (h *Handler) trendingNews(c *gin.Context) {
	lookback := 24 * time.Hour
	if v := c.Query("window_h"); v != "" {
		if n, err := parseInt(v); err == nil && n > 0 {
			lookback = time.Duration(n) * time.Hour
		}
	}
	clusters, err := h.collector.TrendingNews(c.Request.Context(), lookback)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": clusters})
}

func (h *Handler) updateOutcome(c *gin.Context) {
	var req model.OutcomeUpdate
	if !middleware.BindJSON(c, &req) {
		return
	}
	if err := h.collector.UpdateOutcome(c.Request.Context(), req); err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) sourceAnalysis(c *gin.Context) {
	metrics, err := h.collector.SourceMetrics(c.Request.Context())
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": gin.H{
		"metrics": metrics,
		"health":  h.collector.SourceHealthSnapshot(),
	}})
}

func (h *Handler) coordinatedNarratives(c *gin.Context) {
	clusters, err := h.collector.TrendingNews(c.Request.Context(), 24*time.Hour)
	if err != nil {
		respondErr(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "data": clusters})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "news-collector"})
}

func parseInt(s string) (int, error) {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, apperr.NewValidation("invalid integer: " + s)
		}
		n = n*10 + int(r-'0')
	}
	return n, nil
}
