package recommend

import (
	"net/http"

	"meal-recommender/internal/core/recommend"
	"meal-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TodayRequest 今日餐點批次推薦請求
type TodayRequest struct {
	Email        string   `json:"email"`
	Exclude      []string `json:"exclude,omitempty"`      // 已看過的菜單 ID
	BatchSize    int      `json:"batchSize,omitempty"`    // 省略時用預設批量
	ResetOnEmpty bool     `json:"resetOnEmpty,omitempty"` // 候選耗盡時允許清空排除集合重跑
}

// TodayResponse 今日餐點批次推薦回應
type TodayResponse struct {
	AnalysisMessage string             `json:"analysisMessage"`
	Items           []common.MenuItem  `json:"items"`
	Scores          []common.MenuScore `json:"scores,omitempty"`
	Meta            common.Meta        `json:"meta"`
}

// Handler 推薦處理程序
type Handler struct {
	service *recommend.Service
}

// NewHandler 創建推薦處理程序
func NewHandler(service *recommend.Service) *Handler {
	return &Handler{service: service}
}

// HandleToday 執行一次今日餐點批次推薦
func (h *Handler) HandleToday(c *gin.Context) {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = common.GenerateUUID()
		c.Header("X-Request-ID", requestID)
	}

	var req TodayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("請求格式無效",
			zap.Error(err),
			zap.String("request_id", requestID),
		)
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrInvalidRequest.Code,
		})
		return
	}

	ctx := common.WithRequestID(c.Request.Context(), requestID)
	result, err := h.service.RecommendBatch(ctx, recommend.Request{
		Email:        req.Email,
		Exclude:      req.Exclude,
		BatchSize:    req.BatchSize,
		ResetOnEmpty: req.ResetOnEmpty,
	})
	if err != nil {
		ce, ok := common.AsCustomError(err)
		if !ok {
			ce = common.ErrInternalError
		}
		logFields := []zap.Field{
			zap.Error(err),
			zap.String("request_id", requestID),
			zap.String("code", ce.Code),
		}
		if ce.Status >= 500 {
			common.LogError("批次推薦失敗", logFields...)
		} else {
			common.LogWarn("批次推薦被拒", logFields...)
		}
		c.JSON(ce.Status, gin.H{
			"error": ce.Message,
			"code":  ce.Code,
		})
		return
	}

	common.LogInfo("批次推薦完成",
		zap.String("request_id", requestID),
		zap.Int("items", len(result.Items)),
		zap.Int("total_after_filter", result.Meta.TotalAfterFilter),
		zap.Bool("exclusion_reset", result.Meta.ExclusionReset),
	)

	c.JSON(http.StatusOK, TodayResponse{
		AnalysisMessage: result.AnalysisMessage,
		Items:           result.Items,
		Scores:          result.Scores,
		Meta:            result.Meta,
	})
}
