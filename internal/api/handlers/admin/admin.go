package admin

import (
	"net/http"
	"strings"

	"meal-recommender/internal/infrastructure/storage"
	"meal-recommender/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler 資料種子處理程序。提供菜單目錄與使用者檔案的批次寫入，
// 推薦管線本身對儲存只讀。
type Handler struct {
	store *storage.Redis
}

// NewHandler 創建資料種子處理程序
func NewHandler(store *storage.Redis) *Handler {
	return &Handler{store: store}
}

// MenusRequest 菜單批次寫入請求
type MenusRequest struct {
	Menus []common.MenuItem `json:"menus" binding:"required"`
}

// ProfilesRequest 使用者檔案批次寫入請求
type ProfilesRequest struct {
	Profiles []common.UserProfile `json:"profiles" binding:"required"`
}

// HandleUpsertMenus 批次寫入菜單
func (h *Handler) HandleUpsertMenus(c *gin.Context) {
	var req MenusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrInvalidRequest.Code,
		})
		return
	}

	upserted := 0
	skipped := 0
	for _, m := range req.Menus {
		if strings.TrimSpace(m.ID) == "" || strings.TrimSpace(m.Name) == "" {
			skipped++
			continue
		}
		m.NormalizeLists()
		if err := h.store.UpsertMenu(c.Request.Context(), m); err != nil {
			common.LogError("菜單寫入失敗",
				zap.Error(err),
				zap.String("menu_id", m.ID),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": common.ErrInternalError.Message,
				"code":  common.ErrInternalError.Code,
			})
			return
		}
		upserted++
	}

	common.LogInfo("菜單批次寫入完成",
		zap.Int("upserted", upserted),
		zap.Int("skipped", skipped),
	)

	c.JSON(http.StatusOK, gin.H{
		"upserted": upserted,
		"skipped":  skipped,
	})
}

// HandleUpsertProfiles 批次寫入使用者檔案
func (h *Handler) HandleUpsertProfiles(c *gin.Context) {
	var req ProfilesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": common.ErrInvalidRequest.Message,
			"code":  common.ErrInvalidRequest.Code,
		})
		return
	}

	upserted := 0
	skipped := 0
	for _, p := range req.Profiles {
		if strings.TrimSpace(p.Email) == "" {
			skipped++
			continue
		}
		if err := h.store.UpsertProfile(c.Request.Context(), p); err != nil {
			common.LogError("檔案寫入失敗",
				zap.Error(err),
				zap.String("email", p.Email),
			)
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": common.ErrInternalError.Message,
				"code":  common.ErrInternalError.Code,
			})
			return
		}
		upserted++
	}

	common.LogInfo("檔案批次寫入完成",
		zap.Int("upserted", upserted),
		zap.Int("skipped", skipped),
	)

	c.JSON(http.StatusOK, gin.H{
		"upserted": upserted,
		"skipped":  skipped,
	})
}
