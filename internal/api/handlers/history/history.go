package history

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/api/handlers"
	"github.com/baldhadhaval08/pantry-wizard/internal/api/middleware"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/report"
	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-gonic/gin"
)

// Service 歷史與報表服務
type Service interface {
	History(ctx context.Context, userID uint, period string) ([]model.RecipeHistory, error)
	Weekly(ctx context.Context, userID uint) (report.WeeklyReport, error)
}

// Entry 歷史紀錄響應
type Entry struct {
	ID         uint            `json:"id"`
	RecipeName string          `json:"recipe_name"`
	RecipeJSON json.RawMessage `json:"recipe_json"`
	Calories   *float64        `json:"calories"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Handler 歷史紀錄處理器
type Handler struct {
	svc Service
}

// NewHandler 創建歷史紀錄處理器
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// List GET /api/history?period=week|month
func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	entries, err := h.svc.History(c.Request.Context(), userID, c.Query("period"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		raw := json.RawMessage(e.RecipeJSON)
		if !json.Valid(raw) {
			raw = json.RawMessage(`{}`)
		}
		out = append(out, Entry{
			ID:         e.ID,
			RecipeName: e.RecipeName,
			RecipeJSON: raw,
			Calories:   e.Calories,
			CreatedAt:  e.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, out)
}

// Weekly GET /api/history/reports/weekly
func (h *Handler) Weekly(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	weekly, err := h.svc.Weekly(c.Request.Context(), userID)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, weekly)
}
