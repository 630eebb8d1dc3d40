package recipe

import (
	"context"
	"net/http"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/api/handlers"
	"github.com/baldhadhaval08/pantry-wizard/internal/api/middleware"
	recipeService "github.com/baldhadhaval08/pantry-wizard/internal/core/recipe"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Service 食譜服務
type Service interface {
	Generate(ctx context.Context, userID uint, req recipeService.GenerateRequest) (*recipeService.GenerateResult, error)
	Daily(ctx context.Context, userID uint) (*recipeService.DailyResult, error)
	Save(ctx context.Context, userID uint, req recipeService.SaveRequest) (*recipeService.SavedRecipe, error)
}

// GenerateBody 生成請求，未提供的布林值預設為 true
type GenerateBody struct {
	UsePantry        *bool                     `json:"use_pantry"`
	ExtraIngredients []string                  `json:"extra_ingredients"`
	Preferences      recipeService.Preferences `json:"preferences"`
	AvoidRepeats     *bool                     `json:"avoid_repeats"`
}

func (b GenerateBody) toRequest() recipeService.GenerateRequest {
	return recipeService.GenerateRequest{
		UsePantry:        b.UsePantry == nil || *b.UsePantry,
		ExtraIngredients: b.ExtraIngredients,
		Preferences:      b.Preferences,
		AvoidRepeats:     b.AvoidRepeats == nil || *b.AvoidRepeats,
	}
}

// Handler 食譜處理器
type Handler struct {
	svc Service
}

// NewHandler 創建食譜處理器
func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Generate POST /api/recipes/generate
func (h *Handler) Generate(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	var body GenerateBody
	// 允許空請求體
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			handlers.BindError(c, err)
			return
		}
	}

	start := time.Now()
	common.LogInfo("開始處理食譜生成請求",
		zap.Uint("user_id", userID),
		zap.String("request_id", requestid.Get(c)),
	)

	result, err := h.svc.Generate(c.Request.Context(), userID, body.toRequest())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("食譜生成成功",
		zap.String("recipe", result.Recipe.Name),
		zap.Duration("耗時", time.Since(start)),
		zap.String("request_id", requestid.Get(c)),
	)
	c.JSON(http.StatusOK, result)
}

// Daily GET /api/recipes/daily
func (h *Handler) Daily(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	result, err := h.svc.Daily(c.Request.Context(), userID)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Save POST /api/recipes/save
func (h *Handler) Save(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		common.WriteError(c, common.ErrUnauthorized)
		return
	}

	var req recipeService.SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BindError(c, err)
		return
	}

	saved, err := h.svc.Save(c.Request.Context(), userID, req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	common.LogInfo("食譜已儲存",
		zap.Uint("user_id", userID),
		zap.Uint("history_id", saved.ID),
	)
	c.JSON(http.StatusCreated, saved)
}
