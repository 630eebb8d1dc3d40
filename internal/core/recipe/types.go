package recipe

import (
	"context"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
)

// Recipe 通過驗證的食譜
type Recipe = common.Recipe

// Preferences 生成偏好
type Preferences = common.RecipePreferences

// ProfileStore 使用者資料
type ProfileStore interface {
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
}

// PantryStore 食材庫存
type PantryStore interface {
	ListPantry(ctx context.Context, userID uint) ([]model.PantryItem, error)
}

// HistoryStore 食譜紀錄
type HistoryStore interface {
	SaveRecipe(ctx context.Context, entry *model.RecipeHistory) error
	ListRecentRecipeTitles(ctx context.Context, userID uint, n int) ([]string, error)
}

// DailyStore 每日推薦
// SetDaily 遇到同一天已有紀錄時不覆寫，回傳既有紀錄且 created 為 false
type DailyStore interface {
	GetDaily(ctx context.Context, userID uint, day string) (*model.DailySuggestion, error)
	SetDaily(ctx context.Context, s *model.DailySuggestion) (winner *model.DailySuggestion, created bool, err error)
}

// ImageGenerator 菜餚圖片，失敗時回傳佔位圖
type ImageGenerator interface {
	DishImage(ctx context.Context, dish, hint string) string
}

// GenerateRequest 生成請求
type GenerateRequest struct {
	UsePantry        bool        `json:"use_pantry"`
	ExtraIngredients []string    `json:"extra_ingredients"`
	Preferences      Preferences `json:"preferences"`
	AvoidRepeats     bool        `json:"avoid_repeats"`
}

// GenerateResult 生成結果
type GenerateResult struct {
	Recipe   *Recipe `json:"recipe"`
	ImageURL *string `json:"image_url"`
}

// DailyResult 每日推薦結果
type DailyResult struct {
	Recipe      *Recipe `json:"recipe"`
	ImageURL    *string `json:"image_url"`
	SuggestedAt string  `json:"suggested_at"`
}

// SaveRequest 儲存食譜請求
type SaveRequest struct {
	Recipe   *Recipe  `json:"recipe_json" binding:"required"`
	Calories *float64 `json:"calories"`
}

// SavedRecipe 儲存結果
type SavedRecipe struct {
	ID         uint    `json:"id"`
	RecipeName string  `json:"recipe_name"`
	Calories   float64 `json:"calories"`
	CreatedAt  string  `json:"created_at"`
}
