package repository

import (
	"context"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"

	"gorm.io/gorm"
)

// HistoryRepository 食譜歷史資料存取
type HistoryRepository struct {
	db *gorm.DB
}

// NewHistoryRepository 建立食譜歷史資料存取
func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// SaveRecipe 新增一筆歷史紀錄
func (r *HistoryRepository) SaveRecipe(ctx context.Context, entry *model.RecipeHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// ListHistory 列出 since 之後的紀錄，新到舊；since 為零值時不限時間
func (r *HistoryRepository) ListHistory(ctx context.Context, userID uint, since time.Time) ([]model.RecipeHistory, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !since.IsZero() {
		q = q.Where("created_at >= ?", since)
	}

	var entries []model.RecipeHistory
	err := q.Order("created_at DESC").Order("id DESC").Find(&entries).Error
	return entries, err
}

// ListRecentRecipeTitles 最近 n 筆食譜名稱，新到舊
func (r *HistoryRepository) ListRecentRecipeTitles(ctx context.Context, userID uint, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&model.RecipeHistory{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(n).
		Pluck("recipe_name", &titles).Error
	return titles, err
}
