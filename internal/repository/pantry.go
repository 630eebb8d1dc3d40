package repository

import (
	"context"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"

	"gorm.io/gorm"
)

// PantryRepository 食材庫存資料存取，所有查詢都限定擁有者
type PantryRepository struct {
	db *gorm.DB
}

// NewPantryRepository 建立食材庫存資料存取
func NewPantryRepository(db *gorm.DB) *PantryRepository {
	return &PantryRepository{db: db}
}

// ListPantry 列出使用者所有食材，依建立順序
func (r *PantryRepository) ListPantry(ctx context.Context, userID uint) ([]model.PantryItem, error) {
	var items []model.PantryItem
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// Create 新增食材
func (r *PantryRepository) Create(ctx context.Context, item *model.PantryItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Get 取得使用者的單筆食材
func (r *PantryRepository) Get(ctx context.Context, userID, itemID uint) (*model.PantryItem, error) {
	var item model.PantryItem
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		First(&item).Error
	if err != nil {
		return nil, translate(err)
	}
	return &item, nil
}

// Update 儲存食材變更
func (r *PantryRepository) Update(ctx context.Context, item *model.PantryItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete 刪除使用者的食材
func (r *PantryRepository) Delete(ctx context.Context, userID, itemID uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&model.PantryItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return translate(gorm.ErrRecordNotFound)
	}
	return nil
}
