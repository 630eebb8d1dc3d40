package repository

import (
	"context"
	"errors"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyRepository 每日推薦資料存取
type DailyRepository struct {
	db *gorm.DB
}

// NewDailyRepository 建立每日推薦資料存取
func NewDailyRepository(db *gorm.DB) *DailyRepository {
	return &DailyRepository{db: db}
}

// GetDaily 取得 (user, day) 的推薦，不存在時回傳 nil, nil
func (r *DailyRepository) GetDaily(ctx context.Context, userID uint, day string) (*model.DailySuggestion, error) {
	var s model.DailySuggestion
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND day = ?", userID, day).
		First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// SetDaily 僅在 (user, day) 尚無推薦時寫入；回傳實際生效的那一筆，
// created 表示這次寫入是否勝出
func (r *DailyRepository) SetDaily(ctx context.Context, s *model.DailySuggestion) (*model.DailySuggestion, bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "day"}},
			DoNothing: true,
		}).
		Create(s)
	if res.Error != nil {
		return nil, false, res.Error
	}

	winner, err := r.GetDaily(ctx, s.UserID, s.Day)
	if err != nil {
		return nil, false, err
	}
	if winner == nil {
		return nil, false, errors.New("daily suggestion vanished after insert")
	}
	return winner, res.RowsAffected == 1, nil
}
