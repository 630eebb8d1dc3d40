package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"gorm.io/gorm"
)

// UserRepository 使用者資料存取
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository 建立使用者資料存取
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create 建立使用者，email 重複時回傳 ErrEmailTaken
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return common.ErrEmailTaken
	}

	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return common.ErrEmailTaken.Wrap(err)
	}
	return err
}

// GetProfile 依 ID 取得使用者
func (r *UserRepository) GetProfile(ctx context.Context, userID uint) (*model.User, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// GetByEmail 依 email 取得使用者
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Update 更新使用者的健康資料
func (r *UserRepository) Update(ctx context.Context, user *model.User) error {
	return translate(r.db.WithContext(ctx).Save(user).Error)
}
