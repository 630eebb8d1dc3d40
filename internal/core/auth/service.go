package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"go.uber.org/zap"
)

// 健康目標
var goals = map[string]struct{}{
	"weight_loss":    {},
	"muscle_gain":    {},
	"maintain":       {},
	"general_health": {},
}

// UserStore 使用者資料存取
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetProfile(ctx context.Context, userID uint) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	Update(ctx context.Context, user *model.User) error
}

// ProfileFields 可由使用者修改的健康資料
type ProfileFields struct {
	HeightCm  *float64 `json:"height_cm"`
	WeightKg  *float64 `json:"weight_kg"`
	Age       *int     `json:"age"`
	DietType  *string  `json:"diet_type"`
	Allergies *string  `json:"allergies"`
	Goal      *string  `json:"goal"`
}

// RegisterRequest 註冊請求
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	ProfileFields
}

// LoginRequest 登入請求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest 更新個人資料請求
type UpdateProfileRequest struct {
	Name *string `json:"name"`
	ProfileFields
}

// Token 登入結果
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service 帳號服務
type Service struct {
	users  UserStore
	tokens *TokenIssuer
}

// NewService 創建帳號服務
func NewService(users UserStore, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

// Tokens token 簽發器，供中間件驗證
func (s *Service) Tokens() *TokenIssuer {
	return s.tokens
}

// Register 建立帳號並回傳 token
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*Token, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, common.NewValidationError("name is required")
	}

	user := &model.User{Name: name, Email: req.Email}
	if err := applyProfile(user, req.ProfileFields); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = hash

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	common.LogInfo("User registered", zap.Uint("user_id", user.ID))
	return s.issue(user)
}

// Login 驗證帳號密碼
func (s *Service) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	user, err := s.users.GetByEmail(ctx, req.Email)
	if errors.Is(err, common.ErrNotFound) {
		return nil, common.ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if !CheckPassword(user.PasswordHash, req.Password) {
		return nil, common.ErrBadCredentials
	}
	return s.issue(user)
}

// Profile 取得個人資料
func (s *Service) Profile(ctx context.Context, userID uint) (*model.User, error) {
	return s.users.GetProfile(ctx, userID)
}

// UpdateProfile 更新個人資料，只修改有提供的欄位
func (s *Service) UpdateProfile(ctx context.Context, userID uint, req UpdateProfileRequest) (*model.User, error) {
	user, err := s.users.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, common.NewValidationError("name must not be empty")
		}
		user.Name = name
	}
	if err := applyProfile(user, req.ProfileFields); err != nil {
		return nil, err
	}

	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Service) issue(user *model.User) (*Token, error) {
	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, err
	}
	return &Token{AccessToken: token, TokenType: "bearer"}, nil
}

func applyProfile(user *model.User, f ProfileFields) error {
	if f.HeightCm != nil {
		if *f.HeightCm < 0 {
			return common.NewValidationError("height_cm must not be negative")
		}
		user.HeightCm = f.HeightCm
	}
	if f.WeightKg != nil {
		if *f.WeightKg < 0 {
			return common.NewValidationError("weight_kg must not be negative")
		}
		user.WeightKg = f.WeightKg
	}
	if f.Age != nil {
		if *f.Age < 0 {
			return common.NewValidationError("age must not be negative")
		}
		user.Age = f.Age
	}
	if f.DietType != nil {
		user.DietType = strings.ToLower(strings.TrimSpace(*f.DietType))
	}
	if f.Allergies != nil {
		user.Allergies = strings.TrimSpace(*f.Allergies)
	}
	if f.Goal != nil {
		goal := strings.ToLower(strings.TrimSpace(*f.Goal))
		if _, ok := goals[goal]; goal != "" && !ok {
			return common.NewValidationError("goal must be one of: weight_loss, muscle_gain, maintain, general_health")
		}
		user.Goal = goal
	}
	return nil
}
