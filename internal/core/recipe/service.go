package recipe

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// dayLayout 每日推薦的日期格式
const dayLayout = "2006-01-02"

// Deps 食譜服務依賴
type Deps struct {
	Profiles     ProfileStore
	Pantry       PantryStore
	History      HistoryStore
	Daily        DailyStore
	Orchestrator *Orchestrator
	Images       ImageGenerator
	Locker       Locker
	Generation   config.GenerationConfig
	DailyConfig  config.DailyConfig
}

// Service 食譜服務
type Service struct {
	deps     Deps
	location *time.Location
	now      func() time.Time
}

// NewService 創建食譜服務
func NewService(deps Deps) *Service {
	if deps.Locker == nil {
		deps.Locker = NewMemoryLocker()
	}
	return &Service{
		deps:     deps,
		location: deps.DailyConfig.Location(),
		now:      time.Now,
	}
}

// Generate 依請求產生一份新食譜，不寫入任何紀錄
func (s *Service) Generate(ctx context.Context, userID uint, req GenerateRequest) (*GenerateResult, error) {
	outcome, err := s.generate(ctx, userID, req.UsePantry, req.ExtraIngredients, req.Preferences, req.AvoidRepeats)
	if err != nil {
		return nil, err
	}

	return &GenerateResult{
		Recipe:   outcome.Recipe,
		ImageURL: s.imageFor(ctx, outcome.Recipe),
	}, nil
}

// Daily 取得今天的推薦食譜；同一使用者同一天只會呼叫後端一次
func (s *Service) Daily(ctx context.Context, userID uint) (*DailyResult, error) {
	day := s.now().In(s.location).Format(dayLayout)

	existing, err := s.deps.Daily.GetDaily(ctx, userID, day)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		common.LogCacheHit("daily")
		return dailyResult(existing)
	}

	key := fmt.Sprintf("daily:%d:%s", userID, day)
	unlock, err := s.deps.Locker.Lock(ctx, key, s.deps.DailyConfig.LockTTL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		// 鎖服務失效時仍由唯一索引保證只有一筆勝出
		common.LogWarn("Daily lock unavailable", zap.String("key", key), zap.Error(err))
	} else {
		defer unlock()
	}

	// 取得鎖後再檢查一次
	if existing, err = s.deps.Daily.GetDaily(ctx, userID, day); err != nil {
		return nil, err
	} else if existing != nil {
		common.LogCacheHit("daily")
		return dailyResult(existing)
	}
	common.LogCacheMiss("daily")

	outcome, err := s.generate(ctx, userID, true, nil, Preferences{}, true)
	if err != nil {
		return nil, err
	}

	recipeJSON, err := json.Marshal(outcome.Recipe)
	if err != nil {
		return nil, err
	}

	suggestion := &model.DailySuggestion{
		UserID:      userID,
		Day:         day,
		RecipeName:  outcome.Recipe.Name,
		RecipeJSON:  datatypes.JSON(recipeJSON),
		SuggestedAt: s.now().UTC(),
	}
	if url := s.imageFor(ctx, outcome.Recipe); url != nil {
		suggestion.ImageURL = *url
	}

	winner, created, err := s.deps.Daily.SetDaily(ctx, suggestion)
	if err != nil {
		return nil, err
	}
	if !created {
		common.LogInfo("Daily suggestion already stored by another request",
			zap.Uint("user_id", userID),
			zap.String("day", day),
		)
	}
	return dailyResult(winner)
}

// Save 將食譜寫入紀錄
// 熱量優先使用請求值，其次為食譜本身，最後依食材估算；0 視為未提供
func (s *Service) Save(ctx context.Context, userID uint, req SaveRequest) (*SavedRecipe, error) {
	if req.Recipe == nil || strings.TrimSpace(req.Recipe.Name) == "" {
		return nil, common.NewValidationError("recipe_json.name is required")
	}
	if req.Calories != nil && *req.Calories < 0 {
		return nil, common.NewValidationError("calories must not be negative")
	}

	calories := common.EstimateCalories(req.Recipe.Ingredients)
	switch {
	case req.Calories != nil && *req.Calories > 0:
		calories = *req.Calories
	case req.Recipe.Calories > 0:
		calories = req.Recipe.Calories
	}

	recipeJSON, err := json.Marshal(req.Recipe)
	if err != nil {
		return nil, err
	}

	entry := &model.RecipeHistory{
		UserID:     userID,
		RecipeName: strings.TrimSpace(req.Recipe.Name),
		RecipeJSON: datatypes.JSON(recipeJSON),
		Calories:   &calories,
	}
	if err := s.deps.History.SaveRecipe(ctx, entry); err != nil {
		return nil, err
	}

	return &SavedRecipe{
		ID:         entry.ID,
		RecipeName: entry.RecipeName,
		Calories:   calories,
		CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339),
	}, nil
}

func (s *Service) generate(ctx context.Context, userID uint, usePantry bool, extra []string, prefs Preferences, avoidRepeats bool) (*Outcome, error) {
	profile, err := s.deps.Profiles.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	var items []model.PantryItem
	if usePantry {
		if items, err = s.deps.Pantry.ListPantry(ctx, userID); err != nil {
			return nil, err
		}
	}

	lines := PantryLines(items, extra)
	if len(lines) == 0 {
		return nil, ErrPantryEmpty
	}

	recent, err := s.deps.History.ListRecentRecipeTitles(ctx, userID, s.deps.Generation.RecentWindow)
	if err != nil {
		return nil, err
	}

	return s.deps.Orchestrator.Run(ctx, PromptInput{
		Profile:      profile,
		Pantry:       lines,
		RecentTitles: recent,
		Preferences:  prefs,
	}, avoidRepeats)
}

func (s *Service) imageFor(ctx context.Context, r *Recipe) *string {
	if s.deps.Images == nil {
		return nil
	}
	url := s.deps.Images.DishImage(ctx, r.Name, r.Description)
	if url == "" {
		return nil
	}
	return &url
}

func dailyResult(sug *model.DailySuggestion) (*DailyResult, error) {
	var r Recipe
	if err := json.Unmarshal(sug.RecipeJSON, &r); err != nil {
		return nil, fmt.Errorf("corrupt daily suggestion %d: %w", sug.ID, err)
	}

	result := &DailyResult{
		Recipe:      &r,
		SuggestedAt: sug.SuggestedAt.UTC().Format(time.RFC3339),
	}
	if sug.ImageURL != "" {
		url := sug.ImageURL
		result.ImageURL = &url
	}
	return result, nil
}
