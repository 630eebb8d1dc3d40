package report

import (
	"context"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
)

// 歷史查詢區間
const (
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// WeeklyWindow 週報涵蓋的時間
const WeeklyWindow = 7 * 24 * time.Hour

// HistoryLister 讀取歷史紀錄
type HistoryLister interface {
	ListHistory(ctx context.Context, userID uint, since time.Time) ([]model.RecipeHistory, error)
}

// Service 歷史與報表服務
type Service struct {
	history HistoryLister
	now     func() time.Time
}

// NewService 創建報表服務
func NewService(history HistoryLister) *Service {
	return &Service{history: history, now: time.Now}
}

// History 列出歷史紀錄，period 為空時不限時間
func (s *Service) History(ctx context.Context, userID uint, period string) ([]model.RecipeHistory, error) {
	since, err := s.since(period)
	if err != nil {
		return nil, err
	}
	return s.history.ListHistory(ctx, userID, since)
}

// Weekly 最近七天的飲食摘要
func (s *Service) Weekly(ctx context.Context, userID uint) (WeeklyReport, error) {
	entries, err := s.history.ListHistory(ctx, userID, s.now().Add(-WeeklyWindow))
	if err != nil {
		return WeeklyReport{}, err
	}
	return Aggregate(entries, DefaultTopK), nil
}

func (s *Service) since(period string) (time.Time, error) {
	switch period {
	case "":
		return time.Time{}, nil
	case PeriodWeek:
		return s.now().Add(-7 * 24 * time.Hour), nil
	case PeriodMonth:
		return s.now().Add(-30 * 24 * time.Hour), nil
	default:
		return time.Time{}, common.NewValidationError("period must be one of: week, month")
	}
}
