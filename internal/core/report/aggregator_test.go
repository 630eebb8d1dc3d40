package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func entry(name string, calories float64, ingredients ...string) model.RecipeHistory {
	json := `{"name":"` + name + `","ingredients":[`
	for i, ing := range ingredients {
		if i > 0 {
			json += ","
		}
		json += `{"name":"` + ing + `","amount":"1"}`
	}
	json += `]}`
	return model.RecipeHistory{
		RecipeName: name,
		RecipeJSON: datatypes.JSON(json),
		Calories:   &calories,
	}
}

func TestAggregateVarietyScore(t *testing.T) {
	tests := []struct {
		name    string
		entries []model.RecipeHistory
		want    float64
	}{
		{
			name:    "all distinct",
			entries: []model.RecipeHistory{entry("A", 100), entry("B", 100), entry("C", 100)},
			want:    100,
		},
		{
			name:    "half repeated",
			entries: []model.RecipeHistory{entry("A", 100), entry("A", 100), entry("B", 100), entry("B", 100)},
			want:    50,
		},
		{
			name: "no entries",
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Aggregate(tt.entries, DefaultTopK)
			assert.Equal(t, tt.want, report.VarietyScore)
		})
	}
}

func TestAggregateEmpty(t *testing.T) {
	report := Aggregate(nil, DefaultTopK)

	assert.Zero(t, report.TotalCalories)
	assert.Zero(t, report.AvgCaloriesPerMeal)
	assert.Zero(t, report.MealsCount)
	assert.NotNil(t, report.TopIngredients)
	assert.Empty(t, report.TopIngredients)
}

func TestAggregateCaloriesRounded(t *testing.T) {
	entries := []model.RecipeHistory{
		entry("A", 100.04),
		entry("B", 200.03),
		entry("C", 0),
	}
	entries[2].Calories = nil

	report := Aggregate(entries, DefaultTopK)

	assert.Equal(t, 300.1, report.TotalCalories)
	assert.Equal(t, 100.0, report.AvgCaloriesPerMeal)
	assert.Equal(t, 3, report.MealsCount)
}

func TestAggregateTopIngredients(t *testing.T) {
	entries := []model.RecipeHistory{
		entry("A", 1, "Tomato", "onion", "rice"),
		entry("B", 1, "tomato", "Onion", "garlic"),
		entry("C", 1, "TOMATO", "basil", "pepper", "salt"),
		{RecipeName: "broken", RecipeJSON: datatypes.JSON(`not json`)},
	}

	report := Aggregate(entries, DefaultTopK)

	require.Len(t, report.TopIngredients, DefaultTopK)
	assert.Equal(t, IngredientCount{Name: "tomato", Count: 3}, report.TopIngredients[0])
	assert.Equal(t, IngredientCount{Name: "onion", Count: 2}, report.TopIngredients[1])
	// 同次數依首次出現順序
	assert.Equal(t, "rice", report.TopIngredients[2].Name)
	assert.Equal(t, "garlic", report.TopIngredients[3].Name)
	assert.Equal(t, "basil", report.TopIngredients[4].Name)
}

type fakeLister struct {
	since   time.Time
	entries []model.RecipeHistory
	err     error
}

func (f *fakeLister) ListHistory(ctx context.Context, userID uint, since time.Time) ([]model.RecipeHistory, error) {
	f.since = since
	return f.entries, f.err
}

func TestServiceHistoryPeriods(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{}
	svc := NewService(lister)
	svc.now = func() time.Time { return now }

	_, err := svc.History(context.Background(), 1, "")
	require.NoError(t, err)
	assert.True(t, lister.since.IsZero())

	_, err = svc.History(context.Background(), 1, PeriodWeek)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -7), lister.since)

	_, err = svc.History(context.Background(), 1, PeriodMonth)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, -30), lister.since)

	_, err = svc.History(context.Background(), 1, "year")
	assert.True(t, common.IsValidationError(err))
}

func TestServiceWeekly(t *testing.T) {
	now := time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{entries: []model.RecipeHistory{entry("A", 300, "rice"), entry("B", 500, "rice")}}
	svc := NewService(lister)
	svc.now = func() time.Time { return now }

	report, err := svc.Weekly(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, now.Add(-WeeklyWindow), lister.since)
	assert.Equal(t, 800.0, report.TotalCalories)
	assert.Equal(t, 400.0, report.AvgCaloriesPerMeal)
	assert.Equal(t, []IngredientCount{{Name: "rice", Count: 2}}, report.TopIngredients)

	lister.err = errors.New("db down")
	_, err = svc.Weekly(context.Background(), 1)
	assert.Error(t, err)
}
