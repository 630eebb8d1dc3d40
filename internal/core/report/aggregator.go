package report

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
)

// DefaultTopK 報表列出的常用食材數量
const DefaultTopK = 5

// IngredientCount 食材出現次數
type IngredientCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// WeeklyReport 區間內的飲食摘要
type WeeklyReport struct {
	TotalCalories      float64           `json:"total_calories"`
	VarietyScore       float64           `json:"variety_score"`
	MealsCount         int               `json:"meals_count"`
	AvgCaloriesPerMeal float64           `json:"avg_calories_per_meal"`
	TopIngredients     []IngredientCount `json:"top_ingredients"`
}

// Aggregate 彙整歷史紀錄，不做任何 I/O
func Aggregate(entries []model.RecipeHistory, topK int) WeeklyReport {
	report := WeeklyReport{
		MealsCount:     len(entries),
		TopIngredients: []IngredientCount{},
	}
	if len(entries) == 0 {
		return report
	}

	var total float64
	names := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.Calories != nil {
			total += *e.Calories
		}
		names[e.RecipeName] = struct{}{}
	}

	report.TotalCalories = common.Round1(total)
	report.AvgCaloriesPerMeal = common.Round1(total / float64(len(entries)))
	report.VarietyScore = common.Round1(clamp(float64(len(names))/float64(len(entries))*100, 0, 100))
	report.TopIngredients = topIngredients(entries, topK)
	return report
}

// topIngredients 依次數由多到少，同次數保留首次出現順序
func topIngredients(entries []model.RecipeHistory, topK int) []IngredientCount {
	counts := make(map[string]int)
	var order []string

	for _, e := range entries {
		var snapshot struct {
			Ingredients []struct {
				Name string `json:"name"`
			} `json:"ingredients"`
		}
		// 損毀的快照略過
		if err := json.Unmarshal(e.RecipeJSON, &snapshot); err != nil {
			continue
		}
		for _, ing := range snapshot.Ingredients {
			name := strings.ToLower(strings.TrimSpace(ing.Name))
			if name == "" {
				continue
			}
			if _, seen := counts[name]; !seen {
				order = append(order, name)
			}
			counts[name]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if topK > 0 && len(order) > topK {
		order = order[:topK]
	}

	out := make([]IngredientCount, 0, len(order))
	for _, name := range order {
		out = append(out, IngredientCount{Name: name, Count: counts[name]})
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
