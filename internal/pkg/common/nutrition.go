package common

import (
	"math"
	"strings"
)

// calorieTable 常見食材熱量（每 100g 或每單位的粗估值）
// 以切片保存以確保比對順序固定
var calorieTable = []struct {
	Key      string
	Calories float64
}{
	{"chicken", 165},
	{"beef", 250},
	{"pork", 242},
	{"fish", 206},
	{"rice", 130},
	{"pasta", 131},
	{"potato", 77},
	{"onion", 40},
	{"tomato", 18},
	{"carrot", 41},
	{"broccoli", 34},
	{"spinach", 23},
	{"egg", 70},
	{"cheese", 113},
	{"milk", 42},
	{"oil", 884},
	{"butter", 717},
}

// defaultIngredientCalories 沒有任何食材命中時每項的估計值
const defaultIngredientCalories = 50

// CaloriesFor 回傳食材名稱命中的熱量，找不到時 ok 為 false
func CaloriesFor(name string) (float64, bool) {
	name = strings.ToLower(name)
	for _, entry := range calorieTable {
		if strings.Contains(name, entry.Key) {
			return entry.Calories, true
		}
	}
	return 0, false
}

// EstimateCalories 依食材名稱粗估整道菜的熱量
// 每個命中的食材以半份計算；全部未命中時每項以 50 kcal 計
func EstimateCalories(ingredients []RecipeIngredient) float64 {
	total := 0.0
	for _, ing := range ingredients {
		if cal, ok := CaloriesFor(ing.Name); ok {
			total += cal * 0.5
		}
	}
	if total == 0 {
		total = float64(len(ingredients) * defaultIngredientCalories)
	}
	return math.Round(total)
}
