package common

// Difficulty 食譜難度
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Difficulties 允許的難度值（順序固定，用於提示詞）
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// Valid 檢查難度是否在允許範圍內
func (d Difficulty) Valid() bool {
	for _, v := range Difficulties {
		if d == v {
			return true
		}
	}
	return false
}

// RecipeIngredient 食譜中的食材與用量
type RecipeIngredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Macros 三大營養素（公克）
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// Recipe 經過驗證的食譜
// 欄位名稱與模型輸出 JSON 完全一致
type Recipe struct {
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	Ingredients         []RecipeIngredient `json:"ingredients"`
	Steps               []string           `json:"steps"`
	TimeMinutes         int                `json:"time_minutes"`
	Difficulty          Difficulty         `json:"difficulty"`
	Calories            float64            `json:"calories"`
	Macros              Macros             `json:"macros"`
	HealthJustification string             `json:"health_justification"`
}

// RecipePreferences 食譜偏好
type RecipePreferences struct {
	Cuisine    string `json:"cuisine"`
	SpiceLevel string `json:"spice_level"`
}

// PantryLine 提示詞中的一筆食材
type PantryLine struct {
	Name     string  `json:"name"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
}

// 提示詞段落標記，提示詞產生器與行程內模型共用
const (
	PromptPantryHeader  = "Pantry ingredients available"
	PromptRecentHeader  = "Recent cooked recipes"
	PromptCuisinePrefix = "Preferred cuisine:"
	PromptSpicePrefix   = "Spice level:"
	PromptDietPrefix    = "- Diet:"
	PromptGoalPrefix    = "- Health goal:"
	PromptAllergyPrefix = "- Allergies:"
	PromptNoneMarker    = "None"
)
