package model

import (
	"time"

	"gorm.io/datatypes"
)

// User 使用者與健康資料
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	HeightCm     *float64  `json:"height_cm"`
	WeightKg     *float64  `json:"weight_kg"`
	Age          *int      `json:"age"`
	DietType     string    `json:"diet_type"`
	Allergies    string    `json:"allergies"` // 逗號分隔
	Goal         string    `json:"goal"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"-"`
}

// PantryItem 食材庫存，只屬於單一使用者
type PantryItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"index;not null" json:"user_id"`
	Name      string    `gorm:"not null" json:"name"`
	Quantity  float64   `gorm:"not null" json:"quantity"`
	Unit      string    `gorm:"not null" json:"unit"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"-"`
}

// RecipeHistory 已儲存（已烹煮）的食譜快照，建立後不再修改
type RecipeHistory struct {
	ID         uint           `gorm:"primaryKey" json:"id"`
	UserID     uint           `gorm:"index:idx_history_user_created,priority:1;not null" json:"-"`
	RecipeName string         `gorm:"not null" json:"recipe_name"`
	RecipeJSON datatypes.JSON `gorm:"not null" json:"recipe_json"`
	Calories   *float64       `json:"calories"`
	CreatedAt  time.Time      `gorm:"index:idx_history_user_created,priority:2" json:"created_at"`
}

// DailySuggestion 每位使用者每個日曆日唯一的推薦食譜
type DailySuggestion struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"uniqueIndex:idx_daily_user_day,priority:1;not null" json:"-"`
	Day         string         `gorm:"uniqueIndex:idx_daily_user_day,priority:2;size:10;not null" json:"day"` // YYYY-MM-DD
	RecipeName  string         `gorm:"not null" json:"recipe_name"`
	RecipeJSON  datatypes.JSON `gorm:"not null" json:"recipe_json"`
	ImageURL    string         `json:"image_url"`
	SuggestedAt time.Time      `json:"suggested_at"`
}

// All 需要自動遷移的模型
func All() []interface{} {
	return []interface{}{
		&User{},
		&PantryItem{},
		&RecipeHistory{},
		&DailySuggestion{},
	}
}
