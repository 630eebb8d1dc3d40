package recipe

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
)

const (
	// rootField 無法解析時回報的欄位
	rootField = "$"
	// maxTimeMinutes 烹調時間上限（一天）
	maxTimeMinutes = 24 * 60
)

// Validate 解析模型輸出並逐欄檢查
// 只接受數字字串轉數字，其餘型別不符一律回傳 SchemaViolationError
func Validate(raw string) (*Recipe, error) {
	var doc map[string]interface{}
	if err := common.ParseJSON(common.ExtractJSONObject(raw), &doc); err != nil {
		return nil, violation(rootField, "not a JSON object: %v", err)
	}
	if doc == nil {
		return nil, violation(rootField, "not a JSON object")
	}

	var (
		r   Recipe
		err error
	)

	if r.Name, err = requireString(doc, "name", true); err != nil {
		return nil, err
	}
	if r.Description, err = requireString(doc, "description", false); err != nil {
		return nil, err
	}
	if r.Ingredients, err = requireIngredients(doc); err != nil {
		return nil, err
	}
	if r.Steps, err = requireSteps(doc); err != nil {
		return nil, err
	}

	minutes, err := requireNumber(doc, "time_minutes", "time_minutes")
	if err != nil {
		return nil, err
	}
	if minutes != math.Trunc(minutes) {
		return nil, violation("time_minutes", "must be a whole number, got %v", minutes)
	}
	if minutes > maxTimeMinutes {
		return nil, violation("time_minutes", "must not exceed %d, got %v", maxTimeMinutes, minutes)
	}
	r.TimeMinutes = int(minutes)

	difficulty, err := requireString(doc, "difficulty", true)
	if err != nil {
		return nil, err
	}
	r.Difficulty = common.Difficulty(difficulty)
	if !r.Difficulty.Valid() {
		return nil, violation("difficulty", "must be one of %s, got %q", joinDifficulties(), difficulty)
	}

	if r.Calories, err = requireNumber(doc, "calories", "calories"); err != nil {
		return nil, err
	}
	if r.Macros, err = requireMacros(doc); err != nil {
		return nil, err
	}
	if r.HealthJustification, err = requireString(doc, "health_justification", false); err != nil {
		return nil, err
	}

	return &r, nil
}

func requireString(obj map[string]interface{}, key string, nonEmpty bool) (string, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return "", violation(key, "missing")
	}
	s, ok := v.(string)
	if !ok {
		return "", violation(key, "must be a string, got %T", v)
	}
	s = strings.TrimSpace(s)
	if nonEmpty && s == "" {
		return "", violation(key, "must not be empty")
	}
	return s, nil
}

// requireNumber 讀取非負數字；path 為回報用的完整欄位路徑
func requireNumber(obj map[string]interface{}, key, path string) (float64, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return 0, violation(path, "missing")
	}

	var (
		n   float64
		err error
	)
	switch t := v.(type) {
	case json.Number:
		n, err = t.Float64()
	case string:
		n, err = strconv.ParseFloat(strings.TrimSpace(t), 64)
	default:
		return 0, violation(path, "must be a number, got %T", v)
	}
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, violation(path, "must be a number, got %v", v)
	}
	if n < 0 {
		return 0, violation(path, "must not be negative, got %v", n)
	}
	return n, nil
}

func requireArray(obj map[string]interface{}, key string) ([]interface{}, error) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, violation(key, "missing")
	}
	arr, ok := v.([]interface{})
	if !ok {
		return nil, violation(key, "must be a list, got %T", v)
	}
	if len(arr) == 0 {
		return nil, violation(key, "must not be empty")
	}
	return arr, nil
}

func requireIngredients(doc map[string]interface{}) ([]common.RecipeIngredient, error) {
	arr, err := requireArray(doc, "ingredients")
	if err != nil {
		return nil, err
	}

	out := make([]common.RecipeIngredient, 0, len(arr))
	for i, item := range arr {
		path := fmt.Sprintf("ingredients[%d]", i)
		obj, ok := item.(map[string]interface{})
		if !ok {
			return nil, violation(path, "must be an object, got %T", item)
		}
		name, err := requireString(obj, "name", true)
		if err != nil {
			return nil, prefixed(path, err)
		}
		amount, err := requireString(obj, "amount", false)
		if err != nil {
			return nil, prefixed(path, err)
		}
		out = append(out, common.RecipeIngredient{Name: name, Amount: amount})
	}
	return out, nil
}

func requireSteps(doc map[string]interface{}) ([]string, error) {
	arr, err := requireArray(doc, "steps")
	if err != nil {
		return nil, err
	}

	out := make([]string, 0, len(arr))
	for i, item := range arr {
		step, ok := item.(string)
		if !ok {
			return nil, violation(fmt.Sprintf("steps[%d]", i), "must be a string, got %T", item)
		}
		if step = strings.TrimSpace(step); step == "" {
			return nil, violation(fmt.Sprintf("steps[%d]", i), "must not be empty")
		}
		out = append(out, step)
	}
	return out, nil
}

func requireMacros(doc map[string]interface{}) (common.Macros, error) {
	var m common.Macros

	v, ok := doc["macros"]
	if !ok || v == nil {
		return m, violation("macros", "missing")
	}
	obj, ok := v.(map[string]interface{})
	if !ok {
		return m, violation("macros", "must be an object, got %T", v)
	}

	var err error
	if m.ProteinG, err = requireNumber(obj, "protein_g", "macros.protein_g"); err != nil {
		return m, err
	}
	if m.CarbsG, err = requireNumber(obj, "carbs_g", "macros.carbs_g"); err != nil {
		return m, err
	}
	if m.FatG, err = requireNumber(obj, "fat_g", "macros.fat_g"); err != nil {
		return m, err
	}
	return m, nil
}

// prefixed 為巢狀欄位加上父路徑
func prefixed(parent string, err error) error {
	if sv, ok := err.(*SchemaViolationError); ok {
		return &SchemaViolationError{Field: parent + "." + sv.Field, Reason: sv.Reason}
	}
	return err
}
