package recipe

import (
	"errors"
	"testing"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateAcceptsWellFormedRecipe(t *testing.T) {
	r, err := Validate(toJSON(t, validRecipe()))
	require.NoError(t, err)

	assert.Equal(t, "Tomato Basil Risotto", r.Name)
	assert.Len(t, r.Ingredients, 3)
	assert.Equal(t, common.RecipeIngredient{Name: "rice", Amount: "200 g"}, r.Ingredients[2])
	assert.Len(t, r.Steps, 3)
	assert.Equal(t, 35, r.TimeMinutes)
	assert.Equal(t, common.DifficultyMedium, r.Difficulty)
	assert.Equal(t, 420.0, r.Calories)
	assert.Equal(t, common.Macros{ProteinG: 10, CarbsG: 80, FatG: 6}, r.Macros)
}

func TestValidateStripsFencesAndChatter(t *testing.T) {
	raw := "Here is your recipe:\n```json\n" + toJSON(t, validRecipe()) + "\n```"
	r, err := Validate(raw)
	require.NoError(t, err)
	assert.Equal(t, "Tomato Basil Risotto", r.Name)
}

func TestValidateConvertsNumericStrings(t *testing.T) {
	doc := with(validRecipe(), "calories", "420.5")
	doc = with(doc, "time_minutes", "30")

	r, err := Validate(toJSON(t, doc))
	require.NoError(t, err)
	assert.Equal(t, 420.5, r.Calories)
	assert.Equal(t, 30, r.TimeMinutes)
}

func TestValidateMissingFields(t *testing.T) {
	for _, field := range []string{
		"name", "description", "ingredients", "steps", "time_minutes",
		"difficulty", "calories", "macros", "health_justification",
	} {
		t.Run(field, func(t *testing.T) {
			_, err := Validate(toJSON(t, without(validRecipe(), field)))
			assertViolation(t, err, field)
		})
	}
}

func TestValidateRejections(t *testing.T) {
	tests := []struct {
		name  string
		doc   map[string]interface{}
		field string
	}{
		{"negative calories", with(validRecipe(), "calories", -1), "calories"},
		{"calories with unit", with(validRecipe(), "calories", "420 kcal"), "calories"},
		{"calories as bool", with(validRecipe(), "calories", true), "calories"},
		{"unknown difficulty", with(validRecipe(), "difficulty", "expert"), "difficulty"},
		{"difficulty wrong case", with(validRecipe(), "difficulty", "Easy"), "difficulty"},
		{"empty ingredients", with(validRecipe(), "ingredients", []interface{}{}), "ingredients"},
		{"empty steps", with(validRecipe(), "steps", []interface{}{}), "steps"},
		{"steps as string", with(validRecipe(), "steps", "do it"), "steps"},
		{"blank step", with(validRecipe(), "steps", []interface{}{"ok", " "}), "steps[1]"},
		{"numeric step", with(validRecipe(), "steps", []interface{}{1}), "steps[0]"},
		{"blank name", with(validRecipe(), "name", "  "), "name"},
		{"name as number", with(validRecipe(), "name", 7), "name"},
		{"fractional minutes", with(validRecipe(), "time_minutes", 12.5), "time_minutes"},
		{"negative minutes", with(validRecipe(), "time_minutes", -5), "time_minutes"},
		{"huge minutes", with(validRecipe(), "time_minutes", 1e30), "time_minutes"},
		{"minutes above a day", with(validRecipe(), "time_minutes", 1441), "time_minutes"},
		{"ingredient without name", with(validRecipe(), "ingredients", []interface{}{
			map[string]interface{}{"amount": "1"},
		}), "ingredients[0].name"},
		{"ingredient as string", with(validRecipe(), "ingredients", []interface{}{"tomato"}), "ingredients[0]"},
		{"negative fat", with(validRecipe(), "macros", map[string]interface{}{
			"protein_g": 1, "carbs_g": 2, "fat_g": -3,
		}), "macros.fat_g"},
		{"missing protein", with(validRecipe(), "macros", map[string]interface{}{
			"carbs_g": 2, "fat_g": 3,
		}), "macros.protein_g"},
		{"macros as list", with(validRecipe(), "macros", []interface{}{1, 2, 3}), "macros"},
		{"null calories", with(validRecipe(), "calories", nil), "calories"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(toJSON(t, tt.doc))
			assertViolation(t, err, tt.field)
		})
	}
}

func TestValidateUnparseable(t *testing.T) {
	for _, raw := range []string{"", "I cannot help with that.", "[1,2,3]", "null", `{"name": "x",`} {
		_, err := Validate(raw)
		assertViolation(t, err, rootField)
	}
}

func assertViolation(t *testing.T, err error, field string) {
	t.Helper()
	var sv *SchemaViolationError
	require.True(t, errors.As(err, &sv), "expected SchemaViolationError, got %v", err)
	assert.Equal(t, field, sv.Field)
}
