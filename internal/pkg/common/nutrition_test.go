package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateCalories(t *testing.T) {
	tests := []struct {
		name        string
		ingredients []RecipeIngredient
		want        float64
	}{
		{"matched", []RecipeIngredient{{Name: "Chicken Breast"}, {Name: "brown rice"}}, 148},
		{"unmatched", []RecipeIngredient{{Name: "quinoa"}, {Name: "kale"}, {Name: "lemon"}}, 150},
		{"empty", nil, 0},
		{"first key wins", []RecipeIngredient{{Name: "olive oil"}}, 442},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EstimateCalories(tt.ingredients))
		})
	}
}
