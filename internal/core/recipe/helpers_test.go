package recipe

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/database"
	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// scriptedBackend 依序回傳預先排好的輸出
type scriptedBackend struct {
	mu      sync.Mutex
	replies []reply
	prompts []string
}

type reply struct {
	text string
	err  error
}

func (b *scriptedBackend) Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.prompts = append(b.prompts, prompt)
	if len(b.replies) == 0 {
		return "", context.DeadlineExceeded
	}
	r := b.replies[0]
	if len(b.replies) > 1 {
		b.replies = b.replies[1:]
	}
	return r.text, r.err
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) Close() error { return nil }

func (b *scriptedBackend) calls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.prompts)
}

func validRecipe() map[string]interface{} {
	return map[string]interface{}{
		"name":        "Tomato Basil Risotto",
		"description": "Creamy rice slowly cooked with tomato and onion.",
		"ingredients": []interface{}{
			map[string]interface{}{"name": "tomato", "amount": "3 pieces"},
			map[string]interface{}{"name": "onion", "amount": "1 piece"},
			map[string]interface{}{"name": "rice", "amount": "200 g"},
		},
		"steps": []interface{}{
			"Dice the onion and tomatoes.",
			"Toast the rice in a little oil.",
			"Add water gradually and stir until creamy.",
		},
		"time_minutes":         35,
		"difficulty":           "medium",
		"calories":             420,
		"macros":               map[string]interface{}{"protein_g": 10, "carbs_g": 80, "fat_g": 6},
		"health_justification": "Low in fat and built on vegetables, suited for weight loss.",
	}
}

func toJSON(t *testing.T, v interface{}) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func without(doc map[string]interface{}, key string) map[string]interface{} {
	out := make(map[string]interface{}, len(doc))
	for k, v := range doc {
		if k != key {
			out[k] = v
		}
	}
	return out
}

func with(doc map[string]interface{}, key string, value interface{}) map[string]interface{} {
	out := without(doc, key)
	out[key] = value
	return out
}

func ptr[T any](v T) *T { return &v }

func testPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		Timeout:        time.Second,
		FreshDirective: "IMPORTANT: Generate a DIFFERENT recipe that is not similar to the recent recipes listed above.",
	}
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

func seedUser(t *testing.T, db *gorm.DB, pantry ...model.PantryItem) *model.User {
	t.Helper()
	user := &model.User{
		Name:         "Ada",
		Email:        "ada@example.com",
		PasswordHash: "x",
		HeightCm:     ptr(165.0),
		WeightKg:     ptr(70.0),
		DietType:     "vegetarian",
		Goal:         "weight_loss",
	}
	require.NoError(t, db.Create(user).Error)
	for i := range pantry {
		pantry[i].UserID = user.ID
		require.NoError(t, db.Create(&pantry[i]).Error)
	}
	return user
}

func italianPantry() []common.PantryLine {
	return []common.PantryLine{
		{Name: "tomato", Quantity: 5, Unit: "pieces"},
		{Name: "onion", Quantity: 2, Unit: "pieces"},
		{Name: "rice", Quantity: 1, Unit: "kg"},
	}
}
