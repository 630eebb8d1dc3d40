package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/embedded"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/provider"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/queue"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/auth"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/image"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/recipe"
	"github.com/baldhadhaval08/pantry-wizard/internal/core/report"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/config"
	"github.com/baldhadhaval08/pantry-wizard/internal/infrastructure/database"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
	"github.com/baldhadhaval08/pantry-wizard/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const placeholder = "/static/images/placeholder.jpg"

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		App:    config.AppConfig{Version: "test"},
		Server: config.ServerConfig{RequestTimeout: 10 * time.Second, MaxBodyBytes: 1 << 20},
		LLM:    config.LLMConfig{Mode: config.LLMModeEmbedded, Timeout: 5 * time.Second},
		Generation: config.GenerationConfig{
			MaxAttempts:         3,
			RecentWindow:        5,
			SimilarityThreshold: 0.85,
			FreshDirective:      "IMPORTANT: Generate a DIFFERENT recipe that is not similar to the recent recipes listed above.",
		},
		Daily:       config.DailyConfig{Timezone: "UTC", LockTTL: time.Minute, PollInterval: 10 * time.Millisecond},
		Queue:       config.QueueConfig{Workers: 2, MaxSize: 8},
		Image:       config.ImageConfig{Mode: config.ImageModePlaceholder, PlaceholderURL: placeholder, StaticDir: t.TempDir()},
		RateLimit:   config.RateLimitConfig{Enabled: false},
		Auth:        config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		CORSOrigins: []string{"http://localhost:3000"},
		DedupWindow: time.Nanosecond,
	}
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newTestServer(t *testing.T, backend provider.Backend) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cfg := testConfig(t)

	db, err := database.Open(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })

	if backend == nil {
		backend = embedded.NewBackend(nil)
	}
	manager := queue.NewManager(backend, cfg.Queue)
	t.Cleanup(func() { _ = manager.Close() })

	users := repository.NewUserRepository(db)
	pantry := repository.NewPantryRepository(db)
	history := repository.NewHistoryRepository(db)

	recipes := recipe.NewService(recipe.Deps{
		Profiles: users,
		Pantry:   pantry,
		History:  history,
		Daily:    repository.NewDailyRepository(db),
		Orchestrator: recipe.NewOrchestrator(manager,
			recipe.NewNoveltyFilter(cfg.Generation.SimilarityThreshold, cfg.Generation.CompareDescription),
			recipe.Policy{
				MaxAttempts:    cfg.Generation.MaxAttempts,
				Timeout:        cfg.LLM.Timeout,
				FreshDirective: cfg.Generation.FreshDirective,
			}),
		Images:      image.NewService(cfg.Image, "", nil, nil),
		Generation:  cfg.Generation,
		DailyConfig: cfg.Daily,
	})

	router, cleanup, err := SetupRouter(cfg, Services{
		Auth:    auth.NewService(users, auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)),
		Pantry:  pantry,
		Recipes: recipes,
		Reports: report.NewService(history),
		DB:      func(ctx context.Context) error { return database.Ping(ctx, db) },
		Queue:   manager,
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	return &testServer{t: t, router: router}
}

func (s *testServer) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) register() {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/auth/register", map[string]interface{}{
		"name":      "Ada",
		"email":     "ada@example.com",
		"password":  "pa55word",
		"height_cm": 165,
		"weight_kg": 70,
		"diet_type": "vegetarian",
		"goal":      "weight_loss",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())

	var token auth.Token
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &token))
	s.token = token.AccessToken
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestHealthEndpoints(t *testing.T) {
	s := newTestServer(t, nil)

	for _, path := range []string{"/health", "/ready", "/live"} {
		w := s.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}

	health := decode[map[string]interface{}](t, s.do(http.MethodGet, "/health", nil))
	assert.Equal(t, "embedded", health["backend"])
}

func TestUnsupportedMethod(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodPatch, "/api/pantry", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
	body := decode[common.ErrorResponse](t, w)
	assert.Equal(t, common.ErrCodeMethodNotAllowed, body.Code)

	w = s.do(http.MethodGet, "/api/nowhere", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(http.MethodGet, "/api/pantry", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	s.token = "garbage"
	w = s.do(http.MethodGet, "/api/recipes/daily", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRegisterLoginProfile(t *testing.T) {
	s := newTestServer(t, nil)
	s.register()

	w := s.do(http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, common.ErrCodeBadCredentials, decode[common.ErrorResponse](t, w).Code)

	w = s.do(http.MethodPost, "/api/auth/register", map[string]string{"name": "Ada", "email": "ada@example.com", "password": "pa55word"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodeEmailTaken, decode[common.ErrorResponse](t, w).Code)

	w = s.do(http.MethodPut, "/api/auth/profile", map[string]interface{}{"allergies": "peanuts"})
	require.Equal(t, http.StatusOK, w.Code)

	profile := decode[map[string]interface{}](t, s.do(http.MethodGet, "/api/auth/profile", nil))
	assert.Equal(t, "peanuts", profile["allergies"])
	assert.NotContains(t, profile, "password_hash")
}

func TestGenerateWithEmptyPantry(t *testing.T) {
	s := newTestServer(t, nil)
	s.register()

	w := s.do(http.MethodPost, "/api/recipes/generate", map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, common.ErrCodePantryEmpty, decode[common.ErrorResponse](t, w).Code)
}

func TestGenerateBudgetExhausted(t *testing.T) {
	s := newTestServer(t, embedded.NewBackend(partialModel{}))
	s.register()

	w := s.do(http.MethodPost, "/api/pantry", map[string]interface{}{"name": "rice", "quantity": 1, "unit": "kg"})
	require.Equal(t, http.StatusCreated, w.Code)

	w = s.do(http.MethodPost, "/api/recipes/generate", map[string]interface{}{})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := decode[common.ErrorResponse](t, w)
	assert.Equal(t, common.ErrCodeGenerationFailed, resp.Code)
	assert.NotContains(t, w.Body.String(), "Half a recipe")
}

func TestPantryOwnership(t *testing.T) {
	s := newTestServer(t, nil)
	s.register()

	w := s.do(http.MethodPost, "/api/pantry", map[string]interface{}{"name": "tomato", "quantity": -1, "unit": "pieces"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/pantry", map[string]interface{}{"name": "tomato", "quantity": 5, "unit": "pieces"})
	require.Equal(t, http.StatusCreated, w.Code)
	item := decode[map[string]interface{}](t, w)
	itemPath := "/api/pantry/" + jsonNumber(item["id"])

	w = s.do(http.MethodPut, itemPath, map[string]interface{}{"quantity": 3})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 3.0, decode[map[string]interface{}](t, w)["quantity"])

	// 另一位使用者看不到這筆食材
	owner := s.token
	w = s.do(http.MethodPost, "/api/auth/register", map[string]string{"name": "Bob", "email": "bob@example.com", "password": "pa55word"})
	require.Equal(t, http.StatusCreated, w.Code)
	s.token = decode[auth.Token](t, w).AccessToken

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodPut, itemPath, map[string]interface{}{"quantity": 1}).Code)
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodDelete, itemPath, nil).Code)
	assert.Empty(t, decode[[]interface{}](t, s.do(http.MethodGet, "/api/pantry", nil)))

	s.token = owner
	assert.Equal(t, http.StatusNoContent, s.do(http.MethodDelete, itemPath, nil).Code)
	assert.Empty(t, decode[[]interface{}](t, s.do(http.MethodGet, "/api/pantry", nil)))
}

func TestGenerateSaveAndReport(t *testing.T) {
	s := newTestServer(t, nil)
	s.register()

	for _, item := range []map[string]interface{}{
		{"name": "tomato", "quantity": 5, "unit": "pieces"},
		{"name": "onion", "quantity": 2, "unit": "pieces"},
		{"name": "rice", "quantity": 1, "unit": "kg"},
	} {
		require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/pantry", item).Code)
	}

	w := s.do(http.MethodPost, "/api/recipes/generate", map[string]interface{}{
		"preferences": map[string]string{"cuisine": "italian"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	generated := decode[recipe.GenerateResult](t, w)
	require.NotNil(t, generated.Recipe)
	require.NotNil(t, generated.ImageURL)
	assert.Equal(t, placeholder, *generated.ImageURL)
	assert.Contains(t, generated.Recipe.Name, "Italian")

	w = s.do(http.MethodPost, "/api/recipes/save", map[string]interface{}{"recipe_json": generated.Recipe})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	saved := decode[recipe.SavedRecipe](t, w)
	assert.Equal(t, generated.Recipe.Name, saved.RecipeName)
	assert.Equal(t, generated.Recipe.Calories, saved.Calories)

	// 下一次生成不可與剛存的食譜重複
	w = s.do(http.MethodPost, "/api/recipes/generate", map[string]interface{}{
		"preferences": map[string]string{"cuisine": "italian"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	second := decode[recipe.GenerateResult](t, w)
	assert.Less(t, recipe.Similarity(second.Recipe.Name, saved.RecipeName), 0.85)

	history := decode[[]map[string]interface{}](t, s.do(http.MethodGet, "/api/history?period=week", nil))
	require.Len(t, history, 1)
	assert.Equal(t, saved.RecipeName, history[0]["recipe_name"])

	assert.Equal(t, http.StatusBadRequest, s.do(http.MethodGet, "/api/history?period=year", nil).Code)

	weekly := decode[report.WeeklyReport](t, s.do(http.MethodGet, "/api/history/reports/weekly", nil))
	assert.Equal(t, 1, weekly.MealsCount)
	assert.Equal(t, 100.0, weekly.VarietyScore)
	assert.Equal(t, common.Round1(saved.Calories), weekly.TotalCalories)
	require.NotEmpty(t, weekly.TopIngredients)
}

func TestDailyIsStable(t *testing.T) {
	s := newTestServer(t, nil)
	s.register()
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/api/pantry", map[string]interface{}{"name": "lentils", "quantity": 500, "unit": "g"}).Code)

	first := decode[recipe.DailyResult](t, s.do(http.MethodGet, "/api/recipes/daily", nil))
	second := decode[recipe.DailyResult](t, s.do(http.MethodGet, "/api/recipes/daily", nil))

	require.NotNil(t, first.Recipe)
	assert.Equal(t, first.Recipe.Name, second.Recipe.Name)
	assert.Equal(t, first.SuggestedAt, second.SuggestedAt)
}

// partialModel 永遠回傳缺少欄位的食譜
type partialModel struct{}

func (partialModel) Predict(ctx context.Context, prompt string) (string, error) {
	return `{"name": "Half a recipe"}`, nil
}

func jsonNumber(v interface{}) string {
	data, _ := json.Marshal(v)
	return string(data)
}
