package embedded

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
)

// dishStyle 菜式模板
type dishStyle struct {
	Title      string
	Method     string
	Minutes    int
	Difficulty common.Difficulty
}

var styles = []dishStyle{
	{Title: "Skillet", Method: "Sauté", Minutes: 25, Difficulty: common.DifficultyEasy},
	{Title: "Bowl", Method: "Simmer", Minutes: 30, Difficulty: common.DifficultyEasy},
	{Title: "Soup", Method: "Simmer", Minutes: 40, Difficulty: common.DifficultyMedium},
	{Title: "Bake", Method: "Roast", Minutes: 45, Difficulty: common.DifficultyMedium},
	{Title: "Stir-Fry", Method: "Stir-fry", Minutes: 20, Difficulty: common.DifficultyEasy},
	{Title: "Risotto", Method: "Slowly cook", Minutes: 50, Difficulty: common.DifficultyHard},
}

// maxMainIngredients 菜名中最多列出的主食材數
const maxMainIngredients = 2

// promptFacts 從提示詞解析出的資訊
type promptFacts struct {
	Pantry  []common.PantryLine
	Recent  []string
	Cuisine string
	Diet    string
	Goal    string
}

// PantryChef 規則式行程內模型
// 依提示詞中的食材清單組出食譜，每次呼叫輪替菜式
type PantryChef struct {
	mu    sync.Mutex
	calls int
}

// NewPantryChef 創建規則式模型
func NewPantryChef() *PantryChef {
	return &PantryChef{}
}

// Predict 產生食譜 JSON
func (p *PantryChef) Predict(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	facts := parsePrompt(prompt)
	if len(facts.Pantry) == 0 {
		return "", fmt.Errorf("prompt lists no pantry ingredients")
	}

	p.mu.Lock()
	offset := p.calls
	p.calls++
	p.mu.Unlock()

	recipe := compose(facts, offset)
	out, err := json.Marshal(recipe)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// compose 從 offset 開始挑第一個未出現在近期清單的菜式
func compose(facts promptFacts, offset int) common.Recipe {
	main := facts.Pantry
	if len(main) > maxMainIngredients {
		main = main[:maxMainIngredients]
	}

	names := make([]string, 0, len(main))
	for _, line := range main {
		names = append(names, titleCase(line.Name))
	}
	base := strings.Join(names, " & ")
	if facts.Cuisine != "" && !strings.EqualFold(facts.Cuisine, "any") {
		base = titleCase(facts.Cuisine) + " " + base
	}

	recent := make(map[string]struct{}, len(facts.Recent))
	for _, title := range facts.Recent {
		recent[strings.ToLower(strings.TrimSpace(title))] = struct{}{}
	}

	style := styles[offset%len(styles)]
	name := base + " " + style.Title
	for i := 0; i < len(styles); i++ {
		candidate := styles[(offset+i)%len(styles)]
		candidateName := base + " " + candidate.Title
		if _, seen := recent[strings.ToLower(candidateName)]; !seen {
			style, name = candidate, candidateName
			break
		}
	}

	ingredients := make([]common.RecipeIngredient, 0, len(facts.Pantry)+1)
	for _, line := range facts.Pantry {
		ingredients = append(ingredients, common.RecipeIngredient{
			Name:   line.Name,
			Amount: amountOf(line),
		})
	}
	ingredients = append(ingredients, common.RecipeIngredient{Name: "olive oil", Amount: "1 tbsp"})

	calories := common.EstimateCalories(ingredients)
	steps := []string{
		"Wash and chop " + joinNames(facts.Pantry) + ".",
		"Heat the olive oil in a pan over medium heat and season with a pinch of salt.",
		fmt.Sprintf("%s the ingredients until tender, adding water as needed.", style.Method),
		"Taste, adjust seasoning and serve warm.",
	}

	return common.Recipe{
		Name:        name,
		Description: fmt.Sprintf("A simple %s built from what is already in your pantry.", strings.ToLower(style.Title)),
		Ingredients: ingredients,
		Steps:       steps,
		TimeMinutes: style.Minutes,
		Difficulty:  style.Difficulty,
		Calories:    calories,
		Macros: common.Macros{
			ProteinG: common.Round1(calories * 0.20 / 4),
			CarbsG:   common.Round1(calories * 0.55 / 4),
			FatG:     common.Round1(calories * 0.25 / 9),
		},
		HealthJustification: justification(facts),
	}
}

func justification(facts promptFacts) string {
	parts := []string{"Made only from whole pantry ingredients with minimal added fat"}
	if facts.Diet != "" && !strings.EqualFold(facts.Diet, "No restrictions") {
		parts = append(parts, "fits a "+facts.Diet+" diet")
	}
	if facts.Goal != "" {
		parts = append(parts, "supports the goal "+facts.Goal)
	}
	return strings.Join(parts, ", ") + "."
}

func amountOf(line common.PantryLine) string {
	if line.Quantity <= 0 {
		return "to taste"
	}
	amount := strconv.FormatFloat(line.Quantity, 'f', -1, 64)
	if line.Unit != "" {
		amount += " " + line.Unit
	}
	return amount
}

func joinNames(lines []common.PantryLine) string {
	names := make([]string, 0, len(lines))
	for _, l := range lines {
		names = append(names, l.Name)
	}
	return strings.Join(names, ", ")
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		first, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(first)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

// parsePrompt 依段落標記讀出食材、近期菜名與偏好
func parsePrompt(prompt string) promptFacts {
	var facts promptFacts
	section := ""

	scanner := bufio.NewScanner(strings.NewReader(prompt))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, common.PromptPantryHeader):
			section = "pantry"
			continue
		case strings.HasPrefix(line, common.PromptRecentHeader):
			section = "recent"
			continue
		case strings.HasPrefix(line, common.PromptCuisinePrefix):
			facts.Cuisine = strings.TrimSpace(strings.TrimPrefix(line, common.PromptCuisinePrefix))
			section = ""
			continue
		case strings.HasPrefix(line, common.PromptDietPrefix):
			facts.Diet = strings.TrimSpace(strings.TrimPrefix(line, common.PromptDietPrefix))
			continue
		case strings.HasPrefix(line, common.PromptGoalPrefix):
			facts.Goal = strings.TrimSpace(strings.TrimPrefix(line, common.PromptGoalPrefix))
			continue
		case line == "":
			section = ""
			continue
		}

		item, ok := strings.CutPrefix(line, "- ")
		if !ok || item == common.PromptNoneMarker {
			continue
		}
		switch section {
		case "pantry":
			facts.Pantry = append(facts.Pantry, parsePantryLine(item))
		case "recent":
			facts.Recent = append(facts.Recent, item)
		}
	}
	return facts
}

// parsePantryLine 解析 "name (qty unit)" 或單純 "name"
func parsePantryLine(item string) common.PantryLine {
	open := strings.LastIndex(item, " (")
	if open < 0 || !strings.HasSuffix(item, ")") {
		return common.PantryLine{Name: item}
	}

	line := common.PantryLine{Name: item[:open]}
	fields := strings.Fields(item[open+2 : len(item)-1])
	if len(fields) == 0 {
		return line
	}
	if q, err := strconv.ParseFloat(fields[0], 64); err == nil {
		line.Quantity = q
		line.Unit = strings.Join(fields[1:], " ")
	}
	return line
}
