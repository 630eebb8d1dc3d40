package recipe

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/baldhadhaval08/pantry-wizard/internal/model"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"
)

const notSpecified = "Not specified"

// PromptInput 產生提示詞所需的全部資料
type PromptInput struct {
	Profile      *model.User
	Pantry       []common.PantryLine
	RecentTitles []string
	Preferences  Preferences
}

// BMI 身高體重都存在且為正時才計算，四捨五入到小數點後一位
func BMI(heightCm, weightKg *float64) (float64, bool) {
	if heightCm == nil || weightKg == nil || *heightCm <= 0 || *weightKg <= 0 {
		return 0, false
	}
	heightM := *heightCm / 100
	return common.Round1(*weightKg / (heightM * heightM)), true
}

// BuildPrompt 產生食譜提示詞
// 純函式：相同輸入永遠得到相同字串
func BuildPrompt(in PromptInput) string {
	profile := in.Profile
	if profile == nil {
		profile = &model.User{}
	}

	var b strings.Builder

	b.WriteString("You are a health-focused chef AI. Output only valid JSON.\n\n")

	b.WriteString("User profile:\n")
	fmt.Fprintf(&b, "- Name: %s\n", orDefault(profile.Name, notSpecified))
	fmt.Fprintf(&b, "- Age: %s\n", formatAge(profile.Age))
	fmt.Fprintf(&b, "- Height_cm: %s\n", formatPositive(profile.HeightCm))
	fmt.Fprintf(&b, "- Weight_kg: %s\n", formatPositive(profile.WeightKg))
	if bmi, ok := BMI(profile.HeightCm, profile.WeightKg); ok {
		fmt.Fprintf(&b, "- BMI: %.1f\n", bmi)
	}
	fmt.Fprintf(&b, "%s %s\n", common.PromptDietPrefix, orDefault(profile.DietType, "No restrictions"))
	fmt.Fprintf(&b, "%s %s\n", common.PromptAllergyPrefix, orDefault(profile.Allergies, common.PromptNoneMarker))
	fmt.Fprintf(&b, "%s %s\n", common.PromptGoalPrefix, orDefault(profile.Goal, "general_health"))
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s (the ONLY permitted ingredients; salt, oil and water are always available):\n", common.PromptPantryHeader)
	if len(in.Pantry) == 0 {
		fmt.Fprintf(&b, "- %s\n", common.PromptNoneMarker)
	}
	for _, line := range in.Pantry {
		fmt.Fprintf(&b, "- %s\n", formatPantryLine(line))
	}

	fmt.Fprintf(&b, "%s (titles you must NOT repeat or closely resemble):\n", common.PromptRecentHeader)
	if len(in.RecentTitles) == 0 {
		fmt.Fprintf(&b, "- %s\n", common.PromptNoneMarker)
	}
	for _, title := range in.RecentTitles {
		fmt.Fprintf(&b, "- %s\n", strings.TrimSpace(title))
	}

	fmt.Fprintf(&b, "%s %s\n", common.PromptCuisinePrefix, orDefault(in.Preferences.Cuisine, "any"))
	fmt.Fprintf(&b, "%s %s\n", common.PromptSpicePrefix, orDefault(in.Preferences.SpiceLevel, "medium"))
	b.WriteString("\n")

	b.WriteString(`Task:
- Using only the pantry ingredients listed above, generate ONE healthy recipe optimized for the user's health goal.
- The diet and the allergies are hard constraints: never include an ingredient that violates the diet or matches an allergy.
- Ensure variety: the recipe name must not repeat or resemble any of the recent titles.
- Salt, oil and water may be used in small amounts even though they are not listed.
- Make the recipe practical and easy to follow.

Return JSON EXACTLY in this shape:
{
  "name": "Dish name",
  "description": "Short description 1-2 sentences",
  "ingredients": [
    {"name": "onion", "amount": "1 medium"}
  ],
  "steps": [
    "Step 1 ..."
  ],
  "time_minutes": 30,
  "difficulty": "easy",
  "calories": 420,
  "macros": {"protein_g": 20, "carbs_g": 50, "fat_g": 10},
  "health_justification": "Brief sentence explaining why this suits the user's goals."
}
`)
	fmt.Fprintf(&b, "Rules: every field is required; name, description, health_justification and each step are strings; "+
		"ingredients and steps are non-empty lists; time_minutes is a whole number; calories and every macro are non-negative numbers; "+
		"difficulty is one of: %s.\n", joinDifficulties())

	return b.String()
}

// PantryLines 將庫存與額外食材轉為提示詞列
func PantryLines(items []model.PantryItem, extra []string) []common.PantryLine {
	lines := make([]common.PantryLine, 0, len(items)+len(extra))
	for _, item := range items {
		lines = append(lines, common.PantryLine{
			Name:     strings.TrimSpace(item.Name),
			Quantity: item.Quantity,
			Unit:     strings.TrimSpace(item.Unit),
		})
	}
	for _, name := range extra {
		if name = strings.TrimSpace(name); name != "" {
			lines = append(lines, common.PantryLine{Name: name})
		}
	}
	return lines
}

func formatPantryLine(line common.PantryLine) string {
	if line.Quantity <= 0 {
		return line.Name
	}
	qty := strconv.FormatFloat(line.Quantity, 'f', -1, 64)
	if line.Unit == "" {
		return fmt.Sprintf("%s (%s)", line.Name, qty)
	}
	return fmt.Sprintf("%s (%s %s)", line.Name, qty, line.Unit)
}

func formatAge(age *int) string {
	if age == nil || *age <= 0 {
		return notSpecified
	}
	return strconv.Itoa(*age)
}

func formatPositive(v *float64) string {
	if v == nil || *v <= 0 {
		return notSpecified
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}

func joinDifficulties() string {
	out := make([]string, len(common.Difficulties))
	for i, d := range common.Difficulties {
		out[i] = string(d)
	}
	return strings.Join(out, ", ")
}
