package recipe

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// NoveltyFilter 以字串相似度排除與近期食譜重複的候選
type NoveltyFilter struct {
	// Threshold 相似度高於此值即視為重複（0 到 1）
	Threshold float64
	// CompareDescription 是否也比對描述
	CompareDescription bool
}

// NewNoveltyFilter 創建新穎度過濾器
func NewNoveltyFilter(threshold float64, compareDescription bool) *NoveltyFilter {
	return &NoveltyFilter{
		Threshold:          threshold,
		CompareDescription: compareDescription,
	}
}

// Check 任一近期菜名相似度超過門檻時回傳 ErrDuplicateRecipe
func (f *NoveltyFilter) Check(candidate *Recipe, recentTitles []string) error {
	if candidate == nil {
		return nil
	}
	for _, title := range recentTitles {
		if Similarity(candidate.Name, title) > f.Threshold {
			return ErrDuplicateRecipe
		}
		if f.CompareDescription && candidate.Description != "" &&
			Similarity(candidate.Description, title) > f.Threshold {
			return ErrDuplicateRecipe
		}
	}
	return nil
}

// Similarity 正規化後的字串相似度，範圍 0 到 1
// 為字元層級編輯距離相似度與詞彙 Dice 係數的平均；
// 完全相同為 1，沒有共同詞彙時不超過 0.5
func Similarity(a, b string) float64 {
	a, b = normalize(a), normalize(b)
	if a == b {
		return 1
	}
	return (editSimilarity(a, b) + tokenDice(a, b)) / 2
}

// normalize 轉小寫並合併空白
func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

func editSimilarity(a, b string) float64 {
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}

func tokenDice(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 && len(tb) == 0 {
		return 1
	}
	shared := 0
	for tok := range ta {
		if _, ok := tb[tok]; ok {
			shared++
		}
	}
	return 2 * float64(shared) / float64(len(ta)+len(tb))
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(s) {
		tok = strings.Trim(tok, ".,;:!?()[]\"'")
		if tok != "" {
			set[tok] = struct{}{}
		}
	}
	return set
}
