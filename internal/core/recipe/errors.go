package recipe

import (
	"errors"
	"fmt"
)

// 生成流程錯誤
var (
	// ErrDuplicateRecipe 候選食譜與近期紀錄過於相似
	ErrDuplicateRecipe = errors.New("duplicate recipe")

	// ErrPantryEmpty 沒有任何可用食材
	ErrPantryEmpty = errors.New("pantry empty")
)

// SchemaViolationError 模型輸出不符合食譜格式
type SchemaViolationError struct {
	Field  string
	Reason string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf("schema violation at %q: %s", e.Field, e.Reason)
}

func violation(field, format string, args ...interface{}) *SchemaViolationError {
	return &SchemaViolationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// RetryBudgetExhaustedError 重試次數用盡，Last 為最後一次失敗原因
type RetryBudgetExhaustedError struct {
	Attempts int
	Last     error
}

func (e *RetryBudgetExhaustedError) Error() string {
	return fmt.Sprintf("retry budget exhausted after %d attempts: %v", e.Attempts, e.Last)
}

// Unwrap 讓 errors.Is / errors.As 能取得最後一次失敗
func (e *RetryBudgetExhaustedError) Unwrap() error {
	return e.Last
}
