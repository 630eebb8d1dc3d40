package recipe

import (
	"context"
	"errors"
	"time"

	"github.com/baldhadhaval08/pantry-wizard/internal/core/ai/provider"
	"github.com/baldhadhaval08/pantry-wizard/internal/pkg/common"

	"go.uber.org/zap"
)

// State 生成流程狀態
type State string

const (
	StateBuilding         State = "building"
	StateInvoking         State = "invoking"
	StateValidating       State = "validating"
	StateFilteringNovelty State = "filtering_novelty"
	StateRetrying         State = "retrying"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
)

// Policy 重試策略
type Policy struct {
	// MaxAttempts 後端呼叫總次數上限
	MaxAttempts int
	// Timeout 單次呼叫逾時
	Timeout time.Duration
	// FreshDirective 出現重複食譜後附加在提示詞後的一行提醒
	FreshDirective string
}

// Outcome 成功結果
type Outcome struct {
	Recipe   *Recipe
	Prompt   string
	Latency  time.Duration // 成功那次後端呼叫的耗時
	Attempts int
	Trace    []State
}

// Orchestrator 組合提示詞、後端、驗證與新穎度檢查
type Orchestrator struct {
	backend provider.Backend
	novelty *NoveltyFilter
	policy  Policy
}

// NewOrchestrator 創建生成流程
func NewOrchestrator(backend provider.Backend, novelty *NoveltyFilter, policy Policy) *Orchestrator {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	return &Orchestrator{
		backend: backend,
		novelty: novelty,
		policy:  policy,
	}
}

// run 單次 Run 的狀態
type run struct {
	state     State
	trace     []State
	prompt    string
	raw       string
	candidate *Recipe
	latency   time.Duration
	attempts  int
	lastErr   error
	freshened bool
}

func (r *run) to(next State) {
	common.LogDebug("Generation state transition",
		zap.String("from", string(r.state)),
		zap.String("to", string(next)),
		zap.Int("attempt", r.attempts),
	)
	r.state = next
	r.trace = append(r.trace, next)
}

// Run 執行一次完整生成
// checkNovelty 為 false 時略過新穎度檢查；重試次數用盡時回傳 RetryBudgetExhaustedError
func (o *Orchestrator) Run(ctx context.Context, in PromptInput, checkNovelty bool) (*Outcome, error) {
	r := &run{state: StateBuilding, trace: []State{StateBuilding}}

	for {
		switch r.state {
		case StateBuilding:
			r.prompt = BuildPrompt(in)
			common.LogDebug("Prompt built",
				zap.Int("prompt_length", len(r.prompt)),
				zap.String("prompt_preview", common.Truncate(r.prompt, 200)),
			)
			r.to(StateInvoking)

		case StateInvoking:
			r.attempts++
			start := time.Now()
			raw, err := o.backend.Generate(ctx, r.prompt, o.policy.Timeout)
			r.latency = time.Since(start)
			if err != nil {
				r.lastErr = provider.Classify(err)
				r.to(StateRetrying)
				continue
			}
			r.raw = raw
			r.to(StateValidating)

		case StateValidating:
			candidate, err := Validate(r.raw)
			if err != nil {
				common.LogDebug("Backend output rejected",
					zap.Error(err),
					zap.String("output_preview", common.Truncate(r.raw, 200)),
				)
				r.lastErr = err
				r.to(StateRetrying)
				continue
			}
			r.candidate = candidate
			r.to(StateFilteringNovelty)

		case StateFilteringNovelty:
			if checkNovelty && o.novelty != nil {
				if err := o.novelty.Check(r.candidate, in.RecentTitles); err != nil {
					common.LogDebug("Candidate rejected as duplicate", zap.String("name", r.candidate.Name))
					r.lastErr = err
					r.to(StateRetrying)
					continue
				}
			}
			r.to(StateSucceeded)

		case StateRetrying:
			common.LogWarn("Generation attempt failed",
				zap.Int("attempt", r.attempts),
				zap.Int("max_attempts", o.policy.MaxAttempts),
				zap.Error(r.lastErr),
			)
			// 請求期限已過時不再呼叫後端，以最後一次失敗原因結束
			if ctx.Err() != nil || r.attempts >= o.policy.MaxAttempts {
				r.to(StateFailed)
				continue
			}
			if errors.Is(r.lastErr, ErrDuplicateRecipe) && !r.freshened && o.policy.FreshDirective != "" {
				r.prompt += "\n" + o.policy.FreshDirective + "\n"
				r.freshened = true
			}
			r.to(StateInvoking)

		case StateSucceeded:
			common.LogInfo("Recipe generated",
				zap.String("backend", o.backend.Name()),
				zap.String("name", r.candidate.Name),
				zap.Int("attempts", r.attempts),
				zap.Duration("latency", r.latency),
			)
			return &Outcome{
				Recipe:   r.candidate,
				Prompt:   r.prompt,
				Latency:  r.latency,
				Attempts: r.attempts,
				Trace:    r.trace,
			}, nil

		case StateFailed:
			common.LogError("Recipe generation failed",
				zap.String("backend", o.backend.Name()),
				zap.Int("attempts", r.attempts),
				zap.Error(r.lastErr),
			)
			return nil, &RetryBudgetExhaustedError{Attempts: r.attempts, Last: r.lastErr}
		}
	}
}
