package promptapi

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/Strob0t/lukthan/internal/domain/agent"
)

// chatResponse is the /prompts/chat reply. Optional fields are pointers so
// absence is distinguishable from zero.
type chatResponse struct {
	Response        *string              `json:"response"`
	ResponseType    string               `json:"response_type"`
	Intent          string               `json:"intent"`
	Thinking        []agent.ThinkingStep `json:"thinking"`
	OptimizedPrompt *string              `json:"optimized_prompt"`
	TaskType        *string              `json:"task_type"`
	QualityScore    *float64             `json:"quality_score"`
	Domain          string               `json:"domain"`
	Suggestions     []string             `json:"suggestions"`
	Metadata        agent.Metadata       `json:"metadata"`
}

func (w *chatResponse) result() *agent.Result {
	intent := agent.Intent(w.Intent)
	if intent == "" {
		intent = agent.Intent(w.ResponseType)
	}

	r := &agent.Result{
		Intent:       intent,
		ResponseType: w.ResponseType,
		Response:     deref(w.Response),
		Domain:       w.Domain,
		Suggestions:  orEmpty(w.Suggestions),
		Metadata:     w.Metadata,
		Thinking:     orEmpty(w.Thinking),
	}
	if r.Metadata == nil {
		r.Metadata = agent.Metadata{}
	}

	optimized := deref(w.OptimizedPrompt)
	switch {
	case intent.HasOptimization():
		r.Optimization = &agent.Optimization{
			OptimizedPrompt: optimized,
			QualityScore:    score(w.QualityScore),
			TaskType:        deref(w.TaskType),
		}
	case r.Response == "" && optimized != "":
		// Keep the text visible for intents that carry no optimization.
		r.Response = optimized
	}
	return r
}

// optimizeResponse is the legacy /prompts/optimize reply.
type optimizeResponse struct {
	OptimizedPrompt *string        `json:"optimized_prompt"`
	QualityScore    *float64       `json:"quality_score"`
	Domain          string         `json:"domain"`
	TaskType        string         `json:"task_type"`
	Suggestions     []string       `json:"suggestions"`
	Metadata        agent.Metadata `json:"metadata"`
}

// result remaps the legacy reply: the optimized prompt becomes the response,
// the intent is prompt_optimization and the trace is empty.
func (w *optimizeResponse) result() *agent.Result {
	optimized := deref(w.OptimizedPrompt)
	md := w.Metadata
	if md == nil {
		md = agent.Metadata{}
	}
	return &agent.Result{
		Intent:       agent.IntentPromptOptimization,
		ResponseType: string(agent.IntentPromptOptimization),
		Response:     optimized,
		Domain:       w.Domain,
		Suggestions:  orEmpty(w.Suggestions),
		Metadata:     md,
		Thinking:     []agent.ThinkingStep{},
		Optimization: &agent.Optimization{
			OptimizedPrompt: optimized,
			QualityScore:    score(w.QualityScore),
			TaskType:        w.TaskType,
		},
	}
}

// parseDetail extracts FastAPI's "detail" from an error body. Validation
// errors arrive as a list of {loc, msg}; their messages are joined.
func parseDetail(body []byte) string {
	var env struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &env); err != nil || len(env.Detail) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(env.Detail, &s); err == nil {
		return s
	}

	var items []struct {
		Loc []any  `json:"loc"`
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(env.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if field := lastLoc(it.Loc); field != "" {
				msgs = append(msgs, field+": "+it.Msg)
			} else if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		return strings.Join(msgs, "; ")
	}
	return ""
}

func lastLoc(loc []any) string {
	if len(loc) == 0 {
		return ""
	}
	s, _ := loc[len(loc)-1].(string)
	return s
}

func score(v *float64) int {
	if v == nil {
		return 0
	}
	return int(math.Round(min(max(*v, 0), 100)))
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
