// Package agent defines the structured reply the prompt backend returns for a turn.
package agent

import (
	"maps"
	"slices"
)

// Intent is what the backend detected the user wanted.
type Intent string

const (
	IntentConversation       Intent = "conversation"
	IntentQuestion           Intent = "question"
	IntentPromptOptimization Intent = "prompt_optimization"
	IntentHybrid             Intent = "hybrid"
	IntentGuided             Intent = "guided"
)

// HasOptimization reports whether results of this intent carry an optimized prompt.
func (i Intent) HasOptimization() bool {
	return i == IntentPromptOptimization || i == IntentHybrid
}

// ThinkingStep is one entry of the reasoning trace shown while a turn resolves.
type ThinkingStep struct {
	Label  string `json:"step"`
	Detail string `json:"thought"`
	Icon   string `json:"icon"`
}

// Optimization is the optimized-prompt payload of prompt_optimization and hybrid results.
type Optimization struct {
	OptimizedPrompt string `json:"optimized_prompt"`
	QualityScore    int    `json:"quality_score"` // 0-100
	TaskType        string `json:"task_type"`
}

// Result is the backend's reply to one turn. Optimization is set only for
// intents where HasOptimization is true.
type Result struct {
	Intent       Intent         `json:"intent"`
	ResponseType string         `json:"response_type"`
	Response     string         `json:"response"`
	Domain       string         `json:"domain"`
	Suggestions  []string       `json:"suggestions"`
	Metadata     Metadata       `json:"metadata"`
	Thinking     []ThinkingStep `json:"thinking"`
	Optimization *Optimization  `json:"optimization,omitempty"`
}

// Text is the body shown for the turn: the response, falling back to the
// optimized prompt, falling back to empty.
func (r *Result) Text() string {
	if r == nil {
		return ""
	}
	if r.Response != "" {
		return r.Response
	}
	if r.Optimization != nil {
		return r.Optimization.OptimizedPrompt
	}
	return ""
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}
	c := *r
	c.Suggestions = slices.Clone(r.Suggestions)
	c.Thinking = slices.Clone(r.Thinking)
	if r.Optimization != nil {
		o := *r.Optimization
		c.Optimization = &o
	}
	if r.Metadata != nil {
		c.Metadata = maps.Clone(r.Metadata)
	}
	return &c
}

// QualityScore returns the optimization score and whether one applies.
func (r *Result) QualityScore() (int, bool) {
	if r == nil || r.Optimization == nil {
		return 0, false
	}
	return r.Optimization.QualityScore, true
}

// Acknowledgment is the success notification for a resolved turn.
func Acknowledgment(intent Intent) string {
	switch intent {
	case IntentConversation:
		return "Message received!"
	case IntentQuestion:
		return "Thoughtful response ready!"
	case IntentPromptOptimization:
		return "Prompt optimized successfully!"
	case IntentHybrid:
		return "Response generated!"
	default:
		return "Response ready!"
	}
}
