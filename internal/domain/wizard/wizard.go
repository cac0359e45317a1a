// Package wizard implements the guided questionnaire that turns a few
// multiple-choice answers and a description into one composite prompt.
package wizard

import (
	"fmt"
	"strings"

	"github.com/Strob0t/lukthan/internal/domain"
)

// Context is what the questionnaire collected. It travels with the
// synthesized prompt as the request's guided_context.
type Context struct {
	Domain      string `json:"domain"`
	ProjectType string `json:"projectType"`
	Tools       string `json:"tools"`
	Complexity  string `json:"complexity"`
	Description string `json:"description"`
}

// BuildPrompt synthesizes the composite prompt. Unknown option ids
// contribute an empty label.
func BuildPrompt(f Flow, c Context) string {
	label := func(step int, id string) string {
		if step >= len(f.Steps) {
			return ""
		}
		return f.Steps[step].Label(id)
	}
	return fmt.Sprintf("Create a %s using %s with %s complexity. %s",
		label(0, c.ProjectType), label(1, c.Tools), label(2, c.Complexity), c.Description)
}

// State is a single pass through a Flow. The zero value is not usable; call New.
type State struct {
	flow        Flow
	domain      string
	step        int
	answers     map[int]string
	description string
}

// New starts a questionnaire for domain. The requested domain is kept for
// the context even when its flow falls back to coding.
func New(domainName string) *State {
	return &State{
		flow:    FlowFor(domainName),
		domain:  domainName,
		answers: make(map[int]string),
	}
}

// Flow returns the questionnaire being answered.
func (s *State) Flow() Flow { return s.flow }

// Step returns the zero-based current step index.
func (s *State) Step() int { return s.step }

// IsDescriptionStep reports whether the free-text step is current.
func (s *State) IsDescriptionStep() bool { return s.step == len(s.flow.Steps) }

// Current returns the current choice step; ok is false on the description step.
func (s *State) Current() (Step, bool) {
	if s.IsDescriptionStep() {
		return Step{}, false
	}
	return s.flow.Steps[s.step], true
}

// Answer returns the option id recorded for step, or "".
func (s *State) Answer(step int) string { return s.answers[step] }

// Select records optionID for the current step. Advancing is separate so
// callers can delay it.
func (s *State) Select(optionID string) error {
	cur, ok := s.Current()
	if !ok {
		return fmt.Errorf("select on description step: %w", domain.ErrInvalidState)
	}
	if cur.Label(optionID) == "" {
		return fmt.Errorf("unknown option %q for step %d", optionID, s.step+1)
	}
	s.answers[s.step] = optionID
	return nil
}

// Advance moves to the next step. It never moves past the description step.
func (s *State) Advance() {
	if s.step < len(s.flow.Steps) {
		s.step++
	}
}

// Back moves to the previous step. It never moves below the first step.
func (s *State) Back() {
	if s.step > 0 {
		s.step--
	}
}

// SetDescription stores the free-text requirements.
func (s *State) SetDescription(text string) { s.description = text }

// Description returns the stored free text.
func (s *State) Description() string { return s.description }

// CanSubmit reports whether the state is terminal: on the description step
// with a non-blank description.
func (s *State) CanSubmit() bool {
	return s.IsDescriptionStep() && strings.TrimSpace(s.description) != ""
}

// Context returns what has been collected so far.
func (s *State) Context() Context {
	return Context{
		Domain:      s.domain,
		ProjectType: s.answers[0],
		Tools:       s.answers[1],
		Complexity:  s.answers[2],
		Description: s.description,
	}
}

// Prompt synthesizes the composite prompt from the current answers.
func (s *State) Prompt() string { return BuildPrompt(s.flow, s.Context()) }

// Progress returns the 1-based step number, the step count and the percent complete.
func (s *State) Progress() (n, total, percent int) {
	total = s.flow.TotalSteps()
	n = min(s.step+1, total)
	return n, total, n * 100 / total
}

// Selections returns the labels chosen so far, in step order.
func (s *State) Selections() []string {
	var out []string
	for i, st := range s.flow.Steps {
		if l := st.Label(s.answers[i]); l != "" {
			out = append(out, l)
		}
	}
	return out
}
