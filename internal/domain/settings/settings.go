// Package settings defines the user preferences sent with every turn.
package settings

import (
	"fmt"
	"slices"
)

// Mode selects between one-shot optimization and the guided questionnaire.
type Mode string

const (
	ModeDirect Mode = "direct"
	ModeGuided Mode = "guided"
)

// Domains the backend specializes prompts for. "auto" and "general" are
// accepted by the backend but have no guided questionnaire of their own.
var Domains = []string{"auto", "coding", "data_science", "ai_builder", "research", "general"}

// TargetAIs lists the assistant models prompts can be tailored to.
var TargetAIs = []string{
	"ChatGPT (GPT-4)", "ChatGPT (GPT-3.5)",
	"Claude", "Claude (Opus)",
	"Gemini", "Gemini Pro",
	"Llama", "Mistral",
	"Copilot",
}

// ExpertiseLevels lists the audience levels, least to most experienced.
var ExpertiseLevels = []string{"Beginner", "Intermediate", "Professional", "Expert"}

// Languages lists the supported output languages.
var Languages = []string{
	"English", "French", "Spanish", "German", "Chinese",
	"Japanese", "Portuguese", "Arabic", "Hindi",
}

// Settings is the session's single settings record.
type Settings struct {
	Domain         string `json:"domain"`
	Mode           Mode   `json:"mode"`
	TargetAI       string `json:"target_ai"`
	ExpertiseLevel string `json:"expertise_level"`
	Language       string `json:"language"`
}

// Defaults returns the settings of a fresh session.
func Defaults() Settings {
	return Settings{
		Domain:         "coding",
		Mode:           ModeDirect,
		TargetAI:       "ChatGPT (GPT-4)",
		ExpertiseLevel: "Professional",
		Language:       "English",
	}
}

// Validate checks that enumerated fields hold known values. Target AI and
// language are free-form on the wire and only need to be non-empty.
func (s Settings) Validate() error {
	if !slices.Contains(Domains, s.Domain) {
		return fmt.Errorf("unknown domain %q", s.Domain)
	}
	if s.Mode != ModeDirect && s.Mode != ModeGuided {
		return fmt.Errorf("mode must be direct or guided, got %q", s.Mode)
	}
	if s.TargetAI == "" {
		return fmt.Errorf("target_ai is required")
	}
	if !slices.Contains(ExpertiseLevels, s.ExpertiseLevel) {
		return fmt.Errorf("unknown expertise level %q", s.ExpertiseLevel)
	}
	if s.Language == "" {
		return fmt.Errorf("language is required")
	}
	return nil
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Domain         *string `json:"domain,omitempty"`
	Mode           *Mode   `json:"mode,omitempty"`
	TargetAI       *string `json:"target_ai,omitempty"`
	ExpertiseLevel *string `json:"expertise_level,omitempty"`
	Language       *string `json:"language,omitempty"`
}

// Merge returns s with every non-nil field of p applied.
func (s Settings) Merge(p Patch) Settings {
	if p.Domain != nil {
		s.Domain = *p.Domain
	}
	if p.Mode != nil {
		s.Mode = *p.Mode
	}
	if p.TargetAI != nil {
		s.TargetAI = *p.TargetAI
	}
	if p.ExpertiseLevel != nil {
		s.ExpertiseLevel = *p.ExpertiseLevel
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}

// RequiresReset reports whether moving from old to next invalidates the
// backend's guided conversation: any mode switch, or a domain change while
// guided mode is active on either side.
func RequiresReset(old, next Settings) bool {
	if old.Mode != next.Mode {
		return true
	}
	return old.Domain != next.Domain && next.Mode == ModeGuided
}

// Set applies a single "key=value" assignment using the wire field names.
func (p *Patch) Set(key, value string) error {
	switch key {
	case "domain":
		p.Domain = &value
	case "mode":
		m := Mode(value)
		p.Mode = &m
	case "target_ai":
		p.TargetAI = &value
	case "expertise_level":
		p.ExpertiseLevel = &value
	case "language":
		p.Language = &value
	default:
		return fmt.Errorf("unknown setting %q", key)
	}
	return nil
}

// Options lists the accepted values of each setting.
type Options struct {
	Domains         []string `json:"domains"`
	Modes           []Mode   `json:"modes"`
	TargetAIs       []string `json:"target_ais"`
	ExpertiseLevels []string `json:"expertise_levels"`
	Languages       []string `json:"languages"`
}

// AllOptions returns the choices offered for each setting.
func AllOptions() Options {
	return Options{
		Domains:         Domains,
		Modes:           []Mode{ModeDirect, ModeGuided},
		TargetAIs:       TargetAIs,
		ExpertiseLevels: ExpertiseLevels,
		Languages:       Languages,
	}
}
