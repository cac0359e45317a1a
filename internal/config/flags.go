package config

// Flags holds command-line overrides. Nil fields were not set and leave
// the loaded value untouched; flags sit above the environment.
type Flags struct {
	APIBaseURL *string
	LogLevel   *string
	MirrorAddr *string
}

// Apply overlays the set flags onto cfg and re-validates the result.
func (f Flags) Apply(cfg *Config) error {
	if f.APIBaseURL != nil {
		cfg.API.BaseURL = *f.APIBaseURL
	}
	if f.LogLevel != nil {
		cfg.Logging.Level = *f.LogLevel
	}
	if f.MirrorAddr != nil {
		cfg.Mirror.Addr = *f.MirrorAddr
	}
	return validate(cfg)
}
