package session

import "time"

// #region config
// Config holds the timing and fixed texts of a conversation.
type Config struct {
	ThinkingLabel  string
	ThinkingPeriod time.Duration
	MinLoading     time.Duration
	TypeInterval   time.Duration
	UnmatchedText  string
	UnpairedText   string
}

// DefaultConfig returns the stock timings: a 500ms thinking tick, a one
// second loading floor and 50ms per typed character.
func DefaultConfig() Config {
	return Config{
		ThinkingLabel:  "Thinking",
		ThinkingPeriod: 500 * time.Millisecond,
		MinLoading:     time.Second,
		TypeInterval:   50 * time.Millisecond,
		UnmatchedText:  "No matching scene could be found.",
		UnpairedText:   "There is no next scene.",
	}
}

// withDefaults fills zero fields from DefaultConfig. A zero MinLoading is
// kept since it is a meaningful setting.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.ThinkingLabel == "" {
		c.ThinkingLabel = def.ThinkingLabel
	}
	if c.ThinkingPeriod <= 0 {
		c.ThinkingPeriod = def.ThinkingPeriod
	}
	if c.MinLoading < 0 {
		c.MinLoading = 0
	}
	if c.TypeInterval <= 0 {
		c.TypeInterval = def.TypeInterval
	}
	if c.UnmatchedText == "" {
		c.UnmatchedText = def.UnmatchedText
	}
	if c.UnpairedText == "" {
		c.UnpairedText = def.UnpairedText
	}
	return c
}

// #endregion config
