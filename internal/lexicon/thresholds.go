package lexicon

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Thresholds are the empirically tuned cutoffs used by the OCR heuristics.
// They are not principled values; override them from a YAML file to tune
// reconstruction without touching control flow.
type Thresholds struct {
	// Contact-name candidates must be roughly centered.
	NameMinMidX float64 `yaml:"name_min_mid_x"`
	NameMaxMidX float64 `yaml:"name_max_mid_x"`
	NameMaxWords int    `yaml:"name_max_words"`
	NameMaxChars int    `yaml:"name_max_chars"`

	// PhoneMinDigits is the digit count a phone-shaped fallback name needs.
	PhoneMinDigits int `yaml:"phone_min_digits"`

	// Lines centered right of YouMinMidX are the user's own bubbles.
	YouMinMidX float64 `yaml:"you_min_mid_x"`

	// A line within the first TopLineWindow lines of a screenshot with more
	// than TopLineMaxWords words is treated as cut off by the screen edge.
	TopLineWindow   int `yaml:"top_line_window"`
	TopLineMaxWords int `yaml:"top_line_max_words"`

	// Letterless tokens this short are stray OCR noise.
	StrayMaxChars int `yaml:"stray_max_chars"`

	// TimestampStep separates consecutive synthetic message timestamps.
	TimestampStep time.Duration `yaml:"timestamp_step"`

	// ExtraNoise extends the built-in noise lexicon.
	ExtraNoise []string `yaml:"extra_noise,omitempty"`
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NameMinMidX:     0.2,
		NameMaxMidX:     0.8,
		NameMaxWords:    3,
		NameMaxChars:    30,
		PhoneMinDigits:  5,
		YouMinMidX:      0.6,
		TopLineWindow:   2,
		TopLineMaxWords: 5,
		StrayMaxChars:   3,
		TimestampStep:   100 * time.Millisecond,
	}
}

// LoadThresholds reads overrides from a YAML file on top of the defaults.
// An empty path returns the defaults.
func LoadThresholds(path string) (Thresholds, error) {
	t := DefaultThresholds()
	if path == "" {
		return t, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read thresholds: %w", err)
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return t, fmt.Errorf("parse thresholds: %w", err)
	}
	if t.NameMinMidX > t.NameMaxMidX {
		return t, fmt.Errorf("invalid thresholds: name_min_mid_x %.2f > name_max_mid_x %.2f", t.NameMinMidX, t.NameMaxMidX)
	}
	if t.TimestampStep <= 0 {
		return t, fmt.Errorf("invalid thresholds: timestamp_step must be positive")
	}
	return t, nil
}
