package guard

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rules is the pattern set a Guard is compiled from.
type Rules struct {
	SecretPatterns   []string `yaml:"secret_patterns"`
	LeakPhrases      []string `yaml:"leak_phrases"`
	InjectionPhrases []string `yaml:"injection_phrases"`
	TraversalMarkers []string `yaml:"traversal_markers"`
}

// DefaultRules returns the built-in rule set.
func DefaultRules() Rules {
	return Rules{
		SecretPatterns: []string{
			`AIza[0-9A-Za-z\-_]{35}`,
			`gsk[-_][A-Za-z0-9]{48}`,
			`\bsk-(?:proj-)?[A-Za-z0-9_\-]{32,}`,
			`postgres(?:ql)?://[^@\s]+@\S+`,
		},
		LeakPhrases: []string{
			"Jesteś Inteligentnym Asystentem Zakupowym",
			"SCENARIUSZ 1",
			"SCENARIUSZ 2",
			"SCENARIUSZ 3",
			"ignore previous instructions",
			"system prompt",
		},
		InjectionPhrases: []string{
			"ignore previous",
			"zapomnij instrukcje",
			"system prompt",
			"reveal your",
			"reveal the system",
			"reveal the prompt",
			"reveal instructions",
		},
		TraversalMarkers: []string{
			"../",
			`..\`,
			"/etc/",
			`C:\Windows`,
		},
	}
}

// LoadRules reads a YAML rules file and appends its entries to the defaults.
// An empty path returns the defaults.
func LoadRules(path string) (Rules, error) {
	rules := DefaultRules()
	if path == "" {
		return rules, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, fmt.Errorf("failed to read guard rules: %w", err)
	}

	var extra Rules
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return Rules{}, fmt.Errorf("failed to parse guard rules: %w", err)
	}

	rules.SecretPatterns = append(rules.SecretPatterns, extra.SecretPatterns...)
	rules.LeakPhrases = append(rules.LeakPhrases, extra.LeakPhrases...)
	rules.InjectionPhrases = append(rules.InjectionPhrases, extra.InjectionPhrases...)
	rules.TraversalMarkers = append(rules.TraversalMarkers, extra.TraversalMarkers...)
	return rules, nil
}
