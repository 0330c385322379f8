// Package guard filters chat traffic for injected instructions, leaked
// system-prompt text, secrets and path-traversal strings.
//
// A Guard is immutable once built and safe for concurrent use. None of its
// checks perform I/O or return errors.
package guard

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// RedactionToken replaces every secret-shaped substring.
const RedactionToken = "[REDACTED_SECRET]"

var (
	fencedBlockRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)\\s*```")
	objectRe      = regexp.MustCompile(`(?s)\{.*\}`)
)

// Verdict is the aggregated outcome of a guard pass over one text.
type Verdict struct {
	BlockedInput bool
	Leaked       bool
	Sanitized    string
}

// Guard holds compiled rules.
type Guard struct {
	secrets   []*regexp.Regexp
	leak      []string
	injection []string
	traversal []string
}

// New compiles rules into a Guard.
func New(rules Rules) (*Guard, error) {
	g := &Guard{
		secrets:   make([]*regexp.Regexp, 0, len(rules.SecretPatterns)),
		leak:      lowerAll(rules.LeakPhrases),
		injection: lowerAll(rules.InjectionPhrases),
		traversal: lowerAll(rules.TraversalMarkers),
	}
	for _, p := range rules.SecretPatterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid secret pattern %q: %w", p, err)
		}
		g.secrets = append(g.secrets, re)
	}
	return g, nil
}

// Default returns a Guard built from DefaultRules.
func Default() *Guard {
	g, err := New(DefaultRules())
	if err != nil {
		panic(err)
	}
	return g
}

// SanitizeOutput replaces every secret-pattern match with RedactionToken.
// Patterns are applied in order.
func (g *Guard) SanitizeOutput(text string) string {
	for _, re := range g.secrets {
		text = re.ReplaceAllLiteralString(text, RedactionToken)
	}
	return text
}

// CheckPromptLeakage reports whether text echoes system-prompt phrases.
func (g *Guard) CheckPromptLeakage(text string) bool {
	return containsAny(strings.ToLower(text), g.leak)
}

// CheckPathTraversal reports whether text carries a traversal or system path marker.
func (g *Guard) CheckPathTraversal(text string) bool {
	return containsAny(strings.ToLower(text), g.traversal)
}

// CheckInjection reports whether inbound text carries an instruction-override phrase.
func (g *Guard) CheckInjection(text string) bool {
	return containsAny(strings.ToLower(text), g.injection)
}

// CheckInbound evaluates a user message before it reaches any model.
func (g *Guard) CheckInbound(text string) Verdict {
	return Verdict{
		BlockedInput: g.CheckPathTraversal(text) || g.CheckInjection(text),
		Sanitized:    g.SanitizeOutput(text),
	}
}

// CheckOutbound evaluates model output before it leaves the service.
func (g *Guard) CheckOutbound(text string) Verdict {
	return Verdict{
		Leaked:    g.CheckPromptLeakage(text),
		Sanitized: g.SanitizeOutput(text),
	}
}

// ValidateJSONOnly strips a fenced code block when present and parses the
// remainder as strict JSON. The second result is false when parsing fails.
func ValidateJSONOnly(text string) (any, bool) {
	candidate := strings.TrimSpace(text)
	if m := fencedBlockRe.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}

	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, false
	}
	return v, true
}

// ExtractObject returns the first JSON object found in text. It tries strict
// parsing first, then the widest brace-delimited span.
func ExtractObject(text string) (map[string]any, bool) {
	if v, ok := ValidateJSONOnly(text); ok {
		if obj, ok := v.(map[string]any); ok {
			return obj, true
		}
	}

	span := objectRe.FindString(text)
	if span == "" {
		return nil, false
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(span), &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
