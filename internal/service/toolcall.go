package service

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
)

// ToolCallKind classifies model output.
type ToolCallKind int

const (
	// ToolCallNone means the text carries no tool-call marker.
	ToolCallNone ToolCallKind = iota
	// ToolCallMalformed means a marker is present but no valid call could be extracted.
	ToolCallMalformed
	// ToolCallFound means a call was extracted.
	ToolCallFound
)

// ToolCall is a parsed tool invocation request. Args is whatever the model
// put under "args" (or "arguments"), nil when absent.
type ToolCall struct {
	Name string
	Args any
}

// ToolCallParse is the result of ParseToolCall.
type ToolCallParse struct {
	Kind ToolCallKind
	Call ToolCall
	Err  error
}

var (
	toolMarkerRe  = regexp.MustCompile(`"tool"\s*:`)
	toolObjectRe  = regexp.MustCompile(`(?s)\{.*"tool"\s*:.*\}`)
	fenceMarkerRe = regexp.MustCompile("```(?:json)?")

	errNoToolObject = errors.New("no JSON object with a tool key")
	errNoToolName   = errors.New("tool name must be a non-empty string")
)

type rawToolCall struct {
	Tool      any `json:"tool"`
	Args      any `json:"args"`
	Arguments any `json:"arguments"`
}

// ParseToolCall looks for a JSON object with a "tool" key in model output.
// The widest brace span is tried first, then each object that starts
// before the marker.
func ParseToolCall(text string) ToolCallParse {
	if !toolMarkerRe.MatchString(text) {
		return ToolCallParse{Kind: ToolCallNone}
	}

	clean := fenceMarkerRe.ReplaceAllString(text, "")

	var raw rawToolCall
	err := errNoToolObject
	if span := toolObjectRe.FindString(clean); span != "" {
		err = json.Unmarshal([]byte(span), &raw)
	}
	if err != nil {
		if scanned, ok := scanToolObject(clean); ok {
			raw, err = scanned, nil
		}
	}
	if err != nil {
		return ToolCallParse{Kind: ToolCallMalformed, Err: err}
	}

	name, ok := raw.Tool.(string)
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return ToolCallParse{Kind: ToolCallMalformed, Err: errNoToolName}
	}

	args := raw.Args
	if args == nil {
		args = raw.Arguments
	}
	return ToolCallParse{Kind: ToolCallFound, Call: ToolCall{Name: name, Args: args}}
}

func scanToolObject(text string) (rawToolCall, bool) {
	marker := toolMarkerRe.FindStringIndex(text)
	if marker == nil {
		return rawToolCall{}, false
	}
	for i := 0; i < marker[0]; i++ {
		if text[i] != '{' {
			continue
		}
		var obj map[string]json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&obj); err != nil {
			continue
		}
		if _, ok := obj["tool"]; !ok {
			continue
		}
		var raw rawToolCall
		if err := remarshal(obj, &raw); err != nil {
			continue
		}
		return raw, true
	}
	return rawToolCall{}, false
}

func remarshal(in any, out any) error {
	data, err := json.Marshal(in)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
