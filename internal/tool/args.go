package tool

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

func stringArg(raw map[string]any, key string) (string, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%s is required", key)
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case float64, json.Number:
		return fmt.Sprint(s), nil
	default:
		return "", fmt.Errorf("%s must be a string", key)
	}
}

func floatArg(raw map[string]any, key string) (float64, error) {
	v, ok := raw[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%s is required", key)
	}
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(n), ",", "."), 64)
		if err != nil {
			return 0, fmt.Errorf("%s must be a number", key)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%s must be a number", key)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%s must be a finite number", key)
	}
	return f, nil
}

func intArg(raw map[string]any, key string) (int, error) {
	f, err := floatArg(raw, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%s must be an integer", key)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%s is out of range", key)
	}
	return int(f), nil
}
