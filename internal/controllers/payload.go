package controllers

import (
	"math"
	"strconv"
	"strings"
)

// payload is a decoded JSON object.
type payload map[string]interface{}

func (p payload) has(key string) bool {
	_, ok := p[key]
	return ok
}

// truthy treats missing, null, empty strings, zero and false as absent.
func (p payload) truthy(key string) bool {
	switch v := p[key].(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(v) != ""
	case float64:
		return v != 0
	case bool:
		return v
	default:
		return true
	}
}

// firstMissing returns the first key that is not truthy.
func (p payload) firstMissing(keys ...string) string {
	for _, k := range keys {
		if !p.truthy(k) {
			return k
		}
	}
	return ""
}

// str returns the trimmed string at key; ok is false when the value is
// present but not a string.
func (p payload) str(key string) (string, bool) {
	switch v := p[key].(type) {
	case nil:
		return "", true
	case string:
		return strings.TrimSpace(v), true
	default:
		return "", false
	}
}

// optStr is str for nullable columns: nil when absent, null or empty.
func (p payload) optStr(key string) (*string, bool) {
	s, ok := p.str(key)
	if !ok || s == "" {
		return nil, ok
	}
	return &s, true
}

// number accepts JSON numbers and numeric strings.
func (p payload) number(key string) (float64, bool) {
	switch v := p[key].(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func (p payload) integer(key string) (int, bool) {
	f, ok := p.number(key)
	if !ok || f != math.Trunc(f) {
		return 0, false
	}
	return int(f), true
}

// id reads a positive integer id given as a number or string.
func (p payload) id(key string) (uint, bool) {
	n, ok := p.integer(key)
	if !ok || n <= 0 {
		return 0, false
	}
	return uint(n), true
}

func (p payload) boolean(key string) (bool, bool) {
	switch v := p[key].(type) {
	case bool:
		return v, true
	case string:
		b, err := strconv.ParseBool(v)
		return b, err == nil
	default:
		return false, false
	}
}

// stringList reads an array of strings.
func (p payload) stringList(key string) ([]string, bool) {
	raw, ok := p[key].([]interface{})
	if !ok {
		return nil, p[key] == nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, false
		}
		out = append(out, s)
	}
	return out, true
}
