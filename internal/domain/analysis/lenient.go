package analysis

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Decoding helpers for model output. None of them fail: a value of the wrong shape
// is coerced when it can be and left empty otherwise.

// text accepts a string, a number or bool, or an array of those (joined with ", ").
type text string

func (t *text) UnmarshalJSON(b []byte) error {
	*t = text(looseText(b))
	return nil
}

// textList accepts an array of scalars or a single scalar (a one-item list).
// Blank entries are dropped.
type textList []string

func (l *textList) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var out []string
	var items []json.RawMessage
	if len(b) > 0 && b[0] == '[' && json.Unmarshal(b, &items) == nil {
		for _, item := range items {
			if s := looseText(item); s != "" {
				out = append(out, s)
			}
		}
	} else if s := looseText(b); s != "" {
		out = []string{s}
	}
	*l = out
	return nil
}

// objectList accepts an array of objects or a single object. Elements that are not
// objects are skipped.
type objectList[T any] []T

func (l *objectList[T]) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	var out []T
	var items []json.RawMessage
	switch {
	case len(b) > 0 && b[0] == '[' && json.Unmarshal(b, &items) == nil:
		for _, item := range items {
			if item = bytes.TrimSpace(item); len(item) == 0 || item[0] != '{' {
				continue
			}
			var v T
			if json.Unmarshal(item, &v) == nil {
				out = append(out, v)
			}
		}
	case len(b) > 0 && b[0] == '{':
		var v T
		if json.Unmarshal(b, &v) == nil {
			out = append(out, v)
		}
	}
	*l = out
	return nil
}

func looseText(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return ""
	}
	switch b[0] {
	case '"':
		var s string
		if json.Unmarshal(b, &s) != nil {
			return ""
		}
		return strings.TrimSpace(s)
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(b, &items) != nil {
			return ""
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if s := looseText(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case '{', 'n':
		return ""
	default:
		return string(b)
	}
}
