package model

import (
	"bytes"
	"encoding/json"
	"strings"
)

// StringList is a list of strings that also accepts a single string, null,
// or a list holding non-string values, which are kept as their JSON text
type StringList []string

// UnmarshalJSON implements json.Unmarshaler
func (l *StringList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*l = nil
	case data[0] == '[':
		var items []json.RawMessage
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		out := make(StringList, 0, len(items))
		for _, item := range items {
			if s := text(item); s != "" {
				out = append(out, s)
			}
		}
		*l = out
	default:
		if s := text(data); s != "" {
			*l = StringList{s}
		} else {
			*l = nil
		}
	}
	return nil
}

// TechStack maps a role (frontend, backend, ...) to the technology filling
// it. Values that are not strings are flattened: lists are joined with ", ",
// anything else keeps its JSON text.
type TechStack map[string]string

// UnmarshalJSON implements json.Unmarshaler
func (t *TechStack) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*t = nil
	case data[0] == '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(data, &fields); err != nil {
			return err
		}
		out := make(TechStack, len(fields))
		for role, v := range fields {
			out[role] = text(v)
		}
		*t = out
	default:
		// No roles given, e.g. ["React", "Go"] or "MERN"
		if s := text(data); s != "" {
			*t = TechStack{"stack": s}
		} else {
			*t = nil
		}
	}
	return nil
}

// text renders a raw JSON value as display text
func text(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}

	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			return s
		}
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(raw, &items); err == nil {
			parts := make([]string, 0, len(items))
			for _, item := range items {
				if s := text(item); s != "" {
					parts = append(parts, s)
				}
			}
			return strings.Join(parts, ", ")
		}
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
