package usecase

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cartwise/backend/internal/domain"
	"github.com/tidwall/gjson"
)

// modelOutput is the JSON contract the language model must honour
type modelOutput struct {
	Action string `json:"action"`
	Item   string `json:"item"`
	Reply  string `json:"reply"`
}

// parseModelOutput tries a strict decode first and falls back to a lenient
// extraction. Model output is untrusted: every field must be a string.
func parseModelOutput(raw string) (domain.ResolvedAction, error) {
	out, err := parseStrict(raw)
	if err == nil {
		return normalizeOutput(out), nil
	}
	out, lenientErr := parseLenient(raw)
	if lenientErr == nil {
		return normalizeOutput(out), nil
	}
	return domain.ResolvedAction{}, fmt.Errorf("%w: strict: %v; lenient: %v", domain.ErrInvalidModelOutput, err, lenientErr)
}

// parseStrict accepts exactly one JSON object with only the contract keys
func parseStrict(raw string) (modelOutput, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "{") {
		return modelOutput{}, errors.New("output is not a JSON object")
	}

	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.DisallowUnknownFields()
	var out modelOutput
	if err := dec.Decode(&out); err != nil {
		return modelOutput{}, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return modelOutput{}, errors.New("trailing content after JSON object")
	}
	return out, nil
}

// parseLenient strips markdown fences and surrounding prose, then reads the
// outermost object. Extra keys are ignored; null counts as empty.
func parseLenient(raw string) (modelOutput, error) {
	text := stripCodeFence(raw)
	if !strings.Contains(text, "{") {
		return modelOutput{}, errors.New("no JSON object found")
	}
	candidate, ok := firstObject(text)
	if !ok {
		return modelOutput{}, errors.New("invalid JSON object")
	}
	obj := gjson.Parse(candidate)

	var out modelOutput
	fields := map[string]*string{"action": &out.Action, "item": &out.Item, "reply": &out.Reply}
	for key, dst := range fields {
		v := obj.Get(key)
		switch v.Type {
		case gjson.String:
			*dst = v.String()
		case gjson.Null:
		default:
			return modelOutput{}, fmt.Errorf("field %q must be a string", key)
		}
	}
	return out, nil
}

// firstObject returns the first balanced {...} span in text that is valid JSON.
// Braces inside string literals are skipped.
func firstObject(text string) (string, bool) {
	for start := strings.Index(text, "{"); start >= 0; {
		if end := matchingBrace(text, start); end > start {
			candidate := text[start : end+1]
			if gjson.Valid(candidate) {
				return candidate, true
			}
		}
		next := strings.Index(text[start+1:], "{")
		if next < 0 {
			break
		}
		start += next + 1
	}
	return "", false
}

func matchingBrace(text string, start int) int {
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

func normalizeOutput(out modelOutput) domain.ResolvedAction {
	return domain.ResolvedAction{
		Action: domain.ParseAction(strings.ToLower(strings.TrimSpace(out.Action))),
		Item:   strings.TrimSpace(out.Item),
		Reply:  strings.TrimSpace(out.Reply),
	}
}
