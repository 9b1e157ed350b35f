package ai

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var ErrUnparseable = errors.New("unparseable_response")

// UnparseableError carries the raw model output so callers can return
// it for debugging, as the original listing endpoint does.
type UnparseableError struct {
	Raw string
	Msg string
}

func (e *UnparseableError) Error() string {
	return e.Msg
}

func (e *UnparseableError) Unwrap() error {
	return ErrUnparseable
}

// Fallbacks applied when the model omits or mangles a field. Repairs
// are recorded in Suggestion.Defaulted so downstream code can tell
// genuine inference from fallback.
const (
	fallbackTitle       = "Unknown Item"
	fallbackDescription = "Product description not available"
	fallbackPrice       = 25.00
	fallbackCategory    = "Fashion"
	fallbackCondition   = "Used"
)

type Suggestion struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Price       float64  `json:"price"`
	Category    string   `json:"category"`
	Condition   string   `json:"condition"`
	Defaulted   []string `json:"defaulted,omitempty"`
}

type rawSuggestion struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       json.RawMessage `json:"price"`
	Category    string          `json:"category"`
	Condition   string          `json:"condition"`
}

// ParseSuggestion extracts the first balanced {...} substring from the
// model's free-text output, parses it, and repairs missing or invalid
// fields. It either returns a fully populated Suggestion or an
// *UnparseableError; never a half-parsed record.
func ParseSuggestion(text string) (*Suggestion, error) {
	obj, ok := extractJSONObject(text)
	if !ok {
		return nil, &UnparseableError{Raw: text, Msg: "no JSON found in model response"}
	}

	var raw rawSuggestion
	if err := json.Unmarshal([]byte(obj), &raw); err != nil {
		return nil, &UnparseableError{Raw: obj, Msg: fmt.Sprintf("invalid JSON format: %v", err)}
	}

	sug := &Suggestion{
		Title:       strings.TrimSpace(raw.Title),
		Description: strings.TrimSpace(raw.Description),
		Category:    strings.TrimSpace(raw.Category),
		Condition:   strings.TrimSpace(raw.Condition),
	}
	if sug.Title == "" {
		sug.Title = fallbackTitle
		sug.Defaulted = append(sug.Defaulted, "title")
	}
	if sug.Description == "" {
		sug.Description = fallbackDescription
		sug.Defaulted = append(sug.Defaulted, "description")
	}
	// Only a JSON number greater than zero counts; a quoted "29.99" is
	// not trusted and falls back like any other bad value.
	var price float64
	if err := json.Unmarshal(raw.Price, &price); err != nil || price <= 0 {
		sug.Price = fallbackPrice
		sug.Defaulted = append(sug.Defaulted, "price")
	} else {
		sug.Price = price
	}
	if sug.Category == "" {
		sug.Category = fallbackCategory
		sug.Defaulted = append(sug.Defaulted, "category")
	}
	if sug.Condition != "New" && sug.Condition != "Used" {
		sug.Condition = fallbackCondition
		sug.Defaulted = append(sug.Defaulted, "condition")
	}
	return sug, nil
}

// extractJSONObject returns the first balanced top-level {...} in s,
// skipping braces inside JSON strings.
func extractJSONObject(s string) (string, bool) {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return "", false
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
