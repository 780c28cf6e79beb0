package prompt

import (
	"encoding/json"
	"strings"
)

type Kind int

const (
	Failed Kind = iota
	Parsed
	Raw
)

func (k Kind) String() string {
	switch k {
	case Parsed:
		return "parsed"
	case Raw:
		return "raw"
	default:
		return "failed"
	}
}

// Outcome is the tagged result of one parsing attempt.
type Outcome struct {
	Kind    Kind
	Prompts []string
	Text    string
}

type attempt func(text string) Outcome

// attempts run in order; the first non-Failed outcome wins.
var attempts = []attempt{
	parseJSONArray,
	parseJSONFragment,
	parseRawText,
}

// Parse interprets sanitized model output as a list of prompts or a single freeform prompt.
func Parse(text string) Outcome {
	text = strings.TrimSpace(text)
	if text == "" {
		return Outcome{Kind: Failed}
	}
	for _, try := range attempts {
		if out := try(text); out.Kind != Failed {
			return out
		}
	}
	return Outcome{Kind: Failed}
}

func parseJSONArray(text string) Outcome {
	if !strings.HasPrefix(text, "[") {
		return Outcome{Kind: Failed}
	}
	return decodeStrings(text)
}

func parseJSONFragment(text string) Outcome {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return Outcome{Kind: Failed}
	}
	return decodeStrings(text[start : end+1])
}

func parseRawText(text string) Outcome {
	// Text that looks like JSON but failed to decode is not a usable prompt.
	if strings.HasPrefix(text, "[") || strings.HasPrefix(text, "{") {
		return Outcome{Kind: Failed}
	}
	raw := unquote(text)
	if raw == "" {
		return Outcome{Kind: Failed}
	}
	return Outcome{Kind: Raw, Text: raw}
}

func decodeStrings(fragment string) Outcome {
	var items []string
	if err := json.Unmarshal([]byte(fragment), &items); err != nil {
		return Outcome{Kind: Failed}
	}

	prompts := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		prompts = append(prompts, item)
	}
	if len(prompts) == 0 {
		return Outcome{Kind: Failed}
	}
	return Outcome{Kind: Parsed, Prompts: prompts}
}

func unquote(text string) string {
	text = strings.TrimSpace(text)
	if len(text) >= 2 {
		first, last := text[0], text[len(text)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			text = text[1 : len(text)-1]
		}
	}
	return strings.TrimSpace(text)
}
