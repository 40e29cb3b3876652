package llm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// maxPromptText is counted in runes.
const maxPromptText = 1000

// Classification is the model's pick for one question.
type Classification struct {
	Category   string
	Confidence float64
}

type classificationPayload struct {
	Category   string          `json:"category"`
	Confidence json.RawMessage `json:"confidence"`
}

// BuildClassificationPrompt asks for a single label from labels as a JSON object.
func BuildClassificationPrompt(text string, labels []string) string {
	if runes := []rune(text); len(runes) > maxPromptText {
		text = string(runes[:maxPromptText])
	}
	var b strings.Builder
	b.WriteString("You classify student questions about a college (NIAT). ")
	b.WriteString("Pick exactly one category from this list: ")
	b.WriteString(strings.Join(labels, ", "))
	b.WriteString(". Respond with only a JSON object with two keys: ")
	b.WriteString(`"category" (copied exactly from the list) and "confidence" (a number between 0 and 1). `)
	b.WriteString("Do not add any other text.\n\nQuestion: ")
	b.WriteString(text)
	return b.String()
}

// ParseClassification decodes the model reply. Code fences and surrounding
// chatter are tolerated. Unknown categories map to fallback and confidence is
// clamped to [0, 1].
func ParseClassification(reply string, labels []string, fallback string) (Classification, error) {
	raw := stripCodeFences(reply)
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return Classification{}, fmt.Errorf("no JSON object in LLM reply")
	}

	var payload classificationPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return Classification{}, fmt.Errorf("failed to unmarshal LLM reply: %w", err)
	}

	result := Classification{Category: fallback}
	wanted := strings.TrimSpace(payload.Category)
	for _, label := range labels {
		if strings.EqualFold(label, wanted) {
			result.Category = label
			break
		}
	}

	confidence, err := parseConfidence(payload.Confidence)
	if err != nil {
		return Classification{}, err
	}
	result.Confidence = clamp(confidence)
	return result, nil
}

func stripCodeFences(reply string) string {
	s := strings.TrimSpace(reply)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.Index(s, "\n"); nl >= 0 {
		s = s[nl+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func parseConfidence(raw json.RawMessage) (float64, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return 0, nil
	}
	var number float64
	if err := json.Unmarshal(raw, &number); err == nil {
		return number, nil
	}
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return 0, fmt.Errorf("invalid confidence %s", string(raw))
	}
	number, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid confidence %q", text)
	}
	return number, nil
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
