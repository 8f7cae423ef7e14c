package conversation

import (
	"encoding/json"
	"strings"
)

const (
	fallbackMessage = "Sorry, I didn't understand that."
	fallbackSpeak   = "Sorry, I didn't understand that. Can you repeat?"
)

// rawTurn mirrors the JSON the model is prompted to emit, with loose enough
// types that null and absent values survive decoding.
type rawTurn struct {
	Message string `json:"message"`
	Speak   string `json:"speak"`
	Intent  string `json:"intent"`
	Data    *struct {
		ServiceType string   `json:"service_type"`
		Date        string   `json:"date"`
		StartTime   string   `json:"start_time"`
		EndTime     string   `json:"end_time"`
		People      *float64 `json:"people"`
		Location    string   `json:"location"`
		Notes       string   `json:"notes"`
	} `json:"data"`
	MissingFields []string `json:"missing_fields"`
	Confidence    *float64 `json:"confidence"`
}

// FallbackTurn is the typed result substituted whenever a model turn cannot
// be salvaged: unknown intent, empty data, zero confidence, and a user-safe
// message asking to repeat. Callers rely on Data being fully defaulted so the
// merge step never sees absent substructure.
func FallbackTurn() TurnResult {
	return TurnResult{
		Message:       fallbackMessage,
		Speak:         fallbackSpeak,
		Intent:        IntentUnknown,
		MissingFields: []string{},
		Confidence:    0,
	}
}

// ValidateResponse normalizes a raw model payload into a strict TurnResult.
// It is total: any shape mismatch yields FallbackTurn rather than an error.
// Structural validation only; business completeness belongs to the engine.
func ValidateResponse(raw string) TurnResult {
	text := extractJSONObject(raw)
	if text == "" {
		return FallbackTurn()
	}

	var rt rawTurn
	if err := json.Unmarshal([]byte(text), &rt); err != nil {
		return FallbackTurn()
	}

	result := TurnResult{
		Message:       rt.Message,
		Speak:         rt.Speak,
		Intent:        ParseIntent(rt.Intent),
		MissingFields: rt.MissingFields,
		Confidence:    clampConfidence(rt.Confidence),
	}
	if result.Speak == "" {
		result.Speak = result.Message
	}
	if result.MissingFields == nil {
		result.MissingFields = []string{}
	}
	if rt.Data != nil {
		result.Data = Draft{
			ServiceType: rt.Data.ServiceType,
			Date:        rt.Data.Date,
			StartTime:   rt.Data.StartTime,
			EndTime:     rt.Data.EndTime,
			Location:    rt.Data.Location,
			Notes:       rt.Data.Notes,
		}
		if rt.Data.People != nil {
			people := int(*rt.Data.People)
			result.Data.People = &people
		}
	}
	return result
}

// clampConfidence pins the value to [0,1]; a missing value is neutral.
func clampConfidence(c *float64) float64 {
	if c == nil {
		return 0.5
	}
	if *c < 0 {
		return 0
	}
	if *c > 1 {
		return 1
	}
	return *c
}

// extractJSONObject pulls the outermost {...} block out of a completion,
// tolerating markdown fences and stray prose around the JSON.
func extractJSONObject(raw string) string {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "{") {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return ""
		}
		text = text[start : end+1]
	}
	return text
}
