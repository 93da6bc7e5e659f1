package main

import (
	"encoding/json"
	"fmt"
	"strings"
)

// UIElement is one interactive element the model identified on screen.
type UIElement struct {
	ElementType string `json:"element_type"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Purpose     string `json:"purpose"`
}

// SuggestedAction is a follow-up the model proposes for the current screen.
// Coordinates, when present, are pixel positions in the captured image.
type SuggestedAction struct {
	ActionType  string         `json:"action_type"`
	Target      string         `json:"target"`
	Coordinates []int          `json:"coordinates,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
	Confidence  float64        `json:"confidence"`
	Explanation string         `json:"explanation,omitempty"`
}

// ScreenAnalysis is the detailed response: what is on screen plus actions
// that could be taken there.
type ScreenAnalysis struct {
	ScreenDescription string            `json:"screen_description"`
	UIElements        []UIElement       `json:"ui_elements"`
	Context           string            `json:"context"`
	SuggestedActions  []SuggestedAction `json:"suggested_actions"`
	ScreenType        string            `json:"screen_type"`
	Confidence        float64           `json:"confidence"`
}

// VisibleElement is one thing the interpretation calls out on screen.
type VisibleElement struct {
	Element    string `json:"element"`
	Content    string `json:"content"`
	Purpose    string `json:"purpose"`
	Importance string `json:"importance"`
}

// Interpretation is the conversational response: what the user is looking at
// and what they might do next.
type Interpretation struct {
	ApplicationName    string           `json:"application_name"`
	CurrentContext     string           `json:"current_context"`
	ScreenType         string           `json:"screen_type"`
	VisibleElements    []VisibleElement `json:"visible_elements"`
	UserWorkflow       string           `json:"user_workflow"`
	NextSteps          []string         `json:"next_steps"`
	ImportantData      map[string]any   `json:"important_data,omitempty"`
	AccessibilityNotes string           `json:"accessibility_notes,omitempty"`
	Confidence         float64          `json:"confidence"`
}

// stripJSONFence extracts a JSON payload from a markdown code fence. Vision
// models frequently wrap their output in ```json blocks even when told not
// to, sometimes with prose around the fence.
func stripJSONFence(s string) string {
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	} else if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
	}
	return strings.TrimSpace(s)
}

func parseInterpretation(content string) (*Interpretation, error) {
	var interp Interpretation
	if err := json.Unmarshal([]byte(stripJSONFence(content)), &interp); err != nil {
		return nil, fmt.Errorf("Error parsing interpretation response: %v", err)
	}
	return &interp, nil
}

func parseScreenAnalysis(content string) (*ScreenAnalysis, error) {
	var analysis ScreenAnalysis
	if err := json.Unmarshal([]byte(stripJSONFence(content)), &analysis); err != nil {
		return nil, fmt.Errorf("Error parsing analysis response: %v", err)
	}
	return &analysis, nil
}

// fallbackInterpretation keeps the raw model text usable when it is not the
// JSON document we asked for.
func fallbackInterpretation(content string) *Interpretation {
	return &Interpretation{
		ApplicationName: "Unknown",
		CurrentContext:  truncate(strings.TrimSpace(content), 200),
		ScreenType:      "unknown",
		UserWorkflow:    "Unable to determine",
		Confidence:      0.3,
	}
}

func fallbackScreenAnalysis(content string) *ScreenAnalysis {
	return &ScreenAnalysis{
		ScreenDescription: truncate(strings.TrimSpace(content), 200),
		Context:           "Automatic analysis unavailable",
		ScreenType:        "unknown",
		SuggestedActions: []SuggestedAction{{
			ActionType:  "screenshot",
			Target:      "full_screen",
			Confidence:  1,
			Explanation: "Capture again once the screen settles",
		}},
		Confidence: 0.3,
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
