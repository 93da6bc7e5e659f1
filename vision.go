package main

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const interpretationSystemPrompt = `You are a screen reading assistant. You are given a screenshot of the user's desktop, optionally with text extracted from it by OCR, and you explain in plain language what the user is looking at.

Respond with only a JSON object in exactly this shape:
{
  "application_name": "name of the application in focus",
  "current_context": "one or two sentences describing what is happening on screen",
  "screen_type": "desktop|browser|editor|terminal|document|dialog|other",
  "visible_elements": [{"element": "name", "content": "text or value shown", "purpose": "what it is for", "importance": "high|medium|low"}],
  "user_workflow": "what the user appears to be doing",
  "next_steps": ["likely next action"],
  "important_data": {"label": "value worth noticing"},
  "accessibility_notes": "anything relevant for a user who cannot see the screen",
  "confidence": 0.9
}`

const analysisSystemPrompt = `You are a screen analysis assistant. You are given a screenshot of the user's desktop, optionally with text extracted from it by OCR. Identify what is on screen and which actions could be taken there.

Respond with only a JSON object in exactly this shape:
{
  "screen_description": "a short description of what is on screen",
  "ui_elements": [{"element_type": "button|input|link|menu|text|icon", "description": "what it shows", "location": "where on screen", "purpose": "what it is for"}],
  "context": "what situation the screen represents",
  "suggested_actions": [{"action_type": "click|type|scroll|key|open|screenshot", "target": "what to act on", "coordinates": [x, y], "parameters": {}, "confidence": 0.9, "explanation": "why this action"}],
  "screen_type": "desktop|browser|editor|terminal|document|dialog|other",
  "confidence": 0.9
}`

// The client is built once at startup so that a missing credential fails the
// process before any capture is attempted.
var visionClient *openai.Client

// resolveAPIKey returns the vision API credential. The environment wins over
// the config file.
func resolveAPIKey() (string, error) {
	if key := os.Getenv("SCREENSEER_API_KEY"); key != "" {
		return key, nil
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key, nil
	}
	if config.APIKey != "" {
		return config.APIKey, nil
	}
	return "", fmt.Errorf("API key is not set: export SCREENSEER_API_KEY (or OPENAI_API_KEY), or set APIKey in the config file")
}

func initVisionClient() error {
	apiKey, err := resolveAPIKey()
	if err != nil {
		return err
	}

	clientConfig := openai.DefaultConfig(apiKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	visionClient = openai.NewClientWithConfig(clientConfig)
	return nil
}

func getVisionClient() (*openai.Client, error) {
	if visionClient == nil {
		if err := initVisionClient(); err != nil {
			return nil, err
		}
	}
	return visionClient, nil
}

// interpretScreen asks the model what the user is looking at. userIntent,
// when present, is a question the user typed about the screen.
func interpretScreen(ctx context.Context, pngData []byte, ocrText, userIntent string) (*Interpretation, error) {
	client, err := getVisionClient()
	if err != nil {
		return nil, err
	}

	content, err := completeWithImage(ctx, client, interpretationSystemPrompt, userMessageText(ocrText, userIntent), pngData)
	if err != nil {
		return nil, err
	}

	interp, err := parseInterpretation(content)
	if err != nil {
		log.Printf("Error parsing interpretation, keeping the raw text: %v\n", err)
		return fallbackInterpretation(content), nil
	}
	return interp, nil
}

// analyzeScreenImage asks the model for the detailed analysis with suggested
// actions.
func analyzeScreenImage(ctx context.Context, pngData []byte, ocrText string) (*ScreenAnalysis, error) {
	client, err := getVisionClient()
	if err != nil {
		return nil, err
	}

	content, err := completeWithImage(ctx, client, analysisSystemPrompt, userMessageText(ocrText, ""), pngData)
	if err != nil {
		return nil, err
	}

	analysis, err := parseScreenAnalysis(content)
	if err != nil {
		log.Printf("Error parsing analysis, keeping the raw text: %v\n", err)
		return fallbackScreenAnalysis(content), nil
	}
	return analysis, nil
}

// completeWithImage sends one chat completion with the screenshot attached
// as a base64 data URL.
func completeWithImage(ctx context.Context, client *openai.Client, systemPrompt, userText string, pngData []byte) (string, error) {
	encodedImage := base64.StdEncoding.EncodeToString(pngData)
	imageDataURL := fmt.Sprintf("data:image/png;base64,%s", encodedImage)

	parts := []openai.ChatMessagePart{}
	if userText != "" {
		parts = append(parts, openai.ChatMessagePart{
			Type: openai.ChatMessagePartTypeText,
			Text: userText,
		})
	}
	parts = append(parts, openai.ChatMessagePart{
		Type: openai.ChatMessagePartTypeImageURL,
		ImageURL: &openai.ChatMessageImageURL{
			URL: imageDataURL,
		},
	})

	messages := []openai.ChatCompletionMessage{
		{
			Role:    "system",
			Content: systemPrompt,
		},
		{
			Role:         "user",
			MultiContent: parts,
		},
	}

	req := openai.ChatCompletionRequest{
		Model:    config.Model,
		Messages: messages,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("Error sending vision request: %v", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("Error in vision response: no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// userMessageText assembles the text part sent alongside the screenshot.
func userMessageText(ocrText, userIntent string) string {
	var parts []string
	if userIntent != "" {
		parts = append(parts, fmt.Sprintf("The user asked: %s", userIntent))
	}
	if ocrText != "" {
		parts = append(parts, fmt.Sprintf("Text extracted from the screen by OCR:\n%s", ocrText))
	}
	return strings.Join(parts, "\n\n")
}
