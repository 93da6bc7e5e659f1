package main

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/otiai10/gosseract"
)

// ScreenElement is one word found on screen with its pixel location. The
// center point is what an automation would aim at.
type ScreenElement struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
	X          int     `json:"x"`
	Y          int     `json:"y"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
	CenterX    int     `json:"center_x"`
	CenterY    int     `json:"center_y"`
}

type OCRResult struct {
	Text     string          `json:"text"`
	Elements []ScreenElement `json:"elements"`
}

// extractText runs tesseract over the capture and returns the recognized
// text along with per-word elements above the confidence floor.
func extractText(pngData []byte) (*OCRResult, error) {
	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(config.OCRLanguage); err != nil {
		return nil, fmt.Errorf("Error setting OCR language: %v", err)
	}
	if err := client.SetImageFromBytes(pngData); err != nil {
		return nil, fmt.Errorf("Error loading image for OCR: %v", err)
	}

	text, err := client.Text()
	if err != nil {
		return nil, fmt.Errorf("Error running OCR: %v", err)
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("Error reading OCR word boxes: %v", err)
	}

	return &OCRResult{
		Text:     strings.TrimSpace(text),
		Elements: buildElements(boxes, config.MinWordConf),
	}, nil
}

// buildElements filters word boxes to those worth keeping. Tesseract reports
// confidence on a 0-100 scale, elements carry it normalized to 0-1.
func buildElements(boxes []gosseract.BoundingBox, minConf float64) []ScreenElement {
	elements := make([]ScreenElement, 0, len(boxes))
	for _, box := range boxes {
		word := strings.TrimSpace(box.Word)
		conf := box.Confidence / 100
		if word == "" || conf <= minConf {
			continue
		}

		r := box.Box
		elements = append(elements, ScreenElement{
			Text:       word,
			Confidence: conf,
			X:          r.Min.X,
			Y:          r.Min.Y,
			Width:      r.Dx(),
			Height:     r.Dy(),
			CenterX:    r.Min.X + r.Dx()/2,
			CenterY:    r.Min.Y + r.Dy()/2,
		})
	}
	return elements
}

// tesseractAvailable reports whether the tesseract binary can be found.
func tesseractAvailable() bool {
	_, err := exec.LookPath("tesseract")
	return err == nil
}
