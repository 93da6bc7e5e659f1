package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Swapped out in tests so the pipeline can run without a display, a
// tesseract install or a network connection.
var (
	timeNow         = time.Now
	captureScreenFn = captureScreen
	loadCaptureFn   = loadCapture
	extractTextFn   = extractText
	interpretFn     = interpretScreen
	analyzeImageFn  = analyzeScreenImage
)

// Report is the result of one capture-analyze cycle. Reports are printed and
// kept in the bounded in-memory history, nothing is written to disk.
type Report struct {
	ID             string          `json:"id"`
	CapturedAt     time.Time       `json:"captured_at"`
	ElapsedSeconds float64         `json:"elapsed_seconds"`
	Capture        CaptureMeta     `json:"capture"`
	UserIntent     string          `json:"user_intent,omitempty"`
	OCRText        string          `json:"ocr_text,omitempty"`
	Elements       []ScreenElement `json:"elements,omitempty"`
	Interpretation *Interpretation `json:"interpretation,omitempty"`
	Analysis       *ScreenAnalysis `json:"analysis,omitempty"`
}

// Headline is the one-line summary used by the tray and the watch log.
func (r *Report) Headline() string {
	switch {
	case r.Interpretation != nil && r.Interpretation.CurrentContext != "":
		return r.Interpretation.CurrentContext
	case r.Analysis != nil && r.Analysis.ScreenDescription != "":
		return r.Analysis.ScreenDescription
	default:
		return "No description returned"
	}
}

type analyzeOptions struct {
	intent    string
	detailed  bool
	imagePath string
}

// runAnalysis performs one capture-OCR-vision cycle and records the outcome
// with the task manager. OCR problems degrade to an image-only request,
// capture and vision problems fail the cycle.
func runAnalysis(ctx context.Context, opts analyzeOptions, progress func(TaskState)) (*Report, error) {
	start := timeNow()

	if progress != nil {
		progress(TaskStateCapturing)
	}

	var (
		capture *Capture
		err     error
	)
	if opts.imagePath != "" {
		capture, err = loadCaptureFn(opts.imagePath)
	} else {
		capture, err = captureScreenFn()
	}
	if err != nil {
		taskManager.RecordFailure()
		return nil, err
	}

	report := &Report{
		ID:         uuid.New().String(),
		CapturedAt: start,
		Capture:    capture.Meta,
		UserIntent: opts.intent,
	}

	if config.EnableOCR {
		ocr, err := extractTextFn(capture.PNG)
		if err != nil {
			log.Printf("Error extracting screen text, continuing without OCR: %v\n", err)
		} else {
			report.OCRText = ocr.Text
			report.Elements = ocr.Elements
		}
	}

	if progress != nil {
		progress(TaskStateAnalyzing)
	}

	if opts.detailed {
		analysis, err := analyzeImageFn(ctx, capture.PNG, report.OCRText)
		if err != nil {
			taskManager.RecordFailure()
			return nil, err
		}
		report.Analysis = analysis
	} else {
		interp, err := interpretFn(ctx, capture.PNG, report.OCRText, opts.intent)
		if err != nil {
			taskManager.RecordFailure()
			return nil, err
		}
		report.Interpretation = interp
	}

	report.ElapsedSeconds = timeNow().Sub(start).Seconds()
	taskManager.RecordReport(report)

	return report, nil
}

// writeReport prints the sectioned console form of a report.
func writeReport(w io.Writer, r *Report) {
	fmt.Fprintln(w, strings.Repeat("=", 50))
	fmt.Fprintln(w, "SCREEN ANALYSIS")
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if r.Capture.WindowTitle != "" {
		fmt.Fprintf(w, "Window:      %s\n", r.Capture.WindowTitle)
	}

	if interp := r.Interpretation; interp != nil {
		writeInterpretation(w, interp)
	}
	if analysis := r.Analysis; analysis != nil {
		writeScreenAnalysis(w, analysis)
	}

	if len(r.Elements) > 0 {
		fmt.Fprintf(w, "\nOCR found %d words on screen\n", len(r.Elements))
	}
	fmt.Fprintf(w, "Analyzed in %.1fs\n", r.ElapsedSeconds)
}

func writeInterpretation(w io.Writer, interp *Interpretation) {
	fmt.Fprintf(w, "Application: %s\n", interp.ApplicationName)
	fmt.Fprintf(w, "Screen type: %s\n", interp.ScreenType)
	fmt.Fprintf(w, "Context:     %s\n", interp.CurrentContext)
	if interp.UserWorkflow != "" {
		fmt.Fprintf(w, "Workflow:    %s\n", interp.UserWorkflow)
	}

	if len(interp.NextSteps) > 0 {
		fmt.Fprintln(w, "\nNext steps:")
		for i, step := range interp.NextSteps {
			fmt.Fprintf(w, "  %d. %s\n", i+1, step)
		}
	}

	if len(interp.VisibleElements) > 0 {
		fmt.Fprintln(w, "\nVisible elements:")
		for i, el := range interp.VisibleElements {
			fmt.Fprintf(w, "  %d. %s: %s\n", i+1, el.Element, el.Content)
			if el.Purpose != "" {
				fmt.Fprintf(w, "     purpose: %s, importance: %s\n", el.Purpose, el.Importance)
			}
		}
	}

	if len(interp.ImportantData) > 0 {
		fmt.Fprintln(w, "\nImportant data:")
		keys := make([]string, 0, len(interp.ImportantData))
		for k := range interp.ImportantData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(w, "  %s: %v\n", k, interp.ImportantData[k])
		}
	}

	if interp.AccessibilityNotes != "" {
		fmt.Fprintf(w, "\nAccessibility: %s\n", interp.AccessibilityNotes)
	}
	fmt.Fprintf(w, "\nConfidence: %.0f%%\n", interp.Confidence*100)
}

func writeScreenAnalysis(w io.Writer, analysis *ScreenAnalysis) {
	fmt.Fprintf(w, "Description: %s\n", analysis.ScreenDescription)
	fmt.Fprintf(w, "Screen type: %s\n", analysis.ScreenType)
	if analysis.Context != "" {
		fmt.Fprintf(w, "Context:     %s\n", analysis.Context)
	}

	if len(analysis.UIElements) > 0 {
		fmt.Fprintln(w, "\nUI elements:")
		for i, el := range analysis.UIElements {
			fmt.Fprintf(w, "  %d. [%s] %s\n", i+1, el.ElementType, el.Description)
			if el.Location != "" || el.Purpose != "" {
				fmt.Fprintf(w, "     location: %s, purpose: %s\n", el.Location, el.Purpose)
			}
		}
	}

	if len(analysis.SuggestedActions) > 0 {
		fmt.Fprintln(w, "\nSuggested actions:")
		for i, action := range analysis.SuggestedActions {
			fmt.Fprintf(w, "  %d. %s %s", i+1, action.ActionType, action.Target)
			if len(action.Coordinates) == 2 {
				fmt.Fprintf(w, " at (%d, %d)", action.Coordinates[0], action.Coordinates[1])
			}
			fmt.Fprintln(w)
			if action.Explanation != "" {
				fmt.Fprintf(w, "     %s\n", action.Explanation)
			}
		}
	}

	fmt.Fprintf(w, "\nConfidence: %.0f%%\n", analysis.Confidence*100)
}

func writeReportJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("Error encoding report: %v", err)
	}
	return nil
}
