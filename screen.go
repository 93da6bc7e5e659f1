package main

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"
)

// CaptureMeta records where a capture came from.
type CaptureMeta struct {
	Mode        string    `json:"mode"`
	Display     int       `json:"display"`
	Width       int       `json:"width"`
	Height      int       `json:"height"`
	WindowTitle string    `json:"window_title,omitempty"`
	TakenAt     time.Time `json:"taken_at"`
}

// Capture is one screenshot held in memory for the duration of a single
// analysis and discarded afterwards.
type Capture struct {
	PNG  []byte
	Meta CaptureMeta
}

// captureScreen grabs the screen according to the configured capture mode.
func captureScreen() (*Capture, error) {
	switch config.CaptureMode {
	case CaptureModeWindow:
		return captureActiveWindow()
	case CaptureModeRegion:
		return captureRegion(config.RegionX, config.RegionY, config.RegionWidth, config.RegionHeight)
	default:
		return captureDisplay(config.Display)
	}
}

func captureDisplay(index int) (*Capture, error) {
	n := screenshot.NumActiveDisplays()
	if n <= 0 {
		return nil, fmt.Errorf("Error capturing screen: no active displays")
	}
	if index < 0 || index >= n {
		return nil, fmt.Errorf("Error capturing screen: display %d out of range (0-%d)", index, n-1)
	}

	bounds := screenshot.GetDisplayBounds(index)
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("Error capturing display %d: %v", index, err)
	}

	return newCapture(img, CaptureMeta{Mode: CaptureModeScreen, Display: index})
}

// captureActiveWindow grabs the full frame and records the title of the
// focused window. Cropping to the window frame is not reliable across
// platforms, so the title is the window-specific datum.
func captureActiveWindow() (*Capture, error) {
	img := robotgo.CaptureImg()
	if img == nil {
		return nil, fmt.Errorf("Error capturing screen: no image returned")
	}
	return newCapture(img, CaptureMeta{Mode: CaptureModeWindow, WindowTitle: robotgo.GetTitle()})
}

// captureRegion grabs a fixed rectangle in screen coordinates.
func captureRegion(x, y, w, h int) (*Capture, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("Error capturing region: width and height must be positive")
	}
	img, err := screenshot.CaptureRect(image.Rect(x, y, x+w, y+h))
	if err != nil {
		return nil, fmt.Errorf("Error capturing region: %v", err)
	}
	return newCapture(img, CaptureMeta{Mode: CaptureModeRegion})
}

// loadCapture reads a previously saved PNG instead of touching the screen.
func loadCapture(path string) (*Capture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Error reading image file: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("Error decoding image file: %v", err)
	}
	return &Capture{
		PNG: data,
		Meta: CaptureMeta{
			Mode:    "file",
			Width:   cfg.Width,
			Height:  cfg.Height,
			TakenAt: timeNow(),
		},
	}, nil
}

func newCapture(img image.Image, meta CaptureMeta) (*Capture, error) {
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	meta.Width = img.Bounds().Dx()
	meta.Height = img.Bounds().Dy()
	meta.TakenAt = timeNow()

	if config.SaveCaptures {
		if err := saveCapture(img); err != nil {
			log.Printf("Error saving capture: %v\n", err)
		}
	}

	return &Capture{PNG: data, Meta: meta}, nil
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("Error encoding PNG: %v", err)
	}
	return buf.Bytes(), nil
}

// saveCapture writes the screenshot to the captures directory for debugging.
func saveCapture(img image.Image) error {
	dir := config.CapturesDir
	if dir == "" {
		dir = "captures"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("Error creating captures directory: %v", err)
	}

	path := filepath.Join(dir, fmt.Sprintf("screenseer-%d.png", timeNow().Unix()))
	if err := robotgo.Save(img, path); err != nil {
		return fmt.Errorf("Error saving screenshot: %v", err)
	}
	return nil
}
