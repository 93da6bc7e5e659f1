package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
)

// Capture modes, selecting what part of the screen each analysis looks at.
const (
	CaptureModeScreen = "screen"
	CaptureModeWindow = "window"
	CaptureModeRegion = "region"
)

type Config struct {
	APIKey        string
	BaseURL       string
	Model         string
	CaptureMode   string
	Display       int
	RegionX       int
	RegionY       int
	RegionWidth   int
	RegionHeight  int
	EnableOCR     bool
	OCRLanguage   string
	MinWordConf   float64
	SaveCaptures  bool
	CapturesDir   string
	ListenAddress string
	WatchInterval int
}

var config = Config{
	Model:         "gpt-4o",
	CaptureMode:   CaptureModeScreen,
	OCRLanguage:   "eng",
	MinWordConf:   0.3,
	ListenAddress: "localhost:9898",
	WatchInterval: 30,
}

// set by the --config flag
var configPathOverride string

func getConfigPath() (string, error) {
	if configPathOverride != "" {
		return configPathOverride, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("Error finding user config directory: %v", err)
	}
	return filepath.Join(configDir, "screenseer-config.json"), nil
}

// readConfig loads the config file over the defaults. A missing file is not
// an error, the defaults stand.
func readConfig() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("Error getting config path: %v", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("Error reading config file: %v", err)
	}

	if err := json.Unmarshal(data, &config); err != nil {
		return fmt.Errorf("Error unmarshalling config file: %v", err)
	}

	log.Printf("Configuration loaded: %s\n", configPath)

	return nil
}

func writeConfig() error {
	configPath, err := getConfigPath()
	if err != nil {
		return fmt.Errorf("Error getting config path: %v", err)
	}
	configFile, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("Error creating config file: %v", err)
	}
	defer configFile.Close()

	byteValue, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("Error marshalling config to JSON: %v", err)
	}

	if _, err := configFile.Write(byteValue); err != nil {
		return fmt.Errorf("Error writing to config file: %v", err)
	}

	log.Printf("Config file has been written: %s\n", configPath)

	return nil
}

func validateConfig() error {
	switch config.CaptureMode {
	case CaptureModeScreen, CaptureModeWindow, CaptureModeRegion:
	default:
		return fmt.Errorf("Invalid capture mode %q: expected screen, window or region", config.CaptureMode)
	}
	if config.CaptureMode == CaptureModeRegion && (config.RegionWidth <= 0 || config.RegionHeight <= 0) {
		return fmt.Errorf("Region capture requires RegionWidth and RegionHeight to be set")
	}
	if config.Display < 0 {
		return fmt.Errorf("Display index must not be negative, got %d", config.Display)
	}
	if config.MinWordConf < 0 || config.MinWordConf > 1 {
		return fmt.Errorf("MinWordConf must be between 0 and 1, got %g", config.MinWordConf)
	}
	if config.WatchInterval <= 0 {
		return fmt.Errorf("WatchInterval must be positive, got %d", config.WatchInterval)
	}
	return nil
}
