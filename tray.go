package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/getlantern/systray"
	"github.com/spf13/cobra"
	"golang.design/x/hotkey"
)

var trayCmd = &cobra.Command{
	Use:   "tray",
	Short: "Run screenseer from the system tray",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initVisionClient(); err != nil {
			return err
		}

		// leave the tray loop on the interrupt signal
		go func() {
			<-cmd.Context().Done()
			systray.Quit()
		}()

		systray.Run(onTrayReady, func() {
			fmt.Println("Exiting...")
		})
		return nil
	},
}

func init() {
	rootCmd.AddCommand(trayCmd)
}

func onTrayReady() {
	systray.SetIcon(iconIdle)
	systray.SetTitle("screenseer")
	systray.SetTooltip("Ready")

	mAnalyze := systray.AddMenuItem("Analyze Screen", "Capture and describe the current screen")
	mAbort := systray.AddMenuItem("Cancel Analysis", "Cancel the analysis in progress")
	mAbort.Hide()

	mWatch := systray.AddMenuItemCheckbox("Watch Screen", "Analyze the screen on an interval", false)
	mOCR := systray.AddMenuItemCheckbox("Include OCR Text", "Attach locally extracted text to requests", config.EnableOCR)
	mExit := systray.AddMenuItem("Exit", "Exit the application")

	// setup hotkeys
	hk := hotkey.New([]hotkey.Modifier{hotkey.ModCtrl, hotkey.ModShift}, hotkey.KeyS)
	if err := hk.Register(); err != nil {
		log.Printf("Error registering hotkey: %v\n", err)
	}

	go func() {
		for {
			select {
			case state := <-taskManager.stateCh:
				switch state {
				case TaskStateCapturing:
					systray.SetIcon(iconCapturing)
					systray.SetTooltip("Capturing screen...")
					mAbort.Show()
				case TaskStateAnalyzing:
					systray.SetIcon(iconAnalyzing)
					systray.SetTooltip("Analyzing screen...")
				default:
					systray.SetIcon(iconIdle)
					systray.SetTooltip("Ready")
					mAbort.Hide()
				}

			case report := <-taskManager.reportRes:
				fmt.Printf("Screen: %s\n", report.Headline())

			case <-hk.Keydown():
				taskManager.StartNewTask("")
			case <-mAnalyze.ClickedCh:
				taskManager.StartNewTask("")
			case <-mAbort.ClickedCh:
				taskManager.Abort()

			case <-mWatch.ClickedCh:
				if mWatch.Checked() {
					mWatch.Uncheck()
					monitor.Stop()
				} else {
					interval := time.Duration(config.WatchInterval) * time.Second
					if err := monitor.Start(context.Background(), interval); err != nil {
						fmt.Fprintf(os.Stderr, "Error starting watch: %v\n", err)
						continue
					}
					mWatch.Check()
				}

			case <-mOCR.ClickedCh:
				if mOCR.Checked() {
					mOCR.Uncheck()
				} else {
					mOCR.Check()
				}

				config.EnableOCR = mOCR.Checked()

				if err := writeConfig(); err != nil {
					fmt.Fprintf(os.Stderr, "Error writing config: %v\n", err)
				}

			case <-mExit.ClickedCh:
				monitor.Stop()
				systray.Quit()
			}
		}
	}()
}
