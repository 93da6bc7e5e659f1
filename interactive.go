package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

type analyzeFunc func(ctx context.Context, intent string) (*Report, error)

// runInteractive is the console loop: every line of input triggers one
// capture-analyze cycle, "quit" exits. A failed cycle prints a diagnostic
// and the loop keeps going, only input errors end it. Input is read on its
// own goroutine so cancellation takes effect while blocked at the prompt.
func runInteractive(ctx context.Context, in io.Reader, out, errOut io.Writer, analyze analyzeFunc) error {
	fmt.Fprintln(out, "screenseer interactive mode")
	fmt.Fprintln(out, "Press ENTER to capture and analyze your current screen.")
	fmt.Fprintln(out, "Type a question to ask about the screen, or 'quit' to exit.")

	lines := make(chan string, 1)
	readErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		readErr <- scanner.Err()
		close(lines)
	}()

	for {
		fmt.Fprint(out, "\nCommand: ")

		var line string
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nGoodbye.")
			return nil
		case input, ok := <-lines:
			if !ok {
				if err := <-readErr; err != nil {
					return fmt.Errorf("Error reading input: %v", err)
				}
				fmt.Fprintln(out, "Goodbye.")
				return nil
			}
			line = input
		}

		line = strings.TrimSpace(line)
		if strings.ToLower(line) == "quit" {
			fmt.Fprintln(out, "Goodbye.")
			return nil
		}

		fmt.Fprintln(out, "Capturing and analyzing screen...")
		report, err := analyze(ctx, line)
		if err != nil {
			fmt.Fprintf(errOut, "Error analyzing screen: %v\n", err)
			continue
		}

		writeReport(out, report)
	}
}
