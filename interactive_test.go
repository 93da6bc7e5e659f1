package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInteractive_QuitExitsWithoutAnalyzing(t *testing.T) {
	var out, errOut bytes.Buffer
	calls := 0

	err := runInteractive(context.Background(), strings.NewReader("quit\n"), &out, &errOut, func(ctx context.Context, intent string) (*Report, error) {
		calls++
		return &Report{}, nil
	})

	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Contains(t, out.String(), "Press ENTER to capture")
	assert.Contains(t, out.String(), "Goodbye.")
}

func TestRunInteractive_QuitIsCaseInsensitive(t *testing.T) {
	var out, errOut bytes.Buffer
	calls := 0

	err := runInteractive(context.Background(), strings.NewReader("  QUIT  \n"), &out, &errOut, func(ctx context.Context, intent string) (*Report, error) {
		calls++
		return &Report{}, nil
	})

	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestRunInteractive_EnterPrintsDescription(t *testing.T) {
	var out, errOut bytes.Buffer

	report := &Report{
		Interpretation: &Interpretation{
			ApplicationName: "Terminal",
			CurrentContext:  "A shell session with a test run scrolling by",
			ScreenType:      "terminal",
			Confidence:      0.9,
		},
	}

	err := runInteractive(context.Background(), strings.NewReader("\nquit\n"), &out, &errOut, func(ctx context.Context, intent string) (*Report, error) {
		return report, nil
	})

	require.NoError(t, err)
	assert.Contains(t, out.String(), "A shell session with a test run scrolling by")
	assert.Contains(t, out.String(), "Application: Terminal")
	assert.Empty(t, errOut.String())
}

func TestRunInteractive_FailedCycleKeepsLooping(t *testing.T) {
	var out, errOut bytes.Buffer
	calls := 0

	err := runInteractive(context.Background(), strings.NewReader("\n\nquit\n"), &out, &errOut, func(ctx context.Context, intent string) (*Report, error) {
		calls++
		return nil, errors.New("Error sending vision request: connection refused")
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, errOut.String(), "connection refused")
	// the prompt came back after each failure
	assert.Equal(t, 3, strings.Count(out.String(), "Command: "))
}

func TestRunInteractive_InputBecomesIntent(t *testing.T) {
	var out, errOut bytes.Buffer
	var intents []string

	err := runInteractive(context.Background(), strings.NewReader("what is this error\n\nquit\n"), &out, &errOut, func(ctx context.Context, intent string) (*Report, error) {
		intents = append(intents, intent)
		return &Report{Interpretation: &Interpretation{CurrentContext: "ok"}}, nil
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"what is this error", ""}, intents)
}

func TestRunInteractive_EOFExits(t *testing.T) {
	var out, errOut bytes.Buffer
	calls := 0

	err := runInteractive(context.Background(), strings.NewReader(""), &out, &errOut, func(ctx context.Context, intent string) (*Report, error) {
		calls++
		return &Report{}, nil
	})

	require.NoError(t, err)
	assert.Zero(t, calls)
}

func TestRunInteractive_CancelUnblocksPrompt(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out, errOut bytes.Buffer

	// a reader that never delivers a line, like an idle terminal
	pr, pw := io.Pipe()
	defer pw.Close()

	done := make(chan error, 1)
	go func() {
		done <- runInteractive(ctx, pr, &out, &errOut, func(ctx context.Context, intent string) (*Report, error) {
			return &Report{}, nil
		})
	}()

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("the loop did not exit on cancellation")
	}
	assert.Contains(t, out.String(), "Goodbye.")
}
