package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// swapMonitor installs an inert monitor so handler tests never touch the
// real analyze loop.
func swapMonitor(t *testing.T) *Monitor {
	t.Helper()
	old := monitor
	t.Cleanup(func() {
		monitor.Stop()
		monitor = old
	})
	monitor = &Monitor{tick: func(context.Context) {}}
	return monitor
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	registerRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func getJSON(t *testing.T, url string, into any) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	return resp
}

func postJSON(t *testing.T, url, body string, into any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	resp, err := http.Post(url, "application/json", reader)
	require.NoError(t, err)
	defer resp.Body.Close()
	if into != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(into))
	}
	return resp
}

func TestHealthEndpoint(t *testing.T) {
	swapMonitor(t)
	server := newTestServer(t)

	var health map[string]any
	resp := getJSON(t, server.URL+"/api/health", &health)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "healthy", health["status"])
	assert.Equal(t, "screenseer", health["service"])
	assert.Equal(t, false, health["monitoring"])
}

func TestIndexPage(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "screenseer is running")

	missing, err := http.Get(server.URL + "/no-such-page")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestReadOnlyEndpoints_RejectPOST(t *testing.T) {
	server := newTestServer(t)

	for _, path := range []string{"/api/health", "/api/dashboard/stats", "/api/history"} {
		var result map[string]any
		resp := postJSON(t, server.URL+path, "", &result)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, path)
		assert.Equal(t, false, result["success"], path)
	}

	resp, err := http.Post(server.URL+"/", "text/plain", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestAnalyzeEndpoint(t *testing.T) {
	resetConfig(t)
	restoreSeams(t)
	swapTaskManager(t)
	server := newTestServer(t)

	captureScreenFn = func() (*Capture, error) { return stubCapture(), nil }
	analyzeImageFn = func(ctx context.Context, pngData []byte, ocrText string) (*ScreenAnalysis, error) {
		return &ScreenAnalysis{ScreenDescription: "A desktop", Confidence: 0.9}, nil
	}

	var result struct {
		Success bool    `json:"success"`
		Report  *Report `json:"report"`
	}
	resp := postJSON(t, server.URL+"/api/analyze", "", &result)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.Success)
	require.NotNil(t, result.Report)
	require.NotNil(t, result.Report.Analysis)
	assert.Equal(t, "A desktop", result.Report.Analysis.ScreenDescription)
}

func TestAnalyzeEndpoint_RequiresPOST(t *testing.T) {
	server := newTestServer(t)

	var result map[string]any
	resp := getJSON(t, server.URL+"/api/analyze", &result)

	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
	assert.Equal(t, false, result["success"])
}

func TestAnalyzeEndpoint_PipelineError(t *testing.T) {
	resetConfig(t)
	restoreSeams(t)
	swapTaskManager(t)
	server := newTestServer(t)

	captureScreenFn = func() (*Capture, error) {
		return nil, errors.New("no active displays")
	}

	var result map[string]any
	resp := postJSON(t, server.URL+"/api/analyze", "", &result)

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, false, result["success"])
	assert.Contains(t, result["error"], "no active displays")
}

func TestAnalyzeEndpoint_TakesOverInFlightTask(t *testing.T) {
	resetConfig(t)
	restoreSeams(t)
	tm := swapTaskManager(t)
	server := newTestServer(t)

	started := make(chan struct{}, 1)
	captureScreenFn = func() (*Capture, error) { return stubCapture(), nil }
	interpretFn = func(ctx context.Context, pngData []byte, ocrText, userIntent string) (*Interpretation, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	analyzeImageFn = func(ctx context.Context, pngData []byte, ocrText string) (*ScreenAnalysis, error) {
		return &ScreenAnalysis{ScreenDescription: "A desktop", Confidence: 0.9}, nil
	}

	blocked := tm.StartNewTask("earlier question")
	<-started

	var result struct {
		Success bool    `json:"success"`
		Report  *Report `json:"report"`
	}
	resp := postJSON(t, server.URL+"/api/analyze", "", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, result.Success)

	report, err := blocked.Wait()
	require.Error(t, err)
	assert.Nil(t, report)
}

func TestExplainEndpoint_PassesUserIntent(t *testing.T) {
	resetConfig(t)
	restoreSeams(t)
	swapTaskManager(t)
	server := newTestServer(t)

	captureScreenFn = func() (*Capture, error) { return stubCapture(), nil }
	interpretFn = func(ctx context.Context, pngData []byte, ocrText, userIntent string) (*Interpretation, error) {
		return &Interpretation{CurrentContext: "asked: " + userIntent}, nil
	}

	var result struct {
		Success bool    `json:"success"`
		Report  *Report `json:"report"`
	}
	resp := postJSON(t, server.URL+"/api/explain", `{"user_intent": "what is this dialog"}`, &result)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, result.Report)
	assert.Equal(t, "what is this dialog", result.Report.UserIntent)
	assert.Equal(t, "asked: what is this dialog", result.Report.Interpretation.CurrentContext)

	// the body is optional; reset the decode target, the empty-intent
	// response omits user_intent and would leave the first report's value
	// in place
	result.Report = nil
	resp = postJSON(t, server.URL+"/api/explain", "", &result)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, result.Report.UserIntent)
}

func TestExplainEndpoint_RejectsBadJSON(t *testing.T) {
	server := newTestServer(t)

	var result map[string]any
	resp := postJSON(t, server.URL+"/api/explain", "{not json", &result)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, false, result["success"])
}

func TestMonitorEndpoints(t *testing.T) {
	resetConfig(t)
	swapMonitor(t)
	server := newTestServer(t)

	var started map[string]any
	resp := postJSON(t, server.URL+"/api/monitor/start", `{"interval_seconds": 1}`, &started)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, started["monitoring"])
	assert.EqualValues(t, 1, started["interval_seconds"])

	var health map[string]any
	getJSON(t, server.URL+"/api/health", &health)
	assert.Equal(t, true, health["monitoring"])

	var conflict map[string]any
	resp = postJSON(t, server.URL+"/api/monitor/start", `{"interval_seconds": 1}`, &conflict)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var stopped map[string]any
	resp = postJSON(t, server.URL+"/api/monitor/stop", "", &stopped)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, stopped["was_running"])

	resp = postJSON(t, server.URL+"/api/monitor/stop", "", &stopped)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, stopped["was_running"])
}

func TestMonitorStart_DefaultInterval(t *testing.T) {
	resetConfig(t)
	swapMonitor(t)
	server := newTestServer(t)

	var started map[string]any
	resp := postJSON(t, server.URL+"/api/monitor/start", "", &started)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, config.WatchInterval, started["interval_seconds"])
}

func TestStatsEndpoint(t *testing.T) {
	tm := swapTaskManager(t)
	server := newTestServer(t)

	tm.RecordReport(&Report{Analysis: &ScreenAnalysis{SuggestedActions: []SuggestedAction{{}}}})
	tm.RecordFailure()

	var stats DashboardStats
	resp := getJSON(t, server.URL+"/api/dashboard/stats", &stats)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, stats.TotalAnalyses)
	assert.EqualValues(t, 1, stats.FailedAnalyses)
	assert.EqualValues(t, 1, stats.SuggestedActions)
	assert.InDelta(t, 0.5, stats.SuccessRate, 0.001)
}

func TestHistoryEndpoint(t *testing.T) {
	tm := swapTaskManager(t)
	server := newTestServer(t)

	tm.AppendToHistory(&Report{ID: "one", Interpretation: &Interpretation{CurrentContext: "First screen"}})
	tm.AppendToHistory(&Report{ID: "two", Analysis: &ScreenAnalysis{ScreenDescription: "Second screen"}})

	var result struct {
		Count   int `json:"count"`
		History []struct {
			ID       string `json:"id"`
			Headline string `json:"headline"`
		} `json:"history"`
	}
	resp := getJSON(t, server.URL+"/api/history", &result)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.History, 2)
	assert.Equal(t, "one", result.History[0].ID)
	assert.Equal(t, "First screen", result.History[0].Headline)
	assert.Equal(t, "Second screen", result.History[1].Headline)
}
