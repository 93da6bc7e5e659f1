package main

import (
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"time"
)

var indexPageTemplate = template.Must(template.New("index").Parse(`
	<!DOCTYPE html>
	<html>
	<head>
		<title>screenseer</title>
	</head>
	<body>
		<h1>screenseer is running</h1>
		<p>HTTP API:</p>
		<ul>
			<li><a href="/api/health">GET /api/health</a></li>
			<li>POST /api/analyze</li>
			<li>POST /api/explain</li>
			<li>POST /api/monitor/start</li>
			<li>POST /api/monitor/stop</li>
			<li><a href="/api/dashboard/stats">GET /api/dashboard/stats</a></li>
			<li><a href="/api/history">GET /api/history</a></li>
		</ul>
	</body>
	</html>
`))

func withCORS(handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		handler(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v\n", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

func registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/", withCORS(handleIndex))
	mux.HandleFunc("/api/health", withCORS(handleHealth))
	mux.HandleFunc("/api/analyze", withCORS(handleAnalyze))
	mux.HandleFunc("/api/explain", withCORS(handleExplain))
	mux.HandleFunc("/api/monitor/start", withCORS(handleMonitorStart))
	mux.HandleFunc("/api/monitor/stop", withCORS(handleMonitorStop))
	mux.HandleFunc("/api/dashboard/stats", withCORS(handleStats))
	mux.HandleFunc("/api/history", withCORS(handleHistory))
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		http.Error(w, "GET required", http.StatusMethodNotAllowed)
		return
	}
	if err := indexPageTemplate.Execute(w, nil); err != nil {
		http.Error(w, "Error rendering template", http.StatusInternalServerError)
	}
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":        "healthy",
		"service":       "screenseer",
		"version":       version,
		"ocr_available": tesseractAvailable(),
		"monitoring":    monitor.Running(),
	})
}

func handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	// the manager makes this the only analysis in flight, aborting one
	// started from another front end
	task := taskManager.StartTask(r.Context(), analyzeOptions{detailed: true})
	report, err := task.Wait()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error analyzing screen: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
}

func handleExplain(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	// the body is optional, an empty POST explains the screen without a
	// specific question
	var body struct {
		UserIntent string `json:"user_intent"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task := taskManager.StartTask(r.Context(), analyzeOptions{intent: body.UserIntent})
	report, err := task.Wait()
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("Error analyzing screen: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "report": report})
}

func handleMonitorStart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	var body struct {
		IntervalSeconds int `json:"interval_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.IntervalSeconds <= 0 {
		body.IntervalSeconds = config.WatchInterval
	}

	// the watch loop outlives the request, it is stopped via the stop
	// endpoint or at server shutdown
	if err := monitor.Start(context.Background(), time.Duration(body.IntervalSeconds)*time.Second); err != nil {
		writeError(w, http.StatusConflict, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":          true,
		"monitoring":       true,
		"interval_seconds": body.IntervalSeconds,
	})
}

func handleMonitorStop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}

	stopped := monitor.Stop()
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"monitoring":  false,
		"was_running": stopped,
	})
}

func handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	writeJSON(w, http.StatusOK, taskManager.Stats())
}

func handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required")
		return
	}

	history := taskManager.GetHistory()

	entries := make([]map[string]any, 0, len(history))
	for _, report := range history {
		entries = append(entries, map[string]any{
			"id":          report.ID,
			"captured_at": report.CapturedAt,
			"headline":    report.Headline(),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"count": len(entries), "history": entries})
}

// startServer runs the control server until the context is cancelled or the
// listener fails.
func startServer(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	registerRoutes(mux)

	server := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Control server listening on http://%s\n", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("Error starting server: %v", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
