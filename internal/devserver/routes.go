package devserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starview-labs/starview/pkg/compilation"
)

// routes wires the HTTP surface.
func (s *Server) routes(r chi.Router) {
	r.Post("/api/compile", s.handleCompile)
	r.Get("/api/runs", s.handleListRuns)
	r.Get("/api/runs/{id}", s.handleGetRun)
	r.Get("/api/references", s.handleReferences)
	r.Get("/api/events", s.handleEvents)
	r.Get("/healthz", s.handleHealth)
}

type compileRequest struct {
	// Path is the document identity. When Source is empty it is also read
	// from the views directory.
	Path string `json:"path"`

	// Source is the text to compile. Optional.
	Source string `json:"source"`
}

type compileResponse struct {
	Success    bool                  `json:"success"`
	Module     string                `json:"module,omitempty"`
	EntryType  string                `json:"entry_type,omitempty"`
	Types      []string              `json:"types,omitempty"`
	Messages   []compilation.Message `json:"messages,omitempty"`
	DurationMS int64                 `json:"duration_ms"`
}

// handleCompile compiles one document. Compiler diagnostics come back as a
// 200 with success=false; environment failures are a 500.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	var req compileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if req.Path == "" {
		writeError(w, http.StatusBadRequest, fmt.Errorf("path is required"))
		return
	}

	path := req.Path
	if req.Source == "" {
		rel := filepath.Clean(req.Path)
		if filepath.IsAbs(rel) || strings.HasPrefix(rel, "..") {
			writeError(w, http.StatusBadRequest, fmt.Errorf("path must stay inside the views directory"))
			return
		}
		path = filepath.Join(s.viewsDir, rel)
		data, err := os.ReadFile(path)
		if err != nil {
			writeError(w, http.StatusNotFound, fmt.Errorf("failed to read view: %w", err))
			return
		}
		req.Source = string(data)
	}

	_, res, err := s.compileAndRecord(path, req.Source)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	resp := compileResponse{
		Success:    res.Success,
		Module:     res.Module,
		EntryType:  res.EntryType,
		Messages:   res.Messages,
		DurationMS: res.Duration.Milliseconds(),
	}
	if res.Loaded != nil {
		for _, t := range res.Loaded.Types() {
			resp.Types = append(resp.Types, t.Name())
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleListRuns returns recent run history, newest first.
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, fmt.Errorf("invalid limit %q", v))
			return
		}
		limit = n
	}

	runs, err := s.store.ListRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one run by ID.
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, err := s.store.GetRun(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// handleReferences returns the application's resolved reference names in
// resolution order. Forcing resolution here surfaces reference problems
// before the first compile.
func (s *Server) handleReferences(w http.ResponseWriter, _ *http.Request) {
	refs, err := s.svc.References()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	names := make([]map[string]string, 0, len(refs))
	for _, ref := range refs {
		names = append(names, map[string]string{"name": ref.Name()})
	}
	writeJSON(w, http.StatusOK, map[string]any{"references": names})
}

// handleEvents streams recompile outcomes as server-sent events.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := s.notifier.subscribe()
	defer s.notifier.unsubscribe(ch)

	fmt.Fprint(w, "event: ready\ndata: {}\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case run := <-ch:
			payload, err := json.Marshal(run)
			if err != nil {
				s.logger.Error("failed to encode event", "error", err)
				continue
			}
			fmt.Fprintf(w, "event: run\ndata: %s\n\n", payload)
			flusher.Flush()
		}
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
