package server

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/exec"
	"path"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/mandelzoom/pkg/cache"
	"github.com/matzehuels/mandelzoom/pkg/errors"
	"github.com/matzehuels/mandelzoom/pkg/fractal"
	"github.com/matzehuels/mandelzoom/pkg/pipeline"
)

// renderHandler serves one endpoint: parse the view, produce the artifact,
// redirect to it.
func (s *Server) renderHandler(ep Endpoint) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		req, err := fractal.ParseParams(q.Get("x"), q.Get("y"), q.Get("w"), q.Get("i"), ep.Resolution)
		if err != nil {
			s.writeError(w, r, err)
			return
		}

		res, err := s.runner.Execute(context.WithoutCancel(r.Context()), pipeline.Job{
			Request: req,
			Variant: ep.Variant,
			Codec:   ep.Codec,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		http.Redirect(w, r, ArtifactsPrefix+res.Key, http.StatusFound)
	}
}

// artifactHandler serves committed cache entries. Entries never change once
// committed, so they are cached by clients indefinitely.
func (s *Server) artifactHandler(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if errors.ValidateRelativePath(key) != nil || strings.Contains(path.Base(key), ".tmp-") {
		writeJSONError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "artifact not found")
		return
	}

	f, err := os.Open(s.store.Path(key))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "artifact not found")
		return
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		writeJSONError(w, http.StatusNotFound, string(errors.ErrCodeNotFound), "artifact not found")
		return
	}

	w.Header().Set("ETag", cache.ETag(key))
	w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}

// HealthResponse is the JSON body of /healthz.
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Tools     map[string]string `json:"tools,omitempty"`
}

// healthHandler reports whether the external tools can be found.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Tools:     make(map[string]string, len(s.tools)),
	}
	status := http.StatusOK
	for _, tool := range s.tools {
		p, err := exec.LookPath(tool)
		if err != nil {
			resp.Tools[tool] = "missing"
			resp.Status = "unhealthy"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Tools[tool] = p
	}
	writeJSON(w, status, resp)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError maps err to a status code and JSON body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errors.HTTPStatus(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "path", r.URL.Path, "err", err)
	}
	writeJSONError(w, status, string(code), errors.UserMessage(err))
}

func writeJSONError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
