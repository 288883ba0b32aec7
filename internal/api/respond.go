package api

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/stackforge/pkg/errors"
	"github.com/matzehuels/stackforge/pkg/observability"
)

const maxBodyBytes = 1 << 20

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: msg}})
}

// fail maps err to a status code and writes the error document.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	code := string(errs.GetCode(err))
	if code == "" {
		code = string(errs.ErrCodeInternal)
	}
	msg := errs.UserMessage(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		msg = "internal error"
	}
	writeError(w, status, code, msg)
}

func statusOf(err error) int {
	switch {
	case errs.IsContractViolation(err):
		return http.StatusBadRequest
	case errs.Is(err, errs.ErrCodeNotFound), errs.Is(err, errs.ErrCodeProjectNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrCodeReentrantMutation):
		return http.StatusConflict
	case errs.Is(err, errs.ErrCodeUnsupported):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// decode reads a JSON body into v, rejecting unknown fields and trailing data.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "malformed request body")
	}
	if dec.More() {
		return errs.New(errs.ErrCodeInvalidInput, "malformed request body: trailing data")
	}
	return nil
}

// observe reports requests to the HTTP hooks and logs them at debug level.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		observability.HTTP().OnRequest(r.Context(), r.Method, r.URL.Path)

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnResponse(r.Context(), r.Method, r.URL.Path, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", status,
			"duration", elapsed.Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()))
	})
}
