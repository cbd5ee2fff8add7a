package main

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/negroni"

	"github.com/azstreams/dcrbuilder/apidoc"
	"github.com/azstreams/dcrbuilder/dcr"
	"github.com/azstreams/dcrbuilder/generate"
	"github.com/azstreams/dcrbuilder/infer"
	"github.com/azstreams/dcrbuilder/safejson"
	"github.com/azstreams/dcrbuilder/sharecache"
	"github.com/azstreams/dcrbuilder/validate"
)

func (s *server) setupRoutes() {
	s.router.HandleFunc("/api/dcr", s.handleStoreDcr()).Methods("POST")
	s.router.HandleFunc("/api/dcr/{id}", s.handleGetDcr()).Methods("GET")
	s.router.HandleFunc("/api/dcr/{id}", s.handleUpdateDcr()).Methods("PUT")
	s.router.HandleFunc("/api/infer", s.handleInfer()).Methods("POST")
	s.router.HandleFunc("/api/validate", s.handleValidate()).Methods("POST")
	s.router.HandleFunc("/api/generate", s.handleGenerate()).Methods("POST")
	s.router.HandleFunc("/openapi.json", s.handleOpenAPI()).Methods("GET")
	s.router.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))
	s.router.Use(logMiddleware)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := negroni.NewResponseWriter(w)
		next.ServeHTTP(ww, r)
		slog.Info("request", "method", r.Method, "uri", r.RequestURI, "status", ww.Status())
	})
}

type shareRequest struct {
	JSON string `json:"json"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response", "err", err)
	}
}

func decodeShareRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.JSON == "" {
		http.Error(w, "Missing json", http.StatusBadRequest)
		return "", false
	}
	return req.JSON, true
}

func (s *server) handleStoreDcr() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeShareRequest(w, r)
		if !ok {
			return
		}

		id, err := s.cache.Store(body)
		if errors.Is(err, sharecache.ErrEntryTooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		} else if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		s.metrics.sharesStored.Inc()
		writeJSON(w, http.StatusOK, map[string]string{"id": id})
	}
}

func (s *server) handleGetDcr() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := mux.Vars(r)["id"]
		body, ok := s.cache.Get(id)
		if !ok {
			s.metrics.shareMisses.Inc()
			http.Error(w, "Not found", http.StatusNotFound)
			return
		}

		s.metrics.shareHits.Inc()
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		if _, err := w.Write([]byte(body)); err != nil {
			slog.Error("write response", "err", err)
		}
	}
}

func (s *server) handleUpdateDcr() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeShareRequest(w, r)
		if !ok {
			return
		}

		id := mux.Vars(r)["id"]
		if err := s.cache.Update(id, body); err != nil {
			if errors.Is(err, sharecache.ErrEntryTooLarge) {
				http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
				return
			}
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		s.metrics.sharesStored.Inc()
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *server) handleInfer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := decodeShareRequest(w, r)
		if !ok {
			return
		}

		v, err := safejson.ParseString(body)
		if err != nil {
			// Both size and syntax failures are user-correctable.
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		s.metrics.inferRuns.Inc()
		writeJSON(w, http.StatusOK, map[string]any{"columns": infer.Columns(v)})
	}
}

func (s *server) handleValidate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f dcr.FormData
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		errs := validate.FormData(&f)
		if errs == nil {
			errs = []dcr.ValidationError{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"errors": errs})
	}
}

func (s *server) handleGenerate() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var f dcr.FormData
		if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		errs := validate.FormData(&f)
		if validate.HasBlocking(errs) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"errors": errs})
			return
		}

		rule := generate.DCR(&f)
		ruleJSON, err := generate.JSON(rule)
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		armJSON, err := generate.ARMTemplate(rule)
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		bicep, err := generate.Bicep(rule)
		if err != nil {
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}

		s.metrics.generateRuns.Inc()
		writeJSON(w, http.StatusOK, map[string]any{
			"dcr":         json.RawMessage(ruleJSON),
			"armTemplate": json.RawMessage(armJSON),
			"bicep":       bicep,
		})
	}
}

func (s *server) handleOpenAPI() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, apidoc.Doc())
	}
}
