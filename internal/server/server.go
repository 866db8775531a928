// Package server exposes the timeline over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/persist"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

// maxImportBytes bounds an import request body.
const maxImportBytes = 8 << 20

// Config for the HTTP API handler.
type Config struct {
	App      *app.App
	BasePath string
}

// New returns an HTTP handler exposing the timeline API.
func New(cfg Config) (http.Handler, error) {
	basePath := cfg.BasePath
	if basePath == "" {
		basePath = "/v1"
	}
	if !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	a := cfg.App

	router := chi.NewRouter()
	router.Use(requestLogger(a.Logger))

	hcfg := huma.DefaultConfig("Laneplan API", Version)
	hcfg.OpenAPIPath = basePath + "/openapi"
	hcfg.DocsPath = ""
	api := humachi.New(router, hcfg)
	group := huma.NewGroup(api, basePath)

	registerHealth(group, a)
	registerDocument(group, a)
	registerTasks(group, a)
	registerLanes(group, a)
	registerJournal(group, a)
	registerTransfer(router, basePath, a)

	return router, nil
}

// Server runs the API handler on an address.
type Server struct {
	handler http.Handler
	addr    string
	logger  *slog.Logger
	server  *http.Server
}

// NewServer creates a new HTTP server.
func NewServer(handler http.Handler, addr string, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		handler: handler,
		addr:    addr,
		logger:  logger,
		server: &http.Server{
			Addr:         addr,
			Handler:      handler,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
	}
}

// Start serves until Shutdown. It returns http.ErrServerClosed after a clean shutdown.
func (s *Server) Start() error {
	s.logger.Info("starting laneplan server", "addr", s.addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(sw, r)
			logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "status", sw.status, "elapsed", time.Since(start))
		})
	}
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// registerTransfer mounts export and import as plain routes: both move the raw
// document file rather than a typed body.
func registerTransfer(router chi.Router, basePath string, a *app.App) {
	router.Get(basePath+"/export", func(w http.ResponseWriter, r *http.Request) {
		data, err := a.Export()
		if err != nil {
			writeError(w, handleError(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", `attachment; filename="`+persist.ExportFileName+`"`)
		w.Write(data)
	})

	router.Post(basePath+"/import", func(w http.ResponseWriter, r *http.Request) {
		data, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
		if err != nil {
			writeError(w, newAPIError(http.StatusBadRequest, "", "read body: "+err.Error()))
			return
		}
		doc, err := a.Import(data)
		if err != nil {
			writeError(w, handleError(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(documentResponse(doc))
	})
}

func writeError(w http.ResponseWriter, err huma.StatusError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.GetStatus())
	json.NewEncoder(w).Encode(err)
}
