// Package server exposes a workspace over a small JSON API.
//
// The API backs external canvas front ends: they list resolved placements,
// move them, detach nodes from their slot blueprints and save the result.
// Placement handles are the instance IDs produced by the resolver
// ("0.0.0:t:1:0"); node handles are dotted child indices ("0.0.0") or node
// names.
//
//	GET  /healthz
//	GET  /api/document
//	GET  /api/sheets
//	GET  /api/instances?sheet=&node=
//	GET  /api/instances/{id}
//	POST /api/instances/{id}/move
//	PATCH /api/slots/{ref}
//	PUT  /api/layouts/{name}/{field}
//	DELETE /api/layouts/{name}/{field}
//	POST /api/nodes
//	DELETE /api/nodes/{id}
//	POST /api/nodes/{id}/detach
//	GET  /api/search?q=
//	GET  /api/preview/{template}?startCol=
//	GET  /api/validate
//	GET  /api/hierarchy.dot?detailed=
//	GET  /api/hierarchy.svg?detailed=
//	GET  /api/workbook.xlsx?sheet=
//	POST /api/save
//
// Requests that change the workspace must be sent as application/json, even
// when they carry no body; anything else is refused with 415. Saving always
// writes to the file the workspace was opened from.
//
// Errors are returned as {"code": ..., "error": ...} with a status derived
// from the error code.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/themis/pkg/workspace"
)

// Server serves one workspace.
type Server struct {
	ws     *workspace.Workspace
	logger *log.Logger
	router chi.Router
}

// New creates a server for ws. A nil logger uses log.Default().
func New(ws *workspace.Workspace, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{ws: ws, logger: logger}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(middleware.Recoverer)
	r.Use(s.requireJSON)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/document", s.handleDocument)
		r.Get("/sheets", s.handleSheets)
		r.Get("/instances", s.handleInstances)
		r.Get("/instances/{id}", s.handleInstance)
		r.Post("/instances/{id}/move", s.handleMove)
		r.Patch("/slots/{ref}", s.handleEditSlot)
		r.Put("/layouts/{name}/{field}", s.handleSetOffset)
		r.Delete("/layouts/{name}/{field}", s.handleRemoveOffset)
		r.Post("/nodes", s.handleAddNode)
		r.Delete("/nodes/{id}", s.handleRemoveNode)
		r.Post("/nodes/{id}/detach", s.handleDetach)
		r.Get("/search", s.handleSearch)
		r.Get("/preview/{template}", s.handlePreview)
		r.Get("/validate", s.handleValidate)
		r.Get("/hierarchy.dot", s.handleHierarchyDOT)
		r.Get("/hierarchy.svg", s.handleHierarchySVG)
		r.Get("/workbook.xlsx", s.handleWorkbook)
		r.Post("/save", s.handleSave)
	})
	return r
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
