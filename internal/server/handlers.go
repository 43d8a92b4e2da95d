package server

import (
	"bytes"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/themis/pkg/buildinfo"
	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/edit"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/render/hierarchy"
	"github.com/matzehuels/themis/pkg/render/workbook"
	"github.com/matzehuels/themis/pkg/resolve"
	"github.com/matzehuels/themis/pkg/workspace"
)

// instanceView is an instance as the API returns it: with its handle and
// the absolute cell of every field.
type instanceView struct {
	ID string `json:"id"`
	resolve.Instance
	Cells []resolve.Cell `json:"cells"`
}

func viewOf(inst resolve.Instance) instanceView {
	return instanceView{ID: inst.ID(), Instance: inst, Cells: resolve.Cells(inst)}
}

func viewsOf(insts []resolve.Instance) []instanceView {
	out := make([]instanceView, len(insts))
	for i, inst := range insts {
		out[i] = viewOf(inst)
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"build":  buildinfo.Get(),
	})
}

func (s *Server) handleDocument(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Themis-Dirty", strconv.FormatBool(s.ws.Dirty()))
	s.writeJSON(w, http.StatusOK, s.ws.Snapshot())
}

func (s *Server) handleSheets(w http.ResponseWriter, r *http.Request) {
	sheets := s.ws.Sheets()
	if sheets == nil {
		sheets = []string{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"sheets": sheets})
}

func (s *Server) handleInstances(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	insts := s.ws.Instances(resolve.Filter{Sheet: q.Get("sheet"), NodePath: q.Get("node")})
	s.writeJSON(w, http.StatusOK, map[string]any{"instances": viewsOf(insts)})
}

func (s *Server) handleInstance(w http.ResponseWriter, r *http.Request) {
	inst, err := s.ws.Instance(chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, viewOf(inst))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var mv edit.Move
	if err := decodeBody(r, &mv); err != nil {
		s.writeError(w, err)
		return
	}
	if mv.Row == nil && mv.Col == nil {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "move needs a row or a col"))
		return
	}
	changed, err := s.ws.Move(r.Context(), id, mv)
	if err != nil {
		s.writeError(w, err)
		return
	}
	resp := map[string]any{"changed": changed}
	if inst, err := s.ws.Instance(id); err == nil {
		resp["instance"] = viewOf(inst)
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDetach(w http.ResponseWriter, r *http.Request) {
	id, err := s.ws.Detach(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"node": id})
}

type searchResult struct {
	ID       config.NodeID `json:"id"`
	Name     string        `json:"name"`
	Path     []string      `json:"path"`
	Distance int           `json:"distance"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	matches := s.ws.Snapshot().Search(r.URL.Query().Get("q"))
	out := make([]searchResult, len(matches))
	for i, m := range matches {
		out[i] = searchResult{ID: m.ID, Name: m.Node.Name, Path: m.Path, Distance: m.Distance}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"matches": out})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "template")
	startCol := 0
	if v := r.URL.Query().Get("startCol"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "startCol must be a positive integer"))
			return
		}
		startCol = n
	}
	doc := s.ws.Snapshot()
	if _, ok := doc.Template(name); !ok {
		s.writeError(w, errors.New(errors.ErrCodeTemplateNotFound, "no slot blueprint %q", name))
		return
	}
	insts := resolve.PreviewTemplate(doc, name, startCol)
	s.writeJSON(w, http.StatusOK, map[string]any{"instances": viewsOf(insts)})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	res := s.ws.Validate(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"ok":       res.OK(),
		"errors":   res.Errors,
		"warnings": res.Warnings,
	})
}

func detailed(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	return v
}

func (s *Server) handleHierarchyDOT(w http.ResponseWriter, r *http.Request) {
	dot := hierarchy.ToDOT(s.ws.Snapshot(), hierarchy.Options{Detailed: detailed(r)})
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.Write([]byte(dot))
}

func (s *Server) handleHierarchySVG(w http.ResponseWriter, r *http.Request) {
	dot := hierarchy.ToDOT(s.ws.Snapshot(), hierarchy.Options{Detailed: detailed(r)})
	svg, err := hierarchy.RenderSVG(dot)
	if err != nil {
		s.writeError(w, errors.Wrap(errors.ErrCodeInternal, err, "render hierarchy"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

func (s *Server) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	opts := workbook.Options{Sheets: r.URL.Query()["sheet"]}
	var buf bytes.Buffer
	if err := workbook.Write(&buf, s.ws.Instances(resolve.Filter{}), opts); err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="preview.xlsx"`)
	w.Write(buf.Bytes())
}

// handleSave writes the document back to the file it was opened from.
// Clients cannot choose the destination.
func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	if err := s.ws.Save(r.Context(), ""); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"path": s.ws.Path()})
}

func (s *Server) handleEditSlot(w http.ResponseWriter, r *http.Request) {
	var p workspace.SlotPatch
	if err := decodeBody(r, &p); err != nil {
		s.writeError(w, err)
		return
	}
	if p.Empty() {
		s.writeError(w, errors.New(errors.ErrCodeInvalidInput, "nothing to change"))
		return
	}
	changed, err := s.ws.EditSlot(r.Context(), chi.URLParam(r, "ref"), p)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"changed": changed})
}

func (s *Server) handleSetOffset(w http.ResponseWriter, r *http.Request) {
	var off config.Offset
	if err := decodeBody(r, &off); err != nil {
		s.writeError(w, err)
		return
	}
	layout, field := chi.URLParam(r, "name"), chi.URLParam(r, "field")
	changed, err := s.ws.SetOffset(r.Context(), layout, field, off)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"changed": changed, "offsets": s.ws.Snapshot().Offsets(layout)})
}

func (s *Server) handleRemoveOffset(w http.ResponseWriter, r *http.Request) {
	layout, field := chi.URLParam(r, "name"), chi.URLParam(r, "field")
	if err := s.ws.RemoveOffset(r.Context(), layout, field); err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"offsets": s.ws.Snapshot().Offsets(layout)})
}

type addNodeRequest struct {
	Parent string `json:"parent"`
	Name   string `json:"name"`
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decodeBody(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	id, err := s.ws.AddNode(r.Context(), req.Parent, req.Name)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, map[string]any{"node": id})
}

func (s *Server) handleRemoveNode(w http.ResponseWriter, r *http.Request) {
	path, err := s.ws.RemoveNode(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"removed": path})
}
