package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/workspace"
)

func newTestServer(t *testing.T) (*httptest.Server, *workspace.Workspace) {
	t.Helper()
	logger := log.New(io.Discard)
	ws := workspace.New(nil, workspace.Options{Logger: logger})
	ts := httptest.NewServer(New(ws, logger))
	t.Cleanup(ts.Close)
	return ts, ws
}

// do sends a request; everything but GET goes out as application/json.
func do(t *testing.T, method, url, body string) (*http.Response, map[string]any) {
	t.Helper()
	contentType := ""
	if method != http.MethodGet {
		contentType = "application/json"
	}
	return doAs(t, method, url, contentType, body)
}

func doAs(t *testing.T, method, url, contentType, body string) (*http.Response, map[string]any) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		t.Fatal(err)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]any
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp, out
}

func TestHealth(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := do(t, "GET", ts.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Errorf("healthz = %d %v", resp.StatusCode, body)
	}
}

func TestInstancesAndSheets(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := do(t, "GET", ts.URL+"/api/sheets", "")
	if sheets, _ := body["sheets"].([]any); len(sheets) != 1 || sheets[0] != "VI 1C" {
		t.Errorf("sheets = %v", body["sheets"])
	}

	_, body = do(t, "GET", ts.URL+"/api/instances", "")
	insts, _ := body["instances"].([]any)
	if len(insts) != 26 {
		t.Fatalf("instances = %d, want 26", len(insts))
	}
	first := insts[0].(map[string]any)
	if first["id"] != "0.0.0:t:0:0" || first["rank"] != "Decanus" || first["row"] != float64(12) {
		t.Errorf("first instance = %v", first)
	}
	if cells, _ := first["cells"].([]any); len(cells) != 6 {
		t.Errorf("cells = %v", first["cells"])
	}

	_, body = do(t, "GET", ts.URL+"/api/instances?sheet=Nowhere", "")
	if insts, _ := body["instances"].([]any); len(insts) != 0 {
		t.Errorf("filtered instances = %v", insts)
	}

	resp, body := do(t, "GET", ts.URL+"/api/instances/9:n:0", "")
	if resp.StatusCode != http.StatusNotFound || body["code"] != string(errors.ErrCodeInstanceNotFound) {
		t.Errorf("unknown instance = %d %v", resp.StatusCode, body)
	}
}

func TestMoveAndDetach(t *testing.T) {
	ts, ws := newTestServer(t)

	resp, body := do(t, "POST", ts.URL+"/api/instances/0.0.0:t:1:1/move", `{"row": 20}`)
	if resp.StatusCode != http.StatusOK || body["changed"] != true {
		t.Fatalf("move = %d %v", resp.StatusCode, body)
	}
	if inst := body["instance"].(map[string]any); inst["row"] != float64(20) {
		t.Errorf("moved instance = %v", inst)
	}
	if !ws.Dirty() {
		t.Error("workspace not dirty after move")
	}

	resp, body = do(t, "POST", ts.URL+"/api/instances/0.0.0:t:1:1/move", `{}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("empty move = %d %v", resp.StatusCode, body)
	}
	resp, _ = do(t, "POST", ts.URL+"/api/instances/0.0.0:t:1:1/move", `{"row": "x"}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad body = %d", resp.StatusCode)
	}

	resp, body = do(t, "POST", ts.URL+"/api/nodes/0.0.0/detach", "")
	if resp.StatusCode != http.StatusOK || body["node"] != "0.0.0" {
		t.Fatalf("detach = %d %v", resp.StatusCode, body)
	}
	_, body = do(t, "GET", ts.URL+"/api/instances/0.0.0:n:1:1", "")
	if body["row"] != float64(20) {
		t.Errorf("detached copy lost the move: %v", body)
	}

	resp, _ = do(t, "POST", ts.URL+"/api/nodes/Nobody/detach", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown node = %d", resp.StatusCode)
	}
}

func TestSearchAndPreview(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := do(t, "GET", ts.URL+"/api/search?q=VI+1A", "")
	matches, _ := body["matches"].([]any)
	if len(matches) == 0 || matches[0].(map[string]any)["id"] != "0.0.0" {
		t.Errorf("search = %v", body)
	}

	_, body = do(t, "GET", ts.URL+"/api/preview/STANDARD_CONTUBERNIUM?startCol=2", "")
	insts, _ := body["instances"].([]any)
	if len(insts) != 26 || insts[0].(map[string]any)["sheet"] != "Preview Sheet" ||
		insts[0].(map[string]any)["col"] != float64(2) {
		t.Errorf("preview = %d instances, first %v", len(insts), insts)
	}

	resp, _ := do(t, "GET", ts.URL+"/api/preview/NOPE", "")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown template = %d", resp.StatusCode)
	}
	resp, _ = do(t, "GET", ts.URL+"/api/preview/STANDARD_CONTUBERNIUM?startCol=zero", "")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("bad startCol = %d", resp.StatusCode)
	}
}

func TestValidateAndDocument(t *testing.T) {
	ts, _ := newTestServer(t)

	_, body := do(t, "GET", ts.URL+"/api/validate", "")
	if body["ok"] != true {
		t.Errorf("validate = %v", body)
	}

	resp, body := do(t, "GET", ts.URL+"/api/document", "")
	if resp.Header.Get("X-Themis-Dirty") != "false" {
		t.Errorf("dirty header = %q", resp.Header.Get("X-Themis-Dirty"))
	}
	if _, ok := body[config.KeyHierarchy]; !ok {
		t.Errorf("document missing hierarchy: %v", body)
	}
}

func TestHierarchyDOTAndWorkbook(t *testing.T) {
	ts, _ := newTestServer(t)

	resp, err := http.Get(ts.URL + "/api/hierarchy.dot?detailed=true")
	if err != nil {
		t.Fatal(err)
	}
	dot, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(dot), "placements: 26") {
		t.Errorf("dot = %s", dot)
	}

	resp, err = http.Get(ts.URL + "/api/workbook.xlsx")
	if err != nil {
		t.Fatal(err)
	}
	data, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !bytes.HasPrefix(data, []byte("PK")) {
		t.Errorf("workbook = %d, %d bytes", resp.StatusCode, len(data))
	}
}

func newFileServer(t *testing.T) (*httptest.Server, *workspace.Workspace, string) {
	t.Helper()
	logger := log.New(io.Discard)
	path := filepath.Join(t.TempDir(), "roster.json")
	if err := workspace.New(nil, workspace.Options{Logger: logger}).Save(context.Background(), path); err != nil {
		t.Fatal(err)
	}
	ws, err := workspace.Open(context.Background(), path, workspace.Options{Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(New(ws, logger))
	t.Cleanup(ts.Close)
	return ts, ws, path
}

func TestSave(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, body := do(t, "POST", ts.URL+"/api/save", "")
	if resp.StatusCode != http.StatusBadRequest || body["code"] != string(errors.ErrCodeInvalidPath) {
		t.Errorf("save without a backing file = %d %v", resp.StatusCode, body)
	}

	ts, ws, path := newFileServer(t)
	if _, body := do(t, "POST", ts.URL+"/api/instances/0.0.0:t:0:0/move", `{"row": 13}`); body["changed"] != true {
		t.Fatalf("move = %v", body)
	}
	resp, body = do(t, "POST", ts.URL+"/api/save", "")
	if resp.StatusCode != http.StatusOK || body["path"] != path {
		t.Fatalf("save = %d %v", resp.StatusCode, body)
	}
	if ws.Dirty() {
		t.Error("workspace still dirty after save")
	}
	again, err := workspace.Open(context.Background(), path, workspace.Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	if inst, _ := again.Instance("0.0.0:t:0:0"); inst.Row != 13 {
		t.Errorf("saved row = %d, want 13", inst.Row)
	}
}

func TestSaveRejectsForeignWrites(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
	}{
		{"path in body is ignored", "application/json", `{"path": "/tmp/evil.js"}`, http.StatusOK},
		{"text/plain from a form", "text/plain", `{"path": "/tmp/evil.js"}`, http.StatusUnsupportedMediaType},
		{"no content type", "", "", http.StatusUnsupportedMediaType},
		{"form encoded", "application/x-www-form-urlencoded", "path=/tmp/evil.js", http.StatusUnsupportedMediaType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts, ws, path := newFileServer(t)
			other := filepath.Join(t.TempDir(), "other.json")
			body := strings.ReplaceAll(tt.body, "/tmp/evil.js", filepath.ToSlash(other))

			resp, _ := doAs(t, "POST", ts.URL+"/api/save", tt.contentType, body)
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
			if _, err := os.Stat(other); err == nil {
				t.Errorf("server wrote %s", other)
			}
			if ws.Path() != path {
				t.Errorf("workspace path = %q, want %q", ws.Path(), path)
			}
		})
	}
}

func TestMutationsRequireJSON(t *testing.T) {
	ts, ws := newTestServer(t)
	tests := []struct {
		method, path, body string
	}{
		{"POST", "/api/instances/0.0.0:t:0:0/move", `{"row": 20}`},
		{"POST", "/api/nodes/0.0.0/detach", ""},
		{"PATCH", "/api/slots/0.0.0:t:0", `{"title": "x"}`},
		{"PUT", "/api/layouts/SQUAD_OFFSETS/steamId", `{"row": 0, "col": 9}`},
		{"DELETE", "/api/layouts/SQUAD_OFFSETS/username", ""},
		{"POST", "/api/nodes", `{"name": "x"}`},
		{"DELETE", "/api/nodes/0", ""},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, body := doAs(t, tt.method, ts.URL+tt.path, "text/plain", tt.body)
			if resp.StatusCode != http.StatusUnsupportedMediaType || body["code"] != string(errors.ErrCodeInvalidInput) {
				t.Errorf("%s %s = %d %v", tt.method, tt.path, resp.StatusCode, body)
			}
		})
	}
	if ws.Dirty() {
		t.Error("a refused request changed the workspace")
	}
}

func TestStructureEdits(t *testing.T) {
	ts, ws := newTestServer(t)

	resp, body := do(t, "PATCH", ts.URL+"/api/slots/0.0.0:t:1:0", `{"title": "Signifer"}`)
	if resp.StatusCode != http.StatusOK || body["changed"] != true {
		t.Fatalf("patch slot = %d %v", resp.StatusCode, body)
	}
	if inst, _ := ws.Instance("0.0.0:t:1:1"); inst.Title != "Signifer" {
		t.Errorf("title = %q", inst.Title)
	}

	resp, body = do(t, "PUT", ts.URL+"/api/layouts/SQUAD_OFFSETS/steamId", `{"row": 0, "col": 9}`)
	offsets, _ := body["offsets"].(map[string]any)
	if resp.StatusCode != http.StatusOK || offsets["steamId"] == nil {
		t.Fatalf("put offset = %d %v", resp.StatusCode, body)
	}
	resp, _ = do(t, "DELETE", ts.URL+"/api/layouts/SQUAD_OFFSETS/steamId", "")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("delete offset = %d", resp.StatusCode)
	}

	resp, body = do(t, "POST", ts.URL+"/api/nodes", `{"parent": "First Cohort", "name": "Second Contubernium"}`)
	if resp.StatusCode != http.StatusCreated || body["node"] != "0.0.1" {
		t.Fatalf("add node = %d %v", resp.StatusCode, body)
	}
	resp, body = do(t, "DELETE", ts.URL+"/api/nodes/0.0.1", "")
	if removed, _ := body["removed"].([]any); resp.StatusCode != http.StatusOK || len(removed) != 3 {
		t.Errorf("remove node = %d %v", resp.StatusCode, body)
	}

	tests := []struct {
		method, path, body string
		status             int
	}{
		{"PATCH", "/api/slots/0.0.0:t:0", `{}`, http.StatusBadRequest},
		{"PATCH", "/api/slots/0.0.0:t:0", `{"layout": "NOPE"}`, http.StatusNotFound},
		{"PATCH", "/api/slots/0.0.0:t:0", `{"colour": "red"}`, http.StatusBadRequest},
		{"DELETE", "/api/layouts/SQUAD_OFFSETS/nothing", "", http.StatusNotFound},
		{"POST", "/api/nodes", `{"name": ""}`, http.StatusBadRequest},
		{"POST", "/api/nodes", `{"parent": "Nobody", "name": "x"}`, http.StatusNotFound},
		{"DELETE", "/api/nodes/9", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		if resp, body := do(t, tt.method, ts.URL+tt.path, tt.body); resp.StatusCode != tt.status {
			t.Errorf("%s %s %s = %d %v, want %d", tt.method, tt.path, tt.body, resp.StatusCode, body, tt.status)
		}
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.ErrCodeInvalidInput, http.StatusBadRequest},
		{errors.ErrCodeInvalidSheetName, http.StatusBadRequest},
		{errors.ErrCodeNodeNotFound, http.StatusNotFound},
		{errors.ErrCodeFileNotFound, http.StatusNotFound},
		{errors.ErrCodeUnsupported, http.StatusNotImplemented},
		{errors.ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_ELSE", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.code); got != tt.want {
			t.Errorf("statusFor(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
