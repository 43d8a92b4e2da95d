// Package workspace hosts one configuration document for interactive tools.
//
// A [Workspace] owns the document, the file it came from, and the resolved
// placements derived from it. Every mutation goes through the workspace, which
// serializes edits, re-resolves the whole document afterwards, marks it dirty
// and reports the event to the registered observability hooks. Readers get
// copies: [Workspace.Instances] and [Workspace.Snapshot] never expose the live
// document.
//
// The CLI and the HTTP server both sit on top of this package:
//
//	ws, err := workspace.Open(ctx, "legion.js", workspace.Options{Logger: logger})
//	if err != nil {
//	    return err
//	}
//	changed, err := ws.Move(ctx, "0.0.0:t:1:1", edit.Move{Row: config.IntPtr(20)})
//	...
//	err = ws.Save(ctx, "")
package workspace

import (
	"bytes"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/edit"
	"github.com/matzehuels/themis/pkg/errors"
	themisio "github.com/matzehuels/themis/pkg/io"
	"github.com/matzehuels/themis/pkg/observability"
	"github.com/matzehuels/themis/pkg/resolve"
	"github.com/matzehuels/themis/pkg/validate"
)

// Options configures a workspace.
type Options struct {
	// Logger receives debug and info events. Defaults to log.Default().
	Logger *log.Logger

	// PreferSlotColumn applies to every move, in addition to the flag on
	// the move itself. [Workspace.SetPreferSlotColumn] changes it later.
	PreferSlotColumn bool

	// FillDefaults makes Open fill the sections the file leaves out with
	// those of [config.Default]. The workspace is dirty when any was filled.
	FillDefaults bool
}

// Workspace is a document under edit. It is safe for concurrent use.
type Workspace struct {
	mu        sync.RWMutex
	doc       *config.Document
	path      string
	dirty     bool
	instances []resolve.Instance

	logger     *log.Logger
	preferSlot bool
}

// New wraps doc in a workspace that has no backing file yet. A nil doc
// starts from [config.Default].
func New(doc *config.Document, opts Options) *Workspace {
	if doc == nil {
		doc = config.MergeDefaults(nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	w := &Workspace{
		doc:        doc,
		logger:     logger,
		preferSlot: opts.PreferSlotColumn,
	}
	w.refresh(context.Background())
	return w
}

// Open reads the document at path.
func Open(ctx context.Context, path string, opts Options) (*Workspace, error) {
	start := time.Now()
	doc, err := themisio.ImportFile(path)
	observability.Storage().OnLoad(ctx, path, time.Since(start), err)
	if err != nil {
		return nil, err
	}
	var filled []string
	if opts.FillDefaults {
		filled = missingSections(doc)
		config.MergeDefaults(doc)
	}
	w := New(doc, opts)
	w.path = path
	w.dirty = len(filled) > 0
	w.logger.Info("opened document", "path", path, "instances", len(w.instances))
	if len(filled) > 0 {
		w.logger.Info("filled default sections", "sections", filled)
	}
	return w, nil
}

// missingSections names the top-level sections [config.MergeDefaults]
// would fill in.
func missingSections(d *config.Document) []string {
	var out []string
	for _, s := range []struct {
		key     string
		missing bool
	}{
		{config.KeyLayouts, d.Layouts == nil},
		{config.KeySlotTemplates, d.SlotTemplates == nil},
		{config.KeyHierarchy, d.Hierarchy == nil},
		{config.KeyRanks, d.Ranks == nil},
		{config.KeyCustomFields, d.CustomFields == nil},
		{config.KeyEventTypes, d.EventTypes == nil},
	} {
		if s.missing {
			out = append(out, s.key)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(config.Default().Extra)) {
		if _, ok := d.Extra[k]; !ok {
			out = append(out, k)
		}
	}
	return out
}

// Path returns the file the document was read from or last saved to.
func (w *Workspace) Path() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.path
}

// Dirty reports whether the document changed since it was opened or saved.
func (w *Workspace) Dirty() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dirty
}

// Snapshot returns a deep copy of the document.
func (w *Workspace) Snapshot() *config.Document {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.doc.Clone()
}

// Instances returns the resolved placements matching f.
func (w *Workspace) Instances(f resolve.Filter) []resolve.Instance {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return resolve.Select(w.instances, f)
}

// Sheets returns the sheets that receive at least one placement.
func (w *Workspace) Sheets() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return resolve.Sheets(w.instances)
}

// Instance returns the placement with the given handle.
func (w *Workspace) Instance(id string) (resolve.Instance, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	inst, ok := resolve.Find(w.instances, id)
	if !ok {
		return resolve.Instance{}, errors.New(errors.ErrCodeInstanceNotFound, "no placement %q", id)
	}
	return inst, nil
}

// Move relocates the placement with the given handle and reports whether
// the document changed.
func (w *Workspace) Move(ctx context.Context, id string, mv edit.Move) (bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	inst, ok := resolve.Find(w.instances, id)
	if !ok {
		return false, errors.New(errors.ErrCodeInstanceNotFound, "no placement %q", id)
	}
	if (mv.Row != nil && *mv.Row < 1) || (mv.Col != nil && *mv.Col < 1) {
		return false, errors.New(errors.ErrCodeInvalidInput, "rows and columns start at 1")
	}
	mv.PreferSlotColumn = mv.PreferSlotColumn || w.preferSlot
	changed := edit.ApplyMove(w.doc, inst, mv)
	observability.Engine().OnMove(ctx, id, changed)
	if changed {
		w.touch(ctx)
		w.logger.Debug("moved placement", "id", id, "source", inst.ColSource)
	}
	return changed, nil
}

// Detach copies the template slots into the node named by ref, which is
// either a node handle such as "0.1" or a node name.
func (w *Workspace) Detach(ctx context.Context, ref string) (config.NodeID, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, n, ok := w.doc.Lookup(ref)
	if !ok {
		return "", nodeNotFound(ref)
	}
	tpl := n.UseSlotsFrom
	if tpl == "" {
		return id, errors.New(errors.ErrCodeInvalidInput, "node %q does not use a slot blueprint", n.Name)
	}
	ok = edit.Detach(w.doc, id)
	observability.Engine().OnDetach(ctx, string(id), tpl, ok)
	if !ok {
		return id, errors.New(errors.ErrCodeTemplateNotFound, "slot blueprint %q is missing or empty", tpl)
	}
	w.touch(ctx)
	w.logger.Info("detached node", "node", n.Name, "template", tpl)
	return id, nil
}

// Update runs fn against the live document. When fn reports a change the
// placements are re-resolved and the document is marked dirty.
func (w *Workspace) Update(ctx context.Context, fn func(doc *config.Document) bool) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !fn(w.doc) {
		return false
	}
	w.touch(ctx)
	return true
}

// Validate checks the document.
func (w *Workspace) Validate(ctx context.Context) validate.Result {
	w.mu.RLock()
	defer w.mu.RUnlock()
	res := validate.Validate(w.doc)
	observability.Engine().OnValidate(ctx, len(res.Errors), len(res.Warnings))
	return res
}

// Save writes the document to path, or to the workspace path when path is
// empty. The format follows the file extension.
func (w *Workspace) Save(ctx context.Context, path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if path == "" {
		path = w.path
	}
	if err := errors.ValidatePath(path); err != nil {
		return err
	}

	var buf bytes.Buffer
	err := themisio.Write(&buf, w.doc, themisio.FormatFromPath(path))
	if err == nil {
		err = themisio.WriteFileAtomic(path, buf.Bytes(), 0o644)
	}
	observability.Storage().OnSave(ctx, path, buf.Len(), err)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "save %s", path)
	}

	w.path = path
	w.dirty = false
	w.logger.Info("saved document", "path", path, "bytes", buf.Len())
	return nil
}

// LookupNode returns the handle of the node named by ref, which is either a
// node handle such as "0.1" or a node name.
func (w *Workspace) LookupNode(ref string) (config.NodeID, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	id, _, ok := w.doc.Lookup(ref)
	if !ok {
		return "", nodeNotFound(ref)
	}
	return id, nil
}

func nodeNotFound(ref string) error {
	return errors.New(errors.ErrCodeNodeNotFound, "no node %q", ref)
}

// touch must be called with the write lock held.
func (w *Workspace) touch(ctx context.Context) {
	w.dirty = true
	w.refresh(ctx)
}

func (w *Workspace) refresh(ctx context.Context) {
	start := time.Now()
	w.instances = resolve.Resolve(w.doc)
	elapsed := time.Since(start)
	observability.Engine().OnResolve(ctx, len(w.instances), elapsed)
	w.logger.Debug("resolved", "instances", len(w.instances), "duration", elapsed)
}
