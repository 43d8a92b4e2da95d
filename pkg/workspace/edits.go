package workspace

import (
	"context"
	"slices"

	"github.com/matzehuels/themis/pkg/config"
	"github.com/matzehuels/themis/pkg/edit"
	"github.com/matzehuels/themis/pkg/errors"
	"github.com/matzehuels/themis/pkg/resolve"
)

// SlotPatch lists the slot properties to change. Nil fields are left alone.
type SlotPatch struct {
	Layout *string  `json:"layout,omitempty"`
	Title  *string  `json:"title,omitempty"`
	Rank   *string  `json:"rank,omitempty"`
	Ranks  []string `json:"ranks,omitempty"`
	// Count sets the descriptive member count; a negative value removes it.
	Count *int `json:"count,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p SlotPatch) Empty() bool {
	return p.Layout == nil && p.Title == nil && p.Rank == nil && p.Ranks == nil && p.Count == nil
}

// EditSlot applies p to the slot addressed by ref, a placement handle with
// or without its coordinate ("0.0.0:t:1" or "0.0.0:t:1:2"). Editing a
// blueprint slot changes every node that uses the blueprint.
func (w *Workspace) EditSlot(ctx context.Context, ref string, p SlotPatch) (bool, error) {
	if p.Rank != nil && p.Ranks != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "set either rank or ranks, not both")
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	sref, err := w.slotRef(ref)
	if err != nil {
		return false, err
	}
	if p.Layout != nil && *p.Layout != "" && !w.doc.HasLayout(*p.Layout) {
		return false, errors.New(errors.ErrCodeNotFound, "no layout %q", *p.Layout)
	}

	changed := false
	if p.Layout != nil {
		changed = edit.SetLayout(w.doc, sref, *p.Layout) || changed
	}
	if p.Title != nil {
		changed = edit.SetTitle(w.doc, sref, *p.Title) || changed
	}
	if p.Rank != nil {
		changed = edit.SetRank(w.doc, sref, *p.Rank) || changed
	}
	if p.Ranks != nil {
		changed = edit.SetRanks(w.doc, sref, p.Ranks) || changed
	}
	if p.Count != nil {
		changed = edit.SetCount(w.doc, sref, *p.Count) || changed
	}
	if changed {
		w.touch(ctx)
		w.logger.Debug("edited slot", "slot", ref, "origin", sref.Origin)
	}
	return changed, nil
}

// slotRef turns a placement handle into the slot it was expanded from.
// Must be called with the lock held.
func (w *Workspace) slotRef(ref string) (config.SlotRef, error) {
	k, ok := resolve.ParseID(ref)
	if !ok {
		return config.SlotRef{}, errors.New(errors.ErrCodeInvalidInput, "%q is not a slot handle like 0.0.0:t:1", ref)
	}
	n, ok := w.doc.Node(k.Node)
	if !ok {
		return config.SlotRef{}, nodeNotFound(string(k.Node))
	}
	sref := config.SlotRef{Node: k.Node, Origin: k.Origin, Index: k.Index}
	if k.Origin == config.OriginTemplate {
		sref.Template = n.UseSlotsFrom
	}
	if _, ok := w.doc.Slot(sref); !ok {
		return config.SlotRef{}, errors.New(errors.ErrCodeNotFound, "no slot %q", ref)
	}
	return sref, nil
}

// SetOffset places field at off within the named layout, creating the
// layout when it does not exist yet.
func (w *Workspace) SetOffset(ctx context.Context, layout, field string, off config.Offset) (bool, error) {
	if layout == "" {
		return false, errors.New(errors.ErrCodeInvalidInput, "layout name cannot be empty")
	}
	if err := errors.ValidateFieldKey(field); err != nil {
		return false, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	if cur, ok := w.doc.Offsets(layout)[field]; ok && cur == off {
		return false, nil
	}
	w.doc.SetOffset(layout, field, off)
	w.touch(ctx)
	w.logger.Debug("set offset", "layout", layout, "field", field, "row", off.Row, "col", off.Col)
	return true, nil
}

// RemoveOffset deletes field from the named layout.
func (w *Workspace) RemoveOffset(ctx context.Context, layout, field string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.doc.HasLayout(layout) {
		return errors.New(errors.ErrCodeNotFound, "no layout %q", layout)
	}
	if !w.doc.RemoveOffset(layout, field) {
		return errors.New(errors.ErrCodeNotFound, "layout %q has no field %q", layout, field)
	}
	w.touch(ctx)
	w.logger.Debug("removed offset", "layout", layout, "field", field)
	return nil
}

// AddNode appends a node called name under parent, or as a new root when
// parent is empty. parent is a node handle or name.
func (w *Workspace) AddNode(ctx context.Context, parent, name string) (config.NodeID, error) {
	if err := errors.ValidateNodeName(name); err != nil {
		return "", err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	var id config.NodeID
	if parent == "" {
		id = w.doc.AddRoot(name)
	} else {
		pid, _, ok := w.doc.Lookup(parent)
		if !ok {
			return "", nodeNotFound(parent)
		}
		id, _ = w.doc.AddChild(pid, name)
	}
	w.touch(ctx)
	w.logger.Info("added node", "node", name, "id", id)
	return id, nil
}

// RemoveNode deletes the node named by ref together with its subtree and
// returns the names of the removed path. Handles of later siblings shift.
func (w *Workspace) RemoveNode(ctx context.Context, ref string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, _, ok := w.doc.Lookup(ref)
	if !ok {
		return nil, nodeNotFound(ref)
	}
	path := slices.Clone(w.doc.PathNames(id))
	w.doc.RemoveNode(id)
	w.touch(ctx)
	w.logger.Info("removed node", "id", id, "path", path)
	return path, nil
}

// PreferSlotColumn reports whether inherited columns are written to the
// slot by default.
func (w *Workspace) PreferSlotColumn() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.preferSlot
}

// SetPreferSlotColumn changes the default for later moves.
func (w *Workspace) SetPreferSlotColumn(prefer bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.preferSlot = prefer
}
