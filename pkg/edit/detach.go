package edit

import "github.com/matzehuels/themis/pkg/config"

// Detach copies the slots of the template the node references into the
// node's own slots, after any slots it already has, and clears the
// reference. It reports false, changing nothing, when the node does not
// exist, has no reference, or references a missing or empty template.
func Detach(doc *config.Document, id config.NodeID) bool {
	if doc == nil {
		return false
	}
	n, ok := doc.Node(id)
	if !ok || n.UseSlotsFrom == "" {
		return false
	}
	tpl, ok := doc.Template(n.UseSlotsFrom)
	if !ok || len(tpl) == 0 {
		return false
	}
	for _, s := range tpl {
		n.Slots = append(n.Slots, s.Clone())
	}
	n.UseSlotsFrom = ""
	return true
}
