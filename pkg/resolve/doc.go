// Package resolve expands a sparse organizational document into concrete
// placements.
//
// # Overview
//
// A [config.Document] describes placements indirectly: slots borrow their
// layout, sheet and column from the nodes above them, and many nodes share
// one slot template. [Resolve] walks the hierarchy depth-first in pre-order
// and turns every slot into one [Instance] per addressed row or point:
//
//	instances := resolve.Resolve(doc)
//	for _, inst := range instances {
//	    fmt.Println(inst.Sheet, inst.Row, inst.Col, inst.Layout)
//	}
//
// Within a node, the node's own slots come first, followed by the slots of
// the template named by useSlotsFrom. Each collection keeps its stored order.
//
// # Inheritance
//
// For every slot:
//
//   - Layout: the slot's layout, else the nearest node on the path (owning
//     node first) that declares one, else "".
//   - Offsets: the layout's offset table. An unknown layout yields an empty
//     map, never an error.
//   - Column: the slot's location.col ([ColSlot]), else the owning node's
//     location.startCol ([ColAncestor]), else 1 ([ColDefault]). Explicit
//     points may override the column per point.
//   - Sheet: the slot's location.sheetName, else the nearest sheetName on the
//     path, else [config.DefaultSheet].
//
// # Handles
//
// Instances do not hold pointers into the document. They carry a
// [config.SlotRef] and a coordinate index so that package edit can locate
// the exact value to rewrite. Instances are recomputed from scratch on every
// call and are never cached.
package resolve
