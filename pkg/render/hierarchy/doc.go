// Package hierarchy renders the organization hierarchy of a document as a
// Graphviz diagram.
//
// Every node becomes a box connected to its parent. In detailed mode the
// label also lists the node's effective sheet, layout, start column, slot
// blueprint and the number of placements it produces, and each referenced
// blueprint appears as a dashed box linked to the nodes that use it.
//
//	dot := hierarchy.ToDOT(doc, hierarchy.Options{Detailed: true})
//	svg, err := hierarchy.RenderSVG(dot)
//
// PDF and PNG output go through [Convert], which uses a [render.Converter].
package hierarchy
