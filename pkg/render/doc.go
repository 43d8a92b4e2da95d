// Package render turns documents and resolved placements into files people
// can look at.
//
// # Overview
//
// The subpackages produce the actual outputs:
//
//   - [hierarchy]: the organization tree as a Graphviz diagram (DOT, SVG)
//   - [workbook]: resolved placements written into an .xlsx preview workbook,
//     plus a plain-text grid for terminals
//
// # Format Conversion
//
// A [Converter] turns any SVG into PDF or PNG using the external
// rsvg-convert tool (from librsvg). Without the tool, conversions fail with
// an UNSUPPORTED error; SVG and DOT output keep working.
//
//	dot := hierarchy.ToDOT(doc, hierarchy.Options{})
//	svg, err := hierarchy.RenderSVG(dot)
//	png, err := render.Converter{}.Convert(ctx, svg, render.FormatPNG, 2)
//
// [hierarchy]: github.com/matzehuels/themis/pkg/render/hierarchy
// [workbook]: github.com/matzehuels/themis/pkg/render/workbook
package render
