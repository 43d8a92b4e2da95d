// Package edit writes changes made to resolved placements back into the
// sparse document.
//
// [ApplyMove] rewrites a placement's row and column in the encoding the slot
// already uses: a point of an explicit list, an entry of a row list, a single
// row, or a shifted row range. [Detach] copies a node's shared slot template
// into the node's own slots so later edits stop affecting other nodes.
//
// Edits go through the handles carried by [resolve.Instance]. A handle that
// no longer matches the document makes the edit a no-op: functions report
// false and leave the document untouched.
//
// Column ownership is section-wide by default. Moving a placement whose
// column was borrowed from its node rewrites the node's startCol, which moves
// every sibling placement that borrows it too. Set [Move.PreferSlotColumn]
// to pin the column on the slot instead. A placement that fell back to the
// default column 1 has no node column to share, so its new column is always
// written to the slot.
package edit
