package config

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Match is a node found by [Document.Search].
type Match struct {
	ID       NodeID
	Node     *Node
	Path     []string
	Distance int
}

// Search fuzzy-matches query against node names, sheet names and shortcuts.
// Results are ordered by match distance, then pre-order position. An empty
// query matches every node.
func (d *Document) Search(query string) []Match {
	type entry struct {
		id   NodeID
		node *Node
		path []string
	}
	var (
		entries []entry
		targets []string
	)
	Walk(d.Hierarchy, func(id NodeID, path []*Node) {
		n := path[len(path)-1]
		names := make([]string, len(path))
		for i, p := range path {
			names[i] = p.Name
		}
		entries = append(entries, entry{id: id, node: n, path: names})
		targets = append(targets, searchText(n))
	})

	query = strings.TrimSpace(query)
	if query == "" {
		out := make([]Match, len(entries))
		for i, e := range entries {
			out[i] = Match{ID: e.id, Node: e.node, Path: e.path}
		}
		return out
	}

	ranks := fuzzy.RankFindNormalizedFold(query, targets)
	sort.Stable(ranks)

	out := make([]Match, 0, len(ranks))
	for _, r := range ranks {
		e := entries[r.OriginalIndex]
		out = append(out, Match{ID: e.id, Node: e.node, Path: e.path, Distance: r.Distance})
	}
	return out
}

func searchText(n *Node) string {
	parts := []string{n.Name}
	if n.SheetName != "" {
		parts = append(parts, n.SheetName)
	}
	parts = append(parts, n.Shortcuts...)
	return strings.Join(parts, " ")
}
