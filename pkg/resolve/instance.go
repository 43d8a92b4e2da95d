package resolve

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/themis/pkg/config"
)

// ColSource records where an instance's column came from.
type ColSource string

const (
	ColSlot     ColSource = "slot"     // the slot or point defines col
	ColAncestor ColSource = "ancestor" // the owning node's startCol
	ColDefault  ColSource = "default"  // neither; column 1
)

// DefaultCol is the column used when neither slot nor node defines one.
const DefaultCol = 1

// NoCoordIndex marks a single-row instance, which has no position within
// its slot.
const NoCoordIndex = -1

// Instance is one concrete placement.
type Instance struct {
	Sheet    string                   `json:"sheet"`
	Row      int                      `json:"row"`
	Col      int                      `json:"col"`
	Layout   string                   `json:"layout"`
	Offsets  map[string]config.Offset `json:"offsets"`
	NodePath []string                 `json:"nodePath"`

	Node       config.NodeID   `json:"node"`
	Slot       config.SlotRef  `json:"slot"`
	Strategy   config.Strategy `json:"strategy"`
	CoordIndex int             `json:"coordIndex"`
	ColSource  ColSource       `json:"colSource"`

	// Title and Rank are copied from the slot for display.
	Title string   `json:"title,omitempty"`
	Rank  string   `json:"rank,omitempty"`
	Ranks []string `json:"ranks,omitempty"`
}

// ID returns a textual handle "<node>:<n|t>:<slot>[:<coord>]" that
// [ParseID] and [Find] understand. It stays valid as long as the document
// structure around the instance does not change.
func (i Instance) ID() string {
	origin := "n"
	if i.Slot.Origin == config.OriginTemplate {
		origin = "t"
	}
	id := fmt.Sprintf("%s:%s:%d", i.Node, origin, i.Slot.Index)
	if i.CoordIndex != NoCoordIndex {
		id += ":" + strconv.Itoa(i.CoordIndex)
	}
	return id
}

// Path returns the node path joined with ">".
func (i Instance) Path() string {
	return strings.Join(i.NodePath, ">")
}

// Label returns the text shown on the anchor cell: the title, else the rank,
// else the first of the ranks.
func (i Instance) Label() string {
	switch {
	case i.Title != "":
		return i.Title
	case i.Rank != "":
		return i.Rank
	case len(i.Ranks) > 0:
		return i.Ranks[0]
	}
	return ""
}

// Key identifies an instance without its template name.
type Key struct {
	Node       config.NodeID
	Origin     config.Origin
	Index      int
	CoordIndex int
}

// ParseID parses a handle produced by [Instance.ID].
func ParseID(id string) (Key, bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return Key{}, false
	}
	k := Key{Node: config.NodeID(parts[0]), CoordIndex: NoCoordIndex}
	if _, ok := k.Node.Indices(); !ok {
		return Key{}, false
	}
	switch parts[1] {
	case "n":
		k.Origin = config.OriginNode
	case "t":
		k.Origin = config.OriginTemplate
	default:
		return Key{}, false
	}
	idx, err := strconv.Atoi(parts[2])
	if err != nil || idx < 0 {
		return Key{}, false
	}
	k.Index = idx
	if len(parts) == 4 {
		c, err := strconv.Atoi(parts[3])
		if err != nil || c < 0 {
			return Key{}, false
		}
		k.CoordIndex = c
	}
	return k, true
}

// Find returns the instance with the given handle.
func Find(instances []Instance, id string) (Instance, bool) {
	k, ok := ParseID(id)
	if !ok {
		return Instance{}, false
	}
	for _, inst := range instances {
		if inst.Node == k.Node && inst.Slot.Origin == k.Origin &&
			inst.Slot.Index == k.Index && inst.CoordIndex == k.CoordIndex {
			return inst, true
		}
	}
	return Instance{}, false
}
