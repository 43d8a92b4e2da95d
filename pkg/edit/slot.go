package edit

import (
	"slices"

	"github.com/matzehuels/themis/pkg/config"
)

// Slot property edits. A template slot is shared by every node using the
// template, so editing it through one node changes all of them; [Detach]
// first to edit a single node.

// SetLayout sets the slot's layout. An empty name makes the slot inherit
// the layout of its node again.
func SetLayout(doc *config.Document, ref config.SlotRef, layout string) bool {
	return updateSlot(doc, ref, func(s *config.Slot) bool {
		if s.Layout == layout {
			return false
		}
		s.Layout = layout
		return true
	})
}

// SetTitle sets the slot's title. An empty title clears it.
func SetTitle(doc *config.Document, ref config.SlotRef, title string) bool {
	return updateSlot(doc, ref, func(s *config.Slot) bool {
		if s.Title == title {
			return false
		}
		s.Title = title
		return true
	})
}

// SetRank gives the slot a single rank and drops any rank list.
func SetRank(doc *config.Document, ref config.SlotRef, rank string) bool {
	return updateSlot(doc, ref, func(s *config.Slot) bool {
		if s.Rank == rank && s.Ranks == nil {
			return false
		}
		s.Rank = rank
		s.Ranks = nil
		return true
	})
}

// SetRanks gives the slot a rank list and drops any single rank.
func SetRanks(doc *config.Document, ref config.SlotRef, ranks []string) bool {
	return updateSlot(doc, ref, func(s *config.Slot) bool {
		if s.Rank == "" && slices.Equal(s.Ranks, ranks) {
			return false
		}
		s.Rank = ""
		s.Ranks = slices.Clone(ranks)
		return true
	})
}

// SetCount sets the slot's descriptive member count. A negative value
// removes it.
func SetCount(doc *config.Document, ref config.SlotRef, count int) bool {
	return updateSlot(doc, ref, func(s *config.Slot) bool {
		if count < 0 {
			if s.Count == nil {
				return false
			}
			s.Count = nil
			return true
		}
		return setInt(&s.Count, count)
	})
}

func updateSlot(doc *config.Document, ref config.SlotRef, fn func(*config.Slot) bool) bool {
	if doc == nil {
		return false
	}
	s, ok := doc.Slot(ref)
	if !ok {
		return false
	}
	return fn(s)
}
