// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package rollup is the hierarchical aggregator.

For a root (a whole caliber or any single node) it computes, for every node of
the subtree, direct child counts per kind, directly attached box counts, the
same tallies over the entire subtree, and how many of each carry an image.

The subtree is fetched breadth-first with one set-oriented query per
parent/child relation; the id set of each rank is a roaring bitmap. Tallies
are then folded bottom-up in memory.
*/
package rollup

import (
	"cmp"
	"slices"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
)

// Tally counts records and how many of them have an image.
type Tally struct {
	Count     int `json:"count"`
	WithImage int `json:"with_image"`
}

func (t *Tally) add(hasImage bool) {
	t.Count++
	if hasImage {
		t.WithImage++
	}
}

func (t *Tally) merge(other Tally) {
	t.Count += other.Count
	t.WithImage += other.WithImage
}

// Stats are the counts of one node.
//
// Children and Subtree hold an entry (possibly zero) for every kind that can
// appear below the node, so consumers never need to test for presence.
type Stats struct {
	Ref          node.Ref            `json:"ref"`
	Parent       *node.Ref           `json:"parent,omitempty"`
	HasImage     bool                `json:"has_image"`
	Children     map[node.Kind]Tally `json:"children"`
	Boxes        Tally               `json:"boxes"`
	Subtree      map[node.Kind]Tally `json:"subtree"`
	SubtreeBoxes Tally               `json:"subtree_boxes"`
}

func newStats(ref node.Ref, hasImage bool) *Stats {
	stats := &Stats{
		Ref:      ref,
		HasImage: hasImage,
		Children: make(map[node.Kind]Tally),
		Subtree:  make(map[node.Kind]Tally),
	}
	for _, kind := range ref.Kind.ChildKinds() {
		stats.Children[kind] = Tally{}
	}
	for _, kind := range ref.Kind.Descendants() {
		stats.Subtree[kind] = Tally{}
	}
	return stats
}

// Result is the outcome of one rollup.
type Result struct {
	Caliber string `json:"caliber"`
	// Root is nil for a whole-caliber rollup.
	Root *node.Ref `json:"root,omitempty"`
	// Nodes are ordered by rank, then id.
	Nodes []*Stats `json:"nodes"`
	// Totals counts every node below the root per kind.
	Totals     map[node.Kind]Tally `json:"totals"`
	TotalBoxes Tally               `json:"total_boxes"`
	// DanglingBoxes counts boxes whose parent row is gone, store-wide: an
	// orphan no longer belongs to any caliber. Only whole-caliber rollups
	// scan for them; the bids are listed by the integrity report.
	DanglingBoxes int `json:"dangling_boxes"`

	index map[node.Ref]*Stats
}

// Lookup returns the stats of ref in O(1).
func (result *Result) Lookup(ref node.Ref) (*Stats, bool) {
	stats, ok := result.index[ref]
	return stats, ok
}

// reindex rebuilds the lookup index, e.g. after decoding a cached result.
func (result *Result) reindex() {
	result.index = make(map[node.Ref]*Stats, len(result.Nodes))
	for _, stats := range result.Nodes {
		result.index[stats.Ref] = stats
	}
}

// sortNodes orders Nodes by rank, then id.
func (result *Result) sortNodes() {
	slices.SortFunc(result.Nodes, func(a, b *Stats) int {
		if byRank := cmp.Compare(a.Ref.Kind.Rank(), b.Ref.Kind.Rank()); byRank != 0 {
			return byRank
		}
		return cmp.Compare(a.Ref.ID, b.Ref.ID)
	})
}
