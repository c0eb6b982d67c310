// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package rollup

import (
	"context"
	"log/slog"
	"time"

	"github.com/RoaringBitmap/roaring/roaring64"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
)

// rootCaliber is the cache and metrics label of a whole-caliber rollup.
const rootCaliber = "caliber"

// Cache outcomes reported to the [Observer].
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

type Service struct {
	reader    Reader
	hierarchy Hierarchy
	dangling  Dangling
	cache     Cache
	observer  Observer
	logger    *slog.Logger
}

// NewService wires the aggregator. cache and observer may be nil.
func NewService(reader Reader, hierarchy Hierarchy, dangling Dangling, cache Cache, observer Observer, logger *slog.Logger) *Service {
	if observer == nil {
		observer = noopObserver{}
	}
	return &Service{
		reader:    reader,
		hierarchy: hierarchy,
		dangling:  dangling,
		cache:     cache,
		observer:  observer,
		logger:    logger,
	}
}

// Caliber rolls up a whole caliber, including the dangling-box scan.
func (service *Service) Caliber(ctx context.Context, caliberCode string) (*Result, error) {
	return service.build(ctx, caliberCode, nil)
}

// Node rolls up the subtree below root, which must belong to caliberCode.
func (service *Service) Node(ctx context.Context, caliberCode string, root node.Ref) (*Result, error) {
	return service.build(ctx, caliberCode, &root)
}

/*
build serves a rollup from the cache or computes it.

A cache failure is logged and the rollup computed anyway; the result is then
not stored, since the generation it belongs to is unknown.
*/
func (service *Service) build(ctx context.Context, caliberCode string, root *node.Ref) (*Result, error) {
	rootKey, rootKind := rootCaliber, rootCaliber
	if root != nil {
		rootKey, rootKind = root.String(), string(root.Kind)
	}

	cacheable := false
	var generation int64
	if service.cache != nil {
		cached, gen, err := service.cache.Lookup(ctx, caliberCode, rootKey)
		switch {
		case err != nil:
			service.observer.CacheResult(CacheError)
			service.logger.WarnContext(ctx, "rollup_cache_lookup_failed", slog.String("caliber", caliberCode), slog.Any("error", err))
		case cached != nil:
			service.observer.CacheResult(CacheHit)
			return cached, nil
		default:
			service.observer.CacheResult(CacheMiss)
			cacheable, generation = true, gen
		}
	}

	started := time.Now()
	result, err := service.compute(ctx, caliberCode, root)
	if err != nil {
		return nil, err
	}
	service.observer.ObserveRollup(rootKind, time.Since(started))

	service.logger.DebugContext(ctx, "rollup_computed",
		slog.String("caliber", caliberCode),
		slog.String("root", rootKey),
		slog.Int("nodes", len(result.Nodes)),
		slog.Duration("elapsed", time.Since(started)),
	)

	if cacheable {
		if err := service.cache.Store(ctx, caliberCode, rootKey, generation, result); err != nil {
			service.logger.WarnContext(ctx, "rollup_cache_store_failed", slog.String("caliber", caliberCode), slog.Any("error", err))
		}
	}
	return result, nil
}

// builder accumulates the subtree while it is fetched rank by rank.
type builder struct {
	sets  map[node.Kind]*roaring64.Bitmap
	index map[node.Ref]*Stats
}

func (b *builder) add(ref node.Ref, parent *node.Ref, hasImage bool) {
	stats := newStats(ref, hasImage)
	stats.Parent = parent
	b.index[ref] = stats

	set, ok := b.sets[ref.Kind]
	if !ok {
		set = roaring64.New()
		b.sets[ref.Kind] = set
	}
	set.Add(uint64(ref.ID))
}

/*
compute fetches the subtree and folds it.

 1. Seed the first rank: the caliber's countries, or the root node itself.
 2. For each parent/child relation in rank order, fetch the children of the
    parent id set in one query. A relation with an empty parent set is skipped.
 3. Count the boxes attached to every collected node in one grouped query.
 4. Fold bottom-up so each node's subtree tallies include its descendants.
*/
func (service *Service) compute(ctx context.Context, caliberCode string, root *node.Ref) (*Result, error) {
	b := &builder{
		sets:  make(map[node.Kind]*roaring64.Bitmap),
		index: make(map[node.Ref]*Stats),
	}

	if root == nil {
		if _, err := service.hierarchy.GetCaliber(ctx, caliberCode); err != nil {
			if apperr.HasCode(err, apperr.CodeNotFound) {
				return nil, apperr.NotFound("Caliber")
			}
			return nil, err
		}

		countries, err := service.reader.Countries(ctx, caliberCode)
		if err != nil {
			return nil, err
		}
		for _, edge := range countries {
			b.add(node.NewRef(node.KindCountry, edge.ID), nil, edge.HasImage)
		}
	} else {
		loaded, err := catalog.NewWalker(service.hierarchy).InCaliber(ctx, caliberCode, *root)
		if err != nil {
			return nil, err
		}
		b.add(*root, nil, loaded.HasImage())
	}

	for _, rel := range node.Relations {
		parents, ok := b.sets[rel.Parent]
		if !ok || parents.IsEmpty() {
			continue
		}

		edges, err := service.reader.Children(ctx, rel, toIDs(parents))
		if err != nil {
			return nil, err
		}
		for _, edge := range edges {
			parent := node.NewRef(rel.Parent, edge.ParentID)
			b.add(node.NewRef(rel.Child, edge.ID), &parent, edge.HasImage)
		}
	}

	if err := service.countBoxes(ctx, b); err != nil {
		return nil, err
	}

	result := &Result{
		Caliber: caliberCode,
		Root:    root,
		Totals:  make(map[node.Kind]Tally),
		index:   b.index,
	}
	fold(result)

	if root == nil {
		result.DanglingBoxes = service.scanDangling(ctx, caliberCode)
	}
	return result, nil
}

func (service *Service) countBoxes(ctx context.Context, b *builder) error {
	parents := make(map[node.Kind][]int64, len(b.sets))
	for kind, set := range b.sets {
		if !set.IsEmpty() {
			parents[kind] = toIDs(set)
		}
	}
	if len(parents) == 0 {
		return nil
	}

	counts, err := service.reader.BoxCounts(ctx, parents)
	if err != nil {
		return err
	}
	for _, count := range counts {
		if stats, ok := b.index[count.Parent]; ok {
			stats.Boxes = Tally{Count: count.Count, WithImage: count.WithImage}
		}
	}
	return nil
}

// fold fills subtree tallies and totals. Nodes are visited deepest rank
// first, so every child is complete before it is added to its parent.
func fold(result *Result) {
	result.Nodes = make([]*Stats, 0, len(result.index))
	for _, stats := range result.index {
		result.Nodes = append(result.Nodes, stats)
	}
	result.sortNodes()

	scope := node.Kinds
	if result.Root != nil {
		scope = result.Root.Kind.Descendants()
	}
	for _, kind := range scope {
		result.Totals[kind] = Tally{}
	}

	for i := len(result.Nodes) - 1; i >= 0; i-- {
		stats := result.Nodes[i]
		stats.SubtreeBoxes.merge(stats.Boxes)
		result.TotalBoxes.merge(stats.Boxes)

		if result.Root != nil && stats.Ref == *result.Root {
			continue
		}
		bump(result.Totals, stats.Ref.Kind, stats.HasImage)

		if stats.Parent == nil {
			continue
		}
		parent, ok := result.index[*stats.Parent]
		if !ok {
			continue
		}

		bump(parent.Children, stats.Ref.Kind, stats.HasImage)
		bump(parent.Subtree, stats.Ref.Kind, stats.HasImage)
		for kind, tally := range stats.Subtree {
			merged := parent.Subtree[kind]
			merged.merge(tally)
			parent.Subtree[kind] = merged
		}
		parent.SubtreeBoxes.merge(stats.SubtreeBoxes)
	}
}

// scanDangling counts boxes with a missing parent. A failing scan is logged
// and counts nothing; it never fails the rollup.
func (service *Service) scanDangling(ctx context.Context, caliberCode string) int {
	if service.dangling == nil {
		return 0
	}

	dangling, err := service.dangling.ListDanglingBoxes(ctx)
	if err != nil {
		service.logger.WarnContext(ctx, "rollup_dangling_scan_failed", slog.String("caliber", caliberCode), slog.Any("error", err))
		return 0
	}

	service.observer.SetDanglingBoxes(len(dangling))
	for _, orphan := range dangling {
		service.logger.WarnContext(ctx, "rollup_dangling_box",
			slog.String("bid", orphan.Bid),
			slog.String("parent", orphan.Parent().String()),
		)
	}
	return len(dangling)
}

func bump(tallies map[node.Kind]Tally, kind node.Kind, hasImage bool) {
	tally := tallies[kind]
	tally.add(hasImage)
	tallies[kind] = tally
}

func toIDs(set *roaring64.Bitmap) []int64 {
	values := set.ToArray()
	ids := make([]int64, len(values))
	for i, value := range values {
		ids[i] = int64(value)
	}
	return ids
}

type noopObserver struct{}

func (noopObserver) ObserveRollup(string, time.Duration) {}
func (noopObserver) CacheResult(string)                  {}
func (noopObserver) SetDanglingBoxes(int)                {}
