// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"slices"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/constants"
)

// Crumb is one step of an ancestry chain.
type Crumb struct {
	Ref   node.Ref `json:"ref"`
	Label string   `json:"label"`
}

// Ancestry is the chain from a node's country down to the node itself.
type Ancestry struct {
	CaliberCode string  `json:"caliber_code"`
	Chain       []Crumb `json:"chain"`
}

// Walker resolves nodes and their caliber by walking parent edges.
//
// A Walker memoizes every node it loads and is meant to live for one request
// (or one rollup). It is not safe for concurrent use.
type Walker struct {
	reader   NodeReader
	nodes    map[node.Ref]Node
	calibers map[node.Ref]string
}

// NewWalker creates a request-scoped walker over reader.
func NewWalker(reader NodeReader) *Walker {
	return &Walker{
		reader:   reader,
		nodes:    make(map[node.Ref]Node),
		calibers: make(map[node.Ref]string),
	}
}

// Get loads ref, serving repeated lookups from memory.
func (walker *Walker) Get(ctx context.Context, ref node.Ref) (Node, error) {
	if cached, ok := walker.nodes[ref]; ok {
		return cached, nil
	}

	loaded, err := walker.reader.GetNode(ctx, ref)
	if err != nil {
		return nil, err
	}

	walker.nodes[ref] = loaded
	return loaded, nil
}

// Remember seeds the memo with an already loaded node.
func (walker *Walker) Remember(loaded Node) {
	walker.nodes[loaded.Ref()] = loaded
}

/*
Ancestry walks from ref up to its country.

The walk follows exactly one parent edge per step (a Variation takes its Load
or its Date) and stops after constants.MaxWalkDepth steps, so corrupted data
cannot loop forever.

Returns:
  - *Ancestry: chain ordered root first, ending with ref itself
  - error: NOT_FOUND if ref itself is missing, BROKEN_CHAIN if an ancestor is
    missing, a parent reference is unset or the depth bound is exceeded
*/
func (walker *Walker) Ancestry(ctx context.Context, ref node.Ref) (*Ancestry, error) {
	var chain []Crumb
	current := ref

	for depth := 0; depth < constants.MaxWalkDepth; depth++ {
		loaded, err := walker.Get(ctx, current)
		if err != nil {
			if depth > 0 && apperr.HasCode(err, apperr.CodeNotFound) {
				return nil, apperr.BrokenChain(fmt.Sprintf("%s references missing %s", chain[len(chain)-1].Ref, current))
			}
			return nil, err
		}

		chain = append(chain, Crumb{Ref: current, Label: loaded.Label()})

		if country, ok := loaded.(*Country); ok {
			if country.CaliberCode == "" {
				return nil, apperr.BrokenChain(fmt.Sprintf("%s has no caliber", current))
			}
			walker.calibers[ref] = country.CaliberCode
			slices.Reverse(chain)
			return &Ancestry{CaliberCode: country.CaliberCode, Chain: chain}, nil
		}

		parent, ok := loaded.ParentRef()
		if !ok {
			return nil, apperr.BrokenChain(fmt.Sprintf("%s has no parent reference", current))
		}
		current = parent
	}

	return nil, apperr.BrokenChain(fmt.Sprintf("walk from %s exceeded %d steps", ref, constants.MaxWalkDepth))
}

// CaliberOf returns the caliber code owning ref.
func (walker *Walker) CaliberOf(ctx context.Context, ref node.Ref) (string, error) {
	if code, ok := walker.calibers[ref]; ok {
		return code, nil
	}

	ancestry, err := walker.Ancestry(ctx, ref)
	if err != nil {
		return "", err
	}
	return ancestry.CaliberCode, nil
}

// InCaliber loads ref and verifies it belongs to caliberCode. A node of
// another caliber is reported as NOT_FOUND so calibers stay isolated.
func (walker *Walker) InCaliber(ctx context.Context, caliberCode string, ref node.Ref) (Node, error) {
	loaded, err := walker.Get(ctx, ref)
	if err != nil {
		return nil, err
	}

	owner, err := walker.CaliberOf(ctx, ref)
	if err != nil {
		return nil, err
	}

	if owner != caliberCode {
		return nil, apperr.NotFound(kindTitle(ref.Kind))
	}
	return loaded, nil
}

// kindTitle is the resource name used in error messages.
func kindTitle(kind node.Kind) string {
	switch kind {
	case node.KindCountry:
		return "Country"
	case node.KindManufacturer:
		return "Manufacturer"
	case node.KindHeadstamp:
		return "Headstamp"
	case node.KindLoad:
		return "Load"
	case node.KindDate:
		return "Date"
	case node.KindVariation:
		return "Variation"
	default:
		return "Node"
	}
}

// KindTitle exposes the resource name of kind for other packages' messages.
func KindTitle(kind node.Kind) string {
	return kindTitle(kind)
}
