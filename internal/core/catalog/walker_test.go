// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
)

// rows is a NodeReader over a fixed set of nodes that counts its reads.
type rows struct {
	nodes map[node.Ref]catalog.Node
	reads int
}

func (r *rows) GetNode(_ context.Context, ref node.Ref) (catalog.Node, error) {
	r.reads++
	if loaded, ok := r.nodes[ref]; ok {
		return loaded, nil
	}
	return nil, dberr.ErrNotFound
}

func newRows(nodes ...catalog.Node) *rows {
	r := &rows{nodes: make(map[node.Ref]catalog.Node)}
	for _, loaded := range nodes {
		r.nodes[loaded.Ref()] = loaded
	}
	return r
}

/*
TestWalker_BrokenChain covers the ways a parent walk can fail after the first step.
*/
func TestWalker_BrokenChain(t *testing.T) {
	tests := []struct {
		name  string
		nodes []catalog.Node
		start node.Ref
		code  string
	}{
		{
			name:  "missing_start",
			start: node.NewRef(node.KindLoad, 1),
			code:  apperr.CodeNotFound,
		},
		{
			name:  "missing_ancestor",
			nodes: []catalog.Node{&catalog.Load{ID: 1, HeadstampID: 99, CartID: "L001"}},
			start: node.NewRef(node.KindLoad, 1),
			code:  apperr.CodeBrokenChain,
		},
		{
			name:  "variation_without_anchor",
			nodes: []catalog.Node{&catalog.Variation{ID: 3, CartID: "V001"}},
			start: node.NewRef(node.KindVariation, 3),
			code:  apperr.CodeBrokenChain,
		},
		{
			name:  "country_without_caliber",
			nodes: []catalog.Node{&catalog.Country{ID: 4, Name: "US"}},
			start: node.NewRef(node.KindCountry, 4),
			code:  apperr.CodeBrokenChain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := catalog.NewWalker(newRows(tt.nodes...)).Ancestry(context.Background(), tt.start)
			require.Error(t, err)
			assert.True(t, apperr.HasCode(err, tt.code), err.Error())
		})
	}
}

/*
TestWalker_DateAnchoredVariation walks through the date to the country.
*/
func TestWalker_DateAnchoredVariation(t *testing.T) {
	reader := newRows(
		&catalog.Country{ID: 1, CaliberCode: "9mm", Name: "US"},
		&catalog.Manufacturer{ID: 2, CountryID: 1, Code: "WIN"},
		&catalog.Headstamp{ID: 3, ManufacturerID: 2, Code: "WIN 9MM LUGER"},
		&catalog.Load{ID: 4, HeadstampID: 3, CartID: "L001"},
		&catalog.Date{ID: 5, LoadID: 4, CartID: "D001"},
		&catalog.Variation{ID: 6, DateID: pointer.To(int64(5)), CartID: "V001"},
	)
	walker := catalog.NewWalker(reader)

	ancestry, err := walker.Ancestry(context.Background(), node.NewRef(node.KindVariation, 6))
	require.NoError(t, err)

	assert.Equal(t, "9mm", ancestry.CaliberCode)
	assert.Len(t, ancestry.Chain, 6)
	assert.Equal(t, node.NewRef(node.KindDate, 5), ancestry.Chain[4].Ref)

	// Memoized: a second walk reads nothing
	reads := reader.reads
	code, err := walker.CaliberOf(context.Background(), node.NewRef(node.KindVariation, 6))
	require.NoError(t, err)
	assert.Equal(t, "9mm", code)
	assert.Equal(t, reads, reader.reads)
}
