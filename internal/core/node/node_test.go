// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
)

/*
TestParseKind accepts the closed set only.
*/
func TestParseKind(t *testing.T) {
	for _, kind := range node.Kinds {
		parsed, err := node.ParseKind(string(kind))
		require.NoError(t, err)
		assert.Equal(t, kind, parsed)
	}

	parsed, err := node.ParseKind(" Load ")
	require.NoError(t, err)
	assert.Equal(t, node.KindLoad, parsed)

	for _, raw := range []string{"", "caliber", "box", "source", "loads"} {
		_, err := node.ParseKind(raw)
		assert.True(t, apperr.HasCode(err, apperr.CodeValidation), raw)
	}
}

/*
TestKind_Relations checks child and parent tables, including the dual Variation parent.
*/
func TestKind_Relations(t *testing.T) {
	assert.Equal(t, []node.Kind{node.KindManufacturer}, node.KindCountry.ChildKinds())
	assert.Equal(t, []node.Kind{node.KindDate, node.KindVariation}, node.KindLoad.ChildKinds())
	assert.Equal(t, []node.Kind{node.KindVariation}, node.KindDate.ChildKinds())
	assert.Empty(t, node.KindVariation.ChildKinds())

	assert.Empty(t, node.KindCountry.ParentKinds())
	assert.Equal(t, []node.Kind{node.KindLoad, node.KindDate}, node.KindVariation.ParentKinds())
}

/*
TestKind_Descendants lists every kind strictly below a root.
*/
func TestKind_Descendants(t *testing.T) {
	assert.Equal(t, node.Kinds[1:], node.KindCountry.Descendants())
	assert.Equal(t, []node.Kind{node.KindDate, node.KindVariation}, node.KindLoad.Descendants())
	assert.Equal(t, []node.Kind{node.KindVariation}, node.KindDate.Descendants())
	assert.Empty(t, node.KindVariation.Descendants())
}

/*
TestRouteDisplayID routes by prefix letter.
*/
func TestRouteDisplayID(t *testing.T) {
	tests := []struct {
		raw    string
		id     string
		target node.Target
		ok     bool
	}{
		{"L001", "L001", node.TargetLoad, true},
		{" d17 ", "D17", node.TargetDate, true},
		{"V3", "V3", node.TargetVariation, true},
		{"b001", "B001", node.TargetBox, true},
		{"X9", "X9", "", false},
		{"L", "L", "", false},
		{"", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			id, target, ok := node.RouteDisplayID(tt.raw)
			assert.Equal(t, tt.id, id)
			assert.Equal(t, tt.target, target)
			assert.Equal(t, tt.ok, ok)
		})
	}
}
