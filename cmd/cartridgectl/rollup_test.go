// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/rollup"
)

/*
TestParseRef covers the kind:id flag syntax.
*/
func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    node.Ref
		wantErr bool
	}{
		{"load", "load:12", node.NewRef(node.KindLoad, 12), false},
		{"case_insensitive", "Country:3", node.NewRef(node.KindCountry, 3), false},
		{"missing_separator", "load12", node.Ref{}, true},
		{"unknown_kind", "shelf:1", node.Ref{}, true},
		{"zero_id", "date:0", node.Ref{}, true},
		{"not_a_number", "date:abc", node.Ref{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseRef(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

/*
TestOutputRollup renders the totals table in rank order.
*/
func TestOutputRollup(t *testing.T) {
	// 1. Build a result by hand
	result := &rollup.Result{
		Caliber: "9mm",
		Totals: map[node.Kind]rollup.Tally{
			node.KindCountry: {Count: 2},
			node.KindLoad:    {Count: 5, WithImage: 1},
		},
		TotalBoxes: rollup.Tally{Count: 3},
	}

	// 2. Render into a buffer
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	outputRollup(cmd, result)

	// 3. Countries come before loads
	rendered := out.String()
	assert.Contains(t, rendered, "9mm")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("country")), bytes.Index(out.Bytes(), []byte("load")))
	assert.NotContains(t, rendered, "dangling")
}

/*
TestCheckFormat rejects anything but table and json.
*/
func TestCheckFormat(t *testing.T) {
	defer func(previous string) { format = previous }(format)

	format = formatJSON
	assert.NoError(t, checkFormat())

	format = "yaml"
	assert.Error(t, checkFormat())
}
