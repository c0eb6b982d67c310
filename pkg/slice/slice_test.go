// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package slice_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/slice"
)

/*
TestFilterMap chains both helpers the way dependent counts are turned into
blocker names.
*/
func TestFilterMap(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{"nil", nil, nil},
		{"none_kept", []string{"l001", "d001"}, nil},
		{"some_kept", []string{"b001", "l001", "b002"}, []string{"B001", "B002"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kept := slice.Filter(tt.input, func(value string) bool { return strings.HasPrefix(value, "b") })
			assert.Equal(t, tt.want, slice.Map(kept, strings.ToUpper))
		})
	}
}
