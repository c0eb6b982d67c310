// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package pointer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
)

/*
TestNilIfBlank covers nil, blank and padded inputs.
*/
func TestNilIfBlank(t *testing.T) {
	assert.Nil(t, pointer.NilIfBlank(nil))
	assert.Nil(t, pointer.NilIfBlank(pointer.To("")))
	assert.Nil(t, pointer.NilIfBlank(pointer.To("   ")))
	assert.Equal(t, "img/b001.jpg", *pointer.NilIfBlank(pointer.To(" img/b001.jpg ")))
}

/*
TestVal_Fallback checks safe dereferencing.
*/
func TestVal_Fallback(t *testing.T) {
	var missing *int
	assert.Equal(t, 0, pointer.Val(missing))
	assert.Equal(t, 1943, pointer.Fallback(missing, 1943))
	assert.Equal(t, 1917, pointer.Val(pointer.To(1917)))
}
