// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/validate"
)

/*
TestValidator_Required tests the mandatory field validation logic.
*/
func TestValidator_Required(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		value    string
		hasError bool
	}{
		{"valid_string", "code", "WIN", false},
		{"empty_string", "code", "", true},
		{"whitespace_only", "code", "   ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.Required(tt.field, tt.value)

			if tt.hasError {
				assert.True(t, v.HasErrors())
				err := v.Err()
				require.NotNil(t, err)

				ae := apperr.As(err)
				require.NotNil(t, ae)
				assert.Equal(t, "VALIDATION_ERROR", ae.Code)
				assert.Equal(t, tt.field, ae.Details[0].Field)
			} else {
				assert.False(t, v.HasErrors())
				assert.Nil(t, v.Err())
			}
		})
	}
}

/*
TestValidator_CartID checks the external id prefix rule.
*/
func TestValidator_CartID(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		prefix  byte
		isValid bool
	}{
		{"load", "L001", 'L', true},
		{"date", "D17", 'D', true},
		{"wrong_prefix", "V001", 'L', false},
		{"prefix_only", "L", 'L', false},
		{"empty", "", 'B', false},
		{"lowercase", "l001", 'L', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.CartID("cart_id", tt.value, tt.prefix)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_URL checks that only absolute http(s) URLs pass and empty is allowed.
*/
func TestValidator_URL(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		isValid bool
	}{
		{"https", "https://municion.org/headstamps", true},
		{"empty", "", true},
		{"relative", "/headstamps", false},
		{"ftp", "ftp://example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := &validate.Validator{}
			v.URL("url", tt.value)
			assert.Equal(t, !tt.isValid, v.HasErrors())
		})
	}
}

/*
TestValidator_Chain tests the fluent API (chaining multiple rules).
*/
func TestValidator_Chain(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("code", "WIN").
		MaxLen("code", "WIN", 20).
		Slug("slug", "iaa-journal").
		Range("year", 1943, 1800, 2100).
		Err()

	assert.NoError(t, err)
	assert.False(t, v.HasErrors())
}

/*
TestValidator_Chain_Failure tests error accumulation in the chain.
*/
func TestValidator_Chain_Failure(t *testing.T) {
	v := &validate.Validator{}

	err := v.
		Required("code", "").         // Fails
		CartID("cart_id", "X1", 'L'). // Fails
		OneOf("kind", "box", "load"). // Fails
		Err()

	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae)

	assert.Len(t, ae.Details, 3)
}
