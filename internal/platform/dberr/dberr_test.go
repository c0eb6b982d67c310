// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package dberr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
)

/*
TestWrap_Classification verifies that driver errors map onto the typed taxonomy.
*/
func TestWrap_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"no_rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"unique", &pgconn.PgError{Code: "23505", Detail: "Key (countryid, code)=(1, WIN) already exists."}, apperr.CodeUniquenessViolation},
		{"foreign_key", &pgconn.PgError{Code: "23503"}, apperr.CodeConflict},
		{"check_parent", &pgconn.PgError{Code: "23514", ConstraintName: "variation_parent_xor"}, apperr.CodeInvalidParentState},
		{"check_parent_type", &pgconn.PgError{Code: "23514", ConstraintName: "box_parenttype_check"}, apperr.CodeInvalidParentState},
		{"check_prefix", &pgconn.PgError{Code: "23514", ConstraintName: "load_cartid_prefix"}, apperr.CodeValidation},
		{"check_unknown", &pgconn.PgError{Code: "23514", ConstraintName: "something_else"}, apperr.CodeValidation},
		{"wrapped_unique", fmt.Errorf("commit: %w", &pgconn.PgError{Code: "23505"}), apperr.CodeUniquenessViolation},
		{"unknown", errors.New("connection reset"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(tt.err, "test"))
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
		})
	}
}

/*
TestWrap_UniqueDetail checks that the conflicting value is named in the message.
*/
func TestWrap_UniqueDetail(t *testing.T) {
	err := dberr.Wrap(&pgconn.PgError{Code: "23505", Detail: "Key (countryid, code)=(7, WIN) already exists."}, "create_manufacturer")

	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Contains(t, ae.Message, `"WIN"`)
	assert.Equal(t, "code", ae.Details[0].Field)

	// Column names are translated to API field names
	ae = apperr.As(dberr.Wrap(&pgconn.PgError{Code: "23505", Detail: "Key (cartid)=(L001) already exists."}, "create_load"))
	require.NotNil(t, ae)
	assert.Equal(t, "cart_id", ae.Details[0].Field)

	// A code containing commas is reported whole
	ae = apperr.As(dberr.Wrap(&pgconn.PgError{Code: "23505", Detail: "Key (manufacturerid, code)=(7, WIN 9MM, LUGER) already exists."}, "create_headstamp"))
	require.NotNil(t, ae)
	assert.Equal(t, "code", ae.Details[0].Field)
	assert.Contains(t, ae.Message, `"WIN 9MM, LUGER"`)
}

/*
TestWrap_CheckFields names the field behind a rejected prefix.
*/
func TestWrap_CheckFields(t *testing.T) {
	tests := []struct {
		constraint string
		field      string
	}{
		{"load_cartid_prefix", "cart_id"},
		{"date_cartid_prefix", "cart_id"},
		{"variation_cartid_prefix", "cart_id"},
		{"box_bid_prefix", "bid"},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			ae := apperr.As(dberr.Wrap(&pgconn.PgError{Code: "23514", ConstraintName: tt.constraint}, "create"))
			require.NotNil(t, ae)
			assert.Equal(t, apperr.CodeValidation, ae.Code)
			require.Len(t, ae.Details, 1)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

/*
TestWrap_PassThrough ensures typed errors and nil survive unchanged.
*/
func TestWrap_PassThrough(t *testing.T) {
	assert.NoError(t, dberr.Wrap(nil, "noop"))

	typed := apperr.CrossPartitionMove("9mm", "45acp")
	assert.Same(t, typed, dberr.Wrap(typed, "move"))
}
