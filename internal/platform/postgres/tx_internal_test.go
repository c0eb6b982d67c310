// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package postgres

import (
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
)

/*
TestCommitError maps commit-time failures onto the typed error codes.
*/
func TestCommitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"unique", &pgconn.PgError{Code: "23505", Detail: "Key (bid)=(B001) already exists."}, apperr.CodeUniquenessViolation},
		{"foreign_key", &pgconn.PgError{Code: "23503"}, apperr.CodeConflict},
		{"parent_check", &pgconn.PgError{Code: "23514", ConstraintName: "variation_parent_xor"}, apperr.CodeInvalidParentState},
		{"connection", errors.New("connection reset"), apperr.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := commitError(tt.err)

			ae := apperr.As(err)
			require.NotNil(t, ae)
			assert.Equal(t, tt.code, ae.Code)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
