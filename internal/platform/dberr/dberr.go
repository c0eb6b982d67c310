// Copyright (c) 2026 Cartridge Collection. All rights reserved.

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
)

// PostgreSQL SQLSTATE codes the catalog reacts to.
const (
	sqlStateUniqueViolation     = "23505"
	sqlStateForeignKeyViolation = "23503"
	sqlStateCheckViolation      = "23514"
)

var (
	// ErrNotFound is a standard error returned when a queried row doesn't exist.
	ErrNotFound = apperr.NotFound("Resource")

	// uniqueDetail parses "Key (countryid, code)=(1, WIN) already exists."
	uniqueDetail = regexp.MustCompile(`Key \((.+)\)=\((.+)\) already exists`)

	// columnFields renames storage columns to their API field names.
	columnFields = map[string]string{
		"cartid": "cart_id",
	}

	// parentChecks are the CHECK constraints guarding a record's parent reference.
	parentChecks = map[string]bool{
		"variation_parent_xor": true,
		"box_parenttype_check": true,
	}

	// checkFields names the API field behind each value CHECK constraint.
	checkFields = map[string]string{
		"load_cartid_prefix":      "cart_id",
		"date_cartid_prefix":      "cart_id",
		"variation_cartid_prefix": "cart_id",
		"box_bid_prefix":          "bid",
	}
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// Errors that already are an [apperr.AppError] pass through untouched so that
// typed errors raised inside a transaction survive the rollback path.
func Wrap(err error, action string) error {
	if err == nil {
		return nil
	}

	if apperr.IsAppError(err) {
		return err
	}

	// 1. Not Found mapping
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}

	// 2. Constraint violations raised by the authoritative DB guards
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case sqlStateUniqueViolation:
			field, value := parseUniqueDetail(pgErr.Detail)
			appErr := apperr.UniquenessViolation(field, value)
			appErr.Cause = err
			return appErr
		case sqlStateForeignKeyViolation:
			appErr := apperr.Conflict("Operation violates a parent/child reference (" + action + ")")
			appErr.Cause = err
			return appErr
		case sqlStateCheckViolation:
			return checkViolation(pgErr, err)
		}
	}

	// 3. Unknown query errors become Internal Server Errors
	return apperr.Internal(err)
}

// parseUniqueDetail extracts the last column and value of a unique-violation
// detail string. Parent-scoped indexes list the parent column first, so the
// last pair is the user-facing code.
func parseUniqueDetail(detail string) (string, string) {
	match := uniqueDetail.FindStringSubmatch(detail)
	if match == nil {
		return "value", ""
	}

	// Only column names are free of commas; the last value keeps any it has.
	columns := strings.Split(match[1], ",")
	values := strings.SplitN(match[2], ", ", len(columns))

	field := strings.TrimSpace(columns[len(columns)-1])
	value := strings.TrimSpace(values[len(values)-1])
	if renamed, ok := columnFields[field]; ok {
		field = renamed
	}
	return field, value
}

// checkViolation separates broken parent references from rejected values.
func checkViolation(pgErr *pgconn.PgError, err error) error {
	var appErr *apperr.AppError
	if parentChecks[pgErr.ConstraintName] {
		appErr = apperr.InvalidParentState("Operation violates a record constraint (" + pgErr.ConstraintName + ")")
	} else {
		field, ok := checkFields[pgErr.ConstraintName]
		if !ok {
			field = "value"
		}
		appErr = apperr.ValidationError("Value rejected by a record constraint", apperr.FieldError{
			Field:   field,
			Message: "Does not satisfy " + pgErr.ConstraintName,
		})
	}
	appErr.Cause = err
	return appErr
}
