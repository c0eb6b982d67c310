// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package memstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/memstore"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
)

func seeded(t *testing.T) (*memstore.Store, *catalog.Country) {
	t.Helper()
	store := memstore.New()
	store.AddCaliber("9mm", "9mm Luger", 1)

	country := &catalog.Country{CaliberCode: "9mm", Name: "US"}
	require.NoError(t, store.CreateCountry(context.Background(), country))
	return store, country
}

/*
TestWithinTx_Rollback discards every write of a failed transaction.
*/
func TestWithinTx_Rollback(t *testing.T) {
	store, country := seeded(t)
	ctx := context.Background()

	failure := errors.New("boom")
	err := store.WithinTx(ctx, func(ctx context.Context) error {
		require.NoError(t, store.CreateManufacturer(ctx, &catalog.Manufacturer{CountryID: country.ID, Code: "WIN"}))

		// Nested calls join the outer transaction
		return store.WithinTx(ctx, func(ctx context.Context) error {
			return failure
		})
	})
	assert.ErrorIs(t, err, failure)

	manufacturers, err := store.ListManufacturers(ctx, country.ID)
	require.NoError(t, err)
	assert.Empty(t, manufacturers)
}

/*
TestStore_Constraints mirrors the relational guards.
*/
func TestStore_Constraints(t *testing.T) {
	store, country := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
		code string
	}{
		{"duplicate_country", func() error {
			return store.CreateCountry(ctx, &catalog.Country{CaliberCode: "9mm", Name: "US"})
		}, apperr.CodeUniquenessViolation},
		{"unknown_caliber", func() error {
			return store.CreateCountry(ctx, &catalog.Country{CaliberCode: "12ga", Name: "US"})
		}, apperr.CodeConflict},
		{"missing_parent", func() error {
			return store.CreateHeadstamp(ctx, &catalog.Headstamp{ManufacturerID: 999, Code: "X"})
		}, apperr.CodeConflict},
		{"variation_xor", func() error {
			return store.CreateVariation(ctx, &catalog.Variation{CartID: "V001"})
		}, apperr.CodeInvalidParentState},
		{"box_parent_type", func() error {
			return store.CreateBox(ctx, &box.Box{Bid: "B001", ParentType: "shelf", ParentID: country.ID})
		}, apperr.CodeInvalidParentState},
		{"restrict_children", func() error {
			if err := store.CreateManufacturer(ctx, &catalog.Manufacturer{CountryID: country.ID, Code: "WIN"}); err != nil {
				return err
			}
			return store.DeleteNode(ctx, country.Ref())
		}, apperr.CodeConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, apperr.HasCode(tt.run(), tt.code))
		})
	}
}

/*
TestDeleteNode_ClearsPrimaryManufacturer applies ON DELETE SET NULL.
*/
func TestDeleteNode_ClearsPrimaryManufacturer(t *testing.T) {
	store, country := seeded(t)
	ctx := context.Background()

	owner := &catalog.Manufacturer{CountryID: country.ID, Code: "WIN"}
	primary := &catalog.Manufacturer{CountryID: country.ID, Code: "OLIN"}
	require.NoError(t, store.CreateManufacturer(ctx, owner))
	require.NoError(t, store.CreateManufacturer(ctx, primary))

	headstamp := &catalog.Headstamp{ManufacturerID: owner.ID, Code: "W-W", PrimaryManufacturerID: pointer.To(primary.ID)}
	require.NoError(t, store.CreateHeadstamp(ctx, headstamp))

	require.NoError(t, store.DeleteNode(ctx, primary.Ref()))

	stored, err := store.GetHeadstamp(ctx, headstamp.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.PrimaryManufacturerID)
}

/*
TestListDanglingBoxes reports boxes whose parent row is gone.
*/
func TestListDanglingBoxes(t *testing.T) {
	store, country := seeded(t)
	ctx := context.Background()

	require.NoError(t, store.CreateBox(ctx, &box.Box{Bid: "B001", ParentType: node.KindCountry, ParentID: country.ID}))
	require.NoError(t, store.CreateBox(ctx, &box.Box{Bid: "B002", ParentType: node.KindLoad, ParentID: 999}))

	dangling, err := store.ListDanglingBoxes(ctx)
	require.NoError(t, err)
	require.Len(t, dangling, 1)
	assert.Equal(t, "B002", dangling[0].Bid)

	counts, err := store.CountDependents(ctx, country.Ref())
	require.NoError(t, err)
	assert.Contains(t, counts, catalog.Dependent{Relation: catalog.RelationBox, Count: 1})
}

/*
TestStore_PerTableIDs gives every table its own sequence, so a country and a
manufacturer may share an id and a box parent is told apart by its type.
*/
func TestStore_PerTableIDs(t *testing.T) {
	store, country := seeded(t)
	ctx := context.Background()

	// 1. The first row of each table starts at one
	manufacturer := &catalog.Manufacturer{CountryID: country.ID, Code: "WIN"}
	require.NoError(t, store.CreateManufacturer(ctx, manufacturer))
	assert.Equal(t, int64(1), country.ID)
	assert.Equal(t, int64(1), manufacturer.ID)

	// 2. Boxes on both parents resolve by type and id together
	require.NoError(t, store.CreateBox(ctx, &box.Box{Bid: "B001", ParentType: node.KindCountry, ParentID: 1}))
	require.NoError(t, store.CreateBox(ctx, &box.Box{Bid: "B002", ParentType: node.KindManufacturer, ParentID: 1}))

	onCountry, err := store.ListBoxes(ctx, country.Ref())
	require.NoError(t, err)
	require.Len(t, onCountry, 1)
	assert.Equal(t, "B001", onCountry[0].Bid)

	onManufacturer, err := store.ListBoxes(ctx, manufacturer.Ref())
	require.NoError(t, err)
	require.Len(t, onManufacturer, 1)
	assert.Equal(t, "B002", onManufacturer[0].Bid)

	// 3. A headstamp under an absent manufacturer id still fails
	err = store.CreateHeadstamp(ctx, &catalog.Headstamp{ManufacturerID: 2, Code: "W-W"})
	assert.True(t, apperr.HasCode(err, apperr.CodeConflict))
}
