// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog_test

import (
	"context"
	"io"
	"log/slog"
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

// spyInvalidator records every caliber whose rollups were invalidated.
type spyInvalidator struct {
	calibers []string
}

func (spy *spyInvalidator) Invalidate(_ context.Context, caliberCode string) error {
	spy.calibers = append(spy.calibers, caliberCode)
	return nil
}

// tree is a small 9mm hierarchy: US / WIN / WIN 9MM LUGER / L001 / D001.
type tree struct {
	store        *memstore.Store
	service      *catalog.Service
	invalidator  *spyInvalidator
	country      *catalog.Country
	manufacturer *catalog.Manufacturer
	headstamp    *catalog.Headstamp
	load         *catalog.Load
	date         *catalog.Date
}

func newTree(t *testing.T) *tree {
	t.Helper()
	ctx := context.Background()

	store := memstore.New()
	store.AddCaliber("9mm", "9mm Luger", 1)
	store.AddCaliber("45acp", ".45 ACP", 2)

	invalidator := &spyInvalidator{}
	service := catalog.NewService(store, store, invalidator, slog.New(slog.NewTextHandler(io.Discard, nil)))

	fixture := &tree{
		store:        store,
		service:      service,
		invalidator:  invalidator,
		country:      &catalog.Country{Name: "US"},
		manufacturer: &catalog.Manufacturer{Code: "WIN", Name: pointer.To("Winchester")},
		headstamp:    &catalog.Headstamp{Code: "WIN 9MM LUGER"},
		load:         &catalog.Load{CartID: "L001", Description: pointer.To("FMJ")},
		date:         &catalog.Date{CartID: "D001", Year: pointer.To(1944)},
	}

	require.NoError(t, service.CreateCountry(ctx, "9mm", fixture.country))
	require.NoError(t, service.CreateManufacturer(ctx, "9mm", fixture.country.ID, fixture.manufacturer))
	require.NoError(t, service.CreateHeadstamp(ctx, "9mm", fixture.manufacturer.ID, fixture.headstamp))
	require.NoError(t, service.CreateLoad(ctx, "9mm", fixture.headstamp.ID, fixture.load))
	require.NoError(t, service.CreateDate(ctx, "9mm", fixture.load.ID, fixture.date))
	return fixture
}

func requireCode(t *testing.T, err error, code string) *apperr.AppError {
	t.Helper()
	require.Error(t, err)
	ae := apperr.As(err)
	require.NotNil(t, ae, "expected a typed error, got %v", err)
	require.Equal(t, code, ae.Code, ae.Message)
	return ae
}

/*
TestService_Ancestry verifies the breadcrumb chain from the country down.
*/
func TestService_Ancestry(t *testing.T) {
	fixture := newTree(t)

	ancestry, err := fixture.service.Ancestry(context.Background(), "9mm", fixture.date.Ref())
	require.NoError(t, err)

	assert.Equal(t, "9mm", ancestry.CaliberCode)
	require.Len(t, ancestry.Chain, 5)
	assert.Equal(t, fixture.country.Ref(), ancestry.Chain[0].Ref)
	assert.Equal(t, "WIN - Winchester", ancestry.Chain[1].Label)
	assert.Equal(t, "L001 - FMJ", ancestry.Chain[3].Label)
	assert.Equal(t, fixture.date.Ref(), ancestry.Chain[4].Ref)
}

/*
TestService_CrossCaliberIsNotFound ensures a node is invisible from another caliber.
*/
func TestService_CrossCaliberIsNotFound(t *testing.T) {
	fixture := newTree(t)

	_, err := fixture.service.GetNode(context.Background(), "45acp", fixture.load.Ref())
	requireCode(t, err, apperr.CodeNotFound)

	err = fixture.service.CreateDate(context.Background(), "45acp", fixture.load.ID, &catalog.Date{CartID: "D999"})
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestService_Uniqueness covers each uniqueness scope of the hierarchy.
*/
func TestService_Uniqueness(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		run   func() error
		field string
	}{
		{"country_name_per_caliber", func() error {
			return fixture.service.CreateCountry(ctx, "9mm", &catalog.Country{Name: " US "})
		}, catalog.FieldName},
		{"manufacturer_code_per_country", func() error {
			return fixture.service.CreateManufacturer(ctx, "9mm", fixture.country.ID, &catalog.Manufacturer{Code: "WIN"})
		}, catalog.FieldCode},
		{"headstamp_code_per_manufacturer", func() error {
			return fixture.service.CreateHeadstamp(ctx, "9mm", fixture.manufacturer.ID, &catalog.Headstamp{Code: "WIN 9MM LUGER"})
		}, catalog.FieldCode},
		{"load_cart_id_global", func() error {
			return fixture.service.CreateLoad(ctx, "9mm", fixture.headstamp.ID, &catalog.Load{CartID: " l001 "})
		}, catalog.FieldCartID},
		{"date_cart_id_global", func() error {
			return fixture.service.CreateDate(ctx, "9mm", fixture.load.ID, &catalog.Date{CartID: "D001"})
		}, catalog.FieldCartID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ae := requireCode(t, tt.run(), apperr.CodeUniquenessViolation)
			require.NotEmpty(t, ae.Details)
			assert.Equal(t, tt.field, ae.Details[0].Field)
		})
	}
}

/*
TestService_CountryNameReusableAcrossCalibers checks the per-caliber scope.
*/
func TestService_CountryNameReusableAcrossCalibers(t *testing.T) {
	fixture := newTree(t)

	err := fixture.service.CreateCountry(context.Background(), "45acp", &catalog.Country{Name: "US"})
	assert.NoError(t, err)
}

/*
TestService_VariationNamespaces verifies that load- and date-anchored cart ids
are unique independently, and that exactly one anchor is required.
*/
func TestService_VariationNamespaces(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	onLoad := &catalog.Variation{CartID: "V001", LoadID: pointer.To(fixture.load.ID)}
	require.NoError(t, fixture.service.CreateVariation(ctx, "9mm", onLoad))

	onDate := &catalog.Variation{CartID: "V001", DateID: pointer.To(fixture.date.ID)}
	require.NoError(t, fixture.service.CreateVariation(ctx, "9mm", onDate))

	clash := &catalog.Variation{CartID: "v001", LoadID: pointer.To(fixture.load.ID)}
	requireCode(t, fixture.service.CreateVariation(ctx, "9mm", clash), apperr.CodeUniquenessViolation)

	both := &catalog.Variation{CartID: "V002", LoadID: pointer.To(fixture.load.ID), DateID: pointer.To(fixture.date.ID)}
	requireCode(t, fixture.service.CreateVariation(ctx, "9mm", both), apperr.CodeInvalidParentState)

	neither := &catalog.Variation{CartID: "V003"}
	requireCode(t, fixture.service.CreateVariation(ctx, "9mm", neither), apperr.CodeInvalidParentState)
}

/*
TestService_DeleteGuard verifies that children and boxes block a delete and
that a leaf can be removed.
*/
func TestService_DeleteGuard(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	// 1. A load with a date and a variation reports both relations
	variation := &catalog.Variation{CartID: "V010", LoadID: pointer.To(fixture.load.ID)}
	require.NoError(t, fixture.service.CreateVariation(ctx, "9mm", variation))

	ae := requireCode(t, fixture.service.Delete(ctx, "9mm", fixture.load.Ref()), apperr.CodeDependentRecords)
	blockers := map[string]int{}
	for _, detail := range ae.Details {
		blockers[detail.Field] = detail.Count
	}
	assert.Equal(t, map[string]int{"date": 1, "variation": 1}, blockers)

	// 2. A box alone also blocks
	require.NoError(t, fixture.store.CreateBox(ctx, &box.Box{Bid: "B001", ParentType: node.KindDate, ParentID: fixture.date.ID}))
	ae = requireCode(t, fixture.service.Delete(ctx, "9mm", fixture.date.Ref()), apperr.CodeDependentRecords)
	assert.Equal(t, catalog.RelationBox, ae.Details[0].Field)

	// 3. A leaf goes away
	require.NoError(t, fixture.service.Delete(ctx, "9mm", variation.Ref()))
	_, err := fixture.service.GetNode(ctx, "9mm", variation.Ref())
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestService_DeleteGuard_Country keeps a country while manufacturers or
directly attached boxes remain and removes it once both are gone.
*/
func TestService_DeleteGuard_Country(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	attached := &box.Box{Bid: "B001", ParentType: node.KindCountry, ParentID: fixture.country.ID}
	require.NoError(t, fixture.store.CreateBox(ctx, attached))

	blockers := func(ae *apperr.AppError) map[string]int {
		counts := map[string]int{}
		for _, detail := range ae.Details {
			counts[detail.Field] = detail.Count
		}
		return counts
	}

	// 1. The manufacturer and the box both block
	ae := requireCode(t, fixture.service.Delete(ctx, "9mm", fixture.country.Ref()), apperr.CodeDependentRecords)
	assert.Equal(t, map[string]int{string(node.KindManufacturer): 1, catalog.RelationBox: 1}, blockers(ae))

	// 2. Removing the manufacturer subtree leaves the box as the only blocker
	for _, ref := range []node.Ref{fixture.date.Ref(), fixture.load.Ref(), fixture.headstamp.Ref(), fixture.manufacturer.Ref()} {
		require.NoError(t, fixture.service.Delete(ctx, "9mm", ref))
	}
	ae = requireCode(t, fixture.service.Delete(ctx, "9mm", fixture.country.Ref()), apperr.CodeDependentRecords)
	assert.Equal(t, map[string]int{catalog.RelationBox: 1}, blockers(ae))

	// 3. Without the box the country goes away
	require.NoError(t, fixture.store.DeleteBox(ctx, attached.ID))
	require.NoError(t, fixture.service.Delete(ctx, "9mm", fixture.country.Ref()))

	_, err := fixture.service.GetNode(ctx, "9mm", fixture.country.Ref())
	requireCode(t, err, apperr.CodeNotFound)
}

/*
TestService_Move covers the three movable kinds, the no-op and the partition guard.
*/
func TestService_Move(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	other := &catalog.Manufacturer{Code: "REM"}
	require.NoError(t, fixture.service.CreateManufacturer(ctx, "9mm", fixture.country.ID, other))

	t.Run("moves_headstamp", func(t *testing.T) {
		result, err := fixture.service.Move(ctx, "9mm", fixture.headstamp.Ref(), other.ID)
		require.NoError(t, err)
		assert.True(t, result.Moved)

		moved, err := fixture.store.GetHeadstamp(ctx, fixture.headstamp.ID)
		require.NoError(t, err)
		assert.Equal(t, other.ID, moved.ManufacturerID)
	})

	t.Run("same_parent_is_noop", func(t *testing.T) {
		result, err := fixture.service.Move(ctx, "9mm", fixture.headstamp.Ref(), other.ID)
		require.NoError(t, err)
		assert.False(t, result.Moved)
	})

	t.Run("cross_caliber_rejected", func(t *testing.T) {
		foreign := &catalog.Country{Name: "DE"}
		require.NoError(t, fixture.service.CreateCountry(ctx, "45acp", foreign))

		_, err := fixture.service.Move(ctx, "9mm", fixture.manufacturer.Ref(), foreign.ID)
		requireCode(t, err, apperr.CodeCrossPartitionMove)
	})

	t.Run("code_clash_under_new_parent", func(t *testing.T) {
		twin := &catalog.Headstamp{Code: "WIN 9MM LUGER"}
		require.NoError(t, fixture.service.CreateHeadstamp(ctx, "9mm", fixture.manufacturer.ID, twin))

		_, err := fixture.service.Move(ctx, "9mm", twin.Ref(), other.ID)
		requireCode(t, err, apperr.CodeUniquenessViolation)
	})

	t.Run("dates_cannot_move", func(t *testing.T) {
		_, err := fixture.service.Move(ctx, "9mm", fixture.date.Ref(), fixture.load.ID)
		requireCode(t, err, apperr.CodeValidation)
	})
}

/*
TestService_PrimaryManufacturer requires the cross-reference to stay in the caliber.
*/
func TestService_PrimaryManufacturer(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	foreignCountry := &catalog.Country{Name: "US"}
	require.NoError(t, fixture.service.CreateCountry(ctx, "45acp", foreignCountry))
	foreign := &catalog.Manufacturer{Code: "WIN"}
	require.NoError(t, fixture.service.CreateManufacturer(ctx, "45acp", foreignCountry.ID, foreign))

	headstamp := &catalog.Headstamp{Code: "W-W", PrimaryManufacturerID: pointer.To(foreign.ID)}
	ae := requireCode(t, fixture.service.CreateHeadstamp(ctx, "9mm", fixture.manufacturer.ID, headstamp), apperr.CodeValidation)
	assert.Equal(t, catalog.FieldPrimaryManufacturer, ae.Details[0].Field)

	headstamp.PrimaryManufacturerID = pointer.To(fixture.manufacturer.ID)
	assert.NoError(t, fixture.service.CreateHeadstamp(ctx, "9mm", fixture.manufacturer.ID, headstamp))
}

/*
TestService_InvalidatesOnCommit checks that writes bump the owning caliber only.
*/
func TestService_InvalidatesOnCommit(t *testing.T) {
	fixture := newTree(t)
	assert.Equal(t, []string{"9mm", "9mm", "9mm", "9mm", "9mm"}, fixture.invalidator.calibers)

	// A rejected write does not invalidate
	_ = fixture.service.CreateLoad(context.Background(), "9mm", fixture.headstamp.ID, &catalog.Load{CartID: "L001"})
	assert.Len(t, fixture.invalidator.calibers, 5)
}

/*
TestService_Validation rejects malformed input before touching the store.
*/
func TestService_Validation(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	tests := []struct {
		name string
		run  func() error
	}{
		{"blank_country", func() error { return fixture.service.CreateCountry(ctx, "9mm", &catalog.Country{Name: "  "}) }},
		{"load_prefix", func() error {
			return fixture.service.CreateLoad(ctx, "9mm", fixture.headstamp.ID, &catalog.Load{CartID: "D123"})
		}},
		{"year_range", func() error {
			return fixture.service.CreateDate(ctx, "9mm", fixture.load.ID, &catalog.Date{CartID: "D777", Year: pointer.To(1700)})
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requireCode(t, tt.run(), apperr.CodeValidation)
		})
	}
}

/*
TestService_ListChildren returns children sorted by code.
*/
func TestService_ListChildren(t *testing.T) {
	fixture := newTree(t)
	ctx := context.Background()

	require.NoError(t, fixture.service.CreateManufacturer(ctx, "9mm", fixture.country.ID, &catalog.Manufacturer{Code: "DWM"}))

	children, err := fixture.service.ListChildren(ctx, "9mm", fixture.country.Ref(), node.KindManufacturer)
	require.NoError(t, err)
	require.Len(t, children, 2)
	assert.Equal(t, "DWM", children[0].Label())

	_, err = fixture.service.ListChildren(ctx, "9mm", fixture.country.Ref(), node.KindLoad)
	requireCode(t, err, apperr.CodeValidation)
}
