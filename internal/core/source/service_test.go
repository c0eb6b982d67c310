// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package source_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/box"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/memstore"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/source"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
	"github.com/spaulcurtis/cartridge-collection-sub000/pkg/pointer"
)

type fixture struct {
	catalog *catalog.Service
	boxes   *box.Service
	sources *source.Service
	load    *catalog.Load
	box     *box.Box
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memstore.New()
	store.AddCaliber("9mm", "9mm Luger", 1)
	store.AddCaliber("45acp", ".45 ACP", 2)

	boxes := box.NewService(store, store, store, nil, logger)
	f := &fixture{
		catalog: catalog.NewService(store, store, nil, logger),
		boxes:   boxes,
		sources: source.NewService(store, store, boxes, store, logger),
		load:    &catalog.Load{CartID: "L001"},
		box:     &box.Box{Bid: "B001"},
	}

	country := &catalog.Country{Name: "US"}
	manufacturer := &catalog.Manufacturer{Code: "WIN"}
	headstamp := &catalog.Headstamp{Code: "WIN 9MM LUGER"}
	require.NoError(t, f.catalog.CreateCountry(ctx, "9mm", country))
	require.NoError(t, f.catalog.CreateManufacturer(ctx, "9mm", country.ID, manufacturer))
	require.NoError(t, f.catalog.CreateHeadstamp(ctx, "9mm", manufacturer.ID, headstamp))
	require.NoError(t, f.catalog.CreateLoad(ctx, "9mm", headstamp.ID, f.load))
	require.NoError(t, f.boxes.CreateBox(ctx, "9mm", f.load.Ref(), f.box))
	return f
}

/*
TestService_CreateSource derives the slug and rejects duplicates.
*/
func TestService_CreateSource(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	created := &source.Source{Name: "HWS Volume II", URL: pointer.To(" ")}
	require.NoError(t, f.sources.CreateSource(ctx, created))
	assert.Equal(t, "hws-volume-ii", created.Slug)
	assert.Nil(t, created.URL)

	err := f.sources.CreateSource(ctx, &source.Source{Name: "Another", Slug: "hws-volume-ii"})
	assert.True(t, apperr.HasCode(err, apperr.CodeUniquenessViolation))

	err = f.sources.CreateSource(ctx, &source.Source{Name: "Bad link", URL: pointer.To("not a url")})
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}

/*
TestService_LinkLifecycle links a source to a load and a box, lists the links
and verifies the delete guard.
*/
func TestService_LinkLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hws := &source.Source{Name: "HWS"}
	require.NoError(t, f.sources.CreateSource(ctx, hws))

	sourced := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	loadTarget := source.Target{Kind: source.TargetLoad, ID: f.load.ID}
	boxTarget := source.Target{Kind: source.TargetBox, ID: f.box.ID}

	require.NoError(t, f.sources.Link(ctx, "9mm", &source.Link{SourceID: hws.ID, Target: loadTarget, DateSourced: &sourced}))
	require.NoError(t, f.sources.Link(ctx, "9mm", &source.Link{SourceID: hws.ID, Target: boxTarget}))

	// 1. Duplicate pair
	err := f.sources.Link(ctx, "9mm", &source.Link{SourceID: hws.ID, Target: loadTarget})
	assert.True(t, apperr.HasCode(err, apperr.CodeUniquenessViolation))

	// 2. Listing
	linked, err := f.sources.ListLinks(ctx, "9mm", loadTarget)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	assert.Equal(t, "HWS", linked[0].Source.Name)
	assert.Equal(t, sourced, *linked[0].DateSourced)

	// 3. Delete guard names both link kinds
	err = f.sources.DeleteSource(ctx, hws.ID)
	ae := apperr.As(err)
	require.NotNil(t, ae)
	assert.Equal(t, apperr.CodeDependentRecords, ae.Code)
	assert.Len(t, ae.Details, 2)

	// 4. Unlink both, then the delete succeeds
	require.NoError(t, f.sources.Unlink(ctx, "9mm", loadTarget, hws.ID))
	require.NoError(t, f.sources.Unlink(ctx, "9mm", boxTarget, hws.ID))
	require.NoError(t, f.sources.DeleteSource(ctx, hws.ID))
}

/*
TestService_LinkScope keeps links inside the caliber of their target.
*/
func TestService_LinkScope(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hws := &source.Source{Name: "HWS"}
	require.NoError(t, f.sources.CreateSource(ctx, hws))

	tests := []struct {
		name    string
		caliber string
		target  source.Target
		code    string
	}{
		{"other_caliber", "45acp", source.Target{Kind: source.TargetLoad, ID: f.load.ID}, apperr.CodeNotFound},
		{"missing_load", "9mm", source.Target{Kind: source.TargetLoad, ID: 999}, apperr.CodeNotFound},
		{"box_other_caliber", "45acp", source.Target{Kind: source.TargetBox, ID: f.box.ID}, apperr.CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := f.sources.Link(ctx, tt.caliber, &source.Link{SourceID: hws.ID, Target: tt.target})
			assert.True(t, apperr.HasCode(err, tt.code), "got %v", err)
		})
	}
}

/*
TestService_LinksCascadeWithRecord drops links when the linked box is deleted.
*/
func TestService_LinksCascadeWithRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	hws := &source.Source{Name: "HWS"}
	require.NoError(t, f.sources.CreateSource(ctx, hws))
	require.NoError(t, f.sources.Link(ctx, "9mm", &source.Link{SourceID: hws.ID, Target: source.Target{Kind: source.TargetBox, ID: f.box.ID}}))

	require.NoError(t, f.boxes.DeleteBox(ctx, "9mm", f.box.ID))
	assert.NoError(t, f.sources.DeleteSource(ctx, hws.ID))
}

/*
TestParseTargetKind accepts linkable record types only.
*/
func TestParseTargetKind(t *testing.T) {
	kind, err := source.ParseTargetKind("variation")
	require.NoError(t, err)
	assert.Equal(t, source.TargetVariation, kind)

	_, err = source.ParseTargetKind("country")
	assert.True(t, apperr.HasCode(err, apperr.CodeValidation))
}
