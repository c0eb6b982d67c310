// Copyright (c) 2026 Cartridge Collection. All rights reserved.

/*
Package source manages bibliographic sources and their links to catalog
records.

A source is global (not partitioned by caliber). It can be linked to
Headstamps, Loads, Dates, Variations and Boxes; each link carries the date
the information was sourced and a free-text note.
*/
package source

import (
	"fmt"
	"time"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/apperr"
)

// Source is a reference work, website or correspondent.
type Source struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	URL         *string   `json:"url"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TargetKind is a record type sources can be linked to.
type TargetKind string

const (
	TargetHeadstamp TargetKind = TargetKind(node.KindHeadstamp)
	TargetLoad      TargetKind = TargetKind(node.KindLoad)
	TargetDate      TargetKind = TargetKind(node.KindDate)
	TargetVariation TargetKind = TargetKind(node.KindVariation)
	TargetBox       TargetKind = "box"
)

// TargetKinds lists every linkable record type.
var TargetKinds = []TargetKind{TargetHeadstamp, TargetLoad, TargetDate, TargetVariation, TargetBox}

// ParseTargetKind validates boundary input against [TargetKinds].
func ParseTargetKind(raw string) (TargetKind, error) {
	for _, kind := range TargetKinds {
		if string(kind) == raw {
			return kind, nil
		}
	}
	return "", apperr.ValidationError("Unknown source target", apperr.FieldError{
		Field:   "kind",
		Message: fmt.Sprintf("%q is not one of headstamp, load, date, variation, box", raw),
	})
}

// Target identifies one linkable record.
type Target struct {
	Kind TargetKind `json:"kind"`
	ID   int64      `json:"id"`
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Kind, t.ID)
}

// Link attaches a source to a target.
type Link struct {
	SourceID    int64      `json:"source_id"`
	Target      Target     `json:"target"`
	DateSourced *time.Time `json:"date_sourced"`
	Note        *string    `json:"note"`
}

// LinkedSource is a link joined with its source, as listed for a target.
type LinkedSource struct {
	Source      *Source    `json:"source"`
	DateSourced *time.Time `json:"date_sourced"`
	Note        *string    `json:"note"`
}

// Field names used in validation errors.
const (
	FieldName = "name"
	FieldSlug = "slug"
	FieldURL  = "url"
)
