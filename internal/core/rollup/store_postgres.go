// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package rollup

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/database/schema"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/postgres"
)

// PostgresReader implements [Reader]. Every query filters on an indexed
// parent column.
type PostgresReader struct {
	db *pgxpool.Pool
}

func NewPostgresReader(db *pgxpool.Pool) *PostgresReader {
	return &PostgresReader{db: db}
}

func (reader *PostgresReader) conn(context context.Context) postgres.Querier {
	return postgres.Conn(context, reader.db)
}

// Countries have no image column; HasImage is always false.
func (reader *PostgresReader) Countries(context context.Context, caliberCode string) ([]Edge, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		schema.CatalogCountry.ID, schema.CatalogCountry.Table, schema.CatalogCountry.CaliberCode,
	)

	rows, err := reader.conn(context).Query(context, query, caliberCode)
	if err != nil {
		return nil, dberr.Wrap(err, "rollup_countries")
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var edge Edge
		if err := rows.Scan(&edge.ID); err != nil {
			return nil, dberr.Wrap(err, "scan_rollup_country")
		}
		edges = append(edges, edge)
	}
	return edges, dberr.Wrap(rows.Err(), "rollup_countries")
}

func (reader *PostgresReader) Children(context context.Context, rel node.Relation, parentIDs []int64) ([]Edge, error) {
	parentColumn := catalog.ParentColumn(rel)
	query := fmt.Sprintf(`SELECT id, %s, COALESCE(image, '') <> '' FROM %s WHERE %s = ANY($1)`,
		parentColumn, catalog.TableOf(rel.Child), parentColumn,
	)

	rows, err := reader.conn(context).Query(context, query, parentIDs)
	if err != nil {
		return nil, dberr.Wrap(err, "rollup_children")
	}
	defer rows.Close()

	var edges []Edge
	for rows.Next() {
		var edge Edge
		if err := rows.Scan(&edge.ID, &edge.ParentID, &edge.HasImage); err != nil {
			return nil, dberr.Wrap(err, "scan_rollup_child")
		}
		edges = append(edges, edge)
	}
	return edges, dberr.Wrap(rows.Err(), "rollup_children")
}

/*
BoxCounts runs one grouped aggregate over a UNION ALL of per-kind branches,
each restricted by the (parenttype, parentid) index.
*/
func (reader *PostgresReader) BoxCounts(context context.Context, parents map[node.Kind][]int64) ([]BoxCount, error) {
	var (
		branches []string
		args     []any
	)
	for _, kind := range node.Kinds {
		ids, ok := parents[kind]
		if !ok || len(ids) == 0 {
			continue
		}
		args = append(args, string(kind), ids)
		branches = append(branches, fmt.Sprintf(`
			SELECT %s, %s, count(*), count(*) FILTER (WHERE COALESCE(%s, '') <> '')
			FROM %s
			WHERE %s = $%d AND %s = ANY($%d)
			GROUP BY %s, %s`,
			schema.CatalogBox.ParentType, schema.CatalogBox.ParentID, schema.CatalogBox.Image,
			schema.CatalogBox.Table,
			schema.CatalogBox.ParentType, len(args)-1, schema.CatalogBox.ParentID, len(args),
			schema.CatalogBox.ParentType, schema.CatalogBox.ParentID,
		))
	}
	if len(branches) == 0 {
		return nil, nil
	}

	rows, err := reader.conn(context).Query(context, strings.Join(branches, "\nUNION ALL"), args...)
	if err != nil {
		return nil, dberr.Wrap(err, "rollup_boxes")
	}
	defer rows.Close()

	var counts []BoxCount
	for rows.Next() {
		var (
			count      BoxCount
			parentType string
		)
		if err := rows.Scan(&parentType, &count.Parent.ID, &count.Count, &count.WithImage); err != nil {
			return nil, dberr.Wrap(err, "scan_rollup_box")
		}
		count.Parent.Kind = node.Kind(parentType)
		counts = append(counts, count)
	}
	return counts, dberr.Wrap(rows.Err(), "rollup_boxes")
}
