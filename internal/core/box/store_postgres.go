// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package box

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/database/schema"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/postgres"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) conn(context context.Context) postgres.Querier {
	return postgres.Conn(context, repository.db)
}

var boxColumns = strings.Join(schema.CatalogBox.Columns(), ", ")

func scanBox(row pgx.Row) (*Box, error) {
	b := &Box{}
	var parentType string
	err := row.Scan(&b.ID, &b.Bid, &parentType, &b.ParentID, &b.Description, &b.Location, &b.Note, &b.Image, &b.CreatedAt, &b.UpdatedAt)
	b.ParentType = node.Kind(parentType)
	return b, err
}

func (repository *PostgresRepository) list(context context.Context, action, query string, args ...any) ([]*Box, error) {
	rows, err := repository.conn(context).Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	var boxes []*Box
	for rows.Next() {
		b, err := scanBox(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		boxes = append(boxes, b)
	}
	return boxes, dberr.Wrap(rows.Err(), action)
}

func (repository *PostgresRepository) ListBoxes(context context.Context, parent node.Ref) ([]*Box, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2 ORDER BY %s`,
		boxColumns, schema.CatalogBox.Table,
		schema.CatalogBox.ParentType, schema.CatalogBox.ParentID, schema.CatalogBox.Bid,
	)
	return repository.list(context, "list_boxes", query, string(parent.Kind), parent.ID)
}

func (repository *PostgresRepository) GetBox(context context.Context, id int64) (*Box, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, boxColumns, schema.CatalogBox.Table, schema.CatalogBox.ID)

	b, err := scanBox(repository.conn(context).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_box")
	}
	return b, nil
}

func (repository *PostgresRepository) FindBoxByBid(context context.Context, bid string) (*Box, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, boxColumns, schema.CatalogBox.Table, schema.CatalogBox.Bid)

	b, err := scanBox(repository.conn(context).QueryRow(context, query, bid))
	if err != nil {
		return nil, dberr.Wrap(err, "find_box")
	}
	return b, nil
}

func (repository *PostgresRepository) CreateBox(context context.Context, b *Box) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s, %s
	`,
		schema.CatalogBox.Table, schema.CatalogBox.Bid, schema.CatalogBox.ParentType, schema.CatalogBox.ParentID,
		schema.CatalogBox.Description, schema.CatalogBox.Location, schema.CatalogBox.Note, schema.CatalogBox.Image,
		schema.CatalogBox.ID, schema.CatalogBox.CreatedAt, schema.CatalogBox.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query,
		b.Bid, string(b.ParentType), b.ParentID, b.Description, b.Location, b.Note, b.Image,
	).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
	return dberr.Wrap(err, "create_box")
}

func (repository *PostgresRepository) UpdateBox(context context.Context, b *Box) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = $8, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogBox.Table, schema.CatalogBox.Bid, schema.CatalogBox.ParentType, schema.CatalogBox.ParentID,
		schema.CatalogBox.Description, schema.CatalogBox.Location, schema.CatalogBox.Note, schema.CatalogBox.Image,
		schema.CatalogBox.UpdatedAt, schema.CatalogBox.ID, schema.CatalogBox.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query,
		b.ID, b.Bid, string(b.ParentType), b.ParentID, b.Description, b.Location, b.Note, b.Image,
	).Scan(&b.UpdatedAt)
	return dberr.Wrap(err, "update_box")
}

func (repository *PostgresRepository) DeleteBox(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogBox.Table, schema.CatalogBox.ID)

	cmd, err := repository.conn(context).Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_box")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) LockBox(context context.Context, id int64) error {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 FOR UPDATE`, schema.CatalogBox.ID, schema.CatalogBox.Table, schema.CatalogBox.ID)

	var locked int64
	err := repository.conn(context).QueryRow(context, query, id).Scan(&locked)
	return dberr.Wrap(err, "lock_box")
}

/*
ListDanglingBoxes finds boxes whose (parenttype, parentid) pair points at
no row. One NOT EXISTS branch is emitted per kind.
*/
func (repository *PostgresRepository) ListDanglingBoxes(context context.Context) ([]*Box, error) {
	branches := make([]string, 0, len(node.Kinds))
	for _, kind := range node.Kinds {
		branches = append(branches, fmt.Sprintf(
			`(b.%s = '%s' AND NOT EXISTS (SELECT 1 FROM %s p WHERE p.id = b.%s))`,
			schema.CatalogBox.ParentType, kind, catalog.TableOf(kind), schema.CatalogBox.ParentID,
		))
	}

	query := fmt.Sprintf(`SELECT %s FROM %s b WHERE %s ORDER BY b.%s`,
		prefixed("b", schema.CatalogBox.Columns()), schema.CatalogBox.Table,
		strings.Join(branches, " OR "), schema.CatalogBox.Bid,
	)
	return repository.list(context, "list_dangling_boxes", query)
}

func prefixed(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, column := range columns {
		out[i] = alias + "." + column
	}
	return strings.Join(out, ", ")
}
