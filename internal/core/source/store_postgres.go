// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/catalog"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/database/schema"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/postgres"
)

// linkTables routes each target kind to its junction table.
var linkTables = map[TargetKind]schema.SourceLinkTable{
	TargetHeadstamp: schema.HeadstampSource,
	TargetLoad:      schema.LoadSource,
	TargetDate:      schema.DateSource,
	TargetVariation: schema.VariationSource,
	TargetBox:       schema.BoxSource,
}

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) conn(context context.Context) postgres.Querier {
	return postgres.Conn(context, repository.db)
}

var sourceColumns = strings.Join(schema.CatalogSource.Columns(), ", ")

func scanSource(row pgx.Row) (*Source, error) {
	s := &Source{}
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.URL, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// # Sources

func (repository *PostgresRepository) ListSources(context context.Context) ([]*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s`, sourceColumns, schema.CatalogSource.Table, schema.CatalogSource.Name)

	rows, err := repository.conn(context).Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_sources")
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		s, err := scanSource(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "scan_source")
		}
		sources = append(sources, s)
	}
	return sources, dberr.Wrap(rows.Err(), "list_sources")
}

func (repository *PostgresRepository) GetSource(context context.Context, id int64) (*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, sourceColumns, schema.CatalogSource.Table, schema.CatalogSource.ID)

	s, err := scanSource(repository.conn(context).QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "get_source")
	}
	return s, nil
}

func (repository *PostgresRepository) FindSourceBySlug(context context.Context, slug string) (*Source, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`, sourceColumns, schema.CatalogSource.Table, schema.CatalogSource.Slug)

	s, err := scanSource(repository.conn(context).QueryRow(context, query, slug))
	if err != nil {
		return nil, dberr.Wrap(err, "find_source")
	}
	return s, nil
}

func (repository *PostgresRepository) CreateSource(context context.Context, s *Source) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s
	`,
		schema.CatalogSource.Table, schema.CatalogSource.Name, schema.CatalogSource.Slug,
		schema.CatalogSource.Description, schema.CatalogSource.URL,
		schema.CatalogSource.ID, schema.CatalogSource.CreatedAt, schema.CatalogSource.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, s.Name, s.Slug, s.Description, s.URL).Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	return dberr.Wrap(err, "create_source")
}

func (repository *PostgresRepository) UpdateSource(context context.Context, s *Source) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogSource.Table, schema.CatalogSource.Name, schema.CatalogSource.Slug,
		schema.CatalogSource.Description, schema.CatalogSource.URL, schema.CatalogSource.UpdatedAt,
		schema.CatalogSource.ID, schema.CatalogSource.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, s.ID, s.Name, s.Slug, s.Description, s.URL).Scan(&s.UpdatedAt)
	return dberr.Wrap(err, "update_source")
}

func (repository *PostgresRepository) DeleteSource(context context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, schema.CatalogSource.Table, schema.CatalogSource.ID)

	cmd, err := repository.conn(context).Exec(context, query, id)
	if err != nil {
		return dberr.Wrap(err, "delete_source")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// CountLinks counts the junction rows of one source across all link tables.
func (repository *PostgresRepository) CountLinks(context context.Context, sourceID int64) ([]catalog.Dependent, error) {
	selects := make([]string, len(TargetKinds))
	for i, kind := range TargetKinds {
		table := linkTables[kind]
		selects[i] = fmt.Sprintf(`(SELECT count(*) FROM %s WHERE %s = $1)`, table.Table, table.SourceID)
	}

	counts := make([]int, len(TargetKinds))
	targets := make([]any, len(counts))
	for i := range counts {
		targets[i] = &counts[i]
	}

	query := "SELECT " + strings.Join(selects, ", ")
	if err := repository.conn(context).QueryRow(context, query, sourceID).Scan(targets...); err != nil {
		return nil, dberr.Wrap(err, "count_source_links")
	}

	dependents := make([]catalog.Dependent, len(TargetKinds))
	for i, kind := range TargetKinds {
		dependents[i] = catalog.Dependent{Relation: string(kind), Count: counts[i]}
	}
	return dependents, nil
}

// # Links

func (repository *PostgresRepository) GetLink(context context.Context, target Target, sourceID int64) (*Link, error) {
	table := linkTables[target.Kind]
	query := fmt.Sprintf(`SELECT %s, %s FROM %s WHERE %s = $1 AND %s = $2`,
		table.DateSourced, table.Note, table.Table, table.SourceID, table.EntityID,
	)

	link := &Link{SourceID: sourceID, Target: target}
	err := repository.conn(context).QueryRow(context, query, sourceID, target.ID).Scan(&link.DateSourced, &link.Note)
	if err != nil {
		return nil, dberr.Wrap(err, "get_source_link")
	}
	return link, nil
}

func (repository *PostgresRepository) CreateLink(context context.Context, link *Link) error {
	table := linkTables[link.Target.Kind]
	query := fmt.Sprintf(`INSERT INTO %s (%s, %s, %s, %s) VALUES ($1, $2, $3, $4)`,
		table.Table, table.SourceID, table.EntityID, table.DateSourced, table.Note,
	)

	_, err := repository.conn(context).Exec(context, query, link.SourceID, link.Target.ID, link.DateSourced, link.Note)
	return dberr.Wrap(err, "create_source_link")
}

func (repository *PostgresRepository) DeleteLink(context context.Context, target Target, sourceID int64) error {
	table := linkTables[target.Kind]
	query := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1 AND %s = $2`, table.Table, table.SourceID, table.EntityID)

	cmd, err := repository.conn(context).Exec(context, query, sourceID, target.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_source_link")
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

func (repository *PostgresRepository) ListLinks(context context.Context, target Target) ([]*LinkedSource, error) {
	table := linkTables[target.Kind]
	query := fmt.Sprintf(`
		SELECT %s, l.%s, l.%s
		FROM %s l
		JOIN %s s ON s.%s = l.%s
		WHERE l.%s = $1
		ORDER BY s.%s
	`,
		prefixed("s", schema.CatalogSource.Columns()), table.DateSourced, table.Note,
		table.Table,
		schema.CatalogSource.Table, schema.CatalogSource.ID, table.SourceID,
		table.EntityID,
		schema.CatalogSource.Name,
	)

	rows, err := repository.conn(context).Query(context, query, target.ID)
	if err != nil {
		return nil, dberr.Wrap(err, "list_source_links")
	}
	defer rows.Close()

	var linked []*LinkedSource
	for rows.Next() {
		s := &Source{}
		item := &LinkedSource{Source: s}
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.Description, &s.URL, &s.CreatedAt, &s.UpdatedAt, &item.DateSourced, &item.Note); err != nil {
			return nil, dberr.Wrap(err, "scan_source_link")
		}
		linked = append(linked, item)
	}
	return linked, dberr.Wrap(rows.Err(), "list_source_links")
}

func prefixed(alias string, columns []string) string {
	out := make([]string, len(columns))
	for i, column := range columns {
		out[i] = alias + "." + column
	}
	return strings.Join(out, ", ")
}
