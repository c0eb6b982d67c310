// Copyright (c) 2026 Cartridge Collection. All rights reserved.

package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spaulcurtis/cartridge-collection-sub000/internal/core/node"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/database/schema"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/dberr"
	"github.com/spaulcurtis/cartridge-collection-sub000/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on the catalog schema.
type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (repository *PostgresRepository) conn(context context.Context) postgres.Querier {
	return postgres.Conn(context, repository.db)
}

// # Table routing

// TableOf returns the table holding nodes of kind.
func TableOf(kind node.Kind) string {
	switch kind {
	case node.KindCountry:
		return schema.CatalogCountry.Table
	case node.KindManufacturer:
		return schema.CatalogManufacturer.Table
	case node.KindHeadstamp:
		return schema.CatalogHeadstamp.Table
	case node.KindLoad:
		return schema.CatalogLoad.Table
	case node.KindDate:
		return schema.CatalogDate.Table
	default:
		return schema.CatalogVariation.Table
	}
}

// ParentColumn returns the column of rel.Child that references rel.Parent.
func ParentColumn(rel node.Relation) string {
	switch rel.Child {
	case node.KindManufacturer:
		return schema.CatalogManufacturer.CountryID
	case node.KindHeadstamp:
		return schema.CatalogHeadstamp.ManufacturerID
	case node.KindLoad:
		return schema.CatalogLoad.HeadstampID
	case node.KindDate:
		return schema.CatalogDate.LoadID
	}
	if rel.Parent == node.KindDate {
		return schema.CatalogVariation.DateID
	}
	return schema.CatalogVariation.LoadID
}

// columns renders a descriptor's column list for a SELECT.
func columns(names []string) string {
	return strings.Join(names, ", ")
}

// # Calibers

func (repository *PostgresRepository) ListCalibers(context context.Context) ([]*Caliber, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY %s, %s`,
		columns(schema.CatalogCaliber.Columns()), schema.CatalogCaliber.Table,
		schema.CatalogCaliber.SortOrder, schema.CatalogCaliber.Code,
	)

	rows, err := repository.conn(context).Query(context, query)
	if err != nil {
		return nil, dberr.Wrap(err, "list_calibers")
	}

	calibers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Caliber, error) {
		c := &Caliber{}
		return c, row.Scan(&c.Code, &c.Name, &c.SortOrder)
	})
	return calibers, dberr.Wrap(err, "scan_caliber")
}

func (repository *PostgresRepository) GetCaliber(context context.Context, code string) (*Caliber, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogCaliber.Columns()), schema.CatalogCaliber.Table, schema.CatalogCaliber.Code,
	)

	c := &Caliber{}
	err := repository.conn(context).QueryRow(context, query, code).Scan(&c.Code, &c.Name, &c.SortOrder)
	if err != nil {
		return nil, dberr.Wrap(err, "get_caliber")
	}
	return c, nil
}

// # Countries

func scanCountry(row pgx.Row) (*Country, error) {
	c := &Country{}
	err := row.Scan(&c.ID, &c.CaliberCode, &c.Name, &c.FullName, &c.Note, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (repository *PostgresRepository) ListCountries(context context.Context, caliberCode string) ([]*Country, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		columns(schema.CatalogCountry.Columns()), schema.CatalogCountry.Table,
		schema.CatalogCountry.CaliberCode, schema.CatalogCountry.Name,
	)
	return listRows(context, repository.conn(context), "list_countries", scanCountry, query, caliberCode)
}

func (repository *PostgresRepository) GetCountry(context context.Context, id int64) (*Country, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogCountry.Columns()), schema.CatalogCountry.Table, schema.CatalogCountry.ID,
	)
	return getRow(context, repository.conn(context), "get_country", scanCountry, query, id)
}

func (repository *PostgresRepository) FindCountryByName(context context.Context, caliberCode, name string) (*Country, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		columns(schema.CatalogCountry.Columns()), schema.CatalogCountry.Table,
		schema.CatalogCountry.CaliberCode, schema.CatalogCountry.Name,
	)
	return getRow(context, repository.conn(context), "find_country", scanCountry, query, caliberCode, name)
}

func (repository *PostgresRepository) CreateCountry(context context.Context, c *Country) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s)
		VALUES ($1, $2, $3, $4)
		RETURNING %s, %s, %s
	`,
		schema.CatalogCountry.Table, schema.CatalogCountry.CaliberCode, schema.CatalogCountry.Name,
		schema.CatalogCountry.FullName, schema.CatalogCountry.Note,
		schema.CatalogCountry.ID, schema.CatalogCountry.CreatedAt, schema.CatalogCountry.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, c.CaliberCode, c.Name, c.FullName, c.Note).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	return dberr.Wrap(err, "create_country")
}

func (repository *PostgresRepository) UpdateCountry(context context.Context, c *Country) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogCountry.Table, schema.CatalogCountry.Name, schema.CatalogCountry.FullName,
		schema.CatalogCountry.Note, schema.CatalogCountry.UpdatedAt, schema.CatalogCountry.ID,
		schema.CatalogCountry.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, c.ID, c.Name, c.FullName, c.Note).Scan(&c.UpdatedAt)
	return dberr.Wrap(err, "update_country")
}

// # Manufacturers

func scanManufacturer(row pgx.Row) (*Manufacturer, error) {
	m := &Manufacturer{}
	err := row.Scan(&m.ID, &m.CountryID, &m.Code, &m.Name, &m.Note, &m.Image, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (repository *PostgresRepository) ListManufacturers(context context.Context, countryID int64) ([]*Manufacturer, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		columns(schema.CatalogManufacturer.Columns()), schema.CatalogManufacturer.Table,
		schema.CatalogManufacturer.CountryID, schema.CatalogManufacturer.Code,
	)
	return listRows(context, repository.conn(context), "list_manufacturers", scanManufacturer, query, countryID)
}

func (repository *PostgresRepository) GetManufacturer(context context.Context, id int64) (*Manufacturer, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogManufacturer.Columns()), schema.CatalogManufacturer.Table, schema.CatalogManufacturer.ID,
	)
	return getRow(context, repository.conn(context), "get_manufacturer", scanManufacturer, query, id)
}

func (repository *PostgresRepository) FindManufacturerByCode(context context.Context, countryID int64, code string) (*Manufacturer, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		columns(schema.CatalogManufacturer.Columns()), schema.CatalogManufacturer.Table,
		schema.CatalogManufacturer.CountryID, schema.CatalogManufacturer.Code,
	)
	return getRow(context, repository.conn(context), "find_manufacturer", scanManufacturer, query, countryID, code)
}

func (repository *PostgresRepository) CreateManufacturer(context context.Context, m *Manufacturer) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s, %s
	`,
		schema.CatalogManufacturer.Table, schema.CatalogManufacturer.CountryID, schema.CatalogManufacturer.Code,
		schema.CatalogManufacturer.Name, schema.CatalogManufacturer.Note, schema.CatalogManufacturer.Image,
		schema.CatalogManufacturer.ID, schema.CatalogManufacturer.CreatedAt, schema.CatalogManufacturer.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, m.CountryID, m.Code, m.Name, m.Note, m.Image).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return dberr.Wrap(err, "create_manufacturer")
}

func (repository *PostgresRepository) UpdateManufacturer(context context.Context, m *Manufacturer) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogManufacturer.Table, schema.CatalogManufacturer.CountryID, schema.CatalogManufacturer.Code,
		schema.CatalogManufacturer.Name, schema.CatalogManufacturer.Note, schema.CatalogManufacturer.Image,
		schema.CatalogManufacturer.UpdatedAt, schema.CatalogManufacturer.ID, schema.CatalogManufacturer.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, m.ID, m.CountryID, m.Code, m.Name, m.Note, m.Image).Scan(&m.UpdatedAt)
	return dberr.Wrap(err, "update_manufacturer")
}

// # Headstamps

func scanHeadstamp(row pgx.Row) (*Headstamp, error) {
	h := &Headstamp{}
	err := row.Scan(&h.ID, &h.ManufacturerID, &h.Code, &h.Name, &h.PrimaryManufacturerID, &h.Note, &h.Image, &h.CreatedAt, &h.UpdatedAt)
	return h, err
}

func (repository *PostgresRepository) ListHeadstamps(context context.Context, manufacturerID int64) ([]*Headstamp, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		columns(schema.CatalogHeadstamp.Columns()), schema.CatalogHeadstamp.Table,
		schema.CatalogHeadstamp.ManufacturerID, schema.CatalogHeadstamp.Code,
	)
	return listRows(context, repository.conn(context), "list_headstamps", scanHeadstamp, query, manufacturerID)
}

func (repository *PostgresRepository) GetHeadstamp(context context.Context, id int64) (*Headstamp, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogHeadstamp.Columns()), schema.CatalogHeadstamp.Table, schema.CatalogHeadstamp.ID,
	)
	return getRow(context, repository.conn(context), "get_headstamp", scanHeadstamp, query, id)
}

func (repository *PostgresRepository) FindHeadstampByCode(context context.Context, manufacturerID int64, code string) (*Headstamp, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s = $2`,
		columns(schema.CatalogHeadstamp.Columns()), schema.CatalogHeadstamp.Table,
		schema.CatalogHeadstamp.ManufacturerID, schema.CatalogHeadstamp.Code,
	)
	return getRow(context, repository.conn(context), "find_headstamp", scanHeadstamp, query, manufacturerID, code)
}

func (repository *PostgresRepository) CreateHeadstamp(context context.Context, h *Headstamp) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s, %s
	`,
		schema.CatalogHeadstamp.Table, schema.CatalogHeadstamp.ManufacturerID, schema.CatalogHeadstamp.Code,
		schema.CatalogHeadstamp.Name, schema.CatalogHeadstamp.PrimaryManufacturerID, schema.CatalogHeadstamp.Note,
		schema.CatalogHeadstamp.Image,
		schema.CatalogHeadstamp.ID, schema.CatalogHeadstamp.CreatedAt, schema.CatalogHeadstamp.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query,
		h.ManufacturerID, h.Code, h.Name, h.PrimaryManufacturerID, h.Note, h.Image,
	).Scan(&h.ID, &h.CreatedAt, &h.UpdatedAt)
	return dberr.Wrap(err, "create_headstamp")
}

func (repository *PostgresRepository) UpdateHeadstamp(context context.Context, h *Headstamp) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogHeadstamp.Table, schema.CatalogHeadstamp.ManufacturerID, schema.CatalogHeadstamp.Code,
		schema.CatalogHeadstamp.Name, schema.CatalogHeadstamp.PrimaryManufacturerID, schema.CatalogHeadstamp.Note,
		schema.CatalogHeadstamp.Image, schema.CatalogHeadstamp.UpdatedAt, schema.CatalogHeadstamp.ID,
		schema.CatalogHeadstamp.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query,
		h.ID, h.ManufacturerID, h.Code, h.Name, h.PrimaryManufacturerID, h.Note, h.Image,
	).Scan(&h.UpdatedAt)
	return dberr.Wrap(err, "update_headstamp")
}

// # Loads

func scanLoad(row pgx.Row) (*Load, error) {
	l := &Load{}
	err := row.Scan(&l.ID, &l.HeadstampID, &l.CartID, &l.Description, &l.Note, &l.Image, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (repository *PostgresRepository) ListLoads(context context.Context, headstampID int64) ([]*Load, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		columns(schema.CatalogLoad.Columns()), schema.CatalogLoad.Table,
		schema.CatalogLoad.HeadstampID, schema.CatalogLoad.CartID,
	)
	return listRows(context, repository.conn(context), "list_loads", scanLoad, query, headstampID)
}

func (repository *PostgresRepository) GetLoad(context context.Context, id int64) (*Load, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogLoad.Columns()), schema.CatalogLoad.Table, schema.CatalogLoad.ID,
	)
	return getRow(context, repository.conn(context), "get_load", scanLoad, query, id)
}

func (repository *PostgresRepository) FindLoadByCartID(context context.Context, cartID string) (*Load, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogLoad.Columns()), schema.CatalogLoad.Table, schema.CatalogLoad.CartID,
	)
	return getRow(context, repository.conn(context), "find_load", scanLoad, query, cartID)
}

func (repository *PostgresRepository) CreateLoad(context context.Context, l *Load) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING %s, %s, %s
	`,
		schema.CatalogLoad.Table, schema.CatalogLoad.HeadstampID, schema.CatalogLoad.CartID,
		schema.CatalogLoad.Description, schema.CatalogLoad.Note, schema.CatalogLoad.Image,
		schema.CatalogLoad.ID, schema.CatalogLoad.CreatedAt, schema.CatalogLoad.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, l.HeadstampID, l.CartID, l.Description, l.Note, l.Image).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)
	return dberr.Wrap(err, "create_load")
}

func (repository *PostgresRepository) UpdateLoad(context context.Context, l *Load) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogLoad.Table, schema.CatalogLoad.HeadstampID, schema.CatalogLoad.CartID,
		schema.CatalogLoad.Description, schema.CatalogLoad.Note, schema.CatalogLoad.Image,
		schema.CatalogLoad.UpdatedAt, schema.CatalogLoad.ID, schema.CatalogLoad.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, l.ID, l.HeadstampID, l.CartID, l.Description, l.Note, l.Image).Scan(&l.UpdatedAt)
	return dberr.Wrap(err, "update_load")
}

// # Dates

func scanDate(row pgx.Row) (*Date, error) {
	d := &Date{}
	err := row.Scan(&d.ID, &d.LoadID, &d.CartID, &d.Year, &d.LotMonth, &d.Description, &d.Note, &d.Image, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func (repository *PostgresRepository) ListDates(context context.Context, loadID int64) ([]*Date, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		columns(schema.CatalogDate.Columns()), schema.CatalogDate.Table,
		schema.CatalogDate.LoadID, schema.CatalogDate.CartID,
	)
	return listRows(context, repository.conn(context), "list_dates", scanDate, query, loadID)
}

func (repository *PostgresRepository) GetDate(context context.Context, id int64) (*Date, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogDate.Columns()), schema.CatalogDate.Table, schema.CatalogDate.ID,
	)
	return getRow(context, repository.conn(context), "get_date", scanDate, query, id)
}

func (repository *PostgresRepository) FindDateByCartID(context context.Context, cartID string) (*Date, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogDate.Columns()), schema.CatalogDate.Table, schema.CatalogDate.CartID,
	)
	return getRow(context, repository.conn(context), "find_date", scanDate, query, cartID)
}

func (repository *PostgresRepository) CreateDate(context context.Context, d *Date) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING %s, %s, %s
	`,
		schema.CatalogDate.Table, schema.CatalogDate.LoadID, schema.CatalogDate.CartID, schema.CatalogDate.Year,
		schema.CatalogDate.LotMonth, schema.CatalogDate.Description, schema.CatalogDate.Note, schema.CatalogDate.Image,
		schema.CatalogDate.ID, schema.CatalogDate.CreatedAt, schema.CatalogDate.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query,
		d.LoadID, d.CartID, d.Year, d.LotMonth, d.Description, d.Note, d.Image,
	).Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
	return dberr.Wrap(err, "create_date")
}

func (repository *PostgresRepository) UpdateDate(context context.Context, d *Date) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = $6, %s = $7, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogDate.Table, schema.CatalogDate.CartID, schema.CatalogDate.Year, schema.CatalogDate.LotMonth,
		schema.CatalogDate.Description, schema.CatalogDate.Note, schema.CatalogDate.Image,
		schema.CatalogDate.UpdatedAt, schema.CatalogDate.ID, schema.CatalogDate.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query,
		d.ID, d.CartID, d.Year, d.LotMonth, d.Description, d.Note, d.Image,
	).Scan(&d.UpdatedAt)
	return dberr.Wrap(err, "update_date")
}

// # Variations

func scanVariation(row pgx.Row) (*Variation, error) {
	v := &Variation{}
	err := row.Scan(&v.ID, &v.LoadID, &v.DateID, &v.CartID, &v.Description, &v.Note, &v.Image, &v.CreatedAt, &v.UpdatedAt)
	return v, err
}

// anchorColumn returns the variation column for a load or date anchor.
func anchorColumn(anchor node.Kind) string {
	if anchor == node.KindDate {
		return schema.CatalogVariation.DateID
	}
	return schema.CatalogVariation.LoadID
}

func (repository *PostgresRepository) ListVariations(context context.Context, parent node.Ref) ([]*Variation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 ORDER BY %s`,
		columns(schema.CatalogVariation.Columns()), schema.CatalogVariation.Table,
		anchorColumn(parent.Kind), schema.CatalogVariation.CartID,
	)
	return listRows(context, repository.conn(context), "list_variations", scanVariation, query, parent.ID)
}

func (repository *PostgresRepository) GetVariation(context context.Context, id int64) (*Variation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1`,
		columns(schema.CatalogVariation.Columns()), schema.CatalogVariation.Table, schema.CatalogVariation.ID,
	)
	return getRow(context, repository.conn(context), "get_variation", scanVariation, query, id)
}

func (repository *PostgresRepository) FindVariationByCartID(context context.Context, cartID string, anchor node.Kind) (*Variation, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s = $1 AND %s IS NOT NULL`,
		columns(schema.CatalogVariation.Columns()), schema.CatalogVariation.Table,
		schema.CatalogVariation.CartID, anchorColumn(anchor),
	)
	return getRow(context, repository.conn(context), "find_variation", scanVariation, query, cartID)
}

func (repository *PostgresRepository) CreateVariation(context context.Context, v *Variation) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s, %s, %s, %s, %s, %s)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING %s, %s, %s
	`,
		schema.CatalogVariation.Table, schema.CatalogVariation.LoadID, schema.CatalogVariation.DateID,
		schema.CatalogVariation.CartID, schema.CatalogVariation.Description, schema.CatalogVariation.Note,
		schema.CatalogVariation.Image,
		schema.CatalogVariation.ID, schema.CatalogVariation.CreatedAt, schema.CatalogVariation.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query,
		v.LoadID, v.DateID, v.CartID, v.Description, v.Note, v.Image,
	).Scan(&v.ID, &v.CreatedAt, &v.UpdatedAt)
	return dberr.Wrap(err, "create_variation")
}

func (repository *PostgresRepository) UpdateVariation(context context.Context, v *Variation) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET %s = $2, %s = $3, %s = $4, %s = $5, %s = NOW()
		WHERE %s = $1
		RETURNING %s
	`,
		schema.CatalogVariation.Table, schema.CatalogVariation.CartID, schema.CatalogVariation.Description,
		schema.CatalogVariation.Note, schema.CatalogVariation.Image, schema.CatalogVariation.UpdatedAt,
		schema.CatalogVariation.ID, schema.CatalogVariation.UpdatedAt,
	)

	err := repository.conn(context).QueryRow(context, query, v.ID, v.CartID, v.Description, v.Note, v.Image).Scan(&v.UpdatedAt)
	return dberr.Wrap(err, "update_variation")
}

// # Generic node access

func (repository *PostgresRepository) GetNode(context context.Context, ref node.Ref) (Node, error) {
	switch ref.Kind {
	case node.KindCountry:
		return nodeOf(repository.GetCountry(context, ref.ID))
	case node.KindManufacturer:
		return nodeOf(repository.GetManufacturer(context, ref.ID))
	case node.KindHeadstamp:
		return nodeOf(repository.GetHeadstamp(context, ref.ID))
	case node.KindLoad:
		return nodeOf(repository.GetLoad(context, ref.ID))
	case node.KindDate:
		return nodeOf(repository.GetDate(context, ref.ID))
	case node.KindVariation:
		return nodeOf(repository.GetVariation(context, ref.ID))
	}
	return nil, dberr.ErrNotFound
}

func (repository *PostgresRepository) LockNode(context context.Context, ref node.Ref, exclusive bool) error {
	mode := "FOR SHARE"
	if exclusive {
		mode = "FOR UPDATE"
	}
	query := fmt.Sprintf(`SELECT id FROM %s WHERE id = $1 %s`, TableOf(ref.Kind), mode)

	var id int64
	err := repository.conn(context).QueryRow(context, query, ref.ID).Scan(&id)
	return dberr.Wrap(err, "lock_"+ref.Kind.String())
}

/*
CountDependents counts, in one statement, the rows of every child relation
of ref plus the boxes attached to it directly.
*/
func (repository *PostgresRepository) CountDependents(context context.Context, ref node.Ref) ([]Dependent, error) {
	var (
		selects   []string
		relations []string
	)
	for _, rel := range node.Relations {
		if rel.Parent != ref.Kind {
			continue
		}
		selects = append(selects, fmt.Sprintf(`(SELECT count(*) FROM %s WHERE %s = $1)`, TableOf(rel.Child), ParentColumn(rel)))
		relations = append(relations, rel.Child.String())
	}
	selects = append(selects, fmt.Sprintf(`(SELECT count(*) FROM %s WHERE %s = $2 AND %s = $1)`,
		schema.CatalogBox.Table, schema.CatalogBox.ParentType, schema.CatalogBox.ParentID,
	))
	relations = append(relations, RelationBox)

	counts := make([]int, len(selects))
	targets := make([]any, len(selects))
	for i := range counts {
		targets[i] = &counts[i]
	}

	query := "SELECT " + strings.Join(selects, ", ")
	if err := repository.conn(context).QueryRow(context, query, ref.ID, ref.Kind.String()).Scan(targets...); err != nil {
		return nil, dberr.Wrap(err, "count_dependents")
	}

	dependents := make([]Dependent, len(relations))
	for i, relation := range relations {
		dependents[i] = Dependent{Relation: relation, Count: counts[i]}
	}
	return dependents, nil
}

// DeleteNode removes the row; source links go with it through ON DELETE CASCADE.
func (repository *PostgresRepository) DeleteNode(context context.Context, ref node.Ref) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, TableOf(ref.Kind))

	cmd, err := repository.conn(context).Exec(context, query, ref.ID)
	if err != nil {
		return dberr.Wrap(err, "delete_"+ref.Kind.String())
	}

	if cmd.RowsAffected() == 0 {
		return dberr.ErrNotFound
	}
	return nil
}

// # Scan helpers

func getRow[T any](context context.Context, db postgres.Querier, action string, scan func(pgx.Row) (T, error), query string, args ...any) (T, error) {
	item, err := scan(db.QueryRow(context, query, args...))
	if err != nil {
		var zero T
		return zero, dberr.Wrap(err, action)
	}
	return item, nil
}

func listRows[T any](context context.Context, db postgres.Querier, action string, scan func(pgx.Row) (T, error), query string, args ...any) ([]T, error) {
	rows, err := db.Query(context, query, args...)
	if err != nil {
		return nil, dberr.Wrap(err, action)
	}
	defer rows.Close()

	var items []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, dberr.Wrap(err, action)
		}
		items = append(items, item)
	}
	return items, dberr.Wrap(rows.Err(), action)
}

func nodeOf[T Node](item T, err error) (Node, error) {
	if err != nil {
		return nil, err
	}
	return item, nil
}
