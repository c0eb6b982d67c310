package schema

// CatalogCountryTable represents the 'catalog.country' table
type CatalogCountryTable struct {
	Table       string
	ID          string
	CaliberCode string
	Name        string
	FullName    string
	Note        string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogCountry is the schema definition for catalog.country
var CatalogCountry = CatalogCountryTable{
	Table:       "catalog.country",
	ID:          "id",
	CaliberCode: "calibercode",
	Name:        "name",
	FullName:    "fullname",
	Note:        "note",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogCountryTable) Columns() []string {
	return []string{t.ID, t.CaliberCode, t.Name, t.FullName, t.Note, t.CreatedAt, t.UpdatedAt}
}
