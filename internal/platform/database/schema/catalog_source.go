package schema

// CatalogSourceTable represents the 'catalog.source' table
type CatalogSourceTable struct {
	Table       string
	ID          string
	Name        string
	Slug        string
	Description string
	URL         string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogSource is the schema definition for catalog.source
var CatalogSource = CatalogSourceTable{
	Table:       "catalog.source",
	ID:          "id",
	Name:        "name",
	Slug:        "slug",
	Description: "description",
	URL:         "url",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogSourceTable) Columns() []string {
	return []string{t.ID, t.Name, t.Slug, t.Description, t.URL, t.CreatedAt, t.UpdatedAt}
}
