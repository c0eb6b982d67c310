package schema

// CatalogManufacturerTable represents the 'catalog.manufacturer' table
type CatalogManufacturerTable struct {
	Table     string
	ID        string
	CountryID string
	Code      string
	Name      string
	Note      string
	Image     string
	CreatedAt string
	UpdatedAt string
}

// CatalogManufacturer is the schema definition for catalog.manufacturer
var CatalogManufacturer = CatalogManufacturerTable{
	Table:     "catalog.manufacturer",
	ID:        "id",
	CountryID: "countryid",
	Code:      "code",
	Name:      "name",
	Note:      "note",
	Image:     "image",
	CreatedAt: "createdat",
	UpdatedAt: "updatedat",
}

func (t CatalogManufacturerTable) Columns() []string {
	return []string{t.ID, t.CountryID, t.Code, t.Name, t.Note, t.Image, t.CreatedAt, t.UpdatedAt}
}
