package schema

// CatalogHeadstampTable represents the 'catalog.headstamp' table
type CatalogHeadstampTable struct {
	Table                 string
	ID                    string
	ManufacturerID        string
	Code                  string
	Name                  string
	PrimaryManufacturerID string
	Note                  string
	Image                 string
	CreatedAt             string
	UpdatedAt             string
}

// CatalogHeadstamp is the schema definition for catalog.headstamp
var CatalogHeadstamp = CatalogHeadstampTable{
	Table:                 "catalog.headstamp",
	ID:                    "id",
	ManufacturerID:        "manufacturerid",
	Code:                  "code",
	Name:                  "name",
	PrimaryManufacturerID: "primarymanufacturerid",
	Note:                  "note",
	Image:                 "image",
	CreatedAt:             "createdat",
	UpdatedAt:             "updatedat",
}

func (t CatalogHeadstampTable) Columns() []string {
	return []string{t.ID, t.ManufacturerID, t.Code, t.Name, t.PrimaryManufacturerID, t.Note, t.Image, t.CreatedAt, t.UpdatedAt}
}
