package schema

// CatalogVariationTable represents the 'catalog.variation' table
type CatalogVariationTable struct {
	Table       string
	ID          string
	LoadID      string
	DateID      string
	CartID      string
	Description string
	Note        string
	Image       string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogVariation is the schema definition for catalog.variation
var CatalogVariation = CatalogVariationTable{
	Table:       "catalog.variation",
	ID:          "id",
	LoadID:      "loadid",
	DateID:      "dateid",
	CartID:      "cartid",
	Description: "description",
	Note:        "note",
	Image:       "image",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogVariationTable) Columns() []string {
	return []string{t.ID, t.LoadID, t.DateID, t.CartID, t.Description, t.Note, t.Image, t.CreatedAt, t.UpdatedAt}
}
