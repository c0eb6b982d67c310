package schema

// CatalogLoadTable represents the 'catalog.load' table
type CatalogLoadTable struct {
	Table       string
	ID          string
	HeadstampID string
	CartID      string
	Description string
	Note        string
	Image       string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogLoad is the schema definition for catalog.load
var CatalogLoad = CatalogLoadTable{
	Table:       "catalog.load",
	ID:          "id",
	HeadstampID: "headstampid",
	CartID:      "cartid",
	Description: "description",
	Note:        "note",
	Image:       "image",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogLoadTable) Columns() []string {
	return []string{t.ID, t.HeadstampID, t.CartID, t.Description, t.Note, t.Image, t.CreatedAt, t.UpdatedAt}
}
