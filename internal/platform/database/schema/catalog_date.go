package schema

// CatalogDateTable represents the 'catalog.date' table
type CatalogDateTable struct {
	Table       string
	ID          string
	LoadID      string
	CartID      string
	Year        string
	LotMonth    string
	Description string
	Note        string
	Image       string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogDate is the schema definition for catalog.date
var CatalogDate = CatalogDateTable{
	Table:       "catalog.date",
	ID:          "id",
	LoadID:      "loadid",
	CartID:      "cartid",
	Year:        "year",
	LotMonth:    "lotmonth",
	Description: "description",
	Note:        "note",
	Image:       "image",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogDateTable) Columns() []string {
	return []string{t.ID, t.LoadID, t.CartID, t.Year, t.LotMonth, t.Description, t.Note, t.Image, t.CreatedAt, t.UpdatedAt}
}
