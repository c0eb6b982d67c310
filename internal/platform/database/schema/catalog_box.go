package schema

// CatalogBoxTable represents the 'catalog.box' table
type CatalogBoxTable struct {
	Table       string
	ID          string
	Bid         string
	ParentType  string
	ParentID    string
	Description string
	Location    string
	Note        string
	Image       string
	CreatedAt   string
	UpdatedAt   string
}

// CatalogBox is the schema definition for catalog.box
var CatalogBox = CatalogBoxTable{
	Table:       "catalog.box",
	ID:          "id",
	Bid:         "bid",
	ParentType:  "parenttype",
	ParentID:    "parentid",
	Description: "description",
	Location:    "location",
	Note:        "note",
	Image:       "image",
	CreatedAt:   "createdat",
	UpdatedAt:   "updatedat",
}

func (t CatalogBoxTable) Columns() []string {
	return []string{t.ID, t.Bid, t.ParentType, t.ParentID, t.Description, t.Location, t.Note, t.Image, t.CreatedAt, t.UpdatedAt}
}
