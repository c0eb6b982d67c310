package schema

// CatalogCaliberTable represents the 'catalog.caliber' table
type CatalogCaliberTable struct {
	Table     string
	Code      string
	Name      string
	SortOrder string
}

// CatalogCaliber is the schema definition for catalog.caliber
var CatalogCaliber = CatalogCaliberTable{
	Table:     "catalog.caliber",
	Code:      "code",
	Name:      "name",
	SortOrder: "sortorder",
}

func (t CatalogCaliberTable) Columns() []string {
	return []string{t.Code, t.Name, t.SortOrder}
}
