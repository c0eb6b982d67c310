package schema

// SourceLinkTable represents one of the 'catalog.<kind>source' junction tables.
type SourceLinkTable struct {
	Table       string
	SourceID    string
	EntityID    string
	DateSourced string
	Note        string
}

// newSourceLink builds the descriptor of the junction table for one node kind.
func newSourceLink(table string) SourceLinkTable {
	return SourceLinkTable{
		Table:       table,
		SourceID:    "sourceid",
		EntityID:    "entityid",
		DateSourced: "datesourced",
		Note:        "note",
	}
}

// Junction tables linking sources to catalog records.
var (
	HeadstampSource = newSourceLink("catalog.headstampsource")
	LoadSource      = newSourceLink("catalog.loadsource")
	DateSource      = newSourceLink("catalog.datesource")
	VariationSource = newSourceLink("catalog.variationsource")
	BoxSource       = newSourceLink("catalog.boxsource")
)

func (t SourceLinkTable) Columns() []string {
	return []string{t.SourceID, t.EntityID, t.DateSourced, t.Note}
}
