package core

// DBOrdering is a single ORDER BY term parsed from an `ordering` query
// parameter. Repositories are responsible for whitelisting Field before
// interpolating it into SQL.
type DBOrdering struct {
	Field     string
	Ascending bool
}

func (ord DBOrdering) String() string {
	direction := "DESC"
	if ord.Ascending {
		direction = "ASC"
	}
	return ord.Field + " " + direction
}
