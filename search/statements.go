package search

import "strings"

// SelectListings builds the listing search statement. table must be a
// trusted identifier; it comes from configuration, never from a request.
// No ORDER BY is imposed, rows come back in storage order.
func SelectListings(table string, c Criteria, d Dialect) (string, []interface{}) {
	q := Compile(c)
	stmt := "SELECT " + strings.Join(ListingColumns, ", ") +
		" FROM " + table +
		" WHERE " + q.Where(d)
	return stmt, q.Params()
}

// SelectRoutes builds the route picker lookup. An empty state lists every
// route. Results are ordered by route name.
func SelectRoutes(table, state string, d Dialect) (string, []interface{}) {
	var c Criteria
	if state != "" {
		c.State = Some(state)
	}
	q := Compile(c)
	stmt := "SELECT DISTINCT " + ColRouteName +
		" FROM " + table +
		" WHERE " + q.Where(d) +
		" ORDER BY " + ColRouteName
	return stmt, q.Params()
}

// SelectBusTypes builds the bus type picker lookup.
func SelectBusTypes(table string) string {
	return "SELECT DISTINCT " + ColBusType + " FROM " + table + " ORDER BY " + ColBusType
}
