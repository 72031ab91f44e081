package search

import "strings"

// Columns of the bus listing table.
const (
	ColRouteName    = "bus_route_name"
	ColRouteLink    = "bus_route_link"
	ColBusName      = "bus_name"
	ColBusType      = "bus_type"
	ColDepartTime   = "departing_time"
	ColDuration     = "duration"
	ColReachTime    = "reaching_time"
	ColRating       = "star_rating"
	ColPrice        = "price"
	ColSeats        = "seat_availability"
	basePredicate   = "1=1"
	placeholderMark = "?"
)

// ListingColumns is the select list for a full listing row, in scan order.
var ListingColumns = []string{
	ColRouteName, ColRouteLink, ColBusName, ColBusType, ColDepartTime,
	ColDuration, ColReachTime, ColRating, ColPrice, ColSeats,
}

// Clause is one predicate of a compiled query. Expr marks every bound value
// with "?" and Args holds those values in marker order.
type Clause struct {
	Expr string
	Args []interface{}
}

// Query is an ordered list of clauses joined by AND.
type Query struct {
	Clauses []Clause
}

// Compile turns criteria into a parameterized predicate. Clauses are emitted
// in a fixed order: route, state, bus type, departure, min price, max price,
// rating, seats. User values only ever appear in Args.
func Compile(c Criteria) Query {
	var q Query

	if routes, ok := c.Routes.Get(); ok && len(routes) > 0 {
		if len(routes) == 1 {
			q.add(ColRouteName+" = ?", routes[0])
		} else {
			args := make([]interface{}, len(routes))
			for i, r := range routes {
				args[i] = r
			}
			marks := strings.TrimSuffix(strings.Repeat("?, ", len(routes)), ", ")
			q.add(ColRouteName+" IN ("+marks+")", args...)
		}
	}
	if state, ok := c.State.Get(); ok {
		q.add(ColRouteName+" LIKE ?", "%"+state+"%")
	}
	if busType, ok := c.BusType.Get(); ok {
		q.add(ColBusType+" = ?", busType)
	}
	if t, ok := c.MinDepartTime.Get(); ok {
		q.add(ColDepartTime+" >= ?", t)
	}
	if p, ok := c.MinPrice.Get(); ok {
		q.add(ColPrice+" >= ?", p)
	}
	if p, ok := c.MaxPrice.Get(); ok {
		q.add(ColPrice+" <= ?", p)
	}
	if r, ok := c.MinRating.Get(); ok {
		q.add(ColRating+" >= ?", r)
	}
	if s, ok := c.MinSeats.Get(); ok {
		q.add(ColSeats+" >= ?", s)
	}
	return q
}

func (q *Query) add(expr string, args ...interface{}) {
	q.Clauses = append(q.Clauses, Clause{Expr: expr, Args: args})
}

// Params flattens the bound values of every clause, in clause order.
func (q Query) Params() []interface{} {
	var params []interface{}
	for _, c := range q.Clauses {
		params = append(params, c.Args...)
	}
	return params
}

// Where renders the predicate for the given dialect, starting from the
// unconditional base predicate.
func (q Query) Where(d Dialect) string {
	var b strings.Builder
	b.WriteString(basePredicate)
	n := 0
	for _, c := range q.Clauses {
		b.WriteString(" AND ")
		expr := c.Expr
		for {
			i := strings.Index(expr, placeholderMark)
			if i < 0 {
				break
			}
			n++
			b.WriteString(expr[:i])
			b.WriteString(d.Placeholder(n))
			expr = expr[i+len(placeholderMark):]
		}
		b.WriteString(expr)
	}
	return b.String()
}
