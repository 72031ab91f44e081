package search

import (
	"fmt"
	"strings"
)

// Opt is a value that is either present or absent. The zero value is absent.
type Opt[T any] struct {
	value T
	set   bool
}

// Some returns a present Opt holding v.
func Some[T any](v T) Opt[T] {
	return Opt[T]{value: v, set: true}
}

// Get returns the value and whether it is present.
func (o Opt[T]) Get() (T, bool) {
	return o.value, o.set
}

func (o Opt[T]) IsSet() bool {
	return o.set
}

// Criteria is a sparse set of listing filters. An absent field places no
// constraint on its column; callers drop a filter instead of passing a no-op
// value.
type Criteria struct {
	Routes        Opt[[]string]
	State         Opt[string]
	BusType       Opt[string]
	MinDepartTime Opt[string] // HH:MM:SS
	MinPrice      Opt[float64]
	MaxPrice      Opt[float64]
	MinRating     Opt[float64]
	MinSeats      Opt[int]
}

// Route is shorthand for a single-route criterion.
func Route(name string) Opt[[]string] {
	return Some([]string{name})
}

var paramOrder = []string{"route", "state", "bus_type", "depart_after", "min_price", "max_price", "min_rating", "min_seats"}

// Applied lists the present criteria keyed by their request parameter
// names, for echoing back to clients.
func (c Criteria) Applied() map[string]interface{} {
	applied := make(map[string]interface{})
	if routes, ok := c.Routes.Get(); ok {
		applied["route"] = routes
	}
	if state, ok := c.State.Get(); ok {
		applied["state"] = state
	}
	if busType, ok := c.BusType.Get(); ok {
		applied["bus_type"] = busType
	}
	if t, ok := c.MinDepartTime.Get(); ok {
		applied["depart_after"] = t
	}
	if p, ok := c.MinPrice.Get(); ok {
		applied["min_price"] = p
	}
	if p, ok := c.MaxPrice.Get(); ok {
		applied["max_price"] = p
	}
	if r, ok := c.MinRating.Get(); ok {
		applied["min_rating"] = r
	}
	if s, ok := c.MinSeats.Get(); ok {
		applied["min_seats"] = s
	}
	return applied
}

// String is used in log lines.
func (c Criteria) String() string {
	applied := c.Applied()
	var parts []string
	for _, key := range paramOrder {
		if v, ok := applied[key]; ok {
			parts = append(parts, fmt.Sprintf("%s=%v", key, v))
		}
	}
	if len(parts) == 0 {
		return "{}"
	}
	return "{" + strings.Join(parts, " ") + "}"
}
