package search

import (
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Request parameter names understood by FromValues.
const (
	ParamState       = "state"
	ParamRoute       = "route"
	ParamBusType     = "bus_type"
	ParamDepartAfter = "depart_after"
	ParamMinPrice    = "min_price"
	ParamMaxPrice    = "max_price"
	ParamMinRating   = "min_rating"
	ParamMinSeats    = "min_seats"
)

// Picker labels that mean "no filter".
const (
	AllStates   = "All States"
	AllRoutes   = "All Routes"
	AllBusTypes = "All"
)

// DefaultPriceCeiling is the top of the price picker. A max price at or
// above it filters nothing.
const DefaultPriceCeiling = 10000

// FormDefaults holds the picker limits used to recognise no-op values.
type FormDefaults struct {
	PriceCeiling float64
}

// FromValues reads filter inputs from a form or query string. Empty,
// unparsable and no-op values leave the criterion absent; nothing here is
// an error.
func FromValues(v url.Values, d FormDefaults) Criteria {
	if d.PriceCeiling <= 0 {
		d.PriceCeiling = DefaultPriceCeiling
	}

	var c Criteria

	var routes []string
	for _, r := range v[ParamRoute] {
		r = strings.TrimSpace(r)
		if r == "" || r == AllRoutes {
			continue
		}
		routes = append(routes, r)
	}
	if len(routes) > 0 {
		c.Routes = Some(routes)
	}

	if s := strings.TrimSpace(v.Get(ParamState)); s != "" && s != AllStates {
		c.State = Some(s)
	}
	if bt := strings.TrimSpace(v.Get(ParamBusType)); bt != "" && bt != AllBusTypes {
		c.BusType = Some(bt)
	}
	if t, ok := NormalizeTimeOfDay(v.Get(ParamDepartAfter)); ok && t != "00:00:00" {
		c.MinDepartTime = Some(t)
	}
	if p, ok := parseFloat(v.Get(ParamMinPrice)); ok && p > 0 {
		c.MinPrice = Some(p)
	}
	if p, ok := parseFloat(v.Get(ParamMaxPrice)); ok && p >= 0 && p < d.PriceCeiling {
		c.MaxPrice = Some(p)
	}
	if r, ok := parseFloat(v.Get(ParamMinRating)); ok && r > 0 {
		c.MinRating = Some(r)
	}
	if s, err := strconv.Atoi(strings.TrimSpace(v.Get(ParamMinSeats))); err == nil && s > 0 {
		c.MinSeats = Some(s)
	}
	return c
}

// NormalizeTimeOfDay accepts HH:MM or HH:MM:SS and returns HH:MM:SS.
func NormalizeTimeOfDay(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	for _, layout := range []string{"15:04:05", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("15:04:05"), true
		}
	}
	return "", false
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
