// Package present turns listing rows into table rows and summary metrics.
package present

import (
	"html/template"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"redbus_site/models"
)

const (
	currencySymbol = "₹"
	ratingGlyph    = "⭐"
	noLink         = "N/A"
	NoResults      = "No buses found matching your criteria."
)

// Columns is the presentation order of a DisplayRow.
var Columns = []string{
	"bus_route_name", "bus_name", "bus_type",
	"departing_time", "duration", "reaching_time",
	"star_rating", "price", "seat_availability", "bus_route_link",
}

var printer = message.NewPrinter(language.English)

// Present formats rows for display and summarises them. Aggregates are only
// computed for a non-empty result set.
func Present(rows []models.BusListing) ([]models.DisplayRow, models.Aggregates) {
	display := make([]models.DisplayRow, 0, len(rows))
	for _, r := range rows {
		display = append(display, Row(r))
	}
	if len(rows) == 0 {
		return display, models.Aggregates{}
	}

	var totalPrice, totalRating float64
	for _, r := range rows {
		totalPrice += r.Price
		totalRating += r.StarRating
	}
	n := float64(len(rows))
	agg := models.Aggregates{
		Computed:   true,
		Count:      len(rows),
		MeanPrice:  totalPrice / n,
		MeanRating: totalRating / n,
	}
	agg.PriceText = Price(agg.MeanPrice)
	agg.RatingText = Rating(agg.MeanRating)
	return display, agg
}

// Row formats a single listing.
func Row(r models.BusListing) models.DisplayRow {
	return models.DisplayRow{
		RouteName:        r.RouteName,
		BusName:          r.BusName,
		BusType:          r.BusType,
		DepartingTime:    r.DepartingTime,
		Duration:         r.Duration,
		ReachingTime:     r.ReachingTime,
		StarRating:       Rating(r.StarRating),
		Price:            Price(r.Price),
		SeatAvailability: r.SeatAvailability,
		BookingAction:    BookingAction(r.RouteLink),
	}
}

// Price renders an amount as rupees with two decimals and thousands
// separators, e.g. ₹1,234.50.
func Price(v float64) string {
	return printer.Sprintf("%s%.2f", currencySymbol, v)
}

// Rating renders a star rating with one decimal, e.g. ⭐ 4.5.
func Rating(v float64) string {
	return printer.Sprintf("%s %.1f", ratingGlyph, v)
}

// BookingAction renders the booking link as a button-style anchor, or N/A
// when the listing has no usable http(s) link.
func BookingAction(link *string) template.HTML {
	if link == nil {
		return noLink
	}
	raw := strings.TrimSpace(*link)
	u, err := url.Parse(raw)
	if raw == "" || err != nil || u.Host == "" {
		return noLink
	}
	if scheme := strings.ToLower(u.Scheme); scheme != "http" && scheme != "https" {
		return noLink
	}
	href := template.HTMLEscapeString(raw)
	return template.HTML(`<a href="` + href + `" target="_blank" rel="noopener" class="book-now">Book Now</a>`)
}
