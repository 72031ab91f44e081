package models

import (
	"html/template"
	"time"
)

// BusListing is one row of the bus listing table. Rows are read-only.
type BusListing struct {
	RouteName        string  `json:"bus_route_name"`
	RouteLink        *string `json:"bus_route_link,omitempty"`
	BusName          string  `json:"bus_name"`
	BusType          string  `json:"bus_type"`
	DepartingTime    string  `json:"departing_time"`
	Duration         string  `json:"duration"`
	ReachingTime     string  `json:"reaching_time"`
	StarRating       float64 `json:"star_rating"`
	Price            float64 `json:"price"`
	SeatAvailability int     `json:"seat_availability"`
}

// DisplayRow is a listing formatted for the results table.
type DisplayRow struct {
	RouteName        string        `json:"bus_route_name"`
	BusName          string        `json:"bus_name"`
	BusType          string        `json:"bus_type"`
	DepartingTime    string        `json:"departing_time"`
	Duration         string        `json:"duration"`
	ReachingTime     string        `json:"reaching_time"`
	StarRating       string        `json:"star_rating"`
	Price            string        `json:"price"`
	SeatAvailability int           `json:"seat_availability"`
	BookingAction    template.HTML `json:"bus_route_link"`
}

// Aggregates summarise a result set. When Computed is false the result set
// was empty and the other fields carry no meaning.
type Aggregates struct {
	Computed   bool    `json:"computed"`
	Count      int     `json:"count"`
	MeanPrice  float64 `json:"mean_price,omitempty"`
	MeanRating float64 `json:"mean_rating,omitempty"`
	PriceText  string  `json:"mean_price_text,omitempty"`
	RatingText string  `json:"mean_rating_text,omitempty"`
}

type SearchResponse struct {
	Criteria   map[string]interface{} `json:"criteria"`
	Columns    []string               `json:"columns"`
	Rows       []DisplayRow           `json:"rows"`
	Aggregates Aggregates             `json:"aggregates"`
	Message    string                 `json:"message,omitempty"`
}

type BookingRequest struct {
	BusName       string `json:"bus_name" validate:"required"`
	Seats         int    `json:"seats" validate:"min=1,max=10"`
	PassengerName string `json:"passenger_name" validate:"required"`
}

type BookingConfirmation struct {
	ID            string    `json:"id"`
	BusName       string    `json:"bus_name"`
	Seats         int       `json:"seats"`
	PassengerName string    `json:"passenger_name"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

type FeedbackRequest struct {
	Rating int    `json:"rating" validate:"min=1,max=5"`
	Text   string `json:"text"`
}

// Feedback is a submitted feedback form.
type Feedback struct {
	ID        string    `json:"id" bson:"_id"`
	SessionID string    `json:"-" bson:"session_id"`
	Rating    int       `json:"rating" bson:"rating"`
	Text      string    `json:"text" bson:"text"`
	Criteria  string    `json:"criteria,omitempty" bson:"criteria,omitempty"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
