package handlers

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterRoutes mounts the page routes on r and the JSON API under
// /api/v1.
func RegisterRoutes(r *mux.Router, bus *BusHandler, health *HealthHandler) {
	// Search page
	r.HandleFunc("/", bus.Index).Methods("GET")
	r.HandleFunc("/booking", bus.BookForm).Methods("POST")
	r.HandleFunc("/feedback/open", bus.OpenFeedbackForm).Methods("POST")
	r.HandleFunc("/feedback", bus.FeedbackForm).Methods("POST")
	r.HandleFunc("/reset", bus.Reset).Methods("POST")

	api := r.PathPrefix("/api/v1").Subrouter()

	// Bus search routes
	api.HandleFunc("/buses", bus.SearchBuses).Methods("GET")
	api.HandleFunc("/states", bus.GetStates).Methods("GET")
	api.HandleFunc("/routes", bus.GetRoutes).Methods("GET")
	api.HandleFunc("/bus-types", bus.GetBusTypes).Methods("GET")

	// Booking and feedback routes
	api.HandleFunc("/bookings", bus.CreateBooking).Methods("POST")
	api.HandleFunc("/feedback/open", bus.OpenFeedback).Methods("POST")
	api.HandleFunc("/feedback", bus.SubmitFeedback).Methods("POST")
	api.HandleFunc("/feedback", bus.ListFeedback).Methods("GET")

	// Health check
	api.HandleFunc("/health", health.Health).Methods("GET")
	api.HandleFunc("/health/detailed", health.Detailed).Methods("GET")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log.Printf("Not found: %s %s", r.Method, r.URL.Path)
		http.NotFound(w, r)
	})
	log.Println("Routes registered successfully")
}
