package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"redbus_site/utils"
)

type HealthResponse struct {
	Status    string `json:"status"`
	DBStatus  string `json:"db_status"`
	DBDetails struct {
		Driver string `json:"driver"`
		Table  string `json:"table"`
	} `json:"db_details"`
	FeedbackStore string `json:"feedback_store"`
	Sessions      int    `json:"sessions"`
	Error         string `json:"error,omitempty"`
}

// HealthHandler reports on the listing database and the feedback store.
type HealthHandler struct {
	listings ListingSource
	mongo    *mongo.Client
	driver   string
	table    string
	sessions func() int
}

func NewHealthHandler(listings ListingSource, client *mongo.Client, driver, table string, sessions func() int) *HealthHandler {
	return &HealthHandler{listings: listings, mongo: client, driver: driver, table: table, sessions: sessions}
}

// Health handles GET /api/v1/health.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Detailed handles GET /api/v1/health/detailed.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	response := HealthResponse{Status: "ok", FeedbackStore: "memory"}
	response.DBDetails.Driver = h.driver
	response.DBDetails.Table = h.table
	if h.sessions != nil {
		response.Sessions = h.sessions()
	}

	if err := h.listings.Ping(ctx); err != nil {
		response.Status = "error"
		response.DBStatus = "connection_error"
		response.Error = fmt.Sprintf("Database ping failed: %v", err)
	} else {
		response.DBStatus = "connected"
	}

	if h.mongo != nil {
		response.FeedbackStore = "mongodb"
		if err := h.mongo.Ping(ctx, readpref.Primary()); err != nil {
			if response.Status == "ok" {
				response.Status = "degraded"
			}
			response.FeedbackStore = "mongodb_unreachable"
		}
	}

	status := http.StatusOK
	if response.Status == "error" {
		status = http.StatusServiceUnavailable
	}
	utils.WriteJSON(w, status, response)
}
