package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"redbus_site/models"
	"redbus_site/present"
	"redbus_site/search"
	"redbus_site/session"
	"redbus_site/store"
	"redbus_site/utils"
)

const storageUnavailableMsg = "Failed to connect to database. Please check your connection settings."

// ListingSource is the read side of the listing table.
type ListingSource interface {
	Ping(ctx context.Context) error
	Search(ctx context.Context, c search.Criteria) ([]models.BusListing, error)
	Routes(ctx context.Context, state string) ([]string, error)
	BusTypes(ctx context.Context) ([]string, error)
}

// Options configures a BusHandler.
type Options struct {
	States       []string
	Form         search.FormDefaults
	QueryTimeout time.Duration
}

// BusHandler serves the search page and the JSON API.
type BusHandler struct {
	listings ListingSource
	feedback store.FeedbackStore
	sessions *session.Manager
	opts     Options
}

func NewBusHandler(listings ListingSource, feedback store.FeedbackStore, sessions *session.Manager, opts Options) *BusHandler {
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = 10 * time.Second
	}
	return &BusHandler{
		listings: listings,
		feedback: feedback,
		sessions: sessions,
		opts:     opts,
	}
}

var errStorageUnavailable = errors.New("storage unavailable")

// searchResult runs one compile, query and present cycle for a session.
// Once storage has failed for a session no further queries are attempted.
func (h *BusHandler) searchResult(ctx context.Context, st *session.State, c search.Criteria) (models.SearchResponse, error) {
	resp := models.SearchResponse{
		Criteria: c.Applied(),
		Columns:  present.Columns,
		Rows:     []models.DisplayRow{},
	}
	if st.StorageUnavailable {
		return resp, errStorageUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, h.opts.QueryTimeout)
	defer cancel()

	listings, err := h.listings.Search(ctx, c)
	if err != nil {
		if errors.Is(err, store.ErrUnavailable) {
			st.StorageUnavailable = true
			return resp, errStorageUnavailable
		}
		return resp, err
	}

	resp.Rows, resp.Aggregates = present.Present(listings)
	if !resp.Aggregates.Computed {
		resp.Message = present.NoResults
	}
	return resp, nil
}

// SearchBuses handles GET /api/v1/buses.
func (h *BusHandler) SearchBuses(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	criteria := search.FromValues(r.URL.Query(), h.opts.Form)
	st.Searched(r.URL.RawQuery)

	resp, err := h.searchResult(r.Context(), &st, criteria)
	h.sessions.Save(st)
	if err != nil {
		h.writeSearchError(w, "SearchBuses", err)
		return
	}

	log.Printf("SearchBuses: %s -> %d rows", criteria, len(resp.Rows))
	utils.WriteJSON(w, http.StatusOK, resp)
}

func (h *BusHandler) writeSearchError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, errStorageUnavailable) {
		log.Printf("%s: storage unavailable", op)
		utils.WriteError(w, http.StatusServiceUnavailable, errStorageUnavailable.Error())
		return
	}
	log.Printf("%s: database error: %v", op, err)
	utils.WriteError(w, http.StatusInternalServerError, "Error fetching buses")
}

// GetStates handles GET /api/v1/states.
func (h *BusHandler) GetStates(w http.ResponseWriter, r *http.Request) {
	utils.WriteJSON(w, http.StatusOK, models.StatesResponse{States: h.opts.States})
}

// GetRoutes handles GET /api/v1/routes?state=.
func (h *BusHandler) GetRoutes(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	state := strings.TrimSpace(r.URL.Query().Get(search.ParamState))
	if state == search.AllStates {
		state = ""
	}

	routes, err := h.lookup(r.Context(), &st, func(ctx context.Context) ([]string, error) {
		return h.listings.Routes(ctx, state)
	})
	h.sessions.Save(st)
	if err != nil {
		h.writeSearchError(w, "GetRoutes", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.RoutesResponse{State: state, Routes: routes, Count: len(routes)})
}

// GetBusTypes handles GET /api/v1/bus-types.
func (h *BusHandler) GetBusTypes(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	types, err := h.lookup(r.Context(), &st, h.listings.BusTypes)
	h.sessions.Save(st)
	if err != nil {
		h.writeSearchError(w, "GetBusTypes", err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, models.BusTypesResponse{BusTypes: types})
}

func (h *BusHandler) lookup(ctx context.Context, st *session.State, fn func(context.Context) ([]string, error)) ([]string, error) {
	if st.StorageUnavailable {
		return nil, errStorageUnavailable
	}
	ctx, cancel := context.WithTimeout(ctx, h.opts.QueryTimeout)
	defer cancel()

	values, err := fn(ctx)
	if errors.Is(err, store.ErrUnavailable) {
		st.StorageUnavailable = true
		return nil, errStorageUnavailable
	}
	return values, err
}

// redirectHome sends a form post back to the page it came from.
func (h *BusHandler) redirectHome(w http.ResponseWriter, r *http.Request, st session.State) {
	target := "/"
	if st.SearchTriggered {
		query := st.LastQuery
		if v, err := url.ParseQuery(query); err != nil || v.Get("search") == "" {
			// Searches made through the API carry no search flag.
			if query == "" {
				query = "search=1"
			} else {
				query = "search=1&" + query
			}
		}
		target += "?" + query
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// selectedState returns the state picker value for the page, defaulting to
// "All States".
func selectedState(v url.Values) string {
	if s := strings.TrimSpace(v.Get(search.ParamState)); s != "" {
		return s
	}
	return search.AllStates
}
