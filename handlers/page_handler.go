package handlers

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"net/url"

	"redbus_site/models"
	"redbus_site/search"
	"redbus_site/session"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// pageData is everything the search page renders. Session flags are passed
// in here rather than read by the template.
type pageData struct {
	States        []string
	Routes        []string
	BusTypes      []string
	Form          url.Values
	SelectedState string
	SelectedRoute map[string]bool
	PriceCeiling  float64

	Session        session.State
	Notice         string
	NoticeIsErr    bool
	Unavailable    bool
	UnavailableMsg string
	Searched       bool
	Result         models.SearchResponse
	BookableBuses  []string
}

// Index renders the search page. A "search" parameter runs the search;
// without it the welcome panel is shown, even for a session that searched
// before.
func (h *BusHandler) Index(w http.ResponseWriter, r *http.Request) {
	st := h.sessions.Load(w, r)
	q := r.URL.Query()

	data := pageData{
		States:        h.opts.States,
		Form:          q,
		SelectedState: selectedState(q),
		SelectedRoute: map[string]bool{},
		PriceCeiling:  h.opts.Form.PriceCeiling,
	}
	if data.PriceCeiling <= 0 {
		data.PriceCeiling = search.DefaultPriceCeiling
	}
	for _, route := range q[search.ParamRoute] {
		data.SelectedRoute[route] = true
	}

	searching := q.Get("search") != ""
	if searching {
		st.Searched(r.URL.RawQuery)
	}

	state := data.SelectedState
	if state == search.AllStates {
		state = ""
	}
	routes, err := h.lookup(r.Context(), &st, func(ctx context.Context) ([]string, error) {
		return h.listings.Routes(ctx, state)
	})
	if err == nil {
		data.Routes = routes
		data.BusTypes, err = h.lookup(r.Context(), &st, h.listings.BusTypes)
	}
	if err != nil && !st.StorageUnavailable {
		log.Printf("Index: lookup error: %v", err)
	}

	if searching && !st.StorageUnavailable {
		criteria := search.FromValues(q, h.opts.Form)
		data.Result, err = h.searchResult(r.Context(), &st, criteria)
		if err != nil && !st.StorageUnavailable {
			log.Printf("Index: search error: %v", err)
			st.Flash("Error fetching buses", true)
		}
		data.BookableBuses = uniqueBusNames(data.Result.Rows)
	}

	data.Notice, data.NoticeIsErr = st.TakeNotice()
	data.Unavailable = st.StorageUnavailable
	data.UnavailableMsg = storageUnavailableMsg
	data.Searched = searching
	data.Session = st
	h.sessions.Save(st)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if data.Unavailable {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := pageTemplate.Execute(w, data); err != nil {
		log.Printf("Index: template error: %v", err)
	}
}

func uniqueBusNames(rows []models.DisplayRow) []string {
	seen := make(map[string]bool)
	var names []string
	for _, r := range rows {
		if r.BusName == "" || seen[r.BusName] {
			continue
		}
		seen[r.BusName] = true
		names = append(names, r.BusName)
	}
	return names
}

// Reset handles POST /reset. It ends the session and returns to the
// welcome panel; a session halted by a storage failure may query again.
func (h *BusHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.sessions.Clear(w, r)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
