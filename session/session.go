// Package session keeps per-browser UI state: whether a search has run,
// whether the feedback form is open, and whether storage has failed for
// this visitor.
package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"redbus_site/config"
)

const (
	CookieName = "redbus_session"
	keyPrefix  = "session"
)

// State is owned by the caller and passed to rendering explicitly.
type State struct {
	ID                 string
	SearchTriggered    bool
	FeedbackOpen       bool
	StorageUnavailable bool
	LastQuery          string
	Notice             string
	NoticeIsError      bool
	UpdatedAt          time.Time
}

// Flash sets a one-shot message for the next page render.
func (s *State) Flash(msg string, isError bool) {
	s.Notice = msg
	s.NoticeIsError = isError
}

// TakeNotice returns and clears the pending message.
func (s *State) TakeNotice() (string, bool) {
	msg, isError := s.Notice, s.NoticeIsError
	s.Notice, s.NoticeIsError = "", false
	return msg, isError
}

// Searched records a search. A search with different criteria closes any
// open feedback form; re-rendering the same search keeps it open.
func (s *State) Searched(query string) {
	if !s.SearchTriggered || query != s.LastQuery {
		s.FeedbackOpen = false
	}
	s.SearchTriggered = true
	s.LastQuery = query
}

// OpenFeedback opens the feedback form. It only opens after a search.
func (s *State) OpenFeedback() bool {
	if !s.SearchTriggered {
		return false
	}
	s.FeedbackOpen = true
	return true
}

// FeedbackSubmitted resets the flow back to the welcome screen.
func (s *State) FeedbackSubmitted() {
	s.FeedbackOpen = false
	s.SearchTriggered = false
}

type Manager struct {
	cache *cache.Cache
	ttl   time.Duration
}

func NewManager(c *cache.Cache, ttl time.Duration) *Manager {
	return &Manager{cache: c, ttl: ttl}
}

// Load returns the session named by the request cookie, starting a new one
// (and setting the cookie) when there is none or it has expired.
func (m *Manager) Load(w http.ResponseWriter, r *http.Request) State {
	if c, err := r.Cookie(CookieName); err == nil {
		if v, found := m.cache.Get(config.GetCacheKey(keyPrefix, c.Value)); found {
			return v.(State)
		}
	}

	st := State{ID: uuid.NewString(), UpdatedAt: time.Now()}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    st.ID,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	m.Save(st)
	return st
}

// Save stores st and restarts its expiry.
func (m *Manager) Save(st State) {
	st.UpdatedAt = time.Now()
	m.cache.Set(config.GetCacheKey(keyPrefix, st.ID), st, m.ttl)
}

// End forgets a session.
func (m *Manager) End(id string) {
	m.cache.Delete(config.GetCacheKey(keyPrefix, id))
}

// Clear ends the session named by the request cookie and expires the
// cookie, so the next request starts from the welcome panel.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(CookieName); err == nil {
		m.End(c.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) Count() int {
	return m.cache.ItemCount()
}
