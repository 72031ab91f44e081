package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"redbus_site/config"
)

func newManager() *Manager {
	return NewManager(config.NewSessionCache(time.Minute), time.Minute)
}

func TestLoadStartsSessionAndSetsCookie(t *testing.T) {
	m := newManager()
	rec := httptest.NewRecorder()
	st := m.Load(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if st.ID == "" {
		t.Fatal("new session has no id")
	}
	if st.SearchTriggered || st.FeedbackOpen || st.StorageUnavailable {
		t.Errorf("new session has flags set: %+v", st)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].Value != st.ID {
		t.Fatalf("cookies = %v", cookies)
	}
	if m.Count() != 1 {
		t.Errorf("Count = %d, want 1", m.Count())
	}
}

func TestLoadReturnsSavedState(t *testing.T) {
	m := newManager()
	st := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	st.Searched("state=Kerala")
	m.Save(st)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: st.ID})
	rec := httptest.NewRecorder()
	got := m.Load(rec, req)

	if got.ID != st.ID || !got.SearchTriggered || got.LastQuery != "state=Kerala" {
		t.Errorf("Load = %+v", got)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("existing session should not reissue the cookie")
	}
}

func TestUnknownCookieStartsFresh(t *testing.T) {
	m := newManager()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: "stale"})
	st := m.Load(httptest.NewRecorder(), req)
	if st.ID == "stale" {
		t.Error("stale cookie reused")
	}
}

func TestFeedbackFlow(t *testing.T) {
	var st State
	if st.OpenFeedback() {
		t.Fatal("feedback opened before any search")
	}
	st.Searched("")
	if !st.OpenFeedback() || !st.FeedbackOpen {
		t.Fatal("feedback did not open after a search")
	}
	st.Searched("min_seats=2")
	if st.FeedbackOpen {
		t.Error("new search should close the feedback form")
	}
	st.OpenFeedback()
	st.FeedbackSubmitted()
	if st.FeedbackOpen || st.SearchTriggered {
		t.Errorf("flags not reset: %+v", st)
	}
}

func TestEnd(t *testing.T) {
	m := newManager()
	st := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	m.End(st.ID)
	if m.Count() != 0 {
		t.Errorf("Count = %d after End", m.Count())
	}
}

func TestFlash(t *testing.T) {
	var st State
	st.Flash("Booking initiated", false)
	msg, isErr := st.TakeNotice()
	if msg != "Booking initiated" || isErr {
		t.Errorf("TakeNotice = %q, %v", msg, isErr)
	}
	if msg, _ := st.TakeNotice(); msg != "" {
		t.Errorf("notice not cleared: %q", msg)
	}
}

func TestSameSearchKeepsFeedbackOpen(t *testing.T) {
	var st State
	st.Searched("search=1&state=Goa")
	st.OpenFeedback()
	st.Searched("search=1&state=Goa")
	if !st.FeedbackOpen {
		t.Error("re-rendering the same search closed the feedback form")
	}
}

func TestClearEndsSessionAndExpiresCookie(t *testing.T) {
	m := newManager()
	st := m.Load(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	req := httptest.NewRequest(http.MethodPost, "/reset", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: st.ID})
	rec := httptest.NewRecorder()
	m.Clear(rec, req)

	if m.Count() != 0 {
		t.Errorf("Count = %d after Clear", m.Count())
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName || cookies[0].MaxAge >= 0 {
		t.Errorf("cookies = %+v", cookies)
	}
}
