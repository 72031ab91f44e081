package store

import (
	"context"
	"database/sql"
	"errors"
	"reflect"
	"testing"

	_ "modernc.org/sqlite"

	"redbus_site/models"
	"redbus_site/search"
)

const testTable = "all_bus_details"

// openTestDB returns an in-memory SQLite database seeded with listings.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE ` + testTable + ` (
		id INTEGER PRIMARY KEY,
		bus_route_name TEXT NOT NULL,
		bus_route_link TEXT,
		bus_name TEXT,
		bus_type TEXT,
		departing_time TEXT,
		duration TEXT,
		reaching_time TEXT,
		star_rating REAL,
		price REAL,
		seat_availability INTEGER
	)`)
	if err != nil {
		t.Fatalf("create table: %v", err)
	}

	rows := []struct {
		route, link, bus, busType, depart, duration, reach string
		rating, price                                      float64
		seats                                              int
	}{
		{"Kochi to Bangalore", "https://www.redbus.in/kochi-bangalore", "Kallada Travels", "AC Sleeper", "21:00:00", "10h 30m", "07:30:00", 4.3, 1450, 12},
		{"Kochi to Bangalore", "", "KSRTC Swift", "Non AC Seater", "19:15:00", "11h 00m", "06:15:00", 3.6, 720, 30},
		{"Trivandrum to Kochi", "https://www.redbus.in/tvm-kochi", "SRS Travels", "AC Sleeper", "23:30:00", "5h 10m", "04:40:00", 3.9, 900, 0},
		{"Goa to Mumbai", "https://www.redbus.in/goa-mumbai", "Neeta Travels", "AC Seater", "08:00:00", "12h 00m", "20:00:00", 4.1, 1100, 5},
	}
	for _, r := range rows {
		var link interface{}
		if r.link != "" {
			link = r.link
		}
		_, err := db.Exec(`INSERT INTO `+testTable+` (bus_route_name, bus_route_link, bus_name, bus_type,
			departing_time, duration, reaching_time, star_rating, price, seat_availability)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.route, link, r.bus, r.busType, r.depart, r.duration, r.reach, r.rating, r.price, r.seats)
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	return db
}

func busNames(listings []models.BusListing) []string {
	names := []string{}
	for _, l := range listings {
		names = append(names, l.BusName)
	}
	return names
}

func TestSearchAllRowsInStorageOrder(t *testing.T) {
	s := NewListingStore(openTestDB(t), search.Question, testTable)

	got, err := s.Search(context.Background(), search.Criteria{})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"Kallada Travels", "KSRTC Swift", "SRS Travels", "Neeta Travels"}
	if !reflect.DeepEqual(busNames(got), want) {
		t.Errorf("Search = %v, want %v", busNames(got), want)
	}
}

func TestSearchMatchingRowOnly(t *testing.T) {
	s := NewListingStore(openTestDB(t), search.Question, testTable)

	got, err := s.Search(context.Background(), search.Criteria{
		BusType:   search.Some("AC Sleeper"),
		MinRating: search.Some(4.0),
		MinSeats:  search.Some(1),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rows (%v), want 1", len(got), busNames(got))
	}
	l := got[0]
	if l.BusName != "Kallada Travels" || l.Price != 1450 || l.StarRating != 4.3 || l.SeatAvailability != 12 {
		t.Errorf("unexpected listing %+v", l)
	}
	if l.RouteLink == nil || *l.RouteLink != "https://www.redbus.in/kochi-bangalore" {
		t.Errorf("RouteLink = %v", l.RouteLink)
	}
	if l.DepartingTime != "21:00:00" || l.ReachingTime != "07:30:00" || l.Duration != "10h 30m" {
		t.Errorf("times = %q %q %q", l.DepartingTime, l.ReachingTime, l.Duration)
	}
}

func TestSearchStateAndRouteAreIndependent(t *testing.T) {
	s := NewListingStore(openTestDB(t), search.Question, testTable)

	// The route does not contain the state name, so nothing matches even
	// though each filter alone would.
	got, err := s.Search(context.Background(), search.Criteria{
		State:  search.Some("Goa"),
		Routes: search.Route("Kochi to Bangalore"),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("got %v, want no rows", busNames(got))
	}
}

func TestSearchMultiRouteAndRanges(t *testing.T) {
	s := NewListingStore(openTestDB(t), search.Question, testTable)

	got, err := s.Search(context.Background(), search.Criteria{
		Routes:        search.Some([]string{"Kochi to Bangalore", "Goa to Mumbai"}),
		MinDepartTime: search.Some("08:00:00"),
		MinPrice:      search.Some(700.0),
		MaxPrice:      search.Some(1200.0),
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []string{"KSRTC Swift", "Neeta Travels"}
	if !reflect.DeepEqual(busNames(got), want) {
		t.Errorf("Search = %v, want %v", busNames(got), want)
	}
	if got[0].RouteLink != nil {
		t.Errorf("NULL link scanned as %q", *got[0].RouteLink)
	}
}

func TestSearchNoMatchesIsNotAnError(t *testing.T) {
	s := NewListingStore(openTestDB(t), search.Question, testTable)

	got, err := s.Search(context.Background(), search.Criteria{MinPrice: search.Some(99999.0)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %#v, want empty slice", got)
	}
}

func TestRoutesAndBusTypes(t *testing.T) {
	s := NewListingStore(openTestDB(t), search.Question, testTable)
	ctx := context.Background()

	routes, err := s.Routes(ctx, "")
	if err != nil {
		t.Fatalf("Routes: %v", err)
	}
	want := []string{"Goa to Mumbai", "Kochi to Bangalore", "Trivandrum to Kochi"}
	if !reflect.DeepEqual(routes, want) {
		t.Errorf("Routes = %v, want %v", routes, want)
	}

	routes, err = s.Routes(ctx, "Kochi")
	if err != nil {
		t.Fatalf("Routes(Kochi): %v", err)
	}
	want = []string{"Kochi to Bangalore", "Trivandrum to Kochi"}
	if !reflect.DeepEqual(routes, want) {
		t.Errorf("Routes(Kochi) = %v, want %v", routes, want)
	}

	types, err := s.BusTypes(ctx)
	if err != nil {
		t.Fatalf("BusTypes: %v", err)
	}
	wantTypes := []string{"AC Seater", "AC Sleeper", "Non AC Seater"}
	if !reflect.DeepEqual(types, wantTypes) {
		t.Errorf("BusTypes = %v, want %v", types, wantTypes)
	}
}

func TestClosedDatabaseIsUnavailable(t *testing.T) {
	db := openTestDB(t)
	s := NewListingStore(db, search.Question, testTable)
	db.Close()

	_, err := s.Search(context.Background(), search.Criteria{})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Search on closed db: err = %v, want ErrUnavailable", err)
	}
	if err := s.Ping(context.Background()); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Ping on closed db: err = %v, want ErrUnavailable", err)
	}
}

func TestNilStoreIsUnavailable(t *testing.T) {
	var s *ListingStore
	if _, err := s.Search(context.Background(), search.Criteria{}); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Search: err = %v", err)
	}
	if _, err := s.Routes(context.Background(), ""); !errors.Is(err, ErrUnavailable) {
		t.Errorf("Routes: err = %v", err)
	}
}

func TestBadTableIsNotUnavailable(t *testing.T) {
	s := NewListingStore(openTestDB(t), search.Question, "missing_table")
	_, err := s.Search(context.Background(), search.Criteria{})
	if err == nil {
		t.Fatal("expected an error for a missing table")
	}
	if errors.Is(err, ErrUnavailable) {
		t.Errorf("statement error classified as unavailable: %v", err)
	}
}

func TestTimeOfDay(t *testing.T) {
	tests := map[string]string{
		"0000-01-01T21:00:00Z": "21:00:00",
		"21:00:00.000000":      "21:00:00",
		"21:00:00":             "21:00:00",
		"":                     "",
	}
	for in, want := range tests {
		if got := timeOfDay(in); got != want {
			t.Errorf("timeOfDay(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMemoryFeedbackStore(t *testing.T) {
	s := NewMemoryFeedbackStore()
	ctx := context.Background()
	for i := 1; i <= 3; i++ {
		if err := s.Save(ctx, models.Feedback{Rating: i}); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	recent, err := s.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 2 || recent[0].Rating != 3 || recent[1].Rating != 2 {
		t.Errorf("Recent = %+v", recent)
	}
}

func TestSearchToleratesNullRouteName(t *testing.T) {
	db := openTestDB(t)
	// CREATE TABLE ... AS drops the NOT NULL constraint.
	if _, err := db.Exec(`CREATE TABLE loose_bus_details AS SELECT * FROM ` + testTable); err != nil {
		t.Fatalf("copy table: %v", err)
	}
	if _, err := db.Exec(`INSERT INTO loose_bus_details (bus_route_name, bus_name, price, seat_availability)
		VALUES (NULL, 'Unnamed Route Travels', 500, 3)`); err != nil {
		t.Fatalf("insert: %v", err)
	}

	s := NewListingStore(db, search.Question, "loose_bus_details")
	got, err := s.Search(context.Background(), search.Criteria{MaxPrice: search.Some(600.0)})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 1 || got[0].BusName != "Unnamed Route Travels" || got[0].RouteName != "" {
		t.Errorf("Search = %+v", got)
	}
}
