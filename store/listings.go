// Package store reads bus listings from the relational table and persists
// feedback submissions.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"redbus_site/models"
	"redbus_site/search"
)

// ErrUnavailable marks failures caused by the database being unreachable,
// as opposed to a bad statement or a scan error.
var ErrUnavailable = errors.New("storage unavailable")

// ListingStore runs read-only queries against the listing table.
type ListingStore struct {
	db      *sql.DB
	dialect search.Dialect
	table   string
}

func NewListingStore(db *sql.DB, dialect search.Dialect, table string) *ListingStore {
	return &ListingStore{db: db, dialect: dialect, table: table}
}

// Ping reports whether the database can be reached.
func (s *ListingStore) Ping(ctx context.Context) error {
	if s == nil || s.db == nil {
		return ErrUnavailable
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Search returns the listings matching c in storage order.
func (s *ListingStore) Search(ctx context.Context, c search.Criteria) ([]models.BusListing, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	stmt, args := search.SelectListings(s.table, c, s.dialect)

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, s.classify(ctx, "search listings", err)
	}
	defer rows.Close()

	listings := []models.BusListing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(ctx, "iterate listings", err)
	}

	log.Printf("ListingStore.Search: %s matched %d rows in %v", c, len(listings), time.Since(start))
	return listings, nil
}

// Routes lists distinct route names, restricted to those containing state
// when it is non-empty, in ascending order.
func (s *ListingStore) Routes(ctx context.Context, state string) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	stmt, args := search.SelectRoutes(s.table, state, s.dialect)
	return s.distinct(ctx, "list routes", stmt, args...)
}

// BusTypes lists distinct bus types in ascending order.
func (s *ListingStore) BusTypes(ctx context.Context) ([]string, error) {
	if s == nil || s.db == nil {
		return nil, ErrUnavailable
	}
	return s.distinct(ctx, "list bus types", search.SelectBusTypes(s.table))
}

func (s *ListingStore) distinct(ctx context.Context, op, stmt string, args ...interface{}) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, s.classify(ctx, op, err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v sql.NullString
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if v.Valid && v.String != "" {
			values = append(values, v.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, s.classify(ctx, op, err)
	}
	return values, nil
}

// classify wraps err with ErrUnavailable when a follow-up ping also fails.
func (s *ListingStore) classify(ctx context.Context, op string, err error) error {
	if ctx.Err() == nil {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if pingErr := s.db.PingContext(pingCtx); pingErr != nil {
			return fmt.Errorf("%s: %w: %v", op, ErrUnavailable, err)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row scanner) (models.BusListing, error) {
	var (
		l        models.BusListing
		route    sql.NullString
		link     sql.NullString
		busName  sql.NullString
		busType  sql.NullString
		depart   sql.NullString
		duration sql.NullString
		reach    sql.NullString
		rating   sql.NullFloat64
		price    sql.NullFloat64
		seats    sql.NullInt64
	)
	err := row.Scan(&route, &link, &busName, &busType, &depart,
		&duration, &reach, &rating, &price, &seats)
	if err != nil {
		return l, err
	}
	l.RouteName = route.String
	if link.Valid {
		l.RouteLink = &link.String
	}
	l.BusName = busName.String
	l.BusType = busType.String
	l.DepartingTime = timeOfDay(depart.String)
	l.Duration = duration.String
	l.ReachingTime = timeOfDay(reach.String)
	l.StarRating = rating.Float64
	l.Price = price.Float64
	l.SeatAvailability = int(seats.Int64)
	return l, nil
}

// timeOfDay trims the date part some drivers attach to TIME columns.
func timeOfDay(v string) string {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.Format("15:04:05")
	}
	if len(v) > 8 && v[2] == ':' && v[5] == ':' {
		return v[:8]
	}
	return v
}
