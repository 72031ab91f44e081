package search

import (
	"fmt"
	"strconv"
)

// Dialect decides how bound parameters are spelled in SQL text.
type Dialect int

const (
	// Dollar numbers parameters $1, $2, ... (postgres).
	Dollar Dialect = iota
	// Question uses a bare ? for every parameter (sqlite, mysql).
	Question
)

// DialectFor maps a database/sql driver name to its dialect.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "postgres", "pgx":
		return Dollar, nil
	case "sqlite", "sqlite3", "mysql":
		return Question, nil
	}
	return 0, fmt.Errorf("unsupported database driver %q", driver)
}

// Placeholder returns the marker for the n-th (1-based) parameter.
func (d Dialect) Placeholder(n int) string {
	if d == Dollar {
		return "$" + strconv.Itoa(n)
	}
	return "?"
}

func (d Dialect) String() string {
	if d == Dollar {
		return "dollar"
	}
	return "question"
}
