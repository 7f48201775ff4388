// Package eventlog reads recorded browser interaction events from the
// SQLite logs that ship inside run directories.
package eventlog

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Event is one recorded interaction row. Recordings produced by different
// capture tools name their table differently, but the column set is stable.
type Event struct {
	ID         int64
	EventType  string
	XPath      string
	ClassName  string
	ElementID  string
	InputValue string
}

// Click is the (xpath, element_id) projection of a click event used by the
// overlap checkers.
type Click struct {
	XPath     string
	ElementID string
}

// EventTypeClick is the event_type value recorded for mouse clicks.
const EventTypeClick = "click"

// Load opens the SQLite log at dbPath read-only and returns all events from
// the first user-defined table, ordered by primary key.
func Load(dbPath string) ([]Event, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("eventlog: open %s: %w", dbPath, err)
	}
	defer db.Close() //nolint:errcheck

	table, err := firstUserTable(db)
	if err != nil {
		return nil, fmt.Errorf("eventlog: %s: %w", dbPath, err)
	}

	events, err := loadTable(db, table)
	if err != nil {
		return nil, fmt.Errorf("eventlog: read %s from %s: %w", table, dbPath, err)
	}
	return events, nil
}

// Clicks extracts the click events from an event sequence.
func Clicks(events []Event) []Click {
	clicks := make([]Click, 0, len(events))
	for _, e := range events {
		if e.EventType == EventTypeClick {
			clicks = append(clicks, Click{XPath: e.XPath, ElementID: e.ElementID})
		}
	}
	return clicks
}

func firstUserTable(db *sql.DB) (string, error) {
	row := db.QueryRow(`
		SELECT name
		FROM sqlite_master
		WHERE type = 'table'
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY name
		LIMIT 1`)

	var name string
	if err := row.Scan(&name); err != nil {
		if err == sql.ErrNoRows {
			return "", fmt.Errorf("no user-defined tables")
		}
		return "", err
	}
	return name, nil
}

func loadTable(db *sql.DB, table string) ([]Event, error) {
	rows, err := db.Query(fmt.Sprintf(`SELECT * FROM %q ORDER BY 1`, table))
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table has no columns")
	}

	// Column order varies between recorders; resolve by name. The first
	// column is always the integer primary key.
	idx := make(map[string]int, len(cols))
	for i, c := range cols {
		idx[c] = i
	}

	var events []Event
	for rows.Next() {
		values := make([]any, len(cols))
		var id sql.NullInt64
		fields := make([]sql.NullString, len(cols))
		values[0] = &id
		for i := 1; i < len(cols); i++ {
			values[i] = &fields[i]
		}
		if err := rows.Scan(values...); err != nil {
			return nil, err
		}

		events = append(events, Event{
			ID:         id.Int64,
			EventType:  stringAt(fields, idx, "event_type"),
			XPath:      stringAt(fields, idx, "xpath"),
			ClassName:  stringAt(fields, idx, "class_name"),
			ElementID:  stringAt(fields, idx, "element_id"),
			InputValue: stringAt(fields, idx, "input_value"),
		})
	}
	return events, rows.Err()
}

func stringAt(fields []sql.NullString, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i == 0 {
		return ""
	}
	return fields[i].String
}
