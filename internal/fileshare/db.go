package fileshare

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4"
)

// Entry is one row of the connectivity-check table.
type Entry struct {
	ID   int    `json:"id"`
	Data string `json:"data"`
}

// Database is the connectivity check the /db_test endpoint performs.
type Database interface {
	// Roundtrip writes a row and reads the table back, proving the
	// injected credentials and the database service both work.
	Roundtrip(ctx context.Context) ([]Entry, error)
}

// pgDatabase implements Database against PostgreSQL. A fresh connection is
// opened per check so the endpoint also exercises the connect path, not
// just an established pool.
type pgDatabase struct {
	connString string
}

// NewDatabase creates the PostgreSQL-backed connectivity check.
func NewDatabase(connString string) Database {
	return &pgDatabase{connString: connString}
}

func (d *pgDatabase) Roundtrip(ctx context.Context) ([]Entry, error) {
	conn, err := pgx.Connect(ctx, d.connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	defer conn.Close(ctx)

	if _, err := conn.Exec(ctx,
		"CREATE TABLE IF NOT EXISTS test (id serial PRIMARY KEY, data varchar(100))"); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	if _, err := conn.Exec(ctx,
		"INSERT INTO test (data) VALUES ($1)", "fileshare"); err != nil {
		return nil, fmt.Errorf("failed to insert: %w", err)
	}

	rows, err := conn.Query(ctx, "SELECT id, data FROM test ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to select: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Data); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	return entries, nil
}
