// Package directory provides read-only lookup over employee records.
//
// This file implements a SQLite-backed directory. The schema mirrors
// the employee roster columns the bot needs; the table is owned by
// whatever provisions the roster, never written by LeavePipe.
package directory

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"

	_ "embed"

	"github.com/BTreeMap/LeavePipe/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

//go:embed migrations_sqlite.sql
var sqliteMigrations string

// SQLiteDirectory is a Directory backed by a SQLite employees table.
type SQLiteDirectory struct {
	db *sql.DB
}

// NewSQLiteDirectory opens (and migrates) the employees table at the
// given DSN.
func NewSQLiteDirectory(dsn string) (*SQLiteDirectory, error) {
	if dsn == "" {
		slog.Error("SQLiteDirectory DSN not set")
		return nil, fmt.Errorf("directory DSN not set")
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		slog.Error("Failed to open directory SQLite connection", "error", err)
		return nil, err
	}
	if err := db.Ping(); err != nil {
		slog.Error("Directory SQLite ping failed", "error", err)
		return nil, err
	}
	if _, err := db.Exec(sqliteMigrations); err != nil {
		slog.Error("Failed to run directory migrations", "error", err)
		return nil, fmt.Errorf("failed to run directory migrations: %w", err)
	}
	slog.Debug("SQLiteDirectory opened", "dsn_set", true)
	return &SQLiteDirectory{db: db}, nil
}

const employeeColumns = `id, name, phone, department, available_leaves, pending_work, role_criticality`

func scanPerson(row *sql.Row) (*models.Person, error) {
	var p models.Person
	var department, pendingWork, roleCriticality sql.NullString
	var availableLeaves sql.NullInt64
	err := row.Scan(&p.ID, &p.Name, &p.Phone, &department, &availableLeaves, &pendingWork, &roleCriticality)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p.Department = department.String
	p.AvailableLeaves = int(availableLeaves.Int64)
	p.PendingWork = pendingWork.String
	p.RoleCriticality = roleCriticality.String
	return &p, nil
}

// FindByPhone resolves a person by trailing-digit phone match. The
// candidate set is scanned in Go because the canonical-digit comparison
// does not translate to a portable SQL expression.
func (d *SQLiteDirectory) FindByPhone(phone string) (*models.Person, error) {
	rows, err := d.db.Query(`SELECT ` + employeeColumns + ` FROM employees ORDER BY id`)
	if err != nil {
		slog.Error("SQLiteDirectory FindByPhone query failed", "error", err)
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p models.Person
		var department, pendingWork, roleCriticality sql.NullString
		var availableLeaves sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &department, &availableLeaves, &pendingWork, &roleCriticality); err != nil {
			slog.Error("SQLiteDirectory FindByPhone scan failed", "error", err)
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		if SamePhone(p.Phone, phone) {
			p.Department = department.String
			p.AvailableLeaves = int(availableLeaves.Int64)
			p.PendingWork = pendingWork.String
			p.RoleCriticality = roleCriticality.String
			return &p, nil
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}
	return nil, nil
}

// FindByName resolves a person by exact case-insensitive name match.
func (d *SQLiteDirectory) FindByName(name string) (*models.Person, error) {
	row := d.db.QueryRow(`SELECT `+employeeColumns+` FROM employees WHERE LOWER(name) = ? LIMIT 1`, strings.ToLower(name))
	p, err := scanPerson(row)
	if err != nil {
		slog.Error("SQLiteDirectory FindByName failed", "error", err, "name", name)
		return nil, fmt.Errorf("failed to look up employee %q: %w", name, err)
	}
	return p, nil
}

// ListOthers returns up to limit people excluding the named person, in
// id order for deterministic suggestions.
func (d *SQLiteDirectory) ListOthers(excludeName string, limit int) ([]models.Person, error) {
	rows, err := d.db.Query(`SELECT `+employeeColumns+` FROM employees WHERE LOWER(name) != ? ORDER BY id LIMIT ?`,
		strings.ToLower(excludeName), limit)
	if err != nil {
		slog.Error("SQLiteDirectory ListOthers query failed", "error", err)
		return nil, fmt.Errorf("failed to query employees: %w", err)
	}
	defer rows.Close()

	var out []models.Person
	for rows.Next() {
		var p models.Person
		var department, pendingWork, roleCriticality sql.NullString
		var availableLeaves sql.NullInt64
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &department, &availableLeaves, &pendingWork, &roleCriticality); err != nil {
			return nil, fmt.Errorf("failed to scan employee row: %w", err)
		}
		p.Department = department.String
		p.AvailableLeaves = int(availableLeaves.Int64)
		p.PendingWork = pendingWork.String
		p.RoleCriticality = roleCriticality.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate employee rows: %w", err)
	}
	return out, nil
}

// Close closes the underlying database connection.
func (d *SQLiteDirectory) Close() error {
	return d.db.Close()
}
