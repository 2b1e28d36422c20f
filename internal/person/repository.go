package person

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Repository is the record store for people.
//
// Each method is a single statement; nothing is validated here. Callers
// run Validate first (Service does this for them).
type Repository interface {
	// Initialize creates the people table if it does not exist. Idempotent.
	Initialize(ctx context.Context) error

	// Create inserts a row and returns the id the store assigned.
	Create(ctx context.Context, f Fields) (int64, error)

	// List returns a snapshot of every row.
	List(ctx context.Context) ([]Person, error)

	// Count returns the number of rows.
	Count(ctx context.Context) (int, error)

	// Get returns the row with the given id. ok is false when no such row
	// exists; err is reserved for storage faults.
	Get(ctx context.Context, id int64) (p Person, ok bool, err error)

	// Update replaces every field except the id and returns the number of
	// rows affected (0 when the id is unknown).
	Update(ctx context.Context, id int64, f Fields) (int64, error)

	// Delete removes the row and returns the number of rows affected.
	// Zero is not an error.
	Delete(ctx context.Context, id int64) (int64, error)
}

// Schema is the on-disk contract for the people table.
// AUTOINCREMENT keeps ids from being reused after deletion.
const Schema = `CREATE TABLE IF NOT EXISTS people (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	full_name        TEXT NOT NULL,
	address          TEXT,
	phone_number     TEXT,
	email            TEXT,
	city_of_origin   TEXT,
	date_of_birth    TEXT,
	religion         TEXT
)`

const selectColumns = `id, full_name, address, phone_number, email,
	city_of_origin, date_of_birth, religion`

// SQLiteRepository implements Repository using SQLite.
//
// Thread Safety: safe for concurrent use; the database handle serialises
// statements.
type SQLiteRepository struct {
	db *sql.DB
}

// Compile-time check.
var _ Repository = (*SQLiteRepository)(nil)

// NewSQLiteRepository creates a person store over an open database handle.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Initialize creates the people table if it is missing.
func (r *SQLiteRepository) Initialize(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("%w: creating people table: %w", ErrStorage, err)
	}
	return nil
}

// Create inserts a new person and returns the assigned id.
func (r *SQLiteRepository) Create(ctx context.Context, f Fields) (int64, error) {
	const query = `INSERT INTO people (full_name, address, phone_number, email,
		city_of_origin, date_of_birth, religion)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, query,
		f.FullName, nullStr(f.Address), nullStr(f.PhoneNumber), nullStr(f.Email),
		nullStr(f.CityOfOrigin), nullStr(f.DateOfBirth), nullStr(f.Religion))
	if err != nil {
		return 0, fmt.Errorf("%w: inserting person: %w", ErrStorage, err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("%w: reading inserted id: %w", ErrStorage, err)
	}
	return id, nil
}

// List returns every person ordered by id.
func (r *SQLiteRepository) List(ctx context.Context) ([]Person, error) {
	const query = `SELECT ` + selectColumns + ` FROM people ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: querying people: %w", ErrStorage, err)
	}
	defer rows.Close()

	people := []Person{}
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning person row: %w", ErrStorage, err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating person rows: %w", ErrStorage, err)
	}
	return people, nil
}

// Count returns the number of stored people without loading the rows.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: counting people: %w", ErrStorage, err)
	}
	return n, nil
}

// Get returns a single person by id.
func (r *SQLiteRepository) Get(ctx context.Context, id int64) (Person, bool, error) {
	const query = `SELECT ` + selectColumns + ` FROM people WHERE id = ?`

	p, err := scanPerson(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Person{}, false, nil
		}
		return Person{}, false, fmt.Errorf("%w: getting person %d: %w", ErrStorage, id, err)
	}
	return p, true, nil
}

// Update replaces all fields of the person with the given id.
func (r *SQLiteRepository) Update(ctx context.Context, id int64, f Fields) (int64, error) {
	const query = `UPDATE people
		SET full_name = ?, address = ?, phone_number = ?, email = ?,
			city_of_origin = ?, date_of_birth = ?, religion = ?
		WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		f.FullName, nullStr(f.Address), nullStr(f.PhoneNumber), nullStr(f.Email),
		nullStr(f.CityOfOrigin), nullStr(f.DateOfBirth), nullStr(f.Religion), id)
	if err != nil {
		return 0, fmt.Errorf("%w: updating person %d: %w", ErrStorage, id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	return n, nil
}

// Delete removes the person with the given id.
func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM people WHERE id = ?", id)
	if err != nil {
		return 0, fmt.Errorf("%w: deleting person %d: %w", ErrStorage, id, err)
	}
	n, _ := result.RowsAffected() //nolint:errcheck // SQLite always supports RowsAffected
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPerson reads one row in selectColumns order.
func scanPerson(s rowScanner) (Person, error) {
	var p Person
	var address, phone, email, city, dob, religion sql.NullString

	if err := s.Scan(&p.ID, &p.FullName, &address, &phone, &email, &city, &dob, &religion); err != nil {
		return Person{}, err
	}

	p.Address = fromNull(address)
	p.PhoneNumber = fromNull(phone)
	p.Email = fromNull(email)
	p.CityOfOrigin = fromNull(city)
	p.DateOfBirth = fromNull(dob)
	p.Religion = fromNull(religion)
	return p, nil
}

// nullStr converts an optional field to a nullable column value.
// Empty strings are stored as NULL.
func nullStr(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNull converts a nullable column value back to an optional field.
func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
