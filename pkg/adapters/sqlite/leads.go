package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/leadwizard/pkg/domain"
	_ "github.com/mattn/go-sqlite3"
)

const schema = `
	CREATE TABLE IF NOT EXISTS leads (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		email TEXT,
		phone TEXT,
		zip_code TEXT,
		quote_type TEXT,
		raw_message TEXT NOT NULL,
		coverage_category TEXT,
		vehicle_year TEXT,
		home_type TEXT,
		timestamp DATETIME NOT NULL
	);
`

// LeadStore is a SQLite implementation of ports.LeadRepository for local development.
type LeadStore struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the leads table exists.
// Use ":memory:" for a throwaway database.
func Open(path string) (*LeadStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Every connection to ":memory:" is a separate database.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	} else if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &LeadStore{db: db}, nil
}

// Save inserts the lead and fills in its id and timestamp.
func (s *LeadStore) Save(ctx context.Context, lead *domain.Lead) (int64, error) {
	created := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO leads (name, email, phone, zip_code, quote_type,
			coverage_category, vehicle_year, home_type, raw_message, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		lead.DisplayName(),
		nullable(lead.Email),
		nullable(lead.Phone),
		nullable(lead.ZipCode),
		nullable(lead.QuoteType),
		nullable(lead.CoverageCategory),
		nullable(lead.VehicleYear),
		nullable(lead.HomeType),
		lead.RawMessage,
		created,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lead: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read lead id: %w", err)
	}

	lead.ID = id
	lead.CreatedAt = created
	return id, nil
}

// Get retrieves a lead by its id.
func (s *LeadStore) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	var (
		lead                                                domain.Lead
		email, phone, zip, quoteType, category, year, homeT sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, phone, zip_code, quote_type, coverage_category,
			vehicle_year, home_type, raw_message, timestamp
		 FROM leads WHERE id = ?`, id,
	).Scan(&lead.ID, &lead.Name, &email, &phone, &zip, &quoteType, &category,
		&year, &homeT, &lead.RawMessage, &lead.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead %d: %w", id, err)
	}

	lead.Email = email.String
	lead.Phone = phone.String
	lead.ZipCode = zip.String
	lead.QuoteType = quoteType.String
	lead.CoverageCategory = category.String
	lead.VehicleYear = year.String
	lead.HomeType = homeT.String
	return &lead, nil
}

// Close closes the database.
func (s *LeadStore) Close() error {
	return s.db.Close()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
