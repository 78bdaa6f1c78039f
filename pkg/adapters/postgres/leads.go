package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	insertLead = `INSERT INTO leads (name, email, phone, zip_code, quote_type,
		coverage_category, vehicle_year, home_type, raw_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, timestamp`

	selectLead = `SELECT id, name, email, phone, zip_code, quote_type,
		coverage_category, vehicle_year, home_type, raw_message, timestamp
		FROM leads WHERE id = $1`
)

// LeadStore is a PostgreSQL implementation of ports.LeadRepository.
// It expects the leads table to exist.
type LeadStore struct {
	db *pgxpool.Pool
}

// NewLeadStore creates a new LeadStore.
func NewLeadStore(db *pgxpool.Pool) *LeadStore {
	return &LeadStore{db: db}
}

// Connect opens and pings a connection pool.
func Connect(ctx context.Context, url string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Save inserts the lead and fills in its id and timestamp.
func (s *LeadStore) Save(ctx context.Context, lead *domain.Lead) (int64, error) {
	err := s.db.QueryRow(ctx, insertLead,
		lead.DisplayName(),
		nullable(lead.Email),
		nullable(lead.Phone),
		nullable(lead.ZipCode),
		nullable(lead.QuoteType),
		nullable(lead.CoverageCategory),
		nullable(lead.VehicleYear),
		nullable(lead.HomeType),
		lead.RawMessage,
	).Scan(&lead.ID, &lead.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to insert lead: %w", err)
	}
	return lead.ID, nil
}

// Get retrieves a lead by its id.
func (s *LeadStore) Get(ctx context.Context, id int64) (*domain.Lead, error) {
	var (
		lead                                                       domain.Lead
		email, phone, zip, quoteType, category, vehicleYear, homeT *string
	)
	err := s.db.QueryRow(ctx, selectLead, id).Scan(
		&lead.ID, &lead.Name, &email, &phone, &zip, &quoteType,
		&category, &vehicleYear, &homeT, &lead.RawMessage, &lead.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrLeadNotFound
		}
		return nil, fmt.Errorf("failed to get lead %d: %w", id, err)
	}

	lead.Email = deref(email)
	lead.Phone = deref(phone)
	lead.ZipCode = deref(zip)
	lead.QuoteType = deref(quoteType)
	lead.CoverageCategory = deref(category)
	lead.VehicleYear = deref(vehicleYear)
	lead.HomeType = deref(homeT)
	return &lead, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
