package ports

import (
	"context"

	"github.com/aretw0/leadwizard/pkg/domain"
)

// LeadRepository persists captured leads.
type LeadRepository interface {
	// Save stores the lead and returns its generated id.
	Save(ctx context.Context, lead *domain.Lead) (int64, error)

	// Get loads a lead by id. Returns domain.ErrLeadNotFound if it does not exist.
	Get(ctx context.Context, id int64) (*domain.Lead, error)
}

// Notifier is fired after a lead has been persisted.
type Notifier interface {
	Notify(ctx context.Context, lead domain.Lead) error
}
