package domain

import (
	"fmt"
	"time"

	"github.com/mitchellh/mapstructure"
)

// DefaultLeadName is used when a lead was captured without a name.
const DefaultLeadName = "New Inquiry"

// Lead is the insurance inquiry assembled from wizard answers and request fields.
// The mapstructure tags match the answer keys used by flow definitions (save_as).
type Lead struct {
	ID               int64     `json:"id,omitempty" mapstructure:"-"`
	Name             string    `json:"name" mapstructure:"name"`
	Email            string    `json:"email,omitempty" mapstructure:"email"`
	Phone            string    `json:"phone,omitempty" mapstructure:"phone"`
	ZipCode          string    `json:"zip_code,omitempty" mapstructure:"zip_code"`
	QuoteType        string    `json:"quote_type,omitempty" mapstructure:"quote_type"`
	CoverageCategory string    `json:"coverage_category,omitempty" mapstructure:"coverage_category"`
	VehicleYear      string    `json:"vehicle_year,omitempty" mapstructure:"vehicle_year"`
	HomeType         string    `json:"home_type,omitempty" mapstructure:"home_type"`
	RawMessage       string    `json:"raw_message" mapstructure:"raw_message"`
	SessionID        string    `json:"session_id,omitempty" mapstructure:"-"`
	CreatedAt        time.Time `json:"timestamp,omitempty" mapstructure:"-"`
}

// LeadFromAnswers decodes session answers into a Lead. Unknown answer keys are ignored.
func LeadFromAnswers(answers map[string]string) (Lead, error) {
	var lead Lead
	if len(answers) == 0 {
		return lead, nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &lead,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return lead, err
	}
	if err := dec.Decode(answers); err != nil {
		return lead, fmt.Errorf("failed to decode answers: %w", err)
	}
	return lead, nil
}

// Merge overwrites the lead's fields with every non-empty field of other.
func (l *Lead) Merge(other Lead) {
	set := func(dst *string, src string) {
		if src != "" {
			*dst = src
		}
	}
	set(&l.Name, other.Name)
	set(&l.Email, other.Email)
	set(&l.Phone, other.Phone)
	set(&l.ZipCode, other.ZipCode)
	set(&l.QuoteType, other.QuoteType)
	set(&l.CoverageCategory, other.CoverageCategory)
	set(&l.VehicleYear, other.VehicleYear)
	set(&l.HomeType, other.HomeType)
	set(&l.RawMessage, other.RawMessage)
	set(&l.SessionID, other.SessionID)
}

// DisplayName returns the lead name or DefaultLeadName.
func (l Lead) DisplayName() string {
	if l.Name == "" {
		return DefaultLeadName
	}
	return l.Name
}

// HasContact reports whether the lead carries any way to reach the person.
func (l Lead) HasContact() bool {
	return l.Name != "" || l.Email != "" || l.Phone != ""
}
