package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/leadwizard/pkg/domain"
	"github.com/aretw0/leadwizard/pkg/ports"
)

// Mask replaces answers whose key matches a PII pattern.
const Mask = "***"

type piiMiddleware struct {
	next     ports.SessionStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks answers whose key matches one of
// the patterns before they reach the store.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid PII pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) SetField(ctx context.Context, sessionID, field, value string) error {
	if key, ok := domain.AnswerKeyFromField(field); ok && m.sensitive(key) {
		value = Mask
	}
	return m.next.SetField(ctx, sessionID, field, value)
}

func (m *piiMiddleware) GetField(ctx context.Context, sessionID, field string) (string, bool, error) {
	return m.next.GetField(ctx, sessionID, field)
}

func (m *piiMiddleware) GetAllAnswers(ctx context.Context, sessionID string) (map[string]string, error) {
	return m.next.GetAllAnswers(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return deleteSession(ctx, m.next, sessionID)
}

func (m *piiMiddleware) sensitive(key string) bool {
	for _, p := range m.patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
