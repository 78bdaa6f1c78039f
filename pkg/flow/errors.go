package flow

import (
	"fmt"

	"github.com/aretw0/leadwizard/pkg/domain"
)

// LoadError reports why a flow definition could not be loaded.
// It matches domain.ErrFlowLoad with errors.Is.
type LoadError struct {
	Source string // File path or "<memory>"
	Reason string
	Err    error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("flow %s: %s", e.Source, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Is makes every LoadError match domain.ErrFlowLoad.
func (e *LoadError) Is(target error) bool {
	return target == domain.ErrFlowLoad
}
