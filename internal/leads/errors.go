package leads

import "errors"

var (
	// ErrLeadNotFound is returned when a lead is not found
	ErrLeadNotFound = errors.New("lead not found")

	// ErrIncompleteFlow is returned when a lead is requested before all
	// questions have been answered
	ErrIncompleteFlow = errors.New("question flow not completed")
)
