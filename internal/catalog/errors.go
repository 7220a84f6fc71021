package catalog

import "errors"

var (
	// ErrInvalidCatalog is returned when a catalog document fails structural
	// validation. No questions can be asked without a valid catalog, so this
	// is fatal at startup.
	ErrInvalidCatalog = errors.New("invalid catalog document")

	// ErrUnknownService is returned when a document names a service outside
	// the closed set of supported keys.
	ErrUnknownService = errors.New("unknown service key")
)
