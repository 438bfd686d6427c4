package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig      = fmt.Errorf("configuration not found")
	ErrInvalidConfig      = fmt.Errorf("invalid configuration")
	ErrMissingCredentials = fmt.Errorf("missing credentials")

	// Storage errors
	ErrSlotNotFound = fmt.Errorf("storage slot not found")
	ErrStorageRead  = fmt.Errorf("storage read failed")
	ErrStorageWrite = fmt.Errorf("storage write failed")

	// Entity errors
	ErrInvalidEntity = fmt.Errorf("invalid entity")
	ErrUnknownKind   = fmt.Errorf("unknown entity kind")

	// API and service errors
	ErrAPIRequest         = fmt.Errorf("API request failed")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")
	ErrNotFound           = fmt.Errorf("not found")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
