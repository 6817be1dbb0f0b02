package popup

import "errors"

// Sentinel errors for the popup service layer.
var (
	ErrNotFound = errors.New("popup not found")
)
