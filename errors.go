package inkpress

import "errors"

// Domain errors. Handlers translate these into flash messages; anything
// else is treated as a storage or delivery failure and logged without
// leaking detail to the user.
var (
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnconfirmed        = errors.New("email address not confirmed")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrNotFound           = errors.New("not found")
	ErrUnauthenticated    = errors.New("authentication required")
	ErrMailDelivery       = errors.New("mail delivery failed")
)
