package nginxconf

import "errors"

// Editor failure kinds. Returned errors wrap one of these; match with errors.Is.
var (
	ErrInvalidRoute   = errors.New("invalid route")
	ErrDuplicateRoute = errors.New("route already exists")
	ErrNoServerBlock  = errors.New("could not find server block closing brace")
)
