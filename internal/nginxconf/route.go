package nginxconf

import (
	"fmt"
	"strings"
)

// Route is a normalized location path. It is never empty and always starts
// with "/".
type Route string

func (r Route) String() string {
	return string(r)
}

// NormalizeRoute trims surrounding whitespace from raw and prefixes it with
// "/" when needed. No other cleanup is done: duplicate slashes, escapes and
// length are left alone.
func NormalizeRoute(raw string) (Route, error) {
	route := strings.TrimSpace(raw)
	if route == "" {
		return "", fmt.Errorf("%w: route cannot be empty", ErrInvalidRoute)
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return Route(route), nil
}
