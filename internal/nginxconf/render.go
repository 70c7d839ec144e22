package nginxconf

import "strings"

// DefaultUpstream is the proxy_pass target used when an Editor has none.
const DefaultUpstream = "http://127.0.0.1:5000"

const (
	locationIndent  = "    "
	directiveIndent = "        "
)

// Render returns the location block for route, one line per element and
// without a trailing newline. The route is substituted verbatim.
func (e *Editor) Render(route Route) string {
	return strings.Join(e.renderLines(route), "\n")
}

func (e *Editor) renderLines(route Route) []string {
	return []string{
		locationIndent + locationKeyword + " " + string(route) + " {",
		directiveIndent + "proxy_pass " + e.upstream() + ";",
		directiveIndent + "proxy_set_header Host $host;",
		directiveIndent + "proxy_set_header X-Real-IP $remote_addr;",
		locationIndent + "}",
	}
}
