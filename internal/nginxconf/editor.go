package nginxconf

import (
	"errors"
	"fmt"
)

// Editor inserts proxy location blocks into server-block configuration.
type Editor struct {
	// Upstream is the proxy_pass target of generated blocks.
	Upstream string
}

// NewEditor creates an editor proxying new routes to upstream. An empty
// upstream selects DefaultUpstream.
func NewEditor(upstream string) *Editor {
	return &Editor{Upstream: upstream}
}

func (e *Editor) upstream() string {
	if e == nil || e.Upstream == "" {
		return DefaultUpstream
	}
	return e.Upstream
}

// Apply adds a location block for rawRoute to the configuration text.
//
// On ErrDuplicateRoute the original text is returned unchanged so callers can
// treat it as a no-op. On any other error the result is empty.
func (e *Editor) Apply(text, rawRoute string) (string, error) {
	doc, err := e.ApplyDocument(ParseDocument(text), rawRoute)
	if err != nil {
		if errors.Is(err, ErrDuplicateRoute) {
			return text, err
		}
		return "", err
	}
	return doc.String(), nil
}

// ApplyDocument is Apply on a parsed document. The input is never modified;
// the returned document has its own line storage. On ErrDuplicateRoute a copy
// of doc is returned alongside the error.
func (e *Editor) ApplyDocument(doc Document, rawRoute string) (Document, error) {
	route, err := NormalizeRoute(rawRoute)
	if err != nil {
		return Document{}, err
	}

	if HasRoute(doc, route) {
		return doc.Clone(), fmt.Errorf("%w in config: %s", ErrDuplicateRoute, route)
	}

	at, err := FindInsertionLine(doc)
	if err != nil {
		return Document{}, err
	}

	block := e.renderLines(route)
	lines := make([]string, 0, len(doc.Lines)+len(block)+1)
	lines = append(lines, doc.Lines[:at]...)
	lines = append(lines, block...)
	lines = append(lines, "")
	lines = append(lines, doc.Lines[at:]...)

	return Document{Lines: lines, EOL: doc.EOL}, nil
}

// Apply runs the default editor.
func Apply(text, rawRoute string) (string, error) {
	return (&Editor{}).Apply(text, rawRoute)
}
