// Package nginxconf edits nginx server-block configuration text.
//
// The editor is deliberately not an nginx parser. It understands exactly two
// things about the text it is given:
//
//   - route declarations: lines of the form "location <route>" (after
//     leading indentation), used to reject duplicate routes
//   - the closing brace of the last block: a line that is exactly "}" with
//     nothing but blank lines after it, used as the insertion point
//
// Everything else in the document is carried through untouched.
//
//	ed := nginxconf.NewEditor("http://127.0.0.1:5000")
//	updated, err := ed.Apply(text, "/api/")
//	switch {
//	case errors.Is(err, nginxconf.ErrDuplicateRoute):
//	    // updated == text, nothing to write
//	case err != nil:
//	    // invalid route or no server block, updated == ""
//	}
//
// All functions are pure: no I/O, no shared state. An Editor may be used from
// multiple goroutines.
package nginxconf
