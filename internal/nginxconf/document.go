package nginxconf

import "strings"

// Document is configuration text split into lines. Line terminators are not
// part of Lines; EOL records the terminator used when the text is rebuilt.
type Document struct {
	Lines []string
	EOL   string
}

// ParseDocument splits text on "\n", "\r\n" and "\r". A final terminator does
// not produce a trailing empty line. The document keeps "\r\n" line endings
// when its first line break is CRLF, otherwise it uses "\n".
func ParseDocument(text string) Document {
	doc := Document{EOL: "\n"}
	eolSeen := false

	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			doc.Lines = append(doc.Lines, text[start:i])
			start = i + 1
			eolSeen = true
		case '\r':
			doc.Lines = append(doc.Lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				if !eolSeen {
					doc.EOL = "\r\n"
				}
				i++
			}
			start = i + 1
			eolSeen = true
		}
	}
	if start < len(text) {
		doc.Lines = append(doc.Lines, text[start:])
	}

	return doc
}

// String joins the lines back together, terminating every line, so the
// result always ends with exactly one line terminator after the last line.
// An empty document renders as "".
func (d Document) String() string {
	eol := d.EOL
	if eol == "" {
		eol = "\n"
	}

	var b strings.Builder
	for _, line := range d.Lines {
		b.WriteString(line)
		b.WriteString(eol)
	}
	return b.String()
}

// Clone returns a copy that shares no backing storage with d.
func (d Document) Clone() Document {
	lines := make([]string, len(d.Lines))
	copy(lines, d.Lines)
	return Document{Lines: lines, EOL: d.EOL}
}
