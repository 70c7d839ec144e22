package nginxconf

import "strings"

// FindInsertionLine returns the index of the line the new location block is
// inserted before.
//
// Lines are scanned from the end of the document. The first line that is
// exactly "}" once trimmed, and is followed only by blank lines, wins. This
// assumes the target server block is the last block in the file and that
// nothing but whitespace follows it; braces are not otherwise matched.
func FindInsertionLine(doc Document) (int, error) {
	for i := len(doc.Lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(doc.Lines[i])
		if line == "}" {
			return i, nil
		}
		if line != "" {
			// Non-blank text after every remaining candidate.
			break
		}
	}
	return 0, ErrNoServerBlock
}
