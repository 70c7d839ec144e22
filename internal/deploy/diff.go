package deploy

import (
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/logging"
)

// Diff renders a unified diff of a change to path. It is empty when before
// and after are equal.
func Diff(path, before, after string) string {
	var b strings.Builder
	if err := WriteDiff(&b, path, before, after); err != nil {
		logging.Debug("failed to render diff", "path", path, "error", err)
	}
	return b.String()
}

// WriteDiff writes a unified diff of a change to path to w.
func WriteDiff(w io.Writer, path, before, after string) error {
	if before == after {
		return nil
	}

	text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: path,
		ToFile:   path + " (new)",
		Context:  3,
	})
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, text)
	return err
}
