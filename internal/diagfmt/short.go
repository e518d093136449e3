package diagfmt

import (
	"io"
	"strings"

	"pampac/internal/diag"
)

// Short writes one line per diagnostic, suitable for golden files and
// grep:
//
//	error PAT2004 rules.toml:4:9 rule[1].pattern: unknown matchtype "lngest"
func Short(w io.Writer, bag *diag.Bag, mode PathMode, baseDir string) error {
	if bag == nil {
		return nil
	}
	var b strings.Builder
	for _, d := range bag.Items() {
		d.Pos.File = formatPath(d.Pos.File, mode, baseDir)
		d.Message = sanitizeMessage(d.Message)
		b.WriteString(d.String())
		b.WriteByte('\n')
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
