package rules

import (
	"sort"
	"strconv"
	"strings"

	"pampac/internal/diag"
)

// locator maps key paths such as rule[2].pattern.seq to positions in the
// rule file source. Array indexes below the rule level are not resolved, so
// the position is that of the enclosing key.
type locator struct {
	file    string
	src     string
	lineOff []int
	rules   []int
	section int
}

func newLocator(file, src string) *locator {
	l := &locator{file: file, src: src, lineOff: []int{0}, section: -1}
	for i := 0; i < len(src); i++ {
		if src[i] == '\n' {
			l.lineOff = append(l.lineOff, i+1)
		}
	}
	for _, off := range l.lineOff {
		line := strings.TrimSpace(lineAt(src, off))
		switch {
		case strings.HasPrefix(line, "[[rule]]"):
			l.rules = append(l.rules, off)
		case strings.HasPrefix(line, "[pampac]"):
			l.section = off
		}
	}
	return l
}

func lineAt(src string, off int) string {
	end := strings.IndexByte(src[off:], '\n')
	if end < 0 {
		return src[off:]
	}
	return src[off : off+end]
}

// offset converts a byte offset to a 1-based line and column.
func (l *locator) offset(off int) diag.Position {
	line := max(sort.SearchInts(l.lineOff, off+1)-1, 0)
	return diag.Position{File: l.file, Line: line + 1, Col: off - l.lineOff[line] + 1}
}

// pos returns the best known position of the key path.
func (l *locator) pos(where string) diag.Position {
	segs := strings.Split(where, ".")
	if len(segs) == 0 || segs[0] == "" {
		return diag.Position{File: l.file}
	}
	start, end := -1, len(l.src)
	head, idx := splitIndex(segs[0])
	switch {
	case head == "rule" && idx >= 0 && idx < len(l.rules):
		start = l.rules[idx]
		if idx+1 < len(l.rules) {
			end = l.rules[idx+1]
		}
	case head == "pampac" && l.section >= 0:
		start = l.section
	}
	if start < 0 {
		return diag.Position{File: l.file}
	}
	off := start
	for _, seg := range segs[1:] {
		key, _ := splitIndex(seg)
		i := indexKey(l.src[off:end], key)
		if i < 0 {
			break
		}
		off += i
	}
	return l.offset(off)
}

func splitIndex(seg string) (string, int) {
	open := strings.IndexByte(seg, '[')
	if open < 0 || !strings.HasSuffix(seg, "]") {
		return seg, -1
	}
	n, err := strconv.Atoi(seg[open+1 : len(seg)-1])
	if err != nil {
		return seg[:open], -1
	}
	return seg[:open], n
}

// indexKey finds key used as a bare key followed by '='.
func indexKey(s, key string) int {
	from := 0
	for {
		i := strings.Index(s[from:], key)
		if i < 0 {
			return -1
		}
		i += from
		from = i + len(key)
		if i > 0 && isKeyByte(s[i-1]) {
			continue
		}
		rest := strings.TrimLeft(s[from:], " \t")
		if strings.HasPrefix(rest, "=") {
			return i
		}
	}
}

func isKeyByte(b byte) bool {
	return b == '_' || b == '-' || b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
