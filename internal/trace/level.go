package trace

import (
	"fmt"
	"strings"
)

// Level is the tracing verbosity; each level admits the scopes of the
// levels below it.
type Level uint8

const (
	LevelOff Level = iota
	LevelError    // nothing streamed, ring kept for failure dumps
	LevelPhase    // driver
	LevelDocument // + document runs
	LevelRule     // + rule firings
	LevelDebug    // + parse attempts
)

var levelNames = [...]string{"off", "error", "phase", "document", "rule", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// ParseLevel accepts the names printed by String plus "doc" and "".
func ParseLevel(s string) (Level, error) {
	switch v := strings.ToLower(strings.TrimSpace(s)); v {
	case "":
		return LevelOff, nil
	case "doc":
		return LevelDocument, nil
	default:
		for i, name := range levelNames {
			if name == v {
				return Level(i), nil
			}
		}
	}
	return LevelOff, fmt.Errorf("invalid trace level: %q (expected: %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass l.
func (l Level) ShouldEmit(scope Scope) bool {
	if l == LevelDebug {
		return true
	}
	if l < LevelPhase {
		return false
	}
	// LevelPhase admits ScopeDriver, LevelDocument up to ScopeDocument, ...
	return int(scope) <= int(l)-int(LevelPhase)+int(ScopeDriver)
}
