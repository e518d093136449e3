package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// rule file structure
	RulInfo          Code = 1000
	RulSyntax        Code = 1001
	RulUnknownKey    Code = 1002
	RulBadValue      Code = 1003
	RulMissingKey    Code = 1004
	RulNoRules       Code = 1005
	RulDuplicateRule Code = 1006

	// patterns
	PatInfo          Code = 2000
	PatUnknownKind   Code = 2001
	PatAmbiguousKind Code = 2002
	PatBadRegex      Code = 2003
	PatBadMatchType  Code = 2004
	PatBadBounds     Code = 2005
	PatEmpty         Code = 2006
	PatBadCriteria   Code = 2007

	// actions
	ActInfo        Code = 3000
	ActUnknownKind Code = 3001
	ActMissingType Code = 3002
	ActBadGetter   Code = 3003

	// io
	IOInfo       Code = 4000
	IOReadFailed Code = 4001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:      "Unknown error",
		RulInfo:          "Rule file information",
		RulSyntax:        "Invalid TOML",
		RulUnknownKey:    "Unknown key",
		RulBadValue:      "Invalid value",
		RulMissingKey:    "Missing required key",
		RulNoRules:       "No rules defined",
		RulDuplicateRule: "Duplicate rule name",
		PatInfo:          "Pattern information",
		PatUnknownKind:   "Unknown pattern kind",
		PatAmbiguousKind: "Pattern has more than one kind",
		PatBadRegex:      "Invalid regular expression",
		PatBadMatchType:  "Invalid matchtype",
		PatBadBounds:     "Invalid repetition bounds",
		PatEmpty:         "Empty pattern",
		PatBadCriteria:   "Invalid annotation criteria",
		ActInfo:          "Action information",
		ActUnknownKind:   "Unknown action kind",
		ActMissingType:   "Action needs an annotation type",
		ActBadGetter:     "Invalid getter",
		IOInfo:           "I/O information",
		IOReadFailed:     "Cannot read file",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("RUL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("PAT%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("ACT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
