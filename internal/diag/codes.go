package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка
	UnknownCode Code = 0

	// Reported by the macro itself.
	MacroInfo    Code = 1000
	MacroWarning Code = 1001
	MacroError   Code = 1002

	// Bridge-side problems with a macro invocation.
	BridgeUnknownDerive   Code = 2001
	BridgeEmptyExpansion  Code = 2002
	BridgeMalformedResult Code = 2003
)

var codeDescription = map[Code]string{
	UnknownCode:           "Unknown error",
	MacroInfo:             "Procedural macro note",
	MacroWarning:          "Procedural macro warning",
	MacroError:            "Procedural macro error",
	BridgeUnknownDerive:   "Derive is not provided by any procedural macro package",
	BridgeEmptyExpansion:  "Procedural macro produced no code",
	BridgeMalformedResult: "Procedural macro returned a malformed result",
}

// MacroCode picks the code for a diagnostic reported by a macro at sev.
func MacroCode(sev Severity) Code {
	switch sev {
	case SevInfo:
		return MacroInfo
	case SevWarning:
		return MacroWarning
	default:
		return MacroError
	}
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("PMC%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("BRG%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
