package diag

import (
	"fmt"
	"strings"
)

// Severity orders diagnostics; a Bag filter keeps everything at or above
// a threshold.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

var severityNames = [...]string{
	SevInfo:    "INFO",
	SevWarning: "WARNING",
	SevError:   "ERROR",
}

func (s Severity) String() string {
	if int(s) < len(severityNames) {
		return severityNames[s]
	}
	return "UNKNOWN"
}

// ParseSeverity accepts the names printed by String in any case, plus
// "warn".
func ParseSeverity(s string) (Severity, error) {
	switch v := strings.ToUpper(strings.TrimSpace(s)); v {
	case "WARN":
		return SevWarning, nil
	default:
		for i, name := range severityNames {
			if v == name {
				return Severity(i), nil
			}
		}
	}
	return SevInfo, fmt.Errorf("invalid severity %q (expected info|warning|error)", s)
}
