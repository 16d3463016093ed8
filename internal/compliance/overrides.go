// SPDX-License-Identifier: AGPL-3.0-or-later

package compliance

import (
	"fmt"
	"io"
	"strings"
)

// Rule override values accepted in the rc file's rules map.
const (
	OverrideOff   = "off"
	OverrideWarn  = "warn"
	OverrideError = "error"
)

// ApplyOverrides rewrites violation severities by rule ID. "off" drops the
// violation entirely. Unknown override values are rejected.
func ApplyOverrides(res Result, overrides map[string]string) (Result, error) {
	if len(overrides) == 0 {
		return res, nil
	}
	vs := make([]Violation, 0, len(res.Violations))
	for _, v := range res.Violations {
		o, ok := overrides[v.Rule]
		if !ok {
			vs = append(vs, v)
			continue
		}
		switch strings.ToLower(o) {
		case OverrideOff:
		case OverrideWarn:
			v.Severity = SeverityWarn
			vs = append(vs, v)
		case OverrideError:
			v.Severity = SeverityError
			vs = append(vs, v)
		default:
			return Result{}, fmt.Errorf("rule %s: unknown override %q (want off, warn or error)", v.Rule, o)
		}
	}
	return NewResult(vs), nil
}

// Format selects a report renderer.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatSARIF Format = "sarif"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatJSON, FormatSARIF:
		return f, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json or sarif)", s)
	}
}

// Write renders res in the given format.
func Write(w io.Writer, res Result, f Format) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, res)
	case FormatSARIF:
		return WriteSARIF(w, res)
	default:
		return WriteText(w, res)
	}
}
