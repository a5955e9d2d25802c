package odim

import (
	"fmt"
	"strings"
)

// SourceInfo identifies the radar or centre a product comes from. It is
// stored in what/source as comma separated KEY:value pairs.
type SourceInfo struct {
	WMO string // WMO block and station number
	RAD string // OPERA radar site code
	ORG string // originating centre
	PLC string // place name
	CTY string // country code
	NOD string // node, ODIM_H5 2.1 and later
	CMT string // free text; may contain commas

	// Extra keeps identifiers this type has no field for, in stored order.
	Extra []SourceField
}

// SourceField is one KEY:value pair of a source string.
type SourceField struct {
	Key   string
	Value string
}

// String renders the populated fields. CMT comes last so it can hold commas.
func (s SourceInfo) String() string {
	var parts []string
	add := func(key, value string) {
		if value != "" {
			parts = append(parts, key+":"+value)
		}
	}
	add("WMO", s.WMO)
	add("NOD", s.NOD)
	add("RAD", s.RAD)
	add("PLC", s.PLC)
	add("ORG", s.ORG)
	add("CTY", s.CTY)
	for _, f := range s.Extra {
		add(f.Key, f.Value)
	}
	add("CMT", s.CMT)
	return strings.Join(parts, listSep)
}

// IsZero reports whether no field is populated.
func (s SourceInfo) IsZero() bool {
	return s.String() == ""
}

// ParseSourceInfo parses a what/source string. Everything following "CMT:"
// is taken as the comment.
func ParseSourceInfo(str string) (SourceInfo, error) {
	var s SourceInfo
	rest := strings.TrimSpace(str)
	for rest != "" {
		var item string
		if strings.HasPrefix(rest, "CMT:") {
			item, rest = rest, ""
		} else {
			item, rest, _ = strings.Cut(rest, listSep)
		}

		key, value, ok := strings.Cut(item, ":")
		if !ok {
			return SourceInfo{}, fmt.Errorf("source item %q is not KEY:value", item)
		}
		key = strings.TrimSpace(key)

		switch key {
		case "WMO":
			s.WMO = value
		case "RAD":
			s.RAD = value
		case "ORG":
			s.ORG = value
		case "PLC":
			s.PLC = value
		case "CTY":
			s.CTY = value
		case "NOD":
			s.NOD = value
		case "CMT":
			s.CMT = value
		case "":
			return SourceInfo{}, fmt.Errorf("source item %q has no key", item)
		default:
			s.Extra = append(s.Extra, SourceField{Key: key, Value: value})
		}
		rest = strings.TrimLeft(rest, " ")
	}
	return s, nil
}
