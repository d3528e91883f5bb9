package types

import "strings"

// Country is one row of the callsign prefix table.
type Country struct {
	Name     string
	Code     string
	Prefixes []string
}

// FlagTable maps callsign prefixes to countries.
type FlagTable struct {
	byPrefix map[string]Country
}

// NewFlagTable indexes countries by prefix. An earlier country wins when
// two rows share a prefix.
func NewFlagTable(countries []Country) *FlagTable {
	t := &FlagTable{byPrefix: make(map[string]Country)}
	for _, c := range countries {
		for _, p := range c.Prefixes {
			p = strings.ToUpper(strings.TrimSpace(p))
			if p == "" {
				continue
			}
			if _, ok := t.byPrefix[p]; !ok {
				t.byPrefix[p] = c
			}
		}
	}
	return t
}

// Lookup tries the first four, three, then two letters of callsign and
// returns the lower-case country code and name, or two empty strings.
func (t *FlagTable) Lookup(callsign string) (code, name string) {
	if t == nil {
		return "", ""
	}
	cs := strings.ToUpper(strings.TrimSpace(callsign))
	for n := 4; n >= 2; n-- {
		if len(cs) < n {
			continue
		}
		if c, ok := t.byPrefix[cs[:n]]; ok {
			return strings.ToLower(c.Code), c.Name
		}
	}
	return "", ""
}

// Len reports the number of indexed prefixes.
func (t *FlagTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.byPrefix)
}
