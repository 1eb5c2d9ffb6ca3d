package msi

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GUID identifies a product, upgrade family or package.
type GUID uuid.UUID

// Nil is the zero GUID.
var Nil GUID

// ParseGUID parses a GUID in braced "{...}" or bare form, any case.
func ParseGUID(s string) (GUID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return Nil, fmt.Errorf("parse guid %q: %w", s, err)
	}
	return GUID(u), nil
}

// MustParseGUID is like ParseGUID but panics on error.
// Intended for package-level constants.
func MustParseGUID(s string) GUID {
	g, err := ParseGUID(s)
	if err != nil {
		panic(err)
	}
	return g
}

// String formats the GUID the way the engine expects it: upper case and
// wrapped in braces.
func (g GUID) String() string {
	return "{" + strings.ToUpper(uuid.UUID(g).String()) + "}"
}

// IsZero reports whether g is the zero GUID.
func (g GUID) IsZero() bool {
	return g == Nil
}
