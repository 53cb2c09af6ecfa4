package schema

import "strings"

// Kind is the primary value kind of a column, resolved once from its type descriptor.
type Kind uint8

const (
	KindAny     Kind = iota // unrecognized descriptor, every value passes the kind check
	KindText                // TEXT
	KindInteger             // INTEGER
	KindReal                // REAL
	KindBoolean             // BOOLEAN
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "TEXT"
	case KindInteger:
		return "INTEGER"
	case KindReal:
		return "REAL"
	case KindBoolean:
		return "BOOLEAN"
	default:
		return "ANY"
	}
}

// check returns the value check belonging to k
func (k Kind) check(v any) bool {
	switch k {
	case KindText:
		return IsText(v)
	case KindInteger:
		return IsInteger(v)
	case KindReal:
		return IsReal(v)
	case KindBoolean:
		return IsBoolean(v)
	default:
		return true
	}
}

// ParseType resolves a type descriptor like "TEXT NOT NULL" into its kind and
// nullability. Matching is case-insensitive and by containment. When a descriptor
// names several kinds the first of TEXT, INTEGER, REAL, BOOLEAN wins.
func ParseType(descriptor string) (kind Kind, notNull bool) {
	d := strings.ToLower(descriptor)
	notNull = strings.Contains(d, "not null")

	switch {
	case strings.Contains(d, "text"):
		kind = KindText
	case strings.Contains(d, "integer"):
		kind = KindInteger
	case strings.Contains(d, "real"):
		kind = KindReal
	case strings.Contains(d, "boolean"):
		kind = KindBoolean
	default:
		kind = KindAny
	}
	return kind, notNull
}

// validKeyType reports whether descriptor may be used for the key column.
// Any mention of REAL or BOOLEAN disqualifies it.
func validKeyType(descriptor string) bool {
	d := strings.ToLower(descriptor)
	return !strings.Contains(d, "real") && !strings.Contains(d, "boolean")
}
