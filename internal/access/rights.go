package access

import "strings"

// Right is the unit of permission checked before a group-scoped operation.
type Right string

const (
	RightRead   Right = "READ"
	RightWrite  Right = "WRITE"
	RightDelete Right = "DELETE"
)

var allRights = []Right{RightRead, RightWrite, RightDelete}

// Rights is a set over the three-right vocabulary. Stored rows use the
// legacy textual form ("READ | WRITE | DELETE"); ParseRights and String
// round-trip it.
type Rights map[Right]struct{}

// NewRights builds a set from the given rights, ignoring unknown values.
func NewRights(rights ...Right) Rights {
	set := make(Rights, len(rights))
	for _, r := range rights {
		if r.Valid() {
			set[r] = struct{}{}
		}
	}
	return set
}

// FullRights returns the set granted to a group's creator.
func FullRights() Rights {
	return NewRights(RightRead, RightWrite, RightDelete)
}

// ParseRights interprets a stored rights value. Legacy rows are free
// text, so each known right is matched by containment rather than by
// tokenizing; "READ | WRITE" and "READ|WRITE" resolve identically.
func ParseRights(s string) Rights {
	set := make(Rights, len(allRights))
	for _, r := range allRights {
		if strings.Contains(s, string(r)) {
			set[r] = struct{}{}
		}
	}
	return set
}

// Clone returns an independent copy of the set.
func (rs Rights) Clone() Rights {
	cp := make(Rights, len(rs))
	for r := range rs {
		cp[r] = struct{}{}
	}
	return cp
}

// Has reports whether the set contains the right. A nil set has none.
func (rs Rights) Has(r Right) bool {
	_, ok := rs[r]
	return ok
}

// String renders the canonical stored form in READ, WRITE, DELETE order.
func (rs Rights) String() string {
	parts := make([]string, 0, len(rs))
	for _, r := range allRights {
		if rs.Has(r) {
			parts = append(parts, string(r))
		}
	}
	return strings.Join(parts, " | ")
}

// Valid reports whether the right belongs to the known vocabulary.
func (r Right) Valid() bool {
	switch r {
	case RightRead, RightWrite, RightDelete:
		return true
	}
	return false
}

// MarshalText renders the canonical form for JSON responses.
func (rs Rights) MarshalText() ([]byte, error) {
	return []byte(rs.String()), nil
}

// UnmarshalText parses the stored or wire form.
func (rs *Rights) UnmarshalText(data []byte) error {
	*rs = ParseRights(string(data))
	return nil
}
