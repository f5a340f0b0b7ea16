package models

import "fmt"

// Path is one of the four fixed support programs a contribution funds.
type Path string

const (
	PathWisdom     Path = "WISDOM"     // crisis line and information services
	PathCourage    Path = "COURAGE"    // counselling for women and children
	PathProtection Path = "PROTECTION" // emergency shelter and safety kits
	PathService    Path = "SERVICE"    // volunteer hours
)

// Paths lists every valid path in canonical order.
var Paths = []Path{PathWisdom, PathCourage, PathProtection, PathService}

func (p Path) Valid() bool {
	switch p {
	case PathWisdom, PathCourage, PathProtection, PathService:
		return true
	}
	return false
}

// ParsePath validates a raw path string. Unknown values are rejected rather
// than coerced.
func ParsePath(s string) (Path, error) {
	p := Path(s)
	if !p.Valid() {
		return "", &ValidationError{Field: "path", Reason: fmt.Sprintf("unknown path %q", s)}
	}
	return p, nil
}
