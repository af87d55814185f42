package model

import "fmt"

// CategoryCode is the survey-method category assigned to an observation.
// The numeric values are part of the published API format and must not
// change: 0 - M1, 1 - M2, 2 - both.
type CategoryCode int

const (
	CategoryM1   CategoryCode = 0
	CategoryM2   CategoryCode = 1
	CategoryBoth CategoryCode = 2
)

// Merge resolves two per-row categories to the species-level category.
// Any BOTH wins, and a species observed under both M1 and M2 rows
// escalates to BOTH.
func (c CategoryCode) Merge(other CategoryCode) CategoryCode {
	if c == other {
		return c
	}
	return CategoryBoth
}

func (c CategoryCode) String() string {
	switch c {
	case CategoryM1:
		return "M1"
	case CategoryM2:
		return "M2"
	case CategoryBoth:
		return "both"
	}
	return fmt.Sprintf("CategoryCode(%d)", int(c))
}
