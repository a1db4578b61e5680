package format

import "fmt"

// ChangeSize is a T-shirt size for the number of modified lines.
type ChangeSize string

const (
	SizeXS ChangeSize = "XS"
	SizeS  ChangeSize = "S"
	SizeM  ChangeSize = "M"
	SizeL  ChangeSize = "L"
	SizeXL ChangeSize = "XL"
)

// SizeBounds holds the inclusive upper bounds of each size below XL.
type SizeBounds struct {
	XS, S, M, L int
}

// DefaultSizeBounds lines up with the lines-modified scoring bands.
var DefaultSizeBounds = SizeBounds{XS: 100, S: 300, M: 600, L: 1000}

// Size classifies a change of additions plus deletions lines.
func Size(additions, deletions int, b SizeBounds) ChangeSize {
	switch total := additions + deletions; {
	case total <= b.XS:
		return SizeXS
	case total <= b.S:
		return SizeS
	case total <= b.M:
		return SizeM
	case total <= b.L:
		return SizeL
	default:
		return SizeXL
	}
}

// SizeLabel renders the size with its line counts, e.g. "S +120/-30".
func SizeLabel(additions, deletions int, b SizeBounds) string {
	return fmt.Sprintf("%s +%d/-%d", Size(additions, deletions, b), additions, deletions)
}
