package tensor

import (
	"fmt"
	"strconv"
)

// TimeSelector picks either one time bin or all bins combined.
type TimeSelector struct {
	bin int // negative means all
}

// AllTime selects the elementwise sum over every time bin.
func AllTime() TimeSelector { return TimeSelector{bin: -1} }

// AtBin selects a single time bin.
func AtBin(i int) TimeSelector { return TimeSelector{bin: i} }

// IsAll reports whether every bin is selected.
func (s TimeSelector) IsAll() bool { return s.bin < 0 }

// Bin returns the selected bin; only meaningful when IsAll is false.
func (s TimeSelector) Bin() int { return s.bin }

func (s TimeSelector) String() string {
	if s.IsAll() {
		return "all"
	}
	return strconv.Itoa(s.bin)
}

// ParseTimeSelector parses "all" or a non-negative bin index.
func ParseTimeSelector(s string) (TimeSelector, error) {
	if s == "" || s == "all" {
		return AllTime(), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return TimeSelector{}, fmt.Errorf("%w: %q", ErrBadTimeBin, s)
	}
	return AtBin(n), nil
}
